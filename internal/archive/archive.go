// Package archive optionally mirrors generated WAV files to a local
// directory, the same way the original CLI clients saved every result under
// tts_output/.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o644
)

type Archive struct {
	dir string
}

// New ensures the output directory exists.
func New(dir string) (*Archive, error) {
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Archive{dir: dir}, nil
}

// Save writes a WAV payload under a timestamped, collision-free name and
// returns the path. Archive failures are the caller's to log — they must not
// fail the request that produced the audio.
func (a *Archive) Save(voiceID string, id uuid.UUID, audio []byte) (string, error) {
	name := fmt.Sprintf("%s_%s_%s.wav", voiceID, time.Now().Format("20060102_150405"), id.String()[:8])
	path := filepath.Join(a.dir, name)

	if err := os.WriteFile(path, audio, filePermissions); err != nil {
		return "", fmt.Errorf("failed to write archive file: %w", err)
	}
	return path, nil
}
