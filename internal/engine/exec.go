package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sync"

	"github.com/mattn/go-shellwords"
)

// ---------------------------------------------------------------------------
// Exec engine
// Spawns a local synthesis command per request: JSON parameters on stdin,
// a complete WAV file on stdout. Useful for running a melo-style CLI on the
// same host without a model server.
// ---------------------------------------------------------------------------

// ExecEngine runs a local synthesis command. Invocations are serialized —
// local model processes rarely tolerate concurrent runs on one device.
type ExecEngine struct {
	cmd []string
	mu  sync.Mutex
}

var _ Engine = (*ExecEngine)(nil)

type execRequest struct {
	Text       string  `json:"text"`
	Voice      string  `json:"voice"`
	Language   string  `json:"language"`
	SampleRate int     `json:"sample_rate"`
	Speed      float64 `json:"speed"`
}

// NewExecEngine parses the synthesis command using shell-words syntax.
func NewExecEngine(command string) (*ExecEngine, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse tts command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("tts command is empty")
	}
	return &ExecEngine{cmd: args}, nil
}

func (e *ExecEngine) Name() string { return "exec" }

func (e *ExecEngine) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	payload, err := json.Marshal(execRequest{
		Text:       req.Text,
		Voice:      req.Voice,
		Language:   req.Language,
		SampleRate: req.SampleRate,
		Speed:      req.Speed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal exec request: %w", err)
	}

	cmd := exec.CommandContext(ctx, e.cmd[0], e.cmd[1:]...)
	cmd.Stdin = bytes.NewReader(payload)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: tts command failed: %v: %s", ErrSynthesisFailed, err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%w: tts command produced no audio", ErrSynthesisFailed)
	}

	return stdout.Bytes(), nil
}

// Speakers invokes the command with --speakers --language <code>, expecting a
// JSON array of voice identifiers on stdout.
func (e *ExecEngine) Speakers(ctx context.Context, language string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	args := append(append([]string{}, e.cmd[1:]...), "--speakers", "--language", language)
	cmd := exec.CommandContext(ctx, e.cmd[0], args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("tts command speaker listing failed: %w: %s", err, stderr.String())
	}

	var speakers []string
	if err := json.Unmarshal(stdout.Bytes(), &speakers); err != nil {
		return nil, fmt.Errorf("failed to decode speaker listing: %w", err)
	}
	if len(speakers) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}

	return speakers, nil
}
