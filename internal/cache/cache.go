// Package cache memoizes synthesis results so identical requests skip the
// engine entirely. Keys cover every parameter that affects the audio.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Cache stores WAV payloads keyed by request fingerprint. Implementations
// must be safe for concurrent use. Lookup misses and backend failures both
// surface as (nil, false) — a broken cache must never fail a request.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, audio []byte)
	Close() error
}

// Key fingerprints a synthesis request. Two requests share a key only when
// every audio-affecting parameter matches.
func Key(engine, language, voice string, sampleRate int, speed float64, text string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%d\x00%g\x00%s", engine, language, voice, sampleRate, speed, text)
	return "tts:" + hex.EncodeToString(h.Sum(nil))
}
