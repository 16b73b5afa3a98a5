// Package engine defines the speech engine contract and its adapters.
// The acoustic models themselves are external collaborators: a MeloTTS model
// server, a local synthesis command, or a hosted TTS API. Adapters translate
// the gateway's request into whatever the backing model speaks and always
// hand back a complete WAV payload.
package engine

import (
	"context"
	"errors"
)

// Request carries the fully-resolved parameters for one synthesis call.
// Defaults have already been applied by the caller; adapters may assume all
// fields are populated and valid.
type Request struct {
	Text       string
	Voice      string
	Language   string
	SampleRate int
	Speed      float64
}

// ErrUnsupportedLanguage reports that the backing model has no voices for the
// requested language. Surfaced to clients as a 400.
var ErrUnsupportedLanguage = errors.New("no model available for language")

// ErrSynthesisFailed wraps upstream engine failures. Surfaced to clients as a
// 502 with no partial audio.
var ErrSynthesisFailed = errors.New("synthesis failed")

// Engine is the contract every speech backend implements.
type Engine interface {
	// Name identifies the backend ("melo", "exec", "openai", "gemini").
	Name() string

	// Synthesize converts text to a complete WAV payload. The call blocks
	// for the duration of audio generation and is not resumable.
	Synthesize(ctx context.Context, req Request) ([]byte, error)

	// Speakers returns the voice identifiers available for a language.
	// Returns ErrUnsupportedLanguage when the backend has no model for it.
	Speakers(ctx context.Context, language string) ([]string, error)
}
