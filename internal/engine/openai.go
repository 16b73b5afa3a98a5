package engine

import (
	"context"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ---------------------------------------------------------------------------
// OpenAI engine
// Uses the OpenAI speech endpoint (tts-1) with WAV output. The voice set is
// fixed by the API and multilingual, so every language maps to the same
// speakers.
// ---------------------------------------------------------------------------

// openaiVoices is the voice set of the speech endpoint.
var openaiVoices = []string{"alloy", "echo", "fable", "onyx", "nova", "shimmer"}

// OpenAIEngine synthesizes speech through the OpenAI API.
type OpenAIEngine struct {
	client *openai.Client
}

var _ Engine = (*OpenAIEngine)(nil)

func NewOpenAIEngine(apiKey string) *OpenAIEngine {
	return &OpenAIEngine{
		client: openai.NewClient(apiKey),
	}
}

func (e *OpenAIEngine) Name() string { return "openai" }

func (e *OpenAIEngine) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	resp, err := e.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          req.Text,
		Voice:          openai.SpeechVoice(strings.ToLower(req.Voice)),
		ResponseFormat: openai.SpeechResponseFormatWav,
		Speed:          req.Speed,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: openai speech request failed: %v", ErrSynthesisFailed, err)
	}
	defer resp.Close()

	audioData, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read openai audio: %v", ErrSynthesisFailed, err)
	}
	if len(audioData) == 0 {
		return nil, fmt.Errorf("%w: openai returned empty audio", ErrSynthesisFailed)
	}

	return audioData, nil
}

// Speakers returns the fixed multilingual voice set for any language.
func (e *OpenAIEngine) Speakers(_ context.Context, _ string) ([]string, error) {
	out := make([]string, len(openaiVoices))
	copy(out, openaiVoices)
	return out, nil
}
