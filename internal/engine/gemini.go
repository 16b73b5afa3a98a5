package engine

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/chanwoo-dev/melogate/internal/audio"
)

// ---------------------------------------------------------------------------
// Gemini engine
// Uses the Gen AI SDK with audio response modality. The model returns raw
// 24 kHz mono PCM16, which we wrap into a WAV container before handing it
// back to the gateway. The prebuilt voice set is fixed and multilingual.
// The model has no explicit speed control; the Speed field is ignored.
// ---------------------------------------------------------------------------

const (
	geminiTTSModel       = "gemini-2.5-flash-preview-tts"
	geminiNativeRate     = 24000
	geminiNativeChannels = 1
)

// geminiVoices is the prebuilt voice set of the TTS preview models.
var geminiVoices = []string{"Zephyr", "Puck", "Charon", "Kore", "Fenrir", "Leda", "Orus", "Aoede"}

// GeminiEngine synthesizes speech through Google's Gemini TTS models.
type GeminiEngine struct {
	apiKey string
	model  string
}

var _ Engine = (*GeminiEngine)(nil)

func NewGeminiEngine(apiKey string) *GeminiEngine {
	return &GeminiEngine{
		apiKey: apiKey,
		model:  geminiTTSModel,
	}
}

func (e *GeminiEngine) Name() string { return "gemini" }

func (e *GeminiEngine) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  e.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create genai client: %v", ErrSynthesisFailed, err)
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: req.Voice},
			},
		},
	}

	result, err := client.Models.GenerateContent(ctx, e.model, genai.Text(req.Text), config)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini speech request failed: %v", ErrSynthesisFailed, err)
	}

	pcm := extractInlineAudio(result)
	if len(pcm) == 0 {
		return nil, fmt.Errorf("%w: gemini returned no audio data", ErrSynthesisFailed)
	}

	wavData, err := audio.EncodePCM16(pcm, geminiNativeRate, geminiNativeChannels)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode gemini audio: %v", ErrSynthesisFailed, err)
	}

	return wavData, nil
}

// Speakers returns the fixed prebuilt voice set for any language.
func (e *GeminiEngine) Speakers(_ context.Context, _ string) ([]string, error) {
	out := make([]string, len(geminiVoices))
	copy(out, geminiVoices)
	return out, nil
}

func extractInlineAudio(result *genai.GenerateContentResponse) []byte {
	if result == nil {
		return nil
	}
	for _, cand := range result.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data
			}
		}
	}
	return nil
}
