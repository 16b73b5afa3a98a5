package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// MeloTTS engine
// Talks to a standalone MeloTTS model server over HTTP. The model server owns
// the acoustic model, phoneme dictionaries and weights; this adapter only
// speaks its JSON contract.
// ---------------------------------------------------------------------------

const (
	meloGeneratePath = "/tts/generate"
	meloSpeakersPath = "/speakers"
	meloHealthPath   = "/health"

	contentTypeJSON = "application/json"
	contentTypeWAV  = "audio/wav"
)

// MeloEngine is the default speech backend.
type MeloEngine struct {
	baseURL string
	client  *http.Client
}

var _ Engine = (*MeloEngine)(nil)

// NewMeloEngine creates an adapter for the MeloTTS model server at baseURL
// (protocol and port included, e.g. "http://localhost:8001").
func NewMeloEngine(baseURL string, timeout time.Duration) *MeloEngine {
	return &MeloEngine{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (e *MeloEngine) Name() string { return "melo" }

type meloGenerateRequest struct {
	Text       string  `json:"text"`
	VoiceID    string  `json:"voice_id"`
	Language   string  `json:"language"`
	SampleRate int     `json:"sr"`
	Speed      float64 `json:"speed"`
}

type meloSpeakersResponse struct {
	AvailableSpeakers []string `json:"available_speakers"`
}

// meloErrorResponse covers both error body shapes the model server emits.
type meloErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// Synthesize posts the request to the model server and returns the WAV bytes.
func (e *MeloEngine) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	body, err := json.Marshal(meloGenerateRequest{
		Text:       req.Text,
		VoiceID:    req.Voice,
		Language:   req.Language,
		SampleRate: req.SampleRate,
		Speed:      req.Speed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal melo request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+meloGeneratePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create melo request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentTypeJSON)
	httpReq.Header.Set("Accept", contentTypeWAV)

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: melo request failed: %v", ErrSynthesisFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrSynthesisFailed, readErrorBody(resp))
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read audio response: %v", ErrSynthesisFailed, err)
	}
	if len(audioData) == 0 {
		return nil, fmt.Errorf("%w: melo returned empty audio", ErrSynthesisFailed)
	}

	return audioData, nil
}

// Speakers asks the model server for the voices of a language. A 404 means
// the server has no model for that language.
func (e *MeloEngine) Speakers(ctx context.Context, language string) ([]string, error) {
	u := e.baseURL + meloSpeakersPath + "?language=" + url.QueryEscape(language)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create speakers request: %w", err)
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("melo speakers request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("melo speakers returned %s", readErrorBody(resp))
	}

	var out meloSpeakersResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode speakers response: %w", err)
	}
	if len(out.AvailableSpeakers) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}

	return out.AvailableSpeakers, nil
}

// HealthCheck verifies the model server is reachable. Called once at startup
// so a misconfigured MELO_API_URL fails fast.
func (e *MeloEngine) HealthCheck(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+meloHealthPath, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("melo health check failed for %s: %w", e.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("melo health check returned status %s", resp.Status)
	}
	return nil
}

// readErrorBody extracts a structured error message from a non-200 response,
// falling back to the raw body.
func readErrorBody(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var parsed meloErrorResponse
	if err := json.Unmarshal(raw, &parsed); err == nil {
		if parsed.Error != "" {
			return fmt.Sprintf("status %d: %s", resp.StatusCode, parsed.Error)
		}
		if parsed.Detail != "" {
			return fmt.Sprintf("status %d: %s", resp.StatusCode, parsed.Detail)
		}
	}
	return fmt.Sprintf("status %d: %s", resp.StatusCode, string(raw))
}
