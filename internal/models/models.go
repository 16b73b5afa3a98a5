package models

import (
	"time"

	"github.com/google/uuid"
)

// SynthesisRequest is the JSON body of POST /tts/generate.
// Optional fields fall back to the configured defaults when zero.
type SynthesisRequest struct {
	Text       string  `json:"text"`
	VoiceID    string  `json:"voice_id"`
	Language   string  `json:"language,omitempty"`
	SampleRate int     `json:"sr,omitempty"`
	Speed      float64 `json:"speed,omitempty"`
}

// SpeakersResponse is the body of GET /speakers.
type SpeakersResponse struct {
	AvailableSpeakers []string `json:"available_speakers"`
}

// SwitchLanguageRequest is the JSON body of POST /language/switch.
type SwitchLanguageRequest struct {
	Language string `json:"language"`
}

// SwitchLanguageResponse reports the registry state after a successful switch.
type SwitchLanguageResponse struct {
	Status            string   `json:"status"`
	Language          string   `json:"language"`
	AvailableSpeakers []string `json:"available_speakers"`
}

// SynthesisRecord is one row of synthesis history. The input text itself is
// never persisted, only its length.
type SynthesisRecord struct {
	ID         uuid.UUID `json:"id"`
	Engine     string    `json:"engine"`
	VoiceID    string    `json:"voice_id"`
	Language   string    `json:"language"`
	SampleRate int       `json:"sample_rate"`
	Speed      float64   `json:"speed"`
	TextChars  int       `json:"text_chars"`
	ByteSize   int64     `json:"byte_size"`
	DurationMs int64     `json:"duration_ms"`
	Cached     bool      `json:"cached"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListRequestsResponse is the body of GET /requests.
type ListRequestsResponse struct {
	Requests []SynthesisRecord `json:"requests"`
	Total    int               `json:"total"`
}
