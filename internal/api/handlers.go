package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/chanwoo-dev/melogate/internal/archive"
	"github.com/chanwoo-dev/melogate/internal/audio"
	"github.com/chanwoo-dev/melogate/internal/cache"
	"github.com/chanwoo-dev/melogate/internal/config"
	"github.com/chanwoo-dev/melogate/internal/engine"
	"github.com/chanwoo-dev/melogate/internal/models"
	"github.com/chanwoo-dev/melogate/internal/registry"
	"github.com/chanwoo-dev/melogate/internal/store"
)

// streamChunkSize is the write granularity for audio responses. Each chunk is
// flushed so slow clients exert backpressure instead of buffering the file.
const streamChunkSize = 32 * 1024

type Handler struct {
	cfg      *config.Config
	engine   engine.Engine
	registry *registry.Registry
	cache    cache.Cache
	store    *store.Store     // nil = history disabled
	archive  *archive.Archive // nil = archiving disabled
	sem      *semaphore.Weighted
	log      *slog.Logger
}

func NewHandler(
	cfg *config.Config,
	eng engine.Engine,
	reg *registry.Registry,
	c cache.Cache,
	st *store.Store,
	arc *archive.Archive,
	log *slog.Logger,
) *Handler {
	return &Handler{
		cfg:      cfg,
		engine:   eng,
		registry: reg,
		cache:    c,
		store:    st,
		archive:  arc,
		sem:      semaphore.NewWeighted(int64(cfg.MaxConcurrentSyntheses)),
		log:      log.With(slog.String("component", "api")),
	}
}

// Generate handles POST /tts/generate. The request is validated against the
// current registry snapshot before the engine is invoked; the snapshot stays
// pinned for the rest of the request, so a concurrent language switch never
// affects audio that is already being produced.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.SynthesisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	snap := h.registry.Snapshot()

	// Apply defaults for omitted optional fields
	if req.SampleRate == 0 {
		req.SampleRate = h.cfg.DefaultSampleRate
	}
	if req.Speed == 0 {
		req.Speed = h.cfg.DefaultSpeed
	}
	if req.VoiceID == "" {
		req.VoiceID = h.cfg.DefaultSpeakerID
	}
	if req.Language == "" {
		req.Language = snap.Language
	}

	// Validate before touching the engine
	if req.Text == "" {
		respondError(w, http.StatusBadRequest, "text must not be empty")
		return
	}
	if req.SampleRate <= 0 {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("sr must be positive, got %d", req.SampleRate))
		return
	}
	if req.Speed <= 0 {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("speed must be positive, got %v", req.Speed))
		return
	}
	if req.Language != snap.Language {
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("language %q is not active (current: %q); use /language/switch first", req.Language, snap.Language))
		return
	}
	if req.VoiceID == "" {
		respondError(w, http.StatusBadRequest, "voice_id is required")
		return
	}
	if !snap.Has(req.VoiceID) {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown speaker %q for language %q", req.VoiceID, snap.Language))
		return
	}

	start := time.Now()
	key := cache.Key(h.engine.Name(), req.Language, req.VoiceID, req.SampleRate, req.Speed, req.Text)

	if audioData, ok := h.cache.Get(r.Context(), key); ok {
		h.log.Debug("cache hit", slog.String("voice", req.VoiceID), slog.Int("bytes", len(audioData)))
		h.recordRequest(r, &req, len(audioData), audioData, true)
		h.streamAudio(w, audioData, time.Since(start))
		return
	}

	// Bound concurrent engine calls; waiting respects client disconnect
	if err := h.sem.Acquire(r.Context(), 1); err != nil {
		respondError(w, http.StatusServiceUnavailable, "server busy, try again")
		return
	}
	audioData, err := h.engine.Synthesize(r.Context(), engine.Request{
		Text:       req.Text,
		Voice:      req.VoiceID,
		Language:   req.Language,
		SampleRate: req.SampleRate,
		Speed:      req.Speed,
	})
	h.sem.Release(1)

	if err != nil {
		h.log.Error("synthesis failed",
			slog.String("engine", h.engine.Name()),
			slog.String("voice", req.VoiceID),
			slog.String("error", err.Error()))
		if errors.Is(err, engine.ErrUnsupportedLanguage) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusBadGateway, fmt.Sprintf("error generating audio: %v", err))
		return
	}

	// Match the requested sample rate when the engine's native rate differs
	audioData, err = audio.Resample(audioData, req.SampleRate)
	if err != nil {
		h.log.Error("resample failed", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("error processing audio: %v", err))
		return
	}

	h.cache.Set(r.Context(), key, audioData)
	h.recordRequest(r, &req, len(audioData), audioData, false)
	h.streamAudio(w, audioData, time.Since(start))
}

// ListSpeakers handles GET /speakers.
func (h *Handler) ListSpeakers(w http.ResponseWriter, r *http.Request) {
	snap := h.registry.Snapshot()
	respondJSON(w, http.StatusOK, models.SpeakersResponse{
		AvailableSpeakers: snap.Speakers,
	})
}

// SwitchLanguage handles POST /language/switch. The speaker set for the new
// language is loaded from the engine first; only a successful load replaces
// the registry state, so a failed switch leaves the previous language fully
// usable.
func (h *Handler) SwitchLanguage(w http.ResponseWriter, r *http.Request) {
	var req models.SwitchLanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Language == "" {
		respondError(w, http.StatusBadRequest, "language must not be empty")
		return
	}

	speakers, err := h.engine.Speakers(r.Context(), req.Language)
	if err != nil {
		if errors.Is(err, engine.ErrUnsupportedLanguage) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("speaker load failed",
			slog.String("language", req.Language),
			slog.String("error", err.Error()))
		respondError(w, http.StatusBadGateway, fmt.Sprintf("failed to load speakers for %q: %v", req.Language, err))
		return
	}

	h.registry.Switch(req.Language, speakers)
	snap := h.registry.Snapshot()

	h.log.Info("language switched",
		slog.String("language", snap.Language),
		slog.Int("speakers", len(snap.Speakers)))

	respondJSON(w, http.StatusOK, models.SwitchLanguageResponse{
		Status:            "ok",
		Language:          snap.Language,
		AvailableSpeakers: snap.Speakers,
	})
}

// ListRequests handles GET /requests (history; only routed when Postgres is
// configured). Query param: limit (default 50, max 200).
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 200 {
		limit = 200
	}

	records, err := h.store.ListRecentRequests(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list requests")
		return
	}

	total, err := h.store.CountRequests(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to count requests")
		return
	}

	if records == nil {
		records = []models.SynthesisRecord{}
	}
	respondJSON(w, http.StatusOK, models.ListRequestsResponse{
		Requests: records,
		Total:    total,
	})
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// streamAudio writes the WAV payload in flushed chunks. The payload is fully
// buffered before the first byte goes out, so a failed synthesis never leaks
// partial audio to the client.
func (h *Handler) streamAudio(w http.ResponseWriter, audioData []byte, elapsed time.Duration) {
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Generation-Time-Seconds", fmt.Sprintf("%.3f", elapsed.Seconds()))
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	for off := 0; off < len(audioData); off += streamChunkSize {
		end := off + streamChunkSize
		if end > len(audioData) {
			end = len(audioData)
		}
		if _, err := w.Write(audioData[off:end]); err != nil {
			// Client went away mid-stream; nothing to clean up
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// recordRequest archives the WAV and writes a history row when those sinks
// are configured. Failures are logged, never surfaced — the audio is already
// good.
func (h *Handler) recordRequest(r *http.Request, req *models.SynthesisRequest, byteSize int, audioData []byte, cached bool) {
	id := uuid.New()

	if h.archive != nil && !cached {
		if path, err := h.archive.Save(req.VoiceID, id, audioData); err != nil {
			h.log.Warn("archive write failed", slog.String("error", err.Error()))
		} else {
			h.log.Debug("archived audio", slog.String("path", path))
		}
	}

	if h.store == nil {
		return
	}

	durationMs, err := audio.DurationMs(audioData)
	if err != nil {
		h.log.Warn("duration probe failed", slog.String("error", err.Error()))
	}

	rec := &models.SynthesisRecord{
		ID:         id,
		Engine:     h.engine.Name(),
		VoiceID:    req.VoiceID,
		Language:   req.Language,
		SampleRate: req.SampleRate,
		Speed:      req.Speed,
		TextChars:  len([]rune(req.Text)),
		ByteSize:   int64(byteSize),
		DurationMs: durationMs,
		Cached:     cached,
	}
	if err := h.store.CreateSynthesisRecord(r.Context(), rec); err != nil {
		h.log.Warn("history write failed", slog.String("error", err.Error()))
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
