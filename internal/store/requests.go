package store

import (
	"context"
	"fmt"

	"github.com/chanwoo-dev/melogate/internal/models"
)

func (s *Store) CreateSynthesisRecord(ctx context.Context, rec *models.SynthesisRecord) error {
	query := `
		INSERT INTO synthesis_requests (
			id, engine, voice_id, language, sample_rate, speed,
			text_chars, byte_size, duration_ms, cached
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	return s.QueryRowContext(
		ctx, query,
		rec.ID, rec.Engine, rec.VoiceID, rec.Language, rec.SampleRate, rec.Speed,
		rec.TextChars, rec.ByteSize, rec.DurationMs, rec.Cached,
	).Scan(&rec.CreatedAt)
}

func (s *Store) ListRecentRequests(ctx context.Context, limit int) ([]models.SynthesisRecord, error) {
	query := `
		SELECT
			id, engine, voice_id, language, sample_rate, speed,
			text_chars, byte_size, duration_ms, cached, created_at
		FROM synthesis_requests
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := s.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query synthesis requests: %w", err)
	}
	defer rows.Close()

	var records []models.SynthesisRecord
	for rows.Next() {
		var rec models.SynthesisRecord
		err := rows.Scan(
			&rec.ID, &rec.Engine, &rec.VoiceID, &rec.Language, &rec.SampleRate,
			&rec.Speed, &rec.TextChars, &rec.ByteSize, &rec.DurationMs,
			&rec.Cached, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan synthesis request: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (s *Store) CountRequests(ctx context.Context) (int, error) {
	var total int
	err := s.QueryRowContext(ctx, `SELECT COUNT(*) FROM synthesis_requests`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count synthesis requests: %w", err)
	}
	return total, nil
}
