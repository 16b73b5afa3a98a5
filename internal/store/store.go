// Package store persists synthesis request history in Postgres. It is
// optional — the gateway runs fully in-memory when DATABASE_URL is unset.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

type Store struct {
	*sql.DB
}

// New opens a Postgres connection, verifies it and ensures the history table
// exists.
func New(databaseURL string) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{DB: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS synthesis_requests (
			id          UUID PRIMARY KEY,
			engine      TEXT NOT NULL,
			voice_id    TEXT NOT NULL,
			language    TEXT NOT NULL,
			sample_rate INTEGER NOT NULL,
			speed       DOUBLE PRECISION NOT NULL,
			text_chars  INTEGER NOT NULL,
			byte_size   BIGINT NOT NULL,
			duration_ms BIGINT NOT NULL,
			cached      BOOLEAN NOT NULL DEFAULT FALSE,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	if _, err := s.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create synthesis_requests table: %w", err)
	}
	return nil
}
