// Package postgres backs the draft Gateway with a single invoice_drafts
// table. The payload column is jsonb so drafts stay queryable from SQL even
// though the backend treats them as opaque bytes.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"receiptgen/backend/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(16)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS invoice_drafts (
			draft_key  text PRIMARY KEY,
			payload    jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)
	`)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Load(ctx context.Context, companyID string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload
		FROM invoice_drafts
		WHERE draft_key = $1
	`, store.Key(companyID)).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return payload, nil
}

func (s *Store) Save(ctx context.Context, companyID string, payload []byte) error {
	if len(payload) == 0 {
		return store.ErrInvalidInput
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invoice_drafts (draft_key, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (draft_key)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()
	`, store.Key(companyID), payload)
	return err
}

func (s *Store) Delete(ctx context.Context, companyID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM invoice_drafts
		WHERE draft_key = $1
	`, store.Key(companyID))
	return err
}
