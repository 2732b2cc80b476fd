// Package postgres implements papyrus.Store using PostgreSQL.
//
// The Store accepts an externally-owned *pgxpool.Pool via constructor
// injection. The caller creates and closes the pool.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nevindra/papyrus"
)

// Store implements papyrus.Store backed by PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ papyrus.Store = (*Store)(nil)

// New creates a Store using an existing pgxpool.Pool.
// The caller owns the pool and is responsible for closing it.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Init creates all required tables and indexes.
// Safe to call multiple times (all statements are idempotent).
func (s *Store) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS extractions (
			id TEXT PRIMARY KEY,
			batch_id TEXT NOT NULL,
			ref TEXT NOT NULL,
			class TEXT NOT NULL,
			text TEXT NOT NULL,
			created_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS extractions_batch_idx ON extractions(batch_id)`,
		`CREATE INDEX IF NOT EXISTS extractions_ref_idx ON extractions(ref)`,
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: init: %w", err)
		}
	}
	return nil
}

// SaveExtractions inserts or replaces the given records in one transaction.
func (s *Store) SaveExtractions(ctx context.Context, recs []papyrus.Extraction) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, rec := range recs {
		_, err := tx.Exec(ctx,
			`INSERT INTO extractions (id, batch_id, ref, class, text, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (id) DO UPDATE SET
			   batch_id = EXCLUDED.batch_id,
			   ref = EXCLUDED.ref,
			   class = EXCLUDED.class,
			   text = EXCLUDED.text,
			   created_at = EXCLUDED.created_at`,
			rec.ID, rec.BatchID, rec.Ref, rec.Class, rec.Text, rec.CreatedAt)
		if err != nil {
			return fmt.Errorf("postgres: insert extraction: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit tx: %w", err)
	}
	return nil
}

// GetExtraction returns a single record by ID, or papyrus.ErrNotFound.
func (s *Store) GetExtraction(ctx context.Context, id string) (papyrus.Extraction, error) {
	var rec papyrus.Extraction
	err := s.pool.QueryRow(ctx,
		`SELECT id, batch_id, ref, class, text, created_at FROM extractions WHERE id = $1`, id,
	).Scan(&rec.ID, &rec.BatchID, &rec.Ref, &rec.Class, &rec.Text, &rec.CreatedAt)
	if err == pgx.ErrNoRows {
		return papyrus.Extraction{}, papyrus.ErrNotFound
	}
	if err != nil {
		return papyrus.Extraction{}, fmt.Errorf("postgres: get extraction: %w", err)
	}
	return rec, nil
}

// ListBatch returns all records of one batch in submission order.
// Record IDs are time-ordered UUIDs, so sorting by ID preserves the
// order the batch was saved in.
func (s *Store) ListBatch(ctx context.Context, batchID string) ([]papyrus.Extraction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, batch_id, ref, class, text, created_at
		 FROM extractions
		 WHERE batch_id = $1
		 ORDER BY id`,
		batchID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list batch: %w", err)
	}
	defer rows.Close()

	return scanExtractions(rows)
}

// ListByRef returns the most recent records for a reference, newest first.
func (s *Store) ListByRef(ctx context.Context, ref string, limit int) ([]papyrus.Extraction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, batch_id, ref, class, text, created_at
		 FROM extractions
		 WHERE ref = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		ref, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list by ref: %w", err)
	}
	defer rows.Close()

	return scanExtractions(rows)
}

// Close is a no-op. The caller owns the pool and manages its lifecycle.
func (s *Store) Close() error {
	return nil
}

func scanExtractions(rows pgx.Rows) ([]papyrus.Extraction, error) {
	var recs []papyrus.Extraction
	for rows.Next() {
		var rec papyrus.Extraction
		if err := rows.Scan(&rec.ID, &rec.BatchID, &rec.Ref, &rec.Class, &rec.Text, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan extraction: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
