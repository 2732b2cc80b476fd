// Package sqlite implements papyrus.Store using pure-Go SQLite.
// Zero CGO required.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nevindra/papyrus"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// StoreOption configures a SQLite Store.
type StoreOption func(*Store)

// WithLogger sets a structured logger for the store.
// When set, the store emits debug logs for every operation including
// timing, row counts, and key parameters. If not set, no logs are emitted.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// Store implements papyrus.Store backed by a local SQLite file.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ papyrus.Store = (*Store)(nil)

// nopLogger is a logger that discards all output.
var nopLogger = slog.New(discardHandler{})

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// New creates a Store using a local SQLite file at dbPath.
// It opens a single shared connection pool with SetMaxOpenConns(1) so that
// all goroutines serialize through one connection, eliminating SQLITE_BUSY
// errors caused by concurrent writers opening independent connections.
func New(dbPath string, opts ...StoreOption) *Store {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		// sql.Open only fails when the driver is not registered; with the
		// blank import above that never happens.
		panic(fmt.Sprintf("sqlite: open driver: %v", err))
	}
	db.SetMaxOpenConns(1)
	s := &Store{db: db, logger: nopLogger}
	for _, o := range opts {
		o(s)
	}
	s.logger.Debug("sqlite: store opened", "path", dbPath)
	return s
}

// Init creates all required tables.
func (s *Store) Init(ctx context.Context) error {
	start := time.Now()
	s.logger.Debug("sqlite: init started")

	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS extractions (
		id TEXT PRIMARY KEY,
		batch_id TEXT NOT NULL,
		ref TEXT NOT NULL,
		class TEXT NOT NULL,
		text TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	// Indexes on frequently queried columns.
	_, _ = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_extractions_batch ON extractions(batch_id)`)
	_, _ = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_extractions_ref ON extractions(ref)`)

	s.logger.Info("sqlite: init completed", "duration", time.Since(start))
	return nil
}

// SaveExtractions inserts or replaces the given records in one transaction.
func (s *Store) SaveExtractions(ctx context.Context, recs []papyrus.Extraction) error {
	if len(recs) == 0 {
		return nil
	}
	start := time.Now()
	s.logger.Debug("sqlite: save extractions", "count", len(recs))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, rec := range recs {
		_, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO extractions (id, batch_id, ref, class, text, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.BatchID, rec.Ref, rec.Class, rec.Text, rec.CreatedAt,
		)
		if err != nil {
			s.logger.Error("sqlite: insert extraction failed", "id", rec.ID, "error", err)
			return fmt.Errorf("insert extraction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("sqlite: save extractions commit failed", "error", err, "duration", time.Since(start))
		return fmt.Errorf("commit tx: %w", err)
	}
	s.logger.Debug("sqlite: save extractions ok", "count", len(recs), "duration", time.Since(start))
	return nil
}

// GetExtraction returns a single record by ID, or papyrus.ErrNotFound.
func (s *Store) GetExtraction(ctx context.Context, id string) (papyrus.Extraction, error) {
	start := time.Now()
	s.logger.Debug("sqlite: get extraction", "id", id)

	var rec papyrus.Extraction
	err := s.db.QueryRowContext(ctx,
		`SELECT id, batch_id, ref, class, text, created_at FROM extractions WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.BatchID, &rec.Ref, &rec.Class, &rec.Text, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Debug("sqlite: get extraction not found", "id", id, "duration", time.Since(start))
		return papyrus.Extraction{}, papyrus.ErrNotFound
	}
	if err != nil {
		s.logger.Error("sqlite: get extraction failed", "id", id, "error", err, "duration", time.Since(start))
		return papyrus.Extraction{}, fmt.Errorf("get extraction: %w", err)
	}
	s.logger.Debug("sqlite: get extraction ok", "id", id, "duration", time.Since(start))
	return rec, nil
}

// ListBatch returns all records of one batch in submission order.
// Record IDs are time-ordered UUIDs, so sorting by ID preserves the
// order the batch was saved in.
func (s *Store) ListBatch(ctx context.Context, batchID string) ([]papyrus.Extraction, error) {
	start := time.Now()
	s.logger.Debug("sqlite: list batch", "batch_id", batchID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, batch_id, ref, class, text, created_at
		 FROM extractions WHERE batch_id = ? ORDER BY id`, batchID)
	if err != nil {
		s.logger.Error("sqlite: list batch failed", "batch_id", batchID, "error", err, "duration", time.Since(start))
		return nil, fmt.Errorf("list batch: %w", err)
	}
	defer rows.Close()

	recs, err := scanExtractions(rows)
	if err != nil {
		return nil, fmt.Errorf("list batch: %w", err)
	}
	s.logger.Debug("sqlite: list batch ok", "batch_id", batchID, "count", len(recs), "duration", time.Since(start))
	return recs, nil
}

// ListByRef returns the most recent records for a reference, newest first.
func (s *Store) ListByRef(ctx context.Context, ref string, limit int) ([]papyrus.Extraction, error) {
	start := time.Now()
	s.logger.Debug("sqlite: list by ref", "ref", ref, "limit", limit)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, batch_id, ref, class, text, created_at
		 FROM extractions WHERE ref = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`, ref, limit)
	if err != nil {
		s.logger.Error("sqlite: list by ref failed", "ref", ref, "error", err, "duration", time.Since(start))
		return nil, fmt.Errorf("list by ref: %w", err)
	}
	defer rows.Close()

	recs, err := scanExtractions(rows)
	if err != nil {
		return nil, fmt.Errorf("list by ref: %w", err)
	}
	s.logger.Debug("sqlite: list by ref ok", "ref", ref, "count", len(recs), "duration", time.Since(start))
	return recs, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	s.logger.Debug("sqlite: closing store")
	err := s.db.Close()
	if err != nil {
		s.logger.Error("sqlite: close failed", "error", err)
	}
	return err
}

func scanExtractions(rows *sql.Rows) ([]papyrus.Extraction, error) {
	var recs []papyrus.Extraction
	for rows.Next() {
		var rec papyrus.Extraction
		if err := rows.Scan(&rec.ID, &rec.BatchID, &rec.Ref, &rec.Class, &rec.Text, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan extraction: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
