package papyrus

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Store lookups when no record matches.
var ErrNotFound = errors.New("papyrus: extraction not found")

// Reference classes as archived alongside extraction results.
const (
	ClassImage = "image"
	ClassPDF   = "pdf"
)

// Extraction is one archived extraction outcome. Text may be empty: the
// batch dispatcher substitutes empty strings for isolated failures, and
// the archive keeps those rows so consumers can see the gap.
type Extraction struct {
	ID        string
	BatchID   string
	Ref       string
	Class     string // ClassImage or ClassPDF
	Text      string
	CreatedAt int64 // unix seconds
}

// Store archives extraction outcomes for downstream consumers. The
// pipeline itself never reads the archive back; it is not a cache.
type Store interface {
	// --- Extractions ---
	SaveExtractions(ctx context.Context, recs []Extraction) error
	GetExtraction(ctx context.Context, id string) (Extraction, error)
	ListBatch(ctx context.Context, batchID string) ([]Extraction, error)
	ListByRef(ctx context.Context, ref string, limit int) ([]Extraction, error)

	// --- Lifecycle ---
	Init(ctx context.Context) error
	Close() error
}

// NewExtraction assembles an archive record for one batch result.
func NewExtraction(batchID, ref, text string) Extraction {
	class := ClassImage
	if isPDFRef(ref) {
		class = ClassPDF
	}
	return Extraction{
		ID:        NewID(),
		BatchID:   batchID,
		Ref:       ref,
		Class:     class,
		Text:      text,
		CreatedAt: NowUnix(),
	}
}

// NewID generates a globally unique, time-sortable UUIDv7 (RFC 9562).
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NowUnix returns current time as Unix seconds.
func NowUnix() int64 {
	return time.Now().Unix()
}
