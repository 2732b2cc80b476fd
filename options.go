package papyrus

import (
	"context"
	"log/slog"
	"time"
)

// settings is the effective configuration for one extraction call. Public
// entry points copy the pipeline's base settings and apply per-call
// options onto the copy, so concurrent extractions never share mutable
// state.
type settings struct {
	maxRetries     int
	retryDelayBase time.Duration
	preferFullText bool
	maxConcurrent  int

	fetcher   Fetcher
	ocr       Recognizer
	textLayer TextLayerReader
	images    ImageRecoverer
	logger    *slog.Logger
}

// Option configures a Pipeline at construction or overrides its settings
// for a single call.
type Option func(*settings)

// WithMaxRetries sets how many times a failed operation is retried after
// its first attempt (default: 3, giving 4 attempts total).
func WithMaxRetries(n int) Option {
	return func(s *settings) { s.maxRetries = n }
}

// WithRetryDelayBase sets the base backoff delay (default: 1s). The wait
// before retry n is delay*(n+1): linear, so the worst-case latency for a
// fixed retry budget stays predictable for batch callers.
func WithRetryDelayBase(d time.Duration) Option {
	return func(s *settings) { s.retryDelayBase = d }
}

// WithPreferFullText controls whether the OCR provider's full-document
// annotation is preferred over the first token annotation (default: true).
func WithPreferFullText(v bool) Option {
	return func(s *settings) { s.preferFullText = v }
}

// WithMaxConcurrent caps in-flight extractions within a batch and OCR
// calls within the PDF fallback. Zero (the default) means no cap.
func WithMaxConcurrent(n int) Option {
	return func(s *settings) { s.maxConcurrent = n }
}

// WithFetcher replaces the document fetcher (default: an HTTPFetcher).
func WithFetcher(f Fetcher) Option {
	return func(s *settings) { s.fetcher = f }
}

// WithRecognizer sets the OCR client. Without one, image extraction and
// the PDF fallback fail with KindConfiguration.
func WithRecognizer(r Recognizer) Option {
	return func(s *settings) { s.ocr = r }
}

// WithTextLayer replaces the PDF text-layer reader. Passing nil marks the
// capability unavailable: PDF extraction fails with KindConfiguration.
func WithTextLayer(r TextLayerReader) Option {
	return func(s *settings) { s.textLayer = r }
}

// WithImageRecoverer replaces the PDF image recoverer used by the
// fallback path.
func WithImageRecoverer(r ImageRecoverer) Option {
	return func(s *settings) { s.images = r }
}

// WithLogger sets the structured logger for retry, batch-isolation, and
// fallback events. If not set, a no-op logger is used (no output).
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// with returns a copy of s with per-call overrides applied.
func (s settings) with(opts []Option) settings {
	for _, o := range opts {
		o(&s)
	}
	if s.logger == nil {
		s.logger = nopLogger
	}
	return s
}

// nopLogger is a logger that discards all output. Used when WithLogger is
// not set.
var nopLogger = slog.New(discardHandler{})

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
