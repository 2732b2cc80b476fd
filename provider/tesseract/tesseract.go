// Package tesseract implements a local OCR provider backed by the
// Tesseract engine, for deployments without a cloud OCR service.
package tesseract

import (
	"context"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/nevindra/papyrus"
)

// Engine implements papyrus.Recognizer with a fresh gosseract client per
// call, so concurrent recognitions never share a Tesseract handle.
type Engine struct {
	clientFactory func() *gosseract.Client
	languages     []string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLanguages sets the recognition languages (default: the engine's
// default, usually "eng").
func WithLanguages(langs ...string) Option {
	return func(e *Engine) { e.languages = langs }
}

// New constructs a Tesseract-backed recognizer.
func New(opts ...Option) *Engine {
	e := &Engine{clientFactory: gosseract.NewClient}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns "tesseract".
func (e *Engine) Name() string { return "tesseract" }

// Recognize performs OCR on a single image. PreferFullText has no effect:
// Tesseract produces a single text result. Failures classify KindUnknown
// since they are in-process library errors with no status to go by.
func (e *Engine) Recognize(ctx context.Context, req papyrus.RecognizeRequest) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(req.Image); err != nil {
		return "", &papyrus.Error{Kind: papyrus.KindUnknown, Message: "tesseract: set image: " + err.Error(), Err: err}
	}
	if len(e.languages) > 0 {
		if err := c.SetLanguage(e.languages...); err != nil {
			return "", &papyrus.Error{Kind: papyrus.KindUnknown, Message: "tesseract: set languages: " + err.Error(), Err: err}
		}
	}
	text, err := c.Text()
	if err != nil {
		return "", &papyrus.Error{Kind: papyrus.KindUnknown, Message: "tesseract: recognize: " + err.Error(), Err: err}
	}
	return strings.TrimSpace(text), nil
}

// Compile-time interface assertion.
var _ papyrus.Recognizer = (*Engine)(nil)
