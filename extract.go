package papyrus

import (
	"context"
	"strings"
	"sync"
	"time"
)

// textLayerMin is the trimmed text-layer length below which a PDF is
// treated as scanned and the image OCR fallback runs.
const textLayerMin = 50

// Pipeline extracts plain text from remote documents. Images go through
// an OCR recognizer; PDFs through their embedded text layer, with OCR
// over recovered page images as a fallback for scanned documents.
//
// A Pipeline is safe for concurrent use. Per-call options apply to a copy
// of its settings and never mutate it.
type Pipeline struct {
	base settings
}

// New builds a Pipeline. The defaults fetch over HTTP and read PDF text
// layers in process; there is no default OCR recognizer, so image
// extraction fails with KindConfiguration until WithRecognizer supplies
// one.
func New(opts ...Option) *Pipeline {
	s := settings{
		maxRetries:     3,
		retryDelayBase: time.Second,
		preferFullText: true,
		fetcher:        NewHTTPFetcher(),
		textLayer:      PDFTextLayer{},
	}
	s = s.with(opts)
	if s.images == nil {
		s.images = NewJPEGRecoverer(s.logger)
	}
	return &Pipeline{base: s}
}

// ExtractImage downloads the image at url and recognizes its text. The
// fetch and the recognize call retry together as one unit, so a retry
// always works on freshly fetched bytes.
func (p *Pipeline) ExtractImage(ctx context.Context, url string, opts ...Option) (string, error) {
	return extractImage(ctx, p.base.with(opts), url)
}

func extractImage(ctx context.Context, cfg settings, url string) (string, error) {
	if cfg.ocr == nil {
		return "", &Error{Kind: KindConfiguration, Message: "no ocr recognizer configured"}
	}
	if cfg.fetcher == nil {
		return "", &Error{Kind: KindConfiguration, Message: "no fetcher configured"}
	}
	return attempt(ctx, cfg.retryPolicy(), "image ocr", cfg.logger, func() (string, error) {
		data, err := cfg.fetcher.Fetch(ctx, url)
		if err != nil {
			return "", err
		}
		return cfg.ocr.Recognize(ctx, RecognizeRequest{Image: data, PreferFullText: cfg.preferFullText})
	})
}

// ExtractPDF downloads the PDF at url and extracts its text. The embedded
// text layer wins outright when its trimmed length reaches textLayerMin;
// shorter results trigger OCR over the document's embedded JPEG images,
// whose joined text replaces the original only when strictly longer.
func (p *Pipeline) ExtractPDF(ctx context.Context, url string, opts ...Option) (string, error) {
	return extractPDF(ctx, p.base.with(opts), url)
}

func extractPDF(ctx context.Context, cfg settings, url string) (string, error) {
	if cfg.fetcher == nil {
		return "", &Error{Kind: KindConfiguration, Message: "no fetcher configured"}
	}
	pol := cfg.pdfRetryPolicy()
	data, err := attempt(ctx, pol, "pdf fetch", cfg.logger, func() ([]byte, error) {
		return cfg.fetcher.Fetch(ctx, url)
	})
	if err != nil {
		return "", err
	}
	return extractPDFData(ctx, cfg, data)
}

// extractPDFData coordinates the two PDF strategies. Text-layer failures
// surface to the caller; fallback failures only cost the fallback, never
// the call.
func extractPDFData(ctx context.Context, cfg settings, data []byte) (string, error) {
	text, err := attempt(ctx, cfg.pdfRetryPolicy(), "pdf text layer", cfg.logger, func() (string, error) {
		if cfg.textLayer == nil {
			return "", &Error{Kind: KindConfiguration, Message: "pdf text layer unavailable"}
		}
		return cfg.textLayer.ExtractText(data)
	})
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if len(text) >= textLayerMin {
		return text, nil
	}

	cfg.logger.Debug("text layer below threshold, trying image ocr", "length", len(text))
	fallback, err := ocrImages(ctx, cfg, data)
	if err != nil {
		cfg.logger.Warn("pdf image ocr fallback unavailable", "error", err)
		return text, nil
	}
	if len(fallback) > len(text) {
		return fallback, nil
	}
	return text, nil
}

// ocrImages recovers the PDF's embedded JPEG-family images and recognizes
// each in parallel, joining the non-empty texts with a blank line. Any
// candidate failure fails the whole fallback. Zero candidates is not a
// failure; it yields an empty result the caller's length comparison
// discards.
func ocrImages(ctx context.Context, cfg settings, data []byte) (string, error) {
	if cfg.images == nil {
		return "", &Error{Kind: KindConfiguration, Message: "pdf image recovery not configured"}
	}
	candidates := cfg.images.Recover(data)
	if len(candidates) == 0 {
		return "", nil
	}
	if cfg.ocr == nil {
		return "", &Error{Kind: KindConfiguration, Message: "no ocr recognizer configured"}
	}
	cfg.logger.Debug("recovered pdf images", "count", len(candidates))

	pol := cfg.pdfRetryPolicy()
	texts := make([]string, len(candidates))
	errs := make([]error, len(candidates))
	var sem chan struct{}
	if cfg.maxConcurrent > 0 {
		sem = make(chan struct{}, cfg.maxConcurrent)
	}
	var wg sync.WaitGroup
	for i, cand := range candidates {
		if sem != nil {
			sem <- struct{}{}
		}
		wg.Add(1)
		go func(i int, img []byte) {
			defer wg.Done()
			if sem != nil {
				defer func() { <-sem }()
			}
			texts[i], errs[i] = attempt(ctx, pol, "pdf image ocr", cfg.logger, func() (string, error) {
				return cfg.ocr.Recognize(ctx, RecognizeRequest{Image: img, PreferFullText: cfg.preferFullText})
			})
		}(i, cand.Data)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return "", err
		}
	}
	var parts []string
	for _, t := range texts {
		if t = strings.TrimSpace(t); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}
