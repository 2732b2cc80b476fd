package papyrus

import (
	"context"
	"strings"
	"sync"
)

// isPDFRef classifies a reference as PDF or image. The substring check
// (not just a suffix check) keeps presigned URLs with query strings, like
// "scan.pdf?X-Amz-Signature=...", in the PDF class.
func isPDFRef(ref string) bool {
	return strings.Contains(strings.ToLower(ref), ".pdf")
}

// ExtractRef extracts one reference, dispatching on its class the same
// way ExtractAll does.
func (p *Pipeline) ExtractRef(ctx context.Context, ref string, opts ...Option) (string, error) {
	return extractRef(ctx, p.base.with(opts), ref)
}

func extractRef(ctx context.Context, cfg settings, ref string) (string, error) {
	if isPDFRef(ref) {
		return extractPDF(ctx, cfg, ref)
	}
	return extractImage(ctx, cfg, ref)
}

// ExtractAll extracts text from every reference and returns exactly one
// string per input, position for position. The two reference classes run
// concurrently, and within each class every reference gets its own
// goroutine, bounded overall by WithMaxConcurrent when set. Failures
// never propagate: a failed item is logged and yields an empty string, so
// a batch call cannot fail.
func (p *Pipeline) ExtractAll(ctx context.Context, refs []string, opts ...Option) []string {
	cfg := p.base.with(opts)

	var pdfs, images []string
	for _, ref := range refs {
		if isPDFRef(ref) {
			pdfs = append(pdfs, ref)
		} else {
			images = append(images, ref)
		}
	}

	var sem chan struct{}
	if cfg.maxConcurrent > 0 {
		sem = make(chan struct{}, cfg.maxConcurrent)
	}

	var wg sync.WaitGroup
	var pdfTexts, imageTexts []string
	wg.Add(2)
	go func() {
		defer wg.Done()
		pdfTexts = extractEach(ctx, cfg, pdfs, sem, extractPDF)
	}()
	go func() {
		defer wg.Done()
		imageTexts = extractEach(ctx, cfg, images, sem, extractImage)
	}()
	wg.Wait()

	// Both class results are in class order; two cursors rebuild the
	// original ordering.
	out := make([]string, 0, len(refs))
	var pi, ii int
	for _, ref := range refs {
		if isPDFRef(ref) {
			out = append(out, pdfTexts[pi])
			pi++
		} else {
			out = append(out, imageTexts[ii])
			ii++
		}
	}
	return out
}

// ExtractAllNonEmpty is ExtractAll with empty results removed, giving up
// the positional correspondence with refs.
func (p *Pipeline) ExtractAllNonEmpty(ctx context.Context, refs []string, opts ...Option) []string {
	var out []string
	for _, text := range p.ExtractAll(ctx, refs, opts...) {
		if text != "" {
			out = append(out, text)
		}
	}
	return out
}

// extractEach runs fn over refs, one goroutine per reference, respecting
// sem when non-nil. Failures are isolated to an empty string, so the
// result always holds len(refs) entries in refs order.
func extractEach(ctx context.Context, cfg settings, refs []string, sem chan struct{}, fn func(context.Context, settings, string) (string, error)) []string {
	out := make([]string, len(refs))
	var wg sync.WaitGroup
	for i, ref := range refs {
		if sem != nil {
			sem <- struct{}{}
		}
		wg.Add(1)
		go func(i int, ref string) {
			defer wg.Done()
			if sem != nil {
				defer func() { <-sem }()
			}
			text, err := fn(ctx, cfg, ref)
			if err != nil {
				cfg.logger.Error("extraction failed, substituting empty result",
					"ref", ref,
					"error", err)
				text = ""
			}
			out[i] = text
		}(i, ref)
	}
	wg.Wait()
	return out
}
