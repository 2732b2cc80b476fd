// Package papyrus extracts text from scanned documents: images via OCR,
// and PDFs via their embedded text layer with an OCR fallback over images
// recovered from the raw PDF bytes when the text layer is too thin.
//
// # Quick Start
//
// Build a pipeline around an OCR provider and run single documents or
// mixed batches:
//
//	ocr := vision.New(apiKey)
//	pipeline := papyrus.New(
//		papyrus.WithRecognizer(ocr),
//		papyrus.WithMaxConcurrent(8),
//	)
//
//	text, err := pipeline.ExtractPDF(ctx, "https://cdn.example.com/report.pdf")
//
//	texts := pipeline.ExtractAll(ctx, refs) // one result per ref, order kept
//
// # Core Interfaces
//
// The root package defines the contracts that all components implement:
//
//   - [Recognizer] — OCR backend turning image bytes into text
//   - [Fetcher] — document download by reference
//   - [TextLayerReader] — PDF text-layer extraction
//   - [ImageRecoverer] — embedded-image recovery from raw PDF bytes
//   - [Store] — optional archive of batch extraction results
//
// # Included Implementations
//
// OCR: provider/vision (Google Cloud Vision), provider/tesseract (local Tesseract).
// Storage: store/sqlite (local), store/postgres (caller-owned pool).
// Extras: web (readable-article extraction), observer (OTEL instrumentation).
//
// See the cmd/papyrus directory for a complete command-line application.
package papyrus
