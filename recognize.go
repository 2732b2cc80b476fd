package papyrus

import "context"

// Recognizer is an OCR backend that converts a raster image into the
// plain text it contains. Implementations return trimmed text and
// classify failures as *Error values.
type Recognizer interface {
	// Name identifies the backend in logs and telemetry.
	Name() string
	// Recognize performs text detection on a single image.
	Recognize(ctx context.Context, req RecognizeRequest) (string, error)
}

// RecognizeRequest carries one image through a Recognizer.
type RecognizeRequest struct {
	// Image is the raw image bytes. Backends that need an encoded
	// payload encode at their wire boundary.
	Image []byte
	// PreferFullText selects the provider's full-document annotation
	// over the first token annotation when both are present.
	PreferFullText bool
}
