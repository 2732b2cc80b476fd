package papyrus

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextLayerReader recovers the embedded text layer of a PDF, if any.
// Absence of the capability is represented by a nil reader on the
// pipeline, not by an error from this interface.
type TextLayerReader interface {
	ExtractText(data []byte) (string, error)
}

// PDFTextLayer reads the text layer with the ledongthuc/pdf parser.
type PDFTextLayer struct{}

// ExtractText returns the concatenated text of all pages, separated by
// blank lines and trimmed. Parser failures, including panics the library
// raises on malformed files, come back as KindUnknown so the retry
// orchestrator treats them as retryable.
func (PDFTextLayer) ExtractText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &Error{Kind: KindUnknown, Message: fmt.Sprintf("pdf parser panic: %v", r)}
		}
	}()

	if len(data) == 0 {
		return "", &Error{Kind: KindUnknown, Message: "empty pdf content"}
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &Error{Kind: KindUnknown, Message: fmt.Sprintf("open pdf: %v", err), Err: err}
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(pageText)
	}
	return sb.String(), nil
}

var _ TextLayerReader = PDFTextLayer{}
