package papyrus

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// zeroWidthChars are Unicode zero-width and invisible characters that OCR
// engines and PDF text layers leak into extracted text.
var zeroWidthChars = strings.NewReplacer(
	"​", "", // zero-width space
	"‌", "", // zero-width non-joiner
	"‍", "", // zero-width joiner
	"\uFEFF", "", // zero-width no-break space (BOM)
	"⁠", "", // word joiner
	"­", "", // soft hyphen
)

// NormalizeText prepares extracted text for an output boundary: NFC
// composition, zero-width stripping, CRLF folding. The pipeline's
// threshold and acceptance comparisons work on raw extractor output, so
// callers apply this after extraction, never inside it.
func NormalizeText(s string) string {
	s = zeroWidthChars.Replace(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return norm.NFC.String(s)
}
