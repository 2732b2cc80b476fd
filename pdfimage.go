package papyrus

import (
	"bytes"
	"compress/zlib"
	"io"
	"log/slog"
)

// ImageCandidate is a raster image recovered from a PDF stream object,
// reduced to its final JPEG-family bytes.
type ImageCandidate struct {
	// Filters is the declared /Filter chain, in declaration order.
	Filters []string
	// Data is the image payload after any lossless unwrap: a JPEG
	// (DCTDecode) or JPEG2000 (JPXDecode) byte stream.
	Data []byte
}

// ImageRecoverer walks a PDF and returns its JPEG-family images. It never
// fails: malformed input yields an empty slice.
type ImageRecoverer interface {
	Recover(data []byte) []ImageCandidate
}

// JPEGRecoverer finds image XObjects by scanning the raw PDF bytes for
// indirect-object headers. Stream objects cannot be packed into object
// streams, so a linear scan sees every image stream even when the
// cross-reference table is damaged or compressed.
type JPEGRecoverer struct {
	logger *slog.Logger
}

// NewJPEGRecoverer creates a recoverer. logger may be nil.
func NewJPEGRecoverer(logger *slog.Logger) *JPEGRecoverer {
	return &JPEGRecoverer{logger: logger}
}

// Recover returns every recoverable JPEG-family image in file order,
// without de-duplication. Objects that fail to parse or decode are
// skipped, never surfaced as errors.
func (r *JPEGRecoverer) Recover(data []byte) []ImageCandidate {
	var out []ImageCandidate
	pos := 0
	for {
		bodyStart := findObjHeader(data, pos)
		if bodyStart < 0 {
			return out
		}
		dict, payload, next := parseStreamObject(data, bodyStart)
		pos = next
		if dict == nil {
			continue
		}
		if dictName(dict, "/Type") != "XObject" || dictName(dict, "/Subtype") != "Image" {
			continue
		}
		filters := dictFilters(dict)
		img, ok := r.resolve(filters, payload)
		if !ok {
			continue
		}
		out = append(out, ImageCandidate{Filters: filters, Data: img})
	}
}

// resolve reduces a declared filter chain to final JPEG-family bytes.
// Supported shapes: a bare DCT/JPX stream, or DCT/JPX wrapped in a Flate
// pass (the common "losslessly recompressed JPEG" layout, undone first).
func (r *JPEGRecoverer) resolve(filters []string, payload []byte) ([]byte, bool) {
	var jpegFamily, flate bool
	unsupported := ""
	for _, f := range filters {
		switch f {
		case "DCTDecode", "JPXDecode":
			jpegFamily = true
		case "FlateDecode":
			flate = true
		default:
			unsupported = f
		}
	}
	if !jpegFamily {
		return nil, false // not a JPEG-family image
	}
	if unsupported != "" {
		r.log().Debug("image skipped: unsupported filter chain", "filters", filters)
		return nil, false
	}
	if len(payload) == 0 {
		return nil, false
	}
	if !flate {
		return payload, true
	}
	zr, err := zlib.NewReader(bytes.NewReader(payload))
	if err != nil {
		r.log().Debug("image skipped: flate open failed", "error", err)
		return nil, false
	}
	defer zr.Close()
	decoded, err := io.ReadAll(zr)
	if err != nil {
		r.log().Debug("image skipped: flate decode failed", "error", err)
		return nil, false
	}
	return decoded, true
}

func (r *JPEGRecoverer) log() *slog.Logger {
	if r.logger == nil {
		return nopLogger
	}
	return r.logger
}

var _ ImageRecoverer = (*JPEGRecoverer)(nil)

// --- raw object scanning ---

var (
	objKeyword       = []byte("obj")
	streamKeyword    = []byte("stream")
	endstreamKeyword = []byte("endstream")
)

// findObjHeader returns the body position of the next indirect-object
// header ("N G obj") at or after from, or -1.
func findObjHeader(data []byte, from int) int {
	for {
		k := bytes.Index(data[from:], objKeyword)
		if k < 0 {
			return -1
		}
		k += from
		from = k + len(objKeyword)
		if validObjHeader(data, k) {
			return k + len(objKeyword)
		}
	}
}

// validObjHeader reports whether the "obj" at k completes an
// object-number generation-number header.
func validObjHeader(data []byte, k int) bool {
	if k+3 < len(data) && !isDelim(data[k+3]) {
		return false // "objective" is not a keyword
	}
	i := k - 1
	spaces := 0
	for i >= 0 && isSpace(data[i]) {
		i--
		spaces++
	}
	if spaces == 0 {
		return false
	}
	digits := 0
	for i >= 0 && isDigit(data[i]) {
		i--
		digits++
	}
	if digits == 0 {
		return false
	}
	spaces = 0
	for i >= 0 && isSpace(data[i]) {
		i--
		spaces++
	}
	if spaces == 0 {
		return false
	}
	digits = 0
	for i >= 0 && isDigit(data[i]) {
		i--
		digits++
	}
	return digits > 0
}

// parseStreamObject reads the dictionary-plus-stream body starting at
// bodyStart. It returns the dictionary bytes, the raw stream payload, and
// the position scanning resumes from. Objects without a stream return a
// nil dict.
func parseStreamObject(data []byte, bodyStart int) (dict, payload []byte, next int) {
	i := skipWhite(data, bodyStart)
	if i+1 >= len(data) || data[i] != '<' || data[i+1] != '<' {
		return nil, nil, bodyStart
	}
	dictEnd := matchDict(data, i)
	if dictEnd < 0 {
		return nil, nil, bodyStart
	}
	dict = data[i:dictEnd]

	j := skipWhite(data, dictEnd)
	if !bytes.HasPrefix(data[j:], streamKeyword) {
		return nil, nil, dictEnd
	}
	j += len(streamKeyword)
	if j < len(data) && data[j] == '\r' {
		j++
	}
	if j < len(data) && data[j] == '\n' {
		j++
	}

	// A direct /Length pins the payload exactly; verify it lands on
	// "endstream" before trusting it.
	if n, ok := dictInt(dict, "/Length"); ok && n >= 0 && j+n <= len(data) {
		if end := endstreamAt(data, j+n); end > 0 {
			return dict, data[j : j+n], end
		}
	}
	// /Length absent, indirect, or wrong: locate the keyword instead.
	rel := bytes.Index(data[j:], endstreamKeyword)
	if rel < 0 {
		return nil, nil, j
	}
	return dict, trimStreamEOL(data[j : j+rel]), j + rel + len(endstreamKeyword)
}

// matchDict returns the index just past the ">>" matching the "<<" at i,
// or -1 when unbalanced. Nested dictionaries are tracked by depth; hex
// strings ("<...>") use single brackets and never change it.
func matchDict(data []byte, i int) int {
	depth := 0
	for ; i+1 < len(data); i++ {
		switch {
		case data[i] == '<' && data[i+1] == '<':
			depth++
			i++
		case data[i] == '>' && data[i+1] == '>':
			depth--
			i++
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

// endstreamAt returns the index just past "endstream" when the keyword,
// optionally preceded by one EOL, starts at p. Returns -1 otherwise.
func endstreamAt(data []byte, p int) int {
	if p < len(data) && data[p] == '\r' {
		p++
	}
	if p < len(data) && data[p] == '\n' {
		p++
	}
	if bytes.HasPrefix(data[p:], endstreamKeyword) {
		return p + len(endstreamKeyword)
	}
	return -1
}

// trimStreamEOL drops the single EOL separating stream data from the
// "endstream" keyword.
func trimStreamEOL(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
	}
	if n := len(b); n > 0 && b[n-1] == '\r' {
		b = b[:n-1]
	}
	return b
}

// --- dictionary token helpers ---

// dictValueStart locates key in dict and returns the index of its value,
// or -1. The byte after the key must be a delimiter so "/Type" cannot
// match "/TypeX".
func dictValueStart(dict []byte, key string) int {
	k := []byte(key)
	from := 0
	for {
		i := bytes.Index(dict[from:], k)
		if i < 0 {
			return -1
		}
		i += from
		from = i + 1
		end := i + len(k)
		if end < len(dict) && !isDelim(dict[end]) {
			continue
		}
		return skipWhite(dict, end)
	}
}

// dictName returns the name value for key ("/Subtype" -> "Image"), or "".
func dictName(dict []byte, key string) string {
	v := dictValueStart(dict, key)
	if v < 0 || v >= len(dict) || dict[v] != '/' {
		return ""
	}
	return readName(dict, v)
}

// readName reads the name token starting at the '/' at i.
func readName(dict []byte, i int) string {
	i++
	j := i
	for j < len(dict) && !isDelim(dict[j]) {
		j++
	}
	return string(dict[i:j])
}

// dictInt returns the direct integer value for key. Indirect references
// ("12 0 R") report !ok so callers fall back to keyword search.
func dictInt(dict []byte, key string) (int, bool) {
	v := dictValueStart(dict, key)
	if v < 0 || v >= len(dict) {
		return 0, false
	}
	j := v
	for j < len(dict) && isDigit(dict[j]) {
		j++
	}
	if j == v || j-v > 10 {
		return 0, false
	}
	n := 0
	for _, c := range dict[v:j] {
		n = n*10 + int(c-'0')
	}
	k := skipWhite(dict, j)
	if k < len(dict) && isDigit(dict[k]) {
		for k < len(dict) && isDigit(dict[k]) {
			k++
		}
		k = skipWhite(dict, k)
		if k < len(dict) && dict[k] == 'R' {
			return 0, false
		}
	}
	return n, true
}

// dictFilters returns the declared /Filter names in declaration order:
// either a single name or an array of names.
func dictFilters(dict []byte) []string {
	v := dictValueStart(dict, "/Filter")
	if v < 0 || v >= len(dict) {
		return nil
	}
	switch dict[v] {
	case '/':
		return []string{readName(dict, v)}
	case '[':
		var names []string
		i := v + 1
		for i < len(dict) && dict[i] != ']' {
			if dict[i] == '/' {
				name := readName(dict, i)
				names = append(names, name)
				i += len(name) + 1
				continue
			}
			i++
		}
		return names
	default:
		return nil
	}
}

func skipWhite(b []byte, i int) int {
	for i < len(b) && isSpace(b[i]) {
		i++
	}
	return i
}

// isSpace matches the six PDF whitespace characters.
func isSpace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// isDelim matches PDF delimiters and whitespace, which end names and
// keywords.
func isDelim(c byte) bool {
	if isSpace(c) {
		return true
	}
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}
