// Package web extracts readable article text from web pages, for text
// sources that are pages rather than scanned documents. Readability
// parsing runs first; pages it cannot identify an article in are
// tag-stripped whole.
package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/nevindra/papyrus"
)

// Extractor fetches web pages and extracts their readable text.
type Extractor struct {
	client   *http.Client
	maxBytes int64
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithHTTPClient replaces the underlying HTTP client (default: 15s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(e *Extractor) { e.client = c }
}

// New creates an Extractor with a 15-second timeout and a 4 MiB page cap.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		client:   &http.Client{Timeout: 15 * time.Second},
		maxBytes: 4 << 20,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract downloads a page and returns its readable text, normalized.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &papyrus.Error{Kind: papyrus.KindDownload, Message: fmt.Sprintf("build request for %s: %v", rawURL, err), Err: err}
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; PapyrusBot/1.0)")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", &papyrus.Error{Kind: papyrus.KindDownload, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &papyrus.Error{Kind: papyrus.KindDownload, Status: resp.StatusCode, Message: "fetch " + rawURL}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes))
	if err != nil {
		return "", &papyrus.Error{Kind: papyrus.KindDownload, Message: fmt.Sprintf("read body: %v", err), Err: err}
	}

	page := string(body)

	parsedURL, _ := url.Parse(rawURL)
	article, err := readability.FromReader(strings.NewReader(page), parsedURL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		return papyrus.NormalizeText(strings.TrimSpace(article.TextContent)), nil
	}

	return papyrus.NormalizeText(stripTags(page)), nil
}

// stripTags flattens an HTML page to plain text. Script and style bodies
// are dropped, block elements become line breaks, entities are decoded by
// the tokenizer.
func stripTags(page string) string {
	tok := html.NewTokenizer(strings.NewReader(page))
	var b strings.Builder
	b.Grow(len(page))
	skipText := false

	for {
		switch tok.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input; either way, what was
			// collected so far is the text.
			return collapseWhitespace(b.String())
		case html.StartTagToken:
			name, _ := tok.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				skipText = true
			}
			if blockTag(tag) {
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := tok.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				skipText = false
			}
			if blockTag(tag) {
				b.WriteByte('\n')
			}
		case html.SelfClosingTagToken:
			name, _ := tok.TagName()
			if blockTag(string(name)) {
				b.WriteByte('\n')
			}
		case html.TextToken:
			if !skipText {
				b.Write(tok.Text())
			}
		}
	}
}

func blockTag(tag string) bool {
	switch tag {
	case "p", "div", "br", "hr", "h1", "h2", "h3", "h4", "h5", "h6",
		"li", "ul", "ol", "table", "tr", "blockquote", "pre",
		"section", "article", "header", "footer", "nav", "main":
		return true
	}
	return false
}

// collapseWhitespace trims every line and folds runs of blank lines into
// at most one, keeping paragraph separation readable.
func collapseWhitespace(text string) string {
	var result strings.Builder
	emptyCount := 0

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if result.Len() > 0 {
				emptyCount++
			}
			continue
		}
		if emptyCount > 1 {
			result.WriteString("\n\n")
		} else if result.Len() > 0 {
			result.WriteByte('\n')
		}
		result.WriteString(trimmed)
		emptyCount = 0
	}

	return result.String()
}
