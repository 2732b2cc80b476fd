package papyrus

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// fetchUserAgent identifies the fetcher to document hosts.
const fetchUserAgent = "Mozilla/5.0 (compatible; PapyrusBot/1.0)"

// Fetcher retrieves a document's raw bytes from a location reference.
// Failures are KindDownload errors; client-class response statuses make
// them terminal for retry purposes.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// HTTPFetcher fetches documents with HTTP GET.
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
}

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// FetchClient replaces the underlying HTTP client (default: 30s timeout).
func FetchClient(c *http.Client) FetcherOption {
	return func(f *HTTPFetcher) { f.client = c }
}

// FetchMaxBytes caps the accepted document size (default: 32 MiB).
// Oversized documents fail instead of being truncated; a cut-off PDF or
// JPEG is useless downstream.
func FetchMaxBytes(n int64) FetcherOption {
	return func(f *HTTPFetcher) { f.maxBytes = n }
}

// NewHTTPFetcher creates a Fetcher for http(s) references.
func NewHTTPFetcher(opts ...FetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:   &http.Client{Timeout: 30 * time.Second},
		maxBytes: 32 << 20,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch GETs ref and returns the response body.
func (f *HTTPFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, &Error{Kind: KindDownload, Message: fmt.Sprintf("build request for %s: %v", ref, err), Err: err}
	}
	req.Header.Set("User-Agent", fetchUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindDownload, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &Error{Kind: KindDownload, Status: resp.StatusCode, Message: "fetch " + ref}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, &Error{Kind: KindDownload, Message: fmt.Sprintf("read body: %v", err), Err: err}
	}
	if int64(len(data)) > f.maxBytes {
		return nil, &Error{Kind: KindDownload, Message: fmt.Sprintf("document exceeds %d byte limit", f.maxBytes)}
	}
	return data, nil
}

var _ Fetcher = (*HTTPFetcher)(nil)
