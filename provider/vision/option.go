package vision

import "net/http"

// Option configures a Vision client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for annotate calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithEndpoint overrides the API base URL, for regional endpoints such as
// "https://eu-vision.googleapis.com/v1" and for tests.
func WithEndpoint(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithMaxResults sets the TEXT_DETECTION feature's maxResults (default 1).
func WithMaxResults(n int) Option {
	return func(c *Client) { c.maxResults = n }
}
