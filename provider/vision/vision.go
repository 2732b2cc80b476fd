// Package vision implements the Google Cloud Vision OCR provider.
package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nevindra/papyrus"
)

const defaultBaseURL = "https://vision.googleapis.com/v1"

// Client implements papyrus.Recognizer against the images:annotate
// endpoint, authenticating with an API key in the query string.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	maxResults int
}

// New creates a Vision OCR client. An empty API key is accepted here;
// Recognize then fails with KindConfiguration before any network call.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
		maxResults: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns "vision".
func (c *Client) Name() string { return "vision" }

// Recognize runs TEXT_DETECTION on one image and returns its trimmed
// text: the full-document annotation when preferred and present, else the
// first token annotation, else empty.
func (c *Client) Recognize(ctx context.Context, req papyrus.RecognizeRequest) (string, error) {
	if c.apiKey == "" {
		return "", &papyrus.Error{Kind: papyrus.KindConfiguration, Message: "vision: api key not configured"}
	}

	payload, err := json.Marshal(c.buildBody(req.Image))
	if err != nil {
		return "", &papyrus.Error{Kind: papyrus.KindUnknown, Message: "vision: marshal body: " + err.Error(), Err: err}
	}

	url := fmt.Sprintf("%s/images:annotate?key=%s", c.baseURL, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(payload)))
	if err != nil {
		return "", &papyrus.Error{Kind: papyrus.KindUnknown, Message: "vision: create request: " + err.Error(), Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &papyrus.Error{Kind: papyrus.KindProviderTransient, Message: "vision: request failed: " + err.Error(), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &papyrus.Error{Kind: papyrus.KindProviderTransient, Message: "vision: read response: " + err.Error(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", httpErr(resp.StatusCode, string(respBody))
	}

	var parsed annotateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &papyrus.Error{Kind: papyrus.KindProviderTransient, Message: "vision: parse response: " + err.Error(), Err: err}
	}
	if len(parsed.Responses) == 0 {
		return "", &papyrus.Error{Kind: papyrus.KindProviderTransient, Message: "vision: empty responses list"}
	}

	r := parsed.Responses[0]
	if r.Error != nil {
		// Per-annotation errors carry canonical RPC codes, not HTTP
		// statuses, so the status-class rule does not apply; classify
		// transient and let the retry budget decide.
		return "", &papyrus.Error{
			Kind:    papyrus.KindProviderTransient,
			Message: fmt.Sprintf("vision: annotation error %d: %s", r.Error.Code, r.Error.Message),
		}
	}

	if req.PreferFullText && r.FullTextAnnotation != nil && r.FullTextAnnotation.Text != "" {
		return strings.TrimSpace(r.FullTextAnnotation.Text), nil
	}
	if len(r.TextAnnotations) > 0 {
		return strings.TrimSpace(r.TextAnnotations[0].Description), nil
	}
	return "", nil
}

// buildBody constructs the images:annotate request for a single image.
func (c *Client) buildBody(image []byte) map[string]any {
	return map[string]any{
		"requests": []map[string]any{
			{
				"image": map[string]any{
					"content": base64.StdEncoding.EncodeToString(image),
				},
				"features": []map[string]any{
					{
						"type":       "TEXT_DETECTION",
						"maxResults": c.maxResults,
					},
				},
			},
		},
	}
}

// httpErr classifies a non-success annotate response by status class.
func httpErr(status int, body string) *papyrus.Error {
	return &papyrus.Error{
		Kind:    papyrus.StatusKind(status),
		Status:  status,
		Message: fmt.Sprintf("vision: annotate status %d: %s", status, body),
	}
}

// ---- Response parsing types ----

type annotateResponse struct {
	Responses []annotateResult `json:"responses"`
}

type annotateResult struct {
	FullTextAnnotation *fullTextAnnotation `json:"fullTextAnnotation"`
	TextAnnotations    []textAnnotation    `json:"textAnnotations"`
	Error              *annotateError      `json:"error"`
}

type fullTextAnnotation struct {
	Text string `json:"text"`
}

type textAnnotation struct {
	Description string `json:"description"`
}

type annotateError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Compile-time interface assertion.
var _ papyrus.Recognizer = (*Client)(nil)
