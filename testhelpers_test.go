package papyrus

import (
	"context"
	"sync"
	"time"
)

// stubFetcher serves canned bytes per URL; unknown URLs echo back their
// own bytes, which lets tests thread a reference through fetch and OCR
// without a table.
type stubFetcher struct {
	mu     sync.Mutex
	bodies map[string][]byte
	errs   map[string]error
	calls  int
}

func (f *stubFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	if b, ok := f.bodies[url]; ok {
		return b, nil
	}
	return []byte(url), nil
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recognizeResult struct {
	text string
	err  error
}

// stubRecognizer resolves per-image results first, then a scripted
// sequence in call order (repeating its last entry), and otherwise echoes
// the image bytes as text.
type stubRecognizer struct {
	mu      sync.Mutex
	byImage map[string]recognizeResult
	script  []recognizeResult
	calls   int
}

func (r *stubRecognizer) Name() string { return "stub" }

func (r *stubRecognizer) Recognize(_ context.Context, req RecognizeRequest) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.calls
	r.calls++
	if res, ok := r.byImage[string(req.Image)]; ok {
		return res.text, res.err
	}
	if len(r.script) == 0 {
		return string(req.Image), nil
	}
	if i >= len(r.script) {
		i = len(r.script) - 1
	}
	return r.script[i].text, r.script[i].err
}

func (r *stubRecognizer) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// gaugeRecognizer records the peak number of concurrent Recognize calls.
// The delay keeps calls overlapping long enough to observe the peak.
type gaugeRecognizer struct {
	mu       sync.Mutex
	delay    time.Duration
	inFlight int
	peak     int
}

func (g *gaugeRecognizer) Name() string { return "gauge" }

func (g *gaugeRecognizer) Recognize(_ context.Context, req RecognizeRequest) (string, error) {
	g.mu.Lock()
	g.inFlight++
	if g.inFlight > g.peak {
		g.peak = g.inFlight
	}
	g.mu.Unlock()

	time.Sleep(g.delay)

	g.mu.Lock()
	g.inFlight--
	g.mu.Unlock()
	return string(req.Image), nil
}

func (g *gaugeRecognizer) peakInFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.peak
}

// stubTextLayer returns fixed text after draining a scripted error list,
// one entry per call, so retry sequences can fail then succeed.
type stubTextLayer struct {
	mu    sync.Mutex
	text  string
	errs  []error
	calls int
}

func (l *stubTextLayer) ExtractText([]byte) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if len(l.errs) > 0 {
		err := l.errs[0]
		l.errs = l.errs[1:]
		if err != nil {
			return "", err
		}
	}
	return l.text, nil
}

func (l *stubTextLayer) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

// stubRecoverer hands back fixed candidates regardless of input.
type stubRecoverer struct {
	candidates []ImageCandidate
}

func (r stubRecoverer) Recover([]byte) []ImageCandidate { return r.candidates }

// imageCandidates builds DCT candidates whose payloads are the given
// strings.
func imageCandidates(payloads ...string) []ImageCandidate {
	out := make([]ImageCandidate, len(payloads))
	for i, p := range payloads {
		out[i] = ImageCandidate{Filters: []string{"DCTDecode"}, Data: []byte(p)}
	}
	return out
}

// fastOpts removes retry waits so failure-path tests run instantly.
func fastOpts(extra ...Option) []Option {
	return append([]Option{WithRetryDelayBase(0)}, extra...)
}
