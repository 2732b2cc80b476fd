package papyrus

import (
	"context"
	"sync"
	"time"
)

// rateLimitRecognizer wraps a Recognizer with proactive rate limiting.
// Calls block until the rate budget allows them to proceed.
type rateLimitRecognizer struct {
	inner Recognizer
	mu    sync.Mutex

	// RPM state: sliding window of request timestamps.
	rpm       int
	rpmWindow []time.Time

	// Byte budget state: sliding window of (timestamp, payload size) pairs.
	bpm       int64
	bpmWindow []byteEntry
}

type byteEntry struct {
	at    time.Time
	bytes int64
}

// RateLimitOption configures a rateLimitRecognizer.
type RateLimitOption func(*rateLimitRecognizer)

// RPM sets the maximum recognize calls per minute.
func RPM(n int) RateLimitOption {
	return func(r *rateLimitRecognizer) { r.rpm = n }
}

// BytesPerMinute sets the maximum image payload bytes submitted per
// minute. The payload size is known before dispatch, so a call blocks
// until the whole image fits the remaining budget. An image larger
// than the full budget is admitted once the window is empty; it could
// otherwise never run.
func BytesPerMinute(n int64) RateLimitOption {
	return func(r *rateLimitRecognizer) { r.bpm = n }
}

// WithRateLimit wraps rec with proactive rate limiting, keeping call
// volume under provider quotas instead of bouncing off them. Compose
// with other wrappers:
//
//	rec = papyrus.WithRateLimit(rec, papyrus.RPM(600))
//	rec = papyrus.WithRateLimit(rec, papyrus.RPM(600), papyrus.BytesPerMinute(50<<20))
func WithRateLimit(rec Recognizer, opts ...RateLimitOption) Recognizer {
	r := &rateLimitRecognizer{inner: rec}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *rateLimitRecognizer) Name() string { return r.inner.Name() }

func (r *rateLimitRecognizer) Recognize(ctx context.Context, req RecognizeRequest) (string, error) {
	if err := r.waitForBudget(ctx, int64(len(req.Image))); err != nil {
		return "", err
	}
	return r.inner.Recognize(ctx, req)
}

// waitForBudget blocks until both the call and byte budgets admit a
// request of the given size. Both windows record the request at admit
// time. Returns ctx.Err() if the context is cancelled while waiting.
func (r *rateLimitRecognizer) waitForBudget(ctx context.Context, size int64) error {
	for {
		r.mu.Lock()
		now := time.Now()
		cutoff := now.Add(-time.Minute)

		// Prune expired entries.
		r.rpmWindow = pruneTime(r.rpmWindow, cutoff)
		r.bpmWindow = pruneBytes(r.bpmWindow, cutoff)

		// Check the call budget.
		rpmOK := r.rpm <= 0 || len(r.rpmWindow) < r.rpm

		// Check the byte budget.
		bpmOK := true
		if r.bpm > 0 {
			var total int64
			for _, e := range r.bpmWindow {
				total += e.bytes
			}
			// An oversized image is admitted against an empty window.
			bpmOK = total+size <= r.bpm || total == 0
		}

		if rpmOK && bpmOK {
			if r.rpm > 0 {
				r.rpmWindow = append(r.rpmWindow, now)
			}
			if r.bpm > 0 && size > 0 {
				r.bpmWindow = append(r.bpmWindow, byteEntry{at: now, bytes: size})
			}
			r.mu.Unlock()
			return nil
		}

		// Calculate wait time: time until the oldest entry in the blocking window expires.
		var wait time.Duration
		if !rpmOK && len(r.rpmWindow) > 0 {
			wait = r.rpmWindow[0].Add(time.Minute).Sub(now)
		}
		if !bpmOK && len(r.bpmWindow) > 0 {
			w := r.bpmWindow[0].at.Add(time.Minute).Sub(now)
			if wait == 0 || w < wait {
				wait = w
			}
		}
		if wait <= 0 {
			wait = 10 * time.Millisecond
		}
		r.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// pruneTime removes entries older than cutoff from a sorted time slice.
func pruneTime(s []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(s) && s[i].Before(cutoff) {
		i++
	}
	return s[i:]
}

// pruneBytes removes entries older than cutoff from a sorted byteEntry slice.
func pruneBytes(s []byteEntry, cutoff time.Time) []byteEntry {
	i := 0
	for i < len(s) && s[i].at.Before(cutoff) {
		i++
	}
	return s[i:]
}

// compile-time check
var _ Recognizer = (*rateLimitRecognizer)(nil)
