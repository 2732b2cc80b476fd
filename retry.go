package papyrus

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// retryPolicy controls the attempt loop for one leaf operation.
type retryPolicy struct {
	maxRetries int           // retries after the first attempt
	delayBase  time.Duration // wait before retry n is delayBase*(n+1)
	abort      func(*Error) bool
}

// retryPolicy derives the image-path policy: kind classification alone
// decides terminality.
func (s settings) retryPolicy() retryPolicy {
	return retryPolicy{maxRetries: s.maxRetries, delayBase: s.retryDelayBase}
}

// pdfRetryPolicy adds the PDF path's rule that a 503 aborts retries
// unconditionally, where the image path would keep retrying it.
func (s settings) pdfRetryPolicy() retryPolicy {
	p := s.retryPolicy()
	p.abort = func(e *Error) bool { return e.Status == 503 }
	return p
}

// attempt calls fn up to maxRetries+1 times, sleeping between retryable
// failures with linearly increasing backoff. Terminal-class errors (and
// anything the policy's abort predicate matches) surface immediately.
// Exhaustion surfaces a failure that wraps the last error with the
// attempt count, keeping its kind and status.
func attempt[T any](ctx context.Context, pol retryPolicy, name string, logger *slog.Logger, fn func() (T, error)) (T, error) {
	var zero T
	var last *Error
	attempts := pol.maxRetries + 1
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		e := classify(err)
		if e.Terminal() || (pol.abort != nil && pol.abort(e)) {
			return zero, e
		}
		last = e
		logger.Warn("retrying after failure",
			"op", name,
			"kind", e.Kind,
			"status", e.Status,
			"attempt", i+1,
			"max_attempts", attempts)
		if i < attempts-1 {
			timer := time.NewTimer(pol.delayBase * time.Duration(i+1))
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}
	}
	logger.Error("all retry attempts exhausted",
		"op", name,
		"attempts", attempts,
		"error", last)
	return zero, &Error{
		Kind:    last.Kind,
		Status:  last.Status,
		Message: fmt.Sprintf("%s: %d attempts exhausted", name, attempts),
		Err:     last,
	}
}
