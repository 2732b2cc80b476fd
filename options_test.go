package papyrus

import (
	"context"
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	p := New()
	if p.base.maxRetries != 3 {
		t.Errorf("maxRetries = %d, want 3", p.base.maxRetries)
	}
	if p.base.retryDelayBase != time.Second {
		t.Errorf("retryDelayBase = %v, want 1s", p.base.retryDelayBase)
	}
	if !p.base.preferFullText {
		t.Error("preferFullText should default to true")
	}
	if p.base.maxConcurrent != 0 {
		t.Errorf("maxConcurrent = %d, want 0 (unbounded)", p.base.maxConcurrent)
	}
	if p.base.fetcher == nil || p.base.textLayer == nil || p.base.images == nil {
		t.Error("default collaborators not installed")
	}
	if p.base.ocr != nil {
		t.Error("no recognizer should be configured by default")
	}
	if p.base.logger == nil {
		t.Error("logger should default to the nop logger")
	}
}

func TestPerCallOptionsDoNotMutatePipeline(t *testing.T) {
	rec := &stubRecognizer{script: []recognizeResult{
		{err: &Error{Kind: KindProviderTransient, Status: 500, Message: "always down"}},
	}}
	p := New(fastOpts(WithFetcher(&stubFetcher{}), WithRecognizer(rec))...)

	_, err := p.ExtractImage(context.Background(), "http://files/a.png", WithMaxRetries(0))
	if err == nil {
		t.Fatal("expected failure")
	}
	if rec.callCount() != 1 {
		t.Fatalf("attempts = %d, want 1 with the per-call budget", rec.callCount())
	}
	if p.base.maxRetries != 3 {
		t.Errorf("pipeline maxRetries mutated to %d", p.base.maxRetries)
	}

	// The pipeline's own budget is intact: a plain call retries fully.
	if _, err := p.ExtractImage(context.Background(), "http://files/a.png"); err == nil {
		t.Fatal("expected failure")
	}
	if got := rec.callCount(); got != 5 {
		t.Errorf("attempts = %d, want 1 + 4", got)
	}
}
