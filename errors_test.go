package papyrus

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorTerminal(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want bool
	}{
		{"configuration", &Error{Kind: KindConfiguration}, true},
		{"provider terminal", &Error{Kind: KindProviderTerminal, Status: 400}, true},
		{"provider transient", &Error{Kind: KindProviderTransient, Status: 503}, false},
		{"unknown", &Error{Kind: KindUnknown}, false},
		{"download 404", &Error{Kind: KindDownload, Status: 404}, true},
		{"download 499", &Error{Kind: KindDownload, Status: 499}, true},
		{"download 500", &Error{Kind: KindDownload, Status: 500}, false},
		{"download 503", &Error{Kind: KindDownload, Status: 503}, false},
		{"download no status", &Error{Kind: KindDownload}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Terminal(); got != tt.want {
				t.Errorf("Terminal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusKind(t *testing.T) {
	if got := StatusKind(400); got != KindProviderTerminal {
		t.Errorf("StatusKind(400) = %v, want provider_terminal", got)
	}
	if got := StatusKind(403); got != KindProviderTerminal {
		t.Errorf("StatusKind(403) = %v, want provider_terminal", got)
	}
	if got := StatusKind(500); got != KindProviderTransient {
		t.Errorf("StatusKind(500) = %v, want provider_transient", got)
	}
	if got := StatusKind(503); got != KindProviderTransient {
		t.Errorf("StatusKind(503) = %v, want provider_transient", got)
	}
}

func TestErrorString(t *testing.T) {
	e := &Error{Kind: KindDownload, Status: 404, Message: "fetch x"}
	if got := e.Error(); got != "download (404): fetch x" {
		t.Errorf("Error() = %q", got)
	}
	e = &Error{Kind: KindConfiguration, Message: "no key"}
	if got := e.Error(); got != "configuration: no key" {
		t.Errorf("Error() = %q", got)
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	e := &Error{Kind: KindUnknown, Message: "wrapped", Err: cause}
	if !errors.Is(e, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	wrapped := fmt.Errorf("outer: %w", e)
	var got *Error
	if !errors.As(wrapped, &got) {
		t.Fatal("expected errors.As to find *Error")
	}
	if got.Kind != KindUnknown {
		t.Errorf("Kind = %v, want unknown", got.Kind)
	}
}

func TestClassifyForeignError(t *testing.T) {
	e := classify(errors.New("library blew up"))
	if e.Kind != KindUnknown {
		t.Errorf("Kind = %v, want unknown", e.Kind)
	}
	if e.Terminal() {
		t.Error("foreign errors must stay retryable")
	}
}

func TestClassifyKeepsExisting(t *testing.T) {
	orig := &Error{Kind: KindProviderTerminal, Status: 400}
	if got := classify(fmt.Errorf("call failed: %w", orig)); got != orig {
		t.Errorf("classify should unwrap to the original *Error, got %v", got)
	}
}
