package papyrus

import (
	"errors"
	"fmt"
)

// Kind classifies an extraction failure for retry decisions.
type Kind int

const (
	// KindUnknown is an uncaught extraction-library failure. Retried.
	KindUnknown Kind = iota
	// KindConfiguration means a required capability is unavailable:
	// missing credentials, no OCR client, no PDF reader. Never retried.
	KindConfiguration
	// KindDownload is a transport failure or a non-success fetch response.
	KindDownload
	// KindProviderTerminal is a client-class (status < 500) provider
	// response. Never retried.
	KindProviderTerminal
	// KindProviderTransient is a server-class (status >= 500) provider
	// response or a malformed payload. Retried.
	KindProviderTransient
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindDownload:
		return "download"
	case KindProviderTerminal:
		return "provider_terminal"
	case KindProviderTransient:
		return "provider_transient"
	default:
		return "unknown"
	}
}

// Error is a classified extraction failure.
type Error struct {
	Kind    Kind
	Status  int // HTTP status when one applies, else 0
	Message string
	Err     error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Terminal reports whether retrying cannot change the outcome. Download
// failures follow the same status-class rule as provider responses: a
// client-class status is terminal, a server-class status or a plain
// transport failure (no status) is worth retrying.
func (e *Error) Terminal() bool {
	switch e.Kind {
	case KindConfiguration, KindProviderTerminal:
		return true
	case KindDownload:
		return e.Status > 0 && e.Status < 500
	default:
		return false
	}
}

// StatusKind maps a provider HTTP status to its error kind.
func StatusKind(status int) Kind {
	if status < 500 {
		return KindProviderTerminal
	}
	return KindProviderTransient
}

// classify returns err's *Error, wrapping foreign errors as KindUnknown.
func classify(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindUnknown, Message: err.Error(), Err: err}
}
