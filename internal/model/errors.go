package model

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes why a probe produced no status code.
//
// Design decision: We keep the kind next to the wrapped cause instead of
// relying on the cause alone, because causes from net/http vary between Go
// versions and platforms while the kind is what reports and the database need.
type ErrorKind int

const (
	// KindNetwork covers connection refused/reset and DNS failures.
	KindNetwork ErrorKind = iota

	// KindTimeout covers request, dial and TLS handshake timeouts.
	KindTimeout

	// KindProtocol covers malformed responses, redirect loops and URLs
	// that cannot be turned into a request.
	KindProtocol

	// KindClassificationInput is used when an outcome without a status code
	// is handed to the classifier.
	KindClassificationInput

	// KindCanceled marks URLs that were never attempted because the run
	// context ended first.
	KindCanceled
)

// Sentinel errors, one per kind. ProbeError.Is matches them so callers can
// write errors.Is(outcome.Err, model.ErrTimeout).
var (
	ErrNetwork             = errors.New("network error")
	ErrTimeout             = errors.New("timeout")
	ErrProtocol            = errors.New("protocol error")
	ErrClassificationInput = errors.New("status code missing for classification")
	ErrCanceled            = errors.New("probe canceled")
)

// String returns the kind name used in logs, reports and the database.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindProtocol:
		return "protocol"
	case KindClassificationInput:
		return "classification_input"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// ParseErrorKind is the inverse of ErrorKind.String.
func ParseErrorKind(s string) (ErrorKind, error) {
	for _, k := range []ErrorKind{KindNetwork, KindTimeout, KindProtocol, KindClassificationInput, KindCanceled} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown error kind %q", s)
}

// sentinel returns the package-level error that represents the kind.
func (k ErrorKind) sentinel() error {
	switch k {
	case KindNetwork:
		return ErrNetwork
	case KindTimeout:
		return ErrTimeout
	case KindProtocol:
		return ErrProtocol
	case KindClassificationInput:
		return ErrClassificationInput
	case KindCanceled:
		return ErrCanceled
	default:
		return nil
	}
}

// ProbeError records why a probe of URL failed.
type ProbeError struct {
	// Kind is the failure category.
	Kind ErrorKind

	// URL is the probed URL.
	URL string

	// Err is the underlying cause. It may be nil for errors restored
	// from the database, where only Message survives.
	Err error

	// Message is the rendered cause, kept for serialization.
	Message string
}

// NewProbeError creates a ProbeError of the given kind wrapping err.
func NewProbeError(kind ErrorKind, rawURL string, err error) *ProbeError {
	pe := &ProbeError{Kind: kind, URL: rawURL, Err: err}
	if err != nil {
		pe.Message = err.Error()
	}
	return pe
}

// Error implements error.
func (e *ProbeError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.URL)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.URL, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ProbeError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *ProbeError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}
