package fetch

import (
	"context"
	"errors"
	"fmt"
)

// ErrKind classifies a failed retrieval.
type ErrKind string

const (
	ErrKindTimeout    ErrKind = "timeout"
	ErrKindTransport  ErrKind = "transport"
	ErrKindHTTPStatus ErrKind = "http_status"
)

// FetchError is the classified error returned for a target that could not
// be retrieved. Timeout and transport failures are transient and eligible
// for one retry; a non-2xx document response is not.
type FetchError struct {
	Kind    ErrKind
	Locator string
	Status  int
	Err     error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case ErrKindHTTPStatus:
		return fmt.Sprintf("fetch %s: status %d", e.Locator, e.Status)
	default:
		return fmt.Sprintf("fetch %s: %s: %v", e.Locator, e.Kind, e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is transient.
func (e *FetchError) Retryable() bool {
	return e.Kind == ErrKindTimeout || e.Kind == ErrKindTransport
}

// Classify wraps an underlying navigation error into a FetchError.
func Classify(locator string, err error) *FetchError {
	kind := ErrKindTransport
	if errors.Is(err, context.DeadlineExceeded) {
		kind = ErrKindTimeout
	}
	return &FetchError{Kind: kind, Locator: locator, Err: err}
}
