package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstreamFetch signals a non-success or malformed response from an upstream source.
	ErrUpstreamFetch = errors.New("upstream fetch failed")
	// ErrNoCandidates signals an empty catalog or a lookup without any candidates.
	ErrNoCandidates = errors.New("no candidates found")
	// ErrEmbeddingUnavailable signals that the embedding backend is absent or permanently failing.
	ErrEmbeddingUnavailable = errors.New("embedding backend unavailable")
	// ErrEmbeddingProviderError signals a transient embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationUnavailable signals that the long-form generator is absent or failed.
	ErrGenerationUnavailable = errors.New("generation backend unavailable")
	// ErrInvalidRequest signals a request that failed validation.
	ErrInvalidRequest = errors.New("invalid request")
)

// UpstreamError wraps ErrUpstreamFetch with the failing source and HTTP status.
// Status is 0 when the failure happened before a response was received.
type UpstreamError struct {
	Source string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("%s: %s returned status %d", ErrUpstreamFetch.Error(), e.Source, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", ErrUpstreamFetch.Error(), e.Source, e.Err)
	default:
		return fmt.Sprintf("%s: %s", ErrUpstreamFetch.Error(), e.Source)
	}
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *UpstreamError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUpstreamFetch, e.Err}
	}
	return []error{ErrUpstreamFetch}
}

// NewUpstreamStatusError creates an upstream error for a non-success HTTP status.
func NewUpstreamStatusError(source string, status int) error {
	return &UpstreamError{Source: source, Status: status}
}

// NewUpstreamError creates an upstream error for a transport or decoding failure.
func NewUpstreamError(source string, err error) error {
	return &UpstreamError{Source: source, Err: err}
}
