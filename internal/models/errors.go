package models

import (
	"errors"
	"fmt"
)

// ValidationError reports a malformed or missing input field. Validation
// failures never reach the network.
type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

// ErrNotFoundOrExpired is returned on a result-cache miss. The store never
// distinguishes "never existed" from "expired"; both collapse here.
var ErrNotFoundOrExpired = errors.New("search results not found or expired")

// ErrCachePersistence marks a failed result-cache write. Non-fatal: the
// search response is still usable, only cross-request filtering is lost.
var ErrCachePersistence = errors.New("failed to persist search results")

// AuthError means the credential exchange with the flight provider failed.
// Fatal for the current request and never retried.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return "flight provider authentication failed: " + e.Err.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// UpstreamTransientError is a network failure or retriable status from the
// flight provider, surfaced only after retries are exhausted.
type UpstreamTransientError struct {
	Status int
	Err    error
}

func (e *UpstreamTransientError) Error() string {
	if e.Err != nil {
		return "flight provider unavailable: " + e.Err.Error()
	}
	return fmt.Sprintf("flight provider unavailable (status %d)", e.Status)
}

func (e *UpstreamTransientError) Unwrap() error {
	return e.Err
}

// UpstreamRejectedError is a non-retriable 4xx from the flight provider,
// carrying the upstream error detail verbatim.
type UpstreamRejectedError struct {
	Status int
	Detail string
}

func (e *UpstreamRejectedError) Error() string {
	return fmt.Sprintf("flight provider rejected the request (status %d): %s", e.Status, e.Detail)
}
