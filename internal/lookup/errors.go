package lookup

import (
	"errors"
	"fmt"
)

// Common errors returned by the lookup client.
var (
	// ErrNotFound indicates the DOI was unresolvable or the search
	// returned zero results. A normal outcome, not a failure.
	ErrNotFound = errors.New("not found")

	// ErrAuthError indicates missing or rejected API credentials.
	ErrAuthError = errors.New("lookup authentication error")

	// ErrRateLimited indicates the upstream service refused the call.
	ErrRateLimited = errors.New("lookup rate limit exceeded")

	// ErrNetworkError indicates a connectivity problem.
	ErrNetworkError = errors.New("network error during lookup")

	// ErrInvalidResponse indicates an unparseable upstream payload.
	ErrInvalidResponse = errors.New("invalid lookup response")
)

// APIError represents a non-OK HTTP response from an upstream service.
type APIError struct {
	Service    string // "doi" or "cse"
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Service, e.StatusCode, e.Message)
}

// IsNotFound returns true if the error indicates a normal miss.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsTransient returns true if the error is worth retrying: network
// failures, 5xx responses, and rate limiting.
func IsTransient(err error) bool {
	if errors.Is(err, ErrNetworkError) || errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	return false
}
