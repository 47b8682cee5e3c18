package domain

import "errors"

// Sentinel errors for cross-provider error classification.
// Metric source adapters should wrap these so callers can handle error
// categories uniformly without importing provider-specific SDKs.
//
//	return fmt.Errorf("failed to fetch metrics: %w", domain.ErrNotFound)
var (
	// ErrNotFound indicates the requested entity does not exist at the
	// provider.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates the request was rejected due to
	// invalid, expired, or missing credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates the provider throttled the request.
	ErrRateLimited = errors.New("rate limited")
)
