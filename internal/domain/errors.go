package domain

import "errors"

var (
	// ErrNotFound signals a missing product.
	ErrNotFound = errors.New("not found")
	// ErrInvalidQuery signals an empty or malformed query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidImage signals an image that cannot be decoded.
	ErrInvalidImage = errors.New("invalid image")
	// ErrUpstreamUnavailable signals that the vector index or embedding model is unreachable.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrIndexWriteFailed signals a batch upload that exhausted its retry budget.
	ErrIndexWriteFailed = errors.New("index write failed")
	// ErrDimensionMismatch signals a vector of the wrong length for its space.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
