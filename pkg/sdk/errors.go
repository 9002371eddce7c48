package furnidex

import "github.com/kailas-cloud/furnidex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound               = domain.ErrNotFound
	ErrInvalidQuery           = domain.ErrInvalidQuery
	ErrInvalidImage           = domain.ErrInvalidImage
	ErrUpstreamUnavailable    = domain.ErrUpstreamUnavailable
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrRateLimited            = domain.ErrRateLimited
	ErrIndexWriteFailed       = domain.ErrIndexWriteFailed
	ErrDimensionMismatch      = domain.ErrDimensionMismatch
)
