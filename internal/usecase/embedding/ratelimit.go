package embedding

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/kailas-cloud/furnidex/internal/domain"
)

// LimitedEmbedder throttles provider calls with a token bucket.
// Callers wait for a token; a wait that cannot finish before the context deadline fails with domain.ErrRateLimited.
type LimitedEmbedder struct {
	inner   domain.MultimodalEmbedder
	limiter *rate.Limiter
}

// NewLimitedEmbedder allows rps sustained calls with the given burst. rps <= 0 disables throttling.
func NewLimitedEmbedder(inner domain.MultimodalEmbedder, rps float64, burst int) *LimitedEmbedder {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &LimitedEmbedder{inner: inner, limiter: rate.NewLimiter(limit, burst)}
}

// Embed implements domain.Embedder.
func (l *LimitedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := l.wait(ctx); err != nil {
		return domain.EmbeddingResult{}, err
	}
	return l.inner.Embed(ctx, text)
}

// EmbedImage implements domain.ImageEmbedder.
func (l *LimitedEmbedder) EmbedImage(ctx context.Context, data []byte, mimeType string) (domain.EmbeddingResult, error) {
	if err := l.wait(ctx); err != nil {
		return domain.EmbeddingResult{}, err
	}
	return l.inner.EmbedImage(ctx, data, mimeType)
}

func (l *LimitedEmbedder) wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("embedding limiter: %v: %w", err, domain.ErrRateLimited)
	}
	return nil
}
