package furnidex

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/furnidex/internal/domain"
)

// Embedder converts text and photos into vectors of one shared space, such as CLIP.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
	EmbedImage(ctx context.Context, data []byte, mimeType string) (EmbeddingResult, error)
}

// HealthChecker is optionally implemented by an Embedder. When present,
// Client.Health probes the provider through it.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// embedderAdapter wraps a public Embedder to satisfy domain.MultimodalEmbedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return toDomainResult(r), nil
}

func (a *embedderAdapter) EmbedImage(ctx context.Context, data []byte, mime string) (domain.EmbeddingResult, error) {
	r, err := a.inner.EmbedImage(ctx, data, mime)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed image: %w", err)
	}
	return toDomainResult(r), nil
}

func toDomainResult(r EmbeddingResult) domain.EmbeddingResult {
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}
}
