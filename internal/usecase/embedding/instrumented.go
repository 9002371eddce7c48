// Package embedding holds the decorators layered around the embedding provider.
package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/furnidex/internal/domain"
	logpkg "github.com/kailas-cloud/furnidex/internal/logger"
)

// InstrumentedEmbedder logs every provider call and adds its latency to the
// request's wide event as embed_text_ms or embed_image_ms. Transport metrics
// (requests, duration, tokens) are recorded in transport/openai.
type InstrumentedEmbedder struct {
	inner    domain.MultimodalEmbedder
	provider string
	model    string
	logger   *zap.Logger
}

// NewInstrumentedEmbedder wraps an embedder with observability.
func NewInstrumentedEmbedder(
	inner domain.MultimodalEmbedder, provider, model string, logger *zap.Logger,
) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{
		inner:    inner,
		provider: provider,
		model:    model,
		logger:   logger,
	}
}

// Embed delegates to the inner embedder and logs the outcome.
func (p *InstrumentedEmbedder) Embed(
	ctx context.Context, text string,
) (domain.EmbeddingResult, error) {
	start := time.Now()
	result, err := p.inner.Embed(ctx, text)
	return p.observe(ctx, "text", start, result, err)
}

// EmbedImage delegates to the inner embedder and logs the outcome.
func (p *InstrumentedEmbedder) EmbedImage(
	ctx context.Context, data []byte, mimeType string,
) (domain.EmbeddingResult, error) {
	start := time.Now()
	result, err := p.inner.EmbedImage(ctx, data, mimeType)
	return p.observe(ctx, "image", start, result, err)
}

func (p *InstrumentedEmbedder) observe(
	ctx context.Context, modality string, start time.Time, result domain.EmbeddingResult, err error,
) (domain.EmbeddingResult, error) {
	duration := time.Since(start)
	logpkg.AddFields(ctx, zap.Int64("embed_"+modality+"_ms", duration.Milliseconds()))

	if err != nil {
		p.logger.Error("Embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.String("modality", modality),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed %s: %w", modality, err)
	}

	p.logger.Debug("Embedding request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.String("modality", modality),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}
