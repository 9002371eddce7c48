package preference

import (
	"context"

	"github.com/kailas-cloud/furnidex/internal/domain"
)

// Embedder vectorizes the vocabulary prompts.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
