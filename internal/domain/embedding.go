package domain

import "context"

// KeyPrefix namespaces every key furnidex writes to the store.
const KeyPrefix = "furnidex:"

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// ImageEmbedder encodes an image into the same vector space family as Embedder.
type ImageEmbedder interface {
	EmbedImage(ctx context.Context, data []byte, mimeType string) (EmbeddingResult, error)
}

// MultimodalEmbedder encodes both text and images.
type MultimodalEmbedder interface {
	Embedder
	ImageEmbedder
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}
