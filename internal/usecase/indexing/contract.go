package indexing

import (
	"context"
	"image"

	"github.com/kailas-cloud/furnidex/internal/domain"
	"github.com/kailas-cloud/furnidex/internal/domain/catalog"
	"github.com/kailas-cloud/furnidex/internal/domain/color"
	"github.com/kailas-cloud/furnidex/internal/domain/vector"
)

// Writer persists indexed records.
type Writer interface {
	EnsureIndex(ctx context.Context) (bool, error)
	UpsertBatch(ctx context.Context, records []catalog.Indexed) error
	Dims() vector.Dims
}

// Embedder vectorizes the weighted item text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// ImageEmbedder vectorizes the primary product photo.
type ImageEmbedder interface {
	EmbedImage(ctx context.Context, data []byte, mime string) (domain.EmbeddingResult, error)
}

// ImageSource loads image bytes from a URL or local path.
type ImageSource interface {
	Fetch(ctx context.Context, location string) ([]byte, string, error)
}

// ColorExtractor computes the color descriptor.
type ColorExtractor interface {
	Extract(img image.Image) (color.Features, error)
}

// GraphTable resolves precomputed graph embeddings.
type GraphTable interface {
	Get(id string) ([]float32, bool, error)
}

// Progress is advanced once per processed item.
type Progress interface {
	Add(n int) error
}

// ImageDecoder turns fetched bytes into an image.
type ImageDecoder func(data []byte) (image.Image, error)
