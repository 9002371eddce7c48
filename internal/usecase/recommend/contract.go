package recommend

import (
	"context"
	"image"

	"github.com/kailas-cloud/furnidex/internal/domain"
	"github.com/kailas-cloud/furnidex/internal/domain/color"
	"github.com/kailas-cloud/furnidex/internal/domain/compromise"
	"github.com/kailas-cloud/furnidex/internal/domain/preference"
	domrec "github.com/kailas-cloud/furnidex/internal/domain/recommend"
	"github.com/kailas-cloud/furnidex/internal/domain/search/filter"
	"github.com/kailas-cloud/furnidex/internal/domain/vector"
)

// ProductIndex is the vector index the orchestrator searches.
type ProductIndex interface {
	Search(
		ctx context.Context, space vector.Space, vec []float32, k int,
		filters filter.Expression, threshold float64,
	) ([]domrec.Candidate, error)
	Vector(ctx context.Context, id string, space vector.Space) ([]float32, error)
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// ImageEmbedder vectorizes an uploaded photo.
type ImageEmbedder interface {
	EmbedImage(ctx context.Context, data []byte, mime string) (domain.EmbeddingResult, error)
}

// PreferenceExtractor derives constraints from query text and its embedding.
type PreferenceExtractor interface {
	Extract(text string, queryVec []float32) preference.Constraints
}

// Scorer analyses one candidate against the constraints.
type Scorer interface {
	Score(cand domrec.Candidate, c preference.Constraints) compromise.Analysis
}

// ColorExtractor computes a color descriptor from a decoded image.
type ColorExtractor interface {
	Extract(img image.Image) (color.Features, error)
}

// ImageDecoder turns uploaded bytes into an image.
type ImageDecoder func(data []byte) (image.Image, error)
