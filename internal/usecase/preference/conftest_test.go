package preference

import (
	"context"
	"math"

	"github.com/kailas-cloud/furnidex/internal/domain"
)

// queryVec is the unit query used by every test; anchors are placed at a chosen cosine from it.
var queryVec = []float32{1, 0, 0}

func at(sim float64) []float32 {
	return []float32{float32(sim), float32(math.Sqrt(1 - sim*sim)), 0}
}

// promptEmbedder returns preset vectors per prompt text; unknown prompts are orthogonal to queryVec.
type promptEmbedder struct {
	vecs  map[string][]float32
	err   error
	calls int
}

func (p *promptEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	p.calls++
	if p.err != nil {
		return domain.EmbeddingResult{}, p.err
	}
	if v, ok := p.vecs[text]; ok {
		return domain.EmbeddingResult{Embedding: v}, nil
	}
	return domain.EmbeddingResult{Embedding: []float32{0, 0, 1}}, nil
}
