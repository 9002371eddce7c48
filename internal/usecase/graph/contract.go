package graph

import (
	"context"
	"time"

	"github.com/kailas-cloud/furnidex/internal/domain"
	domgraph "github.com/kailas-cloud/furnidex/internal/domain/graph"
)

// Embedder vectorizes item text for similarity edges.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// TableWriter persists the learned embeddings.
type TableWriter interface {
	Save(t domgraph.Table, builtAt time.Time) error
}

// Progress is advanced once per embedded item.
type Progress interface {
	Add(n int) error
}
