package graph

import (
	"context"
	"strings"
	"time"

	"github.com/kailas-cloud/furnidex/internal/domain"
	"github.com/kailas-cloud/furnidex/internal/domain/catalog"
	domgraph "github.com/kailas-cloud/furnidex/internal/domain/graph"
)

// categoryEmbedder maps sofas and lamps to orthogonal vectors.
type categoryEmbedder struct {
	calls int
	err   error
}

func (m *categoryEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	if strings.Contains(text, "lamp") {
		return domain.EmbeddingResult{Embedding: []float32{0, 1}}, nil
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 0}}, nil
}

type mockTable struct {
	saved   domgraph.Table
	builtAt time.Time
	err     error
}

func (m *mockTable) Save(t domgraph.Table, builtAt time.Time) error {
	if m.err != nil {
		return m.err
	}
	m.saved = t
	m.builtAt = builtAt
	return nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Embed.Dim = 8
	cfg.Embed.WalkLength = 10
	cfg.Embed.WalksPerNode = 5
	return cfg
}

func furniture() []catalog.Item {
	return []catalog.Item{
		{ID: "sofa-1", Name: "A", Category: "sofa", Colors: []string{"blue"}},
		{ID: "sofa-2", Name: "B", Category: "sofa", Colors: []string{"gray"}},
		{ID: "sofa-3", Name: "C", Category: "sofa", Styles: []string{"modern"}},
		{ID: "lamp-1", Name: "D", Category: "lamp"},
	}
}
