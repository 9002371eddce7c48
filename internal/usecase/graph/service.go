// Package graph builds the product relationship graph and stores its node embeddings.
package graph

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/furnidex/internal/domain/catalog"
	domgraph "github.com/kailas-cloud/furnidex/internal/domain/graph"
)

// Config groups edge construction, node2vec training and the text input weights.
type Config struct {
	Build   domgraph.BuildConfig
	Embed   domgraph.EmbedConfig
	Weights catalog.InputWeights
}

// DefaultConfig returns the standard graph parameters.
func DefaultConfig() Config {
	return Config{
		Build:   domgraph.DefaultBuildConfig(),
		Embed:   domgraph.DefaultEmbedConfig(),
		Weights: catalog.DefaultInputWeights(),
	}
}

// Stats describes a finished build.
type Stats struct {
	Nodes    int
	Edges    int
	Embedded int
	Isolated int
}

// Service builds and persists the graph table.
type Service struct {
	embed  Embedder
	table  TableWriter
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// New creates a graph builder.
func New(embed Embedder, table TableWriter, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{embed: embed, table: table, cfg: cfg, logger: logger, now: time.Now}
}

// Build embeds item text, links items, learns node embeddings and saves them.
// Nodes without edges get no embedding; the indexer stores a zero vector for them.
func (s *Service) Build(ctx context.Context, items []catalog.Item, progress Progress) (domgraph.Table, Stats, error) {
	textVecs := make(map[string][]float32, len(items))
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return nil, Stats{}, err
		}
		res, err := s.embed.Embed(ctx, it.EmbeddingInput(s.cfg.Weights))
		if err != nil {
			return nil, Stats{}, fmt.Errorf("embed %s: %w", it.ID, err)
		}
		textVecs[it.ID] = res.Embedding
		if progress != nil {
			_ = progress.Add(1)
		}
	}

	g := domgraph.Build(items, textVecs, s.cfg.Build)
	table := domgraph.Embed(g, s.cfg.Embed)

	stats := Stats{Nodes: g.Len(), Edges: g.EdgeCount(), Embedded: len(table)}
	for i := range g.Len() {
		if g.Degree(i) == 0 {
			stats.Isolated++
		}
	}

	if err := s.table.Save(table, s.now().UTC()); err != nil {
		return nil, stats, fmt.Errorf("save graph table: %w", err)
	}
	s.logger.Info("graph table built",
		zap.Int("nodes", stats.Nodes),
		zap.Int("edges", stats.Edges),
		zap.Int("embedded", stats.Embedded),
		zap.Int("isolated", stats.Isolated),
	)
	return table, stats, nil
}
