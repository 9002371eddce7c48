package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/furnidex/internal/bootstrap"
	"github.com/kailas-cloud/furnidex/internal/domain/catalog"
	domgraph "github.com/kailas-cloud/furnidex/internal/domain/graph"
	logpkg "github.com/kailas-cloud/furnidex/internal/logger"
	"github.com/kailas-cloud/furnidex/internal/repository/graphtable"
	graphuc "github.com/kailas-cloud/furnidex/internal/usecase/graph"
)

func newGraphCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Build the relationship graph and store node2vec embeddings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := st.loadCatalog(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return st.buildGraph(cmd, items)
		},
	}
}

func (st *state) graphConfig() graphuc.Config {
	g := st.cfg.Graph
	return graphuc.Config{
		Build: domgraph.BuildConfig{
			TopK:            g.TopK,
			SimilarityFloor: g.SimilarityFloor,
			AttributeBase:   g.AttributeBase,
			AttributeExtra:  g.AttributeExtra,
		},
		Embed: domgraph.EmbedConfig{
			Dim:          st.cfg.Index.Dims.Graph,
			WalkLength:   g.WalkLength,
			WalksPerNode: g.WalksPerNode,
			Window:       g.Window,
			Negatives:    g.Negatives,
			Epochs:       g.Epochs,
			LearningRate: g.LearningRate,
			P:            g.P,
			Q:            g.Q,
			Seed:         g.Seed,
		},
		Weights: st.cfg.Index.InputWeights,
	}
}

// buildGraph embeds item text (no store needed beyond the embedding cache) and
// writes the learned table.
func (st *state) buildGraph(cmd *cobra.Command, items []catalog.Item) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	store, err := bootstrap.OpenStore(ctx, st.cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()
	emb := bootstrap.NewEmbedders(st.cfg.Embedding, store, logpkg.Component(st.logger, "embedding"))

	path, err := st.graphTablePath()
	if err != nil {
		return err
	}
	table, err := graphtable.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = table.Close() }()

	svc := graphuc.New(emb.Text, table, st.graphConfig(), logpkg.Component(st.logger, "graph"))
	start := time.Now()
	_, stats, err := svc.Build(ctx, items, st.newBar(out, len(items), "[cyan]Graph[reset]"))
	if err != nil {
		return fmt.Errorf("build graph: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Graph: %d nodes, %d edges, %d embedded, %d isolated in %s -> %s\n",
		stats.Nodes, stats.Edges, stats.Embedded, stats.Isolated, time.Since(start).Round(time.Millisecond), path)
	return nil
}

func newInspectCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Show metadata of the stored graph table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := graphtable.OpenReadOnly(st.cfg.Storage.GraphTable)
			if err != nil {
				return err
			}
			defer func() { _ = table.Close() }()
			meta, err := table.Meta()
			if err != nil {
				return err
			}
			if meta.Nodes == 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Graph table %s is empty; run \"furnidex-index graph\"\n",
					st.cfg.Storage.GraphTable)
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Graph table %s: %d vectors of dim %d, built %s\n",
				st.cfg.Storage.GraphTable, meta.Nodes, meta.Dim, meta.BuiltAt.Format(time.RFC3339))
			if meta.Dim != st.cfg.Index.Dims.Graph {
				return fmt.Errorf("graph table dim %d does not match index.dims.graph %d", meta.Dim, st.cfg.Index.Dims.Graph)
			}
			return nil
		},
	}
}
