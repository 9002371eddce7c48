package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/furnidex/internal/bootstrap"
	"github.com/kailas-cloud/furnidex/internal/domain/catalog"
	"github.com/kailas-cloud/furnidex/internal/domain/color"
	"github.com/kailas-cloud/furnidex/internal/domain/vector"
	logpkg "github.com/kailas-cloud/furnidex/internal/logger"
	"github.com/kailas-cloud/furnidex/internal/metrics"
	"github.com/kailas-cloud/furnidex/internal/repository/graphtable"
	"github.com/kailas-cloud/furnidex/internal/transport/imagefetch"
	indexinguc "github.com/kailas-cloud/furnidex/internal/usecase/indexing"
)

func newRunCmd(st *state) *cobra.Command {
	var withGraph bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Index every catalog product into the multimodal vector index",
		Long: `Embeds text, image, color and graph vectors for every product and uploads them in batches.
Products whose image cannot be fetched get zero image and color vectors; products
missing from the graph table get a zero graph vector. Run "graph" first, or pass --with-graph.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := st.loadCatalog(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if withGraph {
				if err := st.buildGraph(cmd, items); err != nil {
					return err
				}
			}
			return st.index(cmd, items)
		},
	}
	cmd.Flags().BoolVar(&withGraph, "with-graph", false, "build the graph table before indexing")
	return cmd
}

func (st *state) index(cmd *cobra.Command, items []catalog.Item) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterIndexMetrics()

	store, err := bootstrap.OpenStore(ctx, st.cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	products, err := bootstrap.NewProductRepo(store, st.cfg.Index)
	if err != nil {
		return err
	}
	emb := bootstrap.NewEmbedders(st.cfg.Embedding, store, logpkg.Component(st.logger, "embedding"))

	path, err := st.graphTablePath()
	if err != nil {
		return err
	}
	var graph indexinguc.GraphTable = graphtable.Empty{}
	table, err := graphtable.OpenReadOnly(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		st.logger.Warn("graph table not built, indexing with zero graph vectors", zap.String("path", path))
	case err != nil:
		return err
	default:
		defer func() { _ = table.Close() }()
		graph = table
	}

	svc := indexinguc.New(indexinguc.Deps{
		Writer: products,
		Text:   emb.Text,
		Images: emb.Images,
		Source: imagefetch.New(time.Duration(st.cfg.Catalog.ImageTimeoutSec)*time.Second,
			int64(st.cfg.Catalog.ImageMaxMB)<<20),
		Decode: imagefetch.Decode,
		Colors: color.NewExtractor(st.cfg.Color.Extractor()),
		Graph:  graph,
	}, indexinguc.Config{
		BatchSize: st.cfg.Index.BatchSize,
		Attempts:  st.cfg.Index.Retry.Attempts,
		BaseDelay: st.cfg.Index.Retry.BaseDelay(),
		Weights:   st.cfg.Index.InputWeights,
	}, logpkg.Component(st.logger, "indexer"))

	start := time.Now()
	rep, err := svc.Run(ctx, items, st.newBar(out, len(items), "[cyan]Indexing[reset]"))
	if err != nil {
		return fmt.Errorf("indexing stopped after %d products: %w", rep.Indexed(), err)
	}

	if rep.Created {
		_, _ = fmt.Fprintln(out, "Created index")
	}
	_, _ = fmt.Fprintf(out, "Indexed %d products in %d batches (%d retries) in %s\n",
		rep.Indexed(), rep.Batches, rep.Retries, time.Since(start).Round(time.Millisecond))

	fallbacks := rep.Fallbacks()
	spaces := make([]string, 0, len(fallbacks))
	for sp := range fallbacks {
		spaces = append(spaces, string(sp))
	}
	sort.Strings(spaces)
	for _, sp := range spaces {
		_, _ = fmt.Fprintf(out, "  zero %s vectors: %d\n", sp, fallbacks[vector.Space(sp)])
	}
	return nil
}
