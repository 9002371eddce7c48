// Package indexing turns catalog items into multimodal vector records and uploads them in batches.
package indexing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/furnidex/internal/domain"
	"github.com/kailas-cloud/furnidex/internal/domain/batch"
	"github.com/kailas-cloud/furnidex/internal/domain/catalog"
	"github.com/kailas-cloud/furnidex/internal/domain/vector"
	"github.com/kailas-cloud/furnidex/internal/metrics"
)

// Config controls batching and retries.
type Config struct {
	BatchSize int
	Attempts  int
	BaseDelay time.Duration
	Weights   catalog.InputWeights
}

// DefaultConfig returns batches of 5 with three attempts starting at 500ms.
func DefaultConfig() Config {
	return Config{BatchSize: 5, Attempts: 3, BaseDelay: 500 * time.Millisecond, Weights: catalog.DefaultInputWeights()}
}

// Deps are the pipeline collaborators.
type Deps struct {
	Writer Writer
	Text   Embedder
	Images ImageEmbedder
	Source ImageSource
	Decode ImageDecoder
	Colors ColorExtractor
	Graph  GraphTable
}

// Service runs the indexing pipeline. Items are processed sequentially.
type Service struct {
	deps   Deps
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// New creates an indexing service.
func New(deps Deps, cfg Config, logger *zap.Logger) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{deps: deps, cfg: cfg, logger: logger, now: time.Now}
}

// Run indexes items and reports per-item outcomes. Image and graph problems
// degrade an item to zero vectors; dimension mismatches, text embedding failures
// and exhausted upload retries abort the run.
func (s *Service) Run(ctx context.Context, items []catalog.Item, progress Progress) (*batch.Report, error) {
	rep := &batch.Report{}
	created, err := s.deps.Writer.EnsureIndex(ctx)
	if err != nil {
		return rep, fmt.Errorf("ensure index: %w", err)
	}
	rep.Created = created

	// Results join the report only once their batch is written.
	pending := make([]catalog.Indexed, 0, s.cfg.BatchSize)
	results := make([]batch.Result, 0, s.cfg.BatchSize)
	flush := func() error {
		if err := s.upload(ctx, pending, rep); err != nil {
			return err
		}
		for _, res := range results {
			rep.Add(res)
		}
		pending, results = pending[:0], results[:0]
		return nil
	}
	for _, it := range items {
		rec, res, err := s.Record(ctx, it)
		if err != nil {
			return rep, err
		}
		pending = append(pending, rec)
		results = append(results, res)
		if progress != nil {
			_ = progress.Add(1)
		}

		if len(pending) == s.cfg.BatchSize {
			if err := flush(); err != nil {
				return rep, err
			}
		}
	}
	if len(pending) > 0 {
		if err := flush(); err != nil {
			return rep, err
		}
	}

	s.logger.Info("indexing finished",
		zap.Int("indexed", rep.Indexed()),
		zap.Int("degraded", len(rep.Degraded())),
		zap.Int("batches", rep.Batches),
		zap.Int("retries", rep.Retries),
	)
	return rep, nil
}

// Record builds the vector record for one item without writing it.
func (s *Service) Record(ctx context.Context, it catalog.Item) (catalog.Indexed, batch.Result, error) {
	dims := s.deps.Writer.Dims()
	vecs := make(map[vector.Space][]float32, len(vector.All))

	text, err := s.deps.Text.Embed(ctx, it.EmbeddingInput(s.cfg.Weights))
	if err != nil {
		return catalog.Indexed{}, batch.Result{}, fmt.Errorf("embed text of %s: %w", it.ID, err)
	}
	vecs[vector.Text] = text.Embedding

	var (
		fallbacks []vector.Space
		cause     error
		palette   []string
	)
	fallback := func(err error, spaces ...vector.Space) {
		fallbacks = append(fallbacks, spaces...)
		if cause == nil {
			cause = err
		}
		for _, sp := range spaces {
			metrics.IndexFallbacksTotal.WithLabelValues(string(sp)).Inc()
		}
	}

	imgVec, colorVec, palette, err := s.visual(ctx, it)
	if err != nil {
		s.logger.Warn("image unavailable, indexing zero image and color vectors",
			zap.String("product_id", it.ID), zap.Error(err))
		fallback(err, vector.Image, vector.Color)
	} else {
		vecs[vector.Image] = imgVec
		vecs[vector.Color] = colorVec
	}

	g, ok, err := s.deps.Graph.Get(it.ID)
	if err != nil {
		return catalog.Indexed{}, batch.Result{}, fmt.Errorf("graph vector of %s: %w", it.ID, err)
	}
	if ok {
		vecs[vector.Graph] = g
	} else {
		fallback(fmt.Errorf("no graph embedding for %s", it.ID), vector.Graph)
	}

	rec, err := vector.NewRecord(dims, vecs)
	if err != nil {
		return catalog.Indexed{}, batch.Result{}, fmt.Errorf("item %s: %w", it.ID, err)
	}

	res := batch.NewOK(it.ID)
	if len(fallbacks) > 0 {
		res = batch.NewDegraded(it.ID, fallbacks, cause)
	}
	return catalog.Indexed{Item: it, Vectors: rec, Palette: palette, IndexedAt: s.now().UTC()}, res, nil
}

// visual fetches the primary image once and derives both the image embedding
// and the color descriptor from it.
func (s *Service) visual(ctx context.Context, it catalog.Item) ([]float32, []float32, []string, error) {
	if it.Image == "" {
		return nil, nil, nil, fmt.Errorf("item has no image: %w", domain.ErrInvalidImage)
	}
	data, mime, err := s.deps.Source.Fetch(ctx, it.Image)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("fetch image: %w", err)
	}
	img, err := s.deps.Decode(data)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("decode image: %w", err)
	}
	emb, err := s.deps.Images.EmbedImage(ctx, data, mime)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("embed image: %w", err)
	}
	f, err := s.deps.Colors.Extract(img)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("extract colors: %w", err)
	}
	return emb.Embedding, f.Vector, f.Palette(), nil
}

// upload writes one batch, retrying with doubling backoff.
func (s *Service) upload(ctx context.Context, records []catalog.Indexed, rep *batch.Report) error {
	delay := s.cfg.BaseDelay
	var lastErr error
	for attempt := 1; attempt <= s.cfg.Attempts; attempt++ {
		if attempt > 1 {
			rep.Retries++
			metrics.IndexRetriesTotal.Inc()
			s.logger.Warn("retrying batch upload",
				zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(lastErr))
			if err := sleep(ctx, delay); err != nil {
				return err
			}
			delay *= 2
		}
		lastErr = s.deps.Writer.UpsertBatch(ctx, records)
		if lastErr == nil {
			rep.Batches++
			metrics.IndexBatchesTotal.WithLabelValues("ok").Inc()
			return nil
		}
		if errors.Is(lastErr, context.Canceled) {
			break
		}
	}
	metrics.IndexBatchesTotal.WithLabelValues("failed").Inc()
	return fmt.Errorf("upload batch starting at %s after %d attempts: %w: %w",
		records[0].Item.ID, s.cfg.Attempts, domain.ErrIndexWriteFailed, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
