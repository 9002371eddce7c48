package furnidex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/furnidex/internal/db"
	dbRedis "github.com/kailas-cloud/furnidex/internal/db/redis"
	"github.com/kailas-cloud/furnidex/internal/domain"
	"github.com/kailas-cloud/furnidex/internal/domain/batch"
	"github.com/kailas-cloud/furnidex/internal/domain/catalog"
	"github.com/kailas-cloud/furnidex/internal/domain/color"
	domrec "github.com/kailas-cloud/furnidex/internal/domain/recommend"
	"github.com/kailas-cloud/furnidex/internal/domain/vector"
	"github.com/kailas-cloud/furnidex/internal/repository/graphtable"
	"github.com/kailas-cloud/furnidex/internal/repository/product"
	"github.com/kailas-cloud/furnidex/internal/transport/imagefetch"
	scoring "github.com/kailas-cloud/furnidex/internal/usecase/compromise"
	healthuc "github.com/kailas-cloud/furnidex/internal/usecase/health"
	indexinguc "github.com/kailas-cloud/furnidex/internal/usecase/indexing"
	preferenceuc "github.com/kailas-cloud/furnidex/internal/usecase/preference"
	recommenduc "github.com/kailas-cloud/furnidex/internal/usecase/recommend"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	imageFetchTimeout       = 15 * time.Second
	imageMaxBytes           = 10 << 20
)

// Internal interfaces, swapped for mocks in tests.
type recommender interface {
	Recommend(ctx context.Context, q domrec.Query) (domrec.Response, error)
	SimilarTo(ctx context.Context, id string, space vector.Space, limit int) ([]domrec.Candidate, error)
	ByImage(
		ctx context.Context, data []byte, mime string, space vector.Space, category string, limit int,
	) ([]domrec.Scored, error)
}

type indexer interface {
	Run(ctx context.Context, items []catalog.Item, progress indexinguc.Progress) (*batch.Report, error)
}

type store interface {
	Ping(ctx context.Context) error
	Close()
}

// Client is the embedded furnidex entry point. It talks to Redis and the
// embedding provider directly, without the HTTP server.
type Client struct {
	store     store
	rec       recommender
	indexer   indexer
	healthSvc healthUseCase
	graph     io.Closer
	obs       *observer
}

// New creates a Client, connects to Redis and embeds the attribute vocabulary.
// The provided context bounds the readiness check and the vocabulary embedding.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("furnidex: database address required (use WithRedis)")
	}
	if cfg.embedder == nil {
		return nil, errors.New("furnidex: embedder required (use WithEmbedder)")
	}
	dims, err := cfg.vectorDims()
	if err != nil {
		return nil, err
	}

	s, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.addrs, Password: cfg.password})
	if err != nil {
		return nil, fmt.Errorf("furnidex: create redis store: %w", err)
	}
	if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		s.Close()
		return nil, fmt.Errorf("furnidex: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		s.Close()
		return nil, err
	}

	repo := product.New(s, product.IndexConfig{
		Dims:        dims,
		Algorithm:   db.VectorHNSW,
		M:           cfg.hnswM,
		EFConstruct: cfg.hnswEFConstruct,
	})
	c, err := wireClient(ctx, s, repo, cfg, obs)
	if err != nil {
		s.Close()
		return nil, err
	}
	return c, nil
}

func (cfg *clientConfig) vectorDims() (vector.Dims, error) {
	dims := vector.DefaultDims()
	for sp, d := range cfg.dims {
		vs, err := vector.ParseSpace(string(sp))
		if err != nil {
			return nil, fmt.Errorf("furnidex: %w", err)
		}
		dims[vs] = d
	}
	if err := dims.Validate(); err != nil {
		return nil, fmt.Errorf("furnidex: %w", err)
	}
	return dims, nil
}

type productIndex interface {
	indexinguc.Writer
	recommenduc.ProductIndex
	healthuc.IndexCounter
}

func wireClient(ctx context.Context, s store, repo productIndex, cfg *clientConfig, obs *observer) (*Client, error) {
	emb := &embedderAdapter{inner: cfg.embedder}
	logger := zap.NewNop()

	prefs, err := preferenceuc.New(ctx, emb, preferenceuc.DefaultConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("furnidex: embed attribute vocabulary: %w", err)
	}

	colors := color.NewExtractor(color.DefaultConfig())
	recCfg := recommenduc.DefaultConfig()
	if cfg.strictFloor > 0 {
		recCfg.StrictFloor = cfg.strictFloor
	}
	if cfg.looseFloor > 0 {
		recCfg.LooseFloor = cfg.looseFloor
	}
	rec := recommenduc.New(recommenduc.Deps{
		Index:       repo,
		Embedder:    emb,
		Images:      emb,
		Preferences: prefs,
		Scorer:      scoring.New(scoring.DefaultConfig()),
		Colors:      colors,
		Decode:      imagefetch.Decode,
	}, recCfg, logger)

	var (
		graph  indexinguc.GraphTable = graphtable.Empty{}
		closer io.Closer
	)
	if cfg.graphTable != "" {
		t, err := graphtable.OpenReadOnly(cfg.graphTable)
		if err != nil {
			return nil, fmt.Errorf("furnidex: %w", err)
		}
		graph, closer = t, t
	}

	idxCfg := indexinguc.DefaultConfig()
	if cfg.batchSize > 0 {
		idxCfg.BatchSize = cfg.batchSize
	}
	idx := indexinguc.New(indexinguc.Deps{
		Writer: repo,
		Text:   emb,
		Images: emb,
		Source: imagefetch.New(imageFetchTimeout, imageMaxBytes),
		Decode: imagefetch.Decode,
		Colors: colors,
		Graph:  graph,
	}, idxCfg, logger)

	var embCheck healthuc.EmbeddingChecker
	if hc, ok := cfg.embedder.(HealthChecker); ok {
		embCheck = hc
	}

	return &Client{
		store:     s,
		rec:       rec,
		indexer:   idx,
		healthSvc: healthuc.New(s, repo, embCheck),
		graph:     closer,
		obs:       obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.graph != nil {
		_ = c.graph.Close()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, -1, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Recommend answers a free-text shopper query with tiered, explained results.
// A query nothing matches returns Found=false and a nil error.
func (c *Client) Recommend(ctx context.Context, query string, opts ...QueryOption) (out Recommendation, err error) {
	start := time.Now()
	defer func() { c.obs.observe("recommend", start, out.Len(), err) }()

	qc := newQueryConfig(SpaceText, opts)
	resp, err := c.rec.Recommend(ctx, domrec.Query{
		Text:     query,
		Category: qc.category,
		Limit:    qc.limit,
		Policy:   qc.policy,
	})
	if err != nil {
		return Recommendation{}, fmt.Errorf("recommend: %w", err)
	}
	return fromResponse(resp), nil
}

// Similar returns the products nearest to an indexed product in one space.
func (c *Client) Similar(ctx context.Context, id string, opts ...QueryOption) (out []Match, err error) {
	start := time.Now()
	defer func() { c.obs.observe("similar", start, len(out), err) }()

	qc := newQueryConfig(SpaceText, opts)
	sp, err := parseSpace(qc.space)
	if err != nil {
		return nil, err
	}
	cands, err := c.rec.SimilarTo(ctx, id, sp, qc.limit)
	if err != nil {
		return nil, fmt.Errorf("similar %s: %w", id, err)
	}
	out = make([]Match, 0, len(cands))
	for _, cand := range cands {
		out = append(out, fromCandidate(cand))
	}
	return out, nil
}

// SearchImage finds products resembling a photo in the image or color space.
func (c *Client) SearchImage(
	ctx context.Context, data []byte, mime string, opts ...QueryOption,
) (out []Match, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search_image", start, len(out), err) }()

	qc := newQueryConfig(SpaceImage, opts)
	sp, err := parseSpace(qc.space)
	if err != nil {
		return nil, err
	}
	scored, err := c.rec.ByImage(ctx, data, mime, sp, qc.category, qc.limit)
	if err != nil {
		return nil, fmt.Errorf("search image: %w", err)
	}
	return fromTier(scored), nil
}

// Index embeds and uploads products. Every product is validated first and a
// duplicate or invalid product aborts the call before anything is written.
func (c *Client) Index(ctx context.Context, products []Product) (out IndexReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("index", start, out.Indexed, err) }()

	items := make([]catalog.Item, 0, len(products))
	seen := make(map[string]struct{}, len(products))
	for i, p := range products {
		it := toItem(p)
		if err := it.Validate(); err != nil {
			return fromReport(nil), fmt.Errorf("product %d: %w: %w", i, domain.ErrInvalidQuery, err)
		}
		if _, dup := seen[it.ID]; dup {
			return fromReport(nil), fmt.Errorf("product %d: duplicate id %q: %w", i, it.ID, domain.ErrInvalidQuery)
		}
		seen[it.ID] = struct{}{}
		items = append(items, it)
	}

	rep, err := c.indexer.Run(ctx, items, nil)
	if err != nil {
		return fromReport(rep), fmt.Errorf("index: %w", err)
	}
	return fromReport(rep), nil
}

func parseSpace(s Space) (vector.Space, error) {
	sp, err := vector.ParseSpace(string(s))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	return sp, nil
}
