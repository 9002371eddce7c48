// Package recommend runs the staged retrieval: primary search, graph substitutes, tier classification.
package recommend

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/furnidex/internal/domain"
	"github.com/kailas-cloud/furnidex/internal/domain/compromise"
	"github.com/kailas-cloud/furnidex/internal/domain/preference"
	domrec "github.com/kailas-cloud/furnidex/internal/domain/recommend"
	"github.com/kailas-cloud/furnidex/internal/domain/search/filter"
	"github.com/kailas-cloud/furnidex/internal/domain/vector"
	"github.com/kailas-cloud/furnidex/internal/metrics"
)

// Config holds the similarity floors and candidate pool size.
type Config struct {
	StrictFloor float64
	LooseFloor  float64
	GraphFloor  float64
	ImageFloor  float64
	// PoolFactor multiplies the requested limit to size each KNN search.
	PoolFactor int
}

// DefaultConfig returns the production floors.
func DefaultConfig() Config {
	return Config{StrictFloor: 0.45, LooseFloor: 0.2, GraphFloor: 0.3, ImageFloor: 0.2, PoolFactor: 3}
}

// Floor returns the primary-search floor for a policy.
func (c Config) Floor(p domrec.Policy) float64 {
	if p == domrec.PolicyLoose {
		return c.LooseFloor
	}
	return c.StrictFloor
}

// Deps are the collaborators constructed once in main.
type Deps struct {
	Index       ProductIndex
	Embedder    Embedder
	Images      ImageEmbedder
	Preferences PreferenceExtractor
	Scorer      Scorer
	Colors      ColorExtractor
	Decode      ImageDecoder
}

// Service is the retrieval orchestrator. Queries are stateless.
type Service struct {
	deps   Deps
	cfg    Config
	logger *zap.Logger
}

// New creates the orchestrator.
func New(deps Deps, cfg Config, logger *zap.Logger) *Service {
	if cfg.PoolFactor <= 0 {
		cfg.PoolFactor = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{deps: deps, cfg: cfg, logger: logger}
}

// Recommend answers a free-text query with tiered results. Nothing matching is a
// NotFound response, not an error.
func (s *Service) Recommend(ctx context.Context, q domrec.Query) (domrec.Response, error) {
	q = q.Normalize()
	if err := q.Validate(); err != nil {
		return domrec.Response{}, err
	}

	emb, err := s.deps.Embedder.Embed(ctx, q.Text)
	if err != nil {
		return domrec.Response{}, fmt.Errorf("vectorize query: %w", err)
	}
	c := s.deps.Preferences.Extract(q.Text, emb.Embedding)

	trace := []domrec.State{domrec.StatePrimarySearch}
	k := q.Limit * s.cfg.PoolFactor
	floor := s.cfg.Floor(q.Policy)

	var within, over []domrec.Candidate
	if c.HasBudget() {
		atMost := filter.PriceAtMost(c.BudgetValue())
		within, err = s.deps.Index.Search(ctx, vector.Text, emb.Embedding, k, filter.ForQuery(q.Category, &atMost), floor)
		if err != nil {
			return domrec.Response{}, fmt.Errorf("primary search: %w", err)
		}
		above := filter.PriceAbove(c.BudgetValue())
		over, err = s.deps.Index.Search(ctx, vector.Text, emb.Embedding, k, filter.ForQuery(q.Category, &above), floor)
		if err != nil {
			return domrec.Response{}, fmt.Errorf("over-budget search: %w", err)
		}
	} else {
		within, err = s.deps.Index.Search(ctx, vector.Text, emb.Embedding, k, filter.ForQuery(q.Category, nil), floor)
		if err != nil {
			return domrec.Response{}, fmt.Errorf("primary search: %w", err)
		}
	}

	substituted := false
	if len(within) == 0 && c.HasBudget() {
		trace = append(trace, domrec.StateSubstituteSearch)
		metrics.SubstituteSearchesTotal.Inc()
		within, err = s.substitutes(ctx, emb.Embedding, q, c, floor)
		if err != nil {
			return domrec.Response{}, err
		}
		substituted = len(within) > 0
	}

	trace = append(trace, domrec.StateClassify)
	scored := make([]domrec.Scored, 0, len(within)+len(over))
	for _, cand := range append(within, over...) {
		scored = append(scored, domrec.Scored{Candidate: cand, Analysis: s.deps.Scorer.Score(cand, c)})
	}
	rs := domrec.Partition(scored, c).Truncate(q.Limit)
	trace = append(trace, domrec.StateDone)

	var resp domrec.Response
	if rs.IsEmpty() {
		resp = domrec.NotFound(notFoundReason(q, c), c)
	} else {
		strategy := domrec.StrategyFor(rs, substituted)
		resp = domrec.Found(strategy, explain(strategy, rs, c), c, rs)
		resp.MarketNote = compromise.MarketNote(c)
	}
	resp.Trace = trace

	observe(q.Policy, resp)
	s.logger.Debug("recommendation",
		zap.String("policy", string(q.Policy)),
		zap.String("outcome", string(resp.Outcome)),
		zap.String("strategy", string(resp.Strategy)),
		zap.Int("perfect", len(rs.Perfect)),
		zap.Int("alternatives", len(rs.Alternatives)),
		zap.Int("over_budget", len(rs.OverBudget)),
	)
	return resp, nil
}

// substitutes finds the best category match regardless of price and searches the
// graph space around it with the budget re-applied.
func (s *Service) substitutes(
	ctx context.Context, queryVec []float32, q domrec.Query, c preference.Constraints, floor float64,
) ([]domrec.Candidate, error) {
	refs, err := s.deps.Index.Search(ctx, vector.Text, queryVec, 1, filter.ForQuery(q.Category, nil), floor)
	if err != nil {
		return nil, fmt.Errorf("reference search: %w", err)
	}
	if len(refs) == 0 {
		return nil, nil
	}
	ref := refs[0].Item.ID

	graphVec, err := s.deps.Index.Vector(ctx, ref, vector.Graph)
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.Debug("reference has no graph vector", zap.String("product_id", ref))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reference graph vector: %w", err)
	}

	atMost := filter.PriceAtMost(c.BudgetValue())
	subs, err := s.deps.Index.Search(
		ctx, vector.Graph, graphVec, q.Limit*s.cfg.PoolFactor, filter.ForQuery(q.Category, &atMost), s.cfg.GraphFloor,
	)
	if err != nil {
		return nil, fmt.Errorf("substitute search: %w", err)
	}
	out := subs[:0]
	for _, cand := range subs {
		if cand.Item.ID != ref {
			out = append(out, cand)
		}
	}
	return out, nil
}

// SimilarTo returns the nearest neighbours of a stored product in one space, excluding itself.
func (s *Service) SimilarTo(ctx context.Context, id string, space vector.Space, limit int) ([]domrec.Candidate, error) {
	limit, err := checkLimit(limit)
	if err != nil {
		return nil, err
	}
	vec, err := s.deps.Index.Vector(ctx, id, space)
	if err != nil {
		return nil, fmt.Errorf("similar to %s: %w", id, err)
	}
	found, err := s.deps.Index.Search(ctx, space, vec, limit+1, filter.Expression{}, 0)
	if err != nil {
		return nil, fmt.Errorf("similar search: %w", err)
	}
	out := make([]domrec.Candidate, 0, limit)
	for _, cand := range found {
		if cand.Item.ID == id {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, cand)
	}
	return out, nil
}

// ByImage searches the image or color space from an uploaded photo.
func (s *Service) ByImage(
	ctx context.Context, data []byte, mime string, space vector.Space, category string, limit int,
) ([]domrec.Scored, error) {
	limit, err := checkLimit(limit)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty upload: %w", domain.ErrInvalidImage)
	}

	var vec []float32
	switch space {
	case vector.Image:
		res, err := s.deps.Images.EmbedImage(ctx, data, mime)
		if err != nil {
			return nil, fmt.Errorf("vectorize image: %w", err)
		}
		vec = res.Embedding
	case vector.Color:
		img, err := s.deps.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("decode upload: %w", err)
		}
		f, err := s.deps.Colors.Extract(img)
		if err != nil {
			return nil, fmt.Errorf("extract colors: %w", err)
		}
		vec = f.Vector
	default:
		return nil, fmt.Errorf("image search supports image or color space, got %q: %w", space, domain.ErrInvalidQuery)
	}

	found, err := s.deps.Index.Search(ctx, space, vec, limit, filter.ForQuery(category, nil), s.cfg.ImageFloor)
	if err != nil {
		return nil, fmt.Errorf("image search: %w", err)
	}
	out := make([]domrec.Scored, 0, len(found))
	for _, cand := range found {
		out = append(out, domrec.Scored{Candidate: cand, Analysis: s.deps.Scorer.Score(cand, preference.Constraints{})})
	}
	return out, nil
}

func checkLimit(limit int) (int, error) {
	if limit <= 0 {
		return domrec.DefaultLimit, nil
	}
	if limit > domrec.MaxLimit {
		return 0, fmt.Errorf("limit %d exceeds max %d: %w", limit, domrec.MaxLimit, domain.ErrInvalidQuery)
	}
	return limit, nil
}

func explain(s domrec.Strategy, rs domrec.ResultSet, c preference.Constraints) string {
	switch s {
	case domrec.StrategyDirectMatch:
		return fmt.Sprintf("Found %d products matching all your requirements", len(rs.Perfect))
	case domrec.StrategyGraphSubstitutes:
		return fmt.Sprintf("Nothing matched within your budget of $%.0f; showing %d similar alternatives that fit it",
			c.BudgetValue(), len(rs.Perfect)+len(rs.Alternatives))
	default:
		return fmt.Sprintf("Found %d perfect matches, %d alternatives with trade-offs and %d over-budget options",
			len(rs.Perfect), len(rs.Alternatives), len(rs.OverBudget))
	}
}

func notFoundReason(q domrec.Query, c preference.Constraints) string {
	switch {
	case c.HasBudget() && q.Category != "":
		return fmt.Sprintf("No %s products found near your request within $%.0f, and no similar substitutes fit that budget",
			q.Category, c.BudgetValue())
	case c.HasBudget():
		return fmt.Sprintf("No products found near your request within $%.0f, and no similar substitutes fit that budget",
			c.BudgetValue())
	case q.Category != "":
		return fmt.Sprintf("No %s products matched your request closely enough", q.Category)
	default:
		return "No products matched your request closely enough"
	}
}

func observe(p domrec.Policy, resp domrec.Response) {
	metrics.RecommendationsTotal.WithLabelValues(string(p), string(resp.Outcome), string(resp.Strategy)).Inc()
	metrics.RecommendationTierSize.WithLabelValues(string(domrec.TierPerfect)).Observe(float64(len(resp.Results.Perfect)))
	metrics.RecommendationTierSize.WithLabelValues(string(domrec.TierAlternatives)).
		Observe(float64(len(resp.Results.Alternatives)))
	metrics.RecommendationTierSize.WithLabelValues(string(domrec.TierOverBudget)).
		Observe(float64(len(resp.Results.OverBudget)))
}
