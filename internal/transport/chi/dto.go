package chi

import (
	"time"

	domact "github.com/kailas-cloud/furnidex/internal/domain/activity"
	"github.com/kailas-cloud/furnidex/internal/domain/catalog"
	"github.com/kailas-cloud/furnidex/internal/domain/preference"
	domrec "github.com/kailas-cloud/furnidex/internal/domain/recommend"
)

// ErrorCode is the machine-readable error kind returned to clients.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest             ErrorCode = "bad_request"
	CodeValidationFailed       ErrorCode = "validation_failed"
	CodeUnauthorized           ErrorCode = "unauthorized"
	CodeNotFound               ErrorCode = "not_found"
	CodeInvalidImage           ErrorCode = "invalid_image"
	CodeRateLimited            ErrorCode = "rate_limited"
	CodeUpstreamUnavailable    ErrorCode = "upstream_unavailable"
	CodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	CodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// RecommendRequest is the body of POST /recommend/smart and /recommend/text.
// Limit applies to each tier.
type RecommendRequest struct {
	Query    string `json:"query" validate:"required,max=1000"`
	Category string `json:"category,omitempty" validate:"omitempty,max=64"`
	Limit    int    `json:"limit,omitempty" validate:"omitempty,min=1,max=50"`
}

// Compromise is the per-product trade-off explanation.
type Compromise struct {
	Advantages    []string `json:"advantages"`
	Disadvantages []string `json:"disadvantages"`
	Summary       string   `json:"summary"`
	PriceFit      string   `json:"price_fit"`
}

// ProductResult is one returned product.
type ProductResult struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Category       string      `json:"category"`
	Price          float64     `json:"price"`
	Rating         float64     `json:"rating,omitempty"`
	ReviewCount    int         `json:"review_count,omitempty"`
	Description    string      `json:"description,omitempty"`
	Styles         []string    `json:"styles,omitempty"`
	Colors         []string    `json:"colors,omitempty"`
	Image          string      `json:"image,omitempty"`
	InStock        bool        `json:"in_stock"`
	Similarity     float64     `json:"similarity"`
	Space          string      `json:"space"`
	Score          *float64    `json:"score,omitempty"`
	Fit            string      `json:"fit,omitempty"`
	FitExplanation string      `json:"fit_explanation,omitempty"`
	Compromise     *Compromise `json:"compromise,omitempty"`
}

// RecommendResponse is the tiered answer of the orchestrator.
type RecommendResponse struct {
	Outcome        string                 `json:"outcome"`
	Strategy       string                 `json:"strategy,omitempty"`
	Explanation    string                 `json:"explanation"`
	MarketNote     string                 `json:"market_note,omitempty"`
	Constraints    preference.Constraints `json:"constraints"`
	PerfectMatches []ProductResult        `json:"perfect_matches"`
	Alternatives   []ProductResult        `json:"alternatives"`
	OverBudget     []ProductResult        `json:"over_budget"`
	Total          int                    `json:"total"`
	Trace          []string               `json:"trace"`
}

// SearchResponse lists products from a single-space search.
type SearchResponse struct {
	Space   string          `json:"space"`
	Results []ProductResult `json:"results"`
	Total   int             `json:"total"`
}

// ActivityRequest is the body of POST /activity.
type ActivityRequest struct {
	UserID      string     `json:"user_id" validate:"required,max=128"`
	EventType   string     `json:"event_type" validate:"required,oneof=view click search"`
	ProductID   string     `json:"product_id,omitempty" validate:"omitempty,max=256"`
	ProductName string     `json:"product_name,omitempty" validate:"omitempty,max=256"`
	Category    string     `json:"category,omitempty" validate:"omitempty,max=64"`
	Price       float64    `json:"price,omitempty" validate:"gte=0"`
	SearchQuery string     `json:"search_query,omitempty" validate:"omitempty,max=1000"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string            `json:"status"`
	Checks   map[string]string `json:"checks"`
	Products int               `json:"products"`
	Version  string            `json:"version"`
}

func productFromItem(it catalog.Item, similarity float64, space string) ProductResult {
	return ProductResult{
		ID:          it.ID,
		Name:        it.Name,
		Category:    it.Category,
		Price:       it.Price,
		Rating:      it.Rating,
		ReviewCount: it.ReviewCount,
		Description: it.Description,
		Styles:      it.Styles,
		Colors:      it.Colors,
		Image:       it.Image,
		InStock:     it.InStock,
		Similarity:  similarity,
		Space:       space,
	}
}

func productFromScored(s domrec.Scored) ProductResult {
	p := productFromItem(s.Item, s.Similarity, string(s.Space))
	score := s.Analysis.Score
	p.Score = &score
	p.Fit = string(s.Analysis.Fit)
	p.FitExplanation = s.Analysis.FitExplanation
	p.Compromise = &Compromise{
		Advantages:    nonNil(s.Analysis.Advantages),
		Disadvantages: nonNil(s.Analysis.Disadvantages),
		Summary:       s.Analysis.Summary,
		PriceFit:      string(s.Analysis.PriceFit),
	}
	return p
}

func productsFromScored(tier []domrec.Scored) []ProductResult {
	out := make([]ProductResult, 0, len(tier))
	for _, s := range tier {
		out = append(out, productFromScored(s))
	}
	return out
}

func recommendToResponse(resp domrec.Response) RecommendResponse {
	trace := make([]string, 0, len(resp.Trace))
	for _, st := range resp.Trace {
		trace = append(trace, string(st))
	}
	return RecommendResponse{
		Outcome:        string(resp.Outcome),
		Strategy:       string(resp.Strategy),
		Explanation:    resp.Explanation,
		MarketNote:     resp.MarketNote,
		Constraints:    resp.Constraints,
		PerfectMatches: productsFromScored(resp.Results.Perfect),
		Alternatives:   productsFromScored(resp.Results.Alternatives),
		OverBudget:     productsFromScored(resp.Results.OverBudget),
		Total:          resp.Results.Len(),
		Trace:          trace,
	}
}

func (r ActivityRequest) toEvent() domact.Event {
	e := domact.Event{
		UserID:      r.UserID,
		Type:        domact.Type(r.EventType),
		ProductID:   r.ProductID,
		ProductName: r.ProductName,
		Category:    r.Category,
		Price:       r.Price,
		SearchQuery: r.SearchQuery,
	}
	if r.Timestamp != nil {
		e.Timestamp = r.Timestamp.UTC()
	}
	return e
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
