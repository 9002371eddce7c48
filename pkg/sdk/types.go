package furnidex

import (
	"github.com/kailas-cloud/furnidex/internal/domain/batch"
	"github.com/kailas-cloud/furnidex/internal/domain/catalog"
	domrec "github.com/kailas-cloud/furnidex/internal/domain/recommend"
	"github.com/kailas-cloud/furnidex/internal/domain/vector"
)

// Space names one of the four vector spaces every product is indexed in.
type Space string

// Vector spaces.
const (
	SpaceText  Space = Space(vector.Text)
	SpaceImage Space = Space(vector.Image)
	SpaceGraph Space = Space(vector.Graph)
	SpaceColor Space = Space(vector.Color)
)

// Product is a catalog item.
type Product struct {
	ID          string
	Name        string
	Category    string
	Price       float64
	Rating      float64
	ReviewCount int
	Description string
	Styles      []string
	Colors      []string
	Features    []string
	Tags        []string
	// Image is an http(s) URL or a local path.
	Image   string
	InStock bool
}

// Match is a retrieved product. The analysis fields are empty for Similar.
type Match struct {
	Product    Product
	Similarity float64
	Space      Space

	Score          float64
	Fit            string
	FitExplanation string
	PriceFit       string
	Advantages     []string
	Disadvantages  []string
	Summary        string
}

// Constraints is what the query asked for.
type Constraints struct {
	Budget   *float64
	Material string
	Style    string
	Colors   []string
	Comfort  bool
	Sizes    []string
	Features []string
}

// Recommendation is the tiered answer to a free-text query.
// Found is false when nothing cleared the floors; Explanation then says why.
type Recommendation struct {
	Found        bool
	Strategy     string
	Explanation  string
	MarketNote   string
	Constraints  Constraints
	Perfect      []Match
	Alternatives []Match
	OverBudget   []Match
}

// Len returns the number of products across tiers.
func (r Recommendation) Len() int {
	return len(r.Perfect) + len(r.Alternatives) + len(r.OverBudget)
}

// IndexReport summarizes an Index call.
type IndexReport struct {
	Indexed int
	Batches int
	Retries int
	// Created is true when the search index did not exist before the call.
	Created bool
	// Fallbacks counts products written with a zero vector, per space.
	Fallbacks map[Space]int
}

func toItem(p Product) catalog.Item {
	return catalog.Item{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Price:       p.Price,
		Rating:      p.Rating,
		ReviewCount: p.ReviewCount,
		Description: p.Description,
		Styles:      p.Styles,
		Colors:      p.Colors,
		Features:    p.Features,
		Tags:        p.Tags,
		Image:       p.Image,
		InStock:     p.InStock,
	}
}

func fromItem(it catalog.Item) Product {
	return Product{
		ID:          it.ID,
		Name:        it.Name,
		Category:    it.Category,
		Price:       it.Price,
		Rating:      it.Rating,
		ReviewCount: it.ReviewCount,
		Description: it.Description,
		Styles:      it.Styles,
		Colors:      it.Colors,
		Features:    it.Features,
		Tags:        it.Tags,
		Image:       it.Image,
		InStock:     it.InStock,
	}
}

func fromCandidate(c domrec.Candidate) Match {
	return Match{Product: fromItem(c.Item), Similarity: c.Similarity, Space: Space(c.Space)}
}

func fromScored(s domrec.Scored) Match {
	m := fromCandidate(s.Candidate)
	m.Score = s.Analysis.Score
	m.Fit = string(s.Analysis.Fit)
	m.FitExplanation = s.Analysis.FitExplanation
	m.PriceFit = string(s.Analysis.PriceFit)
	m.Advantages = s.Analysis.Advantages
	m.Disadvantages = s.Analysis.Disadvantages
	m.Summary = s.Analysis.Summary
	return m
}

func fromTier(tier []domrec.Scored) []Match {
	out := make([]Match, 0, len(tier))
	for _, s := range tier {
		out = append(out, fromScored(s))
	}
	return out
}

func fromResponse(resp domrec.Response) Recommendation {
	c := resp.Constraints
	return Recommendation{
		Found:       resp.Outcome == domrec.OutcomeFound,
		Strategy:    string(resp.Strategy),
		Explanation: resp.Explanation,
		MarketNote:  resp.MarketNote,
		Constraints: Constraints{
			Budget:   c.Budget,
			Material: c.Material,
			Style:    c.Style,
			Colors:   c.Colors,
			Comfort:  c.Comfort,
			Sizes:    c.Sizes,
			Features: c.Features,
		},
		Perfect:      fromTier(resp.Results.Perfect),
		Alternatives: fromTier(resp.Results.Alternatives),
		OverBudget:   fromTier(resp.Results.OverBudget),
	}
}

func fromReport(rep *batch.Report) IndexReport {
	if rep == nil {
		return IndexReport{Fallbacks: map[Space]int{}}
	}
	out := IndexReport{
		Indexed:   rep.Indexed(),
		Batches:   rep.Batches,
		Retries:   rep.Retries,
		Created:   rep.Created,
		Fallbacks: make(map[Space]int),
	}
	for sp, n := range rep.Fallbacks() {
		out.Fallbacks[Space(sp)] = n
	}
	return out
}
