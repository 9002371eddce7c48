// Package compromise scores candidates against parsed constraints.
package compromise

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kailas-cloud/furnidex/internal/domain/catalog"
	"github.com/kailas-cloud/furnidex/internal/domain/compromise"
	"github.com/kailas-cloud/furnidex/internal/domain/preference"
	"github.com/kailas-cloud/furnidex/internal/domain/recommend"
)

// Config holds the scoring weights.
type Config struct {
	SimilarityWeight float64
	UnderWeight      float64
	OverWeight       float64
	AttributePoint   float64
	PremiumBonus     float64
}

// DefaultConfig returns the weights used in production.
func DefaultConfig() Config {
	return Config{
		SimilarityWeight: 5,
		UnderWeight:      1,
		OverWeight:       2,
		AttributePoint:   1,
		PremiumBonus:     0.25,
	}
}

// Scorer evaluates rules deterministically. It holds no state beyond its weights.
type Scorer struct {
	cfg Config
}

// New creates a Scorer.
func New(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// analysis accumulates one candidate's evaluation.
type analysis struct {
	compromise.Analysis
	matched int
}

func (a *analysis) gain(format string, args ...any) {
	a.Advantages = append(a.Advantages, fmt.Sprintf(format, args...))
}

func (a *analysis) lose(format string, args ...any) {
	a.Disadvantages = append(a.Disadvantages, fmt.Sprintf(format, args...))
}

func (a *analysis) hit(format string, args ...any) {
	a.matched++
	a.gain(format, args...)
}

func (a *analysis) miss(format string, args ...any) {
	a.AttributeMismatches++
	a.lose(format, args...)
}

// Score explains and scores one candidate.
func (s *Scorer) Score(cand recommend.Candidate, c preference.Constraints) compromise.Analysis {
	item := cand.Item
	text := item.SearchText()
	a := &analysis{}

	priceScore := s.price(a, item.Price, c)

	for _, color := range c.Colors {
		colorFit(a, &item, text, color)
	}
	if c.Material != "" {
		materialFit(a, text, c)
	}
	if c.Style != "" {
		styleFit(a, text, c.Style)
	}
	if c.Comfort {
		if containsAny(text, preference.ComfortIndicators) != "" {
			a.hit("Comfortable cushioning")
		} else {
			a.miss("May not be as comfortable as requested")
		}
	}
	for _, size := range c.Sizes {
		if preference.ContainsTerm(text, size) {
			a.hit("Size: %s", size)
		} else {
			a.miss("Not described as %s", size)
		}
	}
	for _, f := range c.Features {
		if preference.ContainsTerm(text, f) {
			a.hit("Has %s", f)
		} else {
			a.miss("No %s mentioned", f)
		}
	}

	premium := 0
	for _, sig := range preference.PremiumSignals {
		if sig != c.Material && preference.ContainsTerm(text, sig) {
			premium++
			a.gain("Premium: %s", sig)
		}
	}

	sim := clamp01(cand.Similarity)
	a.Score = s.cfg.SimilarityWeight*sim +
		priceScore +
		s.cfg.AttributePoint*float64(a.matched-a.AttributeMismatches) +
		s.cfg.PremiumBonus*float64(premium)
	a.Fit = compromise.BandFor(sim)
	a.FitExplanation = a.Fit.Explain(sim)
	a.Summary = summarize(a.Advantages, a.Disadvantages)

	if a.Advantages == nil {
		a.Advantages = []string{}
	}
	if a.Disadvantages == nil {
		a.Disadvantages = []string{}
	}
	return a.Analysis
}

// price sets the price fit and returns its score contribution.
// A price equal to the budget yields no price string.
func (s *Scorer) price(a *analysis, price float64, c preference.Constraints) float64 {
	if !c.HasBudget() {
		a.PriceFit = compromise.PriceNoBudget
		return 0
	}
	budget := c.BudgetValue()
	if price <= budget {
		a.PriceFit = compromise.PriceWithin
		if price == budget || budget <= 0 {
			return 0
		}
		ratio := (budget - price) / budget
		a.gain("$%.0f under budget, saves %.0f%%", budget-price, math.Round(ratio*100))
		return s.cfg.UnderWeight * ratio
	}

	a.PriceFit = compromise.PriceOver
	if budget <= 0 {
		a.lose("$%.0f over budget", price)
		return -s.cfg.OverWeight
	}
	ratio := (price - budget) / budget
	a.lose("$%.0f over budget, +%.0f%%", price-budget, math.Round(ratio*100))
	return -s.cfg.OverWeight * ratio
}

func colorFit(a *analysis, item *catalog.Item, text, color string) {
	if item.HasColor(color) {
		a.hit("%s color as requested", capitalize(color))
		return
	}
	if shade := containsAny(text, preference.ShadesOf(color)); shade != "" {
		a.hit("%s shade of %s", capitalize(shade), color)
		return
	}
	if len(item.Colors) > 0 {
		a.miss("%s color instead of %s", capitalize(strings.Join(item.Colors, "/")), color)
		return
	}
	a.miss("Not available in %s color", color)
}

func materialFit(a *analysis, text string, c preference.Constraints) {
	requested := c.Material
	family := c.RequestedMaterial()
	fam, known := preference.MaterialHierarchy[family]
	alts := alternatives(fam)

	// A look-alike of the family ("pu leather" for "leather") must not pass as the real thing.
	for _, alt := range alts {
		if alt != requested && strings.Contains(alt, family) && preference.ContainsTerm(text, alt) {
			alternativeFit(a, fam, alt, requested)
			return
		}
	}

	if preference.ContainsTerm(text, requested) {
		a.hit("%s material", capitalize(requested))
		return
	}
	if known {
		if v := containsAny(text, fam.Variants); v != "" {
			a.hit("%s (premium %s)", capitalize(v), family)
			return
		}
	}
	if family != requested && preference.ContainsTerm(text, family) {
		a.hit("%s material", capitalize(family))
		return
	}
	for _, alt := range alts {
		if preference.ContainsTerm(text, alt) {
			alternativeFit(a, fam, alt, requested)
			return
		}
	}
	a.miss("Not %s material", requested)
}

func alternativeFit(a *analysis, fam preference.MaterialFamily, alt, requested string) {
	t, ok := fam.Tradeoffs[alt]
	if ok && len(t.Loses) > 0 {
		a.miss("%s: %s", capitalize(alt), t.Loses[0])
	} else {
		a.miss("%s instead of %s", capitalize(alt), requested)
	}
	if ok && len(t.Gains) > 0 {
		a.gain("%s alternative: %s", capitalize(alt), strings.Join(t.Gains, ", "))
	}
}

// alternatives lists the family's alternatives followed by any other trade-off materials.
func alternatives(fam preference.MaterialFamily) []string {
	out := append([]string(nil), fam.Alternatives...)
	extra := make([]string, 0, len(fam.Tradeoffs))
	for k := range fam.Tradeoffs {
		if !contains(out, k) {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

func styleFit(a *analysis, text, style string) {
	if preference.ContainsTerm(text, style) {
		a.hit("%s style", capitalize(style))
		return
	}
	fam := preference.StyleHierarchy[style]
	if v := containsAny(text, fam.Variants); v != "" {
		a.hit("%s style (similar to %s)", capitalize(v), style)
		return
	}
	if o := containsAny(text, fam.Opposites); o != "" {
		a.miss("%s style (not %s)", capitalize(o), style)
		return
	}
	a.miss("Not %s style", style)
}

func summarize(adv, dis []string) string {
	if len(dis) == 0 {
		switch {
		case len(adv) >= 3:
			return "Perfect match: " + adv[0]
		case len(adv) == 2:
			return "Great match: " + adv[0]
		case len(adv) == 1:
			return "Good match: " + adv[0]
		default:
			return "Good match"
		}
	}
	top := "closest available option"
	if len(adv) > 0 {
		top = adv[0]
	}
	return fmt.Sprintf("Trade-off: %s, but %s", top, dis[0])
}

func containsAny(text string, terms []string) string {
	for _, t := range terms {
		if preference.ContainsTerm(text, t) {
			return t
		}
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}
