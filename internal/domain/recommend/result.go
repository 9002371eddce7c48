package recommend

import (
	"cmp"
	"slices"

	"github.com/kailas-cloud/furnidex/internal/domain/catalog"
	"github.com/kailas-cloud/furnidex/internal/domain/compromise"
	"github.com/kailas-cloud/furnidex/internal/domain/preference"
	"github.com/kailas-cloud/furnidex/internal/domain/vector"
)

// Candidate is a retrieved product before scoring.
type Candidate struct {
	Item       catalog.Item
	Similarity float64
	Space      vector.Space
}

// Scored is a candidate with its compromise analysis.
type Scored struct {
	Candidate
	Analysis compromise.Analysis
}

// Tier is one of the three disjoint result groups.
type Tier string

// Tiers.
const (
	TierPerfect      Tier = "perfect"
	TierAlternatives Tier = "alternatives"
	TierOverBudget   Tier = "over_budget"
)

// TierOf places a scored candidate: over budget first, then any attribute mismatch, else perfect.
func TierOf(s Scored, c preference.Constraints) Tier {
	if c.HasBudget() && s.Item.Price > c.BudgetValue() {
		return TierOverBudget
	}
	if s.Analysis.HasMismatch() {
		return TierAlternatives
	}
	return TierPerfect
}

// ResultSet holds the three tiers. A product id appears in at most one tier.
type ResultSet struct {
	Perfect      []Scored
	Alternatives []Scored
	OverBudget   []Scored
}

// Partition distributes candidates into tiers, dropping duplicate ids (first wins),
// and sorts each tier by compromise score descending then id.
func Partition(scored []Scored, c preference.Constraints) ResultSet {
	var rs ResultSet
	seen := make(map[string]struct{}, len(scored))
	for _, s := range scored {
		if _, dup := seen[s.Item.ID]; dup {
			continue
		}
		seen[s.Item.ID] = struct{}{}
		switch TierOf(s, c) {
		case TierOverBudget:
			rs.OverBudget = append(rs.OverBudget, s)
		case TierAlternatives:
			rs.Alternatives = append(rs.Alternatives, s)
		default:
			rs.Perfect = append(rs.Perfect, s)
		}
	}
	sortTier(rs.Perfect)
	sortTier(rs.Alternatives)
	sortTier(rs.OverBudget)
	return rs
}

func sortTier(t []Scored) {
	slices.SortStableFunc(t, func(a, b Scored) int {
		if c := cmp.Compare(b.Analysis.Score, a.Analysis.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Item.ID, b.Item.ID)
	})
}

// Len returns the total number of products across tiers.
func (rs ResultSet) Len() int {
	return len(rs.Perfect) + len(rs.Alternatives) + len(rs.OverBudget)
}

// IsEmpty reports whether all tiers are empty.
func (rs ResultSet) IsEmpty() bool { return rs.Len() == 0 }

// Truncate caps each tier at n separately, so a set may hold up to 3n products.
func (rs ResultSet) Truncate(n int) ResultSet {
	capTier := func(t []Scored) []Scored {
		if n > 0 && len(t) > n {
			return t[:n]
		}
		return t
	}
	return ResultSet{
		Perfect:      capTier(rs.Perfect),
		Alternatives: capTier(rs.Alternatives),
		OverBudget:   capTier(rs.OverBudget),
	}
}
