package recommend

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/furnidex/internal/domain"
	"github.com/kailas-cloud/furnidex/internal/domain/catalog"
	"github.com/kailas-cloud/furnidex/internal/domain/compromise"
	"github.com/kailas-cloud/furnidex/internal/domain/preference"
)

func scored(id string, price, score float64, mismatches int) Scored {
	return Scored{
		Candidate: Candidate{Item: catalog.Item{ID: id, Price: price}},
		Analysis:  compromise.Analysis{Score: score, AttributeMismatches: mismatches},
	}
}

func budget(v float64) *float64 { return &v }

func TestPartition_Disjoint(t *testing.T) {
	c := preference.Constraints{Budget: budget(600)}
	in := []Scored{
		scored("a", 549, 2, 0),
		scored("b", 949, 3, 0),
		scored("c", 400, 1, 1),
		scored("a", 549, 9, 0),
		scored("d", 600, 1, 0),
	}
	rs := Partition(in, c)

	seen := map[string]int{}
	for _, tier := range [][]Scored{rs.Perfect, rs.Alternatives, rs.OverBudget} {
		for _, s := range tier {
			seen[s.Item.ID]++
		}
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("%s appears %d times", id, n)
		}
	}
	if rs.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", rs.Len())
	}
	if len(rs.OverBudget) != 1 || rs.OverBudget[0].Item.ID != "b" {
		t.Errorf("over budget = %+v", rs.OverBudget)
	}
	if len(rs.Alternatives) != 1 || rs.Alternatives[0].Item.ID != "c" {
		t.Errorf("alternatives = %+v", rs.Alternatives)
	}
	if len(rs.Perfect) != 2 || rs.Perfect[0].Item.ID != "a" || rs.Perfect[1].Item.ID != "d" {
		t.Errorf("perfect = %+v", rs.Perfect)
	}
}

func TestPartition_NoBudgetNeverOverBudget(t *testing.T) {
	rs := Partition([]Scored{scored("x", 1e6, 0, 0)}, preference.Constraints{})
	if len(rs.OverBudget) != 0 || len(rs.Perfect) != 1 {
		t.Errorf("unexpected tiers: %+v", rs)
	}
}

func TestPartition_TieBreakByID(t *testing.T) {
	rs := Partition([]Scored{scored("z", 1, 1, 0), scored("m", 1, 1, 0)}, preference.Constraints{})
	if rs.Perfect[0].Item.ID != "m" {
		t.Errorf("expected id tie-break, got %s first", rs.Perfect[0].Item.ID)
	}
}

func TestResultSet_Truncate(t *testing.T) {
	rs := ResultSet{Perfect: []Scored{scored("a", 1, 1, 0), scored("b", 1, 1, 0)}}
	if got := rs.Truncate(1); len(got.Perfect) != 1 {
		t.Errorf("Truncate(1) kept %d", len(got.Perfect))
	}
}

func TestResultSet_Truncate_PerTier(t *testing.T) {
	rs := ResultSet{
		Perfect:      []Scored{scored("p1", 1, 1, 0), scored("p2", 1, 1, 0)},
		Alternatives: []Scored{scored("a1", 1, 1, 1), scored("a2", 1, 1, 1)},
		OverBudget:   []Scored{scored("o1", 9, 1, 0), scored("o2", 9, 1, 0)},
	}
	got := rs.Truncate(1)
	if len(got.Perfect) != 1 || len(got.Alternatives) != 1 || len(got.OverBudget) != 1 {
		t.Errorf("tiers = %d/%d/%d, want 1/1/1", len(got.Perfect), len(got.Alternatives), len(got.OverBudget))
	}
	if got.Len() != 3 {
		t.Errorf("Len = %d, want 3", got.Len())
	}
	if got.Perfect[0].Item.ID != "p1" || got.OverBudget[0].Item.ID != "o1" {
		t.Error("Truncate must keep the head of each tier")
	}
}

func TestStrategyFor(t *testing.T) {
	perfectOnly := ResultSet{Perfect: []Scored{scored("a", 1, 1, 0)}}
	mixed := ResultSet{Perfect: perfectOnly.Perfect, OverBudget: []Scored{scored("b", 1, 1, 0)}}

	if StrategyFor(perfectOnly, false) != StrategyDirectMatch {
		t.Error("perfect only should be direct_match")
	}
	if StrategyFor(mixed, false) != StrategyCompromiseAnalysis {
		t.Error("mixed should be compromise_analysis")
	}
	if StrategyFor(perfectOnly, true) != StrategyGraphSubstitutes {
		t.Error("substituted should be graph_substitutes")
	}
}

func TestQuery_NormalizeValidate(t *testing.T) {
	q := Query{Text: "  sofa ", Category: " Sofa"}.Normalize()
	if q.Text != "sofa" || q.Category != "sofa" || q.Limit != DefaultLimit || q.Policy != PolicyStrict {
		t.Fatalf("Normalize() = %+v", q)
	}
	if err := q.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	bad := []Query{
		{Text: "", Limit: 1, Policy: PolicyLoose},
		{Text: "x", Limit: MaxLimit + 1, Policy: PolicyLoose},
		{Text: "x", Limit: 1, Policy: "fuzzy"},
	}
	for _, b := range bad {
		if err := b.Validate(); !errors.Is(err, domain.ErrInvalidQuery) {
			t.Errorf("Validate(%+v) = %v, want ErrInvalidQuery", b, err)
		}
	}
}
