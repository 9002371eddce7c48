package recommend

import "github.com/kailas-cloud/furnidex/internal/domain/preference"

// Strategy names how the result set was produced.
type Strategy string

// Strategies.
const (
	StrategyDirectMatch        Strategy = "direct_match"
	StrategyGraphSubstitutes   Strategy = "graph_substitutes"
	StrategyCompromiseAnalysis Strategy = "compromise_analysis"
)

// State is a step of the retrieval state machine.
type State string

// States.
const (
	StatePrimarySearch    State = "PRIMARY_SEARCH"
	StateSubstituteSearch State = "SUBSTITUTE_SEARCH"
	StateClassify         State = "CLASSIFY"
	StateDone             State = "DONE"
)

// Outcome tells a found result set apart from a normal "nothing matched" answer.
type Outcome string

// Outcomes.
const (
	OutcomeFound    Outcome = "found"
	OutcomeNotFound Outcome = "not_found"
)

// Response is the orchestrator's answer to one query.
type Response struct {
	Outcome     Outcome
	Strategy    Strategy
	Explanation string
	MarketNote  string
	Constraints preference.Constraints
	Results     ResultSet
	Trace       []State
}

// Found builds a Found response.
func Found(s Strategy, explanation string, c preference.Constraints, rs ResultSet) Response {
	return Response{Outcome: OutcomeFound, Strategy: s, Explanation: explanation, Constraints: c, Results: rs}
}

// NotFound builds a NotFound response carrying the reason.
func NotFound(reason string, c preference.Constraints) Response {
	return Response{Outcome: OutcomeNotFound, Explanation: reason, Constraints: c}
}

// StrategyFor picks the strategy label for a classified result set.
func StrategyFor(rs ResultSet, substituted bool) Strategy {
	switch {
	case substituted:
		return StrategyGraphSubstitutes
	case len(rs.Perfect) > 0 && len(rs.Alternatives) == 0 && len(rs.OverBudget) == 0:
		return StrategyDirectMatch
	default:
		return StrategyCompromiseAnalysis
	}
}
