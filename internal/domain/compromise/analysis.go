// Package compromise describes what a candidate product gains and loses against a shopper's constraints.
package compromise

import "fmt"

// PriceFit classifies a price relative to the budget.
type PriceFit string

// Price fits.
const (
	PriceNoBudget PriceFit = "no_budget"
	PriceWithin   PriceFit = "within"
	PriceOver     PriceFit = "over"
)

// FitBand is a coarse label of semantic similarity.
type FitBand string

// Fit bands, from best to worst.
const (
	FitExcellent FitBand = "excellent"
	FitGood      FitBand = "good"
	FitModerate  FitBand = "moderate"
	FitLoose     FitBand = "loose"
)

// BandFor maps a similarity in [0,1] to a fit band.
func BandFor(similarity float64) FitBand {
	switch {
	case similarity > 0.8:
		return FitExcellent
	case similarity > 0.6:
		return FitGood
	case similarity > 0.4:
		return FitModerate
	default:
		return FitLoose
	}
}

// Explain renders the band as a sentence.
func (b FitBand) Explain(similarity float64) string {
	pct := similarity * 100
	switch b {
	case FitExcellent:
		return fmt.Sprintf("Excellent match (%.0f%% similar)", pct)
	case FitGood:
		return fmt.Sprintf("Good match (%.0f%% similar)", pct)
	case FitModerate:
		return fmt.Sprintf("Moderate match (%.0f%% similar)", pct)
	default:
		return fmt.Sprintf("Loose match (%.0f%% similar)", pct)
	}
}

// Analysis is the scored explanation for one candidate.
// Disadvantages is non-empty iff the candidate fails at least one constraint.
type Analysis struct {
	Advantages          []string `json:"advantages"`
	Disadvantages       []string `json:"disadvantages"`
	Score               float64  `json:"score"`
	Summary             string   `json:"summary"`
	Fit                 FitBand  `json:"fit"`
	FitExplanation      string   `json:"fit_explanation"`
	PriceFit            PriceFit `json:"price_fit"`
	AttributeMismatches int      `json:"attribute_mismatches"`
}

// HasMismatch reports whether any requested attribute is missing.
func (a Analysis) HasMismatch() bool { return a.AttributeMismatches > 0 }

// IsOverBudget reports whether the candidate exceeds the budget.
func (a Analysis) IsOverBudget() bool { return a.PriceFit == PriceOver }
