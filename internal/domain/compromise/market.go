package compromise

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/furnidex/internal/domain/preference"
)

// MarketNote warns when the requested material rarely sells within the budget.
// It returns "" when the request is realistic or unknown.
func MarketNote(c preference.Constraints) string {
	if !c.HasBudget() || c.Material == "" {
		return ""
	}
	floor, ok := preference.MaterialPriceFloor[c.Material]
	if !ok {
		floor, ok = preference.MaterialPriceFloor[c.RequestedMaterial()]
	}
	if !ok || c.BudgetValue() >= floor {
		return ""
	}
	note := fmt.Sprintf("%s typically starts at $%.0f, but your budget is $%.0f",
		capitalize(c.Material), floor, c.BudgetValue())
	if c.RequestedMaterial() == "leather" {
		note += "; consider fabric or pu leather"
	}
	return note
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
