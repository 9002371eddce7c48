// Package preference holds the structured constraints parsed from a free-text furniture query
// and the static vocabularies used to derive and check them.
package preference

// Confidence keys reported in Constraints.Confidence.
const (
	AttrMaterial = "material"
	AttrStyle    = "style"
	AttrComfort  = "comfort"
)

// Constraints is what a shopper asked for. Absent signals stay nil or empty.
type Constraints struct {
	Budget       *float64           `json:"budget,omitempty"`
	Material     string             `json:"material,omitempty"`
	BaseMaterial string             `json:"base_material,omitempty"`
	Style        string             `json:"style,omitempty"`
	Colors       []string           `json:"colors,omitempty"`
	Comfort      bool               `json:"comfort,omitempty"`
	Sizes        []string           `json:"sizes,omitempty"`
	Features     []string           `json:"features,omitempty"`
	Confidence   map[string]float64 `json:"confidence,omitempty"`
}

// HasBudget reports whether a budget ceiling was given.
func (c Constraints) HasBudget() bool { return c.Budget != nil }

// BudgetValue returns the budget, or 0 when absent.
func (c Constraints) BudgetValue() float64 {
	if c.Budget == nil {
		return 0
	}
	return *c.Budget
}

// RequestedMaterial returns the material family used for hierarchy lookups.
// A variant such as "pu leather" resolves to its base "leather".
func (c Constraints) RequestedMaterial() string {
	if c.BaseMaterial != "" {
		return c.BaseMaterial
	}
	return c.Material
}

// IsEmpty reports whether no attribute beyond the budget was requested.
func (c Constraints) IsEmpty() bool {
	return c.Material == "" && c.Style == "" && len(c.Colors) == 0 &&
		!c.Comfort && len(c.Sizes) == 0 && len(c.Features) == 0
}
