// Package filter expresses metadata pre-filters applied before vector similarity search.
package filter

import (
	"fmt"
	"strings"
)

// MaxConditions bounds the number of conditions in one expression.
const MaxConditions = 16

// Field names of the product payload that filters may target.
const (
	FieldCategory = "category"
	FieldPrice    = "price"
)

// Expression is a conjunction of conditions with optional negations.
type Expression struct {
	must    []Condition
	mustNot []Condition
}

// NewExpression validates and creates an Expression.
func NewExpression(must, mustNot []Condition) (Expression, error) {
	if len(must)+len(mustNot) > MaxConditions {
		return Expression{}, fmt.Errorf("too many filter conditions (max %d)", MaxConditions)
	}
	return Expression{must: must, mustNot: mustNot}, nil
}

// Must returns the required conditions.
func (e Expression) Must() []Condition { return e.must }

// MustNot returns the excluded conditions.
func (e Expression) MustNot() []Condition { return e.mustNot }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.must) == 0 && len(e.mustNot) == 0 }

// With returns a copy of e with c appended to the required conditions.
func (e Expression) With(c Condition) Expression {
	must := make([]Condition, 0, len(e.must)+1)
	must = append(must, e.must...)
	must = append(must, c)
	return Expression{must: must, mustNot: e.mustNot}
}

// Without returns a copy of e with c appended to the excluded conditions.
func (e Expression) Without(c Condition) Expression {
	mustNot := make([]Condition, 0, len(e.mustNot)+1)
	mustNot = append(mustNot, e.mustNot...)
	mustNot = append(mustNot, c)
	return Expression{must: e.must, mustNot: mustNot}
}

// Condition is either a tag equality or a numeric range.
type Condition struct {
	key       string
	match     string
	rangeExpr *Range
}

// NewMatch creates a tag equality condition.
func NewMatch(key, match string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, match: match}, nil
}

// NewRange creates a numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, rangeExpr: &r}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Match returns the tag value.
func (c Condition) Match() string { return c.match }

// Range returns the numeric range.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsMatch reports whether this is a tag condition.
func (c Condition) IsMatch() bool { return c.match != "" }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rangeExpr != nil }

// Range is a numeric interval; nil bounds are open.
type Range struct {
	gt  *float64
	gte *float64
	lt  *float64
	lte *float64
}

// NewRangeFilter validates and creates a Range.
// At least one bound is required; gt/gte and lt/lte are mutually exclusive.
func NewRangeFilter(gt, gte, lt, lte *float64) (Range, error) {
	if gt == nil && gte == nil && lt == nil && lte == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if gt != nil && gte != nil {
		return Range{}, fmt.Errorf("cannot specify both gt and gte")
	}
	if lt != nil && lte != nil {
		return Range{}, fmt.Errorf("cannot specify both lt and lte")
	}
	return Range{gt: gt, gte: gte, lt: lt, lte: lte}, nil
}

// GT returns the exclusive lower bound.
func (r Range) GT() *float64 { return r.gt }

// GTE returns the inclusive lower bound.
func (r Range) GTE() *float64 { return r.gte }

// LT returns the exclusive upper bound.
func (r Range) LT() *float64 { return r.lt }

// LTE returns the inclusive upper bound.
func (r Range) LTE() *float64 { return r.lte }

// Contains reports whether v satisfies the range.
func (r Range) Contains(v float64) bool {
	if r.gt != nil && v <= *r.gt {
		return false
	}
	if r.gte != nil && v < *r.gte {
		return false
	}
	if r.lt != nil && v >= *r.lt {
		return false
	}
	if r.lte != nil && v > *r.lte {
		return false
	}
	return true
}

// Category matches products of one category (case-insensitive, stored lowercased).
func Category(category string) Condition {
	return Condition{key: FieldCategory, match: strings.ToLower(strings.TrimSpace(category))}
}

// PriceAtMost keeps products priced at or below budget.
func PriceAtMost(budget float64) Condition {
	b := budget
	return Condition{key: FieldPrice, rangeExpr: &Range{lte: &b}}
}

// PriceAbove keeps products priced strictly above budget.
func PriceAbove(budget float64) Condition {
	b := budget
	return Condition{key: FieldPrice, rangeExpr: &Range{gt: &b}}
}

// ForQuery builds the standard product filter: optional category, optional price bound.
func ForQuery(category string, price *Condition) Expression {
	var e Expression
	if strings.TrimSpace(category) != "" {
		e = e.With(Category(category))
	}
	if price != nil {
		e = e.With(*price)
	}
	return e
}
