// Package recommend models a furniture recommendation request, its candidates and tiered outcome.
package recommend

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/furnidex/internal/domain"
)

// Policy selects the similarity floor for the primary search.
type Policy string

// Retrieval policies.
const (
	PolicyStrict Policy = "strict"
	PolicyLoose  Policy = "loose"
)

// Limits for a query.
const (
	DefaultLimit  = 10
	MaxLimit      = 50
	MaxQueryRunes = 1000
)

// Query is a free-text recommendation request. Limit caps each result tier,
// not the total.
type Query struct {
	Text     string
	Category string
	Limit    int
	Policy   Policy
}

// Normalize trims text, lowercases the category and applies the default limit and policy.
func (q Query) Normalize() Query {
	q.Text = strings.TrimSpace(q.Text)
	q.Category = strings.ToLower(strings.TrimSpace(q.Category))
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Policy == "" {
		q.Policy = PolicyStrict
	}
	return q
}

// Validate checks a normalized query.
func (q Query) Validate() error {
	if q.Text == "" {
		return fmt.Errorf("query text is required: %w", domain.ErrInvalidQuery)
	}
	if len([]rune(q.Text)) > MaxQueryRunes {
		return fmt.Errorf("query exceeds %d characters: %w", MaxQueryRunes, domain.ErrInvalidQuery)
	}
	if q.Limit > MaxLimit {
		return fmt.Errorf("limit %d exceeds max %d: %w", q.Limit, MaxLimit, domain.ErrInvalidQuery)
	}
	if q.Policy != PolicyStrict && q.Policy != PolicyLoose {
		return fmt.Errorf("unknown policy %q: %w", q.Policy, domain.ErrInvalidQuery)
	}
	return nil
}
