// Package activity records shopper interactions for a downstream recommender.
package activity

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/furnidex/internal/domain"
)

// Type is the interaction kind.
type Type string

// Event types.
const (
	TypeView   Type = "view"
	TypeClick  Type = "click"
	TypeSearch Type = "search"
)

// ProfileWindow is how many recent events feed the profile text.
const ProfileWindow = 50

// Event is one interaction.
type Event struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Type        Type      `json:"event_type"`
	ProductID   string    `json:"product_id,omitempty"`
	ProductName string    `json:"product_name,omitempty"`
	Category    string    `json:"category,omitempty"`
	Price       float64   `json:"price,omitempty"`
	SearchQuery string    `json:"search_query,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Validate checks required fields per event type.
func (e Event) Validate() error {
	if strings.TrimSpace(e.UserID) == "" {
		return fmt.Errorf("user_id is required: %w", domain.ErrInvalidQuery)
	}
	switch e.Type {
	case TypeView, TypeClick:
		if e.ProductID == "" {
			return fmt.Errorf("product_id is required for %s events: %w", e.Type, domain.ErrInvalidQuery)
		}
	case TypeSearch:
		if strings.TrimSpace(e.SearchQuery) == "" {
			return fmt.Errorf("search_query is required for search events: %w", domain.ErrInvalidQuery)
		}
	default:
		return fmt.Errorf("unknown event type %q: %w", e.Type, domain.ErrInvalidQuery)
	}
	return nil
}

// Summary aggregates a user's recorded activity.
type Summary struct {
	UserID      string         `json:"user_id"`
	TotalEvents int            `json:"total_events"`
	Categories  map[string]int `json:"categories"`
	Recent      []Event        `json:"recent_activity"`
	ProfileText string         `json:"profile_text"`
}

// ProfileText joins search queries and viewed/clicked product names of the
// last ProfileWindow events (oldest first) into one text.
func ProfileText(events []Event) string {
	if len(events) > ProfileWindow {
		events = events[len(events)-ProfileWindow:]
	}
	parts := make([]string, 0, len(events))
	for _, e := range events {
		switch e.Type {
		case TypeSearch:
			if e.SearchQuery != "" {
				parts = append(parts, e.SearchQuery)
			}
		case TypeView, TypeClick:
			if s := strings.TrimSpace(e.ProductName + " " + e.Category); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, " ")
}
