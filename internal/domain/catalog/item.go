package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxDescriptionPayload is the description length kept in the index payload.
const MaxDescriptionPayload = 500

// Item is a catalog product. The indexing pipeline never mutates it.
type Item struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"review_count"`
	Description string   `json:"description"`
	Styles      []string `json:"styles"`
	Colors      []string `json:"colors"`
	Features    []string `json:"features"`
	Tags        []string `json:"tags"`
	Image       string   `json:"image"`
	InStock     bool     `json:"in_stock"`
}

// Validate checks the fields the index depends on.
func (it *Item) Validate() error {
	if it.ID == "" {
		return fmt.Errorf("item ID is required")
	}
	if len(it.ID) > 256 {
		return fmt.Errorf("item ID too long (max 256)")
	}
	if !idRegex.MatchString(it.ID) {
		return fmt.Errorf("item ID %q must be alphanumeric with underscores and hyphens", it.ID)
	}
	if strings.TrimSpace(it.Name) == "" {
		return fmt.Errorf("item %s: name is required", it.ID)
	}
	if strings.TrimSpace(it.Category) == "" {
		return fmt.Errorf("item %s: category is required", it.ID)
	}
	if it.Price < 0 {
		return fmt.Errorf("item %s: price must be non-negative", it.ID)
	}
	return nil
}

// SearchText is the lowercased text used for keyword and attribute matching.
func (it *Item) SearchText() string {
	parts := make([]string, 0, 8)
	parts = append(parts, it.Name, it.Category, it.Description)
	parts = append(parts, it.Tags...)
	parts = append(parts, it.Styles...)
	parts = append(parts, it.Colors...)
	parts = append(parts, it.Features...)
	return strings.ToLower(strings.Join(parts, " "))
}

// TruncatedDescription returns the description cut to MaxDescriptionPayload runes.
func (it *Item) TruncatedDescription() string {
	r := []rune(it.Description)
	if len(r) <= MaxDescriptionPayload {
		return it.Description
	}
	return string(r[:MaxDescriptionPayload])
}

// HasColor reports whether the item lists the color (case-insensitive).
func (it *Item) HasColor(color string) bool {
	for _, c := range it.Colors {
		if strings.EqualFold(strings.TrimSpace(c), color) {
			return true
		}
	}
	return false
}
