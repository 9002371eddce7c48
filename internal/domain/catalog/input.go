package catalog

import (
	"slices"
	"strings"
)

// InputWeights is how many times each part of an item is repeated in the
// text handed to the embedder. Repetition biases the embedding toward that part.
type InputWeights struct {
	Category    int `yaml:"category"`
	Description int `yaml:"description"`
	Colors      int `yaml:"colors"`
	Material    int `yaml:"material"`
	Styles      int `yaml:"styles"`
}

// DefaultInputWeights returns category x15, description x1, colors x3, material/features x3, styles x2.
func DefaultInputWeights() InputWeights {
	return InputWeights{Category: 15, Description: 1, Colors: 3, Material: 3, Styles: 2}
}

// EmbeddingInput builds the weighted text for an item. Empty parts are skipped.
func (it *Item) EmbeddingInput(w InputWeights) string {
	var parts []string
	repeat := func(s string, n int) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		for range n {
			parts = append(parts, s)
		}
	}
	repeat(it.Category, w.Category)
	repeat(it.Description, w.Description)
	repeat(strings.Join(it.Colors, " "), w.Colors)
	repeat(strings.Join(append(slices.Clone(it.Features), it.Tags...), " "), w.Material)
	repeat(strings.Join(it.Styles, " "), w.Styles)
	return strings.Join(parts, " ")
}

