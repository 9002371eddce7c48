package graph

import (
	"cmp"
	"slices"
	"strings"

	"github.com/kailas-cloud/furnidex/internal/domain/catalog"
	"github.com/kailas-cloud/furnidex/internal/domain/vector"
)

// BuildConfig controls edge construction.
type BuildConfig struct {
	TopK            int     // similarity neighbours per item
	SimilarityFloor float64 // minimum cosine for a similarity edge
	AttributeBase   float64 // weight for one shared attribute
	AttributeExtra  float64 // added per additional shared attribute
}

// DefaultBuildConfig returns the standard edge parameters.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{TopK: 10, SimilarityFloor: 0.7, AttributeBase: 1.0, AttributeExtra: 0.5}
}

// Build links items by text similarity and shared attributes.
// Items are sorted by id first so the result does not depend on input order.
// textVecs may miss items; those only receive attribute edges.
func Build(items []catalog.Item, textVecs map[string][]float32, cfg BuildConfig) *Graph {
	sorted := slices.Clone(items)
	slices.SortFunc(sorted, func(a, b catalog.Item) int { return cmp.Compare(a.ID, b.ID) })

	ids := make([]string, len(sorted))
	for i, it := range sorted {
		ids[i] = it.ID
	}
	g := New(ids)

	addSimilarityEdges(g, sorted, textVecs, cfg)
	addAttributeEdges(g, sorted, cfg)
	return g
}

func addSimilarityEdges(g *Graph, items []catalog.Item, textVecs map[string][]float32, cfg BuildConfig) {
	type scored struct {
		j   int
		sim float64
	}
	for i, a := range items {
		va := textVecs[a.ID]
		if vector.IsZero(va) {
			continue
		}
		var cands []scored
		for j, b := range items {
			if i == j {
				continue
			}
			sim := vector.Cosine(va, textVecs[b.ID])
			if sim >= cfg.SimilarityFloor {
				cands = append(cands, scored{j, sim})
			}
		}
		slices.SortFunc(cands, func(x, y scored) int {
			if c := cmp.Compare(y.sim, x.sim); c != 0 {
				return c
			}
			return cmp.Compare(x.j, y.j)
		})
		if len(cands) > cfg.TopK {
			cands = cands[:cfg.TopK]
		}
		ia, _ := g.Index(a.ID)
		for _, c := range cands {
			ib, _ := g.Index(items[c.j].ID)
			if w, ok := g.Weight(ia, ib); !ok || c.sim > w {
				g.SetEdge(ia, ib, c.sim)
			}
		}
	}
}

func addAttributeEdges(g *Graph, items []catalog.Item, cfg BuildConfig) {
	for i := range items {
		for j := i + 1; j < len(items); j++ {
			shared := SharedAttributes(items[i], items[j])
			if shared == 0 {
				continue
			}
			w := cfg.AttributeBase + cfg.AttributeExtra*float64(shared-1)
			ia, _ := g.Index(items[i].ID)
			ib, _ := g.Index(items[j].ID)
			if _, ok := g.Weight(ia, ib); ok {
				w /= 2
			}
			g.AddWeight(ia, ib, w)
		}
	}
}

// SharedAttributes counts shared category, style and color values (case-insensitive).
func SharedAttributes(a, b catalog.Item) int {
	n := 0
	if a.Category != "" && strings.EqualFold(a.Category, b.Category) {
		n++
	}
	n += overlap(a.Styles, b.Styles)
	n += overlap(a.Colors, b.Colors)
	return n
}

func overlap(a, b []string) int {
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[strings.ToLower(s)] = struct{}{}
	}
	n := 0
	for _, s := range b {
		k := strings.ToLower(s)
		if _, ok := set[k]; ok {
			n++
			delete(set, k)
		}
	}
	return n
}
