// Package graph builds the product relationship graph and learns node embeddings from it.
package graph

import (
	"cmp"
	"slices"
)

// Edge is a weighted link to a neighbour.
type Edge struct {
	To     int
	Weight float64
}

// Graph is an undirected weighted graph over product ids.
type Graph struct {
	ids   []string
	index map[string]int
	adj   []map[int]float64
}

// New creates a graph with one node per id. Duplicate ids collapse to one node.
func New(ids []string) *Graph {
	g := &Graph{index: make(map[string]int, len(ids))}
	for _, id := range ids {
		if _, ok := g.index[id]; ok {
			continue
		}
		g.index[id] = len(g.ids)
		g.ids = append(g.ids, id)
		g.adj = append(g.adj, map[int]float64{})
	}
	return g
}

// Len returns the node count.
func (g *Graph) Len() int { return len(g.ids) }

// ID returns the product id of node i.
func (g *Graph) ID(i int) string { return g.ids[i] }

// Index returns the node for id.
func (g *Graph) Index(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// SetEdge sets the weight of the undirected edge a-b. Self loops and non-positive weights are ignored.
func (g *Graph) SetEdge(a, b int, w float64) {
	if a == b || w <= 0 {
		return
	}
	g.adj[a][b] = w
	g.adj[b][a] = w
}

// AddWeight adds w to the a-b edge, creating it if needed.
func (g *Graph) AddWeight(a, b int, w float64) {
	g.SetEdge(a, b, g.adj[a][b]+w)
}

// Weight returns the a-b edge weight.
func (g *Graph) Weight(a, b int) (float64, bool) {
	w, ok := g.adj[a][b]
	return w, ok
}

// Degree returns the number of neighbours of i.
func (g *Graph) Degree(i int) int { return len(g.adj[i]) }

// Neighbors returns i's edges ordered by neighbour index.
func (g *Graph) Neighbors(i int) []Edge {
	out := make([]Edge, 0, len(g.adj[i]))
	for j, w := range g.adj[i] {
		out = append(out, Edge{To: j, Weight: w})
	}
	slices.SortFunc(out, func(a, b Edge) int { return cmp.Compare(a.To, b.To) })
	return out
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, m := range g.adj {
		n += len(m)
	}
	return n / 2
}
