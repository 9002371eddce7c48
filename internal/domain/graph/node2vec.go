package graph

import (
	"math"
	"math/rand/v2"
)

// EmbedConfig controls random walks and skip-gram training.
type EmbedConfig struct {
	Dim          int
	WalkLength   int
	WalksPerNode int
	Window       int
	Negatives    int
	Epochs       int
	LearningRate float64
	P            float64 // return parameter
	Q            float64 // in-out parameter
	Seed         int64
}

// DefaultEmbedConfig returns the standard embedding parameters.
func DefaultEmbedConfig() EmbedConfig {
	return EmbedConfig{
		Dim: 256, WalkLength: 30, WalksPerNode: 10, Window: 5, Negatives: 5,
		Epochs: 1, LearningRate: 0.025, P: 1, Q: 1, Seed: 42,
	}
}

// Table maps product id to its graph embedding.
type Table map[string][]float32

// Embed learns node embeddings. Graphs with fewer than two nodes and isolated
// nodes produce no entry.
func Embed(g *Graph, cfg EmbedConfig) Table {
	out := Table{}
	if g.Len() < 2 || g.EdgeCount() == 0 {
		return out
	}
	rng := rand.New(rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed)^0x9e3779b97f4a7c15))

	walks := simulateWalks(g, cfg, rng)
	m := newSkipGram(g.Len(), cfg.Dim, rng)
	m.train(walks, cfg, rng)

	for i := range g.Len() {
		if g.Degree(i) == 0 {
			continue
		}
		v := make([]float32, cfg.Dim)
		copy(v, m.in[i])
		out[g.ID(i)] = v
	}
	return out
}

func simulateWalks(g *Graph, cfg EmbedConfig, rng *rand.Rand) [][]int {
	neighbors := make([][]Edge, g.Len())
	for i := range neighbors {
		neighbors[i] = g.Neighbors(i)
	}
	var walks [][]int
	for range cfg.WalksPerNode {
		order := rng.Perm(g.Len())
		for _, start := range order {
			if len(neighbors[start]) == 0 {
				continue
			}
			walks = append(walks, walk(g, neighbors, start, cfg, rng))
		}
	}
	return walks
}

// walk performs one biased second-order walk from start.
func walk(g *Graph, neighbors [][]Edge, start int, cfg EmbedConfig, rng *rand.Rand) []int {
	path := make([]int, 1, cfg.WalkLength)
	path[0] = start
	for len(path) < cfg.WalkLength {
		cur := path[len(path)-1]
		edges := neighbors[cur]
		if len(edges) == 0 {
			break
		}
		prev := -1
		if len(path) > 1 {
			prev = path[len(path)-2]
		}
		weights := make([]float64, len(edges))
		var total float64
		for k, e := range edges {
			w := e.Weight
			switch {
			case prev < 0:
			case e.To == prev:
				w /= cfg.P
			default:
				if _, ok := g.Weight(prev, e.To); !ok {
					w /= cfg.Q
				}
			}
			weights[k] = w
			total += w
		}
		r := rng.Float64() * total
		next := edges[len(edges)-1].To
		for k, w := range weights {
			r -= w
			if r <= 0 {
				next = edges[k].To
				break
			}
		}
		path = append(path, next)
	}
	return path
}

type skipGram struct {
	dim   int
	in    [][]float32
	out   [][]float32
	table []int
}

const unigramTableSize = 1 << 16

func newSkipGram(n, dim int, rng *rand.Rand) *skipGram {
	m := &skipGram{dim: dim, in: make([][]float32, n), out: make([][]float32, n)}
	for i := range n {
		m.in[i] = make([]float32, dim)
		m.out[i] = make([]float32, dim)
		for d := range dim {
			m.in[i][d] = float32((rng.Float64() - 0.5) / float64(dim))
		}
	}
	return m
}

// buildNoise fills the negative sampling table with frequency^0.75.
func (m *skipGram) buildNoise(walks [][]int) {
	freq := make([]float64, len(m.in))
	for _, w := range walks {
		for _, n := range w {
			freq[n]++
		}
	}
	var total float64
	for i := range freq {
		freq[i] = math.Pow(freq[i], 0.75)
		total += freq[i]
	}
	m.table = make([]int, 0, unigramTableSize)
	for i, f := range freq {
		count := int(math.Round(f / total * unigramTableSize))
		for range count {
			m.table = append(m.table, i)
		}
	}
	if len(m.table) == 0 {
		for i := range freq {
			m.table = append(m.table, i)
		}
	}
}

func (m *skipGram) train(walks [][]int, cfg EmbedConfig, rng *rand.Rand) {
	m.buildNoise(walks)
	totalSteps := float64(cfg.Epochs * len(walks))
	step := 0.0
	grad := make([]float32, m.dim)
	for range cfg.Epochs {
		for _, w := range walks {
			lr := cfg.LearningRate * math.Max(1e-4, 1-step/totalSteps)
			step++
			for pos, center := range w {
				lo := max(0, pos-cfg.Window)
				hi := min(len(w)-1, pos+cfg.Window)
				for ctx := lo; ctx <= hi; ctx++ {
					if ctx == pos {
						continue
					}
					m.update(center, w[ctx], cfg.Negatives, float32(lr), grad, rng)
				}
			}
		}
	}
}

// update applies one positive pair and its negative samples.
func (m *skipGram) update(center, context, negatives int, lr float32, grad []float32, rng *rand.Rand) {
	clear(grad)
	vin := m.in[center]
	for k := 0; k <= negatives; k++ {
		target, label := context, float32(1)
		if k > 0 {
			target = m.table[rng.IntN(len(m.table))]
			if target == context {
				continue
			}
			label = 0
		}
		vout := m.out[target]
		var dot float32
		for d := range vin {
			dot += vin[d] * vout[d]
		}
		g := (label - sigmoid(dot)) * lr
		for d := range vin {
			grad[d] += g * vout[d]
			vout[d] += g * vin[d]
		}
	}
	for d := range vin {
		vin[d] += grad[d]
	}
}

func sigmoid(x float32) float32 {
	switch {
	case x > 6:
		return 1
	case x < -6:
		return 0
	}
	return float32(1 / (1 + math.Exp(-float64(x))))
}
