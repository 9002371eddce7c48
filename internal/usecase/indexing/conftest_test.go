package indexing

import (
	"context"
	"crypto/sha256"
	"errors"
	"image"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/furnidex/internal/domain"
	"github.com/kailas-cloud/furnidex/internal/domain/catalog"
	"github.com/kailas-cloud/furnidex/internal/domain/color"
	"github.com/kailas-cloud/furnidex/internal/domain/vector"
	"github.com/kailas-cloud/furnidex/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterIndexMetrics()
	os.Exit(m.Run())
}

func testDims() vector.Dims {
	return vector.Dims{vector.Text: 4, vector.Image: 4, vector.Graph: 3, vector.Color: 2}
}

// --- writer ---

type mockWriter struct {
	mu       sync.Mutex
	dims     vector.Dims
	batches  [][]catalog.Indexed
	failures int // fail this many UpsertBatch calls before succeeding
	failFrom int // when > 0, calls numbered failFrom and later fail
	calls    int
	ensureFn func(ctx context.Context) (bool, error)
}

func (m *mockWriter) EnsureIndex(ctx context.Context) (bool, error) {
	if m.ensureFn != nil {
		return m.ensureFn(ctx)
	}
	return true, nil
}

func (m *mockWriter) UpsertBatch(_ context.Context, records []catalog.Indexed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failures > 0 {
		m.failures--
		return errors.New("connection refused")
	}
	if m.failFrom > 0 && m.calls >= m.failFrom {
		return errors.New("connection refused")
	}
	cp := make([]catalog.Indexed, len(records))
	copy(cp, records)
	m.batches = append(m.batches, cp)
	return nil
}

func (m *mockWriter) Dims() vector.Dims { return m.dims }

func (m *mockWriter) all() []catalog.Indexed {
	var out []catalog.Indexed
	for _, b := range m.batches {
		out = append(out, b...)
	}
	return out
}

// --- embedders ---

// hashEmbedder derives a deterministic vector from the input.
type hashEmbedder struct {
	dim    int
	err    error
	inputs []string
}

func hashVector(s string, dim int) []float32 {
	sum := sha256.Sum256([]byte(s))
	v := make([]float32, dim)
	for i := range v {
		v[i] = float32(sum[i%len(sum)])/255 + 0.01
	}
	return v
}

func (h *hashEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	h.inputs = append(h.inputs, text)
	if h.err != nil {
		return domain.EmbeddingResult{}, h.err
	}
	return domain.EmbeddingResult{Embedding: hashVector(text, h.dim)}, nil
}

type mockImages struct {
	dim int
	err error
}

func (m *mockImages) EmbedImage(_ context.Context, data []byte, _ string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: hashVector(string(data), m.dim)}, nil
}

// --- images ---

type mockSource struct {
	missing map[string]bool
}

func (m *mockSource) Fetch(_ context.Context, location string) ([]byte, string, error) {
	if m.missing[location] {
		return nil, "", errors.New("404 not found")
	}
	return []byte("img:" + location), "image/png", nil
}

func decodeOK(data []byte) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
}

type mockColors struct {
	dim int
}

func (m *mockColors) Extract(image.Image) (color.Features, error) {
	v := make([]float32, m.dim)
	v[0] = 1
	return color.Features{Vector: v, Names: []string{"blue", "white"}}, nil
}

// --- graph ---

type mapGraph map[string][]float32

func (g mapGraph) Get(id string) ([]float32, bool, error) {
	v, ok := g[id]
	return v, ok, nil
}

// --- progress ---

type countingProgress struct{ n int }

func (p *countingProgress) Add(n int) error {
	p.n += n
	return nil
}

// --- helpers ---

type fixture struct {
	svc    *Service
	writer *mockWriter
	text   *hashEmbedder
	images *mockImages
	source *mockSource
	graph  mapGraph
}

func newFixture() *fixture {
	dims := testDims()
	f := &fixture{
		writer: &mockWriter{dims: dims},
		text:   &hashEmbedder{dim: dims[vector.Text]},
		images: &mockImages{dim: dims[vector.Image]},
		source: &mockSource{missing: map[string]bool{}},
		graph:  mapGraph{},
	}
	cfg := DefaultConfig()
	cfg.BaseDelay = time.Millisecond
	f.svc = New(Deps{
		Writer: f.writer,
		Text:   f.text,
		Images: f.images,
		Source: f.source,
		Decode: decodeOK,
		Colors: &mockColors{dim: dims[vector.Color]},
		Graph:  f.graph,
	}, cfg, nil)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	f.svc.now = func() time.Time { return fixed }
	return f
}

func items(n int) []catalog.Item {
	out := make([]catalog.Item, n)
	for i := range out {
		id := string(rune('a' + i))
		out[i] = catalog.Item{
			ID:          "item-" + id,
			Name:        "Item " + id,
			Category:    "sofa",
			Price:       float64(100 * (i + 1)),
			Description: "comfortable sofa " + id,
			Colors:      []string{"blue"},
			Image:       "https://img.example/" + id + ".png",
		}
	}
	return out
}
