package furnidex

import (
	"context"

	"github.com/kailas-cloud/furnidex/internal/domain/batch"
	"github.com/kailas-cloud/furnidex/internal/domain/catalog"
	domrec "github.com/kailas-cloud/furnidex/internal/domain/recommend"
	"github.com/kailas-cloud/furnidex/internal/domain/search/filter"
	"github.com/kailas-cloud/furnidex/internal/domain/vector"
	healthuc "github.com/kailas-cloud/furnidex/internal/usecase/health"
	indexinguc "github.com/kailas-cloud/furnidex/internal/usecase/indexing"
)

// --- recommender mock ---

type mockRecommender struct {
	recommendFn func(ctx context.Context, q domrec.Query) (domrec.Response, error)
	similarFn   func(ctx context.Context, id string, space vector.Space, limit int) ([]domrec.Candidate, error)
	byImageFn   func(
		ctx context.Context, data []byte, mime string, space vector.Space, category string, limit int,
	) ([]domrec.Scored, error)
}

func (m *mockRecommender) Recommend(ctx context.Context, q domrec.Query) (domrec.Response, error) {
	return m.recommendFn(ctx, q)
}

func (m *mockRecommender) SimilarTo(
	ctx context.Context, id string, space vector.Space, limit int,
) ([]domrec.Candidate, error) {
	return m.similarFn(ctx, id, space, limit)
}

func (m *mockRecommender) ByImage(
	ctx context.Context, data []byte, mime string, space vector.Space, category string, limit int,
) ([]domrec.Scored, error) {
	return m.byImageFn(ctx, data, mime, space, category, limit)
}

// --- indexer mock ---

type mockIndexer struct {
	runFn func(ctx context.Context, items []catalog.Item) (*batch.Report, error)
	calls int
}

func (m *mockIndexer) Run(
	ctx context.Context, items []catalog.Item, _ indexinguc.Progress,
) (*batch.Report, error) {
	m.calls++
	return m.runFn(ctx, items)
}

// --- health mock ---

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

// --- store mock ---

type mockStore struct {
	pingErr error
	closed  bool
}

func (m *mockStore) Ping(context.Context) error { return m.pingErr }

func (m *mockStore) Close() { m.closed = true }

// --- embedder mock ---

type mockEmbedder struct {
	fn      func(ctx context.Context, text string) (EmbeddingResult, error)
	imageFn func(ctx context.Context, data []byte, mime string) (EmbeddingResult, error)
	texts   int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	m.texts++
	return m.fn(ctx, text)
}

func (m *mockEmbedder) EmbedImage(ctx context.Context, data []byte, mime string) (EmbeddingResult, error) {
	return m.imageFn(ctx, data, mime)
}

type healthyEmbedder struct {
	mockEmbedder
	err error
}

func (h *healthyEmbedder) HealthCheck(context.Context) error { return h.err }

// --- product index fake for wireClient ---

type fakeIndex struct {
	count int
}

func (f *fakeIndex) EnsureIndex(context.Context) (bool, error) { return false, nil }

func (f *fakeIndex) UpsertBatch(context.Context, []catalog.Indexed) error { return nil }

func (f *fakeIndex) Dims() vector.Dims { return vector.DefaultDims() }

func (f *fakeIndex) Count(context.Context) (int, error) { return f.count, nil }

func (f *fakeIndex) Vector(context.Context, string, vector.Space) ([]float32, error) { return nil, nil }

func (f *fakeIndex) Search(
	context.Context, vector.Space, []float32, int, filter.Expression, float64,
) ([]domrec.Candidate, error) {
	return nil, nil
}

// testClient creates a Client with mocked use cases.
func testClient(rec recommender, idx indexer, health healthUseCase) *Client {
	return &Client{
		rec:       rec,
		indexer:   idx,
		healthSvc: health,
	}
}
