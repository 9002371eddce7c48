package chi

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/kailas-cloud/furnidex/internal/db"
	"github.com/kailas-cloud/furnidex/internal/domain"
	"github.com/kailas-cloud/furnidex/internal/domain/preference"
	"github.com/kailas-cloud/furnidex/internal/domain/vector"
	"github.com/kailas-cloud/furnidex/internal/repository/product"
	scoring "github.com/kailas-cloud/furnidex/internal/usecase/compromise"
	recommenduc "github.com/kailas-cloud/furnidex/internal/usecase/recommend"
)

// failingStore answers every command the way rueidis does when Redis is down
// or the product index was never created.
type failingStore struct{ err *db.Error }

func (f failingStore) CreateIndex(context.Context, *db.IndexDefinition) error { return f.err }

func (f failingStore) IndexExists(context.Context, string) (bool, error) { return false, f.err }

func (f failingStore) HSetMulti(context.Context, []db.HashSetItem) error { return f.err }

func (f failingStore) HGetAll(context.Context, string) (map[string]string, error) { return nil, f.err }

func (f failingStore) HMGet(context.Context, string, ...string) (map[string]string, error) {
	return nil, f.err
}

func (f failingStore) SearchKNN(context.Context, *db.KNNQuery) (*db.SearchResult, error) {
	return nil, f.err
}

func (f failingStore) SearchCount(context.Context, string, string) (int, error) { return 0, f.err }

type fixedEmbedder struct{}

func (fixedEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: []float32{1, 0, 0}}, nil
}

type noPreferences struct{}

func (noPreferences) Extract(string, []float32) preference.Constraints { return preference.Constraints{} }

func handlerOverStore(store failingStore) http.Handler {
	dims := vector.Dims{vector.Text: 3, vector.Image: 3, vector.Graph: 3, vector.Color: 3}
	svc := recommenduc.New(recommenduc.Deps{
		Index:       product.New(store, product.IndexConfig{Dims: dims}),
		Embedder:    fixedEmbedder{},
		Preferences: noPreferences{},
		Scorer:      scoring.New(scoring.DefaultConfig()),
	}, recommenduc.DefaultConfig(), nil)
	return NewServer(svc, nil, &mockHealth{}, nil).Handler(RouterConfig{})
}

func TestVectorIndexOutage_ServiceUnavailable(t *testing.T) {
	refused := &db.Error{Op: db.OpSearch, Err: errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")}
	missing := &db.Error{
		Op:    db.OpSearch,
		Err:   errors.Join(db.ErrIndexNotFound, errors.New("furnidex:product:idx: no such index")),
		Reply: true,
	}
	stores := map[string]failingStore{}
	stores["connection refused"] = failingStore{err: refused}
	stores["index missing"] = failingStore{err: missing}
	requests := []struct {
		method, path, body string
	}{
		{"POST", "/recommend/smart", `{"query":"blue sofa"}`},
		{"POST", "/recommend/text", `{"query":"oak dining table under $600"}`},
		{"GET", "/products/sofa-1/similar?space=graph", ""},
	}
	for name, store := range stores {
		h := handlerOverStore(store)
		for _, req := range requests {
			t.Run(name+" "+req.path, func(t *testing.T) {
				rr := do(t, h, req.method, req.path, req.body)
				if rr.Code != http.StatusServiceUnavailable {
					t.Fatalf("status = %d, want 503; body %s", rr.Code, rr.Body.String())
				}
				if resp := decodeError(t, rr); resp.Code != CodeUpstreamUnavailable {
					t.Errorf("code = %s, want %s", resp.Code, CodeUpstreamUnavailable)
				}
			})
		}
	}
}

func TestRejectedCommand_InternalError(t *testing.T) {
	store := failingStore{err: &db.Error{Op: db.OpSearch, Err: errors.New("Syntax error at offset 3"), Reply: true}}

	rr := do(t, handlerOverStore(store), "POST", "/recommend/smart", `{"query":"blue sofa"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500; body %s", rr.Code, rr.Body.String())
	}
}
