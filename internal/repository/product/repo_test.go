package product

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/kailas-cloud/furnidex/internal/db"
	"github.com/kailas-cloud/furnidex/internal/domain"
	"github.com/kailas-cloud/furnidex/internal/domain/catalog"
	"github.com/kailas-cloud/furnidex/internal/domain/search/filter"
	"github.com/kailas-cloud/furnidex/internal/domain/vector"
)

func sofa() catalog.Item {
	return catalog.Item{
		ID: "sofa-1", Name: "Harbor Sofa", Category: "Sofa", Price: 949, Rating: 4.5,
		Description: "Blue velvet three seater", Styles: []string{"Modern"},
		Colors: []string{"blue", "navy, dark"}, Features: []string{"storage, hidden"},
		Image: "https://img/1.jpg", InStock: true,
	}
}

func TestDefinition(t *testing.T) {
	repo, _ := newTestRepo(t)
	def, err := repo.Definition()
	if err != nil {
		t.Fatal(err)
	}
	if def.Name != IndexName || !slices.Equal(def.Prefixes, []string{KeyPrefix}) {
		t.Errorf("def = %s %v", def.Name, def.Prefixes)
	}
	vf := def.VectorFields()
	if len(vf) != 4 {
		t.Fatalf("vector fields = %d, want 4", len(vf))
	}
	for _, f := range vf {
		if f.VectorDistance != db.DistanceCosine || f.VectorAlgo != db.VectorHNSW {
			t.Errorf("%s: %s/%s", f.Name, f.VectorAlgo, f.VectorDistance)
		}
	}
	if vf[3].Name != "vec_color" || vf[3].VectorDim != 3 {
		t.Errorf("color field = %+v", vf[3])
	}
}

func TestEnsureIndex(t *testing.T) {
	tests := []struct {
		name        string
		exists      bool
		createErr   error
		wantCreated bool
		wantErr     bool
	}{
		{"missing", false, nil, true, false},
		{"present", true, nil, false, false},
		{"race", false, db.ErrIndexExists, false, false},
		{"failure", false, errors.New("boom"), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, ms := newTestRepo(t)
			ms.indexExistsFn = func(context.Context, string) (bool, error) { return tt.exists, nil }
			called := false
			ms.createIndexFn = func(context.Context, *db.IndexDefinition) error {
				called = true
				return tt.createErr
			}
			created, err := repo.EnsureIndex(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			if created != tt.wantCreated {
				t.Errorf("created = %v, want %v", created, tt.wantCreated)
			}
			if tt.exists && called {
				t.Error("CreateIndex called for existing index")
			}
		})
	}
}

func TestUpsertBatch_Payload(t *testing.T) {
	repo, ms := newTestRepo(t)
	rec, err := vector.NewRecord(smallDims(), map[vector.Space][]float32{vector.Text: {1, 0, 0, 0}})
	if err != nil {
		t.Fatal(err)
	}
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	var got []db.HashSetItem
	ms.hsetMultiFn = func(_ context.Context, items []db.HashSetItem) error {
		got = items
		return nil
	}
	err = repo.UpsertBatch(context.Background(), []catalog.Indexed{
		{Item: sofa(), Vectors: rec, Palette: []string{"blue", "gray"}, IndexedAt: at},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Key != "furnidex:product:sofa-1" {
		t.Fatalf("items = %+v", got)
	}
	f := got[0].Fields
	checks := map[string]string{
		"category":   "sofa",
		"price":      "949",
		"styles":     "modern",
		"colors":     "blue,navy  dark",
		"palette":    "blue,gray",
		"indexed_at": "2026-01-02T03:04:05Z",
		"in_stock":   "true",
	}
	for k, want := range checks {
		if f[k] != want {
			t.Errorf("%s = %q, want %q", k, f[k], want)
		}
	}
	graph, err := vector.Decode([]byte(f["vec_graph"]))
	if err != nil || len(graph) != 2 || !vector.IsZero(graph) {
		t.Errorf("vec_graph = %v, %v; want zero vector of 2", graph, err)
	}
}

func TestUpsertBatch_Empty(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hsetMultiFn = func(context.Context, []db.HashSetItem) error {
		t.Fatal("store must not be called")
		return nil
	}
	if err := repo.UpsertBatch(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
}

func TestSearch_ThresholdAndMapping(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if q.Field != "vec_text" || q.K != 5 || q.IndexName != IndexName {
			t.Errorf("query = %+v", q)
		}
		return &db.SearchResult{Total: 2, Entries: []db.SearchEntry{
			{Key: KeyPrefix + "a", Score: 0.8, Fields: map[string]string{
				"id": "a", "name": "A", "price": "549", "colors": "blue,gray", "features": "storage|usb",
			}},
			{Key: KeyPrefix + "b", Score: 0.3, Fields: map[string]string{"id": "b"}},
		}}, nil
	}
	got, err := repo.Search(context.Background(), vector.Text, []float32{1, 0, 0, 0}, 5, filter.Expression{}, 0.45)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	c := got[0]
	if c.Item.ID != "a" || c.Item.Price != 549 || c.Similarity != 0.8 || c.Space != vector.Text {
		t.Errorf("candidate = %+v", c)
	}
	if !slices.Equal(c.Item.Colors, []string{"blue", "gray"}) || !slices.Equal(c.Item.Features, []string{"storage", "usb"}) {
		t.Errorf("lists = %v %v", c.Item.Colors, c.Item.Features)
	}
}

func TestSearch_DimensionMismatch(t *testing.T) {
	repo, _ := newTestRepo(t)
	_, err := repo.Search(context.Background(), vector.Graph, []float32{1, 2, 3}, 5, filter.Expression{}, 0)
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("err = %v, want ErrDimensionMismatch", err)
	}
}

func TestRetrieve(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hgetAllFn = func(_ context.Context, k string) (map[string]string, error) {
		if k != KeyPrefix+"sofa-1" {
			return map[string]string{}, nil
		}
		return map[string]string{
			"id": "sofa-1", "name": "Harbor Sofa",
			"vec_graph": string(vector.Encode([]float32{0.5, 0.5})),
		}, nil
	}

	it, vecs, err := repo.Retrieve(context.Background(), "sofa-1", vector.Graph, vector.Color)
	if err != nil {
		t.Fatal(err)
	}
	if it.Name != "Harbor Sofa" {
		t.Errorf("item = %+v", it)
	}
	if !slices.Equal(vecs[vector.Graph], []float32{0.5, 0.5}) {
		t.Errorf("graph = %v", vecs[vector.Graph])
	}
	if _, ok := vecs[vector.Color]; ok {
		t.Error("absent field must not be returned")
	}

	if _, _, err := repo.Retrieve(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestVector_ZeroIsNotFound(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hmgetFn = func(_ context.Context, _ string, fields ...string) (map[string]string, error) {
		return map[string]string{fields[0]: string(vector.Encode([]float32{0, 0}))}, nil
	}
	if _, err := repo.Vector(context.Background(), "x", vector.Graph); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestVector_Found(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hmgetFn = func(_ context.Context, _ string, fields ...string) (map[string]string, error) {
		if !slices.Equal(fields, []string{"vec_graph"}) {
			t.Errorf("fields = %v", fields)
		}
		return map[string]string{"vec_graph": string(vector.Encode([]float32{0.1, 0.2}))}, nil
	}
	v, err := repo.Vector(context.Background(), "x", vector.Graph)
	if err != nil || len(v) != 2 {
		t.Fatalf("Vector() = %v, %v", v, err)
	}
}

func TestCount(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchCountFn = func(_ context.Context, index, query string) (int, error) {
		if index != IndexName || query != "*" {
			t.Errorf("count %s %s", index, query)
		}
		return 7, nil
	}
	if n, err := repo.Count(context.Background()); err != nil || n != 7 {
		t.Fatalf("Count() = %d, %v", n, err)
	}
}
