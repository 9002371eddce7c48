// Package product persists indexed catalog items and runs per-space similarity searches over them.
package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/furnidex/internal/db"
	"github.com/kailas-cloud/furnidex/internal/domain"
	"github.com/kailas-cloud/furnidex/internal/domain/catalog"
	"github.com/kailas-cloud/furnidex/internal/domain/recommend"
	"github.com/kailas-cloud/furnidex/internal/domain/search/filter"
	"github.com/kailas-cloud/furnidex/internal/domain/vector"
)

// Key layout.
const (
	KeyPrefix = domain.KeyPrefix + "product:"
	IndexName = KeyPrefix + "idx"
)

// store is the consumer interface (ISP).
type store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HMGet(ctx context.Context, key string, fields ...string) (map[string]string, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// IndexConfig shapes the vector fields of the index.
type IndexConfig struct {
	Dims        vector.Dims
	Algorithm   db.VectorAlgorithm
	M           int
	EFConstruct int
}

// Repo is the product vector index.
type Repo struct {
	store store
	cfg   IndexConfig
}

// New creates a product repository.
func New(s store, cfg IndexConfig) *Repo {
	if cfg.Dims == nil {
		cfg.Dims = vector.DefaultDims()
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = db.VectorHNSW
	}
	return &Repo{store: s, cfg: cfg}
}

// Dims returns the configured dimension per space.
func (r *Repo) Dims() vector.Dims { return r.cfg.Dims }

func key(id string) string { return KeyPrefix + id }

// Definition builds the FT index schema.
func (r *Repo) Definition() (*db.IndexDefinition, error) {
	b := db.NewIndex(IndexName).
		Prefix(KeyPrefix).
		Tag(fieldCategory).
		TagList(fieldStyles, tagSep).
		TagList(fieldColors, tagSep).
		Numeric(fieldPrice).
		Numeric(fieldRating)
	for _, s := range vector.All {
		b = b.Vector(s.Field(), r.cfg.Dims[s], r.cfg.Algorithm, db.DistanceCosine, r.cfg.M, r.cfg.EFConstruct)
	}
	return b.Build()
}

// EnsureIndex creates the index when it is missing. It reports whether it created one.
func (r *Repo) EnsureIndex(ctx context.Context) (bool, error) {
	exists, err := r.store.IndexExists(ctx, IndexName)
	if err != nil {
		return false, fmt.Errorf("check index: %w", err)
	}
	if exists {
		return false, nil
	}
	def, err := r.Definition()
	if err != nil {
		return false, fmt.Errorf("index definition: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, fmt.Errorf("create index: %w", err)
	}
	return true, nil
}

// UpsertBatch writes records in one pipelined round-trip, replacing each hash wholesale.
func (r *Repo) UpsertBatch(ctx context.Context, records []catalog.Indexed) error {
	if len(records) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, 0, len(records))
	for _, rec := range records {
		items = append(items, db.HashSetItem{Key: key(rec.Item.ID), Fields: toHash(rec)})
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert %d products: %w", len(records), err)
	}
	return nil
}

// Search returns up to k products nearest to vec in space, passing the metadata
// pre-filter and scoring at least threshold.
func (r *Repo) Search(
	ctx context.Context, space vector.Space, vec []float32, k int,
	filters filter.Expression, threshold float64,
) ([]recommend.Candidate, error) {
	if dim := r.cfg.Dims[space]; len(vec) != dim {
		return nil, fmt.Errorf("%s query vector has %d dims, want %d: %w",
			space, len(vec), dim, domain.ErrDimensionMismatch)
	}
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    IndexName,
		Field:        space.Field(),
		Filters:      filters,
		Vector:       vec,
		K:            k,
		ReturnFields: payloadFields,
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", space, err)
	}
	if sr == nil {
		return nil, nil
	}
	out := make([]recommend.Candidate, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		if e.Score < threshold {
			continue
		}
		it := fromHash(e.Fields)
		if it.ID == "" {
			it.ID = strings.TrimPrefix(e.Key, KeyPrefix)
		}
		out = append(out, recommend.Candidate{Item: it, Similarity: e.Score, Space: space})
	}
	return out, nil
}

// Retrieve loads a product and the requested vectors. Missing ids yield domain.ErrNotFound.
func (r *Repo) Retrieve(ctx context.Context, id string, spaces ...vector.Space) (catalog.Item, map[vector.Space][]float32, error) {
	fields, err := r.store.HGetAll(ctx, key(id))
	if err != nil {
		return catalog.Item{}, nil, fmt.Errorf("get product %s: %w", id, err)
	}
	if len(fields) == 0 {
		return catalog.Item{}, nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	vecs := make(map[vector.Space][]float32, len(spaces))
	for _, s := range spaces {
		raw, ok := fields[s.Field()]
		if !ok {
			continue
		}
		v, err := vector.Decode([]byte(raw))
		if err != nil {
			return catalog.Item{}, nil, fmt.Errorf("decode %s of %s: %w", s, id, err)
		}
		vecs[s] = v
	}
	it := fromHash(fields)
	if it.ID == "" {
		it.ID = id
	}
	return it, vecs, nil
}

// Vector fetches a single stored vector. An absent or all-zero vector yields domain.ErrNotFound.
func (r *Repo) Vector(ctx context.Context, id string, space vector.Space) ([]float32, error) {
	fields, err := r.store.HMGet(ctx, key(id), space.Field())
	if err != nil {
		return nil, fmt.Errorf("get %s vector of %s: %w", space, id, err)
	}
	raw, ok := fields[space.Field()]
	if !ok {
		return nil, fmt.Errorf("%s vector of %s: %w", space, id, domain.ErrNotFound)
	}
	v, err := vector.Decode([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("decode %s of %s: %w", space, id, err)
	}
	if vector.IsZero(v) {
		return nil, fmt.Errorf("%s vector of %s is empty: %w", space, id, domain.ErrNotFound)
	}
	return v, nil
}

// Count returns the number of indexed products.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, IndexName, "*")
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}
