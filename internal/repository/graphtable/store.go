// Package graphtable persists node2vec product embeddings in a bbolt file
// shared between the graph builder and the indexer.
package graphtable

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"time"

	"go.etcd.io/bbolt"

	"github.com/kailas-cloud/furnidex/internal/domain"
	"github.com/kailas-cloud/furnidex/internal/domain/graph"
	"github.com/kailas-cloud/furnidex/internal/domain/vector"
)

var (
	bucketVectors = []byte("graph_vectors")
	bucketMeta    = []byte("graph_meta")
	keyBuiltAt    = []byte("built_at")
	keyDim        = []byte("dim")
)

// Meta describes the stored table.
type Meta struct {
	Nodes   int
	Dim     int
	BuiltAt time.Time
}

// Store is a bbolt-backed graph embedding table.
type Store struct {
	db *bbolt.DB
}

// Open opens or creates the table file at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open graph table %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketVectors, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// OpenReadOnly opens an existing table file for reading. The builder keeps its
// write lock until it closes, so readers wait up to a second for it. A missing
// file is reported with an error wrapping fs.ErrNotExist.
func OpenReadOnly(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open graph table: %w", err)
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{ReadOnly: true, Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open graph table %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the file lock.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close graph table: %w", err)
	}
	return nil
}

// Save replaces the whole table atomically.
func (s *Store) Save(t graph.Table, builtAt time.Time) error {
	dim := 0
	for _, v := range t {
		dim = len(v)
		break
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketVectors); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return fmt.Errorf("reset vectors: %w", err)
		}
		b, err := tx.CreateBucket(bucketVectors)
		if err != nil {
			return fmt.Errorf("create vectors: %w", err)
		}
		for id, v := range t {
			if len(v) != dim {
				return fmt.Errorf("node %s: got %d, want %d: %w", id, len(v), dim, domain.ErrDimensionMismatch)
			}
			if err := b.Put([]byte(id), vector.Encode(v)); err != nil {
				return fmt.Errorf("put %s: %w", id, err)
			}
		}

		meta := tx.Bucket(bucketMeta)
		ts, err := builtAt.UTC().MarshalBinary()
		if err != nil {
			return fmt.Errorf("encode built_at: %w", err)
		}
		if err := meta.Put(keyBuiltAt, ts); err != nil {
			return err
		}
		return meta.Put(keyDim, binary.LittleEndian.AppendUint32(nil, uint32(dim)))
	})
}

// Load reads the whole table into memory.
func (s *Store) Load() (graph.Table, error) {
	t := make(graph.Table)
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			vec, err := vector.Decode(v)
			if err != nil {
				return fmt.Errorf("node %s: %w", k, err)
			}
			t[string(k)] = vec
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load graph table: %w", err)
	}
	return t, nil
}

// Get returns one node's embedding. Absent nodes report ok=false.
func (s *Store) Get(id string) (vec []float32, ok bool, err error) {
	err = s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		if b == nil {
			return nil
		}
		data := b.Get([]byte(id))
		if data == nil {
			return nil
		}
		vec, err = vector.Decode(data)
		ok = err == nil
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", id, err)
	}
	return vec, ok, nil
}

// Meta reports the size and build time of the stored table.
func (s *Store) Meta() (Meta, error) {
	var m Meta
	err := s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(bucketVectors); b != nil {
			m.Nodes = b.Stats().KeyN
		}
		meta := tx.Bucket(bucketMeta)
		if meta == nil {
			return nil
		}
		if raw := meta.Get(keyDim); len(raw) == 4 {
			m.Dim = int(binary.LittleEndian.Uint32(raw))
		}
		if raw := meta.Get(keyBuiltAt); raw != nil {
			if err := m.BuiltAt.UnmarshalBinary(raw); err != nil {
				return fmt.Errorf("decode built_at: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return Meta{}, fmt.Errorf("graph table meta: %w", err)
	}
	return m, nil
}

// Empty stands in for a table that was never built: every node is absent.
type Empty struct{}

// Get reports every node as absent.
func (Empty) Get(string) ([]float32, bool, error) { return nil, false, nil }
