package activity

import (
	"context"
	"path"
	"sort"
	"strconv"
	"time"

	"github.com/kailas-cloud/furnidex/internal/db"
)

// memStore is an in-memory hash store.
type memStore struct {
	hashes  map[string]map[string]string
	expires map[string]time.Duration
	scanErr error
}

func newMemStore() *memStore {
	return &memStore{hashes: map[string]map[string]string{}, expires: map[string]time.Duration{}}
}

func (m *memStore) HSetMulti(_ context.Context, items []db.HashSetItem) error {
	for _, it := range items {
		h := m.hashes[it.Key]
		if h == nil {
			h = map[string]string{}
			m.hashes[it.Key] = h
		}
		for k, v := range it.Fields {
			h[k] = v
		}
		if it.TTL > 0 {
			m.expires[it.Key] = it.TTL
		}
	}
	return nil
}

func (m *memStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	out := map[string]string{}
	for k, v := range m.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (m *memStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		out[i], _ = m.HGetAll(ctx, k)
	}
	return out, nil
}

func (m *memStore) HIncrBy(_ context.Context, key, field string, val int64) error {
	h := m.hashes[key]
	if h == nil {
		h = map[string]string{}
		m.hashes[key] = h
	}
	n, _ := strconv.ParseInt(h[field], 10, 64)
	h[field] = strconv.FormatInt(n+val, 10)
	return nil
}

func (m *memStore) Expire(_ context.Context, key string, ttl time.Duration, _ bool) error {
	m.expires[key] = ttl
	return nil
}

func (m *memStore) Scan(_ context.Context, pattern string) ([]string, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	var keys []string
	for k := range m.hashes {
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
