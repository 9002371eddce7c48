// Package db defines the storage furnidex needs from Redis Stack: product
// hashes with a vector index, per-user activity counters and a key/value
// cache for embeddings.
package db

import (
	"context"
	"time"
)

// Store is everything the Redis backend provides. Each consumer declares its
// own narrow interface; the groups below document which command serves whom.
type Store interface {
	Lifecycle
	CatalogStore
	ActivityStore
	CacheStore
}

// Lifecycle covers startup and health probes.
type Lifecycle interface {
	Ping(ctx context.Context) error
	WaitForReady(ctx context.Context, timeout time.Duration) error
	Close()
}

// HashSetItem is one key with its fields for a pipelined HSET.
type HashSetItem struct {
	Key    string
	Fields map[string]string
	TTL    time.Duration // zero keeps the key forever
}

// CatalogStore holds product hashes and the multi-space KNN index over them.
type CatalogStore interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	HSetMulti(ctx context.Context, items []HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HMGet(ctx context.Context, key string, fields ...string) (map[string]string, error)
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// ActivityStore keeps shopper events and their rolling counters.
type ActivityStore interface {
	HSetMulti(ctx context.Context, items []HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	HIncrBy(ctx context.Context, key, field string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// CacheStore backs the embedding cache.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
