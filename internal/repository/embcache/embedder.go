// Package embcache memoizes text embeddings of shopper queries in the key-value store.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/furnidex/internal/db"
	"github.com/kailas-cloud/furnidex/internal/domain"
	"github.com/kailas-cloud/furnidex/internal/domain/vector"
	logpkg "github.com/kailas-cloud/furnidex/internal/logger"
)

const keyPrefix = domain.KeyPrefix + "emb_cache:"

type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedEmbedder decorates a domain.Embedder with a read-through cache.
// Keys include the model name so switching models never serves stale vectors.
type CachedEmbedder struct {
	inner      domain.Embedder
	store      store
	model      string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates the decorator. cacheTotal takes a "result" label (hit/miss) and may be nil.
func New(
	inner domain.Embedder, s store, model string, ttl time.Duration,
	cacheTotal *prometheus.CounterVec, logger *zap.Logger,
) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, store: s, model: model, ttl: ttl, cacheTotal: cacheTotal, logger: logger}
}

// Embed serves from cache when possible. A hit reports zero tokens.
// Cache failures are logged and never fail the call.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.key(text)
	if vec, ok := c.lookup(ctx, key); ok {
		c.count(ctx, true)
		return domain.EmbeddingResult{Embedding: vec}, nil
	}
	c.count(ctx, false)

	res, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}
	if err := c.store.SetWithTTL(ctx, key, vector.Encode(res.Embedding), c.ttl); err != nil {
		c.logger.Warn("embedding cache write failed", zap.String("key", key), zap.Error(err))
	}
	return res, nil
}

func (c *CachedEmbedder) key(text string) string {
	h := sha256.Sum256([]byte(c.model + "\x00" + text))
	return keyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedEmbedder) lookup(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("embedding cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}
	vec, err := vector.Decode(data)
	if err != nil {
		c.logger.Warn("embedding cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return vec, true
}

func (c *CachedEmbedder) count(ctx context.Context, hit bool) {
	logpkg.AddFields(ctx, zap.Bool("embed_cache_hit", hit))
	if c.cacheTotal == nil {
		return
	}
	if hit {
		c.cacheTotal.WithLabelValues("hit").Inc()
	} else {
		c.cacheTotal.WithLabelValues("miss").Inc()
	}
}
