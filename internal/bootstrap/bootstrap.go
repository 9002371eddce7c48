// Package bootstrap assembles the components shared by the API server and the indexing tool.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/furnidex/internal/config"
	"github.com/kailas-cloud/furnidex/internal/db"
	dbRedis "github.com/kailas-cloud/furnidex/internal/db/redis"
	"github.com/kailas-cloud/furnidex/internal/domain"
	"github.com/kailas-cloud/furnidex/internal/metrics"
	"github.com/kailas-cloud/furnidex/internal/repository/embcache"
	"github.com/kailas-cloud/furnidex/internal/repository/product"
	openaiEmb "github.com/kailas-cloud/furnidex/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/furnidex/internal/usecase/embedding"
)

// OpenStore connects to Redis and waits until it answers.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig) (*dbRedis.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:       cfg.Addrs,
		Username:    cfg.Username,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: time.Duration(cfg.DialTimeoutSec) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	return store, nil
}

// Embedders is the assembled embedding chain.
type Embedders struct {
	// Text serves text embeddings, cached when enabled.
	Text domain.Embedder
	// Images serves photo embeddings. Images are never cached.
	Images domain.ImageEmbedder
	// Health probes the provider directly, bypassing the breaker.
	Health domain.HealthChecker
}

type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// NewEmbedders builds OpenAI -> Limited -> Breaker -> Instrumented, with the
// text side read through the cache. store may be nil to disable caching.
func NewEmbedders(cfg config.EmbeddingConfig, store kvStore, logger *zap.Logger) Embedders {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		ImageModel: cfg.ImageModel,
		Dimensions: cfg.Dimensions,
		Timeout:    time.Duration(cfg.TimeoutSec) * time.Second,
		User:       cfg.User,
		Provider:   cfg.Provider,
		Logger:     logger,
	})

	var chain domain.MultimodalEmbedder = embeddinguc.NewLimitedEmbedder(base, cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	chain = embeddinguc.NewBreakerEmbedder(chain, embeddinguc.BreakerConfig{
		Name:        cfg.Provider,
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    time.Duration(cfg.Breaker.IntervalSec) * time.Second,
		Timeout:     time.Duration(cfg.Breaker.TimeoutSec) * time.Second,
		MinRequests: cfg.Breaker.MinRequests,
		FailureRate: cfg.Breaker.FailureRate,
	}, logger)
	chain = embeddinguc.NewInstrumentedEmbedder(chain, cfg.Provider, cfg.Model, logger)

	var text domain.Embedder = chain
	if cfg.Cache.Enabled && store != nil {
		text = embcache.New(chain, store, cfg.Model,
			time.Duration(cfg.Cache.TTLHours)*time.Hour, metrics.EmbeddingCacheTotal, logger)
	}
	return Embedders{Text: text, Images: chain, Health: base}
}

// NewProductRepo creates the product index repository from the index settings.
func NewProductRepo(store *dbRedis.Store, cfg config.IndexConfig) (*product.Repo, error) {
	algo, err := db.ParseVectorAlgorithm(cfg.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("index.algorithm: %w", err)
	}
	return product.New(store, product.IndexConfig{
		Dims:        cfg.Dims.Dims(),
		Algorithm:   algo,
		M:           cfg.HNSWM,
		EFConstruct: cfg.HNSWEFConstruct,
	}), nil
}
