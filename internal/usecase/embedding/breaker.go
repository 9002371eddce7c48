package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/furnidex/internal/domain"
	"github.com/kailas-cloud/furnidex/internal/metrics"
)

// BreakerConfig configures the circuit breaker around the provider.
type BreakerConfig struct {
	Name        string
	MaxRequests uint32        // probes allowed while half-open
	Interval    time.Duration // closed-state counter reset
	Timeout     time.Duration // open -> half-open
	MinRequests uint32
	FailureRate float64
}

// DefaultBreakerConfig opens after 60% failures over at least 10 requests.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:        "embedding-provider",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		MinRequests: 10,
		FailureRate: 0.6,
	}
}

// BreakerEmbedder fails fast with domain.ErrUpstreamUnavailable while the provider is unhealthy.
type BreakerEmbedder struct {
	inner  domain.MultimodalEmbedder
	cb     *gobreaker.CircuitBreaker[domain.EmbeddingResult]
	name   string
	logger *zap.Logger
}

// NewBreakerEmbedder wraps inner with a circuit breaker.
func NewBreakerEmbedder(inner domain.MultimodalEmbedder, cfg BreakerConfig, logger *zap.Logger) *BreakerEmbedder {
	metrics.BreakerState.WithLabelValues(cfg.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[domain.EmbeddingResult](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureRate
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state transition",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.BreakerState.WithLabelValues(name).Set(stateValue(to))
			metrics.BreakerTransitionsTotal.WithLabelValues(name, from.String(), to.String()).Inc()
		},
		// Invalid input is the caller's fault, not the provider's.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrInvalidImage) || errors.Is(err, context.Canceled)
		},
	})

	return &BreakerEmbedder{inner: inner, cb: cb, name: cfg.Name, logger: logger}
}

// Embed implements domain.Embedder.
func (b *BreakerEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	return b.execute(func() (domain.EmbeddingResult, error) {
		return b.inner.Embed(ctx, text)
	})
}

// EmbedImage implements domain.ImageEmbedder.
func (b *BreakerEmbedder) EmbedImage(ctx context.Context, data []byte, mimeType string) (domain.EmbeddingResult, error) {
	return b.execute(func() (domain.EmbeddingResult, error) {
		return b.inner.EmbedImage(ctx, data, mimeType)
	})
}

// State exposes the breaker state for health reporting.
func (b *BreakerEmbedder) State() gobreaker.State { return b.cb.State() }

func (b *BreakerEmbedder) execute(fn func() (domain.EmbeddingResult, error)) (domain.EmbeddingResult, error) {
	res, err := b.cb.Execute(fn)
	if err == nil {
		return res, nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.EmbeddingResult{}, fmt.Errorf("%s: %w: %w", b.name, err, domain.ErrUpstreamUnavailable)
	}
	return domain.EmbeddingResult{}, err
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
