package furnidex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/furnidex/internal/domain"
)

const metricsSubsystem = "sdk"

// outcome buckets an operation's error so dashboards can tell a shopper
// asking for a missing product apart from a provider outage.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidQuery), errors.Is(err, domain.ErrInvalidImage):
		return "invalid"
	case errors.Is(err, domain.ErrUpstreamUnavailable),
		errors.Is(err, domain.ErrEmbeddingProviderError),
		errors.Is(err, domain.ErrRateLimited):
		return "upstream"
	default:
		return "error"
	}
}

type sdkMetrics struct {
	calls    *prometheus.CounterVec   // operation, outcome
	latency  *prometheus.HistogramVec // operation
	products *prometheus.HistogramVec // operation, successful calls only
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "furnidex",
			Subsystem: metricsSubsystem,
			Name:      "operations_total",
			Help:      "SDK calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "furnidex",
			Subsystem: metricsSubsystem,
			Name:      "operation_duration_seconds",
			Help:      "SDK call latency.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),
		products: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "furnidex",
			Subsystem: metricsSubsystem,
			Name:      "products_returned",
			Help:      "Products returned or indexed per successful call.",
			Buckets:   []float64{0, 1, 3, 5, 10, 20, 50, 150},
		}, []string{"operation"}),
	}
	if err := registerOrReuse(reg, &m.calls); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.latency); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.products); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse lets several clients share one registry.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("furnidex: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("furnidex: metric registered with another type: %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg == nil {
		return o, nil
	}
	m, err := newSDKMetrics(reg)
	if err != nil {
		return nil, err
	}
	o.metrics = m
	return o, nil
}

// observe records one finished call. n counts the products it returned or
// indexed; -1 means the call has none (ping).
func (o *observer) observe(op string, start time.Time, n int, err error) {
	if o == nil {
		return
	}
	took := time.Since(start)
	result := outcome(err)

	if m := o.metrics; m != nil {
		m.calls.WithLabelValues(op, result).Inc()
		m.latency.WithLabelValues(op).Observe(took.Seconds())
		if err == nil && n >= 0 {
			m.products.WithLabelValues(op).Observe(float64(n))
		}
	}

	if o.logger == nil {
		return
	}
	attrs := []slog.Attr{
		slog.String("op", op),
		slog.String("outcome", result),
		slog.Duration("duration", took),
	}
	level := slog.LevelDebug
	switch {
	case result == "error" || result == "upstream":
		level = slog.LevelWarn
		attrs = append(attrs, slog.Any("error", err))
	case err != nil:
		attrs = append(attrs, slog.Any("error", err))
	case n >= 0:
		attrs = append(attrs, slog.Int("products", n))
	}
	o.logger.LogAttrs(context.Background(), level, "furnidex "+op, attrs...)
}
