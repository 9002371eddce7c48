package furnidex

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	password string

	embedder Embedder

	dims            map[Space]int
	hnswM           int
	hnswEFConstruct int

	strictFloor float64
	looseFloor  float64

	graphTable string
	batchSize  int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis configures the client to connect to a Redis Stack instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithEmbedder sets the multimodal embedding provider. Required.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithDims overrides the vector length of one space.
// Defaults: text 512, image 512, graph 256, color 548.
func WithDims(space Space, dim int) Option {
	return optionFunc(func(c *clientConfig) {
		if c.dims == nil {
			c.dims = make(map[Space]int)
		}
		c.dims[space] = dim
	})
}

// WithHNSW configures HNSW index parameters (M and EF construction).
// Defaults: M=16, EFConstruct=200.
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithFloors sets the similarity floors of the strict and loose policies.
// Defaults: 0.45 and 0.2.
func WithFloors(strict, loose float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.strictFloor = strict
		c.looseFloor = loose
	})
}

// WithGraphTable points Index at a graph table built by furnidex-index.
// The file is opened read-only and must already exist.
// Without it every product gets a zero graph vector.
func WithGraphTable(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.graphTable = path
	})
}

// WithBatchSize sets the number of products uploaded per index write.
// Default: 5.
func WithBatchSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.batchSize = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
