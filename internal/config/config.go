package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/furnidex/internal/domain/catalog"
	"github.com/kailas-cloud/furnidex/internal/domain/color"
	"github.com/kailas-cloud/furnidex/internal/domain/vector"
)

// Config holds the furnidex configuration shared by the API server and the indexing tool.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Database    DatabaseConfig    `yaml:"database"`
	Storage     StorageConfig     `yaml:"storage"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Index       IndexConfig       `yaml:"index"`
	Graph       GraphConfig       `yaml:"graph"`
	Color       ColorConfig       `yaml:"color"`
	Preferences PreferencesConfig `yaml:"preferences"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Scoring     ScoringConfig     `yaml:"scoring"`
	Activity    ActivityConfig    `yaml:"activity"`
	Auth        AuthConfig        `yaml:"auth"`
	CORS        CORSConfig        `yaml:"cors"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// CORSConfig lists browser origins allowed to call the API. Empty disables CORS headers.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// RateLimitConfig bounds requests per client IP on the recommendation routes.
type RateLimitConfig struct {
	Requests  int `yaml:"requests"` // 0 = unlimited
	WindowSec int `yaml:"window_sec"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
	MaxUploadMB     int `yaml:"max_upload_mb"`
}

// DatabaseConfig holds Redis connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	DialTimeoutSec   int      `yaml:"dial_timeout_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds local file locations.
type StorageConfig struct {
	GraphTable string `yaml:"graph_table"` // bbolt file with graph embeddings
}

// EmbeddingConfig holds the embedding provider and its protection layers.
type EmbeddingConfig struct {
	Provider   string        `yaml:"provider"`
	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url"`
	Model      string        `yaml:"model"`
	ImageModel string        `yaml:"image_model"`
	Dimensions int           `yaml:"dimensions"` // 0 = provider default
	TimeoutSec int           `yaml:"timeout_sec"`
	User       string        `yaml:"user"`
	RateLimit  EmbedLimit    `yaml:"rate_limit"`
	Breaker    BreakerConfig `yaml:"breaker"`
	Cache      CacheConfig   `yaml:"cache"`
}

// EmbedLimit is the client-side token bucket in front of the provider.
type EmbedLimit struct {
	RPS   float64 `yaml:"rps"` // 0 = unlimited
	Burst int     `yaml:"burst"`
}

// BreakerConfig configures the provider circuit breaker.
type BreakerConfig struct {
	MaxRequests uint32  `yaml:"max_requests"`
	IntervalSec int     `yaml:"interval_sec"`
	TimeoutSec  int     `yaml:"timeout_sec"`
	MinRequests uint32  `yaml:"min_requests"`
	FailureRate float64 `yaml:"failure_rate"`
}

// CacheConfig controls the query embedding cache.
type CacheConfig struct {
	Enabled  bool `yaml:"enabled"`
	TTLHours int  `yaml:"ttl_hours"`
}

// IndexConfig holds the vector index layout and the indexing pipeline settings.
type IndexConfig struct {
	Algorithm       string               `yaml:"algorithm"` // HNSW or FLAT
	HNSWM           int                  `yaml:"hnsw_m"`
	HNSWEFConstruct int                  `yaml:"hnsw_ef_construction"`
	Dims            DimsConfig           `yaml:"dims"`
	BatchSize       int                  `yaml:"batch_size"`
	Retry           RetryConfig          `yaml:"retry"`
	InputWeights    catalog.InputWeights `yaml:"input_weights"`
}

// DimsConfig holds the dimensionality of every vector space.
type DimsConfig struct {
	Text  int `yaml:"text"`
	Image int `yaml:"image"`
	Graph int `yaml:"graph"`
	Color int `yaml:"color"`
}

// Dims converts to the domain form.
func (d DimsConfig) Dims() vector.Dims {
	return vector.Dims{vector.Text: d.Text, vector.Image: d.Image, vector.Graph: d.Graph, vector.Color: d.Color}
}

// RetryConfig controls batch upload retries.
type RetryConfig struct {
	Attempts    int `yaml:"attempts"`
	BaseDelayMS int `yaml:"base_delay_ms"`
}

// BaseDelay returns the first backoff interval.
func (r RetryConfig) BaseDelay() time.Duration {
	return time.Duration(r.BaseDelayMS) * time.Millisecond
}

// GraphConfig holds edge construction and node2vec parameters.
type GraphConfig struct {
	TopK            int     `yaml:"top_k"`
	SimilarityFloor float64 `yaml:"similarity_floor"`
	AttributeBase   float64 `yaml:"attribute_base"`
	AttributeExtra  float64 `yaml:"attribute_extra"`
	WalksPerNode    int     `yaml:"walks_per_node"`
	WalkLength      int     `yaml:"walk_length"`
	Window          int     `yaml:"window"`
	Negatives       int     `yaml:"negatives"`
	Epochs          int     `yaml:"epochs"`
	LearningRate    float64 `yaml:"learning_rate"`
	P               float64 `yaml:"p"`
	Q               float64 `yaml:"q"`
	Seed            int64   `yaml:"seed"`
}

// ColorConfig tunes the color descriptor.
type ColorConfig struct {
	Colors     int   `yaml:"colors"`
	Size       int   `yaml:"size"`
	Bins       int   `yaml:"bins"`
	Iterations int   `yaml:"iterations"`
	Seed       int64 `yaml:"seed"`
}

// Extractor converts to the domain extractor settings.
func (c ColorConfig) Extractor() color.Config {
	return color.Config{Colors: c.Colors, Size: c.Size, Bins: c.Bins, Iterations: c.Iterations, Seed: c.Seed}
}

// PreferencesConfig holds the semantic attribute thresholds.
type PreferencesConfig struct {
	Floor         float64 `yaml:"floor"`
	VariantMargin float64 `yaml:"variant_margin"`
}

// RetrievalConfig holds the similarity floors of the orchestrator.
type RetrievalConfig struct {
	StrictFloor float64 `yaml:"strict_floor"`
	LooseFloor  float64 `yaml:"loose_floor"`
	GraphFloor  float64 `yaml:"graph_floor"`
	ImageFloor  float64 `yaml:"image_floor"`
	PoolFactor  int     `yaml:"pool_factor"`
}

// ScoringConfig holds the compromise score weights.
type ScoringConfig struct {
	SimilarityWeight float64 `yaml:"similarity_weight"`
	UnderWeight      float64 `yaml:"under_weight"`
	OverWeight       float64 `yaml:"over_weight"`
	AttributePoint   float64 `yaml:"attribute_point"`
	PremiumBonus     float64 `yaml:"premium_bonus"`
}

// ActivityConfig controls the activity log.
type ActivityConfig struct {
	Enabled  bool `yaml:"enabled"`
	TTLHours int  `yaml:"ttl_hours"` // 0 = keep forever
	Recent   int  `yaml:"recent"`
}

// CatalogConfig locates the product catalog and its images.
type CatalogConfig struct {
	Path            string `yaml:"path"`
	ImageTimeoutSec int    `yaml:"image_timeout_sec"`
	ImageMaxMB      int    `yaml:"image_max_mb"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	c.applyServerDefaults()
	c.applyEmbeddingDefaults()
	c.applyIndexDefaults()
	c.applyModelDefaults()
}

func (c *Config) applyServerDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxUploadMB <= 0 {
		c.HTTP.MaxUploadMB = 10
	}
	if c.Database.DialTimeoutSec <= 0 {
		c.Database.DialTimeoutSec = 5
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.GraphTable == "" {
		c.Storage.GraphTable = "data/graph.db"
	}
	if c.RateLimit.WindowSec <= 0 {
		c.RateLimit.WindowSec = 60
	}
	if c.Activity.Recent <= 0 {
		c.Activity.Recent = 10
	}
	if c.Catalog.ImageTimeoutSec <= 0 {
		c.Catalog.ImageTimeoutSec = 15
	}
	if c.Catalog.ImageMaxMB <= 0 {
		c.Catalog.ImageMaxMB = 10
	}
}

func (c *Config) applyEmbeddingDefaults() {
	e := &c.Embedding
	if e.Provider == "" {
		e.Provider = "openai"
	}
	if e.TimeoutSec <= 0 {
		e.TimeoutSec = 30
	}
	if e.RateLimit.Burst <= 0 {
		e.RateLimit.Burst = 1
	}
	if e.Breaker.MaxRequests == 0 {
		e.Breaker.MaxRequests = 3
	}
	if e.Breaker.IntervalSec <= 0 {
		e.Breaker.IntervalSec = 60
	}
	if e.Breaker.TimeoutSec <= 0 {
		e.Breaker.TimeoutSec = 30
	}
	if e.Breaker.MinRequests == 0 {
		e.Breaker.MinRequests = 10
	}
	if e.Breaker.FailureRate <= 0 {
		e.Breaker.FailureRate = 0.6
	}
	if e.Cache.TTLHours <= 0 {
		e.Cache.TTLHours = 24 * 7
	}
}

func (c *Config) applyIndexDefaults() {
	ix := &c.Index
	if ix.Algorithm == "" {
		ix.Algorithm = "HNSW"
	}
	if ix.HNSWM <= 0 {
		ix.HNSWM = 16
	}
	if ix.HNSWEFConstruct <= 0 {
		ix.HNSWEFConstruct = 200
	}
	d := vector.DefaultDims()
	if ix.Dims.Text <= 0 {
		ix.Dims.Text = d[vector.Text]
	}
	if ix.Dims.Image <= 0 {
		ix.Dims.Image = d[vector.Image]
	}
	if ix.Dims.Graph <= 0 {
		ix.Dims.Graph = d[vector.Graph]
	}
	if ix.Dims.Color <= 0 {
		ix.Dims.Color = c.Color.Extractor().Dim()
	}
	if ix.BatchSize <= 0 {
		ix.BatchSize = 5
	}
	if ix.Retry.Attempts <= 0 {
		ix.Retry.Attempts = 3
	}
	if ix.Retry.BaseDelayMS <= 0 {
		ix.Retry.BaseDelayMS = 500
	}
	if ix.InputWeights == (catalog.InputWeights{}) {
		ix.InputWeights = catalog.DefaultInputWeights()
	}
}

func (c *Config) applyModelDefaults() {
	g := &c.Graph
	if g.TopK <= 0 {
		g.TopK = 10
	}
	if g.SimilarityFloor <= 0 {
		g.SimilarityFloor = 0.7
	}
	if g.AttributeBase <= 0 {
		g.AttributeBase = 1.0
	}
	if g.AttributeExtra <= 0 {
		g.AttributeExtra = 0.5
	}
	if g.WalksPerNode <= 0 {
		g.WalksPerNode = 10
	}
	if g.WalkLength <= 0 {
		g.WalkLength = 30
	}
	if g.Window <= 0 {
		g.Window = 5
	}
	if g.Negatives <= 0 {
		g.Negatives = 5
	}
	if g.Epochs <= 0 {
		g.Epochs = 1
	}
	if g.LearningRate <= 0 {
		g.LearningRate = 0.025
	}
	if g.P <= 0 {
		g.P = 1
	}
	if g.Q <= 0 {
		g.Q = 1
	}
	if g.Seed == 0 {
		g.Seed = 42
	}

	if c.Preferences.Floor <= 0 {
		c.Preferences.Floor = 0.3
	}
	if c.Preferences.VariantMargin <= 0 {
		c.Preferences.VariantMargin = 0.1
	}

	r := &c.Retrieval
	if r.StrictFloor <= 0 {
		r.StrictFloor = 0.45
	}
	if r.LooseFloor <= 0 {
		r.LooseFloor = 0.2
	}
	if r.GraphFloor <= 0 {
		r.GraphFloor = 0.3
	}
	if r.ImageFloor <= 0 {
		r.ImageFloor = 0.2
	}
	if r.PoolFactor <= 0 {
		r.PoolFactor = 3
	}

	s := &c.Scoring
	if s.SimilarityWeight <= 0 {
		s.SimilarityWeight = 5
	}
	if s.UnderWeight <= 0 {
		s.UnderWeight = 1
	}
	if s.OverWeight <= 0 {
		s.OverWeight = 2
	}
	if s.AttributePoint <= 0 {
		s.AttributePoint = 1
	}
	if s.PremiumBonus <= 0 {
		s.PremiumBonus = 0.25
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return errors.New("database.addrs is required")
	}
	if c.Embedding.Model == "" {
		return errors.New("embedding.model is required")
	}
	if c.Embedding.BaseURL == "" {
		return errors.New("embedding.base_url is required")
	}
	if c.Embedding.Breaker.FailureRate > 1 {
		return fmt.Errorf("embedding.breaker.failure_rate must be at most 1, got %g", c.Embedding.Breaker.FailureRate)
	}
	if c.Embedding.RateLimit.RPS < 0 {
		return fmt.Errorf("embedding.rate_limit.rps must not be negative, got %g", c.Embedding.RateLimit.RPS)
	}
	switch c.Index.Algorithm {
	case "HNSW", "FLAT":
	default:
		return fmt.Errorf("index.algorithm must be \"HNSW\" or \"FLAT\", got %q", c.Index.Algorithm)
	}
	if c.Embedding.Dimensions > 0 && c.Embedding.Dimensions != c.Index.Dims.Text {
		return fmt.Errorf("embedding.dimensions (%d) must match index.dims.text (%d)",
			c.Embedding.Dimensions, c.Index.Dims.Text)
	}
	if want := c.Color.Extractor().Dim(); c.Index.Dims.Color != want {
		return fmt.Errorf("index.dims.color must be %d for the configured color descriptor, got %d",
			want, c.Index.Dims.Color)
	}
	if err := c.Index.Dims.Dims().Validate(); err != nil {
		return fmt.Errorf("index.dims: %w", err)
	}
	floors := map[string]float64{
		"retrieval.strict_floor": c.Retrieval.StrictFloor,
		"retrieval.loose_floor":  c.Retrieval.LooseFloor,
		"retrieval.graph_floor":  c.Retrieval.GraphFloor,
		"retrieval.image_floor":  c.Retrieval.ImageFloor,
		"preferences.floor":      c.Preferences.Floor,
		"graph.similarity_floor": c.Graph.SimilarityFloor,
	}
	for name, v := range floors {
		if v > 1 {
			return fmt.Errorf("%s must be within (0, 1], got %g", name, v)
		}
	}
	if c.RateLimit.Requests < 0 {
		return fmt.Errorf("rate_limit.requests must not be negative, got %d", c.RateLimit.Requests)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
