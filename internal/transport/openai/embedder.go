// Package openai adapts an OpenAI-compatible embeddings endpoint serving a CLIP-family model.
package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/furnidex/internal/domain"
	"github.com/kailas-cloud/furnidex/internal/metrics"
)

const (
	modalityText  = "text"
	modalityImage = "image"
)

// Embedder encodes text and images through the same OpenAI-compatible API (e.g. a CLIP server).
type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	imageModel openai.EmbeddingModel
	dimensions int
	timeout    time.Duration
	user       string
	provider   string
	logger     *zap.Logger
}

// Config holds the embedding provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	ImageModel string // defaults to Model
	Dimensions int
	Timeout    time.Duration
	User       string
	Provider   string
	Logger     *zap.Logger
}

// NewEmbedder creates an OpenAI-compatible embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	imageModel := cfg.ImageModel
	if imageModel == "" {
		imageModel = cfg.Model
	}

	return &Embedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		imageModel: openai.EmbeddingModel(imageModel),
		dimensions: cfg.Dimensions,
		timeout:    cfg.Timeout,
		user:       cfg.User,
		provider:   cfg.Provider,
		logger:     cfg.Logger,
	}
}

// imageInput is the multimodal input item understood by CLIP-serving endpoints.
type imageInput struct {
	Image string `json:"image"`
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	return e.create(ctx, modalityText, e.model, []string{text})
}

// EmbedImage implements domain.ImageEmbedder. The image travels as a base64 data URI.
func (e *Embedder) EmbedImage(ctx context.Context, data []byte, mimeType string) (domain.EmbeddingResult, error) {
	if len(data) == 0 {
		return domain.EmbeddingResult{}, fmt.Errorf("empty image: %w", domain.ErrInvalidImage)
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	uri := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
	return e.create(ctx, modalityImage, e.imageModel, []imageInput{{Image: uri}})
}

func (e *Embedder) create(
	ctx context.Context, modality string, model openai.EmbeddingModel, input any,
) (domain.EmbeddingResult, error) {
	req := openai.EmbeddingRequest{
		Input:          input,
		Model:          model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		User:           e.user,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	duration := time.Since(start)

	m := string(model)
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, m, modality, "error").Inc()
		if errors.Is(err, context.DeadlineExceeded) {
			metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, m, "timeout").Inc()
			return domain.EmbeddingResult{}, fmt.Errorf("embedding timed out after %s: %w",
				duration.Round(time.Millisecond), domain.ErrUpstreamUnavailable)
		}
		metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, m, "api_error").Inc()
		return domain.EmbeddingResult{}, parseAPIError(err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, m, modality, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, m, "empty_response").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, m, modality, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(e.provider, m, modality).Observe(duration.Seconds())

	totalTokens := resp.Usage.TotalTokens
	promptTokens := resp.Usage.PromptTokens
	if totalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(e.provider, m, "prompt").Add(float64(promptTokens))
		metrics.EmbeddingTokensTotal.WithLabelValues(e.provider, m, "total").Add(float64(totalTokens))
	}

	return domain.EmbeddingResult{
		Embedding:    resp.Data[0].Embedding,
		PromptTokens: promptTokens,
		TotalTokens:  totalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// Errors wrap domain.ErrEmbeddingProviderError so the HTTP layer maps them to 503.
func parseAPIError(err error) error {
	wrap := domain.ErrEmbeddingProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("embedding API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("embedding API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("embedding request failed: %w", wrap)
}

// extractDetail pulls the "detail" field some providers use instead of "error".
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
