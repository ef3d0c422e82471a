// Package gemini embeds text through the Google Gemini embedContent API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/Mikedodunnit/Chatpdf/internal/domain"
	"github.com/Mikedodunnit/Chatpdf/internal/metrics"
)

const provider = "gemini"

// Config holds the Gemini embedding settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Embedder is an embedding provider backed by google.golang.org/genai.
type Embedder struct {
	client     *genai.Client
	model      string
	dimensions int
	logger     *zap.Logger
}

// NewEmbedder creates a Gemini embedding provider.
func NewEmbedder(ctx context.Context, cfg *Config) (*Embedder, error) {
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Embedder{
		client:     client,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		logger:     logger,
	}, nil
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	var conf *genai.EmbedContentConfig
	if e.dimensions > 0 {
		dim := int32(e.dimensions) //nolint:gosec // validated positive at config load
		conf = &genai.EmbedContentConfig{OutputDimensionality: &dim}
	}

	start := time.Now()

	resp, err := e.client.Models.EmbedContent(ctx, e.model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, conf)

	duration := time.Since(start)

	if err != nil {
		mapped, errType := parseAPIError(err)
		metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.model, errType).Inc()
		e.logger.Debug("Embedding API call failed",
			zap.String("provider", provider),
			zap.String("error_type", errType),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, mapped
	}

	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.model, "empty_response").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrProviderUnavailable)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(provider, e.model).Observe(duration.Seconds())

	return domain.EmbeddingResult{Embedding: resp.Embeddings[0].Values}, nil
}

// HealthCheck fetches the model descriptor.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.Models.Get(ctx, e.model, nil); err != nil {
		return fmt.Errorf("get model %s: %w", e.model, err)
	}
	return nil
}

// parseAPIError maps a genai failure to a domain sentinel and a metric label.
func parseAPIError(err error) (error, string) {
	code, msg := 0, ""

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code, msg = apiErr.Code, apiErr.Message
	case errors.As(err, &apiErrPtr):
		code, msg = apiErrPtr.Code, apiErrPtr.Message
	default:
		return fmt.Errorf("embedding request failed: %w", err), "network"
	}

	switch {
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("embedding API error %d: %s: %w", code, msg, domain.ErrRateLimited), "rate_limited"
	case code >= http.StatusInternalServerError:
		return fmt.Errorf("embedding API error %d: %s: %w", code, msg, domain.ErrProviderUnavailable), "server_error"
	default:
		return fmt.Errorf("embedding API error %d: %s", code, msg), "client_error"
	}
}
