package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Mikedodunnit/Chatpdf/internal/domain"
	"github.com/Mikedodunnit/Chatpdf/internal/metrics"
	"github.com/Mikedodunnit/Chatpdf/internal/retry"
)

// emptyInput stands in for text that normalizes to nothing; providers reject empty input.
const emptyInput = " "

// Options configures a Client.
type Options struct {
	Provider   string
	Model      string
	Dimensions int
	// RatePerSecond caps provider calls. Zero disables the limiter.
	RatePerSecond float64
	Burst         int
	Retry         retry.Policy
	Logger        *zap.Logger
}

// Client turns text into vectors of a fixed dimension. Every failure is an
// EmbeddingError; a malformed vector is never replaced by a default.
type Client struct {
	inner    Provider
	provider string
	model    string
	dims     int
	limiter  *rate.Limiter
	policy   retry.Policy
	logger   *zap.Logger
}

// NewClient wraps a provider with normalization, rate limiting, retry and validation.
func NewClient(inner Provider, opts Options) *Client {
	c := &Client{
		inner:    inner,
		provider: opts.Provider,
		model:    opts.Model,
		dims:     opts.Dimensions,
		policy:   opts.Retry,
		logger:   opts.Logger,
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if opts.RatePerSecond > 0 {
		burst := max(opts.Burst, 1)
		c.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}
	return c
}

// Dimensions returns the vector length every result is checked against.
func (c *Client) Dimensions() int { return c.dims }

// Embed normalizes text and returns its embedding.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	input := Normalize(text)
	if input == "" {
		input = emptyInput
	}

	start := time.Now()
	var attempts atomic.Int32
	var result domain.EmbeddingResult

	err := retry.Do(ctx, c.policy, isTransient, func(ctx context.Context) error {
		if attempts.Add(1) > 1 {
			metrics.EmbeddingRetriesTotal.WithLabelValues(c.provider, c.model).Inc()
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("rate limiter: %w", err)
			}
		}
		var err error
		result, err = c.inner.Embed(ctx, input)
		return err
	})
	if err != nil {
		c.logger.Error("Embedding request failed",
			zap.String("provider", c.provider),
			zap.String("model", c.model),
			zap.Int32("attempts", attempts.Load()),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, domain.NewEmbeddingError("embed", err)
	}

	if len(result.Embedding) == 0 {
		return nil, domain.NewEmbeddingError("embed", errors.New("provider returned no vector"))
	}
	if c.dims > 0 && len(result.Embedding) != c.dims {
		metrics.EmbeddingErrorsTotal.WithLabelValues(c.provider, c.model, "dimension_mismatch").Inc()
		return nil, domain.NewEmbeddingError("embed", fmt.Errorf("got %d, want %d: %w",
			len(result.Embedding), c.dims, domain.ErrVectorDimMismatch))
	}

	c.logger.Debug("Embedding request completed",
		zap.String("provider", c.provider),
		zap.String("model", c.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result.Embedding, nil
}

// Normalize replaces line breaks with spaces and collapses whitespace runs.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// isTransient retries rate limits, provider 5xx and network failures.
func isTransient(err error) bool {
	if errors.Is(err, domain.ErrRateLimited) || errors.Is(err, domain.ErrProviderUnavailable) {
		return true
	}
	return retry.IsTransient(err)
}
