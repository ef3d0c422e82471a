package chatpdf

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	username string
	password string

	embedder Embedder
	blobs    BlobFetcher
	blobDir  string

	vectorDimensions int
	hnswM            int
	hnswEFConstruct  int
	concurrency      int

	topK      int
	minScore  float64
	maxLength int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis connects to a Redis instance with the search module loaded.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedisACL connects with an ACL user.
func WithRedisACL(addr, username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.username = username
		c.password = password
	})
}

// WithEmbedder sets the text embedding provider. Required.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithVectorDimensions sets the expected embedding length.
// Defaults to 768 (Gemini embedding-001).
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorDimensions = dim
	})
}

// WithHNSW configures HNSW index parameters for new collections.
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithBlobFetcher sets where Ingest reads source documents from.
func WithBlobFetcher(b BlobFetcher) Option {
	return optionFunc(func(c *clientConfig) {
		c.blobs = b
	})
}

// WithUploadDir reads source documents from a local directory.
// Ignored when WithBlobFetcher is also given.
func WithUploadDir(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.blobDir = dir
	})
}

// WithConcurrency bounds the number of in-flight embedding calls per ingestion.
func WithConcurrency(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.concurrency = n
	})
}

// WithRetrieval overrides the number of nearest pages, the similarity floor
// and the maximum context length in runes. Zero values keep the defaults
// (5, 0.05 and 3000).
func WithRetrieval(topK int, minScore float64, maxLength int) Option {
	return optionFunc(func(c *clientConfig) {
		c.topK = topK
		c.minScore = minScore
		c.maxLength = maxLength
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
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
