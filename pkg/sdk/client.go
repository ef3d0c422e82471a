package chatpdf

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Mikedodunnit/Chatpdf/internal/db"
	dbRedis "github.com/Mikedodunnit/Chatpdf/internal/db/redis"
	"github.com/Mikedodunnit/Chatpdf/internal/domain"
	"github.com/Mikedodunnit/Chatpdf/internal/extract"
	"github.com/Mikedodunnit/Chatpdf/internal/repository/vectorstore"
	"github.com/Mikedodunnit/Chatpdf/internal/retry"
	"github.com/Mikedodunnit/Chatpdf/internal/transport/storage"
	documentuc "github.com/Mikedodunnit/Chatpdf/internal/usecase/document"
	embeddinguc "github.com/Mikedodunnit/Chatpdf/internal/usecase/embedding"
	healthuc "github.com/Mikedodunnit/Chatpdf/internal/usecase/health"
	ingestuc "github.com/Mikedodunnit/Chatpdf/internal/usecase/ingest"
	retrievaluc "github.com/Mikedodunnit/Chatpdf/internal/usecase/retrieval"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces so tests can substitute the use cases.
type ingestUseCase interface {
	Ingest(ctx context.Context, documentKey string) (ingestuc.Result, error)
}

type retrievalUseCase interface {
	Context(ctx context.Context, query, documentKey string) (retrievaluc.Result, error)
}

type documentUseCase interface {
	Get(ctx context.Context, documentKey string) (documentuc.Info, error)
	Delete(ctx context.Context, documentKey string) error
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the chatpdf SDK entry point.
type Client struct {
	store        db.Store
	ingestSvc    ingestUseCase
	retrievalSvc retrievalUseCase
	docSvc       documentUseCase
	healthSvc    healthUseCase
	obs          *observer
}

// New creates a Client and connects to Redis.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		vectorDimensions: domain.DefaultVectorConfig().Dimensions,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("chatpdf: database address required (use WithRedis)")
	}
	if cfg.embedder == nil {
		return nil, errors.New("chatpdf: embedder required (use WithEmbedder)")
	}
	blobs, err := blobFetcher(cfg)
	if err != nil {
		return nil, err
	}
	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("chatpdf: create redis store: %w", err)
	}
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("chatpdf: database not ready: %w", err)
	}

	return wireClient(store, blobs, cfg, obs), nil
}

func blobFetcher(cfg *clientConfig) (ingestuc.BlobFetcher, error) {
	if cfg.blobs != nil {
		return cfg.blobs, nil
	}
	if cfg.blobDir == "" {
		return nil, errors.New("chatpdf: document source required (use WithBlobFetcher or WithUploadDir)")
	}
	fs, err := storage.NewFSStore(cfg.blobDir)
	if err != nil {
		return nil, fmt.Errorf("chatpdf: open upload dir: %w", err)
	}
	return fs, nil
}

func wireClient(store db.Store, blobs ingestuc.BlobFetcher, cfg *clientConfig, obs *observer) *Client {
	gateway := vectorstore.New(store, vectorstore.Options{
		Dimensions: cfg.vectorDimensions,
		HNSW: vectorstore.HNSWConfig{
			M:           cfg.hnswM,
			EFConstruct: cfg.hnswEFConstruct,
		},
		Retry: retry.DefaultPolicy(),
	})

	adapter := &embedderAdapter{inner: cfg.embedder}
	embedder := embeddinguc.NewClient(adapter, embeddinguc.Options{
		Provider:   "sdk",
		Dimensions: cfg.vectorDimensions,
		Retry:      retry.DefaultPolicy(),
	})

	var checker healthuc.EmbeddingChecker
	if hc, ok := cfg.embedder.(HealthChecker); ok {
		checker = hc
	}

	return &Client{
		store: store,
		ingestSvc: ingestuc.New(blobs, extract.New(), embedder, gateway).
			WithConcurrency(cfg.concurrency),
		retrievalSvc: retrievaluc.New(embedder, gateway, retrievaluc.Options{
			TopK:      cfg.topK,
			MinScore:  cfg.minScore,
			MaxLength: cfg.maxLength,
		}),
		docSvc:    documentuc.New(gateway),
		healthSvc: healthuc.New(store, checker),
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ingest reads the document stored under key, embeds every page and stores
// the vectors in the document's collection. Re-ingesting a document
// overwrites its vectors.
func (c *Client) Ingest(ctx context.Context, key string) (res IngestResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ingest", start, err) }()

	r, err := c.ingestSvc.Ingest(ctx, key)
	if err != nil {
		return IngestResult{}, fmt.Errorf("ingest %s: %w", key, err)
	}
	return IngestResult{
		DocumentKey: r.DocumentKey,
		Collection:  r.Collection,
		Chunks:      r.ChunkCount,
		Preview:     r.Preview,
	}, nil
}

// Context assembles prompt context for query from the document's pages.
// It always yields text when err is nil, falling back to a placeholder
// when nothing relevant is stored.
func (c *Client) Context(ctx context.Context, query, documentKey string) (res ContextResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("context", start, err) }()

	r, err := c.retrievalSvc.Context(ctx, query, documentKey)
	if err != nil {
		return ContextResult{}, fmt.Errorf("context %s: %w", documentKey, err)
	}
	return ContextResult{Text: r.Context, Stage: r.Stage.String()}, nil
}

// Document describes the stored collection of an ingested document.
// Returns ErrNotFound when the document was never ingested.
func (c *Client) Document(ctx context.Context, documentKey string) (info DocumentInfo, err error) {
	start := time.Now()
	defer func() { c.obs.observe("document", start, err) }()

	i, err := c.docSvc.Get(ctx, documentKey)
	if err != nil {
		return DocumentInfo{}, fmt.Errorf("get document %s: %w", documentKey, err)
	}
	return documentInfoFromDomain(i), nil
}

// Delete drops the document's collection with all its vectors.
func (c *Client) Delete(ctx context.Context, documentKey string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("delete", start, err) }()

	if err = c.docSvc.Delete(ctx, documentKey); err != nil {
		return fmt.Errorf("delete document %s: %w", documentKey, err)
	}
	return nil
}

// Health checks the database and, when the embedder supports it, the provider.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// embedderAdapter wraps the public Embedder to satisfy the internal provider contract.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}
