package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Mikedodunnit/Chatpdf/internal/config"
	dbRedis "github.com/Mikedodunnit/Chatpdf/internal/db/redis"
	"github.com/Mikedodunnit/Chatpdf/internal/domain"
	"github.com/Mikedodunnit/Chatpdf/internal/extract"
	logpkg "github.com/Mikedodunnit/Chatpdf/internal/logger"
	"github.com/Mikedodunnit/Chatpdf/internal/metrics"
	"github.com/Mikedodunnit/Chatpdf/internal/repository/embcache"
	"github.com/Mikedodunnit/Chatpdf/internal/repository/vectorstore"
	"github.com/Mikedodunnit/Chatpdf/internal/retry"
	geminiEmb "github.com/Mikedodunnit/Chatpdf/internal/transport/gemini"
	openaiEmb "github.com/Mikedodunnit/Chatpdf/internal/transport/openai"
	"github.com/Mikedodunnit/Chatpdf/internal/transport/storage"
	documentuc "github.com/Mikedodunnit/Chatpdf/internal/usecase/document"
	embeddinguc "github.com/Mikedodunnit/Chatpdf/internal/usecase/embedding"
	healthuc "github.com/Mikedodunnit/Chatpdf/internal/usecase/health"
	ingestuc "github.com/Mikedodunnit/Chatpdf/internal/usecase/ingest"
	retrievaluc "github.com/Mikedodunnit/Chatpdf/internal/usecase/retrieval"
	"github.com/Mikedodunnit/Chatpdf/internal/version"
)

// provider is a transport embedder that can also report its health.
type provider interface {
	embeddinguc.Provider
	domain.HealthChecker
}

// app is the composition root shared by every subcommand.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	store     *dbRedis.Store
	ingest    *ingestuc.Service
	retrieval *retrievaluc.Service
	documents *documentuc.Service
	health    *healthuc.Service
}

func newApp(ctx context.Context, env string) (*app, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	logger.Info("Starting chatpdf",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterPipelineMetrics()

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}

	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, readiness); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database")

	gateway := vectorstore.New(store, vectorstore.Options{
		Dimensions: cfg.Embedding.Dimensions,
		HNSW: vectorstore.HNSWConfig{
			M:           cfg.Index.HNSWM,
			EFConstruct: cfg.Index.HNSWEFConstruct,
		},
		Retry:        policy(cfg.Database.MaxRetries, cfg.DatabaseTimeout()),
		ListPageSize: cfg.Index.ListPageSize,
	})

	base, err := buildProvider(ctx, cfg.Embedding, logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	var inner embeddinguc.Provider = base
	if cfg.Embedding.Cache {
		inner = embcache.New(base, store, cfg.Embedding.Model, metrics.EmbeddingCacheTotal, logger)
	}
	embedder := embeddinguc.NewClient(inner, embeddinguc.Options{
		Provider:      cfg.Embedding.Provider,
		Model:         cfg.Embedding.Model,
		Dimensions:    cfg.Embedding.Dimensions,
		RatePerSecond: cfg.Embedding.RatePerSecond,
		Burst:         cfg.Embedding.Burst,
		Retry:         policy(cfg.Embedding.MaxRetries, cfg.EmbeddingTimeout()),
		Logger:        logger,
	})

	blobs, err := buildBlobStore(cfg.Storage)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		ingest: ingestuc.New(blobs, extract.New(), embedder, gateway).
			WithConcurrency(cfg.Ingest.Concurrency),
		retrieval: retrievaluc.New(embedder, gateway, retrievaluc.Options{
			TopK:      cfg.Retrieval.TopK,
			MinScore:  cfg.Retrieval.MinScore,
			MaxLength: cfg.Retrieval.MaxContextLength,
		}),
		documents: documentuc.New(gateway),
		health:    healthuc.New(store, base),
	}, nil
}

// logged attaches the app logger so use cases log through it outside of HTTP requests.
func (a *app) logged(ctx context.Context) context.Context {
	return logpkg.ContextWithLogger(ctx, a.logger)
}

func (a *app) close() {
	a.store.Close()
	_ = a.logger.Sync()
}

func policy(maxRetries int, timeout time.Duration) retry.Policy {
	p := retry.DefaultPolicy()
	p.MaxRetries = uint64(maxRetries) //nolint:gosec // negative values are clamped by config defaults
	p.Timeout = timeout
	return p
}

func buildProvider(ctx context.Context, cfg config.EmbeddingConfig, logger *zap.Logger) (provider, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Provider:   cfg.Provider,
			Logger:     logger,
		}), nil
	case config.ProviderGemini:
		e, err := geminiEmb.NewEmbedder(ctx, &geminiEmb.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Logger:     logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini embedder: %w", err)
		}
		return e, nil
	}
	return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
}

func buildBlobStore(cfg config.StorageConfig) (ingestuc.BlobFetcher, error) {
	switch cfg.Driver {
	case config.StorageFS:
		s, err := storage.NewFSStore(cfg.Root)
		if err != nil {
			return nil, fmt.Errorf("create fs storage: %w", err)
		}
		return s, nil
	case config.StorageHTTP:
		s, err := storage.NewHTTPStore(storage.HTTPConfig{
			BaseURL:  cfg.BaseURL,
			Bucket:   cfg.Bucket,
			APIKey:   cfg.APIKey,
			MaxBytes: cfg.MaxBytes,
			Retry:    policy(cfg.MaxRetries, time.Duration(cfg.TimeoutSec)*time.Second),
		})
		if err != nil {
			return nil, fmt.Errorf("create http storage: %w", err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
