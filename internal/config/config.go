package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Mikedodunnit/Chatpdf/internal/domain"
)

// Embedding providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Blob storage drivers.
const (
	StorageHTTP = "http"
	StorageFS   = "fs"
)

// Config holds the chatpdf configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Storage   StorageConfig   `yaml:"storage"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings. No keys disables auth.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis connection and call settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	TimeoutSec       int      `yaml:"timeout_sec"`
	MaxRetries       int      `yaml:"max_retries"` // unset = 1, negative = no retry
}

// IndexConfig holds HNSW index and listing settings.
type IndexConfig struct {
	HNSWM           int `yaml:"hnsw_m"`
	HNSWEFConstruct int `yaml:"hnsw_ef_construction"`
	ListPageSize    int `yaml:"list_page_size"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider       string  `yaml:"provider"` // openai, gemini
	APIKey         string  `yaml:"api_key"`
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	Dimensions     int     `yaml:"dimensions"`
	DistanceMetric string  `yaml:"distance_metric"`
	TimeoutSec     int     `yaml:"timeout_sec"`
	MaxRetries     int     `yaml:"max_retries"`     // unset = 1, negative = no retry
	RatePerSecond  float64 `yaml:"rate_per_second"` // 0 = unlimited
	Burst          int     `yaml:"burst"`
	Cache          bool    `yaml:"cache"` // memoize vectors in the database
}

// IngestConfig holds ingestion pipeline settings.
type IngestConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// RetrievalConfig holds retrieval assembler settings.
type RetrievalConfig struct {
	TopK             int     `yaml:"top_k"`
	MinScore         float64 `yaml:"min_score"`
	MaxContextLength int     `yaml:"max_context_length"`
}

// StorageConfig selects where uploaded documents are read from.
type StorageConfig struct {
	Driver     string `yaml:"driver"` // http, fs
	BaseURL    string `yaml:"base_url"`
	Bucket     string `yaml:"bucket"`
	APIKey     string `yaml:"api_key"`
	Root       string `yaml:"root"`
	MaxBytes   int64  `yaml:"max_bytes"`
	TimeoutSec int    `yaml:"timeout_sec"`
	MaxRetries int    `yaml:"max_retries"` // unset = 1, negative = no retry
}

// VectorConfig returns the embedding dimension and metric shared by both paths.
func (c *Config) VectorConfig() domain.VectorConfig {
	return domain.VectorConfig{
		Dimensions:     c.Embedding.Dimensions,
		DistanceMetric: c.Embedding.DistanceMetric,
	}
}

// EmbeddingTimeout returns the per-attempt embedding timeout.
func (c *Config) EmbeddingTimeout() time.Duration {
	return time.Duration(c.Embedding.TimeoutSec) * time.Second
}

// DatabaseTimeout returns the per-attempt store timeout.
func (c *Config) DatabaseTimeout() time.Duration {
	return time.Duration(c.Database.TimeoutSec) * time.Second
}

// StorageTimeout returns the per-attempt blob download timeout.
func (c *Config) StorageTimeout() time.Duration {
	return time.Duration(c.Storage.TimeoutSec) * time.Second
}

// Load reads configuration from a YAML file by environment name (local, prod).
// A .env file in the working directory is loaded first when present.
func Load(env string) (Config, error) {
	_ = godotenv.Load()

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands ${VAR} references, decodes YAML, applies defaults and validates.
func Parse(data []byte) (Config, error) {
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

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 30
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.TimeoutSec <= 0 {
		c.Database.TimeoutSec = 5
	}
	c.Database.MaxRetries = retries(c.Database.MaxRetries)
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = ProviderGemini
	}
	if c.Embedding.Model == "" {
		switch c.Embedding.Provider {
		case ProviderGemini:
			c.Embedding.Model = "embedding-001"
		case ProviderOpenAI:
			c.Embedding.Model = "text-embedding-3-small"
		}
	}
	if c.Embedding.Dimensions == 0 {
		c.Embedding.Dimensions = domain.DefaultVectorConfig().Dimensions
	}
	if c.Embedding.DistanceMetric == "" {
		c.Embedding.DistanceMetric = domain.DistanceCosine
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 10
	}
	c.Embedding.MaxRetries = retries(c.Embedding.MaxRetries)
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 16
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 200
	}
	if c.Index.ListPageSize <= 0 {
		c.Index.ListPageSize = 100
	}
	if c.Ingest.Concurrency == 0 {
		c.Ingest.Concurrency = 4
	}
	if c.Retrieval.TopK == 0 {
		c.Retrieval.TopK = 5
	}
	if c.Retrieval.MinScore == 0 {
		c.Retrieval.MinScore = 0.05
	}
	if c.Retrieval.MaxContextLength == 0 {
		c.Retrieval.MaxContextLength = 3000
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageHTTP
	}
	if c.Storage.TimeoutSec <= 0 {
		c.Storage.TimeoutSec = 60
	}
	c.Storage.MaxRetries = retries(c.Storage.MaxRetries)
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	switch c.Embedding.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("embedding.provider must be %q or %q, got %q",
			ProviderOpenAI, ProviderGemini, c.Embedding.Provider)
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	if err := c.VectorConfig().Validate(); err != nil {
		return fmt.Errorf("embedding: dimensions=%d distance_metric=%q: %w",
			c.Embedding.Dimensions, c.Embedding.DistanceMetric, err)
	}
	if c.Embedding.RatePerSecond < 0 {
		return fmt.Errorf("embedding.rate_per_second must be >= 0, got %v", c.Embedding.RatePerSecond)
	}
	if c.Ingest.Concurrency <= 0 {
		return fmt.Errorf("ingest.concurrency must be > 0, got %d", c.Ingest.Concurrency)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be > 0, got %d", c.Retrieval.TopK)
	}
	if c.Retrieval.MinScore < 0 || c.Retrieval.MinScore >= 1 {
		return fmt.Errorf("retrieval.min_score must be in [0, 1), got %v", c.Retrieval.MinScore)
	}
	if c.Retrieval.MaxContextLength <= 0 {
		return fmt.Errorf("retrieval.max_context_length must be > 0, got %d", c.Retrieval.MaxContextLength)
	}
	switch c.Storage.Driver {
	case StorageHTTP:
		if c.Storage.BaseURL == "" || c.Storage.Bucket == "" {
			return fmt.Errorf("storage.base_url and storage.bucket are required for the http driver")
		}
	case StorageFS:
		if c.Storage.Root == "" {
			return fmt.Errorf("storage.root is required for the fs driver")
		}
	default:
		return fmt.Errorf("storage.driver must be %q or %q, got %q", StorageHTTP, StorageFS, c.Storage.Driver)
	}
	return nil
}

// retries maps an unset value to one retry and a negative value to none.
func retries(n int) int {
	switch {
	case n == 0:
		return 1
	case n < 0:
		return 0
	}
	return n
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// Relative to the source file, for tests run from package directories.
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b)))
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

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
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
