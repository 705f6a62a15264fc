package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/shopsearch/internal/domain"
)

// Catalog drivers.
const (
	CatalogFile     = "file"
	CatalogRedis    = "redis"
	CatalogPostgres = "postgres"
)

// Embedding providers.
const (
	ProviderHashing = "hashing"
	ProviderOpenAI  = "openai"
)

// Config holds the shopsearch API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Database   DatabaseConfig   `yaml:"database"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Search     SearchConfig     `yaml:"search"`
	Cache      CacheConfig      `yaml:"cache"`
	Categories CategoriesConfig `yaml:"categories"`
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

// CatalogConfig selects where product candidates come from.
type CatalogConfig struct {
	Driver   string `yaml:"driver"` // file, redis, postgres (default: file)
	FilePath string `yaml:"file_path"`
	// EmbedMissing computes embeddings at startup for file products that have none.
	EmbedMissing bool `yaml:"embed_missing"`
}

// DatabaseConfig holds Redis connection settings, used by the redis catalog
// and the embedding cache.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// PostgresConfig holds the postgres catalog connection settings.
type PostgresConfig struct {
	DSN               string `yaml:"dsn"`
	MaxConns          int32  `yaml:"max_conns"`
	ConnectTimeoutSec int    `yaml:"connect_timeout_sec"`
}

// EmbeddingConfig holds the query embedding model settings.
type EmbeddingConfig struct {
	Provider            string               `yaml:"provider"` // hashing, openai (default: hashing)
	Model               string               `yaml:"model"`
	Dimensions          int                  `yaml:"dimensions"`
	APIKey              string               `yaml:"api_key"`
	BaseURL             string               `yaml:"base_url"`
	User                string               `yaml:"user"`
	QueryInstruction    string               `yaml:"query_instruction"`
	DocumentInstruction string               `yaml:"document_instruction"`
	LoadTimeoutSec      int                  `yaml:"load_timeout_sec"`
	RetryAfterSec       int                  `yaml:"retry_after_sec"`
	Cache               EmbeddingCacheConfig `yaml:"cache"`
}

// EmbeddingCacheConfig controls the Redis-backed embedding cache.
type EmbeddingCacheConfig struct {
	Enabled bool `yaml:"enabled"`
	TTLSec  int  `yaml:"ttl_sec"`
}

// SearchConfig holds ranking thresholds.
type SearchConfig struct {
	RelevanceThreshold float64 `yaml:"relevance_threshold"`
	// MinSemanticScore is a pointer so an explicit 0 disables the floor.
	MinSemanticScore *float64 `yaml:"min_semantic_score"`
	DefaultLimit     int      `yaml:"default_limit"`
}

// CacheConfig holds the search result cache settings.
type CacheConfig struct {
	TTLSec     int `yaml:"ttl_sec"`
	MaxEntries int `yaml:"max_entries"`
}

// CategoriesConfig points at the category dictionary. Empty uses the built-in one.
type CategoriesConfig struct {
	Path string `yaml:"path"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse expands environment variables in data, then decodes, defaults and validates it.
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
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Catalog.Driver == "" {
		c.Catalog.Driver = CatalogFile
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Postgres.ConnectTimeoutSec <= 0 {
		c.Postgres.ConnectTimeoutSec = 5
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = ProviderHashing
	}
	if c.Embedding.LoadTimeoutSec <= 0 {
		c.Embedding.LoadTimeoutSec = 5
	}
	if c.Embedding.RetryAfterSec <= 0 {
		c.Embedding.RetryAfterSec = 30
	}
	if c.Embedding.Cache.TTLSec <= 0 {
		c.Embedding.Cache.TTLSec = 86400
	}
	if c.Search.RelevanceThreshold <= 0 {
		c.Search.RelevanceThreshold = domain.DefaultRelevanceThreshold
	}
	if c.Search.MinSemanticScore == nil {
		v := domain.DefaultMinSemanticScore
		c.Search.MinSemanticScore = &v
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = domain.DefaultLimit
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = domain.DefaultResultTTLSec
	}
	if c.Cache.MaxEntries <= 0 {
		c.Cache.MaxEntries = domain.DefaultResultCacheEntries
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Catalog.Driver {
	case CatalogFile:
		if c.Catalog.FilePath == "" {
			return errors.New("catalog.file_path is required for the file driver")
		}
	case CatalogRedis:
		if len(c.Database.Addrs) == 0 {
			return errors.New("database.addrs is required for the redis driver")
		}
	case CatalogPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("postgres.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("catalog.driver must be file, redis or postgres, got %q", c.Catalog.Driver)
	}

	switch c.Embedding.Provider {
	case ProviderHashing:
	case ProviderOpenAI:
		if c.Embedding.Model == "" {
			return errors.New("embedding.model is required for the openai provider")
		}
	default:
		return fmt.Errorf("embedding.provider must be hashing or openai, got %q", c.Embedding.Provider)
	}
	if c.Embedding.Dimensions < 0 {
		return fmt.Errorf("embedding.dimensions must not be negative, got %d", c.Embedding.Dimensions)
	}
	if c.Embedding.Cache.Enabled && len(c.Database.Addrs) == 0 {
		return errors.New("database.addrs is required when embedding.cache is enabled")
	}

	if c.Search.RelevanceThreshold > 1 {
		return fmt.Errorf("search.relevance_threshold must be in (0,1], got %g", c.Search.RelevanceThreshold)
	}
	if m := c.Search.MinSemanticScore; m != nil && (*m < 0 || *m >= 1) {
		return fmt.Errorf("search.min_semantic_score must be in [0,1), got %g", *m)
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
