// Package config loads the forkcast YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the forkcast API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Data      DataConfig      `yaml:"data"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Redis     RedisConfig     `yaml:"redis"`
	Hybrid    HybridConfig    `yaml:"hybrid"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DataConfig holds dataset and persistence paths.
type DataConfig struct {
	Dir           string  `yaml:"dir"`
	FavoritesFile string  `yaml:"favorites_file"`
	CacheDir      string  `yaml:"cache_dir"`
	CacheName     string  `yaml:"cache_name"`
	MinRating     float64 `yaml:"min_rating"`
	TopRecipes    int     `yaml:"top_recipes"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// RedisConfig holds the optional per-text embedding cache store. An empty
// address list disables the decorator.
type RedisConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	CacheTTLHours    int      `yaml:"cache_ttl_hours"`
}

// HybridConfig selects the fusion weights: either a named preset
// (balanced, precision, semantic) or explicit weights. Explicit weights
// win when both are set.
type HybridConfig struct {
	Preset      string   `yaml:"preset"`
	TFIDFWeight *float64 `yaml:"tfidf_weight"`
	BERTWeight  *float64 `yaml:"bert_weight"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Load reads configuration from a YAML file by environment name (local,
// dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

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

// GetEnv returns the current environment from the ENV variable,
// defaulting to "local".
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
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Data.Dir == "" {
		c.Data.Dir = "data"
	}
	if c.Data.FavoritesFile == "" {
		c.Data.FavoritesFile = "user_favorites.json"
	}
	if c.Data.CacheDir == "" {
		c.Data.CacheDir = filepath.Join(c.Data.Dir, "cache")
	}
	if c.Data.CacheName == "" {
		c.Data.CacheName = "embeddings"
	}
	if c.Data.MinRating <= 0 {
		c.Data.MinRating = 3.0
	}
	if c.Data.TopRecipes <= 0 {
		c.Data.TopRecipes = 50000
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Redis.ReadinessTimeout <= 0 {
		c.Redis.ReadinessTimeout = 10
	}
	if c.Redis.CacheTTLHours <= 0 {
		c.Redis.CacheTTLHours = 720 // 30 days
	}
	if c.Hybrid.Preset == "" {
		c.Hybrid.Preset = "balanced"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Hybrid.Preset {
	case "balanced", "precision", "semantic":
		// ok
	default:
		return fmt.Errorf(
			"hybrid.preset must be balanced, precision, or semantic, got %q",
			c.Hybrid.Preset,
		)
	}
	if (c.Hybrid.TFIDFWeight == nil) != (c.Hybrid.BERTWeight == nil) {
		return fmt.Errorf("hybrid.tfidf_weight and hybrid.bert_weight must be set together")
	}
	if c.Hybrid.TFIDFWeight != nil && (*c.Hybrid.TFIDFWeight < 0 || *c.Hybrid.BERTWeight < 0) {
		return fmt.Errorf("hybrid weights must be non-negative")
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

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment
// variable values.
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
