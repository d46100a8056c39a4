// Package config loads and validates application configuration from a YAML
// file, environment variables, and built-in defaults, in that order of
// increasing precedence for env vars over file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        App        `mapstructure:"app"`
	Storage    Storage    `mapstructure:"storage"`
	Ingest     Ingest     `mapstructure:"ingest"`
	AI         AI         `mapstructure:"ai"`
	Clustering Clustering `mapstructure:"clustering"`
	Topics     Topics     `mapstructure:"topics"`
	Trends     Trends     `mapstructure:"trends"`
	Server     Server     `mapstructure:"server"`
}

// App holds general application configuration
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// Storage holds persistence configuration. Backend selects between one JSON
// file per record ("file") and a SQLite database ("sqlite"); both honor the
// same key-value contract.
type Storage struct {
	BaseDir string `mapstructure:"base_dir"`
	Backend string `mapstructure:"backend"`
}

// RawArticlesDir returns the directory for raw article records.
func (s Storage) RawArticlesDir() string { return filepath.Join(s.BaseDir, "raw_articles") }

// ProcessedArticlesDir returns the directory for processed article records.
func (s Storage) ProcessedArticlesDir() string {
	return filepath.Join(s.BaseDir, "processed_articles")
}

// EmbeddingsDir returns the directory for the vector store files.
func (s Storage) EmbeddingsDir() string { return filepath.Join(s.BaseDir, "embeddings") }

// ClustersDir returns the directory for cluster records.
func (s Storage) ClustersDir() string { return filepath.Join(s.BaseDir, "clusters") }

// TopicsDir returns the directory for topic statistics records.
func (s Storage) TopicsDir() string { return filepath.Join(s.BaseDir, "topics") }

// TrendsDir returns the directory for trend snapshot records.
func (s Storage) TrendsDir() string { return filepath.Join(s.BaseDir, "trends") }

// Ingest holds source client configuration
type Ingest struct {
	HackerNews HackerNews `mapstructure:"hackernews"`
	SearchAPI  SearchAPI  `mapstructure:"searchapi"`
}

// HackerNews holds Hacker News API client configuration
type HackerNews struct {
	Enabled            bool     `mapstructure:"enabled"`
	RateLimitPerMinute int      `mapstructure:"rate_limit_per_minute"`
	MaxStoriesPerType  int      `mapstructure:"max_stories_per_type"`
	FetchTypes         []string `mapstructure:"fetch_types"`
}

// SearchAPI holds searchapi.io client configuration
type SearchAPI struct {
	APIKey             string   `mapstructure:"api_key"`
	Endpoint           string   `mapstructure:"endpoint"`
	MaxResultsPerQuery int      `mapstructure:"max_results_per_query"`
	RateLimitPerMinute int      `mapstructure:"rate_limit_per_minute"`
	Engines            []string `mapstructure:"engines"`
}

// AI holds Gemini configuration for embeddings and summaries
type AI struct {
	Gemini Gemini `mapstructure:"gemini"`
}

// Gemini holds Google Gemini configuration
type Gemini struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	Timeout        string `mapstructure:"timeout"`
}

// Clustering holds incremental assignment engine configuration
type Clustering struct {
	DistanceThreshold float64 `mapstructure:"distance_threshold"`
}

// Topics holds topic accumulator configuration
type Topics struct {
	TimeDecayFactor       float64 `mapstructure:"time_decay_factor"`
	MinKeywordFrequency   float64 `mapstructure:"min_keyword_frequency"`
	TopKeywordsPerCluster int     `mapstructure:"top_keywords_per_cluster"`
}

// Trends holds trend classifier configuration
type Trends struct {
	GrowthThreshold       float64 `mapstructure:"growth_threshold"`
	DeclineThreshold      float64 `mapstructure:"decline_threshold"`
	NewClusterWindowHours float64 `mapstructure:"new_cluster_window_hours"`
}

// Server holds HTTP API server configuration
type Server struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
}

var loaded *Config

// Load reads configuration from the given file (or .newsintel.yaml in the
// working directory when empty), environment variables, and defaults.
func Load(configFile string) (*Config, error) {
	// .env files are a convenience for local runs; absence is not an error.
	_ = godotenv.Load()

	v := viper.GetViper()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".newsintel")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	if err := v.ReadInConfig(); err != nil {
		// Running purely on env vars and defaults is supported.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	cfg.Storage.BaseDir = expandPath(cfg.Storage.BaseDir)
	loaded = &cfg
	return loaded, nil
}

// Get returns the loaded configuration, loading defaults if Load has not
// been called.
func Get() *Config {
	if loaded == nil {
		cfg, err := Load("")
		if err != nil {
			// Defaults alone always validate; a broken explicit file
			// surfaces through Load.
			panic(fmt.Sprintf("config: %v", err))
		}
		return cfg
	}
	return loaded
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.debug", false)
	v.SetDefault("app.log_level", "info")

	v.SetDefault("storage.base_dir", "./data")
	v.SetDefault("storage.backend", "file")

	v.SetDefault("ingest.hackernews.enabled", true)
	v.SetDefault("ingest.hackernews.rate_limit_per_minute", 60)
	v.SetDefault("ingest.hackernews.max_stories_per_type", 30)
	v.SetDefault("ingest.hackernews.fetch_types", []string{"topstories", "newstories", "beststories"})

	v.SetDefault("ingest.searchapi.endpoint", "https://www.searchapi.io/api/v1/search")
	v.SetDefault("ingest.searchapi.max_results_per_query", 100)
	v.SetDefault("ingest.searchapi.rate_limit_per_minute", 30)
	v.SetDefault("ingest.searchapi.engines", []string{"bing_news", "google_news"})

	v.SetDefault("ai.gemini.model", "gemini-1.5-flash")
	v.SetDefault("ai.gemini.embedding_model", "text-embedding-004")
	v.SetDefault("ai.gemini.timeout", "60s")

	v.SetDefault("clustering.distance_threshold", 0.5)

	v.SetDefault("topics.time_decay_factor", 0.95)
	v.SetDefault("topics.min_keyword_frequency", 2)
	v.SetDefault("topics.top_keywords_per_cluster", 10)

	v.SetDefault("trends.growth_threshold", 1.5)
	v.SetDefault("trends.decline_threshold", 0.5)
	v.SetDefault("trends.new_cluster_window_hours", 24)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
}

// bindEnvConfig maps environment variables to viper keys
func bindEnvConfig() {
	bindEnvKeys("ai.gemini.api_key", []string{"GEMINI_API_KEY", "GOOGLE_AI_API_KEY"})
	bindEnvKeys("ingest.searchapi.api_key", []string{"SEARCHAPI_KEY"})
	bindEnvKeys("storage.base_dir", []string{"STORAGE_BASE_PATH", "NEWSINTEL_DATA_DIR"})
	bindEnvKeys("storage.backend", []string{"NEWSINTEL_STORAGE_BACKEND"})
	bindEnvKeys("app.log_level", []string{"NEWSINTEL_LOG_LEVEL", "LOG_LEVEL"})
	bindEnvKeys("server.port", []string{"NEWSINTEL_PORT"})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// validateConfig ensures configuration values are usable
func validateConfig(cfg *Config) error {
	var errs []string

	if cfg.Storage.Backend != "file" && cfg.Storage.Backend != "sqlite" {
		errs = append(errs, fmt.Sprintf("unknown storage backend %q (supported: file, sqlite)", cfg.Storage.Backend))
	}
	if cfg.Clustering.DistanceThreshold <= 0 || cfg.Clustering.DistanceThreshold > 2 {
		errs = append(errs, "clustering.distance_threshold must be in (0, 2]")
	}
	if cfg.Topics.TimeDecayFactor <= 0 || cfg.Topics.TimeDecayFactor > 1 {
		errs = append(errs, "topics.time_decay_factor must be in (0, 1]")
	}
	if cfg.Topics.TopKeywordsPerCluster <= 0 {
		errs = append(errs, "topics.top_keywords_per_cluster must be positive")
	}
	if cfg.Trends.NewClusterWindowHours <= 0 {
		errs = append(errs, "trends.new_cluster_window_hours must be positive")
	}

	durations := map[string]string{
		"ai.gemini.timeout":    cfg.AI.Gemini.Timeout,
		"server.read_timeout":  cfg.Server.ReadTimeout,
		"server.write_timeout": cfg.Server.WriteTimeout,
	}
	for key, d := range durations {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			errs = append(errs, fmt.Sprintf("invalid duration for %s: %s", key, d))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}
