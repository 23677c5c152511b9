package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"

	"github.com/amosWeiskopf/seosmith/pkg/scorer"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Fetcher configuration
	Fetcher FetcherConfig `mapstructure:"fetcher"`

	// Primary analysis backend
	Backend BackendConfig `mapstructure:"backend"`

	// Scoring weights and thresholds
	Scoring scorer.Config `mapstructure:"scoring"`

	// Storage configuration
	Storage StorageConfig `mapstructure:"storage"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns host:port
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// FetcherConfig holds page fetch configuration
type FetcherConfig struct {
	Timeout           time.Duration `mapstructure:"timeout"`
	UserAgent         string        `mapstructure:"user_agent"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	RespectRobots     bool          `mapstructure:"respect_robots"`
	MaxBodyBytes      int64         `mapstructure:"max_body_bytes"`
}

// BackendConfig holds the primary analysis backend endpoint and timeouts.
// An empty URL means analysis always runs locally.
type BackendConfig struct {
	URL             string        `mapstructure:"url"`
	AnalyzeTimeout  time.Duration `mapstructure:"analyze_timeout"`
	GenerateTimeout time.Duration `mapstructure:"generate_timeout"`
	PushTimeout     time.Duration `mapstructure:"push_timeout"`
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // "json" or "text"
	OutputPath string `mapstructure:"output_path"`
}

// envOverrides are applied after the config file and take precedence over it
type envOverrides struct {
	BackendURL   string        `env:"SEOSMITH_BACKEND_URL"`
	DBPath       string        `env:"SEOSMITH_DB_PATH"`
	LogLevel     string        `env:"SEOSMITH_LOG_LEVEL"`
	FetchTimeout time.Duration `env:"SEOSMITH_FETCH_TIMEOUT"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.seosmith")
	}

	// Set defaults
	setDefaults(v)

	// Bind environment variables
	bindEnvVars(v)

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables
	if err := loadFromEnv(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Default returns the configuration used when no file or environment is present
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	_ = v.Unmarshal(&config)
	return &config
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")

	// Fetcher defaults
	v.SetDefault("fetcher.timeout", "15s")
	v.SetDefault("fetcher.user_agent", "SEOSmith/1.0 (+seo analyzer)")
	v.SetDefault("fetcher.requests_per_second", 5)
	v.SetDefault("fetcher.burst", 5)
	v.SetDefault("fetcher.respect_robots", false)
	v.SetDefault("fetcher.max_body_bytes", 10<<20)

	// Backend defaults
	v.SetDefault("backend.url", "")
	v.SetDefault("backend.analyze_timeout", "30s")
	v.SetDefault("backend.generate_timeout", "30s")
	v.SetDefault("backend.push_timeout", "15s")

	// Scoring defaults
	sc := scorer.DefaultConfig()
	v.SetDefault("scoring.weights.title", sc.Weights.Title)
	v.SetDefault("scoring.weights.meta", sc.Weights.Meta)
	v.SetDefault("scoring.weights.content", sc.Weights.Content)
	v.SetDefault("scoring.weights.technical", sc.Weights.Technical)
	v.SetDefault("scoring.weights.performance", sc.Weights.Performance)
	v.SetDefault("scoring.weights.social", sc.Weights.Social)
	t := sc.Thresholds
	v.SetDefault("scoring.thresholds.title_min", t.TitleMin)
	v.SetDefault("scoring.thresholds.title_max", t.TitleMax)
	v.SetDefault("scoring.thresholds.meta_min", t.MetaMin)
	v.SetDefault("scoring.thresholds.meta_max", t.MetaMax)
	v.SetDefault("scoring.thresholds.reduced_tier", t.ReducedTier)
	v.SetDefault("scoring.thresholds.min_word_count", t.MinWordCount)
	v.SetDefault("scoring.thresholds.word_count_bonus", t.WordCountBonus)
	v.SetDefault("scoring.thresholds.single_h1", t.SingleH1)
	v.SetDefault("scoring.thresholds.no_h1", t.NoH1)
	v.SetDefault("scoring.thresholds.multiple_h1", t.MultipleH1)
	v.SetDefault("scoring.thresholds.https_points", t.HTTPSPoints)
	v.SetDefault("scoring.thresholds.mobile_points", t.MobilePoints)
	v.SetDefault("scoring.thresholds.schema_points", t.SchemaPoints)
	v.SetDefault("scoring.thresholds.fast_load_seconds", t.FastLoadSeconds)
	v.SetDefault("scoring.thresholds.medium_load_seconds", t.MediumLoadSeconds)
	v.SetDefault("scoring.thresholds.fast_score", t.FastScore)
	v.SetDefault("scoring.thresholds.medium_score", t.MediumScore)
	v.SetDefault("scoring.thresholds.slow_score", t.SlowScore)
	v.SetDefault("scoring.thresholds.grade_a", t.GradeA)
	v.SetDefault("scoring.thresholds.grade_b", t.GradeB)
	v.SetDefault("scoring.thresholds.grade_c", t.GradeC)

	// Storage defaults
	v.SetDefault("storage.path", "./data/seosmith.db")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_path", "stderr")
}

// bindEnvVars binds environment variables
func bindEnvVars(v *viper.Viper) {
	v.SetEnvPrefix("SEOSMITH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// loadFromEnv applies the explicit environment overrides
func loadFromEnv(config *Config) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if o.BackendURL != "" {
		config.Backend.URL = o.BackendURL
	}
	if o.DBPath != "" {
		config.Storage.Path = o.DBPath
	}
	if o.LogLevel != "" {
		config.Logging.Level = o.LogLevel
	}
	if o.FetchTimeout > 0 {
		config.Fetcher.Timeout = o.FetchTimeout
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Fetcher.Timeout <= 0 {
		return fmt.Errorf("fetcher.timeout must be positive")
	}
	if c.Fetcher.RequestsPerSecond <= 0 {
		return fmt.Errorf("fetcher.requests_per_second must be positive")
	}
	if c.Fetcher.UserAgent == "" {
		return fmt.Errorf("fetcher.user_agent must not be empty")
	}
	if c.Backend.AnalyzeTimeout <= 0 || c.Backend.GenerateTimeout <= 0 || c.Backend.PushTimeout <= 0 {
		return fmt.Errorf("backend timeouts must be positive")
	}
	if err := c.Scoring.Validate(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text, got %q", c.Logging.Format)
	}
	return nil
}
