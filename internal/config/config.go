// Package config loads application configuration from file and environment.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	SerpAPI   SerpAPIConfig   `yaml:"serpapi" mapstructure:"serpapi"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Normalize NormalizeConfig `yaml:"normalize" mapstructure:"normalize"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Demo      DemoConfig      `yaml:"demo" mapstructure:"demo"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`

	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// SerpAPIConfig holds SerpApi credentials and request behavior.
type SerpAPIConfig struct {
	Key              string  `yaml:"key" mapstructure:"key"`
	BaseURL          string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs      int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries       int     `yaml:"max_retries" mapstructure:"max_retries"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	RateLimit        float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// ScoringConfig holds qualification thresholds and rule point values.
// Everything here is operator-tunable; no threshold is a code constant.
type ScoringConfig struct {
	MinRating  float64 `yaml:"min_rating" mapstructure:"min_rating"`
	MinReviews int     `yaml:"min_reviews" mapstructure:"min_reviews"`

	RatingPoints int `yaml:"rating_points" mapstructure:"rating_points"`
	ReviewPoints int `yaml:"review_points" mapstructure:"review_points"`

	BonusRating       float64 `yaml:"bonus_rating" mapstructure:"bonus_rating"`
	BonusRatingPoints int     `yaml:"bonus_rating_points" mapstructure:"bonus_rating_points"`

	BonusReviews       int `yaml:"bonus_reviews" mapstructure:"bonus_reviews"`
	BonusReviewsPoints int `yaml:"bonus_reviews_points" mapstructure:"bonus_reviews_points"`

	NoWebsitePoints  int `yaml:"no_website_points" mapstructure:"no_website_points"`
	SocialOnlyPoints int `yaml:"social_only_points" mapstructure:"social_only_points"`
}

// NormalizeConfig configures record normalization.
type NormalizeConfig struct {
	// SocialPatterns are host substrings that classify a URL as a social
	// profile rather than a real website.
	SocialPatterns []string `yaml:"social_patterns" mapstructure:"social_patterns"`
}

// BatchConfig configures multi-pair batch runs.
type BatchConfig struct {
	MaxConcurrentRuns int `yaml:"max_concurrent_runs" mapstructure:"max_concurrent_runs"`
}

// DemoConfig configures demo site generation.
type DemoConfig struct {
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// MonitoringConfig configures background health checks and alerting.
type MonitoringConfig struct {
	// WebhookURL receives alert payloads; empty disables delivery.
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`

	// FailureRateThreshold is the run failure rate (0..1) above which an
	// alert fires.
	FailureRateThreshold float64 `yaml:"failure_rate_threshold" mapstructure:"failure_rate_threshold"`

	CheckIntervalSecs   int `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
	LookbackWindowHours int `yaml:"lookback_window_hours" mapstructure:"lookback_window_hours"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROSPECT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "leads.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("batch.max_concurrent_runs", 4)
	v.SetDefault("demo.output_dir", "demos")

	v.SetDefault("monitoring.failure_rate_threshold", 0.5)
	v.SetDefault("monitoring.check_interval_secs", 300)
	v.SetDefault("monitoring.lookback_window_hours", 24)

	v.SetDefault("serpapi.base_url", "https://serpapi.com")
	v.SetDefault("serpapi.timeout_secs", 15)
	v.SetDefault("serpapi.max_retries", 3)
	v.SetDefault("serpapi.initial_backoff_ms", 500)
	v.SetDefault("serpapi.max_backoff_ms", 10_000)
	v.SetDefault("serpapi.rate_limit", 2)

	v.SetDefault("scoring.min_rating", 4.0)
	v.SetDefault("scoring.min_reviews", 20)
	v.SetDefault("scoring.rating_points", 20)
	v.SetDefault("scoring.review_points", 20)
	v.SetDefault("scoring.bonus_rating", 4.5)
	v.SetDefault("scoring.bonus_rating_points", 15)
	v.SetDefault("scoring.bonus_reviews", 100)
	v.SetDefault("scoring.bonus_reviews_points", 20)
	v.SetDefault("scoring.no_website_points", 25)
	v.SetDefault("scoring.social_only_points", 15)

	v.SetDefault("normalize.social_patterns", []string{
		"facebook.com", "instagram.com", "twitter.com", "x.com",
		"linkedin.com", "tiktok.com", "youtube.com", "yelp.com",
		"wa.me", "whatsapp.com",
	})

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
