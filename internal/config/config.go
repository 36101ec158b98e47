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
	Store         StoreConfig         `yaml:"store" mapstructure:"store"`
	Google        GoogleConfig        `yaml:"google" mapstructure:"google"`
	Anthropic     AnthropicConfig     `yaml:"anthropic" mapstructure:"anthropic"`
	Source        SourceConfig        `yaml:"source" mapstructure:"source"`
	Cache         CacheConfig         `yaml:"cache" mapstructure:"cache"`
	Ranking       RankingConfig       `yaml:"ranking" mapstructure:"ranking"`
	Consolidation ConsolidationConfig `yaml:"consolidation" mapstructure:"consolidation"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	Log           LogConfig           `yaml:"log" mapstructure:"log"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// GoogleConfig configures the Places client.
type GoogleConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AnthropicConfig configures the Claude client.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// SourceConfig selects the candidate provider and its protections.
type SourceConfig struct {
	// Provider is places, llm or fallback (places then llm).
	Provider           string  `yaml:"provider" mapstructure:"provider"`
	Limit              int     `yaml:"limit" mapstructure:"limit"`
	RatePerSec         float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Burst              int     `yaml:"burst" mapstructure:"burst"`
	RetryAttempts      int     `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	BreakerFailures    uint32  `yaml:"breaker_failures" mapstructure:"breaker_failures"`
	BreakerTimeoutSecs int     `yaml:"breaker_timeout_secs" mapstructure:"breaker_timeout_secs"`
}

// CacheConfig configures the candidate cache.
type CacheConfig struct {
	TTLSecs int `yaml:"ttl_secs" mapstructure:"ttl_secs"`
}

// RankingConfig tunes candidate scoring.
type RankingConfig struct {
	BudgetSlack    float64 `yaml:"budget_slack" mapstructure:"budget_slack"`
	LocationWeight float64 `yaml:"location_weight" mapstructure:"location_weight"`
	TypeWeight     float64 `yaml:"type_weight" mapstructure:"type_weight"`
	AmenityWeight  float64 `yaml:"amenity_weight" mapstructure:"amenity_weight"`
	RatingWeight   float64 `yaml:"rating_weight" mapstructure:"rating_weight"`
}

// ConsolidationConfig tunes the consolidated plan size.
type ConsolidationConfig struct {
	MinMembers      int                `yaml:"min_members" mapstructure:"min_members"`
	Floor           int                `yaml:"floor" mapstructure:"floor"`
	CeilingFraction float64            `yaml:"ceiling_fraction" mapstructure:"ceiling_fraction"`
	Multipliers     map[string]float64 `yaml:"multipliers" mapstructure:"multipliers"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TRIP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "trip.db")
	v.SetDefault("google.key", "")
	v.SetDefault("google.base_url", "https://places.googleapis.com/v1")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("source.provider", "fallback")
	v.SetDefault("source.limit", 15)
	v.SetDefault("source.rate_per_sec", 5.0)
	v.SetDefault("source.burst", 5)
	v.SetDefault("source.retry_attempts", 3)
	v.SetDefault("source.breaker_failures", 5)
	v.SetDefault("source.breaker_timeout_secs", 30)
	v.SetDefault("cache.ttl_secs", 3600)
	v.SetDefault("ranking.budget_slack", 1.5)
	v.SetDefault("ranking.location_weight", 50.0)
	v.SetDefault("ranking.type_weight", 30.0)
	v.SetDefault("ranking.amenity_weight", 20.0)
	v.SetDefault("ranking.rating_weight", 10.0)
	v.SetDefault("consolidation.min_members", 2)
	v.SetDefault("consolidation.floor", 4)
	v.SetDefault("consolidation.ceiling_fraction", 0.8)
	v.SetDefault("consolidation.multipliers", map[string]float64{})
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Validate checks the settings a command needs. Mode is one of suggest,
// serve or store.
func (c *Config) Validate(mode string) error {
	var missing []string

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return eris.Errorf("config: store.driver must be sqlite or postgres, got %q", c.Store.Driver)
	}
	if c.Store.DatabaseURL == "" {
		missing = append(missing, "store.database_url")
	}
	if c.Ranking.BudgetSlack < 1 {
		return eris.Errorf("config: ranking.budget_slack must be >= 1, got %g", c.Ranking.BudgetSlack)
	}
	if c.Consolidation.MinMembers < 2 {
		return eris.Errorf("config: consolidation.min_members must be >= 2, got %d", c.Consolidation.MinMembers)
	}

	switch mode {
	case "store":
	case "suggest", "serve":
		switch c.Source.Provider {
		case "places":
			if c.Google.Key == "" {
				missing = append(missing, "google.key")
			}
		case "llm":
			if c.Anthropic.Key == "" {
				missing = append(missing, "anthropic.key")
			}
		case "fallback":
			if c.Google.Key == "" && c.Anthropic.Key == "" {
				missing = append(missing, "google.key or anthropic.key")
			}
		default:
			return eris.Errorf("config: source.provider must be places, llm or fallback, got %q", c.Source.Provider)
		}
		if mode == "serve" && c.Server.Port <= 0 {
			return eris.New("config: server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(missing) > 0 {
		return eris.Errorf("config: missing required fields for %s: %s", mode, strings.Join(missing, ", "))
	}
	return nil
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
