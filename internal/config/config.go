package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/isbaseurl/internal/scoring"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Hermes   HermesConfig   `yaml:"hermes"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port               int    `yaml:"port" validate:"min=1,max=65535"`
	MetricsPort        int    `yaml:"metrics_port" validate:"min=1,max=65535,nefield=Port"`
	AdminToken         string `yaml:"admin_token"`
	MaxBatch           int    `yaml:"max_batch" validate:"min=1,max=10000"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute" validate:"min=1"`
}

type DatabaseConfig struct {
	URL string `yaml:"url" validate:"omitempty,url"`
}

type HermesConfig struct {
	URL string `yaml:"url" validate:"omitempty,url"`
}

type ScoringConfig struct {
	CheckURLValid bool            `yaml:"check_url_valid"`
	Record        bool            `yaml:"record"`
	Weights       scoring.Weights `yaml:"weights"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               8610,
			MetricsPort:        8611,
			MaxBatch:           1000,
			RateLimitPerMinute: 600,
		},
		Scoring: ScoringConfig{
			CheckURLValid: true,
			Weights:       scoring.DefaultWeights(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and the scoring weights.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.Scoring.Weights.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ISBASEURL_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("ISBASEURL_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("ISBASEURL_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("ISBASEURL_MAX_BATCH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MaxBatch = n
		}
	}
	if v := os.Getenv("ISBASEURL_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("ISBASEURL_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("ISBASEURL_CHECK_URL_VALID"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Scoring.CheckURLValid = b
		}
	}
	if v := os.Getenv("ISBASEURL_RECORD"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Scoring.Record = b
		}
	}
	if v := os.Getenv("ISBASEURL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("ISBASEURL_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
