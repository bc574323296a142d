package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// prometheus metrics server
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	LoginRateLimitAllowedPerMin int `toml:"login_rate_limit_allowed_per_min"`

	// assistant (LLM text generation)
	AssistantAPIURL string `toml:"assistant_api_url"`
	AssistantModel  string `toml:"assistant_model"`

	// fitness provider
	FitnessSyncDays int `toml:"fitness_sync_days"`

	// weekly trend window, in days, inclusive of today
	WeeklyWindowDays int `toml:"weekly_window_days"`

	// email
	SMTPHost         string `toml:"smtp_host"`
	SMTPPort         string `toml:"smtp_port"`
	SupportEmail     string `toml:"support_email"`
	DefaultFromEmail string `toml:"default_from_email"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

func Load(env, path string) (*Config, error) {
	var tomlConfig Toml
	if _, err := toml.DecodeFile(path, &tomlConfig); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := tomlConfig.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config for env %s is empty", env)
	}

	cfg.Environment = env

	if cfg.FitnessSyncDays <= 0 {
		cfg.FitnessSyncDays = 7
	}
	if cfg.WeeklyWindowDays <= 0 {
		cfg.WeeklyWindowDays = 7
	}

	return cfg, nil
}
