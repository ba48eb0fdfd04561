package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for cinesage-engine.
// Values come from config.yaml with environment variable overrides; secrets
// (database password, oracle API key) must only come from the environment.
type Config struct {
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // set at load time, not from config

	Database   DatabaseConfig   `yaml:"database"`
	Oracle     OracleConfig     `yaml:"oracle"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
}

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"cinesage"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"cinesage"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// OracleConfig holds the text-completion oracle settings.
type OracleConfig struct {
	Provider    string  `yaml:"provider" env:"ORACLE_PROVIDER" env-default:"openai"`
	Endpoint    string  `yaml:"endpoint" env:"ORACLE_ENDPOINT" env-default:"https://api.openai.com/v1"`
	Model       string  `yaml:"model" env:"ORACLE_MODEL" env-default:"gpt-4o-mini"`
	APIKey      string  `yaml:"-" env:"ORACLE_API_KEY"` // secret - not in YAML
	Temperature float64 `yaml:"temperature" env:"ORACLE_TEMPERATURE" env-default:"0.7"`
	MaxTokens   int     `yaml:"max_tokens" env:"ORACLE_MAX_TOKENS" env-default:"2000"`
}

// EnrichmentConfig holds batch enrichment settings.
type EnrichmentConfig struct {
	// DefaultMovieCount is the batch size when a request does not specify one.
	DefaultMovieCount int `yaml:"default_movie_count" env:"ENRICHMENT_DEFAULT_MOVIE_COUNT" env-default:"75"`
	// DelayMs is the fixed pause between consecutive enriched movies.
	DelayMs int `yaml:"delay_ms" env:"ENRICHMENT_DELAY_MS" env-default:"500"`
}

// Load reads configuration from the given YAML file with environment
// variable overrides. The version is injected at build time.
func Load(path, version string) (*Config, error) {
	cfg := &Config{Version: version}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if cfg.Enrichment.DefaultMovieCount < 1 || cfg.Enrichment.DefaultMovieCount > 200 {
		return nil, fmt.Errorf("default_movie_count must be in [1, 200], got %d", cfg.Enrichment.DefaultMovieCount)
	}
	if cfg.Enrichment.DelayMs < 0 {
		return nil, fmt.Errorf("delay_ms must not be negative, got %d", cfg.Enrichment.DelayMs)
	}

	return cfg, nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
