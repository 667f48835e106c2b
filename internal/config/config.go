package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server" envPrefix:"MEMBERS_SERVER_"`
	Database DatabaseConfig `yaml:"database" envPrefix:"MEMBERS_DB_"`
	Storage  StorageConfig  `yaml:"storage" envPrefix:"MEMBERS_STORAGE_"`
	JWT      JWTConfig      `yaml:"jwt" envPrefix:"MEMBERS_JWT_"`
	Push     PushConfig     `yaml:"push" envPrefix:"MEMBERS_PUSH_"`
	Log      LogConfig      `yaml:"log" envPrefix:"MEMBERS_LOG_"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" env:"PORT"`
	Host            string          `yaml:"host" env:"HOST"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envPrefix:"RATE_LIMIT_"`
}

// RateLimitConfig holds per-client rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" env:"ENABLED"`
	Rate    float64 `yaml:"rate" env:"RATE"` // requests per second
	Burst   int     `yaml:"burst" env:"BURST"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	DBName   string `yaml:"dbname" env:"NAME"`
	SSLMode  string `yaml:"sslmode" env:"SSLMODE"`
	Migrate  bool   `yaml:"migrate" env:"MIGRATE"`
}

// StorageConfig holds external photo storage configuration
type StorageConfig struct {
	Driver        string `yaml:"driver" env:"DRIVER"` // s3 or minio
	Region        string `yaml:"region" env:"REGION"`
	Bucket        string `yaml:"bucket" env:"BUCKET"`
	AccessKey     string `yaml:"access_key" env:"ACCESS_KEY"`
	SecretKey     string `yaml:"secret_key" env:"SECRET_KEY"`
	Endpoint      string `yaml:"endpoint" env:"ENDPOINT"`
	UseSSL        bool   `yaml:"use_ssl" env:"USE_SSL"`
	PublicBaseURL string `yaml:"public_base_url" env:"PUBLIC_BASE_URL"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string `yaml:"secret" env:"SECRET"`
}

// PushConfig holds APNs configuration
type PushConfig struct {
	Enabled    bool   `yaml:"enabled" env:"ENABLED"`
	KeyFile    string `yaml:"key_file" env:"KEY_FILE"`
	KeyID      string `yaml:"key_id" env:"KEY_ID"`
	TeamID     string `yaml:"team_id" env:"TEAM_ID"`
	Topic      string `yaml:"topic" env:"TOPIC"`
	Production bool   `yaml:"production" env:"PRODUCTION"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
}

// Load reads configuration from a YAML file, then applies environment
// overrides and defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse builds the configuration from YAML bytes, environment overrides and defaults
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg.applyDefaults()

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if c.Server.RateLimit.Rate == 0 {
		c.Server.RateLimit.Rate = 20
	}
	if c.Server.RateLimit.Burst == 0 {
		c.Server.RateLimit.Burst = 40
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "s3"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
