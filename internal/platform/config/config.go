package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// ServerConfig holds environment-driven server configuration
type ServerConfig struct {
	Host            string        `env:"HOST" envDefault:""`
	Port            int           `env:"PORT" envDefault:"8080"`
	StorageType     string        `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL        string        `env:"REDIS_URL" envDefault:""`
	SessionDuration time.Duration `env:"SESSION_DURATION" envDefault:"24h"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadServer reads the server configuration from the environment
func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	if err := ParseEnv(&cfg); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}
