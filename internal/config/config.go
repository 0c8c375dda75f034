// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// Store backend selectors.
const (
	StoreBackendREST  = "rest"
	StoreBackendLocal = "local"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	StoreBackend   string `mapstructure:"STORE_BACKEND"`
	StoreURL       string `mapstructure:"STORE_URL"`
	StoreAPIKey    string `mapstructure:"STORE_API_KEY"`
	StoreBucket    string `mapstructure:"STORE_BUCKET"`
	LocalDBDriver  string `mapstructure:"LOCAL_DB_DRIVER"`
	LocalDBDSN     string `mapstructure:"LOCAL_DB_DSN"`
	MediaDir       string `mapstructure:"MEDIA_DIR"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	TracingEnabled bool   `mapstructure:"TRACING_ENABLED"`
	TracingExport  string `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint   string `mapstructure:"OTLP_ENDPOINT"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if errors.As(err, &notFoundErr) {
			log.Println("Config file not found; using environment variables and defaults")
		} else {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Set default values for development
	viper.SetDefault("PORT", "8390")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("STORE_BACKEND", StoreBackendLocal)
	viper.SetDefault("STORE_URL", "")
	viper.SetDefault("STORE_API_KEY", "")
	viper.SetDefault("STORE_BUCKET", "media")
	viper.SetDefault("LOCAL_DB_DRIVER", "sqlite")
	viper.SetDefault("LOCAL_DB_DSN", "ricordi.db")
	viper.SetDefault("MEDIA_DIR", "/tmp/ricordi/media")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and consistent.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}

	switch c.StoreBackend {
	case StoreBackendREST:
		if c.StoreURL == "" {
			return errors.New("STORE_URL is required when STORE_BACKEND is 'rest'")
		}
		if c.StoreAPIKey == "" {
			log.Println("WARNING: STORE_API_KEY is empty; the hosted store will likely reject requests")
		}
	case StoreBackendLocal:
		if c.LocalDBDriver != "sqlite" && c.LocalDBDriver != "postgres" {
			return fmt.Errorf("unsupported LOCAL_DB_DRIVER %q (want 'sqlite' or 'postgres')", c.LocalDBDriver)
		}
		if c.MediaDir == "" {
			return errors.New("MEDIA_DIR is required when STORE_BACKEND is 'local'")
		}
	default:
		return fmt.Errorf("unsupported STORE_BACKEND %q (want 'rest' or 'local')", c.StoreBackend)
	}

	if c.StoreBucket == "" {
		return errors.New("STORE_BUCKET is required")
	}

	isProduction := c.Env == "production" || c.Env == "prod"
	if isProduction {
		if c.StoreBackend == StoreBackendLocal {
			log.Println("WARNING: STORE_BACKEND is 'local' in production; media and records stay on this host")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	}

	return nil
}
