// Package config reads the service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	StorageMemory = "memory"
	StorageBadger = "badger"
)

type Config struct {
	HTTPAddr        string        `validate:"required"`
	ServiceName     string        `validate:"required"`
	LogLevel        string        `validate:"oneof=debug info warn error"`
	OTelLogs        bool
	StorageDriver   string        `validate:"oneof=memory badger"`
	BadgerPath      string        `validate:"required_if=StorageDriver badger"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
}

var validate = validator.New()

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration through getenv. Unset variables take
// their defaults.
func LoadFrom(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		HTTPAddr:      get("HTTP_ADDR", ":8080"),
		ServiceName:   get("OTEL_SERVICE_NAME", "calculat0r-api"),
		LogLevel:      get("LOG_LEVEL", "info"),
		StorageDriver: get("STORAGE_DRIVER", StorageMemory),
		BadgerPath:    getenv("BADGER_PATH"),
	}

	var err error
	cfg.OTelLogs, err = strconv.ParseBool(get("OTEL_LOGS_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse OTEL_LOGS_ENABLED: %w", err)
	}

	cfg.ShutdownTimeout, err = time.ParseDuration(get("SHUTDOWN_TIMEOUT", "5s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SHUTDOWN_TIMEOUT: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
