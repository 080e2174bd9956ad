package config

import (
	"testing"
	"time"
)

func env(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(env(nil))
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected addr %q, got %q", ":8080", cfg.HTTPAddr)
	}
	if cfg.ServiceName != "calculat0r-api" {
		t.Fatalf("expected service name %q, got %q", "calculat0r-api", cfg.ServiceName)
	}
	if cfg.StorageDriver != StorageMemory {
		t.Fatalf("expected storage %q, got %q", StorageMemory, cfg.StorageDriver)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Fatalf("expected shutdown timeout 5s, got %s", cfg.ShutdownTimeout)
	}
	if cfg.OTelLogs {
		t.Fatal("expected OTel logs disabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"HTTP_ADDR":         "127.0.0.1:9000",
		"LOG_LEVEL":         "debug",
		"OTEL_LOGS_ENABLED": "true",
		"STORAGE_DRIVER":    "badger",
		"BADGER_PATH":       "/var/lib/calc",
		"SHUTDOWN_TIMEOUT":  "10s",
	}))
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	if cfg.HTTPAddr != "127.0.0.1:9000" || cfg.LogLevel != "debug" || !cfg.OTelLogs {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.StorageDriver != StorageBadger || cfg.BadgerPath != "/var/lib/calc" {
		t.Fatalf("unexpected storage config %+v", cfg)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("expected shutdown timeout 10s, got %s", cfg.ShutdownTimeout)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]map[string]string{
		"bad level":          {"LOG_LEVEL": "loud"},
		"bad driver":         {"STORAGE_DRIVER": "postgres"},
		"badger without dir": {"STORAGE_DRIVER": "badger"},
		"bad bool":           {"OTEL_LOGS_ENABLED": "maybe"},
		"bad duration":       {"SHUTDOWN_TIMEOUT": "soon"},
		"negative duration":  {"SHUTDOWN_TIMEOUT": "-1s"},
	}

	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFrom(env(vars)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
