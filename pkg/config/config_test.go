package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestValidate_DefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	if err := Validate(cfg); err != nil {
		t.Errorf("Expected default config to pass validation, got error: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "VERBOSE"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	for _, port := range []string{"0", "65536", "-1", "notaport", ""} {
		cfg := GetDefaultConfig()
		cfg.Server.Port = port

		if err := Validate(cfg); err == nil {
			t.Errorf("Expected validation error for port %q", port)
		}
	}
}

func TestValidate_BurstWithoutLimit(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.RateBurst = 100

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for burst without rate limit")
	}
	if !strings.Contains(err.Error(), "rate_burst") {
		t.Errorf("Expected 'rate_burst' error, got: %v", err)
	}
}

func TestValidate_EmptyStorePath(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Storage.Path = ""

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for empty storage path")
	}
}

func TestValidate_ZeroShutdownTimeout(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.ShutdownTimeout = 0

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for zero shutdown timeout")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load with no config file should fall back to defaults: %v", err)
	}
	if cfg.Server.Port != DefaultPort {
		t.Errorf("Expected default port %s, got %s", DefaultPort, cfg.Server.Port)
	}
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Expected error for explicitly named missing config file")
	}
}

func TestLoad_FromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blockfs.yaml")
	content := `
logging:
  level: debug
server:
  port: "4444"
  rate_limit: 50
  rate_burst: 100
  idle_timeout: 10s
storage:
  path: /tmp/test-blockfs.disk
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected level normalized to DEBUG, got %s", cfg.Logging.Level)
	}
	if cfg.Server.Port != "4444" {
		t.Errorf("Expected port 4444, got %s", cfg.Server.Port)
	}
	if cfg.Server.RateLimit != 50 || cfg.Server.RateBurst != 100 {
		t.Errorf("Unexpected rate settings: %d/%d", cfg.Server.RateLimit, cfg.Server.RateBurst)
	}
	if cfg.Server.IdleTimeout != 10*time.Second {
		t.Errorf("Expected 10s idle timeout, got %v", cfg.Server.IdleTimeout)
	}
	if cfg.Server.ShutdownTimeout != DefaultShutdownTimeout {
		t.Errorf("Unset field should keep its default, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Storage.Path != "/tmp/test-blockfs.disk" {
		t.Errorf("Unexpected storage path %s", cfg.Storage.Path)
	}
}

func TestLoad_InvalidFileRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blockfs.yaml")
	content := `
server:
  port: "99999"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Expected validation error for out-of-range port")
	}
}
