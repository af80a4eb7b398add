package config

import (
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Port int `env:"DISPATCH_TEST_PORT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("DISPATCH_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	e, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if e.ConfigDir != "config" || e.Seed != 0 || e.LogLevel != "info" || e.Tick != 16*time.Millisecond || e.Trials != 2000 {
		t.Fatalf("unexpected defaults %+v", e)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DISPATCH_SEED", "42")
	t.Setenv("DISPATCH_TICK", "50ms")
	t.Setenv("DISPATCH_LOG_FORMAT", "json")
	e, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if e.Seed != 42 || e.Tick != 50*time.Millisecond || e.LogFormat != "json" {
		t.Fatalf("overrides not applied: %+v", e)
	}

	t.Setenv("DISPATCH_TICK", "0s")
	if _, err := Load(); err == nil {
		t.Fatalf("zero tick must be rejected")
	}
}
