package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Env is the process configuration read from the environment.
type Env struct {
	ConfigDir string        `env:"DISPATCH_CONFIG_DIR" envDefault:"config"`
	Seed      uint64        `env:"DISPATCH_SEED"` // 0 = crypto RNG
	LogLevel  string        `env:"DISPATCH_LOG_LEVEL" envDefault:"info"`
	LogFormat string        `env:"DISPATCH_LOG_FORMAT" envDefault:"console"`
	Tick      time.Duration `env:"DISPATCH_TICK" envDefault:"16ms"`
	Trials    int           `env:"DISPATCH_TRIALS" envDefault:"2000"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses Env from the process environment.
func Load() (Env, error) {
	var e Env
	if err := ParseEnv(&e); err != nil {
		return Env{}, err
	}
	if e.Tick <= 0 {
		return Env{}, fmt.Errorf("DISPATCH_TICK must be positive, got %s", e.Tick)
	}
	return e, nil
}
