// Package config loads the runtime tuning for the command core.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr       string `yaml:"listen_addr"`
	TickRateHz       int    `yaml:"tick_rate_hz"`
	QueueCapacity    int    `yaml:"queue_capacity"`
	IdempotencyTTLMs int    `yaml:"idempotency_ttl_ms"`
	JournalDir       string `yaml:"journal_dir"`
	IdempotencyDB    string `yaml:"idempotency_db"`
}

func Default() Config {
	return Config{
		ListenAddr:       ":8080",
		TickRateHz:       20,
		QueueCapacity:    256,
		IdempotencyTTLMs: 300_000,
	}
}

// Load reads path over the defaults.
func Load(path string) (Config, error) {
	c := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("runtime config: %w", err)
	}
	if err := c.validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c Config) validate() error {
	if c.TickRateHz <= 0 {
		return fmt.Errorf("runtime config: tick_rate_hz must be positive, got %d", c.TickRateHz)
	}
	if c.QueueCapacity <= 0 {
		return fmt.Errorf("runtime config: queue_capacity must be positive, got %d", c.QueueCapacity)
	}
	if c.IdempotencyTTLMs <= 0 {
		return fmt.Errorf("runtime config: idempotency_ttl_ms must be positive, got %d", c.IdempotencyTTLMs)
	}
	return nil
}
