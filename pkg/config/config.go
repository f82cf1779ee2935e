package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all Protoforge configuration.
type Config struct {
	Listen   string         `yaml:"listen"`
	DBPath   string         `yaml:"db_path"`
	Provider ProviderConfig `yaml:"provider"`
	Cache    CacheConfig    `yaml:"cache"`
	Audit    AuditConfig    `yaml:"audit"`
}

// ProviderConfig defines the upstream generation API.
type ProviderConfig struct {
	URL     string        `yaml:"url"`
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// CacheConfig controls the response cache.
type CacheConfig struct {
	Enabled       bool          `yaml:"enabled"`
	GenerationTTL time.Duration `yaml:"generation_ttl"`
	ChatTTL       time.Duration `yaml:"chat_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// AuditConfig controls the generation request log.
type AuditConfig struct {
	Enabled       bool `yaml:"enabled"`
	RetentionDays int  `yaml:"retention_days"`
}

// Default returns a Config with sensible defaults. Identical code requests
// recur more often than chat (retries, reloads), so generation results get
// the longer TTL.
func Default() *Config {
	return &Config{
		Listen: ":8080",
		DBPath: "protoforge.db",
		Provider: ProviderConfig{
			URL:     "https://api.openai.com/v1/chat/completions",
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			Model:   "gpt-4o",
			Timeout: 2 * time.Minute,
		},
		Cache: CacheConfig{
			Enabled:       true,
			GenerationTTL: 5 * time.Minute,
			ChatTTL:       2 * time.Minute,
			SweepInterval: 5 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:       true,
			RetentionDays: 30,
		},
	}
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}
