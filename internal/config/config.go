package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"millionaire-service/internal/domain"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Game struct {
		RevealDelay string `yaml:"reveal_delay"`
		CatalogTTL  string `yaml:"catalog_ttl"`
		SoloIdle    string `yaml:"solo_idle"`
	} `yaml:"game"`
	Generator struct {
		URL     string `yaml:"url"`
		APIKey  string `yaml:"api_key"`
		Timeout string `yaml:"timeout"`
	} `yaml:"generator"`
	Log struct {
		Development bool `yaml:"development"`
	} `yaml:"log"`
}

// Load reads YAML config from path. A missing file yields the zero config so
// the service can run on defaults and environment overrides alone.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

func (c Config) RoomTTL() time.Duration     { return TTLDuration(c.Redis.TTL, 6*time.Hour) }
func (c Config) RevealDelay() time.Duration { return TTLDuration(c.Game.RevealDelay, domain.RevealDelay) }
func (c Config) CatalogTTL() time.Duration  { return TTLDuration(c.Game.CatalogTTL, 10*time.Minute) }
func (c Config) SoloIdle() time.Duration    { return TTLDuration(c.Game.SoloIdle, 30*time.Minute) }
func (c Config) GeneratorTimeout() time.Duration {
	return TTLDuration(c.Generator.Timeout, 15*time.Second)
}
