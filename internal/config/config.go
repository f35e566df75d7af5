package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"api"`
	Session struct {
		Token  string `yaml:"token"`
		UserID string `yaml:"user_id"`
	} `yaml:"session"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Cache struct {
		TTL string `yaml:"ttl"`
	} `yaml:"cache"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Share struct {
		Origin string `yaml:"origin"`
	} `yaml:"share"`
	Log struct {
		Mode string `yaml:"mode"`
	} `yaml:"log"`
}

// Load reads YAML config from path. A missing file yields an empty config so
// environment variables alone are enough to run. Environment overrides are
// applied last.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

// Validate reports configuration the client cannot start without.
func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("missing API base URL (api.base_url or STUDY_API_URL)")
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("STUDY_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("STUDY_TOKEN"); v != "" {
		cfg.Session.Token = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
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
