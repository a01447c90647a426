package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Calendar CalendarConfig `yaml:"calendar"`
	Suggest  SuggestConfig  `yaml:"suggest"`
	Export   ExportConfig   `yaml:"export"`
	Server   ServerConfig   `yaml:"server"`
}

// DatabaseConfig configures SQLite storage for the topic collections.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// CalendarConfig configures the local calendar database.
type CalendarConfig struct {
	Path string `yaml:"path"`
}

// SuggestConfig configures where suggested resources come from: a remote
// backend when base_url is set, RSS feeds otherwise.
type SuggestConfig struct {
	BaseURL string     `yaml:"base_url"`
	Timeout string     `yaml:"timeout"`
	Feeds   []FeedItem `yaml:"feeds"`
}

// ParseTimeout returns the suggest timeout as time.Duration.
func (s SuggestConfig) ParseTimeout() time.Duration {
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// FeedItem is a single RSS feed entry.
type FeedItem struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// ExportConfig configures where exported files land.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./ressa.db"},
		Calendar: CalendarConfig{Path: "./ressa-calendar.db"},
		Suggest: SuggestConfig{
			Timeout: "60s",
			Feeds: []FeedItem{
				{Name: "freeCodeCamp", URL: "https://www.freecodecamp.org/news/rss/"},
				{Name: "Dev.to", URL: "https://dev.to/feed"},
				{Name: "Hacker News", URL: "https://news.ycombinator.com/rss"},
			},
		},
		Export: ExportConfig{Dir: "./exports"},
		Server: ServerConfig{Port: 8080},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RESSA_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("RESSA_CALENDAR_PATH"); v != "" {
		cfg.Calendar.Path = v
	}
	if v := os.Getenv("RESSA_SUGGEST_URL"); v != "" {
		cfg.Suggest.BaseURL = v
	}
	if v := os.Getenv("RESSA_EXPORT_DIR"); v != "" {
		cfg.Export.Dir = v
	}
	if v := os.Getenv("RESSA_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}
