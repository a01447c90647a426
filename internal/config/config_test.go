package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Database.Path != "./ressa.db" {
		t.Errorf("database path = %q", cfg.Database.Path)
	}
	if cfg.Calendar.Path != "./ressa-calendar.db" {
		t.Errorf("calendar path = %q", cfg.Calendar.Path)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Export.Dir != "./exports" {
		t.Errorf("export dir = %q", cfg.Export.Dir)
	}
	if cfg.Suggest.BaseURL != "" {
		t.Errorf("default suggest base url = %q, want empty", cfg.Suggest.BaseURL)
	}
	if len(cfg.Suggest.Feeds) == 0 {
		t.Error("default config has no suggest feeds")
	}
	if got := cfg.Suggest.ParseTimeout(); got != 60*time.Second {
		t.Errorf("ParseTimeout = %v", got)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
database:
  path: /data/topics.db
suggest:
  base_url: http://suggest.local:9000
  timeout: 5s
server:
  port: 9191
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.Path != "/data/topics.db" {
		t.Errorf("database path = %q", cfg.Database.Path)
	}
	if cfg.Suggest.BaseURL != "http://suggest.local:9000" {
		t.Errorf("suggest base url = %q", cfg.Suggest.BaseURL)
	}
	if got := cfg.Suggest.ParseTimeout(); got != 5*time.Second {
		t.Errorf("ParseTimeout = %v", got)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	// Unset keys keep defaults.
	if cfg.Export.Dir != "./exports" {
		t.Errorf("export dir = %q", cfg.Export.Dir)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RESSA_DB_PATH", "/tmp/override.db")
	t.Setenv("RESSA_SUGGEST_URL", "http://other:8000")
	t.Setenv("RESSA_PORT", "7070")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.Path != "/tmp/override.db" {
		t.Errorf("database path = %q", cfg.Database.Path)
	}
	if cfg.Suggest.BaseURL != "http://other:8000" {
		t.Errorf("suggest base url = %q", cfg.Suggest.BaseURL)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
}

func TestEnvOverrideBadPort(t *testing.T) {
	t.Setenv("RESSA_PORT", "not-a-number")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("bad port override applied: %d", cfg.Server.Port)
	}
}

func TestParseTimeoutInvalid(t *testing.T) {
	s := SuggestConfig{Timeout: "bogus"}
	if got := s.ParseTimeout(); got != 60*time.Second {
		t.Errorf("ParseTimeout fallback = %v", got)
	}
}
