package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFromFileMissingUsesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Storage.PackagesDir != "packages" || cfg.Storage.DataDir != "packagedata" {
		t.Errorf("Unexpected storage defaults: %+v", cfg.Storage)
	}
	if cfg.Download.CacheMaxAge != 24*time.Hour {
		t.Errorf("Expected 24h cache max age, got %s", cfg.Download.CacheMaxAge)
	}
}

func TestLoadFromFileOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
storage:
  path: /srv/opm
download:
  cache_max_age: 1h
mirror:
  url: https://example.com/store.git
  interval: 15m
log:
  level: debug
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Storage.Path != "/srv/opm" {
		t.Errorf("Expected storage path /srv/opm, got %q", cfg.Storage.Path)
	}
	if cfg.Storage.DataDir != "packagedata" {
		t.Errorf("Expected default data dir to survive, got %q", cfg.Storage.DataDir)
	}
	if cfg.Download.CacheMaxAge != time.Hour {
		t.Errorf("Expected 1h, got %s", cfg.Download.CacheMaxAge)
	}
	if cfg.Mirror.Interval != 15*time.Minute {
		t.Errorf("Expected 15m, got %s", cfg.Mirror.Interval)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected debug, got %q", cfg.Log.Level)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed yaml", content: "server: [port"},
		{name: "bad port", content: "server:\n  port: -1\n"},
		{name: "empty storage path", content: "storage:\n  path: \"\"\n"},
		{name: "zero rate limit", content: "rate_limit:\n  rps: 0\n"},
		{name: "mirror without interval", content: "mirror:\n  url: x\n  interval: 0s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFromFile(writeConfig(t, tt.content)); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestEnsureDirs(t *testing.T) {
	root := t.TempDir()
	cfg := Default()
	cfg.Storage.Path = filepath.Join(root, "repo")
	cfg.Stats.Enabled = true
	cfg.Stats.Path = filepath.Join(root, "data")

	if err := cfg.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
	for _, dir := range []string{cfg.Storage.Path, cfg.Stats.Path} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("Expected directory %s to exist", dir)
		}
	}
	if got := cfg.StatsDBPath(); got != filepath.Join(root, "data", "opm-repo.db") {
		t.Errorf("Unexpected stats db path %q", got)
	}
}
