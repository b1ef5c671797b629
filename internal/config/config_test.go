package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"cinedex/internal/config"
)

func TestLoadDefaultConfigUsesEnvTokenAndExpandsPaths(t *testing.T) {
	t.Setenv("TMDB_ACCESS_TOKEN", "test-token")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "cinedex")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.ExportCacheDir != filepath.Join(wantData, "cache", "exports") {
		t.Fatalf("unexpected export cache dir: %q", cfg.Paths.ExportCacheDir)
	}
	if cfg.TMDB.AccessToken != "test-token" {
		t.Fatalf("expected token from env, got %q", cfg.TMDB.AccessToken)
	}
	if cfg.TMDB.BaseURL != config.Default().TMDB.BaseURL {
		t.Fatalf("unexpected base url: %q", cfg.TMDB.BaseURL)
	}
	if cfg.TMDB.RateLimit != 35 {
		t.Fatalf("unexpected rate limit: %d", cfg.TMDB.RateLimit)
	}
	if cfg.TMDB.MaxCast != 8 {
		t.Fatalf("unexpected max cast: %d", cfg.TMDB.MaxCast)
	}
	if cfg.TMDB.IncludeAdult {
		t.Fatal("expected include_adult disabled by default")
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %q/%q", cfg.Logging.Format, cfg.Logging.Level)
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "catalog.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
}

func TestLoadExplicitFileOverridesDefaults(t *testing.T) {
	t.Setenv("TMDB_ACCESS_TOKEN", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := strings.Join([]string{
		"[paths]",
		`data_dir = "` + filepath.Join(dir, "data") + `"`,
		"",
		"[tmdb]",
		`access_token = "file-token"`,
		"rate_limit = 20",
		"",
		"[logging]",
		`format = "JSON"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.TMDB.AccessToken != "file-token" {
		t.Fatalf("unexpected token: %q", cfg.TMDB.AccessToken)
	}
	if cfg.TMDB.RateLimit != 20 {
		t.Fatalf("unexpected rate limit: %d", cfg.TMDB.RateLimit)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected format normalized to json, got %q", cfg.Logging.Format)
	}
	if cfg.TMDB.Language != "en-US" {
		t.Fatalf("expected language default preserved, got %q", cfg.TMDB.Language)
	}
}

func TestLoadRejectsUnknownLogFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unsupported log format")
	}
}

func TestRequireAccessToken(t *testing.T) {
	t.Setenv("TMDB_ACCESS_TOKEN", "")
	cfg := config.Default()
	if err := cfg.RequireAccessToken(); err == nil {
		t.Fatal("expected error when token missing")
	}
	cfg.TMDB.AccessToken = "abc"
	if err := cfg.RequireAccessToken(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateSampleWritesParseableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "access_token") {
		t.Fatalf("sample config missing access token placeholder: %s", contents)
	}
	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
}
