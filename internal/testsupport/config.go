// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"cinedex/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.TMDB.AccessToken = "test-token"
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.ExportCacheDir = filepath.Join(base, "cache", "exports")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithAccessToken sets the upstream credential on the test config.
func WithAccessToken(token string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.TMDB.AccessToken = token
	}
}

// WithBaseURL points the upstream client at a test server.
func WithBaseURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.TMDB.BaseURL = url
	}
}

// WithExportURL points the export downloader at a test server.
func WithExportURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.TMDB.ExportURL = url
	}
}
