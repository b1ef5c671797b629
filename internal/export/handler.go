package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cinedex/internal/logging"
)

const (
	defaultExportURL   = "http://files.tmdb.org/p/exports"
	defaultHTTPTimeout = 5 * time.Minute
)

// Config describes handler construction parameters.
type Config struct {
	BaseURL    string
	CacheDir   string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Handler downloads daily ID exports and manages the on-disk cache.
type Handler struct {
	baseURL  string
	cacheDir string
	http     *http.Client
	logger   *slog.Logger
}

// NewHandler creates a Handler from the supplied configuration.
func NewHandler(cfg Config) (*Handler, error) {
	cacheDir := strings.TrimSpace(cfg.CacheDir)
	if cacheDir == "" {
		return nil, errors.New("export: cache directory is required")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultExportURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Handler{
		baseURL:  base,
		cacheDir: cacheDir,
		http:     httpClient,
		logger:   logging.NewComponentLogger(cfg.Logger, "export"),
	}, nil
}

// FileName returns the upstream's export file name for the given date.
func FileName(date time.Time) string {
	return fmt.Sprintf("movie_ids_%02d_%02d_%04d.json.gz", date.Month(), date.Day(), date.Year())
}

// DefaultDate returns the newest export date guaranteed to exist. Exports
// are published during the day they are named for, so yesterday is safe.
func DefaultDate() time.Time {
	return time.Now().UTC().AddDate(0, 0, -1)
}

// Snapshot returns the export for the given date, downloading it when the
// cache has no copy yet.
func (h *Handler) Snapshot(ctx context.Context, date time.Time) (*Snapshot, error) {
	name := FileName(date)
	path := filepath.Join(h.cacheDir, name)

	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		h.logger.Debug("export cache hit", logging.String("file", name))
		return &Snapshot{path: path, date: date, logger: h.logger}, nil
	}

	if err := os.MkdirAll(h.cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("export: create cache directory: %w", err)
	}
	if err := h.download(ctx, h.baseURL+"/"+name, path); err != nil {
		return nil, err
	}
	h.logger.Info("export downloaded", logging.String("file", name))
	return &Snapshot{path: path, date: date, logger: h.logger}, nil
}

// Refresh re-downloads the export for the given date even when a cached
// copy exists.
func (h *Handler) Refresh(ctx context.Context, date time.Time) (*Snapshot, error) {
	name := FileName(date)
	path := filepath.Join(h.cacheDir, name)

	if err := os.MkdirAll(h.cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("export: create cache directory: %w", err)
	}
	if err := h.download(ctx, h.baseURL+"/"+name, path); err != nil {
		return nil, err
	}
	h.logger.Info("export refreshed", logging.String("file", name))
	return &Snapshot{path: path, date: date, logger: h.logger}, nil
}

func (h *Handler) download(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("export: build download request: %w", err)
	}

	resp, err := h.http.Do(req)
	if err != nil {
		return fmt.Errorf("export: download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("export: download failed (%s)", resp.Status)
	}

	tmp, err := os.CreateTemp(h.cacheDir, ".download-*")
	if err != nil {
		return fmt.Errorf("export: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("export: write download: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("export: close download: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("export: finalize download: %w", err)
	}
	return nil
}

// ClearCache removes cached exports older than the given number of days.
// It returns how many files were removed.
func (h *Handler) ClearCache(olderThanDays int) (int, error) {
	if olderThanDays < 0 {
		olderThanDays = 0
	}
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)

	entries, err := os.ReadDir(h.cacheDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("export: read cache directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json.gz") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(h.cacheDir, entry.Name())); err != nil {
			return removed, fmt.Errorf("export: remove cached export: %w", err)
		}
		removed++
	}
	return removed, nil
}
