package verify_test

import (
	"compress/gzip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cinedex/internal/export"
	"cinedex/internal/logging"
	"cinedex/internal/testsupport"
	"cinedex/internal/verify"
)

var exportDate = time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)

func writeExport(t *testing.T, cacheDir string, lines []string) {
	t.Helper()
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		t.Fatalf("create cache dir: %v", err)
	}
	path := filepath.Join(cacheDir, export.FileName(exportDate))
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create export: %v", err)
	}
	gz := gzip.NewWriter(file)
	for _, line := range lines {
		fmt.Fprintln(gz, line)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("close export: %v", err)
	}
}

func TestVerifyCountsMissingExtraAndCoverage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	// Export: 1-4 plus an adult entry that must not count.
	writeExport(t, cfg.Paths.ExportCacheDir, []string{
		`{"adult":false,"id":1,"original_title":"One","popularity":150}`,
		`{"adult":false,"id":2,"original_title":"Two","popularity":50}`,
		`{"adult":false,"id":3,"original_title":"Three","popularity":5}`,
		`{"adult":false,"id":4,"original_title":"Four","popularity":0.5}`,
		`{"adult":true,"id":5,"original_title":"Adult","popularity":99}`,
	})

	// Catalog: 1 and 2 in production, 3 staged.
	for _, id := range []int64{1, 2} {
		if _, err := st.InsertProduction(ctx, testsupport.NewRecord(t, id)); err != nil {
			t.Fatalf("InsertProduction: %v", err)
		}
	}
	if _, err := st.InsertStaged(ctx, testsupport.NewRecord(t, 3)); err != nil {
		t.Fatalf("InsertStaged: %v", err)
	}

	handler, err := export.NewHandler(export.Config{
		CacheDir: cfg.Paths.ExportCacheDir,
		Logger:   logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	verifier := verify.New(st, handler, logging.NewNop())
	result, err := verifier.Verify(ctx, exportDate)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if result.ExportCount != 4 {
		t.Fatalf("expected adult entry excluded from export count, got %d", result.ExportCount)
	}
	if result.MissingCount() != 1 || result.MissingIDs[0] != 4 {
		t.Fatalf("unexpected missing ids: %v", result.MissingIDs)
	}
	if result.ExtraCount() != 0 {
		t.Fatalf("unexpected extra ids: %v", result.ExtraIDs)
	}
	if got := result.CoveragePercent(); got != 75.0 {
		t.Fatalf("expected 75%% coverage, got %.2f", got)
	}
	if result.IsComplete() {
		t.Fatal("expected incomplete result")
	}

	missing, err := verifier.MissingByPopularity(ctx, result, 0, 10)
	if err != nil {
		t.Fatalf("MissingByPopularity: %v", err)
	}
	if len(missing) != 1 || missing[0].ID != 4 || missing[0].Title != "Four" {
		t.Fatalf("unexpected missing detail: %v", missing)
	}
}

func TestVerifyReportsExtraMovies(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	writeExport(t, cfg.Paths.ExportCacheDir, []string{
		`{"adult":false,"id":1,"original_title":"One","popularity":10}`,
	})

	for _, id := range []int64{1, 2} {
		if _, err := st.InsertProduction(ctx, testsupport.NewRecord(t, id)); err != nil {
			t.Fatalf("InsertProduction: %v", err)
		}
	}

	handler, err := export.NewHandler(export.Config{
		CacheDir: cfg.Paths.ExportCacheDir,
		Logger:   logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	verifier := verify.New(st, handler, logging.NewNop())
	result, err := verifier.Verify(ctx, exportDate)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if !result.IsComplete() {
		t.Fatal("expected complete result")
	}
	if result.ExtraCount() != 1 || result.ExtraIDs[0] != 2 {
		t.Fatalf("unexpected extra ids: %v", result.ExtraIDs)
	}
	// 2 in catalog, 1 no longer exported: coverage stays at 100%.
	if got := result.CoveragePercent(); got != 100.0 {
		t.Fatalf("unexpected coverage: %.2f", got)
	}
}

func TestCoverageByTier(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	writeExport(t, cfg.Paths.ExportCacheDir, []string{
		`{"adult":false,"id":1,"original_title":"Hit","popularity":200}`,
		`{"adult":false,"id":2,"original_title":"Known","popularity":50}`,
		`{"adult":false,"id":3,"original_title":"Niche","popularity":0.05}`,
	})

	if _, err := st.InsertProduction(ctx, testsupport.NewRecord(t, 1)); err != nil {
		t.Fatalf("InsertProduction: %v", err)
	}

	handler, err := export.NewHandler(export.Config{
		CacheDir: cfg.Paths.ExportCacheDir,
		Logger:   logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	verifier := verify.New(st, handler, logging.NewNop())
	tiers, err := verifier.CoverageByTier(ctx, exportDate)
	if err != nil {
		t.Fatalf("CoverageByTier: %v", err)
	}

	byName := make(map[string]verify.TierCoverage, len(tiers))
	for _, tier := range tiers {
		byName[tier.Tier] = tier
	}
	if tier := byName["very_high (>100)"]; tier.Total != 1 || tier.InCatalog != 1 || tier.CoveragePercent != 100 {
		t.Fatalf("unexpected very_high tier: %+v", tier)
	}
	if tier := byName["high (10-100)"]; tier.Total != 1 || tier.Missing != 1 {
		t.Fatalf("unexpected high tier: %+v", tier)
	}
	if tier := byName["very_low (<=0.1)"]; tier.Total != 1 || tier.InCatalog != 0 {
		t.Fatalf("unexpected very_low tier: %+v", tier)
	}
}
