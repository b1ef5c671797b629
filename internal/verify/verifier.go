package verify

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"cinedex/internal/export"
	"cinedex/internal/logging"
	"cinedex/internal/store"
)

// Verifier checks catalog completeness against daily exports.
type Verifier struct {
	store   *store.Store
	handler *export.Handler
	logger  *slog.Logger
}

// New creates a Verifier.
func New(st *store.Store, handler *export.Handler, logger *slog.Logger) *Verifier {
	return &Verifier{
		store:   st,
		handler: handler,
		logger:  logging.NewComponentLogger(logger, "verify"),
	}
}

// Result captures one verification run.
type Result struct {
	ExportDate      time.Time
	ExportCount     int
	ProductionCount int
	StagedCount     int
	MissingIDs      []int64
	ExtraIDs        []int64
}

// MissingCount is the number of export movies absent from the catalog.
func (r Result) MissingCount() int { return len(r.MissingIDs) }

// ExtraCount is the number of catalog movies absent from the export.
func (r Result) ExtraCount() int { return len(r.ExtraIDs) }

// CoveragePercent is how much of the export the catalog holds.
func (r Result) CoveragePercent() float64 {
	if r.ExportCount == 0 {
		return 0
	}
	totalInDB := r.ProductionCount + r.StagedCount
	return float64(totalInDB-r.ExtraCount()) / float64(r.ExportCount) * 100
}

// IsComplete reports whether every export movie is present.
func (r Result) IsComplete() bool { return r.MissingCount() == 0 }

// Verify compares the catalog against the export for the given date.
// Staged movies count as present; they are already ingested, just awaiting
// promotion.
func (v *Verifier) Verify(ctx context.Context, date time.Time) (Result, error) {
	snapshot, err := v.handler.Snapshot(ctx, date)
	if err != nil {
		return Result{}, err
	}

	exportIDs, err := snapshot.IDs()
	if err != nil {
		return Result{}, err
	}
	v.logger.Info("export parsed",
		logging.String("date", date.Format("2006-01-02")),
		logging.Int("movies", len(exportIDs)))

	productionIDs, err := v.store.ProductionIDs(ctx)
	if err != nil {
		return Result{}, err
	}
	stagedIDs, err := v.store.StagedIDs(ctx)
	if err != nil {
		return Result{}, err
	}

	catalogIDs := make(map[int64]struct{}, len(productionIDs)+len(stagedIDs))
	for id := range productionIDs {
		catalogIDs[id] = struct{}{}
	}
	for id := range stagedIDs {
		catalogIDs[id] = struct{}{}
	}

	var missing, extra []int64
	for id := range exportIDs {
		if _, ok := catalogIDs[id]; !ok {
			missing = append(missing, id)
		}
	}
	for id := range catalogIDs {
		if _, ok := exportIDs[id]; !ok {
			extra = append(extra, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })

	result := Result{
		ExportDate:      date,
		ExportCount:     len(exportIDs),
		ProductionCount: len(productionIDs),
		StagedCount:     len(stagedIDs),
		MissingIDs:      missing,
		ExtraIDs:        extra,
	}
	v.logger.Info("verification finished",
		logging.Int("missing", result.MissingCount()),
		logging.Int("extra", result.ExtraCount()),
		logging.Float64("coverage_percent", result.CoveragePercent()))
	return result, nil
}

// MissingMovie pairs a missing ID with its export popularity.
type MissingMovie struct {
	ID         int64
	Title      string
	Popularity float64
}

// MissingByPopularity lists missing movies at or above the popularity floor,
// most popular first. A non-positive limit returns everything.
func (v *Verifier) MissingByPopularity(ctx context.Context, result Result, minPopularity float64, limit int) ([]MissingMovie, error) {
	if len(result.MissingIDs) == 0 {
		return nil, nil
	}

	snapshot, err := v.handler.Snapshot(ctx, result.ExportDate)
	if err != nil {
		return nil, err
	}

	missingSet := make(map[int64]struct{}, len(result.MissingIDs))
	for _, id := range result.MissingIDs {
		missingSet[id] = struct{}{}
	}

	var movies []MissingMovie
	err = snapshot.Stream(func(entry export.Entry) error {
		if entry.Popularity < minPopularity {
			return nil
		}
		if _, ok := missingSet[entry.ID]; !ok {
			return nil
		}
		movies = append(movies, MissingMovie{
			ID:         entry.ID,
			Title:      entry.OriginalTitle,
			Popularity: entry.Popularity,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(movies, func(i, j int) bool { return movies[i].Popularity > movies[j].Popularity })
	if limit > 0 && len(movies) > limit {
		movies = movies[:limit]
	}
	return movies, nil
}

// TierCoverage summarizes one popularity tier.
type TierCoverage struct {
	Tier            string
	Total           int
	InCatalog       int
	Missing         int
	CoveragePercent float64
}

// CoverageByTier breaks catalog coverage down by export popularity tier.
func (v *Verifier) CoverageByTier(ctx context.Context, date time.Time) ([]TierCoverage, error) {
	snapshot, err := v.handler.Snapshot(ctx, date)
	if err != nil {
		return nil, err
	}

	productionIDs, err := v.store.ProductionIDs(ctx)
	if err != nil {
		return nil, err
	}
	stagedIDs, err := v.store.StagedIDs(ctx)
	if err != nil {
		return nil, err
	}

	inCatalog := func(id int64) bool {
		if _, ok := productionIDs[id]; ok {
			return true
		}
		_, ok := stagedIDs[id]
		return ok
	}

	tiers := []struct {
		name  string
		match func(float64) bool
	}{
		{"very_high (>100)", func(p float64) bool { return p > 100 }},
		{"high (10-100)", func(p float64) bool { return p > 10 && p <= 100 }},
		{"medium (1-10)", func(p float64) bool { return p > 1 && p <= 10 }},
		{"low (0.1-1)", func(p float64) bool { return p > 0.1 && p <= 1 }},
		{"very_low (<=0.1)", func(p float64) bool { return p <= 0.1 }},
	}

	coverage := make([]TierCoverage, len(tiers))
	for i, tier := range tiers {
		coverage[i].Tier = tier.name
	}

	err = snapshot.Stream(func(entry export.Entry) error {
		for i, tier := range tiers {
			if !tier.match(entry.Popularity) {
				continue
			}
			coverage[i].Total++
			if inCatalog(entry.ID) {
				coverage[i].InCatalog++
			}
			return nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range coverage {
		coverage[i].Missing = coverage[i].Total - coverage[i].InCatalog
		if coverage[i].Total > 0 {
			coverage[i].CoveragePercent = float64(coverage[i].InCatalog) / float64(coverage[i].Total) * 100
		}
	}
	return coverage, nil
}

// Summary renders a human-readable report.
func (r Result) Summary() string {
	status := fmt.Sprintf("INCOMPLETE (%d missing)", r.MissingCount())
	if r.IsComplete() {
		status = "COMPLETE"
	}
	return fmt.Sprintf(
		"Export date: %s\nExport movies: %d\nProduction: %d\nStaged: %d\nMissing: %d\nExtra in catalog: %d\nCoverage: %.2f%%\nStatus: %s",
		r.ExportDate.Format("2006-01-02"),
		r.ExportCount,
		r.ProductionCount,
		r.StagedCount,
		r.MissingCount(),
		r.ExtraCount(),
		r.CoveragePercent(),
		status,
	)
}
