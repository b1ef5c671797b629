package pipeline

import (
	"context"
	"fmt"
	"time"

	"cinedex/internal/catalog"
	"cinedex/internal/export"
	"cinedex/internal/logging"
)

// FullCrawlOptions controls a year-by-year crawl into production.
type FullCrawlOptions struct {
	StartYear int
	EndYear   int
	Limit     int
	Force     bool
}

// FullCrawl ingests every release year from newest to oldest, writing
// directly into production. It refuses to run against a non-empty
// production set unless forced, because a second crawl would only churn.
func (p *Pipeline) FullCrawl(ctx context.Context, opts FullCrawlOptions) (catalog.RunStats, error) {
	unlock, err := p.acquireLock()
	if err != nil {
		return catalog.RunStats{}, err
	}
	defer unlock()

	runID, logger := p.beginRun("full-crawl")
	stats := catalog.RunStats{RunID: runID}
	start := time.Now()
	defer func() { stats.Elapsed = elapsedSince(start) }()

	if !opts.Force {
		count, err := p.store.ProductionCount(ctx)
		if err != nil {
			return stats, err
		}
		if count > 0 {
			return stats, fmt.Errorf("%w: %d movies in production, use --force to override", ErrGuardrail, count)
		}
	}
	if stagedCount, err := p.store.StagedCount(ctx); err != nil {
		return stats, err
	} else if stagedCount > 0 {
		logger.Warn("staged movies present, full crawl will not touch them",
			logging.Int("staged", stagedCount))
	}

	startYear := opts.StartYear
	if startYear <= 0 {
		startYear = time.Now().UTC().Year()
	}
	endYear := opts.EndYear
	if endYear <= 0 {
		if endYear, err = p.client.EarliestYear(ctx); err != nil {
			return stats, err
		}
	}
	logger.Info("crawling years", logging.Int("from", startYear), logging.Int("to", endYear))

	existing, err := p.store.ProductionIDs(ctx)
	if err != nil {
		return stats, err
	}

	for year := startYear; year >= endYear; year-- {
		if opts.Limit > 0 && stats.Inserted >= opts.Limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		ids, err := p.client.DiscoverByYear(ctx, year)
		if err != nil {
			return stats, fmt.Errorf("discover year %d: %w", year, err)
		}

		var yearStats catalog.RunStats
		for _, id := range ids {
			if opts.Limit > 0 && stats.Inserted+yearStats.Inserted >= opts.Limit {
				break
			}
			if _, ok := existing[id]; ok {
				yearStats.Processed++
				yearStats.SkippedExisting++
				continue
			}
			before := yearStats.Inserted
			p.ingestOne(ctx, logger, id, false, &yearStats)
			if yearStats.Inserted > before {
				existing[id] = struct{}{}
			}
		}
		stats.Add(yearStats)
		logger.Info("year finished", logging.Int("year", year), logging.Int("inserted", yearStats.Inserted))
	}

	logger.Info("run finished", logging.String("stats", stats.String()))
	return stats, nil
}

// IncrementalOptions controls a tail ingest of newly released movies.
type IncrementalOptions struct {
	Limit int
}

// Incremental stages movies released after the catalog's newest release
// date, taking the later of the staged and production dates so repeated
// runs do not refetch movies still awaiting promotion.
func (p *Pipeline) Incremental(ctx context.Context, opts IncrementalOptions) (catalog.RunStats, error) {
	unlock, err := p.acquireLock()
	if err != nil {
		return catalog.RunStats{}, err
	}
	defer unlock()

	runID, logger := p.beginRun("incremental")
	stats := catalog.RunStats{RunID: runID}
	startTime := time.Now()
	defer func() { stats.Elapsed = elapsedSince(startTime) }()

	stagedDate, err := p.store.LatestStagedDate(ctx)
	if err != nil {
		return stats, err
	}
	productionDate, err := p.store.LatestProductionDate(ctx)
	if err != nil {
		return stats, err
	}
	latest := laterDate(stagedDate, productionDate)
	if latest == nil {
		logger.Warn("catalog is empty, run a full crawl first")
		return stats, nil
	}

	from := latest.AddDate(0, 0, 1)
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if from.After(today) {
		logger.Info("catalog is up to date")
		return stats, nil
	}
	logger.Info("fetching new releases", logging.String("since", from.Format("2006-01-02")))

	ids, err := p.client.DiscoverDateRange(ctx, from, today)
	if err != nil {
		return stats, err
	}

	existing, err := p.catalogIDs(ctx, true)
	if err != nil {
		return stats, err
	}

	for _, id := range ids {
		if opts.Limit > 0 && stats.Inserted >= opts.Limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if _, ok := existing[id]; ok {
			stats.Processed++
			stats.SkippedExisting++
			continue
		}
		p.ingestOne(ctx, logger, id, true, &stats)
	}

	logger.Info("run finished", logging.String("stats", stats.String()))
	return stats, nil
}

// RefreshOptions controls a changed-movie refresh.
type RefreshOptions struct {
	DaysBack int
	Limit    int
}

// RefreshChanged re-fetches production movies the upstream reports as
// changed and replaces their closures in place.
func (p *Pipeline) RefreshChanged(ctx context.Context, opts RefreshOptions) (catalog.RunStats, error) {
	unlock, err := p.acquireLock()
	if err != nil {
		return catalog.RunStats{}, err
	}
	defer unlock()

	runID, logger := p.beginRun("refresh-changed")
	stats := catalog.RunStats{RunID: runID}
	startTime := time.Now()
	defer func() { stats.Elapsed = elapsedSince(startTime) }()

	daysBack := opts.DaysBack
	if daysBack <= 0 || daysBack > 14 {
		daysBack = 14
	}
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -daysBack)

	ours, err := p.store.ProductionIDs(ctx)
	if err != nil {
		return stats, err
	}
	if len(ours) == 0 {
		logger.Info("no production movies to refresh")
		return stats, nil
	}

	changed, err := p.client.Changes(ctx, start, end)
	if err != nil {
		return stats, err
	}
	logger.Info("changes fetched", logging.Int("changed", len(changed)))

	var toUpdate []int64
	for _, id := range changed {
		if _, ok := ours[id]; ok {
			toUpdate = append(toUpdate, id)
		}
	}
	if opts.Limit > 0 && len(toUpdate) > opts.Limit {
		toUpdate = toUpdate[:opts.Limit]
	}
	logger.Info("refreshing movies", logging.Int("count", len(toUpdate)))

	for _, id := range toUpdate {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Processed++

		record, err := p.client.MovieWithCredits(ctx, id)
		if err != nil {
			logger.Warn("refresh fetch failed", logging.Int64(logging.FieldMovieID, id), logging.Error(err))
			stats.Errors++
			continue
		}
		if err := p.store.ReplaceProduction(ctx, record); err != nil {
			logger.Warn("refresh replace failed", logging.Int64(logging.FieldMovieID, id), logging.Error(err))
			stats.Errors++
			continue
		}
		stats.Updated++
	}

	logger.Info("run finished", logging.String("stats", stats.String()))
	return stats, nil
}

func laterDate(a, b *time.Time) *time.Time {
	if a == nil {
		return b
	}
	if b == nil || a.After(*b) {
		return a
	}
	return b
}

// BulkOptions controls an export-driven ingest.
type BulkOptions struct {
	Date          time.Time
	MinPopularity float64
	Limit         int
	// ToProduction bypasses staging. Useful for initial population from an
	// export instead of a full crawl.
	ToProduction bool
}

// BulkFromExport stages every export movie absent from the catalog,
// most popular first. This bypasses discover pagination limits entirely.
func (p *Pipeline) BulkFromExport(ctx context.Context, opts BulkOptions) (catalog.RunStats, error) {
	unlock, err := p.acquireLock()
	if err != nil {
		return catalog.RunStats{}, err
	}
	defer unlock()

	runID, logger := p.beginRun("bulk-export")
	stats := catalog.RunStats{RunID: runID}
	startTime := time.Now()
	defer func() { stats.Elapsed = elapsedSince(startTime) }()

	date := opts.Date
	if date.IsZero() {
		date = export.DefaultDate()
	}
	logger.Info("bulk ingest from export",
		logging.String("date", date.Format("2006-01-02")),
		logging.Float64("min_popularity", opts.MinPopularity))

	snapshot, err := p.exports.Snapshot(ctx, date)
	if err != nil {
		return stats, err
	}
	entries, err := snapshot.ByPopularity(opts.MinPopularity)
	if err != nil {
		return stats, err
	}

	existing, err := p.catalogIDs(ctx, true)
	if err != nil {
		return stats, err
	}

	var todo []int64
	for _, entry := range entries {
		if _, ok := existing[entry.ID]; ok {
			continue
		}
		todo = append(todo, entry.ID)
	}
	if opts.Limit > 0 && len(todo) > opts.Limit {
		todo = todo[:opts.Limit]
	}
	logger.Info("new movies to ingest", logging.Int("count", len(todo)))

	if len(todo) > 10000 {
		p.client.SetSlowMode(true)
		defer p.client.SetSlowMode(false)
	}

	for _, id := range todo {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		p.ingestOne(ctx, logger, id, !opts.ToProduction, &stats)
	}

	logger.Info("run finished", logging.String("stats", stats.String()))
	return stats, nil
}

// BackfillOptions controls a verification-driven backfill.
type BackfillOptions struct {
	Date          time.Time
	MinPopularity float64
	Limit         int
	ToProduction  bool
}

// Backfill verifies the catalog against an export and stages whatever is
// missing, most popular first.
func (p *Pipeline) Backfill(ctx context.Context, opts BackfillOptions) (catalog.RunStats, error) {
	unlock, err := p.acquireLock()
	if err != nil {
		return catalog.RunStats{}, err
	}
	defer unlock()

	runID, logger := p.beginRun("backfill")
	stats := catalog.RunStats{RunID: runID}
	startTime := time.Now()
	defer func() { stats.Elapsed = elapsedSince(startTime) }()

	date := opts.Date
	if date.IsZero() {
		date = export.DefaultDate()
	}

	result, err := p.verifier.Verify(ctx, date)
	if err != nil {
		return stats, err
	}
	if result.IsComplete() {
		logger.Info("catalog is complete, nothing to backfill")
		return stats, nil
	}

	missing, err := p.verifier.MissingByPopularity(ctx, result, opts.MinPopularity, opts.Limit)
	if err != nil {
		return stats, err
	}
	logger.Info("backfilling missing movies", logging.Int("count", len(missing)))

	for _, movie := range missing {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		p.ingestOne(ctx, logger, movie.ID, !opts.ToProduction, &stats)
	}

	logger.Info("run finished", logging.String("stats", stats.String()))
	return stats, nil
}

// ReingestOptions controls a monthly-window year re-ingest.
type ReingestOptions struct {
	Limit        int
	ToProduction bool
}

// ReingestYear stages everything the upstream knows for one year using
// monthly windows, catching high-volume years that overflow discover
// pagination. Movies already in the catalog are skipped.
func (p *Pipeline) ReingestYear(ctx context.Context, year int, opts ReingestOptions) (catalog.RunStats, error) {
	unlock, err := p.acquireLock()
	if err != nil {
		return catalog.RunStats{}, err
	}
	defer unlock()

	runID, logger := p.beginRun("reingest-year")
	stats := catalog.RunStats{RunID: runID}
	startTime := time.Now()
	defer func() { stats.Elapsed = elapsedSince(startTime) }()

	logger.Info("reingesting year", logging.Int("year", year))

	ids, err := p.client.IDsForYearMonthly(ctx, year)
	if err != nil {
		return stats, err
	}

	existing, err := p.catalogIDs(ctx, true)
	if err != nil {
		return stats, err
	}

	var todo []int64
	for _, id := range ids {
		if _, ok := existing[id]; ok {
			continue
		}
		todo = append(todo, id)
	}
	if opts.Limit > 0 && len(todo) > opts.Limit {
		todo = todo[:opts.Limit]
	}
	logger.Info("new movies for year", logging.Int("year", year), logging.Int("count", len(todo)))

	for _, id := range todo {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		p.ingestOne(ctx, logger, id, !opts.ToProduction, &stats)
	}

	logger.Info("run finished", logging.String("stats", stats.String()))
	return stats, nil
}
