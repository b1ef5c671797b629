package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"cinedex/internal/catalog"
	"cinedex/internal/config"
	"cinedex/internal/export"
	"cinedex/internal/logging"
	"cinedex/internal/store"
	"cinedex/internal/tmdb"
	"cinedex/internal/verify"
)

// ErrGuardrail blocks a full crawl into a non-empty production set.
var ErrGuardrail = errors.New("production tables are not empty")

// ErrLocked indicates another ingestion run holds the run lock.
var ErrLocked = errors.New("another run is already active")

// Pipeline wires the upstream client, export reader, and store together.
type Pipeline struct {
	cfg      *config.Config
	client   *tmdb.Client
	store    *store.Store
	exports  *export.Handler
	verifier *verify.Verifier
	logger   *slog.Logger
}

// New creates a Pipeline.
func New(cfg *config.Config, client *tmdb.Client, st *store.Store, exports *export.Handler, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		client:   client,
		store:    st,
		exports:  exports,
		verifier: verify.New(st, exports, logger),
		logger:   logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Verifier exposes the pipeline's verifier for report commands.
func (p *Pipeline) Verifier() *verify.Verifier {
	return p.verifier
}

// Store exposes the underlying store for promotion commands.
func (p *Pipeline) Store() *store.Store {
	return p.store
}

// Exports exposes the export handler for cache maintenance.
func (p *Pipeline) Exports() *export.Handler {
	return p.exports
}

// SetSlowMode pins the upstream client at its reduced rate for the whole
// run instead of waiting for the bulk-size heuristic.
func (p *Pipeline) SetSlowMode(enabled bool) {
	p.client.SetSlowMode(enabled)
}

// acquireLock takes the run lock or fails fast when another run holds it.
func (p *Pipeline) acquireLock() (func(), error) {
	lock := flock.New(p.cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}
	return func() { _ = lock.Unlock() }, nil
}

// beginRun assigns a run ID and returns a logger scoped to it.
func (p *Pipeline) beginRun(strategy string) (string, *slog.Logger) {
	runID := uuid.NewString()
	logger := p.logger.With(
		logging.String(logging.FieldRunID, runID),
		logging.String(logging.FieldStrategy, strategy),
	)
	logger.Info("run started")
	return runID, logger
}

// ingestOne fetches a movie and writes it into the chosen table set,
// mapping every outcome onto the run counters.
func (p *Pipeline) ingestOne(ctx context.Context, logger *slog.Logger, id int64, staged bool, stats *catalog.RunStats) {
	stats.Processed++

	record, err := p.client.MovieWithCredits(ctx, id)
	if err != nil {
		if errors.Is(err, tmdb.ErrNotFound) {
			logger.Debug("movie gone upstream", logging.Int64(logging.FieldMovieID, id))
		} else {
			logger.Warn("fetch failed", logging.Int64(logging.FieldMovieID, id), logging.Error(err))
		}
		stats.Errors++
		return
	}
	if record.Adult {
		stats.SkippedAdult++
		return
	}
	if record.ReleaseDate == nil {
		stats.SkippedNoDate++
		return
	}

	var inserted bool
	if staged {
		inserted, err = p.store.InsertStaged(ctx, record)
	} else {
		inserted, err = p.store.InsertProduction(ctx, record)
	}
	if err != nil {
		logger.Warn("insert failed", logging.Int64(logging.FieldMovieID, id), logging.Error(err))
		stats.Errors++
		return
	}
	if !inserted {
		stats.SkippedExisting++
		return
	}
	stats.Inserted++
}

// catalogIDs returns production IDs, merged with staged IDs when the run
// writes to the staged tables.
func (p *Pipeline) catalogIDs(ctx context.Context, includeStaged bool) (map[int64]struct{}, error) {
	ids, err := p.store.ProductionIDs(ctx)
	if err != nil {
		return nil, err
	}
	if !includeStaged {
		return ids, nil
	}
	staged, err := p.store.StagedIDs(ctx)
	if err != nil {
		return nil, err
	}
	for id := range staged {
		ids[id] = struct{}{}
	}
	return ids, nil
}

// Search looks a query up upstream and flags hits already in the catalog.
// Numeric queries are treated as direct movie IDs.
func (p *Pipeline) Search(ctx context.Context, query string) ([]catalog.SearchResult, error) {
	trimmed := strings.TrimSpace(query)

	if id, err := strconv.ParseInt(trimmed, 10, 64); err == nil && id > 0 {
		record, err := p.client.MovieWithCredits(ctx, id)
		if err != nil {
			if errors.Is(err, tmdb.ErrNotFound) {
				return nil, nil
			}
			return nil, err
		}
		result := catalog.SearchResult{
			ID:          record.ID,
			Title:       record.Title,
			Overview:    record.Overview,
			Popularity:  record.Popularity,
			VoteAverage: record.VoteAverage,
			PosterPath:  record.PosterPath,
		}
		if record.ReleaseDate != nil {
			result.ReleaseDate = record.ReleaseDate.Format("2006-01-02")
		}
		if result.InProduction, err = p.store.ExistsProduction(ctx, id); err != nil {
			return nil, err
		}
		if result.InStaged, err = p.store.ExistsStaged(ctx, id); err != nil {
			return nil, err
		}
		return []catalog.SearchResult{result}, nil
	}

	results, err := p.client.SearchMovies(ctx, trimmed, 0)
	if err != nil {
		return nil, err
	}
	for i := range results {
		if results[i].InProduction, err = p.store.ExistsProduction(ctx, results[i].ID); err != nil {
			return nil, err
		}
		if results[i].InStaged, err = p.store.ExistsStaged(ctx, results[i].ID); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// AddByID stages a single movie fetched by upstream ID.
func (p *Pipeline) AddByID(ctx context.Context, id int64) (*catalog.Record, error) {
	inProduction, err := p.store.ExistsProduction(ctx, id)
	if err != nil {
		return nil, err
	}
	if inProduction {
		return nil, fmt.Errorf("movie %d already in production", id)
	}
	inStaged, err := p.store.ExistsStaged(ctx, id)
	if err != nil {
		return nil, err
	}
	if inStaged {
		return nil, fmt.Errorf("movie %d already staged", id)
	}

	record, err := p.client.MovieWithCredits(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Adult && !p.cfg.TMDB.IncludeAdult {
		return nil, fmt.Errorf("movie %d is adult content", id)
	}

	if _, err := p.store.InsertStaged(ctx, record); err != nil {
		return nil, err
	}
	p.logger.Info("movie staged",
		logging.Int64(logging.FieldMovieID, id),
		logging.String("title", record.Title))
	return record, nil
}

// ConnectionStatus reports upstream and database reachability.
type ConnectionStatus struct {
	APIConnected bool
	APIError     error
	DBConnected  bool
	DBError      error
}

// TestConnections probes the upstream API and the local database.
func (p *Pipeline) TestConnections(ctx context.Context) ConnectionStatus {
	status := ConnectionStatus{}
	if err := p.client.TestConnection(ctx); err != nil {
		status.APIError = err
	} else {
		status.APIConnected = true
	}
	if _, err := p.store.ProductionCount(ctx); err != nil {
		status.DBError = err
	} else {
		status.DBConnected = true
	}
	return status
}

// Status returns catalog counts and latest dates.
func (p *Pipeline) Status(ctx context.Context) (store.Status, error) {
	return p.store.Status(ctx)
}

func elapsedSince(start time.Time) time.Duration {
	return time.Since(start).Round(time.Millisecond)
}
