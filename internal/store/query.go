package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cinedex/internal/catalog"
)

// ExistsProduction reports whether the movie is in the production tables.
func (s *Store) ExistsProduction(ctx context.Context, id int64) (bool, error) {
	return s.existsIn(ctx, productionTables, id)
}

// ExistsStaged reports whether the movie is in the staged tables.
func (s *Store) ExistsStaged(ctx context.Context, id int64) (bool, error) {
	return s.existsIn(ctx, stagedTables, id)
}

func (s *Store) existsIn(ctx context.Context, t tables, id int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM `+t.movies+` WHERE id = ? LIMIT 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check movie %d: %w", id, err)
	}
	return true, nil
}

// ProductionIDs returns the set of movie IDs in production.
func (s *Store) ProductionIDs(ctx context.Context) (map[int64]struct{}, error) {
	return s.idsIn(ctx, productionTables)
}

// StagedIDs returns the set of staged movie IDs.
func (s *Store) StagedIDs(ctx context.Context) (map[int64]struct{}, error) {
	return s.idsIn(ctx, stagedTables)
}

func (s *Store) idsIn(ctx context.Context, t tables) (map[int64]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM `+t.movies)
	if err != nil {
		return nil, fmt.Errorf("list movie ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan movie id: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movie ids: %w", err)
	}
	return ids, nil
}

// ProductionCount returns the number of production movies.
func (s *Store) ProductionCount(ctx context.Context) (int, error) {
	return s.countIn(ctx, productionTables)
}

// StagedCount returns the number of staged movies.
func (s *Store) StagedCount(ctx context.Context) (int, error) {
	return s.countIn(ctx, stagedTables)
}

func (s *Store) countIn(ctx context.Context, t tables) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+t.movies).Scan(&count); err != nil {
		return 0, fmt.Errorf("count movies: %w", err)
	}
	return count, nil
}

// LatestProductionDate returns the newest release date in production, or nil
// when production holds no dated movies.
func (s *Store) LatestProductionDate(ctx context.Context) (*time.Time, error) {
	return s.latestDateIn(ctx, productionTables)
}

// LatestStagedDate returns the newest release date among staged movies.
func (s *Store) LatestStagedDate(ctx context.Context) (*time.Time, error) {
	return s.latestDateIn(ctx, stagedTables)
}

func (s *Store) latestDateIn(ctx context.Context, t tables) (*time.Time, error) {
	var value sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(release_date) FROM `+t.movies+` WHERE release_date IS NOT NULL`,
	).Scan(&value)
	if err != nil {
		return nil, fmt.Errorf("latest release date: %w", err)
	}
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", value.String)
	if err != nil {
		return nil, fmt.Errorf("parse release date %q: %w", value.String, err)
	}
	return &parsed, nil
}

// GetStaged loads a staged movie's full closure.
func (s *Store) GetStaged(ctx context.Context, id int64) (*catalog.Record, error) {
	return s.getIn(ctx, stagedTables, id)
}

// GetProduction loads a production movie's full closure.
func (s *Store) GetProduction(ctx context.Context, id int64) (*catalog.Record, error) {
	return s.getIn(ctx, productionTables, id)
}

func (s *Store) getIn(ctx context.Context, t tables, id int64) (*catalog.Record, error) {
	record := &catalog.Record{}
	var originalTitle, overview, tagline, status, releaseDate, posterPath, backdropPath, imdbID, originalLanguage sql.NullString
	var runtime, voteCount, budget, revenue sql.NullInt64
	var voteAverage, popularity sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, original_title, overview, tagline, status,
                release_date, runtime, vote_average, vote_count, popularity,
                poster_path, backdrop_path, budget, revenue, imdb_id, original_language
         FROM `+t.movies+` WHERE id = ?`, id,
	).Scan(
		&record.ID, &record.Title, &originalTitle, &overview, &tagline, &status,
		&releaseDate, &runtime, &voteAverage, &voteCount, &popularity,
		&posterPath, &backdropPath, &budget, &revenue, &imdbID, &originalLanguage,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("movie %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load movie %d: %w", id, err)
	}

	record.OriginalTitle = originalTitle.String
	record.Overview = overview.String
	record.Tagline = tagline.String
	record.Status = status.String
	record.Runtime = int(runtime.Int64)
	record.VoteAverage = voteAverage.Float64
	record.VoteCount = voteCount.Int64
	record.Popularity = popularity.Float64
	record.PosterPath = posterPath.String
	record.BackdropPath = backdropPath.String
	record.Budget = budget.Int64
	record.Revenue = revenue.Int64
	record.IMDbID = imdbID.String
	record.OriginalLanguage = originalLanguage.String
	if releaseDate.Valid && releaseDate.String != "" {
		if parsed, err := time.Parse("2006-01-02", releaseDate.String); err == nil {
			record.ReleaseDate = &parsed
		}
	}

	if record.Genres, err = s.genresIn(ctx, t, id); err != nil {
		return nil, err
	}
	if record.Credits, err = s.creditsIn(ctx, t, id); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Store) genresIn(ctx context.Context, t tables, movieID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT genre_name FROM `+t.genres+` WHERE movie_id = ? ORDER BY genre_name`, movieID)
	if err != nil {
		return nil, fmt.Errorf("load genres for movie %d: %w", movieID, err)
	}
	defer rows.Close()

	var genres []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, name)
	}
	return genres, rows.Err()
}

func (s *Store) creditsIn(ctx context.Context, t tables, movieID int64) ([]catalog.Credit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.person_id, p.name, c.credit_type, c.character_name,
                c.credit_order, c.department, c.job, p.profile_path, p.gender, p.known_for_department
         FROM `+t.credits+` c
         LEFT JOIN `+t.people+` p ON c.person_id = p.id
         WHERE c.movie_id = ?
         ORDER BY c.credit_order`, movieID)
	if err != nil {
		return nil, fmt.Errorf("load credits for movie %d: %w", movieID, err)
	}
	defer rows.Close()

	var credits []catalog.Credit
	for rows.Next() {
		var credit catalog.Credit
		var creditType string
		var name, character, department, job, profilePath, knownFor sql.NullString
		var order, gender sql.NullInt64
		err := rows.Scan(&credit.PersonID, &name, &creditType, &character,
			&order, &department, &job, &profilePath, &gender, &knownFor)
		if err != nil {
			return nil, fmt.Errorf("scan credit: %w", err)
		}
		credit.PersonName = name.String
		credit.Type = catalog.CreditType(creditType)
		credit.Character = character.String
		credit.Order = int(order.Int64)
		credit.Department = department.String
		credit.Job = job.String
		credit.ProfilePath = profilePath.String
		credit.Gender = int(gender.Int64)
		credit.KnownFor = knownFor.String
		credits = append(credits, credit)
	}
	return credits, rows.Err()
}

// StagedOrdered lists staged movies by release date. A non-positive limit
// returns everything.
func (s *Store) StagedOrdered(ctx context.Context, oldestFirst bool, limit int) ([]catalog.SearchResult, error) {
	order := "DESC"
	if oldestFirst {
		order = "ASC"
	}
	query := `SELECT id, title, release_date, popularity, vote_average
              FROM movies_staged ORDER BY release_date ` + order
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list staged movies: %w", err)
	}
	defer rows.Close()

	var results []catalog.SearchResult
	for rows.Next() {
		var (
			result      catalog.SearchResult
			releaseDate sql.NullString
			popularity  sql.NullFloat64
			voteAverage sql.NullFloat64
		)
		if err := rows.Scan(&result.ID, &result.Title, &releaseDate, &popularity, &voteAverage); err != nil {
			return nil, fmt.Errorf("scan staged movie: %w", err)
		}
		result.ReleaseDate = releaseDate.String
		result.Popularity = popularity.Float64
		result.VoteAverage = voteAverage.Float64
		result.InStaged = true
		results = append(results, result)
	}
	return results, rows.Err()
}

// Status summarizes both table sets.
type Status struct {
	ProductionCount      int
	StagedCount          int
	LatestProductionDate *time.Time
	LatestStagedDate     *time.Time
	DatabasePath         string
}

// Status reports catalog counts and the newest release date per set.
func (s *Store) Status(ctx context.Context) (Status, error) {
	status := Status{DatabasePath: s.path}

	var err error
	if status.ProductionCount, err = s.ProductionCount(ctx); err != nil {
		return Status{}, err
	}
	if status.StagedCount, err = s.StagedCount(ctx); err != nil {
		return Status{}, err
	}
	if status.LatestProductionDate, err = s.LatestProductionDate(ctx); err != nil {
		return Status{}, err
	}
	if status.LatestStagedDate, err = s.LatestStagedDate(ctx); err != nil {
		return Status{}, err
	}
	return status, nil
}
