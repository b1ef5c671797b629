package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"cinedex/internal/catalog"
)

// InsertProduction writes a movie's closure into the production tables.
// It returns false without writing when the movie already exists.
func (s *Store) InsertProduction(ctx context.Context, record *catalog.Record) (bool, error) {
	return s.insert(ctx, false, record)
}

// InsertStaged writes a movie's closure into the staged tables.
// It returns false without writing when the movie is already staged.
func (s *Store) InsertStaged(ctx context.Context, record *catalog.Record) (bool, error) {
	return s.insert(ctx, true, record)
}

func (s *Store) insert(ctx context.Context, staged bool, record *catalog.Record) (bool, error) {
	t := tableSet(staged)

	exists, err := s.existsIn(ctx, t, record.ID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin insert tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertClosure(ctx, tx, t, record); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit insert: %w", err)
	}
	return true, nil
}

// ReplaceProduction overwrites a movie's production closure with fresh data.
// People rows are merged, never deleted.
func (s *Store) ReplaceProduction(ctx context.Context, record *catalog.Record) error {
	t := productionTables

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := deleteClosure(ctx, tx, t, record.ID); err != nil {
		return err
	}
	if err := insertClosure(ctx, tx, t, record); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

func insertClosure(ctx context.Context, tx *sql.Tx, t tables, record *catalog.Record) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := tx.ExecContext(ctx,
		`INSERT INTO `+t.movies+` (
            id, title, original_title, overview, tagline, status,
            release_date, runtime, vote_average, vote_count, popularity,
            poster_path, backdrop_path, budget, revenue, imdb_id,
            original_language, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Title,
		nullableString(record.OriginalTitle),
		nullableString(record.Overview),
		nullableString(record.Tagline),
		nullableString(record.Status),
		releaseDateValue(record.ReleaseDate),
		record.Runtime,
		record.VoteAverage,
		record.VoteCount,
		record.Popularity,
		nullableString(record.PosterPath),
		nullableString(record.BackdropPath),
		record.Budget,
		record.Revenue,
		nullableString(record.IMDbID),
		nullableString(record.OriginalLanguage),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("insert movie %d: %w", record.ID, err)
	}

	for _, person := range record.People() {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO `+t.people+` (id, name, profile_path, gender, known_for_department, created_at)
             VALUES (?, ?, ?, ?, ?, ?)`,
			person.ID,
			person.Name,
			nullableString(person.ProfilePath),
			person.Gender,
			nullableString(person.KnownFor),
			now,
		)
		if err != nil {
			return fmt.Errorf("insert person %d: %w", person.ID, err)
		}
	}

	for _, credit := range record.Credits {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO `+t.credits+` (movie_id, person_id, credit_type, character_name, credit_order, department, job, created_at)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			record.ID,
			credit.PersonID,
			string(credit.Type),
			nullableString(credit.Character),
			credit.Order,
			nullableString(credit.Department),
			nullableString(credit.Job),
			now,
		)
		if err != nil {
			return fmt.Errorf("insert credit for movie %d: %w", record.ID, err)
		}
	}

	for _, genre := range record.Genres {
		if strings.TrimSpace(genre) == "" {
			continue
		}
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO `+t.genres+` (movie_id, genre_name, created_at) VALUES (?, ?, ?)`,
			record.ID,
			genre,
			now,
		)
		if err != nil {
			return fmt.Errorf("insert genre for movie %d: %w", record.ID, err)
		}
	}
	return nil
}

// deleteClosure removes a movie's row, credits, and genres. People stay.
func deleteClosure(ctx context.Context, tx *sql.Tx, t tables, movieID int64) error {
	for _, stmt := range []string{
		`DELETE FROM ` + t.credits + ` WHERE movie_id = ?`,
		`DELETE FROM ` + t.genres + ` WHERE movie_id = ?`,
		`DELETE FROM ` + t.movies + ` WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, movieID); err != nil {
			return fmt.Errorf("delete closure for movie %d: %w", movieID, err)
		}
	}
	return nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func releaseDateValue(date *time.Time) any {
	if date == nil {
		return nil
	}
	return date.Format("2006-01-02")
}
