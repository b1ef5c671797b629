package store

import (
	"context"
	"fmt"
)

// Promote moves a movie's closure from staged to production in a single
// transaction. It fails when the movie is not staged or already exists in
// production; either way the database is left untouched.
func (s *Store) Promote(ctx context.Context, id int64) error {
	record, err := s.GetStaged(ctx, id)
	if err != nil {
		return err
	}

	inProduction, err := s.ExistsProduction(ctx, id)
	if err != nil {
		return err
	}
	if inProduction {
		return fmt.Errorf("movie %d already in production", id)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin promote tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertClosure(ctx, tx, productionTables, record); err != nil {
		return err
	}
	if err := deleteClosure(ctx, tx, stagedTables, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit promote: %w", err)
	}
	return nil
}

// Reject removes a movie's closure from the staged tables. Shared people
// rows stay in place.
func (s *Store) Reject(ctx context.Context, id int64) error {
	staged, err := s.ExistsStaged(ctx, id)
	if err != nil {
		return err
	}
	if !staged {
		return fmt.Errorf("movie %d: %w", id, ErrNotFound)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reject tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := deleteClosure(ctx, tx, stagedTables, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reject: %w", err)
	}
	return nil
}

// BatchResult summarizes a bulk promote or reject.
type BatchResult struct {
	Succeeded int
	Failed    int
	Remaining int
	Errors    []error
}

// PromoteMany promotes each ID independently so one failure cannot block
// the rest of the batch.
func (s *Store) PromoteMany(ctx context.Context, ids []int64) (BatchResult, error) {
	return s.batch(ctx, ids, s.Promote)
}

// RejectMany rejects each ID independently.
func (s *Store) RejectMany(ctx context.Context, ids []int64) (BatchResult, error) {
	return s.batch(ctx, ids, s.Reject)
}

func (s *Store) batch(ctx context.Context, ids []int64, op func(context.Context, int64) error) (BatchResult, error) {
	var result BatchResult
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := op(ctx, id); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Errorf("movie %d: %w", id, err))
			continue
		}
		result.Succeeded++
	}

	remaining, err := s.StagedCount(ctx)
	if err != nil {
		return result, err
	}
	result.Remaining = remaining
	return result, nil
}
