package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cinedex/internal/catalog"
	"cinedex/internal/store"
	"cinedex/internal/testsupport"
)

func TestInsertStagedSkipsDuplicates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	record := testsupport.NewRecord(t, 1)
	inserted, err := st.InsertStaged(ctx, record)
	if err != nil {
		t.Fatalf("InsertStaged: %v", err)
	}
	if !inserted {
		t.Fatal("expected first insert to succeed")
	}

	inserted, err = st.InsertStaged(ctx, record)
	if err != nil {
		t.Fatalf("InsertStaged (duplicate): %v", err)
	}
	if inserted {
		t.Fatal("expected duplicate insert to be skipped")
	}

	count, err := st.StagedCount(ctx)
	if err != nil {
		t.Fatalf("StagedCount: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 staged movie, got %d", count)
	}
}

func TestStagedAndProductionAreIndependent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := st.InsertStaged(ctx, testsupport.NewRecord(t, 1)); err != nil {
		t.Fatalf("InsertStaged: %v", err)
	}
	if _, err := st.InsertProduction(ctx, testsupport.NewRecord(t, 2)); err != nil {
		t.Fatalf("InsertProduction: %v", err)
	}

	inProd, err := st.ExistsProduction(ctx, 1)
	if err != nil {
		t.Fatalf("ExistsProduction: %v", err)
	}
	if inProd {
		t.Fatal("staged movie must not appear in production")
	}

	staged, err := st.ExistsStaged(ctx, 2)
	if err != nil {
		t.Fatalf("ExistsStaged: %v", err)
	}
	if staged {
		t.Fatal("production movie must not appear in staged")
	}
}

func TestPromoteMovesFullClosure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	record := testsupport.NewRecord(t, 7)
	if _, err := st.InsertStaged(ctx, record); err != nil {
		t.Fatalf("InsertStaged: %v", err)
	}

	if err := st.Promote(ctx, 7); err != nil {
		t.Fatalf("Promote: %v", err)
	}

	staged, err := st.ExistsStaged(ctx, 7)
	if err != nil {
		t.Fatalf("ExistsStaged: %v", err)
	}
	if staged {
		t.Fatal("expected movie removed from staged after promote")
	}

	promoted, err := st.GetProduction(ctx, 7)
	if err != nil {
		t.Fatalf("GetProduction: %v", err)
	}
	if promoted.Title != record.Title {
		t.Fatalf("unexpected title after promote: %q", promoted.Title)
	}
	if len(promoted.Credits) != len(record.Credits) {
		t.Fatalf("expected %d credits, got %d", len(record.Credits), len(promoted.Credits))
	}
	if len(promoted.Genres) != 1 || promoted.Genres[0] != "Drama" {
		t.Fatalf("unexpected genres: %v", promoted.Genres)
	}
	if director := promoted.Director(); director == nil || director.PersonName != "The Director" {
		t.Fatalf("expected director in promoted closure, got %v", director)
	}
}

func TestPromoteRequiresStagedMovie(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	err := st.Promote(context.Background(), 404)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPromoteRejectsExistingProductionMovie(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	record := testsupport.NewRecord(t, 9)
	if _, err := st.InsertProduction(ctx, record); err != nil {
		t.Fatalf("InsertProduction: %v", err)
	}
	if _, err := st.InsertStaged(ctx, record); err != nil {
		t.Fatalf("InsertStaged: %v", err)
	}

	if err := st.Promote(ctx, 9); err == nil {
		t.Fatal("expected promote to fail for movie already in production")
	}

	staged, err := st.ExistsStaged(ctx, 9)
	if err != nil {
		t.Fatalf("ExistsStaged: %v", err)
	}
	if !staged {
		t.Fatal("expected staged copy untouched after failed promote")
	}
}

func TestRejectRemovesClosureButKeepsPeople(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	// Two staged movies sharing one person.
	first := testsupport.NewRecord(t, 1)
	second := testsupport.NewRecord(t, 2)
	second.Credits[0].PersonID = first.Credits[0].PersonID
	second.Credits[0].PersonName = first.Credits[0].PersonName

	if _, err := st.InsertStaged(ctx, first); err != nil {
		t.Fatalf("InsertStaged: %v", err)
	}
	if _, err := st.InsertStaged(ctx, second); err != nil {
		t.Fatalf("InsertStaged: %v", err)
	}

	if err := st.Reject(ctx, 1); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	if staged, _ := st.ExistsStaged(ctx, 1); staged {
		t.Fatal("expected rejected movie removed from staged")
	}

	remaining, err := st.GetStaged(ctx, 2)
	if err != nil {
		t.Fatalf("GetStaged: %v", err)
	}
	if remaining.Credits[0].PersonName != first.Credits[0].PersonName {
		t.Fatal("expected shared person row to survive reject")
	}
}

func TestRejectMissingMovie(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	err := st.Reject(context.Background(), 404)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPromoteManyContinuesPastFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3} {
		if _, err := st.InsertStaged(ctx, testsupport.NewRecord(t, id)); err != nil {
			t.Fatalf("InsertStaged %d: %v", id, err)
		}
	}

	result, err := st.PromoteMany(ctx, []int64{1, 99, 2})
	if err != nil {
		t.Fatalf("PromoteMany: %v", err)
	}
	if result.Succeeded != 2 || result.Failed != 1 {
		t.Fatalf("unexpected batch result: %+v", result)
	}
	if result.Remaining != 1 {
		t.Fatalf("expected 1 staged movie remaining, got %d", result.Remaining)
	}
}

func TestReplaceProductionRefreshesClosure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	record := testsupport.NewRecord(t, 5)
	if _, err := st.InsertProduction(ctx, record); err != nil {
		t.Fatalf("InsertProduction: %v", err)
	}

	updated := testsupport.NewRecord(t, 5)
	updated.Title = "Updated Title"
	updated.Genres = []string{"Thriller"}
	updated.Credits = updated.Credits[:1]
	if err := st.ReplaceProduction(ctx, updated); err != nil {
		t.Fatalf("ReplaceProduction: %v", err)
	}

	loaded, err := st.GetProduction(ctx, 5)
	if err != nil {
		t.Fatalf("GetProduction: %v", err)
	}
	if loaded.Title != "Updated Title" {
		t.Fatalf("unexpected title: %q", loaded.Title)
	}
	if len(loaded.Genres) != 1 || loaded.Genres[0] != "Thriller" {
		t.Fatalf("unexpected genres: %v", loaded.Genres)
	}
	if len(loaded.Credits) != 1 {
		t.Fatalf("expected stale credits removed, got %d", len(loaded.Credits))
	}
}

func TestLatestDatesAndStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	empty, err := st.LatestProductionDate(ctx)
	if err != nil {
		t.Fatalf("LatestProductionDate: %v", err)
	}
	if empty != nil {
		t.Fatalf("expected nil date for empty production, got %v", empty)
	}

	older := testsupport.NewRecord(t, 1)
	newer := testsupport.NewRecord(t, 2)
	newDate := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	newer.ReleaseDate = &newDate
	if _, err := st.InsertProduction(ctx, older); err != nil {
		t.Fatalf("InsertProduction: %v", err)
	}
	if _, err := st.InsertProduction(ctx, newer); err != nil {
		t.Fatalf("InsertProduction: %v", err)
	}
	if _, err := st.InsertStaged(ctx, testsupport.NewRecord(t, 3)); err != nil {
		t.Fatalf("InsertStaged: %v", err)
	}

	latest, err := st.LatestProductionDate(ctx)
	if err != nil {
		t.Fatalf("LatestProductionDate: %v", err)
	}
	if latest == nil || !latest.Equal(newDate) {
		t.Fatalf("unexpected latest date: %v", latest)
	}

	status, err := st.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.ProductionCount != 2 || status.StagedCount != 1 {
		t.Fatalf("unexpected status counts: %+v", status)
	}
	if status.LatestStagedDate == nil {
		t.Fatal("expected staged latest date")
	}
}

func TestStagedOrdered(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	dates := map[int64]time.Time{
		1: time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC),
		2: time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC),
		3: time.Date(2002, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for id, date := range dates {
		record := testsupport.NewRecord(t, id)
		d := date
		record.ReleaseDate = &d
		if _, err := st.InsertStaged(ctx, record); err != nil {
			t.Fatalf("InsertStaged %d: %v", id, err)
		}
	}

	oldest, err := st.StagedOrdered(ctx, true, 2)
	if err != nil {
		t.Fatalf("StagedOrdered: %v", err)
	}
	if len(oldest) != 2 || oldest[0].ID != 1 || oldest[1].ID != 3 {
		t.Fatalf("unexpected oldest-first order: %v", oldest)
	}
	if !oldest[0].InStaged {
		t.Fatal("expected staged flag set")
	}

	newest, err := st.StagedOrdered(ctx, false, 0)
	if err != nil {
		t.Fatalf("StagedOrdered: %v", err)
	}
	if len(newest) != 3 || newest[0].ID != 2 {
		t.Fatalf("unexpected newest-first order: %v", newest)
	}
}

func TestGetStagedLoadsCastInOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := st.InsertStaged(ctx, testsupport.NewRecord(t, 4)); err != nil {
		t.Fatalf("InsertStaged: %v", err)
	}

	record, err := st.GetStaged(ctx, 4)
	if err != nil {
		t.Fatalf("GetStaged: %v", err)
	}
	cast := record.Cast()
	if len(cast) != 2 {
		t.Fatalf("expected 2 cast credits, got %d", len(cast))
	}
	if cast[0].Order != 0 || cast[1].Order != 1 {
		t.Fatalf("unexpected cast order: %v", cast)
	}
	if cast[0].Type != catalog.CreditCast {
		t.Fatalf("unexpected credit type: %v", cast[0].Type)
	}
}
