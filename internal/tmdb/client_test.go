package tmdb_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"cinedex/internal/catalog"
	"cinedex/internal/tmdb"
)

func newTestClient(t *testing.T, handler http.Handler) *tmdb.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := tmdb.New(tmdb.Config{
		AccessToken: "test-token",
		BaseURL:     server.URL,
		RateLimit:   100,
		MaxCast:     2,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestMovieWithCreditsTruncatesCastKeepsDirector(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/603" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected auth header: %q", got)
		}
		if got := r.URL.Query().Get("append_to_response"); got != "credits" {
			t.Errorf("expected credits append, got %q", got)
		}
		fmt.Fprint(w, `{
			"id": 603,
			"title": "The Matrix",
			"original_title": "The Matrix",
			"release_date": "1999-03-31",
			"popularity": 85.1,
			"genres": [{"id": 28, "name": "Action"}],
			"credits": {
				"cast": [
					{"id": 1, "name": "Keanu Reeves", "character": "Neo", "order": 0},
					{"id": 2, "name": "Laurence Fishburne", "character": "Morpheus", "order": 1},
					{"id": 3, "name": "Carrie-Anne Moss", "character": "Trinity", "order": 2}
				],
				"crew": [
					{"id": 9, "name": "Lana Wachowski", "department": "Directing", "job": "Director"},
					{"id": 10, "name": "Joel Silver", "department": "Production", "job": "Producer"}
				]
			}
		}`)
	}))

	record, err := client.MovieWithCredits(context.Background(), 603)
	if err != nil {
		t.Fatalf("MovieWithCredits returned error: %v", err)
	}
	if record.Title != "The Matrix" {
		t.Fatalf("unexpected title: %q", record.Title)
	}
	if record.ReleaseDate == nil || record.ReleaseDate.Year() != 1999 {
		t.Fatalf("unexpected release date: %v", record.ReleaseDate)
	}
	if len(record.Genres) != 1 || record.Genres[0] != "Action" {
		t.Fatalf("unexpected genres: %v", record.Genres)
	}

	cast := record.Cast()
	if len(cast) != 2 {
		t.Fatalf("expected cast truncated to 2, got %d", len(cast))
	}
	if cast[0].PersonName != "Keanu Reeves" || cast[1].PersonName != "Laurence Fishburne" {
		t.Fatalf("unexpected cast order: %v", cast)
	}

	director := record.Director()
	if director == nil || director.PersonName != "Lana Wachowski" {
		t.Fatalf("expected director kept after truncation, got %v", director)
	}
	for _, credit := range record.Credits {
		if credit.Type == catalog.CreditCrew && credit.Job == "Producer" {
			t.Fatal("expected non-director crew dropped")
		}
	}
}

func TestMovieWithCreditsNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status_message":"not found"}`, http.StatusNotFound)
	}))

	_, err := client.MovieWithCredits(context.Background(), 999999999)
	if !errors.Is(err, tmdb.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "upstream hiccup", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"id": 42, "title": "Answer"}`)
	}))

	record, err := client.MovieWithCredits(context.Background(), 42)
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if record.ID != 42 {
		t.Fatalf("unexpected record: %+v", record)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))

	if err := client.TestConnection(context.Background()); err == nil {
		t.Fatal("expected error for unauthorized response")
	}
	if calls != 1 {
		t.Fatalf("expected single call, got %d", calls)
	}
}

func TestDiscoverByYearPagesAndFiltersAdult(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("primary_release_year"); got != "2020" {
			t.Errorf("unexpected year param: %q", got)
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		switch page {
		case 1:
			fmt.Fprint(w, `{"page":1,"total_pages":2,"total_results":3,"results":[{"id":1},{"id":2,"adult":true}]}`)
		default:
			fmt.Fprint(w, `{"page":2,"total_pages":2,"total_results":3,"results":[{"id":3}]}`)
		}
	}))

	ids, err := client.DiscoverByYear(context.Background(), 2020)
	if err != nil {
		t.Fatalf("DiscoverByYear returned error: %v", err)
	}
	want := []int64{1, 3}
	if len(ids) != len(want) || ids[0] != want[0] || ids[1] != want[1] {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestChangesClampsWindow(t *testing.T) {
	end := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -30)

	var gotStart string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStart = r.URL.Query().Get("start_date")
		fmt.Fprint(w, `{"page":1,"total_pages":1,"results":[{"id":7},{"id":8,"adult":true}]}`)
	}))

	ids, err := client.Changes(context.Background(), start, end)
	if err != nil {
		t.Fatalf("Changes returned error: %v", err)
	}
	if gotStart != "2026-08-13" {
		t.Fatalf("expected start clamped to 14 days, got %q", gotStart)
	}
	if len(ids) != 1 || ids[0] != 7 {
		t.Fatalf("expected adult change dropped, got %v", ids)
	}
}

func TestSearchMoviesFiltersAdult(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("include_adult"); got != "false" {
			t.Errorf("expected include_adult=false, got %q", got)
		}
		fmt.Fprint(w, `{"page":1,"total_pages":1,"results":[
			{"id":11,"title":"Heat","release_date":"1995-12-15","popularity":40.2},
			{"id":12,"title":"Other","adult":true}
		]}`)
	}))

	results, err := client.SearchMovies(context.Background(), "heat", 1995)
	if err != nil {
		t.Fatalf("SearchMovies returned error: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Heat" {
		t.Fatalf("unexpected results: %v", results)
	}
}

func TestEarliestYearFallsBack(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"page":1,"total_pages":1,"results":[{"id":5}]}`)
	}))

	year, err := client.EarliestYear(context.Background())
	if err != nil {
		t.Fatalf("EarliestYear returned error: %v", err)
	}
	if year != 1900 {
		t.Fatalf("expected fallback year 1900, got %d", year)
	}
}

func TestNewRequiresAccessToken(t *testing.T) {
	if _, err := tmdb.New(tmdb.Config{}); err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestSetSlowModeRestoresConfiguredLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"images":{"base_url":"https://image.tmdb.org/"}}`)
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New(tmdb.Config{
		AccessToken: "test-token",
		BaseURL:     server.URL,
		RateLimit:   2,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	client.SetSlowMode(true)
	client.SetSlowMode(false)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := client.TestConnection(context.Background()); err != nil {
			t.Fatalf("TestConnection returned error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 750*time.Millisecond {
		t.Fatalf("3 requests at 2 rps finished in %v, limit was not restored", elapsed)
	}
}
