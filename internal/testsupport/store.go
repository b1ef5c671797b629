package testsupport

import (
	"strconv"
	"testing"
	"time"

	"cinedex/internal/catalog"
	"cinedex/internal/config"
	"cinedex/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewRecord builds a catalog record fixture with a deterministic closure:
// two cast members, one director, and one genre.
func NewRecord(t testing.TB, id int64) *catalog.Record {
	t.Helper()

	release := time.Date(2000, time.Month(id%12+1), 15, 0, 0, 0, 0, time.UTC)
	return &catalog.Record{
		ID:               id,
		Title:            "Test Movie " + strconv.FormatInt(id, 10),
		OriginalTitle:    "Test Movie " + strconv.FormatInt(id, 10),
		Overview:         "A test fixture.",
		Status:           "Released",
		ReleaseDate:      &release,
		Runtime:          120,
		VoteAverage:      7.1,
		VoteCount:        100,
		Popularity:       float64(id),
		OriginalLanguage: "en",
		Genres:           []string{"Drama"},
		Credits: []catalog.Credit{
			{PersonID: id*10 + 1, PersonName: "Lead Actor", Type: catalog.CreditCast, Character: "Lead", Order: 0},
			{PersonID: id*10 + 2, PersonName: "Support Actor", Type: catalog.CreditCast, Character: "Support", Order: 1},
			{PersonID: id*10 + 3, PersonName: "The Director", Type: catalog.CreditCrew, Department: "Directing", Job: "Director"},
		},
	}
}
