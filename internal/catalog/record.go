package catalog

import (
	"sort"
	"time"
)

// CreditType distinguishes cast entries from crew entries.
type CreditType string

const (
	CreditCast CreditType = "cast"
	CreditCrew CreditType = "crew"
)

// Credit is one cast or crew entry on a record. Cast entries carry Character
// and Order; crew entries carry Department and Job. The person fields are
// duplicated here so the store can derive people rows without another fetch.
type Credit struct {
	PersonID   int64
	PersonName string
	Type       CreditType
	Character  string
	Order      int
	Department string
	Job        string

	ProfilePath string
	Gender      int
	KnownFor    string
}

// Person is derived from credits, deduplicated by ID. Person rows are never
// created independently of a record's credits.
type Person struct {
	ID          int64
	Name        string
	ProfilePath string
	Gender      int
	KnownFor    string
}

// Record is the canonical catalog unit. IDs are assigned upstream and never
// reused. The credit list may already be truncated to a bounded top-N cast by
// the client that decoded it.
type Record struct {
	ID               int64
	Title            string
	OriginalTitle    string
	Overview         string
	Tagline          string
	Status           string
	ReleaseDate      *time.Time
	Runtime          int
	VoteAverage      float64
	VoteCount        int64
	Popularity       float64
	PosterPath       string
	BackdropPath     string
	Budget           int64
	Revenue          int64
	IMDbID           string
	OriginalLanguage string
	Adult            bool

	Genres  []string
	Credits []Credit
}

// People extracts the unique persons referenced by the record's credits,
// preserving first-occurrence order.
func (r *Record) People() []Person {
	seen := make(map[int64]struct{}, len(r.Credits))
	people := make([]Person, 0, len(r.Credits))
	for _, credit := range r.Credits {
		if _, ok := seen[credit.PersonID]; ok {
			continue
		}
		seen[credit.PersonID] = struct{}{}
		people = append(people, Person{
			ID:          credit.PersonID,
			Name:        credit.PersonName,
			ProfilePath: credit.ProfilePath,
			Gender:      credit.Gender,
			KnownFor:    credit.KnownFor,
		})
	}
	return people
}

// Cast returns the cast credits ordered by billing.
func (r *Record) Cast() []Credit {
	cast := make([]Credit, 0, len(r.Credits))
	for _, credit := range r.Credits {
		if credit.Type == CreditCast {
			cast = append(cast, credit)
		}
	}
	sort.SliceStable(cast, func(i, j int) bool { return cast[i].Order < cast[j].Order })
	return cast
}

// Director returns the first crew credit with the Director job, or nil.
func (r *Record) Director() *Credit {
	for i := range r.Credits {
		if r.Credits[i].Type == CreditCrew && r.Credits[i].Job == "Director" {
			return &r.Credits[i]
		}
	}
	return nil
}

// SearchResult is a single upstream title-search match annotated with local
// membership so callers can tell what is already held.
type SearchResult struct {
	ID           int64
	Title        string
	ReleaseDate  string
	Overview     string
	Popularity   float64
	VoteAverage  float64
	PosterPath   string
	InProduction bool
	InStaged     bool
}
