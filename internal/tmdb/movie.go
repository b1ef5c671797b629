package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"cinedex/internal/catalog"
)

type movieDetails struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	Overview         string  `json:"overview"`
	Tagline          string  `json:"tagline"`
	Status           string  `json:"status"`
	ReleaseDate      string  `json:"release_date"`
	Runtime          int     `json:"runtime"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int64   `json:"vote_count"`
	Popularity       float64 `json:"popularity"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	Budget           int64   `json:"budget"`
	Revenue          int64   `json:"revenue"`
	IMDbID           string  `json:"imdb_id"`
	OriginalLanguage string  `json:"original_language"`
	Adult            bool    `json:"adult"`
	Genres           []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Credits struct {
		Cast []castMember `json:"cast"`
		Crew []crewMember `json:"crew"`
	} `json:"credits"`
}

type castMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	Order       int    `json:"order"`
	ProfilePath string `json:"profile_path"`
	Gender      int    `json:"gender"`
	KnownFor    string `json:"known_for_department"`
}

type crewMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Department  string `json:"department"`
	Job         string `json:"job"`
	ProfilePath string `json:"profile_path"`
	Gender      int    `json:"gender"`
	KnownFor    string `json:"known_for_department"`
}

// MovieWithCredits fetches full movie details plus credits in one request.
// Cast is truncated to the configured maximum; directors are always kept.
func (c *Client) MovieWithCredits(ctx context.Context, id int64) (*catalog.Record, error) {
	params := url.Values{}
	params.Set("language", c.language)
	params.Set("append_to_response", "credits")

	var payload movieDetails
	if err := c.get(ctx, "/movie/"+strconv.FormatInt(id, 10), params, &payload); err != nil {
		return nil, err
	}
	if payload.ID == 0 {
		return nil, fmt.Errorf("tmdb: movie %d: empty payload", id)
	}
	return c.decodeRecord(payload), nil
}

func (c *Client) decodeRecord(payload movieDetails) *catalog.Record {
	record := &catalog.Record{
		ID:               payload.ID,
		Title:            payload.Title,
		OriginalTitle:    payload.OriginalTitle,
		Overview:         payload.Overview,
		Tagline:          payload.Tagline,
		Status:           payload.Status,
		Runtime:          payload.Runtime,
		VoteAverage:      payload.VoteAverage,
		VoteCount:        payload.VoteCount,
		Popularity:       payload.Popularity,
		PosterPath:       payload.PosterPath,
		BackdropPath:     payload.BackdropPath,
		Budget:           payload.Budget,
		Revenue:          payload.Revenue,
		IMDbID:           payload.IMDbID,
		OriginalLanguage: payload.OriginalLanguage,
		Adult:            payload.Adult,
	}
	if date := parseReleaseDate(payload.ReleaseDate); date != nil {
		record.ReleaseDate = date
	}
	for _, genre := range payload.Genres {
		if genre.Name != "" {
			record.Genres = append(record.Genres, genre.Name)
		}
	}

	cast := payload.Credits.Cast
	if len(cast) > c.maxCast {
		cast = cast[:c.maxCast]
	}
	for _, member := range cast {
		record.Credits = append(record.Credits, catalog.Credit{
			PersonID:    member.ID,
			PersonName:  member.Name,
			Type:        catalog.CreditCast,
			Character:   member.Character,
			Order:       member.Order,
			ProfilePath: member.ProfilePath,
			Gender:      member.Gender,
			KnownFor:    member.KnownFor,
		})
	}
	for _, member := range payload.Credits.Crew {
		if member.Job != "Director" {
			continue
		}
		record.Credits = append(record.Credits, catalog.Credit{
			PersonID:    member.ID,
			PersonName:  member.Name,
			Type:        catalog.CreditCrew,
			Department:  member.Department,
			Job:         member.Job,
			ProfilePath: member.ProfilePath,
			Gender:      member.Gender,
			KnownFor:    member.KnownFor,
		})
	}
	return record
}

func parseReleaseDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil
	}
	return &parsed
}
