package tmdb

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"cinedex/internal/catalog"
)

type searchPage struct {
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
	Results    []struct {
		ID          int64   `json:"id"`
		Title       string  `json:"title"`
		ReleaseDate string  `json:"release_date"`
		Overview    string  `json:"overview"`
		Popularity  float64 `json:"popularity"`
		VoteAverage float64 `json:"vote_average"`
		PosterPath  string  `json:"poster_path"`
		Adult       bool    `json:"adult"`
	} `json:"results"`
}

// SearchMovies queries the upstream title search. Year narrows results when
// positive. Adult entries are dropped regardless of configuration.
func (c *Client) SearchMovies(ctx context.Context, query string, year int) ([]catalog.SearchResult, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, errors.New("tmdb: search query is empty")
	}

	params := url.Values{}
	params.Set("query", trimmed)
	params.Set("language", c.language)
	params.Set("include_adult", "false")
	if year > 0 {
		params.Set("primary_release_year", strconv.Itoa(year))
	}
	params.Set("page", "1")

	var payload searchPage
	if err := c.get(ctx, "/search/movie", params, &payload); err != nil {
		return nil, err
	}

	results := make([]catalog.SearchResult, 0, len(payload.Results))
	for _, entry := range payload.Results {
		if entry.Adult {
			continue
		}
		results = append(results, catalog.SearchResult{
			ID:          entry.ID,
			Title:       entry.Title,
			ReleaseDate: entry.ReleaseDate,
			Overview:    entry.Overview,
			Popularity:  entry.Popularity,
			VoteAverage: entry.VoteAverage,
			PosterPath:  entry.PosterPath,
		})
	}
	return results, nil
}
