package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// maxDiscoverPages is the upstream's hard pagination ceiling.
const maxDiscoverPages = 500

// earliestYearFallback is used when the discover probe returns nothing.
const earliestYearFallback = 1900

type discoverPage struct {
	Page         int `json:"page"`
	TotalPages   int `json:"total_pages"`
	TotalResults int `json:"total_results"`
	Results      []struct {
		ID          int64  `json:"id"`
		Adult       bool   `json:"adult"`
		ReleaseDate string `json:"release_date"`
	} `json:"results"`
}

func (c *Client) discoverParams() url.Values {
	params := url.Values{}
	params.Set("language", c.language)
	params.Set("include_adult", strconv.FormatBool(c.includeAdult))
	params.Set("include_video", "false")
	params.Set("sort_by", "popularity.desc")
	return params
}

// discoverIDs walks every page of a discover query and collects movie IDs.
func (c *Client) discoverIDs(ctx context.Context, params url.Values) ([]int64, error) {
	var ids []int64
	page := 1
	for {
		params.Set("page", strconv.Itoa(page))
		var payload discoverPage
		if err := c.get(ctx, "/discover/movie", params, &payload); err != nil {
			return ids, err
		}
		for _, result := range payload.Results {
			if result.Adult {
				continue
			}
			ids = append(ids, result.ID)
		}
		totalPages := payload.TotalPages
		if totalPages > maxDiscoverPages {
			totalPages = maxDiscoverPages
		}
		if page >= totalPages || len(payload.Results) == 0 {
			return ids, nil
		}
		page++
	}
}

// DiscoverByYear returns IDs of movies first released in the given year.
func (c *Client) DiscoverByYear(ctx context.Context, year int) ([]int64, error) {
	params := c.discoverParams()
	params.Set("primary_release_year", strconv.Itoa(year))
	return c.discoverIDs(ctx, params)
}

// DiscoverDateRange returns IDs of movies first released inside [from, to].
func (c *Client) DiscoverDateRange(ctx context.Context, from, to time.Time) ([]int64, error) {
	params := c.discoverParams()
	params.Set("primary_release_date.gte", from.Format("2006-01-02"))
	params.Set("primary_release_date.lte", to.Format("2006-01-02"))
	return c.discoverIDs(ctx, params)
}

// IDsForMonth returns IDs of movies first released in the given month.
func (c *Client) IDsForMonth(ctx context.Context, year int, month time.Month) ([]int64, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return c.DiscoverDateRange(ctx, start, end)
}

// IDsForYearMonthly collects a year's releases in twelve monthly windows.
// Busy years exceed the 10k-result pagination ceiling when queried whole;
// month-sized windows stay under it.
func (c *Client) IDsForYearMonthly(ctx context.Context, year int) ([]int64, error) {
	seen := make(map[int64]struct{})
	var ids []int64
	for month := time.January; month <= time.December; month++ {
		monthIDs, err := c.IDsForMonth(ctx, year, month)
		if err != nil {
			return ids, fmt.Errorf("tmdb: discover %d-%02d: %w", year, month, err)
		}
		for _, id := range monthIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// EarliestYear probes for the oldest release year known upstream. When the
// probe yields nothing usable it falls back to 1900.
func (c *Client) EarliestYear(ctx context.Context) (int, error) {
	params := c.discoverParams()
	params.Set("sort_by", "primary_release_date.asc")
	params.Set("primary_release_date.gte", "1800-01-01")
	params.Set("page", "1")

	var payload discoverPage
	if err := c.get(ctx, "/discover/movie", params, &payload); err != nil {
		return 0, err
	}
	for _, result := range payload.Results {
		if date := parseReleaseDate(result.ReleaseDate); date != nil {
			return date.Year(), nil
		}
	}
	return earliestYearFallback, nil
}
