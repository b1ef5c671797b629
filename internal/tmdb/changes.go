package tmdb

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"cinedex/internal/logging"
)

// maxChangesWindow is the widest interval the changes endpoint accepts.
const maxChangesWindow = 14 * 24 * time.Hour

type changesPage struct {
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
	Results    []struct {
		ID    int64 `json:"id"`
		Adult bool  `json:"adult"`
	} `json:"results"`
}

// Changes returns IDs of movies whose upstream entries changed inside
// [start, end]. Windows wider than fourteen days are clamped from the start.
func (c *Client) Changes(ctx context.Context, start, end time.Time) ([]int64, error) {
	if end.Before(start) {
		start, end = end, start
	}
	if end.Sub(start) > maxChangesWindow {
		clamped := end.Add(-maxChangesWindow)
		c.logger.Warn("changes window clamped",
			logging.String("requested_start", start.Format("2006-01-02")),
			logging.String("clamped_start", clamped.Format("2006-01-02")))
		start = clamped
	}

	var ids []int64
	page := 1
	for {
		params := url.Values{}
		params.Set("start_date", start.Format("2006-01-02"))
		params.Set("end_date", end.Format("2006-01-02"))
		params.Set("page", strconv.Itoa(page))

		var payload changesPage
		if err := c.get(ctx, "/movie/changes", params, &payload); err != nil {
			return ids, err
		}
		for _, result := range payload.Results {
			if result.Adult {
				continue
			}
			ids = append(ids, result.ID)
		}
		if page >= payload.TotalPages || len(payload.Results) == 0 {
			return ids, nil
		}
		page++
	}
}
