package main

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"cinedex/internal/catalog"
)

var countPrinter = message.NewPrinter(language.English)

// formatCount renders an integer with thousands separators.
func formatCount(n int) string {
	return countPrinter.Sprintf("%d", n)
}

func formatPercent(value float64) string {
	return fmt.Sprintf("%.2f%%", value)
}

func formatDate(value *time.Time) string {
	if value == nil {
		return "-"
	}
	return value.Format("2006-01-02")
}

// truncate shortens a string to at most max runes, ending in "...".
func truncate(value string, max int) string {
	if max <= 0 || utf8.RuneCountInString(value) <= max {
		return value
	}
	runes := []rune(value)
	return string(runes[:max-3]) + "..."
}

func parseDateFlag(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, nil
	}
	date, err := time.Parse("2006-01-02", trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return date, nil
}

func printRunStats(out io.Writer, stats catalog.RunStats) {
	fmt.Fprintln(out, stats.String())
	fmt.Fprintf(out, "Elapsed: %s\n", stats.Elapsed)
}

func buildSearchRows(results []catalog.SearchResult) [][]string {
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		state := "-"
		switch {
		case result.InProduction:
			state = "production"
		case result.InStaged:
			state = "staged"
		}
		date := result.ReleaseDate
		if date == "" {
			date = "-"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", result.ID),
			truncate(result.Title, 48),
			date,
			fmt.Sprintf("%.1f", result.Popularity),
			state,
		})
	}
	return rows
}
