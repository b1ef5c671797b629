package export

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"cinedex/internal/logging"
)

// Entry is one line of the daily export.
type Entry struct {
	ID            int64   `json:"id"`
	OriginalTitle string  `json:"original_title"`
	Popularity    float64 `json:"popularity"`
	Adult         bool    `json:"adult"`
	Video         bool    `json:"video"`
}

// Snapshot is a cached export file for one date.
type Snapshot struct {
	path   string
	date   time.Time
	logger *slog.Logger
}

// Date returns the export's publication date.
func (s *Snapshot) Date() time.Time { return s.date }

// Path returns the cached file location.
func (s *Snapshot) Path() string { return s.path }

// Stream decodes every export line and calls fn for each non-adult entry.
// Adult entries never reach fn. Lines that fail to parse are logged and
// skipped so one corrupt line cannot sink a verification run.
func (s *Snapshot) Stream(fn func(Entry) error) error {
	file, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("export: open snapshot: %w", err)
	}
	defer file.Close()

	reader, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("export: open gzip stream: %w", err)
	}
	defer reader.Close()

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			s.logger.Warn("skipping malformed export line",
				logging.Int("line", lineNo),
				logging.Error(err))
			continue
		}
		if entry.Adult {
			continue
		}
		if err := fn(entry); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("export: read snapshot: %w", err)
	}
	return nil
}

// IDs returns the set of non-adult movie IDs in the export.
func (s *Snapshot) IDs() (map[int64]struct{}, error) {
	ids := make(map[int64]struct{})
	err := s.Stream(func(entry Entry) error {
		ids[entry.ID] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ByPopularity returns entries at or above the popularity floor, most
// popular first.
func (s *Snapshot) ByPopularity(minPopularity float64) ([]Entry, error) {
	var entries []Entry
	err := s.Stream(func(entry Entry) error {
		if entry.Popularity >= minPopularity {
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Popularity > entries[j].Popularity
	})
	return entries, nil
}

// Stats summarizes an export by popularity tier.
type Stats struct {
	Total     int
	Tiers     map[string]int
	TierOrder []string
}

// Popularity tier labels, most popular first.
var tierOrder = []string{">100", "10-100", "1-10", "0.1-1", "<=0.1"}

func tierFor(popularity float64) string {
	switch {
	case popularity > 100:
		return ">100"
	case popularity > 10:
		return "10-100"
	case popularity > 1:
		return "1-10"
	case popularity > 0.1:
		return "0.1-1"
	default:
		return "<=0.1"
	}
}

// Stats counts export entries per popularity tier.
func (s *Snapshot) Stats() (Stats, error) {
	stats := Stats{
		Tiers:     make(map[string]int, len(tierOrder)),
		TierOrder: append([]string{}, tierOrder...),
	}
	err := s.Stream(func(entry Entry) error {
		stats.Total++
		stats.Tiers[tierFor(entry.Popularity)]++
		return nil
	})
	if err != nil {
		return Stats{}, err
	}
	return stats, nil
}
