package catalog

import (
	"fmt"
	"strings"
	"time"
)

// RunStats accumulates the per-ID outcome counters for one orchestrator run.
// Strategies return it instead of raising on individual failures so long runs
// always finish with a complete picture.
type RunStats struct {
	RunID           string
	Processed       int
	Inserted        int
	Updated         int
	SkippedExisting int
	SkippedAdult    int
	SkippedNoDate   int
	Errors          int
	Elapsed         time.Duration
}

// Add folds another stats block into the receiver. RunID and Elapsed are
// owned by the outer run and left untouched.
func (s *RunStats) Add(other RunStats) {
	s.Processed += other.Processed
	s.Inserted += other.Inserted
	s.Updated += other.Updated
	s.SkippedExisting += other.SkippedExisting
	s.SkippedAdult += other.SkippedAdult
	s.SkippedNoDate += other.SkippedNoDate
	s.Errors += other.Errors
}

// String renders a compact human-readable summary, omitting zero counters the
// same way the run logs do.
func (s RunStats) String() string {
	lines := []string{
		fmt.Sprintf("Processed: %d", s.Processed),
		fmt.Sprintf("Inserted: %d", s.Inserted),
	}
	if s.Updated > 0 {
		lines = append(lines, fmt.Sprintf("Updated: %d", s.Updated))
	}
	if s.SkippedExisting > 0 {
		lines = append(lines, fmt.Sprintf("Skipped (existing): %d", s.SkippedExisting))
	}
	if s.SkippedAdult > 0 {
		lines = append(lines, fmt.Sprintf("Skipped (adult): %d", s.SkippedAdult))
	}
	if s.SkippedNoDate > 0 {
		lines = append(lines, fmt.Sprintf("Skipped (no date): %d", s.SkippedNoDate))
	}
	if s.Errors > 0 {
		lines = append(lines, fmt.Sprintf("Errors: %d", s.Errors))
	}
	return strings.Join(lines, "\n")
}
