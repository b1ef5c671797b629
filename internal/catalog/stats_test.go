package catalog_test

import (
	"testing"
	"time"

	"cinedex/internal/catalog"
)

func TestRunStatsAddFoldsCountersKeepsRunFields(t *testing.T) {
	total := catalog.RunStats{
		RunID:     "run-1",
		Processed: 3,
		Inserted:  2,
		Errors:    1,
		Elapsed:   5 * time.Second,
	}
	total.Add(catalog.RunStats{
		Processed:       4,
		Inserted:        1,
		Updated:         2,
		SkippedExisting: 1,
		SkippedAdult:    1,
		SkippedNoDate:   1,
		Errors:          1,
		RunID:           "run-2",
		Elapsed:         time.Minute,
	})

	if total.RunID != "run-1" || total.Elapsed != 5*time.Second {
		t.Fatalf("run fields changed: %q %v", total.RunID, total.Elapsed)
	}
	if total.Processed != 7 || total.Inserted != 3 || total.Updated != 2 {
		t.Fatalf("unexpected totals: %+v", total)
	}
	if total.SkippedExisting != 1 || total.SkippedAdult != 1 || total.SkippedNoDate != 1 || total.Errors != 2 {
		t.Fatalf("unexpected skip counters: %+v", total)
	}
}
