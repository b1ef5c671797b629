// Package catalog defines the record types shared across the ingestion
// pipeline.
//
// Record is the canonical unit: one upstream movie with its credits and genre
// tags. Credits carry enough person data to derive Person rows on insert, so
// the store never needs a second fetch. RunStats accumulates the per-run
// counters every orchestrator strategy returns.
package catalog
