// Package pipeline orchestrates catalog ingestion runs.
//
// Each strategy combines the upstream client, the export reader, and the
// store into one counted run: full crawls for empty catalogs, incremental
// tails, change refreshes, export-driven bulk ingests, backfills, and
// targeted year re-ingests. A file lock serializes runs so two invocations
// cannot write the staged tables at once.
package pipeline
