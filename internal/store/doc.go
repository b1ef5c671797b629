// Package store persists the movie catalog in SQLite.
//
// Every catalog table exists twice: a production set serving reads and a
// staged mirror that ingestion writes into. Promotion moves a movie's full
// closure (row, genres, credits, people) from staged to production in one
// transaction, so readers never observe a partially promoted movie. People
// rows are shared across movies and are never deleted.
package store
