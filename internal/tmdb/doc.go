// Package tmdb wraps The Movie Database REST API for catalog ingestion.
//
// The client enforces an outbound token-bucket rate limit, retries transient
// failures with exponential backoff, and slows itself down after consecutive
// errors so long crawls survive upstream turbulence. Responses are decoded
// into catalog records with cast truncation applied at the edge.
package tmdb
