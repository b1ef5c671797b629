// Package verify compares the catalog against the upstream's daily export.
//
// A verification run reports which export movies are absent from both the
// production and staged sets, which catalog movies no longer appear in the
// export, and the resulting coverage percentage, optionally broken down by
// popularity tier.
package verify
