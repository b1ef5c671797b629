// Package export downloads and reads the upstream's daily movie ID export.
//
// Exports are gzip-compressed newline-delimited JSON published once per day.
// Downloads are cached on disk by date so repeated verification runs do not
// refetch. Adult-flagged entries are dropped during streaming and malformed
// lines are logged and skipped.
package export
