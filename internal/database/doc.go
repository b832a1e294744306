// Package database provides SQLite-based run history for sitecheck.
//
// Each saved run stores the full report as JSON together with a per-kind
// diagnostic summary, so that the history command can list runs without
// decoding them and compare any two runs of the same site root.
//
// The store uses modernc.org/sqlite, a CGO-free driver, and keeps a single
// database file under the XDG data directory.
package database
