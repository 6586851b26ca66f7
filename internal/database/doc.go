// Package database stores the history of linkprobe runs in SQLite.
//
// Each run is saved as one row in the runs table, holding headline counts
// and the full report as JSON, plus one row per URL in the outcomes table.
// The history is an audit trail only: probing never reads it back, so a
// URL is always checked afresh.
//
// The driver is modernc.org/sqlite, which needs no cgo. The database is a
// single file in the XDG data directory.
package database
