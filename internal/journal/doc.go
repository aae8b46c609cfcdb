// Package journal records export runs and per-session outcomes in SQLite.
//
// The journal is history only: the exporter decides what to do from the
// filesystem, never from these tables.
package journal
