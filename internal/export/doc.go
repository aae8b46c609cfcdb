// Package export schedules session exports.
//
// Recordings are scanned against the filesystem, split into batches, and for
// each batch the needed recordings are decoded once and shared read-only by a
// bounded pool of workers that assemble and encode sessions. Per-session
// failures land in a run-scoped ErrorLog; only configuration-class failures
// stop a run.
package export
