// Package main hosts the tapeshelf CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, applies per-command
// flag overrides, and hands off to the internal packages: export and scan
// drive the session exporter, history reads the journal, and the remaining
// commands wrap the archive utilities (consolidation, manifests, subtitle
// realignment, duration totals, catalog sync, and environment checks).
//
// Keep this package lean: add functionality in the internal packages first,
// then surface it through a command or flag here.
package main
