// Package preflight provides readiness checks for the paths, binaries and
// remote sheets that tapeshelf depends on.
//
// The CLI "tapeshelf doctor" command runs RunAll and prints every result.
// The export commands call CheckExportPaths before touching any audio so a
// run never starts against an unreadable archive or unwritable output tree.
//
// Checks for unconfigured features are skipped.
package preflight
