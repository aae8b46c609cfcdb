// Package catalogsync refreshes the published archive listing from the
// sessions spreadsheet.
//
// The sessions and new-archives sheets are downloaded as TSV exports, the
// sessions catalog is parsed in renamed-export mode, and one line per export
// name is written, grouped by export status. Keys are ordered with a
// locale-aware collator so Tibetan and Latin titles sort the way readers
// expect.
package catalogsync
