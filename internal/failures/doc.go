// Package failures defines the error taxonomy shared by the catalog parser,
// audio loader, and export scheduler.
//
// Every failure is tagged with one sentinel marker so callers can decide with
// errors.Is whether it stops the run (configuration and catalog parse
// problems) or is isolated to a single recording or session and only lands in
// the run's error report.
package failures
