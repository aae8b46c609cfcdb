package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tapeshelf/internal/export"
	"tapeshelf/internal/failures"
)

// timeLayout is fixed-width so UTC timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one journaled export run.
type Run struct {
	ID         string
	Policy     string
	StartedAt  time.Time
	FinishedAt time.Time
	Recordings int
	Complete   int
	Pending    int
	Exported   int
	Skipped    int
	Failed     int
	Error      string
}

// Finished reports whether the run recorded a finish time.
func (r Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Export is one journaled session outcome.
type Export struct {
	RunID         string
	RecordingKey  string
	Session       string
	Status        string
	Reason        string
	PrimaryPath   string
	SecondaryPath string
	ErrorKind     string
	Error         string
	Elapsed       time.Duration
	FinishedAt    time.Time
}

// BeginRun inserts a run row. It must precede RecordOutcome for runID.
func (s *Store) BeginRun(ctx context.Context, runID, policy string, started time.Time) error {
	err := s.exec(ctx,
		"INSERT INTO runs (id, policy, started_at) VALUES (?, ?, ?)",
		runID, policy, started.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("begin run %s: %w", runID, err)
	}
	return nil
}

// RecordOutcome stores one session outcome. Safe for concurrent use.
func (s *Store) RecordOutcome(ctx context.Context, runID string, o export.Outcome) error {
	finished := o.Finished
	if finished.IsZero() {
		finished = time.Now()
	}
	var errText, kind sql.NullString
	if o.Err != nil {
		errText = sql.NullString{String: o.Err.Error(), Valid: true}
		kind = sql.NullString{String: failures.Kind(o.Err), Valid: true}
	}
	err := s.exec(ctx, `INSERT INTO exports
		(run_id, recording_key, session, status, reason, primary_path, secondary_path, error_kind, error, elapsed_ms, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		o.Task.RecordingKey,
		o.Task.Session.Label,
		o.Status.String(),
		nullable(o.Reason),
		nullable(o.Task.Paths.Primary),
		nullable(o.Task.Paths.Secondary),
		kind,
		errText,
		o.Elapsed.Milliseconds(),
		finished.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("record outcome %s#%s: %w", o.Task.RecordingKey, o.Task.Session.Label, err)
	}
	return nil
}

// FinishRun stores the report totals and, when the run stopped early, its error.
func (s *Store) FinishRun(ctx context.Context, report export.Report, runErr error) error {
	var errText sql.NullString
	if runErr != nil {
		errText = sql.NullString{String: runErr.Error(), Valid: true}
	}
	err := s.exec(ctx, `UPDATE runs SET
		finished_at = ?, recordings = ?, complete = ?, pending = ?,
		exported = ?, skipped = ?, failed = ?, error = ?
		WHERE id = ?`,
		time.Now().UTC().Format(timeLayout),
		report.Recordings,
		report.Complete,
		report.PendingRecordings,
		report.Exported,
		report.Skipped,
		report.Failed,
		errText,
		report.RunID,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", report.RunID, err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT
		id, policy, started_at, finished_at, recordings, complete, pending,
		exported, skipped, failed, error
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r        Run
			started  string
			finished sql.NullString
			errText  sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Policy, &started, &finished, &r.Recordings, &r.Complete,
			&r.Pending, &r.Exported, &r.Skipped, &r.Failed, &errText); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt = parseTime(started)
		if finished.Valid {
			r.FinishedAt = parseTime(finished.String)
		}
		r.Error = errText.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunExports returns the outcomes of runID in the order they were recorded.
// With failedOnly, only outcomes carrying an error are returned.
func (s *Store) RunExports(ctx context.Context, runID string, failedOnly bool) ([]Export, error) {
	query := `SELECT run_id, recording_key, session, status, reason, primary_path, secondary_path,
		error_kind, error, elapsed_ms, finished_at FROM exports WHERE run_id = ?`
	if failedOnly {
		query += " AND error IS NOT NULL"
	}
	query += " ORDER BY id"
	rows, err := s.db.QueryContext(ensureContext(ctx), query, runID)
	if err != nil {
		return nil, fmt.Errorf("query exports: %w", err)
	}
	defer rows.Close()

	var out []Export
	for rows.Next() {
		var (
			e                                      Export
			reason, primary, secondary, kind, text sql.NullString
			elapsedMS                              int64
			finished                               string
		)
		if err := rows.Scan(&e.RunID, &e.RecordingKey, &e.Session, &e.Status, &reason, &primary,
			&secondary, &kind, &text, &elapsedMS, &finished); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		e.Reason = reason.String
		e.PrimaryPath = primary.String
		e.SecondaryPath = secondary.String
		e.ErrorKind = kind.String
		e.Error = text.String
		e.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		e.FinishedAt = parseTime(finished)
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullable(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
