package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"tapeshelf/internal/audio"
	"tapeshelf/internal/catalog"
	"tapeshelf/internal/exportpath"
	"tapeshelf/internal/failures"
	"tapeshelf/internal/logging"
)

// Recorder persists task outcomes. It is called concurrently from workers.
type Recorder interface {
	RecordOutcome(ctx context.Context, runID string, o Outcome) error
}

// Report summarizes a run.
type Report struct {
	RunID             string
	Policy            string
	Recordings        int
	Complete          int
	PendingRecordings int
	PendingSessions   int
	Batches           int
	Exported          int
	Skipped           int
	Failed            int
	MissingSources    []string
	Errors            []ErrorEntry
	Started           time.Time
	Elapsed           time.Duration
}

// Processed returns the number of tasks that reached an outcome.
func (r Report) Processed() int {
	return r.Exported + r.Skipped + r.Failed
}

// Exporter runs the batch scheduler.
type Exporter struct {
	Loader    audio.Loader
	Writer    audio.Writer
	Resolver  exportpath.Resolver
	Policy    Policy
	BatchSize int
	Recorder  Recorder
	Logger    *slog.Logger
}

// run is the state shared by the batches of one Run call.
type run struct {
	id         string
	audioRoot  string
	outputRoot string
	log        *slog.Logger
	errors     ErrorLog

	mu      sync.Mutex
	report  Report
	sampler *logging.ProgressSampler
	done    int
	total   int
	stage   string
}

// Run exports every pending session of recordings. It returns an error only
// for run-stopping conditions; per-session failures are in Report.Errors.
func (e *Exporter) Run(ctx context.Context, recordings []*catalog.Recording, audioRoot, outputRoot string) (Report, error) {
	runID, ok := logging.RunIDFromContext(ctx)
	if !ok {
		runID = uuid.NewString()
		ctx = logging.WithRunID(ctx, runID)
	}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(e.Logger, "exporter"))

	st := &run{
		id:         runID,
		audioRoot:  audioRoot,
		outputRoot: outputRoot,
		log:        logger,
		sampler:    logging.NewProgressSampler(0),
		report:     Report{RunID: runID, Policy: e.Policy.Name, Started: time.Now()},
	}

	scan := Scan(recordings, outputRoot, e.Resolver, e.Policy.Mode)
	st.report.Recordings = scan.Recordings
	st.report.Complete = scan.Complete
	st.report.PendingRecordings = len(scan.Pending)
	st.report.PendingSessions = scan.PendingSessions
	logger.Info("files needing export",
		logging.Int("pending", len(scan.Pending)),
		logging.Int("complete", scan.Complete),
		logging.Int("sessions", scan.PendingSessions),
	)

	var runErr error
	for i, batch := range partition(scan.Pending, e.batchSize()) {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		st.report.Batches++
		if err := e.runBatch(ctx, st, i+1, batch); err != nil {
			runErr = err
			break
		}
	}

	st.report.Errors = st.errors.Entries()
	st.report.Elapsed = time.Since(st.report.Started)
	logger.Info("export run finished",
		logging.Int("exported", st.report.Exported),
		logging.Int("skipped", st.report.Skipped),
		logging.Int("failed", st.report.Failed),
		logging.Duration("elapsed", st.report.Elapsed),
	)
	return st.report, runErr
}

func (e *Exporter) runBatch(ctx context.Context, st *run, index int, batch []*catalog.Recording) error {
	logger := st.log.With(logging.Int(logging.FieldBatch, index))

	tasks := e.pendingTasks(ctx, st, batch)
	if len(tasks) == 0 {
		logger.Info("0 tasks processed", logging.Args(logging.DecisionAttrs("batch", "skip", "all outputs present")...)...)
		return nil
	}

	cache, runnable, err := e.loadSources(ctx, st, logger, batch, tasks)
	if err != nil {
		return err
	}
	defer clear(cache)

	st.startStage(fmt.Sprintf("batch %d", index), len(runnable))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers())
	for _, task := range runnable {
		g.Go(func() error {
			e.finish(gctx, st, e.exportTask(gctx, cache[task.RecordingKey], task))
			return nil
		})
	}
	_ = g.Wait()

	logger.Info("batch complete",
		logging.Int("recordings", len(cache)),
		logging.Int("tasks", len(runnable)),
	)
	return nil
}

// pendingTasks is the authoritative completion pass for one batch.
func (e *Exporter) pendingTasks(ctx context.Context, st *run, batch []*catalog.Recording) []Task {
	var tasks []Task
	claimed := make(map[string]Task)
	for _, rec := range batch {
		for _, s := range rec.Sessions {
			task := Task{RecordingKey: rec.Key, Session: s}
			paths, err := e.Resolver.Resolve(rec.Key, s.Label, s.Parts, st.outputRoot, e.Policy.Mode)
			if err != nil {
				e.finish(ctx, st, Outcome{Task: task, Status: Failed,
					Err: failures.Wrap(failures.ErrExportWrite, "scheduler", "resolve paths", "", err)})
				continue
			}
			task.Paths = paths
			if !NeedsExport(paths) {
				e.finish(ctx, st, Outcome{Task: task, Status: Skipped, Reason: "outputs exist"})
				continue
			}
			if other, dup := claimed[paths.Primary]; dup {
				msg := fmt.Sprintf("%s is also the output of %s", paths.Primary, other)
				e.finish(ctx, st, Outcome{Task: task, Status: Failed,
					Err: failures.Wrap(failures.ErrExportWrite, "scheduler", "resolve paths", msg, nil)})
				continue
			}
			claimed[paths.Primary] = task
			tasks = append(tasks, task)
		}
	}
	return tasks
}

// loadSources decodes each recording referenced by tasks once. It returns the
// read-only cache and the tasks whose recording loaded.
func (e *Exporter) loadSources(ctx context.Context, st *run, logger *slog.Logger, batch []*catalog.Recording, tasks []Task) (map[string]*audio.Buffer, []Task, error) {
	byKey := make(map[string]*catalog.Recording, len(batch))
	for _, rec := range batch {
		byKey[rec.Key] = rec
	}

	cache := make(map[string]*audio.Buffer)
	failed := make(map[string]Outcome)
	for _, task := range tasks {
		key := task.RecordingKey
		if _, ok := cache[key]; ok {
			continue
		}
		if _, ok := failed[key]; ok {
			continue
		}
		row, err := SourceRow(byKey[key])
		if err != nil {
			return nil, nil, err
		}
		source := row.SourcePath(st.audioRoot)
		buf, err := e.Loader.Load(ctx, source)
		switch {
		case err == nil:
			cache[key] = buf
		case ctx.Err() != nil:
			return nil, nil, ctx.Err()
		case errors.Is(err, failures.ErrMissingSource):
			if !e.Policy.TolerateMissing {
				return nil, nil, err
			}
			logging.WarnWithContext(logger, "source recording missing; skipping its sessions", "missing_source",
				logging.String(logging.FieldRecording, key),
				logging.String("source", source),
				logging.String(logging.FieldErrorHint, "check the audio root and the catalog folder/filename"),
				logging.String(logging.FieldImpact, "sessions of this recording were not exported"),
			)
			st.missing(key)
			failed[key] = Outcome{Status: Skipped, Reason: "missing source", Err: err}
		default:
			logging.ErrorWithContext(logger, "source recording could not be decoded", "decode_failure",
				logging.String(logging.FieldRecording, key),
				logging.String("source", source),
				logging.Error(err),
			)
			failed[key] = Outcome{Status: Failed, Err: err}
		}
	}

	runnable := make([]Task, 0, len(tasks))
	for _, task := range tasks {
		if o, ok := failed[task.RecordingKey]; ok {
			o.Task = task
			e.finish(ctx, st, o)
			continue
		}
		runnable = append(runnable, task)
	}
	return cache, runnable, nil
}

// exportTask assembles a session and writes whichever outputs are absent.
func (e *Exporter) exportTask(ctx context.Context, src *audio.Buffer, task Task) Outcome {
	started := time.Now()
	out := Outcome{Task: task}
	fail := func(err error) Outcome {
		out.Status = Failed
		out.Err = err
		out.Elapsed = time.Since(started)
		return out
	}

	assembled, err := audio.Assemble(src, task.Session.Parts)
	if err != nil {
		return fail(err)
	}

	var tags *audio.Tags
	if e.Policy.TagOutputs {
		if row, ok := task.Session.FirstRow(); ok {
			t := audio.TagsFromRow(row)
			tags = &t
		}
	}

	written := 0
	for _, path := range []string{task.Paths.Primary, task.Paths.Secondary} {
		if isRegularFile(path) {
			continue
		}
		if err := e.Writer.Write(ctx, assembled, path, tags); err != nil {
			return fail(err)
		}
		written++
	}

	out.Elapsed = time.Since(started)
	if written == 0 {
		out.Status = Skipped
		out.Reason = "outputs appeared during run"
		return out
	}
	out.Status = Exported
	return out
}

func (e *Exporter) finish(ctx context.Context, st *run, o Outcome) {
	o.Finished = time.Now()
	logger := st.log.With(
		logging.String(logging.FieldRecording, o.Task.RecordingKey),
		logging.String(logging.FieldSession, o.Task.Session.Label),
	)
	switch o.Status {
	case Exported:
		logger.Info("session exported",
			logging.String("primary", o.Task.Paths.Primary),
			logging.Duration("elapsed", o.Elapsed),
		)
	case Skipped:
		logger.Debug("session skipped", logging.String("reason", o.Reason))
	case Failed:
		st.errors.Add(o.Task.RecordingKey, o.Task.Session.Label, o.Err)
		logging.WarnWithContext(logger, "session export failed", "session_failed",
			logging.String("kind", failures.Kind(o.Err)),
			logging.Error(o.Err),
			logging.String(logging.FieldImpact, "session left for the next run"),
		)
	}

	if e.Recorder != nil {
		if err := e.Recorder.RecordOutcome(ctx, st.id, o); err != nil {
			logging.WarnWithContext(logger, "journal write failed", "journal_write",
				logging.Error(err),
				logging.String(logging.FieldImpact, "export history is incomplete for this run"),
			)
		}
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	switch o.Status {
	case Exported:
		st.report.Exported++
	case Skipped:
		st.report.Skipped++
	case Failed:
		st.report.Failed++
	}
	if st.total > 0 {
		st.done++
		if st.sampler.ShouldLog(st.done, st.total, st.stage) {
			st.log.Info("export progress",
				logging.String("stage", st.stage),
				logging.Int("done", st.done),
				logging.Int("total", st.total),
			)
		}
	}
}

func (st *run) startStage(stage string, total int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.stage = stage
	st.done = 0
	st.total = total
}

func (st *run) missing(key string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.report.MissingSources = append(st.report.MissingSources, key)
}

// SourceRow returns the row that names a recording's source file: the first
// part of session "0" or of session "1". A recording must carry exactly one
// of the two.
func SourceRow(rec *catalog.Recording) (catalog.Row, error) {
	if rec == nil {
		return catalog.Row{}, failures.Wrap(failures.ErrConfig, "scheduler", "resolve source", "unknown recording", nil)
	}
	var found []catalog.Row
	for _, label := range []string{"0", "1"} {
		if s, ok := rec.Session(label); ok {
			if row, ok := s.FirstRow(); ok {
				found = append(found, row)
			}
		}
	}
	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		msg := fmt.Sprintf("recording %s has neither session 0 nor session 1", rec.Key)
		return catalog.Row{}, failures.Wrap(failures.ErrConfig, "scheduler", "resolve source", msg, nil)
	default:
		msg := fmt.Sprintf("recording %s has both session 0 and session 1", rec.Key)
		return catalog.Row{}, failures.Wrap(failures.ErrConfig, "scheduler", "resolve source", msg, nil)
	}
}

func partition(recs []*catalog.Recording, size int) [][]*catalog.Recording {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var out [][]*catalog.Recording
	for start := 0; start < len(recs); start += size {
		end := min(start+size, len(recs))
		out = append(out, recs[start:end])
	}
	return out
}

func (e *Exporter) batchSize() int {
	if e.BatchSize > 0 {
		return e.BatchSize
	}
	return DefaultBatchSize
}

func (e *Exporter) workers() int {
	if e.Policy.Workers > 0 {
		return e.Policy.Workers
	}
	return DefaultFinalWorkers
}
