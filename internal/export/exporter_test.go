package export_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"tapeshelf/internal/catalog"
	"tapeshelf/internal/export"
	"tapeshelf/internal/exportpath"
	"tapeshelf/internal/failures"
	"tapeshelf/internal/testsupport"
)

func seg(folder, file, start, dur, session string) testsupport.CatalogRow {
	return testsupport.CatalogRow{
		catalog.FieldFolder:        folder,
		catalog.FieldFilename:      file,
		catalog.FieldStart:         start,
		catalog.FieldDuration:      dur,
		catalog.FieldSessionNumber: session,
	}
}

func recordings(t *testing.T, renamed bool, rows ...testsupport.CatalogRow) []*catalog.Recording {
	t.Helper()
	path := testsupport.WriteCatalog(t, filepath.Join(t.TempDir(), "catalog.tsv"), rows...)
	cat, err := catalog.Parse(path, renamed)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return cat.Processed()
}

type harness struct {
	loader    *fakeLoader
	writer    *fakeWriter
	events    *events
	exporter  *export.Exporter
	audioRoot string
	outRoot   string
}

func newHarness(t *testing.T, policy export.Policy) *harness {
	t.Helper()
	base := t.TempDir()
	ev := &events{}
	h := &harness{
		loader:    newFakeLoader(ev),
		writer:    newFakeWriter(ev),
		events:    ev,
		audioRoot: filepath.Join(base, "audio"),
		outRoot:   filepath.Join(base, "out", "sessions"),
	}
	h.exporter = &export.Exporter{
		Loader: h.loader,
		Writer: h.writer,
		Policy: policy,
	}
	return h
}

func (h *harness) run(t *testing.T, recs []*catalog.Recording) export.Report {
	t.Helper()
	report, err := h.exporter.Run(context.Background(), recs, h.audioRoot, h.outRoot)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	return report
}

func (h *harness) source(folder, file string) string {
	return filepath.Join(h.audioRoot, folder, file)
}

func TestExporterWritesBothOutputsAndIsIdempotent(t *testing.T) {
	h := newHarness(t, export.Segmentation())
	recs := recordings(t, false,
		seg("Tape 1", "side_a.wav", "00:00:01", "00:00:02", "1"),
		seg("Tape 1", "side_a.wav", "00:00:04", "00:00:01", "2"),
		seg("Tape 2", "side_b.wav", "00:00:00", "00:00:03", "0"),
	)

	first := h.run(t, recs)
	if first.Exported != 3 || first.Failed != 0 {
		t.Fatalf("first run exported=%d failed=%d errors=%v", first.Exported, first.Failed, first.Errors)
	}
	if first.PendingRecordings != 2 || first.Complete != 0 {
		t.Fatalf("first run pending=%d complete=%d", first.PendingRecordings, first.Complete)
	}
	primary := filepath.Join(h.outRoot, "side_a", "side_a_1.wav")
	data, err := os.ReadFile(primary)
	if err != nil {
		t.Fatalf("read primary: %v", err)
	}
	if len(data) != 2000*2 || data[0] != byte(1000&0xff) {
		t.Fatalf("unexpected assembled audio: %d bytes, first byte %d", len(data), data[0])
	}
	if _, err := os.Stat(filepath.Join(h.outRoot, "side_a", "side_a_1.m4a")); err != nil {
		t.Fatalf("expected secondary output: %v", err)
	}
	if got := len(h.writer.written()); got != 6 {
		t.Fatalf("expected 6 writes, got %d", got)
	}

	loadsBefore := h.loader.totalLoads()
	second := h.run(t, recs)
	if second.Exported != 0 || second.Processed() != 0 || second.Batches != 0 {
		t.Fatalf("second run should do nothing, got %+v", second)
	}
	if second.Complete != 2 {
		t.Fatalf("second run complete = %d, want 2", second.Complete)
	}
	if h.loader.totalLoads() != loadsBefore {
		t.Fatal("second run must not decode audio")
	}
}

func TestExporterLoadsEachRecordingOnce(t *testing.T) {
	h := newHarness(t, export.Segmentation())
	recs := recordings(t, false,
		seg("T", "rec.wav", "00:00:00", "00:00:01", "1"),
		seg("T", "rec.wav", "00:00:01", "00:00:01", "2"),
		seg("T", "rec.wav", "00:00:02", "00:00:01", "3"),
	)
	report := h.run(t, recs)
	if report.Exported != 3 {
		t.Fatalf("exported = %d, want 3", report.Exported)
	}
	if n := h.loader.loadsOf(h.source("T", "rec.wav")); n != 1 {
		t.Fatalf("loads = %d, want 1", n)
	}
}

func TestExporterIsolatesSessionFailures(t *testing.T) {
	h := newHarness(t, export.Segmentation())
	recs := recordings(t, false,
		seg("T", "rec.wav", "00:00:00", "00:00:01", "1"),
		seg("T", "rec.wav", "00:00:02", "", "2"),
		seg("T", "rec.wav", "00:00:04", "00:00:01", "3"),
	)
	h.writer.fail[filepath.Join(h.outRoot, "rec", "rec_3.m4a")] = true

	report := h.run(t, recs)
	if report.Exported != 1 || report.Failed != 2 {
		t.Fatalf("exported=%d failed=%d, want 1 and 2", report.Exported, report.Failed)
	}
	kinds := map[string]string{}
	for _, entry := range report.Errors {
		kinds[entry.Session] = entry.Kind
	}
	if kinds["2"] != "MissingTimecode" {
		t.Fatalf("session 2 kind = %q, want MissingTimecode", kinds["2"])
	}
	if kinds["3"] != "ExportWriteFailure" {
		t.Fatalf("session 3 kind = %q, want ExportWriteFailure", kinds["3"])
	}
}

func TestExporterWritesOnlyMissingOutput(t *testing.T) {
	h := newHarness(t, export.Segmentation())
	recs := recordings(t, false, seg("T", "rec.wav", "00:00:00", "00:00:01", "1"))
	primary := filepath.Join(h.outRoot, "rec", "rec_1.wav")
	testsupport.WriteFile(t, primary, 8)

	report := h.run(t, recs)
	if report.Exported != 1 {
		t.Fatalf("exported = %d, want 1", report.Exported)
	}
	calls := h.writer.written()
	if len(calls) != 1 || !strings.HasSuffix(calls[0].Path, "rec_1.m4a") {
		t.Fatalf("expected a single secondary write, got %+v", calls)
	}
}

func TestExporterToleratesMissingSource(t *testing.T) {
	h := newHarness(t, export.Segmentation())
	recs := recordings(t, false,
		seg("T", "gone.wav", "00:00:00", "00:00:01", "1"),
		seg("T", "here.wav", "00:00:00", "00:00:01", "1"),
	)
	h.loader.errs[h.source("T", "gone.wav")] = failures.Wrap(failures.ErrMissingSource, "fake", "load", "gone", nil)

	report := h.run(t, recs)
	if report.Exported != 1 || report.Skipped != 1 || report.Failed != 0 {
		t.Fatalf("unexpected counts %+v", report)
	}
	if !slices.Equal(report.MissingSources, []string{"T/gone"}) {
		t.Fatalf("missing sources = %v", report.MissingSources)
	}
}

func TestExporterMissingSourceIsFatalWithoutTolerance(t *testing.T) {
	policy := export.Segmentation()
	policy.TolerateMissing = false
	h := newHarness(t, policy)
	recs := recordings(t, false, seg("T", "gone.wav", "00:00:00", "00:00:01", "1"))
	h.loader.errs[h.source("T", "gone.wav")] = failures.Wrap(failures.ErrMissingSource, "fake", "load", "gone", nil)

	_, err := h.exporter.Run(context.Background(), recs, h.audioRoot, h.outRoot)
	if !errors.Is(err, failures.ErrMissingSource) || !failures.IsFatal(err) {
		t.Fatalf("expected fatal missing source, got %v", err)
	}
}

func TestExporterDecodeFailureAffectsOnlyThatRecording(t *testing.T) {
	h := newHarness(t, export.Segmentation())
	recs := recordings(t, false,
		seg("T", "bad.wav", "00:00:00", "00:00:01", "1"),
		seg("T", "bad.wav", "00:00:01", "00:00:01", "2"),
		seg("T", "good.wav", "00:00:00", "00:00:01", "1"),
	)
	h.loader.errs[h.source("T", "bad.wav")] = failures.Wrap(failures.ErrDecode, "fake", "load", "bad", nil)

	report := h.run(t, recs)
	if report.Exported != 1 || report.Failed != 2 {
		t.Fatalf("exported=%d failed=%d", report.Exported, report.Failed)
	}
	for _, entry := range report.Errors {
		if entry.RecordingKey != "T/bad" || entry.Kind != "DecodeFailure" {
			t.Fatalf("unexpected error entry %+v", entry)
		}
	}
}

func TestExporterRequiresSourceSession(t *testing.T) {
	h := newHarness(t, export.Segmentation())
	recs := recordings(t, false, seg("T", "rec.wav", "00:00:00", "00:00:01", "2"))

	_, err := h.exporter.Run(context.Background(), recs, h.audioRoot, h.outRoot)
	if !errors.Is(err, failures.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
	if h.loader.totalLoads() != 0 {
		t.Fatal("nothing should be loaded without a source session")
	}
}

func TestExporterBoundsWorkerPool(t *testing.T) {
	policy := export.Segmentation()
	policy.Workers = 2
	h := newHarness(t, policy)
	h.writer.delay = 5 * time.Millisecond

	var rows []testsupport.CatalogRow
	for _, label := range []string{"1", "2", "3", "4", "5", "6"} {
		rows = append(rows, seg("T", "rec.wav", "00:00:00", "00:00:01", label))
	}
	report := h.run(t, recordings(t, false, rows...))
	if report.Exported != 6 {
		t.Fatalf("exported = %d, want 6", report.Exported)
	}
	if h.writer.maxActive > 2 {
		t.Fatalf("max concurrent writes = %d, want <= 2", h.writer.maxActive)
	}
}

func TestExporterBatchesAreBarriers(t *testing.T) {
	h := newHarness(t, export.Segmentation())
	h.exporter.BatchSize = 1
	recs := recordings(t, false,
		seg("T", "a.wav", "00:00:00", "00:00:01", "1"),
		seg("T", "a.wav", "00:00:01", "00:00:01", "2"),
		seg("T", "b.wav", "00:00:00", "00:00:01", "1"),
	)

	report := h.run(t, recs)
	if report.Batches != 2 {
		t.Fatalf("batches = %d, want 2", report.Batches)
	}
	trace := h.events.list()
	loadB := slices.Index(trace, "load b.wav")
	if loadB < 0 {
		t.Fatalf("b.wav never loaded: %v", trace)
	}
	for i, ev := range trace {
		if strings.HasPrefix(ev, "write a_") && i > loadB {
			t.Fatalf("batch 1 write %q happened after batch 2 load: %v", ev, trace)
		}
	}
}

func TestExporterRejectsDuplicateOutputPaths(t *testing.T) {
	h := newHarness(t, export.Final())
	recs := recordings(t, true,
		testsupport.CatalogRow{
			catalog.FieldFolder: "T", catalog.FieldFilename: "a.wav",
			catalog.FieldStart: "00:00:00", catalog.FieldDuration: "00:00:01",
			catalog.FieldSessionNumber: "1", catalog.FieldExportFilename: "Same",
		},
		testsupport.CatalogRow{
			catalog.FieldFolder: "T", catalog.FieldFilename: "a.wav",
			catalog.FieldStart: "00:00:02", catalog.FieldDuration: "00:00:01",
			catalog.FieldSessionNumber: "2", catalog.FieldExportFilename: "Same",
		},
	)

	report := h.run(t, recs)
	if report.Exported != 1 || report.Failed != 1 {
		t.Fatalf("exported=%d failed=%d", report.Exported, report.Failed)
	}
}

func TestExporterTagsFinalOutputs(t *testing.T) {
	h := newHarness(t, export.Final())
	recs := recordings(t, true, testsupport.CatalogRow{
		catalog.FieldFolder: "T", catalog.FieldFilename: "a.wav",
		catalog.FieldStart: "00:00:00", catalog.FieldDuration: "00:00:01",
		catalog.FieldExportFilename: "Chapter 1", catalog.FieldExportFolder: "Book",
		catalog.FieldExportStatus: "Synchronized", catalog.FieldAuthor: "Author",
	})

	report := h.run(t, recs)
	if report.Exported != 1 {
		t.Fatalf("exported = %d (errors %v)", report.Exported, report.Errors)
	}
	want := exportpath.Paths{
		Primary:   filepath.Join(h.outRoot, "Book", "Chapter 1.wav"),
		Secondary: filepath.Join(filepath.Dir(h.outRoot), "mp3", "Book", "Chapter 1.mp3"),
	}
	calls := h.writer.written()
	if len(calls) != 2 || calls[0].Path != want.Primary || calls[1].Path != want.Secondary {
		t.Fatalf("unexpected writes %+v", calls)
	}
	if calls[1].Tags == nil || calls[1].Tags.Artist != "Author" || calls[1].Tags.Title != "Chapter 1" {
		t.Fatalf("unexpected tags %+v", calls[1].Tags)
	}
}
