package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tapeshelf/internal/catalog"
	"tapeshelf/internal/failures"
	"tapeshelf/internal/testsupport"
)

func sessionRow(file, session string) testsupport.CatalogRow {
	return testsupport.CatalogRow{
		catalog.FieldFolder:        "Tapes",
		catalog.FieldFilename:      file,
		catalog.FieldStart:         "00:00:00",
		catalog.FieldDuration:      "00:00:05",
		catalog.FieldSessionNumber: session,
	}
}

func writeOutputs(t *testing.T, root, stem string) {
	t.Helper()
	testsupport.WriteFile(t, filepath.Join(root, stem, stem+"_1.wav"), 1)
	testsupport.WriteFile(t, filepath.Join(root, stem, stem+"_1.m4a"), 1)
}

func TestExportSegmentsWithNothingPending(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithJournal())
	testsupport.WriteCatalog(t, env.cfg.Paths.Catalog, sessionRow("a.wav", "1"))
	writeOutputs(t, env.cfg.Paths.OutputRoot, "a")

	out, _, err := runCLI(t, []string{"export", "segments"}, env.configPath)
	if err != nil {
		t.Fatalf("export segments: %v", err)
	}
	requireContains(t, out, "files needing export: 0")
	requireContains(t, out, "segments")

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "segments")
}

func TestExportSegmentsToleratesMissingSource(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteCatalog(t, env.cfg.Paths.Catalog, sessionRow("gone.wav", "1"))

	out, _, err := runCLI(t, []string{"export", "segments"}, env.configPath)
	if err != nil {
		t.Fatalf("export segments: %v", err)
	}
	requireContains(t, out, "files needing export: 1")
	requireContains(t, out, "Missing sources")
}

func TestExportMissingSourceIsFatalWhenNotTolerated(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteCatalog(t, env.cfg.Paths.Catalog, sessionRow("gone.wav", "1"))

	_, _, err := runCLI(t, []string{"export", "segments", "--tolerate-missing=false"}, env.configPath)
	if !errors.Is(err, failures.ErrMissingSource) {
		t.Fatalf("expected ErrMissingSource, got %v", err)
	}
	if !failures.IsFatal(err) {
		t.Fatalf("expected a fatal error, got %v", err)
	}
}

func TestExportRejectsMissingAudioRoot(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteCatalog(t, env.cfg.Paths.Catalog, sessionRow("a.wav", "1"))

	missing := filepath.Join(env.baseDir, "nowhere")
	_, _, err := runCLI(t, []string{"export", "segments", "--audio-root", missing}, env.configPath)
	if !errors.Is(err, failures.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestExportOutputRootFlag(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteCatalog(t, env.cfg.Paths.Catalog, sessionRow("a.wav", "1"))
	other := filepath.Join(env.baseDir, "elsewhere")
	writeOutputs(t, other, "a")

	out, _, err := runCLI(t, []string{"export", "segments", "--output-root", other}, env.configPath)
	if err != nil {
		t.Fatalf("export segments: %v", err)
	}
	requireContains(t, out, "files needing export: 0")
	if _, err := os.Stat(filepath.Join(other, ".tapeshelf.lock")); err != nil {
		t.Fatalf("expected lock file under the flagged root: %v", err)
	}
}

func TestScanListsPendingSessions(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteCatalog(t, env.cfg.Paths.Catalog,
		sessionRow("a.wav", "1"),
		sessionRow("b.wav", "1"),
	)
	writeOutputs(t, env.cfg.Paths.OutputRoot, "a")

	out, _, err := runCLI(t, []string{"scan"}, env.configPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, out, "files needing export: 1")
	requireContains(t, out, "Tapes/b")
	requireContains(t, out, "pending")
}

func TestHistoryRequiresJournal(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"history"}, env.configPath); err == nil {
		t.Fatal("expected history to fail with the journal disabled")
	}
}
