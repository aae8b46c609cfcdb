package preflight

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"tapeshelf/internal/catalog"
	"tapeshelf/internal/config"
	"tapeshelf/internal/failures"
	"tapeshelf/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir, Writable)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"), Readable)
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f, Readable)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckCreatableDirectory(t *testing.T) {
	base := t.TempDir()
	result := CheckCreatableDirectory("out", filepath.Join(base, "a", "b"))
	if !result.Passed {
		t.Fatalf("expected pass for creatable dir, got: %s", result.Detail)
	}
	if result := CheckCreatableDirectory("out", ""); result.Passed {
		t.Fatal("expected failure for unconfigured dir")
	}
}

func TestCheckCatalog(t *testing.T) {
	path := testsupport.WriteCatalog(t, filepath.Join(t.TempDir(), "catalog.tsv"), testsupport.CatalogRow{
		catalog.FieldFolder:        "Tapes",
		catalog.FieldFilename:      "a.wav",
		catalog.FieldStart:         "00:00:00",
		catalog.FieldDuration:      "00:01:00",
		catalog.FieldSessionNumber: "1",
	})
	if result := CheckCatalog(path, false); !result.Passed {
		t.Fatalf("expected catalog to pass, got: %s", result.Detail)
	}

	bad := filepath.Join(t.TempDir(), "bad.tsv")
	if err := os.WriteFile(bad, []byte("Folder\tfilename\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckCatalog(bad, false); result.Passed {
		t.Fatal("expected failure for catalog missing header fields")
	}
}

func TestCheckSheet(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()
	if result := CheckSheet(context.Background(), "sheet", ok.URL); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}

	denied := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer denied.Close()
	if result := CheckSheet(context.Background(), "sheet", denied.URL); result.Passed {
		t.Fatal("expected failure for forbidden sheet")
	}

	if result := CheckSheet(context.Background(), "sheet", ""); result.Passed {
		t.Fatal("expected failure for missing URL")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.AudioRoot = t.TempDir()
	cfg.Paths.OutputRoot = t.TempDir()
	cfg.Journal.Enabled = false

	results := RunAll(context.Background(), &cfg)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
}

func TestRunAll_IncludesSheetsWhenConfigured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Paths.AudioRoot = t.TempDir()
	cfg.Paths.OutputRoot = t.TempDir()
	cfg.Journal.Enabled = false
	cfg.Sync.SessionsURL = srv.URL

	results := RunAll(context.Background(), &cfg)
	found := false
	for _, r := range results {
		if r.Name == "Sessions sheet" {
			found = true
			if !r.Passed {
				t.Errorf("sheet check failed: %s", r.Detail)
			}
		}
	}
	if !found {
		t.Fatal("expected sessions sheet check in results")
	}
}

func TestCheckExportPaths(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.AudioRoot = t.TempDir()
	if err := CheckExportPaths(&cfg, filepath.Join(t.TempDir(), "out")); err != nil {
		t.Fatalf("expected paths to pass, got %v", err)
	}

	cfg.Paths.AudioRoot = filepath.Join(t.TempDir(), "missing")
	err := CheckExportPaths(&cfg, t.TempDir())
	if !errors.Is(err, failures.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}
