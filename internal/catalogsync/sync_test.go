package catalogsync_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tapeshelf/internal/catalog"
	"tapeshelf/internal/catalogsync"
	"tapeshelf/internal/failures"
	"tapeshelf/internal/testsupport"
)

func TestSyncerRun(t *testing.T) {
	sessions := testsupport.CatalogTSV(testsupport.CatalogRow{
		catalog.FieldFolder:         "Tapes",
		catalog.FieldFilename:       "a.wav",
		catalog.FieldStart:          "00:00:00",
		catalog.FieldDuration:       "00:30:00",
		catalog.FieldExportStatus:   "Synchronized",
		catalog.FieldExportFolder:   "Lam Rim",
		catalog.FieldExportFilename: "01",
	})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sessions":
			_, _ = w.Write([]byte(sessions))
		case "/archives":
			_, _ = w.Write([]byte("archives\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	cfg.Sync.SessionsURL = server.URL + "/sessions"
	cfg.Sync.ArchivesURL = server.URL + "/archives"
	cfg.Sync.DownloadDir = filepath.Join(base, "input")
	cfg.Sync.OutputPath = filepath.Join(base, "listing", "new_archives.tsv")

	result, err := catalogsync.New(cfg, nil).Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Entries() != 1 {
		t.Fatalf("entries = %d, want 1", result.Entries())
	}
	if _, err := os.Stat(filepath.Join(base, "input", catalogsync.ArchivesFile)); err != nil {
		t.Fatalf("archives sheet not downloaded: %v", err)
	}
	data, err := os.ReadFile(cfg.Sync.OutputPath)
	if err != nil {
		t.Fatalf("read listing: %v", err)
	}
	if !strings.Contains(string(data), "Done\tLam Rim\t01\t0:30:00") {
		t.Fatalf("listing missing entry: %q", data)
	}
}

func TestSyncerRunRequiresSessionsURL(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Sync.SessionsURL = ""
	_, err := catalogsync.New(cfg, nil).Run(context.Background(), cfg)
	if !errors.Is(err, failures.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestFetchReportsHTTPStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "sheet.tsv")
	err := catalogsync.NewDownloader(0).Fetch(context.Background(), server.URL, dest)
	if !errors.Is(err, failures.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	if !strings.Contains(err.Error(), "410") {
		t.Fatalf("error should carry the status code: %v", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Fatalf("destination should not exist, stat err %v", statErr)
	}
}
