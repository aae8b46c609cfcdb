package catalogsync

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tapeshelf/internal/catalog"
	"tapeshelf/internal/config"
	"tapeshelf/internal/failures"
	"tapeshelf/internal/logging"
)

// Downloaded file names inside the sync download directory.
const (
	SessionsFile = "audio $archives - sessions.tsv"
	ArchivesFile = "new_archives.tsv"
)

// Result summarizes a sync.
type Result struct {
	SessionsPath string
	ArchivesPath string
	OutputPath   string
	Groups       []Group
}

// Entries counts the listing lines written.
func (r Result) Entries() int {
	total := 0
	for _, g := range r.Groups {
		total += len(g.Entries)
	}
	return total
}

// Syncer downloads the sheets and writes the listing.
type Syncer struct {
	Downloader *Downloader
	Logger     *slog.Logger
}

// New builds a Syncer from the sync configuration.
func New(cfg *config.Config, logger *slog.Logger) *Syncer {
	timeout := time.Duration(cfg.Sync.RequestTimeout) * time.Second
	return &Syncer{
		Downloader: NewDownloader(timeout),
		Logger:     logging.NewComponentLogger(logger, "catalog-sync"),
	}
}

// Run downloads the configured exports into the download directory and
// writes the archive listing to the configured output path.
func (s *Syncer) Run(ctx context.Context, cfg *config.Config) (Result, error) {
	if strings.TrimSpace(cfg.Sync.SessionsURL) == "" {
		return Result{}, failures.Wrap(failures.ErrConfig, "catalog sync", "configure", "sync.sessions_url is not set", nil)
	}
	logger := s.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	result := Result{
		SessionsPath: filepath.Join(cfg.Sync.DownloadDir, SessionsFile),
		OutputPath:   cfg.Sync.OutputPath,
	}
	if err := s.Downloader.Fetch(ctx, cfg.Sync.SessionsURL, result.SessionsPath); err != nil {
		return Result{}, err
	}
	logger.Info("sessions sheet downloaded", logging.String("path", result.SessionsPath))

	if url := strings.TrimSpace(cfg.Sync.ArchivesURL); url != "" {
		result.ArchivesPath = filepath.Join(cfg.Sync.DownloadDir, ArchivesFile)
		if err := s.Downloader.Fetch(ctx, url, result.ArchivesPath); err != nil {
			return Result{}, err
		}
		logger.Info("archives sheet downloaded", logging.String("path", result.ArchivesPath))
	}

	cat, err := catalog.Parse(result.SessionsPath, true)
	if err != nil {
		return Result{}, err
	}
	result.Groups = Build(catalog.KeepWithExportName(cat.Processed()), cfg.Export.SynchronizedStatus)

	if err := writeListing(result.OutputPath, result.Groups); err != nil {
		return Result{}, err
	}
	logger.Info("archive listing written",
		logging.String("path", result.OutputPath),
		logging.Int("entries", result.Entries()),
		logging.Int("statuses", len(result.Groups)),
	)
	return result, nil
}

func writeListing(path string, groups []Group) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create listing dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	if err := Write(file, groups); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write listing: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	return os.Rename(tmp, path)
}
