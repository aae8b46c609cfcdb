package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"tapeshelf/internal/audio"
	"tapeshelf/internal/catalog"
	"tapeshelf/internal/config"
	"tapeshelf/internal/exportpath"
	"tapeshelf/internal/failures"
	"tapeshelf/internal/logging"
)

// LockFileName guards an output root against concurrent runs.
const LockFileName = ".tapeshelf.lock"

// Deps are the collaborators a run needs. Nil Loader and Writer default to
// the ffmpeg implementations configured from cfg.
type Deps struct {
	Loader   audio.Loader
	Writer   audio.Writer
	Recorder Recorder
	Logger   *slog.Logger
}

// OutputRoot returns the root the policy writes under.
func OutputRoot(cfg *config.Config, policy Policy) string {
	if policy.Mode == exportpath.Final && cfg.Paths.FinalRoot != "" {
		return cfg.Paths.FinalRoot
	}
	return cfg.Paths.OutputRoot
}

// Run parses the catalog, locks the output root and exports.
func Run(ctx context.Context, cfg *config.Config, policy Policy, deps Deps) (Report, error) {
	if err := cfg.RequireExportPaths(); err != nil {
		return Report{Policy: policy.Name}, err
	}
	cat, err := catalog.Parse(cfg.Paths.Catalog, policy.RenamedExport)
	if err != nil {
		return Report{Policy: policy.Name}, err
	}

	outputRoot := OutputRoot(cfg, policy)
	unlock, err := LockOutputRoot(outputRoot)
	if err != nil {
		return Report{Policy: policy.Name}, err
	}
	defer unlock()

	if deps.Loader == nil {
		deps.Loader = audio.NewLoader(cfg.FFmpegBinary(), cfg.FFprobeBinary(), deps.Logger)
	}
	if deps.Writer == nil {
		w := audio.NewWriter(cfg.FFmpegBinary(), deps.Logger)
		w.AACBitrate = cfg.Export.AACBitrate
		w.AACQuality = cfg.Export.AACQuality
		w.MP3Bitrate = cfg.Export.MP3Bitrate
		deps.Writer = w
	}

	ctx = logging.WithPolicy(ctx, policy.Name)
	exporter := &Exporter{
		Loader:    deps.Loader,
		Writer:    deps.Writer,
		Resolver:  exportpath.Resolver{SynchronizedStatus: cfg.Export.SynchronizedStatus},
		Policy:    policy,
		BatchSize: cfg.Export.BatchSize,
		Recorder:  deps.Recorder,
		Logger:    deps.Logger,
	}
	return exporter.Run(ctx, cat.Processed(), cfg.Paths.AudioRoot, outputRoot)
}

// ScanCatalog parses the catalog for policy and checks which sessions still
// need export under the policy's output root.
func ScanCatalog(cfg *config.Config, policy Policy) (ScanResult, error) {
	cat, err := catalog.Parse(cfg.Paths.Catalog, policy.RenamedExport)
	if err != nil {
		return ScanResult{}, err
	}
	resolver := exportpath.Resolver{SynchronizedStatus: cfg.Export.SynchronizedStatus}
	return Scan(cat.Processed(), OutputRoot(cfg, policy), resolver, policy.Mode), nil
}

// LockOutputRoot takes the per-tree export lock, creating root if needed. The
// returned func releases it.
func LockOutputRoot(root string) (func(), error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, failures.Wrap(failures.ErrConfig, "export", "create output root", root, err)
	}
	lock := flock.New(filepath.Join(root, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, failures.Wrap(failures.ErrConfig, "export", "lock output root", root, err)
	}
	if !locked {
		msg := fmt.Sprintf("another export is writing to %s", root)
		return nil, failures.Wrap(failures.ErrConfig, "export", "lock output root", msg, nil)
	}
	return func() { _ = lock.Unlock() }, nil
}
