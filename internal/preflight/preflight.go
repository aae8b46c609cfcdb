package preflight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tapeshelf/internal/config"
	"tapeshelf/internal/failures"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every applicable filesystem and remote check for cfg.
// Binary checks are reported separately by CheckSystemDeps.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	if cfg.Paths.Catalog != "" {
		results = append(results, CheckCatalog(cfg.Paths.Catalog, false))
	}
	results = append(results, CheckDirectoryAccess("Audio root", cfg.Paths.AudioRoot, Readable))
	results = append(results, CheckCreatableDirectory("Output root", cfg.Paths.OutputRoot))

	if cfg.Paths.FinalRoot != "" {
		results = append(results, CheckCreatableDirectory("Final root", cfg.Paths.FinalRoot))
	}

	if cfg.Journal.Enabled {
		results = append(results, CheckCreatableDirectory("State directory", cfg.Paths.StateDir))
	}

	if cfg.Sync.SessionsURL != "" {
		results = append(results, CheckSheet(ctx, "Sessions sheet", cfg.Sync.SessionsURL))
	}
	if cfg.Sync.ArchivesURL != "" {
		results = append(results, CheckSheet(ctx, "Archives sheet", cfg.Sync.ArchivesURL))
	}

	return results
}

// CheckExportPaths fails with a configuration error when the audio root is
// unreadable or outputRoot cannot be created.
func CheckExportPaths(cfg *config.Config, outputRoot string) error {
	checks := []Result{
		CheckDirectoryAccess("Audio root", cfg.Paths.AudioRoot, Readable),
		CheckCreatableDirectory("Output root", outputRoot),
	}
	var errs []error
	for _, r := range checks {
		if !r.Passed {
			errs = append(errs, fmt.Errorf("%s: %s", strings.ToLower(r.Name), r.Detail))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return failures.Wrap(failures.ErrConfig, "preflight", "export paths", "", errors.Join(errs...))
}
