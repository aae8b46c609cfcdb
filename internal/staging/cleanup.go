package staging

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"tapeshelf/internal/fileutil"
	"tapeshelf/internal/logging"
)

// PartialInfo describes one leftover partial file.
type PartialInfo struct {
	Path    string
	ModTime time.Time
	Size    int64
}

// CleanResult contains the outcome of a cleanup pass.
type CleanResult struct {
	Removed []string
	Kept    []string
	Errors  []CleanupError
}

// CleanupError pairs a file path with its removal error.
type CleanupError struct {
	Path  string
	Error error
}

// ListPartials returns every *.part file under root sorted by path. A missing
// root yields no entries.
func ListPartials(root string) ([]PartialInfo, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, nil
	}

	var partials []PartialInfo
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == root {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), fileutil.PartSuffix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		partials = append(partials, PartialInfo{Path: path, ModTime: info.ModTime(), Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(partials, func(i, j int) bool { return partials[i].Path < partials[j].Path })
	return partials, nil
}

// CleanStale removes partial files under root last modified more than maxAge
// ago. Younger files are reported as kept. With dryRun set nothing is removed
// and every stale file is reported as removed.
func CleanStale(ctx context.Context, root string, maxAge time.Duration, dryRun bool, logger *slog.Logger) (CleanResult, error) {
	var result CleanResult
	partials, err := ListPartials(root)
	if err != nil {
		return result, err
	}

	cutoff := time.Now().Add(-maxAge)
	for _, p := range partials {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if p.ModTime.After(cutoff) {
			result.Kept = append(result.Kept, p.Path)
			continue
		}
		if dryRun {
			result.Removed = append(result.Removed, p.Path)
			continue
		}
		if err := os.Remove(p.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			result.Errors = append(result.Errors, CleanupError{Path: p.Path, Error: err})
			logging.WarnWithContext(logger, "failed to remove partial export file", "partial_cleanup_failed",
				logging.String("path", p.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check output root permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, p.Path)
		if logger != nil {
			logger.Info("removed partial export file",
				logging.String("path", p.Path),
				logging.Duration("age", time.Since(p.ModTime)),
				logging.String(logging.FieldEventType, "partial_cleanup"),
			)
		}
	}
	return result, nil
}
