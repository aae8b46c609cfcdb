// Package durations totals the playing time of the audio files in a tree.
package durations

import (
	"context"
	"fmt"
	"io/fs"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"tapeshelf/internal/media/ffprobe"
)

// AudioExtensions are the file types that are measured.
var AudioExtensions = []string{".mp3", ".wav", ".flac", ".aac", ".ogg", ".wma", ".m4a", ".opus"}

// Options filter the walk.
type Options struct {
	// ExcludeSuffixes drops files whose path ends with any of these.
	ExcludeSuffixes []string
	// ExcludeFolders drops files with any path segment equal to one of these.
	ExcludeFolders []string
	// FFprobe is the probe binary; empty means "ffprobe".
	FFprobe string
	// Workers bounds concurrent probes.
	Workers int
}

// File is one measured file.
type File struct {
	Path    string
	Seconds float64
}

// Result is the walk outcome.
type Result struct {
	Files        []File
	Skipped      []string
	TotalSeconds float64
}

// Sum measures every audio file under root. Files that cannot be probed or
// report no positive duration are listed in Skipped.
func Sum(ctx context.Context, root string, opts Options) (Result, error) {
	paths, err := collect(root, opts)
	if err != nil {
		return Result{}, err
	}

	seconds := make([]float64, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Workers, 1))
	var mu sync.Mutex
	for i, path := range paths {
		g.Go(func() error {
			probe, err := ffprobe.Inspect(gctx, opts.FFprobe, path)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				return nil
			}
			d := probe.DurationSeconds()
			if math.IsNaN(d) {
				return nil
			}
			mu.Lock()
			seconds[i] = d
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var result Result
	for i, path := range paths {
		if seconds[i] <= 0 {
			result.Skipped = append(result.Skipped, path)
			continue
		}
		result.Files = append(result.Files, File{Path: path, Seconds: seconds[i]})
		result.TotalSeconds += seconds[i]
	}
	return result, nil
}

func collect(root string, opts Options) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() || !isAudio(path) || excluded(root, path, opts) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func isAudio(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range AudioExtensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

func excluded(root, path string, opts Options) bool {
	for _, suffix := range opts.ExcludeSuffixes {
		if suffix != "" && strings.HasSuffix(path, suffix) {
			return true
		}
	}
	if len(opts.ExcludeFolders) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil {
		return false
	}
	for _, segment := range strings.Split(filepath.ToSlash(rel), "/") {
		for _, folder := range opts.ExcludeFolders {
			if segment == folder {
				return true
			}
		}
	}
	return false
}

// Format renders seconds as HH:MM:SS, or MM:SS under an hour.
func Format(seconds float64) string {
	total := int64(seconds)
	h := total / 3600
	m := total % 3600 / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
