// Package manifest lists the files of an archive tree for the dashboard.
package manifest

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Entry is one listed file.
type Entry struct {
	Name   string
	Folder string
}

// List walks root and returns its regular files sorted by path. Dotfiles are
// skipped, as are files whose folder (relative to root, slash separated)
// contains "@", which marks NAS system folders such as @eaDir.
func List(root string) ([]Entry, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(paths)

	entries := make([]Entry, 0, len(paths))
	for _, path := range paths {
		rel, err := filepath.Rel(root, filepath.Dir(path))
		if err != nil {
			return nil, fmt.Errorf("relative path of %s: %w", path, err)
		}
		folder := filepath.ToSlash(rel)
		if folder == "." {
			folder = ""
		}
		if strings.Contains(folder, "@") {
			continue
		}
		entries = append(entries, Entry{Name: filepath.Base(path), Folder: folder})
	}
	return entries, nil
}

// Write emits one "name<TAB>folder" line per entry, without a header or a
// trailing newline.
func Write(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	for i, e := range entries {
		if i > 0 {
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString(e.Name + "\t" + e.Folder); err != nil {
			return err
		}
	}
	return bw.Flush()
}
