// Package consolidate gathers exported sessions into a tree named by their
// session filenames, alongside subtitles and a title file.
package consolidate

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"tapeshelf/internal/catalog"
	"tapeshelf/internal/exportpath"
	"tapeshelf/internal/fileutil"
	"tapeshelf/internal/logging"
)

// Result of one consolidated file.
type Result int

const (
	Copied Result = iota
	Existing
	Missing
	Failed
)

func (r Result) String() string {
	switch r {
	case Copied:
		return "copied"
	case Existing:
		return "exists"
	case Missing:
		return "missing"
	default:
		return "error"
	}
}

// Item is one destination file.
type Item struct {
	RecordingKey string
	Session      string
	Source       string
	Dest         string
	Result       Result
	Err          error
}

// Report totals a consolidation pass.
type Report struct {
	Items    []Item
	Copied   int
	Existing int
	Missing  int
	Failed   int
}

func (r *Report) add(item Item) {
	r.Items = append(r.Items, item)
	switch item.Result {
	case Copied:
		r.Copied++
	case Existing:
		r.Existing++
	case Missing:
		r.Missing++
	default:
		r.Failed++
	}
}

// Consolidator copies final exports into Dest.
type Consolidator struct {
	// Root is the final export root the sessions were written under.
	Root     string
	Dest     string
	Resolver exportpath.Resolver
	Logger   *slog.Logger
}

// Run handles every session whose first row names a session filename. The
// exported audio lands at {dest}/{export folder}/{session filename}{ext},
// the .srt sibling next to it when present, and the session title in a
// .txt file. Existing destination files are never replaced.
func (c *Consolidator) Run(ctx context.Context, recordings []*catalog.Recording) (Report, error) {
	logger := logging.NewComponentLogger(c.Logger, "consolidate")
	var report Report
	for _, rec := range recordings {
		for _, session := range rec.Sessions {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			first, ok := session.FirstRow()
			if !ok || strings.TrimSpace(first.SessionFilename) == "" {
				continue
			}
			items := c.session(rec.Key, session, first)
			for _, item := range items {
				attrs := []logging.Attr{
					logging.String(logging.FieldRecording, item.RecordingKey),
					logging.String(logging.FieldSession, item.Session),
					logging.String("dest", item.Dest),
					logging.String("result", item.Result.String()),
				}
				switch item.Result {
				case Failed:
					logging.WarnWithContext(logger, "consolidate failed", "consolidate_failed",
						append(attrs, logging.Error(item.Err), logging.String(logging.FieldErrorHint, "check destination permissions and free space"))...)
				case Missing:
					logger.Info("export not found", logging.Args(append(attrs, logging.String("source", item.Source))...)...)
				default:
					logger.Debug("consolidated", logging.Args(attrs...)...)
				}
				report.add(item)
			}
		}
	}
	logger.Info("consolidation finished",
		logging.Int("copied", report.Copied),
		logging.Int("existing", report.Existing),
		logging.Int("missing", report.Missing),
		logging.Int("failed", report.Failed),
	)
	return report, nil
}

func (c *Consolidator) session(key string, session catalog.Session, first catalog.Row) []Item {
	base := Item{RecordingKey: key, Session: session.Label}

	paths, err := c.Resolver.Resolve(key, session.Label, session.Parts, c.Root, exportpath.Final)
	if err != nil {
		base.Result = Failed
		base.Err = err
		return []Item{base}
	}

	stem := filepath.Join(exportpath.FolderPath(c.Dest, first.ExportFolder), exportpath.Segment(first.SessionFilename))
	ext := filepath.Ext(paths.Primary)

	audio := base
	audio.Source = paths.Primary
	audio.Dest = stem + ext
	if !fileutil.Exists(paths.Primary) {
		audio.Result = Missing
		return []Item{audio}
	}
	items := []Item{copyItem(audio)}

	srt := strings.TrimSuffix(paths.Primary, ext) + ".srt"
	if fileutil.Exists(srt) {
		sub := base
		sub.Source = srt
		sub.Dest = stem + ".srt"
		items = append(items, copyItem(sub))
	}

	if title := strings.TrimSpace(first.SessionTitle); title != "" {
		txt := base
		txt.Dest = stem + ".txt"
		items = append(items, writeTitle(txt, title))
	}
	return items
}

func copyItem(item Item) Item {
	copied, err := fileutil.CopyNew(item.Source, item.Dest)
	switch {
	case err != nil:
		item.Result = Failed
		item.Err = fmt.Errorf("copy %s: %w", item.Source, err)
	case copied:
		item.Result = Copied
	default:
		item.Result = Existing
	}
	return item
}

func writeTitle(item Item, title string) Item {
	if fileutil.Exists(item.Dest) {
		item.Result = Existing
		return item
	}
	if err := fileutil.WriteAtomic(item.Dest, []byte(title)); err != nil {
		item.Result = Failed
		item.Err = fmt.Errorf("write title: %w", err)
		return item
	}
	item.Result = Copied
	return item
}
