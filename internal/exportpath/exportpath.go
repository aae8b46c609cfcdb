package exportpath

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"tapeshelf/internal/catalog"
)

const (
	// SynchronizedStatus marks sessions whose editorial work is finished.
	SynchronizedStatus = "Synchronized"
	// InProgressDir nests sessions that are not synchronized yet.
	InProgressDir = "In Progress"
	// SecondaryTreeDir is the sibling tree of the final root holding MP3 copies.
	SecondaryTreeDir = "mp3"

	rawPrimaryExt   = ".wav"
	rawSecondaryExt = ".m4a"
	finalSecondExt  = ".mp3"
)

// ErrNoParts is returned for a session without parts.
var ErrNoParts = errors.New("session has no parts")

// Paths are the two outputs of one session.
type Paths struct {
	Primary   string
	Secondary string
}

// Mode selects the naming scheme.
type Mode int

const (
	// Raw names outputs after the recording and session label.
	Raw Mode = iota
	// Final names outputs after the catalog's export filename and folder.
	Final
)

func (m Mode) String() string {
	if m == Final {
		return "final"
	}
	return "raw"
}

// Resolver resolves output paths. The zero value treats "Synchronized" as
// the finished status.
type Resolver struct {
	SynchronizedStatus string
}

// Resolve computes a session's output paths with the default resolver.
func Resolve(recordingKey, sessionLabel string, parts []catalog.Part, outputRoot string, mode Mode) (Paths, error) {
	return Resolver{}.Resolve(recordingKey, sessionLabel, parts, outputRoot, mode)
}

// Resolve computes a session's output paths.
//
// Raw:   {root}/{tail}/{tail}_{label}.wav and .m4a beside it, where tail is
// the last segment of the recording key.
// Final: {root}/[In Progress/{status}/]{export folder}/{export filename}{ext}
// with ext taken from the first part's source file, and the MP3 copy at
// {dir(root)}/mp3/<same relative path>.mp3.
func (r Resolver) Resolve(recordingKey, sessionLabel string, parts []catalog.Part, outputRoot string, mode Mode) (Paths, error) {
	if len(parts) == 0 {
		return Paths{}, fmt.Errorf("resolve %s session %s: %w", recordingKey, sessionLabel, ErrNoParts)
	}
	if mode == Final {
		return r.resolveFinal(recordingKey, sessionLabel, parts[0].Row, outputRoot)
	}
	return resolveRaw(recordingKey, sessionLabel, outputRoot), nil
}

func resolveRaw(recordingKey, sessionLabel, outputRoot string) Paths {
	tail := cleanSegment(path.Base(recordingKey))
	stem := tail + "_" + cleanSegment(sessionLabel)
	dir := filepath.Join(outputRoot, tail)
	return Paths{
		Primary:   filepath.Join(dir, stem+rawPrimaryExt),
		Secondary: filepath.Join(dir, stem+rawSecondaryExt),
	}
}

func (r Resolver) resolveFinal(recordingKey, sessionLabel string, first catalog.Row, outputRoot string) (Paths, error) {
	name := cleanSegment(first.ExportFilename)
	if name == "" {
		return Paths{}, fmt.Errorf("resolve %s session %s: row %d has no export filename", recordingKey, sessionLabel, first.Line)
	}

	rel := make([]string, 0, 8)
	if status := cleanSegment(first.ExportStatus); status != "" && status != r.synchronized() {
		rel = append(rel, InProgressDir, status)
	}
	rel = append(rel, cleanFolder(first.ExportFolder)...)

	relDir := filepath.Join(rel...)
	root := filepath.Clean(outputRoot)
	ext := first.Extension()
	return Paths{
		Primary:   filepath.Join(root, relDir, name+ext),
		Secondary: filepath.Join(filepath.Dir(root), SecondaryTreeDir, relDir, name+finalSecondExt),
	}, nil
}

func (r Resolver) synchronized() string {
	if s := strings.TrimSpace(r.SynchronizedStatus); s != "" {
		return s
	}
	return SynchronizedStatus
}
