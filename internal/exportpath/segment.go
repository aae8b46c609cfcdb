package exportpath

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// segmentReplacer replaces characters that cannot appear in one path segment.
var segmentReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// cleanSegment NFC-normalizes a catalog value and strips characters that are
// unsafe in a single path segment.
func cleanSegment(value string) string {
	value = strings.TrimSpace(norm.NFC.String(value))
	if value == "" {
		return ""
	}
	return strings.TrimSpace(segmentReplacer.Replace(value))
}

// cleanFolder keeps slash-separated nesting in an export folder while
// cleaning each segment. Empty and dot segments are dropped.
func cleanFolder(value string) []string {
	raw := strings.Split(strings.ReplaceAll(value, "\\", "/"), "/")
	out := make([]string, 0, len(raw))
	for _, seg := range raw {
		seg = cleanSegment(seg)
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		out = append(out, seg)
	}
	return out
}

// Segment cleans a catalog value for use as one file or directory name.
func Segment(value string) string {
	return cleanSegment(value)
}

// FolderPath joins the cleaned segments of an export folder under root.
func FolderPath(root, folder string) string {
	return filepath.Join(append([]string{root}, cleanFolder(folder)...)...)
}
