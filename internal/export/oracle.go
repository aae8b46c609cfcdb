package export

import (
	"os"

	"tapeshelf/internal/exportpath"
)

// NeedsExport reports whether either output of a session is missing. It only
// stats; audio is never opened.
func NeedsExport(p exportpath.Paths) bool {
	return !isRegularFile(p.Primary) || !isRegularFile(p.Secondary)
}

func isRegularFile(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
