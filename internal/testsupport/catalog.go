package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tapeshelf/internal/catalog"
)

// CatalogRow holds catalog cells keyed by header name. Unset cells are empty.
type CatalogRow map[string]string

// CatalogHeader returns the full catalog header in spreadsheet order.
func CatalogHeader() []string {
	return []string{
		catalog.FieldFolder,
		catalog.FieldFilename,
		catalog.FieldStart,
		catalog.FieldEnd,
		catalog.FieldDuration,
		catalog.FieldSessionNumber,
		catalog.FieldTranslationSessionNumber,
		catalog.FieldExportFilename,
		catalog.FieldExportFolder,
		catalog.FieldExportStatus,
		catalog.FieldTextTitle,
		catalog.FieldAuthor,
		catalog.FieldStartingFrom,
		catalog.FieldSoundQuality,
		catalog.FieldTextNotes,
		catalog.FieldNotes,
		catalog.FieldSessionFilename,
		catalog.FieldSessionTitle,
	}
}

// CatalogTSV renders rows as a tab-separated catalog with a full header.
func CatalogTSV(rows ...CatalogRow) string {
	header := CatalogHeader()
	var b strings.Builder
	b.WriteString(strings.Join(header, "\t"))
	b.WriteByte('\n')
	for _, row := range rows {
		cells := make([]string, len(header))
		for i, name := range header {
			cells[i] = row[name]
		}
		b.WriteString(strings.Join(cells, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteCatalog writes rows to path and returns it.
func WriteCatalog(t testing.TB, path string, rows ...CatalogRow) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(CatalogTSV(rows...)), 0o644); err != nil {
		t.Fatalf("write catalog %s: %v", path, err)
	}
	return path
}
