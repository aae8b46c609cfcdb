package catalogsync

import (
	"bytes"
	"strings"
	"testing"

	"tapeshelf/internal/catalog"
	"tapeshelf/internal/testsupport"
)

func parseRows(t *testing.T, rows ...testsupport.CatalogRow) []*catalog.Recording {
	t.Helper()
	cat, err := catalog.Read(strings.NewReader(testsupport.CatalogTSV(rows...)), true)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	return catalog.KeepWithExportName(cat.Processed())
}

func catalogRow(folder, file, status, exportFolder, exportName string) testsupport.CatalogRow {
	return testsupport.CatalogRow{
		catalog.FieldFolder:         folder,
		catalog.FieldFilename:       file,
		catalog.FieldStart:          "00:00:00",
		catalog.FieldDuration:       "01:02:03",
		catalog.FieldExportStatus:   status,
		catalog.FieldExportFolder:   exportFolder,
		catalog.FieldExportFilename: exportName,
		catalog.FieldAuthor:         "Author",
	}
}

func TestBuildGroupsByStatus(t *testing.T) {
	recs := parseRows(t,
		catalogRow("Tapes", "a.wav", "Identified", "Lam Rim", "02"),
		catalogRow("Tapes", "b.wav", "Synchronized", "Lam Rim", "01"),
		catalogRow("Tapes", "c.wav", "Identified", "Lam Rim", "01"),
		catalogRow("Tapes", "d.wav", "Others", "Misc", "x"),
		catalogRow("Tapes", "e.wav", "Need Help", "Misc", "y"),
		catalogRow("Tapes", "f.wav", "Proofing", "Misc", "z"),
		catalogRow("Tapes", "g.wav", "Archived", "Misc", "w"),
	)

	groups := Build(recs, "")
	var order []string
	for _, g := range groups {
		order = append(order, g.Status)
	}
	want := []string{"Synchronized", "Need Help", "Identified", "Others", "Archived", "Proofing"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Fatalf("status order = %v, want %v", order, want)
	}

	sync := groups[0].Entries[0]
	if sync.Status != StatusDone || sync.Folder != "Lam Rim" || sync.Duration != "1:02:03" {
		t.Fatalf("unexpected synchronized entry %+v", sync)
	}
	if groups[3].Entries[0].Status != StatusDone {
		t.Fatalf("Others should be listed as Done, got %q", groups[3].Entries[0].Status)
	}

	identified := groups[2].Entries
	if len(identified) != 2 {
		t.Fatalf("expected 2 identified entries, got %d", len(identified))
	}
	if identified[0].ExportName != "01" || identified[1].ExportName != "02" {
		t.Fatalf("identified entries not sorted: %+v", identified)
	}
	if identified[0].Folder != "In Progress/Identified/Lam Rim" {
		t.Fatalf("first folder = %q", identified[0].Folder)
	}
	if identified[1].Folder != "" {
		t.Fatalf("repeated folder should be blank, got %q", identified[1].Folder)
	}
	if identified[0].Status != "Identified" {
		t.Fatalf("status = %q", identified[0].Status)
	}
}

func TestBuildKeepsFirstEntryPerKey(t *testing.T) {
	first := catalogRow("Tapes", "a.wav", "Identified", "Lam Rim", "01")
	first[catalog.FieldAuthor] = "First"
	second := catalogRow("Tapes", "b.wav", "Identified", "Lam Rim", "01")
	second[catalog.FieldAuthor] = "Second"

	groups := Build(parseRows(t, first, second), "")
	if len(groups) != 1 || len(groups[0].Entries) != 1 {
		t.Fatalf("expected a single entry, got %+v", groups)
	}
	if groups[0].Entries[0].Author != "First" {
		t.Fatalf("author = %q, want First", groups[0].Entries[0].Author)
	}
}

func TestBuildSkipsEmptyStatus(t *testing.T) {
	groups := Build(parseRows(t, catalogRow("Tapes", "a.wav", "", "Lam Rim", "01")), "")
	if len(groups) != 0 {
		t.Fatalf("expected no groups, got %+v", groups)
	}
}

func TestWrite(t *testing.T) {
	groups := []Group{{
		Status: "Identified",
		Entries: []Entry{{
			Status:     "Identified",
			Folder:     "Lam Rim",
			ExportName: "01",
			Duration:   "0:10:00",
		}},
	}}
	var buf bytes.Buffer
	if err := Write(&buf, groups); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	want := strings.Join(Header, "\t") + "\r\n" + "Identified\tLam Rim\t01\t0:10:00\t\t\t\t\t\t\r\n"
	if buf.String() != want {
		t.Fatalf("listing = %q, want %q", buf.String(), want)
	}
}
