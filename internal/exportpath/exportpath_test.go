package exportpath_test

import (
	"errors"
	"path/filepath"
	"testing"

	"tapeshelf/internal/catalog"
	"tapeshelf/internal/exportpath"
)

func part(label string, row catalog.Row) catalog.Part {
	return catalog.Part{Label: label, Row: row}
}

func TestResolveRawMode(t *testing.T) {
	root := filepath.Join("/srv", "out", "sessions")
	parts := []catalog.Part{part("1", catalog.Row{Folder: "Tape 12", Filename: "side_a.mp3"})}

	got, err := exportpath.Resolve("Tape 12/side_a", "3", parts, root, exportpath.Raw)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	want := exportpath.Paths{
		Primary:   filepath.Join(root, "side_a", "side_a_3.wav"),
		Secondary: filepath.Join(root, "side_a", "side_a_3.m4a"),
	}
	if got != want {
		t.Fatalf("Resolve = %+v, want %+v", got, want)
	}
}

func TestResolveRawModeTranslationLabel(t *testing.T) {
	parts := []catalog.Part{part("1", catalog.Row{Folder: "F", Filename: "rec.wav"})}
	got, err := exportpath.Resolve("F/rec", "2_trans", parts, "/out", exportpath.Raw)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if filepath.Base(got.Primary) != "rec_2_trans.wav" {
		t.Fatalf("primary = %q", got.Primary)
	}
}

func TestResolveFinalMode(t *testing.T) {
	root := filepath.Join("/srv", "final", "audio")
	tests := []struct {
		name          string
		row           catalog.Row
		wantPrimary   string
		wantSecondary string
	}{
		{
			name: "synchronized",
			row: catalog.Row{Filename: "rec.MP3", ExportFilename: "Chapter 1",
				ExportFolder: "Book A", ExportStatus: "Synchronized"},
			wantPrimary:   filepath.Join(root, "Book A", "Chapter 1.mp3"),
			wantSecondary: filepath.Join("/srv", "final", "mp3", "Book A", "Chapter 1.mp3"),
		},
		{
			name: "empty status",
			row: catalog.Row{Filename: "rec.wav", ExportFilename: "Chapter 2",
				ExportFolder: "Book A"},
			wantPrimary:   filepath.Join(root, "Book A", "Chapter 2.wav"),
			wantSecondary: filepath.Join("/srv", "final", "mp3", "Book A", "Chapter 2.mp3"),
		},
		{
			name: "in progress",
			row: catalog.Row{Filename: "rec.wav", ExportFilename: "Chapter 3",
				ExportFolder: "Book A/Part 1", ExportStatus: "Need Help"},
			wantPrimary:   filepath.Join(root, "In Progress", "Need Help", "Book A", "Part 1", "Chapter 3.wav"),
			wantSecondary: filepath.Join("/srv", "final", "mp3", "In Progress", "Need Help", "Book A", "Part 1", "Chapter 3.mp3"),
		},
		{
			name: "unsafe characters",
			row: catalog.Row{Filename: "rec.wav", ExportFilename: "Q: why?",
				ExportFolder: "Book"},
			wantPrimary:   filepath.Join(root, "Book", "Q- why.wav"),
			wantSecondary: filepath.Join("/srv", "final", "mp3", "Book", "Q- why.mp3"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts := []catalog.Part{part("1", tt.row), part("2", catalog.Row{Filename: "other.flac"})}
			got, err := exportpath.Resolve("F/rec", "1", parts, root, exportpath.Final)
			if err != nil {
				t.Fatalf("Resolve returned error: %v", err)
			}
			if got.Primary != tt.wantPrimary {
				t.Errorf("primary = %q, want %q", got.Primary, tt.wantPrimary)
			}
			if got.Secondary != tt.wantSecondary {
				t.Errorf("secondary = %q, want %q", got.Secondary, tt.wantSecondary)
			}
		})
	}
}

func TestResolveFinalModeKeepsSourceExtensionCase(t *testing.T) {
	parts := []catalog.Part{part("1", catalog.Row{Filename: "SIDE_B.WAV", ExportFilename: "Chapter 4", ExportFolder: "Book A"})}
	got, err := exportpath.Resolve("F/SIDE_B", "1", parts, "/srv/final/wav", exportpath.Final)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if filepath.Base(got.Primary) != "Chapter 4.WAV" {
		t.Fatalf("primary = %q, want extension kept as written", got.Primary)
	}
	if filepath.Ext(got.Secondary) != ".mp3" {
		t.Fatalf("secondary = %q", got.Secondary)
	}
}

func TestResolverCustomSynchronizedStatus(t *testing.T) {
	r := exportpath.Resolver{SynchronizedStatus: "Done"}
	parts := []catalog.Part{part("1", catalog.Row{Filename: "a.wav", ExportFilename: "x", ExportStatus: "Done"})}
	got, err := r.Resolve("F/a", "1", parts, "/out/final", exportpath.Final)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got.Primary != filepath.Join("/out/final", "x.wav") {
		t.Fatalf("primary = %q", got.Primary)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	parts := []catalog.Part{part("1", catalog.Row{Filename: "a.wav", ExportFilename: "Café", ExportFolder: "B"})}
	first, err := exportpath.Resolve("F/a", "1", parts, "/out/final", exportpath.Final)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := exportpath.Resolve("F/a", "1", parts, "/out/final", exportpath.Final)
		if err != nil || again != first {
			t.Fatalf("Resolve not deterministic: %+v vs %+v (%v)", again, first, err)
		}
	}
	if filepath.Base(first.Primary) != "Café.wav" {
		t.Fatalf("expected NFC-normalized name, got %q", filepath.Base(first.Primary))
	}
}

func TestResolveErrors(t *testing.T) {
	if _, err := exportpath.Resolve("F/a", "1", nil, "/out", exportpath.Raw); !errors.Is(err, exportpath.ErrNoParts) {
		t.Fatalf("expected ErrNoParts, got %v", err)
	}
	parts := []catalog.Part{part("1", catalog.Row{Filename: "a.wav"})}
	if _, err := exportpath.Resolve("F/a", "1", parts, "/out", exportpath.Final); err == nil {
		t.Fatal("expected error for missing export filename")
	}
}

func TestFolderPathAndSegment(t *testing.T) {
	got := exportpath.FolderPath("/dest", "Lam Rim//../Vol: 1/")
	want := filepath.Join("/dest", "Lam Rim", "Vol- 1")
	if got != want {
		t.Fatalf("FolderPath = %q, want %q", got, want)
	}
	if got := exportpath.Segment(" a?b "); got != "ab" {
		t.Fatalf("Segment = %q, want %q", got, "ab")
	}
}
