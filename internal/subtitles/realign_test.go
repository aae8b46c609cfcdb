package subtitles_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tapeshelf/internal/subtitles"
)

const threeCues = `1
00:00:00,000 --> 00:00:01,000
old one

2
00:00:01,000 --> 00:00:02,000
old two

3
00:00:02,000 --> 00:00:03,000
old three
`

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestRealignReplacesTextAndFillsBlanks(t *testing.T) {
	dir := t.TempDir()
	srtPath := filepath.Join(dir, "talk.srt")
	txtPath := filepath.Join(dir, "talk.txt")
	out := filepath.Join(dir, "out.srt")
	write(t, srtPath, threeCues)
	write(t, txtPath, "  new one \n\nnew three\n")

	n, err := subtitles.Realign(srtPath, txtPath, out)
	if err != nil {
		t.Fatalf("Realign returned error: %v", err)
	}
	if n != 3 {
		t.Fatalf("Realign cues = %d, want 3", n)
	}
	cues, err := subtitles.ParseFile(out)
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	got := []string{cues[0].Text, cues[1].Text, cues[2].Text}
	want := []string{"new one", subtitles.Placeholder, "new three"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("texts = %v, want %v", got, want)
	}
	if cues[2].Start != 2000 || cues[2].End != 3000 {
		t.Fatalf("timing changed: %+v", cues[2])
	}
}

func TestRealignCountMismatch(t *testing.T) {
	dir := t.TempDir()
	srtPath := filepath.Join(dir, "talk.srt")
	txtPath := filepath.Join(dir, "talk.txt")
	write(t, srtPath, threeCues)
	write(t, txtPath, "one\ntwo")

	_, err := subtitles.Realign(srtPath, txtPath, srtPath)
	var mismatch *subtitles.CountMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected CountMismatchError, got %v", err)
	}
	if mismatch.Cues != 3 || mismatch.Lines != 2 {
		t.Fatalf("mismatch = %+v", mismatch)
	}
	data, _ := os.ReadFile(srtPath)
	if string(data) != threeCues {
		t.Fatal("srt must be untouched on mismatch")
	}
}

func TestRealignTree(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "A", "one.srt"), threeCues)
	write(t, filepath.Join(root, "A", "one.txt"), "x\ny\nz")
	write(t, filepath.Join(root, "B", "two.srt"), threeCues)
	write(t, filepath.Join(root, "B", "two.txt"), "only one line")
	write(t, filepath.Join(root, "C", "lonely.srt"), threeCues)

	results, err := subtitles.RealignTree(root)
	if err != nil {
		t.Fatalf("RealignTree returned error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %+v", results)
	}
	if results[0].Err != nil || results[0].Cues != 3 {
		t.Fatalf("first result %+v", results[0])
	}
	if results[1].Err == nil {
		t.Fatal("expected mismatch error for B/two.srt")
	}
	cues, err := subtitles.ParseFile(filepath.Join(root, "A", "one.srt"))
	if err != nil || cues[1].Text != "y" {
		t.Fatalf("A/one.srt not realigned in place: %v %+v", err, cues)
	}
}
