package subtitles

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Placeholder replaces blank transcript lines so every cue keeps a slot.
const Placeholder = "---"

// CountMismatchError reports an SRT and transcript that do not line up.
type CountMismatchError struct {
	Cues  int
	Lines int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("line count mismatch: srt has %d cues, txt has %d lines", e.Cues, e.Lines)
}

// Realign replaces the text of each cue in srtPath with the matching line of
// txtPath and writes the result to outPath, which may equal srtPath. A single
// trailing empty line in the transcript is tolerated.
func Realign(srtPath, txtPath, outPath string) (int, error) {
	cues, err := ParseFile(srtPath)
	if err != nil {
		return 0, err
	}
	data, err := os.ReadFile(txtPath)
	if err != nil {
		return 0, fmt.Errorf("read transcript: %w", err)
	}
	text := strings.TrimPrefix(strings.ReplaceAll(string(data), "\r\n", "\n"), "\ufeff")
	lines := strings.Split(text, "\n")
	if len(lines) == len(cues)+1 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) != len(cues) {
		return 0, &CountMismatchError{Cues: len(cues), Lines: len(lines)}
	}

	for i := range cues {
		content := strings.TrimSpace(lines[i])
		if content == "" {
			content = Placeholder
		}
		cues[i].Text = content
	}
	if err := WriteFile(outPath, cues); err != nil {
		return 0, err
	}
	return len(cues), nil
}

// TreeResult is the outcome for one SRT file under RealignTree.
type TreeResult struct {
	SRT  string
	TXT  string
	Cues int
	Err  error
}

// RealignTree realigns, in place, every *.srt under root that has a sibling
// .txt with the same stem. Files without a transcript are not reported. A
// failure on one file does not stop the others.
func RealignTree(root string) ([]TreeResult, error) {
	var srts []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && strings.EqualFold(filepath.Ext(path), ".srt") {
			srts = append(srts, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(srts)

	var results []TreeResult
	for _, srtPath := range srts {
		txtPath := strings.TrimSuffix(srtPath, filepath.Ext(srtPath)) + ".txt"
		if info, err := os.Stat(txtPath); err != nil || !info.Mode().IsRegular() {
			continue
		}
		n, err := Realign(srtPath, txtPath, srtPath)
		results = append(results, TreeResult{SRT: srtPath, TXT: txtPath, Cues: n, Err: err})
	}
	return results, nil
}
