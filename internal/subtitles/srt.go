package subtitles

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"tapeshelf/internal/fileutil"
)

// Cue is a single subtitle cue. Times are in milliseconds.
type Cue struct {
	Index int
	Start int64
	End   int64
	Text  string
}

// ParseFile reads an SRT file and returns its cues.
func ParseFile(path string) ([]Cue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	return Parse(string(data))
}

// Parse returns the cues of SRT content in file order. Blocks without a valid
// index or timing line are errors rather than skipped, since every cue is a
// slot the transcript must line up with.
func Parse(content string) ([]Cue, error) {
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil
	}

	var cues []Cue
	for n, block := range splitBlocks(content) {
		lines := strings.Split(block, "\n")
		if len(lines) < 2 {
			return nil, fmt.Errorf("cue %d: expected index and timing lines", n+1)
		}
		index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
		if err != nil {
			return nil, fmt.Errorf("cue %d: invalid index %q", n+1, lines[0])
		}
		startText, endText, ok := strings.Cut(lines[1], "-->")
		if !ok {
			return nil, fmt.Errorf("cue %d: invalid timing line %q", n+1, lines[1])
		}
		start, err := parseTimestamp(startText)
		if err != nil {
			return nil, fmt.Errorf("cue %d: %w", n+1, err)
		}
		end, err := parseTimestamp(endText)
		if err != nil {
			return nil, fmt.Errorf("cue %d: %w", n+1, err)
		}
		cues = append(cues, Cue{
			Index: index,
			Start: start,
			End:   end,
			Text:  strings.Join(lines[2:], "\n"),
		})
	}
	return cues, nil
}

// splitBlocks splits on runs of blank lines.
func splitBlocks(content string) []string {
	var blocks []string
	var current []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				blocks = append(blocks, strings.Join(current, "\n"))
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, strings.Join(current, "\n"))
	}
	return blocks
}

// Compose renders cues as SRT, renumbering them from 1.
func Compose(cues []Cue) string {
	var sb strings.Builder
	for i, cue := range cues {
		fmt.Fprintf(&sb, "%d\n", i+1)
		fmt.Fprintf(&sb, "%s --> %s\n", formatTimestamp(cue.Start), formatTimestamp(cue.End))
		sb.WriteString(cue.Text)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// WriteFile writes cues to path via a temporary sibling.
func WriteFile(path string, cues []Cue) error {
	if err := fileutil.WriteAtomic(path, []byte(Compose(cues))); err != nil {
		return fmt.Errorf("write srt: %w", err)
	}
	return nil
}

func parseTimestamp(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	clock, fraction, ok := strings.Cut(value, ",")
	if !ok {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(clock, ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(fraction)
	if errH != nil || errM != nil || errS != nil || errMS != nil || len(fraction) > 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	for i := len(fraction); i < 3; i++ {
		millis *= 10
	}
	return int64(hours*3600+minutes*60+seconds)*1000 + int64(millis), nil
}

func formatTimestamp(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms%1000)
}
