package audio

import (
	"fmt"

	"tapeshelf/internal/catalog"
	"tapeshelf/internal/failures"
)

// Assemble concatenates [start, start+duration) of src for each part, in the
// order given. Parts keep catalog row order; labels are never sorted.
func Assemble(src *Buffer, parts []catalog.Part) (*Buffer, error) {
	if src == nil {
		return nil, failures.Wrap(failures.ErrDecode, "assembler", "assemble", "no source audio", nil)
	}
	for _, p := range parts {
		if !p.Row.Start.Valid {
			return nil, missingTimecode(p, catalog.FieldStart)
		}
		if !p.Row.Duration.Valid {
			return nil, missingTimecode(p, catalog.FieldDuration)
		}
	}

	out := NewBuffer(src.SampleRate, src.Channels)
	for _, p := range parts {
		if err := out.Append(src.Slice(p.Row.Start.Value, p.Row.Duration.Value)); err != nil {
			return nil, failures.Wrap(failures.ErrDecode, "assembler", "append", "part "+p.Label, err)
		}
	}
	return out, nil
}

func missingTimecode(p catalog.Part, field string) error {
	msg := fmt.Sprintf("part %s (line %d) has no %s", p.Label, p.Row.Line, field)
	return failures.Wrap(failures.ErrMissingTimecode, "assembler", "assemble", msg, nil)
}
