package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	fieldDelimiter = '\t'
	quoteChar      = '|'
)

// recordReader splits tab-separated records that use '|' as the quote
// character. A field opening with '|' runs until the next unpaired '|', may
// contain tabs and newlines, and "||" inside it is a literal bar. Double quotes
// carry no meaning.
type recordReader struct {
	r    *bufio.Reader
	line int
}

func newRecordReader(r io.Reader) *recordReader {
	return &recordReader{r: bufio.NewReader(r)}
}

// Read returns the next record and the 1-based line it started on. Blank lines
// are skipped. io.EOF signals the end of input.
func (rr *recordReader) Read() ([]string, int, error) {
	for {
		record, start, err := rr.readRecord()
		if err != nil {
			return nil, 0, err
		}
		if len(record) == 1 && record[0] == "" {
			continue
		}
		return record, start, nil
	}
}

func (rr *recordReader) readRecord() ([]string, int, error) {
	var (
		fields  []string
		field   strings.Builder
		quoted  bool
		atStart = true
		sawAny  bool
	)
	start := rr.line + 1

	for {
		r, _, err := rr.r.ReadRune()
		if errors.Is(err, io.EOF) {
			if !sawAny {
				return nil, 0, io.EOF
			}
			if quoted {
				return nil, 0, fmt.Errorf("line %d: unterminated %q quoted field", start, quoteChar)
			}
			rr.line++
			return append(fields, field.String()), start, nil
		}
		if err != nil {
			return nil, 0, err
		}
		sawAny = true

		if quoted {
			if r == quoteChar {
				next, _, peekErr := rr.r.ReadRune()
				if peekErr == nil && next == quoteChar {
					field.WriteRune(quoteChar)
					continue
				}
				if peekErr == nil {
					_ = rr.r.UnreadRune()
				}
				quoted = false
				continue
			}
			if r == '\n' {
				rr.line++
			}
			field.WriteRune(r)
			continue
		}

		switch {
		case r == quoteChar && atStart:
			quoted = true
			atStart = false
		case r == fieldDelimiter:
			fields = append(fields, field.String())
			field.Reset()
			atStart = true
		case r == '\r':
			next, _, peekErr := rr.r.ReadRune()
			if peekErr == nil && next != '\n' {
				_ = rr.r.UnreadRune()
			}
			rr.line++
			return append(fields, field.String()), start, nil
		case r == '\n':
			rr.line++
			return append(fields, field.String()), start, nil
		default:
			field.WriteRune(r)
			atStart = false
		}
	}
}
