package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"tapeshelf/internal/failures"
)

// TimecodeError reports an unparsable start/end/duration cell.
type TimecodeError struct {
	Line  int
	Field string
	Err   error
}

func (e *TimecodeError) Error() string {
	return fmt.Sprintf("line %d: field %q: %v", e.Line, e.Field, e.Err)
}

func (e *TimecodeError) Unwrap() error { return e.Err }

// Recording groups the rows that point into one source recording.
type Recording struct {
	Key      string
	Rows     []Row
	Sessions []Session
}

// Session returns the session with the given label.
func (r *Recording) Session(label string) (Session, bool) {
	if r == nil {
		return Session{}, false
	}
	for _, s := range r.Sessions {
		if s.Label == label {
			return s, true
		}
	}
	return Session{}, false
}

// Catalog is the parsed catalog. Recordings keep the order in which their
// first row appeared.
type Catalog struct {
	Path          string
	RenamedExport bool

	recordings []*Recording
	index      map[string]*Recording
}

// Recordings returns every recording in the catalog, with or without sessions.
func (c *Catalog) Recordings() []*Recording {
	if c == nil {
		return nil
	}
	return c.recordings
}

// Recording looks a recording up by key.
func (c *Catalog) Recording(key string) (*Recording, bool) {
	if c == nil {
		return nil, false
	}
	rec, ok := c.index[key]
	return rec, ok
}

// Processed returns the recordings that produced at least one session, in
// catalog order.
func (c *Catalog) Processed() []*Recording {
	if c == nil {
		return nil
	}
	out := make([]*Recording, 0, len(c.recordings))
	for _, rec := range c.recordings {
		if len(rec.Sessions) > 0 {
			out = append(out, rec)
		}
	}
	return out
}

// RowCount returns the number of data rows parsed.
func (c *Catalog) RowCount() int {
	total := 0
	for _, rec := range c.Recordings() {
		total += len(rec.Rows)
	}
	return total
}

// Parse reads the catalog at path. renamedExport enables the synthetic
// session "1" for rows that carry an export filename but no session numbers.
func Parse(path string, renamedExport bool) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, failures.Wrap(failures.ErrConfig, "catalog", "open", path, err)
	}
	defer file.Close()

	cat, err := Read(file, renamedExport)
	if err != nil {
		return nil, err
	}
	cat.Path = path
	return cat, nil
}

// Read parses a catalog from r. See Parse.
func Read(r io.Reader, renamedExport bool) (*Catalog, error) {
	reader := newRecordReader(r)
	header, _, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, failures.Wrap(failures.ErrConfig, "catalog", "header", "catalog is empty", nil)
	}
	if err != nil {
		return nil, failures.Wrap(failures.ErrParse, "catalog", "header", "", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	cat := &Catalog{
		RenamedExport: renamedExport,
		index:         make(map[string]*Recording),
	}
	for {
		record, line, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, failures.Wrap(failures.ErrParse, "catalog", "read", "", err)
		}
		values := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				values[name] = record[i]
			}
		}
		row, err := rowFromRecord(values, line)
		if err != nil {
			return nil, failures.Wrap(failures.ErrParse, "catalog", "timecode", "", err)
		}
		cat.add(row)
	}

	for _, rec := range cat.recordings {
		rec.Sessions = groupSessions(rec.Rows, renamedExport)
	}
	return cat, nil
}

func (c *Catalog) add(row Row) {
	key := row.RecordingKey()
	rec, ok := c.index[key]
	if !ok {
		rec = &Recording{Key: key}
		c.index[key] = rec
		c.recordings = append(c.recordings, rec)
	}
	rec.Rows = append(rec.Rows, row)
}

func checkHeader(header []string) error {
	present := make(map[string]struct{}, len(header))
	for _, name := range header {
		present[name] = struct{}{}
	}
	var missing []string
	for _, name := range RequiredFields {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return failures.Wrap(failures.ErrConfig, "catalog", "header",
			fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")), nil)
	}
	return nil
}
