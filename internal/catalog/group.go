package catalog

import "strings"

// TranslationSuffix tags session labels derived from the translation session
// column so they never collide with main sessions.
const TranslationSuffix = "_trans"

// DefaultPart is the part label of a session number written without a comma.
const DefaultPart = "1"

// Part is one timecoded fragment of a session.
type Part struct {
	Label string
	Row   Row
}

// Session is an ordered list of parts sharing a label within one recording.
type Session struct {
	Label string
	Parts []Part
}

// FirstRow returns the row of the first part.
func (s Session) FirstRow() (Row, bool) {
	if len(s.Parts) == 0 {
		return Row{}, false
	}
	return s.Parts[0].Row, true
}

// IsTranslation reports whether the session came from the translation column.
func (s Session) IsTranslation() bool {
	return strings.HasSuffix(s.Label, TranslationSuffix)
}

// sessionRef is a parsed "N" or "N,P" session cell.
type sessionRef struct {
	session string
	part    string
}

// rowRefs holds the two independent session families a row can belong to.
type rowRefs struct {
	main        *sessionRef
	translation *sessionRef
}

func parseSessionRef(value string) *sessionRef {
	session, part, hasComma := strings.Cut(strings.TrimSpace(value), ",")
	session = strings.TrimSpace(session)
	part = strings.TrimSpace(part)
	if session == "" {
		return nil
	}
	if !hasComma || part == "" {
		part = DefaultPart
	}
	return &sessionRef{session: session, part: part}
}

func refsFor(row Row) rowRefs {
	refs := rowRefs{main: parseSessionRef(row.SessionNumber)}
	if tr := parseSessionRef(row.TranslationSessionNumber); tr != nil {
		tr.session += TranslationSuffix
		refs.translation = tr
	}
	return refs
}

// sessionBuilder accumulates parts per label while remembering label order.
type sessionBuilder struct {
	order []string
	parts map[string][]Part
}

func (b *sessionBuilder) add(label string, part Part) {
	if b.parts == nil {
		b.parts = make(map[string][]Part)
	}
	if _, ok := b.parts[label]; !ok {
		b.order = append(b.order, label)
	}
	b.parts[label] = append(b.parts[label], part)
}

func (b *sessionBuilder) sessions() []Session {
	if len(b.order) == 0 {
		return nil
	}
	out := make([]Session, 0, len(b.order))
	for _, label := range b.order {
		out = append(out, Session{Label: label, Parts: b.parts[label]})
	}
	return out
}

func groupSessions(rows []Row, renamedExport bool) []Session {
	var b sessionBuilder
	for _, row := range rows {
		refs := refsFor(row)
		if refs.main != nil {
			b.add(refs.main.session, Part{Label: refs.main.part, Row: row})
		}
		if refs.translation != nil {
			b.add(refs.translation.session, Part{Label: refs.translation.part, Row: row})
		}
		if renamedExport && refs.main == nil && refs.translation == nil && strings.TrimSpace(row.ExportFilename) != "" {
			b.add(DefaultPart, Part{Label: DefaultPart, Row: row})
		}
	}
	return b.sessions()
}

// KeepWithExportName drops sessions whose parts carry no export filename, and
// recordings left without sessions.
func KeepWithExportName(recordings []*Recording) []*Recording {
	out := make([]*Recording, 0, len(recordings))
	for _, rec := range recordings {
		var kept []Session
		for _, s := range rec.Sessions {
			for _, p := range s.Parts {
				if strings.TrimSpace(p.Row.ExportFilename) != "" {
					kept = append(kept, s)
					break
				}
			}
		}
		if len(kept) == 0 {
			continue
		}
		out = append(out, &Recording{Key: rec.Key, Rows: rec.Rows, Sessions: kept})
	}
	return out
}
