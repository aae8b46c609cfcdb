package catalogsync

import (
	"encoding/csv"
	"io"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"tapeshelf/internal/catalog"
	"tapeshelf/internal/exportpath"
)

// Status labels with a fixed position in the listing.
const (
	StatusSynchronized = "Synchronized"
	StatusNeedHelp     = "Need Help"
	StatusIdentified   = "Identified"
	StatusOthers       = "Others"
	// StatusDone replaces Synchronized and Others in the status column.
	StatusDone = "Done"
)

// StatusOrder lists the statuses written first, in order. Other non-empty
// statuses follow alphabetically.
var StatusOrder = []string{StatusSynchronized, StatusNeedHelp, StatusIdentified, StatusOthers}

// Header is the listing's column row.
var Header = []string{
	"status",
	"folder",
	"export_name",
	"duration",
	"author",
	"location_in_text",
	"text_title",
	"text_notes",
	"original_notes",
	"sound_notes",
}

// Entry is one line of the listing.
type Entry struct {
	Status        string
	Folder        string
	ExportName    string
	Duration      string
	Author        string
	Location      string
	TextTitle     string
	TextNotes     string
	OriginalNotes string
	SoundNotes    string
}

func (e Entry) record() []string {
	return []string{
		e.Status,
		e.Folder,
		e.ExportName,
		e.Duration,
		e.Author,
		e.Location,
		e.TextTitle,
		e.TextNotes,
		e.OriginalNotes,
		e.SoundNotes,
	}
}

// Group holds the entries of one export status.
type Group struct {
	Status  string
	Entries []Entry
}

// Build turns parsed recordings into status groups. Every part row with an
// export name contributes an entry keyed by {export folder}/{export name};
// the first entry per key wins. Keys are collated, and a folder repeated on
// consecutive lines is only printed on the first.
func Build(recordings []*catalog.Recording, synchronized string) []Group {
	if synchronized == "" {
		synchronized = StatusSynchronized
	}
	byStatus := make(map[string]map[string]Entry)
	for _, rec := range recordings {
		for _, session := range rec.Sessions {
			for _, part := range session.Parts {
				row := part.Row
				if row.ExportFilename == "" {
					continue
				}
				status := row.ExportStatus
				key := row.ExportFolder + "/" + row.ExportFilename
				entries, ok := byStatus[status]
				if !ok {
					entries = make(map[string]Entry)
					byStatus[status] = entries
				}
				if _, seen := entries[key]; seen {
					continue
				}
				entries[key] = entryFor(row, synchronized)
			}
		}
	}

	coll := collate.New(language.Make("bo"))
	groups := make([]Group, 0, len(byStatus))
	for _, status := range orderStatuses(byStatus) {
		entries := byStatus[status]
		keys := make([]string, 0, len(entries))
		for key := range entries {
			keys = append(keys, key)
		}
		coll.SortStrings(keys)

		group := Group{Status: status, Entries: make([]Entry, 0, len(keys))}
		previous := ""
		for i, key := range keys {
			entry := entries[key]
			folder := entry.Folder
			if i > 0 && folder == previous {
				entry.Folder = ""
			}
			previous = folder
			group.Entries = append(group.Entries, entry)
		}
		groups = append(groups, group)
	}
	return groups
}

func entryFor(row catalog.Row, synchronized string) Entry {
	folder := row.ExportFolder
	if row.ExportStatus != "" && row.ExportStatus != synchronized {
		folder = exportpath.InProgressDir + "/" + row.ExportStatus + "/" + row.ExportFolder
	}
	status := row.ExportStatus
	if status == synchronized || status == StatusOthers {
		status = StatusDone
	}
	duration := ""
	if row.Duration.Valid {
		duration = catalog.FormatClock(row.Duration.Value)
	}
	return Entry{
		Status:        status,
		Folder:        folder,
		ExportName:    row.ExportFilename,
		Duration:      duration,
		Author:        row.Author,
		Location:      row.StartingFrom,
		TextTitle:     row.TextTitle,
		TextNotes:     row.TextNotes,
		OriginalNotes: row.Notes,
		SoundNotes:    row.SoundQuality,
	}
}

// orderStatuses returns the fixed statuses that are present followed by the
// remaining non-empty ones sorted. Rows without a status are not listed.
func orderStatuses(byStatus map[string]map[string]Entry) []string {
	fixed := make(map[string]bool, len(StatusOrder))
	var out []string
	for _, status := range StatusOrder {
		fixed[status] = true
		if _, ok := byStatus[status]; ok {
			out = append(out, status)
		}
	}
	var rest []string
	for status := range byStatus {
		if status == "" || fixed[status] {
			continue
		}
		rest = append(rest, status)
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// Write renders groups as a tab-separated listing with a header row and
// CRLF line endings.
func Write(w io.Writer, groups []Group) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	cw.UseCRLF = true
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, group := range groups {
		for _, entry := range group.Entries {
			if err := cw.Write(entry.record()); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
