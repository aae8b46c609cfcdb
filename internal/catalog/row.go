package catalog

import (
	"path"
	"path/filepath"
	"strings"
)

// Catalog header names. They are matched exactly, case included.
const (
	FieldFolder                   = "Folder"
	FieldFilename                 = "filename"
	FieldStart                    = "start"
	FieldEnd                      = "end"
	FieldDuration                 = "duration"
	FieldSessionNumber            = "session number"
	FieldTranslationSessionNumber = "translation session number"
	FieldExportFilename           = "export filename"
	FieldExportFolder             = "export folder"
	FieldExportStatus             = "session export status"
	FieldTextTitle                = "text title"
	FieldAuthor                   = "author"
	FieldStartingFrom             = "starting from:"
	FieldSoundQuality             = "sound quality in the original"
	FieldTextNotes                = "text notes"
	FieldNotes                    = "notes"
	FieldSessionFilename          = "session filename"
	FieldSessionTitle             = "session title"
)

// RequiredFields lists the header fields Parse refuses to run without.
var RequiredFields = []string{
	FieldFolder,
	FieldFilename,
	FieldStart,
	FieldEnd,
	FieldDuration,
	FieldSessionNumber,
	FieldTranslationSessionNumber,
	FieldExportFilename,
	FieldExportFolder,
	FieldExportStatus,
}

// Row is one catalog record. Rows are not modified after Parse returns.
type Row struct {
	Line int

	Folder   string
	Filename string

	Start    Millis
	End      Millis
	Duration Millis

	SessionNumber            string
	TranslationSessionNumber string

	ExportFilename string
	ExportFolder   string
	ExportStatus   string

	TextTitle       string
	Author          string
	StartingFrom    string
	SoundQuality    string
	TextNotes       string
	Notes           string
	SessionFilename string
	SessionTitle    string
}

// RecordingKey identifies the source recording: Folder/filename-stem.
func (r Row) RecordingKey() string {
	return RecordingKey(r.Folder, r.Filename)
}

// SourcePath resolves the row's recording under audioRoot.
func (r Row) SourcePath(audioRoot string) string {
	return filepath.Join(audioRoot, filepath.FromSlash(r.Folder), r.Filename)
}

// Extension returns the source filename extension including the dot.
func (r Row) Extension() string {
	return filepath.Ext(r.Filename)
}

// RecordingKey strips the last extension from filename and joins it to
// folder with a slash.
func RecordingKey(folder, filename string) string {
	stem := strings.TrimSuffix(filename, path.Ext(filename))
	return folder + "/" + stem
}

func rowFromRecord(values map[string]string, line int) (Row, error) {
	row := Row{
		Line:                     line,
		Folder:                   values[FieldFolder],
		Filename:                 values[FieldFilename],
		SessionNumber:            strings.TrimSpace(values[FieldSessionNumber]),
		TranslationSessionNumber: strings.TrimSpace(values[FieldTranslationSessionNumber]),
		ExportFilename:           values[FieldExportFilename],
		ExportFolder:             values[FieldExportFolder],
		ExportStatus:             strings.TrimSpace(values[FieldExportStatus]),
		TextTitle:                values[FieldTextTitle],
		Author:                   values[FieldAuthor],
		StartingFrom:             values[FieldStartingFrom],
		SoundQuality:             values[FieldSoundQuality],
		TextNotes:                values[FieldTextNotes],
		Notes:                    values[FieldNotes],
		SessionFilename:          values[FieldSessionFilename],
		SessionTitle:             values[FieldSessionTitle],
	}
	timecodes := []struct {
		field string
		dst   *Millis
	}{
		{FieldStart, &row.Start},
		{FieldEnd, &row.End},
		{FieldDuration, &row.Duration},
	}
	for _, tc := range timecodes {
		value, err := ParseTimecode(values[tc.field])
		if err != nil {
			return Row{}, &TimecodeError{Line: line, Field: tc.field, Err: err}
		}
		*tc.dst = value
	}
	return row, nil
}
