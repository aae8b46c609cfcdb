package audio

import (
	"strings"

	"github.com/bogem/id3v2"

	"tapeshelf/internal/catalog"
)

// Tags is the metadata written into MP3 outputs.
type Tags struct {
	Title   string
	Artist  string
	Album   string
	Comment string
}

// Empty reports whether no field is set.
func (t Tags) Empty() bool {
	return t.Title == "" && t.Artist == "" && t.Album == "" && t.Comment == ""
}

// TagsFromRow derives tags from a session's first catalog row. The title
// prefers the session title, then the export filename.
func TagsFromRow(row catalog.Row) Tags {
	title := strings.TrimSpace(row.SessionTitle)
	if title == "" {
		title = strings.TrimSpace(row.ExportFilename)
	}
	return Tags{
		Title:   title,
		Artist:  strings.TrimSpace(row.Author),
		Album:   strings.TrimSpace(row.TextTitle),
		Comment: strings.TrimSpace(row.StartingFrom),
	}
}

// WriteID3 stores tags in the file at path, keeping unrelated frames.
func WriteID3(path string, tags Tags) error {
	if tags.Empty() {
		return nil
	}
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	if tags.Title != "" {
		tag.SetTitle(tags.Title)
	}
	if tags.Artist != "" {
		tag.SetArtist(tags.Artist)
	}
	if tags.Album != "" {
		tag.SetAlbum(tags.Album)
	}
	if tags.Comment != "" {
		tag.DeleteFrames(tag.CommonID("Comments"))
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding:    id3v2.EncodingUTF8,
			Language:    "eng",
			Description: "",
			Text:        tags.Comment,
		})
	}
	return tag.Save()
}
