package vault

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrPositions is returned when document positions are not exactly 0..n-1.
var ErrPositions = errors.New("document positions must be unique and contiguous from 0")

// Chapter is the resolved identity of one document in the vault.
type Chapter struct {
	Position int
	SourceID string
	Heading  string
	Title    string // sanitized display title
	Note     string // note name, the file name without ".md"
}

// FileName returns the chapter's file name within the book folder.
func (c Chapter) FileName() string {
	return c.Note + ".md"
}

// Link returns a wikilink to the chapter using its title as display text.
func (c Chapter) Link() Link {
	return Link{Target: c.Note, Text: c.Title}
}

// orderDocuments returns the documents sorted by position, verifying that
// the positions form the sequence 0..n-1.
func orderDocuments(docs []Document) ([]Document, error) {
	ordered := slices.Clone(docs)
	slices.SortStableFunc(ordered, func(a, b Document) int {
		return cmp.Compare(a.Position, b.Position)
	})
	for i, d := range ordered {
		if d.Position != i {
			return nil, fmt.Errorf("%w: got %d at index %d", ErrPositions, d.Position, i)
		}
	}
	return ordered, nil
}

// Chapters resolves display titles and note names for documents already in
// position order. Titles come from the document heading, falling back to
// "Chapter N"; note names carry a 1-based number zero-padded to fit the
// chapter count, so duplicate titles still get distinct files.
func Chapters(docs []Document) []Chapter {
	width := max(2, len(strconv.Itoa(len(docs))))
	chapters := make([]Chapter, len(docs))
	for i, d := range docs {
		title := sanitize(d.Heading)
		if title == "" {
			title = fmt.Sprintf("Chapter %d", d.Position+1)
		}
		chapters[i] = Chapter{
			Position: d.Position,
			SourceID: d.SourceID,
			Heading:  d.Heading,
			Title:    title,
			Note:     fmt.Sprintf("%0*d - %s", width, d.Position+1, title),
		}
	}
	return chapters
}

// avoidNoteNames renames chapter notes that clash, ignoring case, with one
// of the book-level note names. The number prefix keeps chapter notes
// distinct from each other, so a suffix is enough.
func avoidNoteNames(chapters []Chapter, taken ...string) {
	for i := range chapters {
		for _, name := range taken {
			if strings.EqualFold(chapters[i].Note, name) {
				chapters[i].Note += " (Chapter)"
				break
			}
		}
	}
}
