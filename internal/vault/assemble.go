package vault

import (
	"bytes"
	"strings"
)

const emptyBookNote = "_No chapters were found in this book._"

// noteNames holds the names shared by every note of one book.
type noteNames struct {
	book  string
	index string
	info  string
	tag   string
}

func newNoteNames(book string) noteNames {
	return noteNames{
		book:  book,
		index: book + " - Index",
		info:  book + " - Info",
		tag:   bookTag(book),
	}
}

func chapterNote(names noteNames, c Chapter, href, body string, nav Navigation) ([]byte, error) {
	var buf bytes.Buffer
	err := writeFrontmatter(&buf, ChapterFrontmatter{
		Title:   c.Title,
		Book:    names.book,
		Chapter: c.Position + 1,
		Type:    "chapter",
		Source:  href,
		Tags:    []string{names.tag, "chapter"},
	})
	if err != nil {
		return nil, err
	}
	buf.WriteString("\n")
	if !startsWithHeading(body, c.Title) {
		buf.WriteString("# " + c.Title + "\n\n")
	}
	if body != "" {
		buf.WriteString(body + "\n\n")
	}
	buf.WriteString("---\n\n")
	buf.WriteString(footer(nav) + "\n")
	return buf.Bytes(), nil
}

// startsWithHeading reports whether one of the first lines of body is a
// heading whose text matches title.
func startsWithHeading(body, title string) bool {
	lines := strings.SplitN(body, "\n", 6)
	for _, line := range lines[:min(len(lines), 5)] {
		if !strings.HasPrefix(line, "#") {
			continue
		}
		text := strings.TrimSpace(strings.TrimLeft(line, "#"))
		if strings.EqualFold(text, title) {
			return true
		}
	}
	return false
}

func footer(nav Navigation) string {
	parts := make([]string, 0, 3)
	if nav.Previous != nil {
		parts = append(parts, "⬅️ "+nav.Previous.String())
	}
	parts = append(parts, "📚 "+nav.Index.String())
	if nav.Next != nil {
		parts = append(parts, nav.Next.String()+" ➡️")
	}
	return strings.Join(parts, " | ")
}

func indexNote(names noteNames, meta Metadata, toc []Link) ([]byte, error) {
	var buf bytes.Buffer
	err := writeFrontmatter(&buf, IndexFrontmatter{
		Title:    meta.Title,
		Type:     "index",
		Authors:  meta.Authors,
		Chapters: len(toc),
		Tags:     []string{names.tag, "index"},
	})
	if err != nil {
		return nil, err
	}
	buf.WriteString("\n# " + meta.Title + "\n\n")
	if len(meta.Authors) > 0 {
		buf.WriteString("**By " + strings.Join(meta.Authors, ", ") + "**\n\n")
	}
	buf.WriteString("📖 " + Link{Target: names.info, Text: "Book Information"}.String() + "\n\n")
	buf.WriteString("## Table of Contents\n\n")
	if len(toc) == 0 {
		buf.WriteString(emptyBookNote + "\n")
	}
	for _, l := range toc {
		buf.WriteString("- " + l.String() + "\n")
	}
	return buf.Bytes(), nil
}

// infoNote assembles the metadata note. description is the Markdown form
// of the book description; cover is the placed cover image name, if any.
func infoNote(names noteNames, meta Metadata, description, cover string) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeFrontmatter(&buf, infoFrontmatter(meta, cover, names.tag)); err != nil {
		return nil, err
	}
	buf.WriteString("\n# " + meta.Title + " - Book Information\n\n")
	if cover != "" {
		buf.WriteString("![[" + cover + "]]\n\n")
	}

	buf.WriteString("## Metadata\n\n")
	fields := []struct{ label, value string }{
		{"Title", meta.Title},
		{"Authors", strings.Join(meta.Authors, ", ")},
		{"Publisher", meta.Publisher},
		{"Publication Date", meta.Date},
		{"ISBN", meta.ISBN},
		{"Identifier", meta.Identifier},
		{"Language", meta.Language},
		{"Subjects", strings.Join(meta.Subjects, ", ")},
		{"Rights", meta.Rights},
	}
	for _, f := range fields {
		if f.value != "" {
			buf.WriteString("- **" + f.label + ":** " + oneLine(f.value) + "\n")
		}
	}

	if description != "" {
		buf.WriteString("\n## Description\n\n" + description + "\n")
	}
	buf.WriteString("\n---\n\n")
	buf.WriteString("📚 " + Link{Target: names.index, Text: "Back to Index"}.String() + "\n")
	return buf.Bytes(), nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
