package vault

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

const frontmatterFence = "---\n"

// ErrNoFrontmatter is returned by ParseFrontmatter when the note does not
// open with a YAML block.
var ErrNoFrontmatter = errors.New("note has no frontmatter")

// ChapterFrontmatter is the YAML header of a chapter note.
type ChapterFrontmatter struct {
	Title   string   `yaml:"title"`
	Book    string   `yaml:"book"`
	Chapter int      `yaml:"chapter"`
	Type    string   `yaml:"type"`
	Source  string   `yaml:"source,omitempty"`
	Tags    []string `yaml:"tags"`
}

// IndexFrontmatter is the YAML header of the Index note.
type IndexFrontmatter struct {
	Title    string   `yaml:"title"`
	Type     string   `yaml:"type"`
	Authors  []string `yaml:"authors,omitempty"`
	Chapters int      `yaml:"chapters"`
	Tags     []string `yaml:"tags"`
}

// InfoFrontmatter is the YAML header of the Info note. Absent metadata
// fields are omitted rather than written empty.
type InfoFrontmatter struct {
	Title       string            `yaml:"title"`
	Type        string            `yaml:"type"`
	Authors     []string          `yaml:"authors,omitempty"`
	Publisher   string            `yaml:"publisher,omitempty"`
	Language    string            `yaml:"language,omitempty"`
	Identifier  string            `yaml:"identifier,omitempty"`
	ISBN        string            `yaml:"isbn,omitempty"`
	Date        string            `yaml:"date,omitempty"`
	Description string            `yaml:"description,omitempty"`
	Subjects    []string          `yaml:"subjects,omitempty"`
	Rights      string            `yaml:"rights,omitempty"`
	Meta        map[string]string `yaml:"meta,omitempty"`
	Cover       string            `yaml:"cover,omitempty"`
	Tags        []string          `yaml:"tags"`
}

func infoFrontmatter(m Metadata, cover, tag string) InfoFrontmatter {
	fm := InfoFrontmatter{
		Title:       m.Title,
		Type:        "info",
		Authors:     m.Authors,
		Publisher:   m.Publisher,
		Language:    m.Language,
		Identifier:  m.Identifier,
		ISBN:        m.ISBN,
		Date:        m.Date,
		Description: m.Description,
		Subjects:    m.Subjects,
		Rights:      m.Rights,
		Cover:       cover,
		Tags:        []string{tag, "info"},
	}
	if len(m.Extra) > 0 {
		fm.Meta = m.Extra
	}
	return fm
}

// Metadata converts the header back into book metadata.
func (fm InfoFrontmatter) Metadata() Metadata {
	return Metadata{
		Title:       fm.Title,
		Authors:     fm.Authors,
		Publisher:   fm.Publisher,
		Language:    fm.Language,
		Identifier:  fm.Identifier,
		ISBN:        fm.ISBN,
		Date:        fm.Date,
		Description: fm.Description,
		Subjects:    fm.Subjects,
		Rights:      fm.Rights,
		Extra:       fm.Meta,
	}
}

// writeFrontmatter encodes v as a fenced YAML block.
func writeFrontmatter(buf *bytes.Buffer, v any) error {
	buf.WriteString(frontmatterFence)
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode frontmatter: %w", err)
	}
	buf.WriteString(frontmatterFence)
	return nil
}

// ParseFrontmatter decodes the YAML block at the start of a note into out
// and returns the remaining body.
func ParseFrontmatter(note []byte, out any) ([]byte, error) {
	if !bytes.HasPrefix(note, []byte(frontmatterFence)) {
		return nil, ErrNoFrontmatter
	}
	rest := note[len(frontmatterFence):]
	end := bytes.Index(rest, []byte("\n"+frontmatterFence))
	if end < 0 {
		return nil, fmt.Errorf("%w: unterminated block", ErrNoFrontmatter)
	}
	if err := yaml.Unmarshal(rest[:end+1], out); err != nil {
		return nil, fmt.Errorf("decode frontmatter: %w", err)
	}
	return rest[end+1+len(frontmatterFence):], nil
}
