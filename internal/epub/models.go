package epub

// OPF represents the parsed Open Package Format document
type OPF struct {
	Metadata      Metadata
	Manifest      map[string]ManifestItem // id -> item
	ManifestOrder []string                // manifest ids in document order
	Spine         []SpineItem
	Guide         []GuideReference
}

// Metadata represents the metadata section of the OPF
type Metadata struct {
	Title       string
	Creators    []Creator
	Language    string
	Identifier  string
	ISBN        string
	Publisher   string
	Date        string
	Description string
	Subjects    []string
	Rights      string
	CoverID     string            // EPUB 2.0 cover image manifest item ID (from meta name="cover")
	Extra       map[string]string // other <meta> name/property values, first occurrence wins
}

// Authors returns the names of creators credited as authors.
// Creators without a role count as authors; if no creator qualifies,
// every creator is returned.
func (m *Metadata) Authors() []string {
	var authors, all []string
	for _, c := range m.Creators {
		if c.Name == "" {
			continue
		}
		all = append(all, c.Name)
		if c.Role == "" || c.Role == "aut" {
			authors = append(authors, c.Name)
		}
	}
	if len(authors) == 0 {
		return all
	}
	return authors
}

// Creator represents a creator (author, editor, etc.) of the book
type Creator struct {
	Name string
	Role string // e.g., "aut" for author, "edt" for editor
}

// ManifestItem represents an item in the manifest
type ManifestItem struct {
	ID         string
	Href       string
	MediaType  string
	Properties []string
}

// SpineItem represents an item reference in the spine
type SpineItem struct {
	IDRef  string
	Linear bool
}

// GuideReference represents an EPUB 2.0 guide reference
type GuideReference struct {
	Type  string
	Title string
	Href  string
}
