package epub

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// opfPackage represents the OPF XML structure
type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Version  string      `xml:"version,attr"`
	UniqueID string      `xml:"unique-identifier,attr"`
	Metadata opfMetadata `xml:"metadata"`
	Manifest opfManifest `xml:"manifest"`
	Spine    opfSpine    `xml:"spine"`
	Guide    opfGuide    `xml:"guide"`
}

type opfMetadata struct {
	Title       []string        `xml:"http://purl.org/dc/elements/1.1/ title"`
	Creator     []opfCreator    `xml:"http://purl.org/dc/elements/1.1/ creator"`
	Language    []string        `xml:"http://purl.org/dc/elements/1.1/ language"`
	Identifier  []opfIdentifier `xml:"http://purl.org/dc/elements/1.1/ identifier"`
	Publisher   []string        `xml:"http://purl.org/dc/elements/1.1/ publisher"`
	Date        []string        `xml:"http://purl.org/dc/elements/1.1/ date"`
	Description []string        `xml:"http://purl.org/dc/elements/1.1/ description"`
	Subject     []string        `xml:"http://purl.org/dc/elements/1.1/ subject"`
	Rights      []string        `xml:"http://purl.org/dc/elements/1.1/ rights"`
	Meta        []opfMeta       `xml:"meta"`
}

type opfCreator struct {
	Name string `xml:",chardata"`
	Role string `xml:"http://www.idpf.org/2007/opf role,attr"`
	ID   string `xml:"id,attr"`
}

type opfIdentifier struct {
	Value  string `xml:",chardata"`
	ID     string `xml:"id,attr"`
	Scheme string `xml:"http://www.idpf.org/2007/opf scheme,attr"`
}

// opfMeta covers both the EPUB 2.0 (name/content) and EPUB 3.0
// (property/chardata) forms.
type opfMeta struct {
	Name     string `xml:"name,attr"`
	Content  string `xml:"content,attr"`
	Value    string `xml:",chardata"`
	Property string `xml:"property,attr"`
	Refines  string `xml:"refines,attr"`
	Scheme   string `xml:"scheme,attr"`
}

func (m opfMeta) value() string {
	if v := strings.TrimSpace(m.Value); v != "" {
		return v
	}
	return strings.TrimSpace(m.Content)
}

type opfManifest struct {
	Items []opfManifestItem `xml:"item"`
}

type opfManifestItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

type opfSpine struct {
	ItemRefs []opfItemRef `xml:"itemref"`
}

type opfItemRef struct {
	IDRef  string `xml:"idref,attr"`
	Linear string `xml:"linear,attr"`
}

type opfGuide struct {
	References []opfReference `xml:"reference"`
}

type opfReference struct {
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
	Href  string `xml:"href,attr"`
}

// ParseOPF parses an OPF file content and returns the OPF structure.
// opfDir is the directory containing the OPF file (e.g., "OEBPS");
// manifest and guide hrefs are resolved against it.
func ParseOPF(content []byte, opfDir string) (*OPF, error) {
	var pkg opfPackage
	if err := xml.Unmarshal(content, &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse OPF XML: %w", err)
	}

	opf := &OPF{
		Metadata: parseMetadata(&pkg.Metadata, pkg.UniqueID),
		Manifest: make(map[string]ManifestItem, len(pkg.Manifest.Items)),
	}

	for _, item := range pkg.Manifest.Items {
		if item.ID == "" {
			continue
		}
		if _, dup := opf.Manifest[item.ID]; dup {
			continue
		}
		opf.Manifest[item.ID] = ManifestItem{
			ID:         item.ID,
			Href:       joinPath(opfDir, item.Href),
			MediaType:  strings.ToLower(strings.TrimSpace(item.MediaType)),
			Properties: strings.Fields(item.Properties),
		}
		opf.ManifestOrder = append(opf.ManifestOrder, item.ID)
	}

	for _, itemRef := range pkg.Spine.ItemRefs {
		opf.Spine = append(opf.Spine, SpineItem{
			IDRef:  itemRef.IDRef,
			Linear: itemRef.Linear != "no",
		})
	}

	for _, ref := range pkg.Guide.References {
		opf.Guide = append(opf.Guide, GuideReference{
			Type:  ref.Type,
			Title: ref.Title,
			Href:  joinPath(opfDir, ref.Href),
		})
	}

	return opf, nil
}

func parseMetadata(meta *opfMetadata, uniqueID string) Metadata {
	md := Metadata{
		Title:       first(meta.Title),
		Language:    first(meta.Language),
		Publisher:   first(meta.Publisher),
		Date:        first(meta.Date),
		Description: first(meta.Description),
		Rights:      first(meta.Rights),
	}

	for _, s := range meta.Subject {
		if s = strings.TrimSpace(s); s != "" {
			md.Subjects = append(md.Subjects, s)
		}
	}

	for _, id := range meta.Identifier {
		if id.ID == uniqueID && uniqueID != "" {
			md.Identifier = strings.TrimSpace(id.Value)
			break
		}
	}
	if md.Identifier == "" && len(meta.Identifier) > 0 {
		md.Identifier = strings.TrimSpace(meta.Identifier[0].Value)
	}
	md.ISBN = findISBN(meta.Identifier)

	creatorIDs := make(map[string]int)
	for _, c := range meta.Creator {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		if c.ID != "" {
			creatorIDs["#"+c.ID] = len(md.Creators)
		}
		md.Creators = append(md.Creators, Creator{Name: name, Role: strings.TrimSpace(c.Role)})
	}

	for _, m := range meta.Meta {
		switch {
		case m.Name == "cover":
			if md.CoverID == "" {
				md.CoverID = strings.TrimSpace(m.Content)
			}
		case m.Refines != "":
			// EPUB 3.0 refinements: only creator roles are kept.
			if idx, ok := creatorIDs[m.Refines]; ok && m.Property == "role" {
				md.Creators[idx].Role = m.value()
			}
		default:
			key := m.Name
			if key == "" {
				key = m.Property
			}
			if key == "" || m.value() == "" {
				continue
			}
			if md.Extra == nil {
				md.Extra = make(map[string]string)
			}
			if _, seen := md.Extra[key]; !seen {
				md.Extra[key] = m.value()
			}
		}
	}

	return md
}

// findISBN returns the first identifier marked or shaped as an ISBN,
// without any urn:isbn: prefix.
func findISBN(ids []opfIdentifier) string {
	for _, id := range ids {
		v := strings.TrimSpace(id.Value)
		lower := strings.ToLower(v)
		isbn := v
		for _, prefix := range []string{"urn:isbn:", "isbn:"} {
			if strings.HasPrefix(lower, prefix) {
				isbn = strings.TrimSpace(v[len(prefix):])
				break
			}
		}
		if isbn != v || strings.EqualFold(id.Scheme, "isbn") {
			return isbn
		}
	}
	return ""
}

func first(values []string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// joinPath resolves a manifest href against the OPF directory.
// Hrefs are URL-encoded in the OPF, zip entry names are not.
func joinPath(base, rel string) string {
	if unescaped, err := url.PathUnescape(rel); err == nil {
		rel = unescaped
	}
	if base == "" || base == "." {
		return normalizePath(rel)
	}
	return normalizePath(path.Join(base, rel))
}
