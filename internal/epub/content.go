package epub

import (
	"bytes"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// headingSelectors are tried in order when looking for a document title.
var headingSelectors = []string{"h1", "h2", "h3"}

// Content represents a parsed XHTML content file
type Content struct {
	ID        string            // Manifest ID
	Path      string            // File path
	Document  *goquery.Document // Parsed and cleaned HTML document
	Heading   string            // Text of the first h1/h2/h3, whitespace collapsed
	ImageRefs []string          // Referenced image paths, resolved within the EPUB
}

// LoadContent loads and parses an XHTML content file.
// Non-content elements are removed and image sources are rewritten to
// archive paths so they can be matched against manifest hrefs.
func LoadContent(id, filePath string, content []byte) (*Content, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse XHTML: %w", err)
	}

	c := &Content{
		ID:       id,
		Path:     filePath,
		Document: doc,
	}

	clean(doc)

	baseDir := path.Dir(filePath)
	doc.Find("img[src]").Each(func(i int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if resolved, ok := resolvePath(baseDir, src); ok {
			s.SetAttr("src", resolved)
			c.ImageRefs = append(c.ImageRefs, resolved)
		}
	})
	// SVG wrappers (common for cover pages) reference the bitmap via xlink:href.
	doc.Find("image").Each(func(i int, s *goquery.Selection) {
		for _, attr := range []string{"xlink:href", "href"} {
			if href, ok := s.Attr(attr); ok {
				if resolved, ok := resolvePath(baseDir, href); ok {
					s.SetAttr(attr, resolved)
					c.ImageRefs = append(c.ImageRefs, resolved)
				}
				return
			}
		}
	})

	for _, sel := range headingSelectors {
		if text := collapseSpace(doc.Find(sel).First().Text()); text != "" {
			c.Heading = text
			break
		}
	}

	return c, nil
}

// HasText reports whether the document body contains any visible text.
func (c *Content) HasText() bool {
	return strings.TrimSpace(c.body().Text()) != ""
}

// BodyHTML returns the inner HTML of the document body.
func (c *Content) BodyHTML() (string, error) {
	html, err := c.body().Html()
	if err != nil {
		return "", fmt.Errorf("failed to render body of %s: %w", c.Path, err)
	}
	return strings.TrimSpace(html), nil
}

func (c *Content) body() *goquery.Selection {
	if body := c.Document.Find("body"); body.Length() > 0 {
		return body.First()
	}
	return c.Document.Selection
}

// clean removes elements that carry no readable content.
func clean(doc *goquery.Document) {
	doc.Find("script, style, link, meta").Remove()
	doc.Find("p").Each(func(i int, s *goquery.Selection) {
		if strings.TrimSpace(s.Text()) == "" && s.Find("img, image, svg").Length() == 0 {
			s.Remove()
		}
	})
}

// resolvePath resolves a relative reference against a base directory
// baseDir: base directory (e.g., "OEBPS/text" for "OEBPS/text/chapter1.xhtml")
// ref: relative path (e.g., "../images/photo.jpg")
// returns: resolved path (e.g., "OEBPS/images/photo.jpg")
// References with a scheme (http:, data:) are not archive paths.
func resolvePath(baseDir, ref string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return "", false
	}
	return normalizePath(path.Join(baseDir, u.Path)), true
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
