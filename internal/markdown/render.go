package markdown

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// maxDepth bounds element nesting; deeper trees are rejected rather than
// walked recursively.
const maxDepth = 512

// ErrRender is wrapped by every error returned from Render.
var ErrRender = errors.New("render failed")

// skipTags are dropped together with their content.
var skipTags = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Title:    true,
	atom.Noscript: true,
	atom.Template: true,
}

// blockTags separate their content from siblings with a blank line.
var blockTags = map[atom.Atom]bool{
	atom.P:          true,
	atom.Div:        true,
	atom.Section:    true,
	atom.Article:    true,
	atom.Aside:      true,
	atom.Header:     true,
	atom.Footer:     true,
	atom.Nav:        true,
	atom.Main:       true,
	atom.Figure:     true,
	atom.Figcaption: true,
	atom.Dl:         true,
	atom.Dt:         true,
	atom.Dd:         true,
	atom.Address:    true,
	atom.Center:     true,
}

// markdownEscaper escapes characters that would otherwise be read as
// Markdown or wikilink syntax.
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
)

// Converter renders content document HTML to Markdown.
// The zero value is ready to use.
type Converter struct{}

// NewConverter returns a Converter.
func NewConverter() *Converter {
	return &Converter{}
}

// Render converts an HTML fragment or document to Markdown. images maps
// archive paths to the file names under which they were placed in the
// vault; sources found there become embeds. A nil map leaves every image
// reference pointing at its original source.
func (c *Converter) Render(htmlText string, images map[string]string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}

	root := doc.Find("body").First()
	if root.Length() == 0 {
		root = doc.Selection
	}

	w := &walker{images: images}
	var b strings.Builder
	for _, n := range root.Nodes {
		if err := w.children(&b, n, 0); err != nil {
			return "", err
		}
	}
	return tidy(b.String()), nil
}

type walker struct {
	images map[string]string
}

func (w *walker) children(b *strings.Builder, n *html.Node, depth int) error {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := w.node(b, c, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// inner renders the children of n into a new string.
func (w *walker) inner(n *html.Node, depth int) (string, error) {
	var b strings.Builder
	err := w.children(&b, n, depth)
	return b.String(), err
}

func (w *walker) node(b *strings.Builder, n *html.Node, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("%w: element nesting deeper than %d", ErrRender, maxDepth)
	}

	switch n.Type {
	case html.TextNode:
		writeText(b, markdownEscaper.Replace(collapseWhitespace(n.Data)))
		return nil
	case html.ElementNode:
	default:
		return w.children(b, n, depth)
	}

	if skipTags[n.DataAtom] {
		return nil
	}

	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		text, err := w.inner(n, depth)
		if err != nil {
			return err
		}
		if text = oneLine(text); text != "" {
			level := int(n.Data[1] - '0')
			fmt.Fprintf(b, "\n\n%s %s\n\n", strings.Repeat("#", level), text)
		}
	case atom.Br:
		b.WriteString("\n")
	case atom.Hr:
		b.WriteString("\n\n---\n\n")
	case atom.B, atom.Strong:
		return w.wrapInline(b, n, depth, "**")
	case atom.I, atom.Em, atom.Cite:
		return w.wrapInline(b, n, depth, "*")
	case atom.S, atom.Del, atom.Strike:
		return w.wrapInline(b, n, depth, "~~")
	case atom.Mark:
		return w.wrapInline(b, n, depth, "==")
	case atom.Code, atom.Kbd, atom.Samp, atom.Tt:
		if code := collapseWhitespace(textContent(n)); strings.TrimSpace(code) != "" {
			fence := "`"
			if strings.Contains(code, "`") {
				fence = "``"
			}
			b.WriteString(fence + code + fence)
		}
	case atom.Pre:
		fmt.Fprintf(b, "\n\n```\n%s\n```\n\n", strings.Trim(textContent(n), "\n"))
	case atom.A:
		return w.link(b, n, depth)
	case atom.Img:
		w.image(b, attr(n, "src"), attr(n, "alt"))
	case atom.Image:
		// SVG <image> elements carry the bitmap reference in (xlink:)href.
		src := attr(n, "href")
		if src == "" {
			src = attr(n, "xlink:href")
		}
		w.image(b, src, "")
	case atom.Ul, atom.Ol:
		return w.list(b, n, depth)
	case atom.Blockquote:
		text, err := w.inner(n, depth)
		if err != nil {
			return err
		}
		if text = strings.TrimSpace(tidy(text)); text != "" {
			b.WriteString("\n\n" + prefixLines(text, "> ", ">") + "\n\n")
		}
	case atom.Table:
		return w.table(b, n, depth)
	case atom.Sup:
		text, err := w.inner(n, depth)
		if err != nil {
			return err
		}
		if text = strings.TrimSpace(text); text != "" {
			b.WriteString("<sup>" + text + "</sup>")
		}
	default:
		if blockTags[n.DataAtom] {
			text, err := w.inner(n, depth)
			if err != nil {
				return err
			}
			if text = strings.TrimSpace(text); text != "" {
				b.WriteString("\n\n" + text + "\n\n")
			}
			return nil
		}
		return w.children(b, n, depth)
	}
	return nil
}

// wrapInline surrounds inline content with a delimiter, keeping
// surrounding whitespace outside the markers so they stay valid.
func (w *walker) wrapInline(b *strings.Builder, n *html.Node, depth int, delim string) error {
	text, err := w.inner(n, depth)
	if err != nil {
		return err
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		writeText(b, text)
		return nil
	}
	if strings.HasPrefix(text, " ") {
		writeText(b, " ")
	}
	b.WriteString(delim + trimmed + delim)
	if strings.HasSuffix(text, " ") {
		b.WriteString(" ")
	}
	return nil
}

// link renders external links in Markdown syntax. Links into other
// content documents cannot be resolved inside the vault and keep only
// their text.
func (w *walker) link(b *strings.Builder, n *html.Node, depth int) error {
	text, err := w.inner(n, depth)
	if err != nil {
		return err
	}
	href := strings.TrimSpace(attr(n, "href"))
	u, perr := url.Parse(href)
	if perr != nil || href == "" || !u.IsAbs() {
		b.WriteString(text)
		return nil
	}
	label := strings.TrimSpace(text)
	if label == "" {
		label = markdownEscaper.Replace(href)
	}
	fmt.Fprintf(b, "[%s](%s)", label, strings.ReplaceAll(href, " ", "%20"))
	return nil
}

func (w *walker) image(b *strings.Builder, src, alt string) {
	src = strings.TrimSpace(src)
	if src == "" {
		return
	}
	if name, ok := w.images[src]; ok {
		b.WriteString("![[" + name + "]]")
		return
	}
	fmt.Fprintf(b, "![%s](%s)", markdownEscaper.Replace(oneLine(alt)), strings.ReplaceAll(src, " ", "%20"))
}

func (w *walker) list(b *strings.Builder, n *html.Node, depth int) error {
	ordered := n.DataAtom == atom.Ol
	num := 1
	if start, err := strconv.Atoi(attr(n, "start")); err == nil && ordered {
		num = start
	}

	var items []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			continue
		}
		text, err := w.inner(c, depth+1)
		if err != nil {
			return err
		}
		text = strings.TrimSpace(tidy(text))

		marker := "- "
		if ordered {
			marker = strconv.Itoa(num) + ". "
			num++
		}
		indent := strings.Repeat(" ", len(marker))
		items = append(items, marker+prefixContinuation(text, indent))
	}
	if len(items) > 0 {
		b.WriteString("\n\n" + strings.Join(items, "\n") + "\n\n")
	}
	return nil
}

// table renders a GFM table; the first row is used as the header.
func (w *walker) table(b *strings.Builder, n *html.Node, depth int) error {
	var rows [][]string
	var walk func(*html.Node, int) error
	walk = func(n *html.Node, d int) error {
		if d > maxDepth {
			return fmt.Errorf("%w: element nesting deeper than %d", ErrRender, maxDepth)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if c.DataAtom != atom.Tr {
				if err := walk(c, d+1); err != nil {
					return err
				}
				continue
			}
			var row []string
			for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
				if cell.Type != html.ElementNode || (cell.DataAtom != atom.Td && cell.DataAtom != atom.Th) {
					continue
				}
				text, err := w.inner(cell, d+1)
				if err != nil {
					return err
				}
				row = append(row, strings.ReplaceAll(oneLine(text), "|", `\|`))
			}
			rows = append(rows, row)
		}
		return nil
	}
	if err := walk(n, depth); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	if width == 0 {
		return nil
	}

	b.WriteString("\n\n")
	for i, r := range rows {
		for len(r) < width {
			r = append(r, "")
		}
		b.WriteString("| " + strings.Join(r, " | ") + " |\n")
		if i == 0 {
			b.WriteString("|" + strings.Repeat(" --- |", width) + "\n")
		}
	}
	b.WriteString("\n")
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Br {
			b.WriteString("\n")
			continue
		}
		b.WriteString(textContent(c))
	}
	return b.String()
}
