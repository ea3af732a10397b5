package vault

import (
	"cmp"
	"slices"
)

// Link is an Obsidian wikilink resolved by note name.
type Link struct {
	Target string
	Text   string
}

func (l Link) String() string {
	if l.Text == "" || l.Text == l.Target {
		return "[[" + l.Target + "]]"
	}
	return "[[" + l.Target + "|" + l.Text + "]]"
}

// Navigation holds the footer links of one chapter. Previous and Next are
// nil at the ends of the book.
type Navigation struct {
	Previous *Link
	Index    Link
	Next     *Link
}

// Navigate computes navigation for chapters in position order by looking
// at each chapter's neighbours.
func Navigate(chapters []Chapter, index Link) []Navigation {
	nav := make([]Navigation, len(chapters))
	for i := range chapters {
		nav[i].Index = index
		if i > 0 {
			prev := chapters[i-1].Link()
			nav[i].Previous = &prev
		}
		if i < len(chapters)-1 {
			next := chapters[i+1].Link()
			nav[i].Next = &next
		}
	}
	return nav
}

// TableOfContents returns one link per chapter ordered by position,
// whatever the order of the input slice.
func TableOfContents(chapters []Chapter) []Link {
	ordered := slices.Clone(chapters)
	slices.SortStableFunc(ordered, func(a, b Chapter) int {
		return cmp.Compare(a.Position, b.Position)
	})
	links := make([]Link, len(ordered))
	for i, c := range ordered {
		links[i] = c.Link()
	}
	return links
}
