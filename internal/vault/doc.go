// Package vault maps a read EPUB onto an Obsidian vault folder.
//
// Build is a pure function of the book, the renderer and the Config: it
// names every note, computes the table of contents and navigation links,
// assembles note text and places images. Write puts the resulting Layout
// on disk.
//
// Layout of a built vault:
//
//	<Book>_obsidian/
//	  <Book> - Index.md
//	  <Book> - Info.md
//	  01 - <Chapter>.md
//	  ...
//	  images/            (only when images are extracted)
package vault
