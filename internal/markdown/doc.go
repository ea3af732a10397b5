// Package markdown renders EPUB content document bodies as Obsidian
// flavoured Markdown.
//
// Images that were extracted into the vault are rendered as embeds
// (![[name]]); everything else keeps ordinary Markdown syntax.
package markdown
