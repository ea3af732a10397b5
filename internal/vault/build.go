package vault

import (
	"fmt"
	"strings"
)

const (
	folderSuffix = "_obsidian"

	// StageRender and StageImage name the steps a Warning comes from.
	StageRender = "render"
	StageImage  = "image"
)

// BookName returns the sanitized name used for the book folder and its
// Index and Info notes.
func BookName(m Metadata) string {
	return SanitizeName(m.Title)
}

// FolderName returns the name of the folder a book is written to.
func FolderName(m Metadata) string {
	return BookName(m) + folderSuffix
}

// Build computes the vault layout of book. Each document is rendered
// exactly once; a render failure substitutes a placeholder note body and
// records a Warning. Build does not touch the filesystem.
func Build(book Book, r Renderer, cfg Config) (*Layout, error) {
	docs, err := orderDocuments(book.Documents)
	if err != nil {
		return nil, err
	}

	meta := book.Metadata
	if strings.TrimSpace(meta.Title) == "" {
		meta.Title = fallbackName
	}
	names := newNoteNames(BookName(meta))
	layout := &Layout{Folder: names.book + folderSuffix}

	var targets map[string]string
	cover := ""
	if cfg.ExtractImages {
		layout.Images = placeImages(book.Images)
		targets = make(map[string]string, len(layout.Images))
		processor := NewImageProcessor(cfg.MaxImageWidth)
		for i, img := range layout.Images {
			targets[img.Source] = img.Name
			if img.Source == book.Cover {
				cover = img.Name
			}
			if processor != nil {
				data, err := processor.Process(img.Name, img.MediaType, img.Data)
				if err != nil {
					layout.Warnings = append(layout.Warnings, Warning{Stage: StageImage, Subject: img.Source, Err: err})
				}
				layout.Images[i].Data = data
			}
		}
	}

	chapters := Chapters(docs)
	avoidNoteNames(chapters, names.index, names.info)
	nav := Navigate(chapters, Link{Target: names.index, Text: "Index"})
	layout.Chapters = make([]File, len(chapters))
	for i, c := range chapters {
		body, err := r.Render(docs[i].HTML, targets)
		if err != nil {
			layout.Warnings = append(layout.Warnings, Warning{Stage: StageRender, Subject: c.Note, Err: err})
			body = renderPlaceholder(err)
		}
		content, err := chapterNote(names, c, docs[i].Href, body, nav[i])
		if err != nil {
			return nil, fmt.Errorf("assemble %q: %w", c.FileName(), err)
		}
		layout.Chapters[i] = File{Name: c.FileName(), Content: content}
	}

	index, err := indexNote(names, meta, TableOfContents(chapters))
	if err != nil {
		return nil, fmt.Errorf("assemble index: %w", err)
	}
	layout.Index = File{Name: names.index + ".md", Content: index}

	description := describe(meta.Description, r, targets, layout)
	info, err := infoNote(names, meta, description, cover)
	if err != nil {
		return nil, fmt.Errorf("assemble info: %w", err)
	}
	layout.Info = File{Name: names.info + ".md", Content: info}

	return layout, nil
}

func renderPlaceholder(err error) string {
	return "> [!warning] This chapter could not be converted.\n> " + oneLine(err.Error())
}

// describe converts an HTML description to Markdown, keeping plain text
// as it is. A failed render falls back to the raw text.
func describe(desc string, r Renderer, targets map[string]string, layout *Layout) string {
	desc = strings.TrimSpace(desc)
	if !strings.Contains(desc, "<") {
		return desc
	}
	md, err := r.Render(desc, targets)
	if err != nil {
		layout.Warnings = append(layout.Warnings, Warning{Stage: StageRender, Subject: "description", Err: err})
		return desc
	}
	return md
}
