package converter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuanying/epub2obsidian/internal/epub"
	"github.com/yuanying/epub2obsidian/internal/markdown"
	"github.com/yuanying/epub2obsidian/internal/vault"
)

// ConvertOptions holds options for the conversion pipeline.
type ConvertOptions struct {
	InputPath string
	// OutputDir receives the book folder; empty means the input's directory.
	OutputDir string
	NoImages  bool
	Overwrite bool
	// MaxImageWidth downscales wider images; zero keeps them unchanged.
	MaxImageWidth int
	Logger        *slog.Logger
}

// Result describes a converted book.
type Result struct {
	Input    string
	Title    string
	Folder   string // path of the written book folder
	Chapters int
	Images   int
	Warnings []vault.Warning
}

// Pipeline orchestrates the EPUB to Obsidian vault conversion.
type Pipeline struct {
	Options  ConvertOptions
	renderer vault.Renderer
}

// NewPipeline creates a new conversion pipeline.
func NewPipeline(opts ConvertOptions) *Pipeline {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{Options: opts, renderer: markdown.NewConverter()}
}

// Convert reads the input EPUB, builds its vault layout and writes it.
// Failures are returned as *ConversionError.
func (p *Pipeline) Convert() (*Result, error) {
	input := p.Options.InputPath
	logger := p.Options.Logger.With("input", input)

	if err := CheckInput(input); err != nil {
		return nil, fail(input, StageRead, ErrInput, err)
	}

	logger.Debug("reading EPUB")
	book, err := epub.Read(input, epub.ReadOptions{
		SkipImages: p.Options.NoImages,
		Logger:     logger,
	})
	if err != nil {
		kind := ErrParse
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
			kind = ErrInput
		}
		return nil, fail(input, StageRead, kind, err)
	}
	logger.Debug("EPUB read",
		"title", book.Metadata.Title,
		"documents", len(book.Documents),
		"images", len(book.Images))

	layout, err := vault.Build(toVaultBook(book), p.renderer, vault.Config{
		ExtractImages: !p.Options.NoImages,
		MaxImageWidth: p.Options.MaxImageWidth,
	})
	if err != nil {
		return nil, fail(input, StageBuild, ErrParse, err)
	}
	for _, w := range layout.Warnings {
		logger.Warn("recovered from conversion problem", "stage", w.Stage, "subject", w.Subject, "error", w.Err)
	}

	policy := vault.RefuseExisting
	if p.Options.Overwrite {
		policy = vault.OverwriteFiles
	}
	folder, err := vault.Write(layout, p.outputDir(), policy)
	if err != nil {
		return nil, fail(input, StageWrite, ErrWrite, err)
	}
	logger.Info("book converted", "folder", folder, "chapters", len(layout.Chapters), "images", len(layout.Images))

	return &Result{
		Input:    input,
		Title:    book.Metadata.Title,
		Folder:   folder,
		Chapters: len(layout.Chapters),
		Images:   len(layout.Images),
		Warnings: layout.Warnings,
	}, nil
}

func (p *Pipeline) outputDir() string {
	if p.Options.OutputDir != "" {
		return p.Options.OutputDir
	}
	return filepath.Dir(p.Options.InputPath)
}

// CheckInput verifies that path names an existing regular file with an
// .epub extension.
func CheckInput(path string) error {
	if !IsEPUBName(path) {
		return fmt.Errorf("file must have an .epub extension: %s", filepath.Base(path))
	}
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

// IsEPUBName reports whether name carries an .epub extension.
func IsEPUBName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".epub")
}

// toVaultBook maps the archive view of a book onto the builder's input.
// Documents are numbered in spine order.
func toVaultBook(b *epub.Book) vault.Book {
	m := b.Metadata
	out := vault.Book{
		Metadata: vault.Metadata{
			Title:       m.Title,
			Authors:     m.Authors(),
			Publisher:   m.Publisher,
			Language:    m.Language,
			Identifier:  m.Identifier,
			ISBN:        m.ISBN,
			Date:        m.Date,
			Description: m.Description,
			Subjects:    m.Subjects,
			Rights:      m.Rights,
			Extra:       m.Extra,
		},
		Documents: make([]vault.Document, len(b.Documents)),
		Images:    make([]vault.Image, len(b.Images)),
		Cover:     b.Cover,
	}
	for i, d := range b.Documents {
		out.Documents[i] = vault.Document{
			Position: i,
			SourceID: d.ID,
			Href:     d.Href,
			Heading:  d.Heading,
			HTML:     d.HTML,
		}
	}
	for i, img := range b.Images {
		out.Images[i] = vault.Image{Path: img.Href, MediaType: img.MediaType, Data: img.Data}
	}
	return out
}
