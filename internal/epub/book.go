package epub

import (
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
)

// Book is the fully read content of an EPUB archive.
type Book struct {
	Metadata  Metadata
	Documents []Document // spine order
	Images    []Image    // manifest order
	Cover     string     // archive path of the cover image, empty if none
}

// Document is a spine item selected as a chapter.
type Document struct {
	ID      string
	Href    string
	Heading string
	HTML    string // cleaned body HTML with image sources resolved to archive paths
}

// Image is an embedded image resource.
type Image struct {
	Href      string
	MediaType string
	Data      []byte
}

// ReadOptions controls Read.
type ReadOptions struct {
	// SkipImages leaves Book.Images empty without reading image data.
	SkipImages bool
	Logger     *slog.Logger
}

// Read opens the EPUB at filePath and loads its metadata, spine documents
// and images. Errors from an invalid package wrap ErrInvalidEPUB.
//
// Spine items that cannot be read or parsed are skipped with a warning, as
// are documents with neither text nor images.
func Read(filePath string, opts ReadOptions) (*Book, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	reader, err := Open(filePath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	opfData, err := reader.ReadFile(reader.OPFPath())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read OPF: %v", ErrInvalidEPUB, err)
	}
	opf, err := ParseOPF(opfData, path.Dir(reader.OPFPath()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEPUB, err)
	}

	book := &Book{Metadata: opf.Metadata}
	if cover := opf.DetectCover(); cover != nil {
		book.Cover = cover.Href
		logger.Debug("cover detected", "href", cover.Href, "method", cover.DetectionMethod)
	}

	for _, spineItem := range opf.Spine {
		item, ok := opf.Manifest[spineItem.IDRef]
		if !ok {
			logger.Warn("spine item not found in manifest, skipping", "idref", spineItem.IDRef)
			continue
		}
		if !isXHTML(item.MediaType) {
			continue
		}

		data, err := reader.ReadFile(item.Href)
		if err != nil {
			logger.Warn("failed to read document, skipping", "href", item.Href, "error", err)
			continue
		}
		content, err := LoadContent(item.ID, item.Href, data)
		if err != nil {
			logger.Warn("failed to parse document, skipping", "href", item.Href, "error", err)
			continue
		}
		if !content.HasText() && len(content.ImageRefs) == 0 {
			logger.Debug("empty document, skipping", "href", item.Href)
			continue
		}

		body, err := content.BodyHTML()
		if err != nil {
			logger.Warn("failed to extract body, skipping", "href", item.Href, "error", err)
			continue
		}
		book.Documents = append(book.Documents, Document{
			ID:      item.ID,
			Href:    item.Href,
			Heading: content.Heading,
			HTML:    body,
		})
	}

	if opts.SkipImages {
		return book, nil
	}

	for _, id := range opf.ManifestOrder {
		item := opf.Manifest[id]
		if !isImageMediaType(item.MediaType) {
			continue
		}
		data, err := reader.ReadFile(item.Href)
		if err != nil {
			logger.Warn("failed to read image, skipping", "href", item.Href, "error", err)
			continue
		}
		book.Images = append(book.Images, Image{
			Href:      item.Href,
			MediaType: item.MediaType,
			Data:      data,
		})
	}

	return book, nil
}

// isXHTML checks if a media type indicates an XHTML content file.
func isXHTML(mediaType string) bool {
	return strings.Contains(mediaType, "html")
}
