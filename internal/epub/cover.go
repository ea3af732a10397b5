package epub

import (
	"path"
	"slices"
	"strings"
)

// CoverInfo holds information about the detected cover image.
type CoverInfo struct {
	ManifestID      string
	Href            string
	MediaType       string
	DetectionMethod string // "properties", "meta", "guide", "filename"
}

// DetectCover detects the cover image from the OPF manifest.
// Methods are tried in priority order:
//  1. properties="cover-image" (EPUB 3.0)
//  2. meta name="cover" (EPUB 2.0)
//  3. guide type="cover" pointing directly at an image
//  4. an image whose basename contains "cover", case-insensitive
//
// Returns nil if no cover image is found.
func (opf *OPF) DetectCover() *CoverInfo {
	detectors := []struct {
		method string
		find   func() (ManifestItem, bool)
	}{
		{"properties", opf.coverByProperty},
		{"meta", opf.coverByMeta},
		{"guide", opf.coverByGuide},
		{"filename", opf.coverByFilename},
	}
	for _, d := range detectors {
		if item, ok := d.find(); ok {
			return &CoverInfo{
				ManifestID:      item.ID,
				Href:            item.Href,
				MediaType:       item.MediaType,
				DetectionMethod: d.method,
			}
		}
	}
	return nil
}

func (opf *OPF) coverByProperty() (ManifestItem, bool) {
	return opf.firstItem(func(item ManifestItem) bool {
		return slices.Contains(item.Properties, "cover-image")
	})
}

func (opf *OPF) coverByMeta() (ManifestItem, bool) {
	if opf.Metadata.CoverID == "" {
		return ManifestItem{}, false
	}
	item, ok := opf.Manifest[opf.Metadata.CoverID]
	return item, ok && isImageMediaType(item.MediaType)
}

func (opf *OPF) coverByGuide() (ManifestItem, bool) {
	for _, ref := range opf.Guide {
		if ref.Type != "cover" {
			continue
		}
		href, _, _ := strings.Cut(ref.Href, "#")
		item, ok := opf.firstItem(func(item ManifestItem) bool {
			return isImageMediaType(item.MediaType) && item.Href == href
		})
		if ok {
			return item, true
		}
	}
	return ManifestItem{}, false
}

func (opf *OPF) coverByFilename() (ManifestItem, bool) {
	return opf.firstItem(func(item ManifestItem) bool {
		return isImageMediaType(item.MediaType) &&
			strings.Contains(strings.ToLower(path.Base(item.Href)), "cover")
	})
}

// firstItem returns the first manifest item, in document order, matching fn.
func (opf *OPF) firstItem(fn func(ManifestItem) bool) (ManifestItem, bool) {
	for _, id := range opf.ManifestOrder {
		if item, ok := opf.Manifest[id]; ok && fn(item) {
			return item, true
		}
	}
	return ManifestItem{}, false
}

// isImageMediaType checks if a media type is an image, SVG included.
func isImageMediaType(mediaType string) bool {
	return strings.HasPrefix(mediaType, "image/")
}
