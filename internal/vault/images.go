package vault

import (
	"bytes"
	"fmt"
	"image"
	"path"
	"strconv"
	"strings"
	"unicode"

	"github.com/disintegration/imaging"
)

// ImagesDir is the folder holding extracted images inside the book folder.
const ImagesDir = "images"

const (
	defaultJPEGQuality = 85
	defaultMaxPixels   = 100 * 1000 * 1000
)

// PlacedImage is an image assigned a unique name in the images folder.
type PlacedImage struct {
	Source    string // archive path
	Name      string
	MediaType string
	Data      []byte
}

// placeImages assigns each image a sanitized, unique file name in archive
// encounter order. Names are compared case-insensitively; later collisions
// get "-1", "-2", ... before the extension.
func placeImages(images []Image) []PlacedImage {
	placed := make([]PlacedImage, 0, len(images))
	used := make(map[string]bool, len(images))
	for _, img := range images {
		stem, ext := splitImageName(img.Path)
		name := stem + ext
		for n := 1; used[strings.ToLower(name)]; n++ {
			name = stem + "-" + strconv.Itoa(n) + ext
		}
		used[strings.ToLower(name)] = true
		placed = append(placed, PlacedImage{
			Source:    img.Path,
			Name:      name,
			MediaType: img.MediaType,
			Data:      img.Data,
		})
	}
	return placed
}

func splitImageName(archivePath string) (stem, ext string) {
	base := path.Base(archivePath)
	ext = path.Ext(base)
	stem = strings.TrimSuffix(base, ext)

	clean := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return unicode.ToLower(r)
		}
		return -1
	}, ext)
	if clean != "" {
		ext = "." + clean
	} else {
		ext = ""
	}
	return SanitizeName(stem), ext
}

// ImageProcessor downscales raster images wider than MaxWidth.
type ImageProcessor struct {
	MaxWidth    int
	JPEGQuality int
	MaxPixels   int // decode limit in total pixels
}

// NewImageProcessor returns a processor for maxWidth, or nil when images
// are kept as they are.
func NewImageProcessor(maxWidth int) *ImageProcessor {
	if maxWidth <= 0 {
		return nil
	}
	return &ImageProcessor{
		MaxWidth:    maxWidth,
		JPEGQuality: defaultJPEGQuality,
		MaxPixels:   defaultMaxPixels,
	}
}

// Process returns the image data to write for name. When the image cannot
// be resized the original data is returned along with the reason.
func (p *ImageProcessor) Process(name, mediaType string, data []byte) ([]byte, error) {
	switch strings.ToLower(mediaType) {
	case "image/svg+xml", "image/gif":
		return data, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return data, fmt.Errorf("decode %s: %w", name, err)
	}
	if cfg.Width <= p.MaxWidth {
		return data, nil
	}
	if pixels := cfg.Width * cfg.Height; p.MaxPixels > 0 && pixels > p.MaxPixels {
		return data, fmt.Errorf("decode %s: %dx%d exceeds the pixel limit", name, cfg.Width, cfg.Height)
	}

	format, err := imaging.FormatFromFilename(name)
	if err != nil {
		return data, fmt.Errorf("encode %s: %w", name, err)
	}
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return data, fmt.Errorf("decode %s: %w", name, err)
	}
	resized := imaging.Resize(src, p.MaxWidth, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format, imaging.JPEGQuality(p.JPEGQuality)); err != nil {
		return data, fmt.Errorf("encode %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
