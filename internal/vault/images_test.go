package vault

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func TestPlaceImages(t *testing.T) {
	placed := placeImages([]Image{
		{Path: "OEBPS/img/fig #1.PNG"},
		{Path: "OEBPS/img/fig 1.png"},
		{Path: "OEBPS/img/noext"},
		{Path: "OEBPS/img/???.gif"},
		{Path: "OEBPS/a/cover.jpg"},
		{Path: "OEBPS/b/cover.jpg"},
		{Path: "OEBPS/c/Cover.JPG"},
		{Path: "OEBPS/d/COVER-1.jpg"},
	})
	want := []string{
		"fig 1.png", "fig 1-1.png", "noext", "Untitled.gif",
		"cover.jpg", "cover-1.jpg", "Cover-2.jpg", "COVER-1-1.jpg",
	}
	if len(placed) != len(want) {
		t.Fatalf("placed %d images, want %d", len(placed), len(want))
	}
	for i, p := range placed {
		if p.Name != want[i] {
			t.Errorf("image %d name = %q, want %q", i, p.Name, want[i])
		}
	}
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestImageProcessorDownscales(t *testing.T) {
	p := NewImageProcessor(100)
	out, err := p.Process("wide.png", "image/png", encodePNG(t, 400, 200))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if cfg.Width != 100 || cfg.Height != 50 {
		t.Errorf("size = %dx%d, want 100x50", cfg.Width, cfg.Height)
	}
}

func TestImageProcessorKeepsNarrowImages(t *testing.T) {
	in := encodePNG(t, 50, 50)
	out, err := NewImageProcessor(100).Process("small.png", "image/png", in)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !bytes.Equal(in, out) {
		t.Error("narrow image was re-encoded")
	}
}

func TestImageProcessorPassthrough(t *testing.T) {
	p := NewImageProcessor(100)
	svg := []byte("<svg/>")
	if out, err := p.Process("a.svg", "image/svg+xml", svg); err != nil || !bytes.Equal(out, svg) {
		t.Errorf("svg: out=%q err=%v", out, err)
	}
	junk := []byte("not an image")
	out, err := p.Process("broken.jpg", "image/jpeg", junk)
	if err == nil {
		t.Error("expected a decode error")
	}
	if !bytes.Equal(out, junk) {
		t.Error("broken image was not passed through")
	}
}

func TestNewImageProcessorDisabled(t *testing.T) {
	if p := NewImageProcessor(0); p != nil {
		t.Errorf("NewImageProcessor(0) = %+v, want nil", p)
	}
}

func TestBuildRecordsImageWarnings(t *testing.T) {
	book := Book{
		Metadata: Metadata{Title: "T"},
		Images:   []Image{{Path: "a/broken.jpg", MediaType: "image/jpeg", Data: []byte("x")}},
	}
	layout, err := Build(book, echo, Config{ExtractImages: true, MaxImageWidth: 10})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(layout.Warnings) != 1 || layout.Warnings[0].Stage != StageImage {
		t.Errorf("warnings = %v", layout.Warnings)
	}
	if string(layout.Images[0].Data) != "x" {
		t.Error("broken image data changed")
	}
}
