package converter

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yuanying/epub2obsidian/internal/epub"
	"github.com/yuanying/epub2obsidian/internal/vault"
)

func readNote(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("failed to read %s: %v", name, err)
	}
	return string(data)
}

func TestPipelineConvert(t *testing.T) {
	tmp := t.TempDir()
	input := writeSampleEPUB(t, tmp, "sample.epub")
	out := filepath.Join(tmp, "out")

	res, err := NewPipeline(ConvertOptions{InputPath: input, OutputDir: out}).Convert()
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	wantFolder := filepath.Join(out, "Sample A Book_obsidian")
	if res.Folder != wantFolder {
		t.Fatalf("Folder = %q, want %q", res.Folder, wantFolder)
	}
	if res.Title != "Sample: A Book" || res.Chapters != 3 || res.Images != 1 {
		t.Fatalf("result = %+v", res)
	}

	for _, name := range []string{
		"Sample A Book - Index.md",
		"Sample A Book - Info.md",
		"01 - First.md",
		"02 - Second.md",
		"03 - Chapter 3.md",
		"images/fig.png",
	} {
		if _, err := os.Stat(filepath.Join(wantFolder, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	first := readNote(t, wantFolder, "01 - First.md")
	if !strings.Contains(first, "Hello *there*.") {
		t.Errorf("chapter body not rendered:\n%s", first)
	}
	if !strings.Contains(first, "![[fig.png]]") {
		t.Errorf("image not embedded:\n%s", first)
	}
	if strings.Count(first, "# First") != 1 {
		t.Errorf("heading duplicated:\n%s", first)
	}
	if !strings.Contains(first, "[[02 - Second|Second]] ➡️") {
		t.Errorf("missing next link:\n%s", first)
	}

	info := readNote(t, wantFolder, "Sample A Book - Info.md")
	if !strings.Contains(info, "- **Authors:** Jane Doe\n") {
		t.Errorf("editor listed as author:\n%s", info)
	}
	if !strings.Contains(info, "- **ISBN:** 9781234567897") {
		t.Errorf("ISBN missing:\n%s", info)
	}
}

func TestPipelineConvertNoImages(t *testing.T) {
	tmp := t.TempDir()
	input := writeSampleEPUB(t, tmp, "sample.epub")

	res, err := NewPipeline(ConvertOptions{InputPath: input, NoImages: true}).Convert()
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if filepath.Dir(res.Folder) != tmp {
		t.Errorf("Folder = %q, want it inside %q", res.Folder, tmp)
	}
	if res.Images != 0 {
		t.Errorf("Images = %d, want 0", res.Images)
	}
	if _, err := os.Stat(filepath.Join(res.Folder, "images")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("images folder exists: %v", err)
	}
	if first := readNote(t, res.Folder, "01 - First.md"); strings.Contains(first, "![[") {
		t.Errorf("embed written with images disabled:\n%s", first)
	}
}

func TestPipelineConvertSVGCoverPage(t *testing.T) {
	tmp := t.TempDir()
	input := writeEPUB(t, tmp, "svg.epub", []fixtureFile{
		{"mimetype", "application/epub+zip"},
		{"META-INF/container.xml", testContainerXML},
		{"OEBPS/content.opf", `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Covered</dc:title></metadata>
  <manifest>
    <item id="cover-page" href="text/cover.xhtml" media-type="application/xhtml+xml"/>
    <item id="cover" href="images/cover.jpg" media-type="image/jpeg" properties="cover-image"/>
  </manifest>
  <spine><itemref idref="cover-page"/></spine>
</package>`},
		{"OEBPS/text/cover.xhtml", `<html xmlns="http://www.w3.org/1999/xhtml" xmlns:xlink="http://www.w3.org/1999/xlink"><body>
<svg xmlns="http://www.w3.org/2000/svg"><image xlink:href="../images/cover.jpg"/></svg>
</body></html>`},
		{"OEBPS/images/cover.jpg", "jpeg-bytes"},
	})

	res, err := NewPipeline(ConvertOptions{InputPath: input}).Convert()
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if res.Chapters != 1 {
		t.Fatalf("Chapters = %d, want 1", res.Chapters)
	}
	page := readNote(t, res.Folder, "01 - Chapter 1.md")
	if !strings.Contains(page, "![[cover.jpg]]") {
		t.Errorf("cover page does not embed the image:\n%s", page)
	}
	if strings.Contains(page, "../images") {
		t.Errorf("cover page keeps a relative image path:\n%s", page)
	}
}

func TestPipelineConvertErrors(t *testing.T) {
	tmp := t.TempDir()
	notEPUB := filepath.Join(tmp, "book.txt")
	if err := os.WriteFile(notEPUB, []byte("text"), 0o644); err != nil {
		t.Fatal(err)
	}
	corrupt := filepath.Join(tmp, "corrupt.epub")
	if err := os.WriteFile(corrupt, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	dirInput := filepath.Join(tmp, "folder.epub")
	if err := os.Mkdir(dirInput, 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		input string
		kind  error
		stage Stage
	}{
		{"missing", filepath.Join(tmp, "missing.epub"), ErrInput, StageRead},
		{"extension", notEPUB, ErrInput, StageRead},
		{"directory", dirInput, ErrInput, StageRead},
		{"corrupt", corrupt, ErrParse, StageRead},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPipeline(ConvertOptions{InputPath: tt.input}).Convert()
			if !errors.Is(err, tt.kind) {
				t.Fatalf("err = %v, want %v", err, tt.kind)
			}
			var ce *ConversionError
			if !errors.As(err, &ce) {
				t.Fatalf("err = %T, want *ConversionError", err)
			}
			if ce.Stage != tt.stage || ce.Input != tt.input {
				t.Errorf("error = %+v", ce)
			}
			if !strings.Contains(err.Error(), tt.input) {
				t.Errorf("message %q does not name the input", err)
			}
		})
	}

	t.Run("corrupt wraps epub error", func(t *testing.T) {
		_, err := NewPipeline(ConvertOptions{InputPath: corrupt}).Convert()
		if !errors.Is(err, epub.ErrInvalidEPUB) {
			t.Errorf("err = %v, want it to wrap ErrInvalidEPUB", err)
		}
	})
}

func TestPipelineConvertExistingFolder(t *testing.T) {
	tmp := t.TempDir()
	input := writeSampleEPUB(t, tmp, "sample.epub")
	opts := ConvertOptions{InputPath: input}

	if _, err := NewPipeline(opts).Convert(); err != nil {
		t.Fatalf("first Convert() error = %v", err)
	}
	_, err := NewPipeline(opts).Convert()
	if !errors.Is(err, ErrWrite) || !errors.Is(err, vault.ErrFolderExists) {
		t.Fatalf("second Convert() error = %v, want ErrWrite wrapping ErrFolderExists", err)
	}

	opts.Overwrite = true
	if _, err := NewPipeline(opts).Convert(); err != nil {
		t.Fatalf("Convert() with Overwrite error = %v", err)
	}
}

func TestToVaultBook(t *testing.T) {
	book := &epub.Book{
		Metadata: epub.Metadata{
			Title: "T",
			Creators: []epub.Creator{
				{Name: "Writer", Role: "aut"},
				{Name: "Drawer", Role: "ill"},
			},
		},
		Documents: []epub.Document{{ID: "a", Href: "a.xhtml"}, {ID: "b", Href: "b.xhtml"}},
		Images:    []epub.Image{{Href: "i.png", MediaType: "image/png"}},
		Cover:     "i.png",
	}
	got := toVaultBook(book)
	if len(got.Metadata.Authors) != 1 || got.Metadata.Authors[0] != "Writer" {
		t.Errorf("Authors = %v", got.Metadata.Authors)
	}
	for i, d := range got.Documents {
		if d.Position != i {
			t.Errorf("document %d has position %d", i, d.Position)
		}
	}
	if got.Documents[1].SourceID != "b" || got.Images[0].Path != "i.png" || got.Cover != "i.png" {
		t.Errorf("book = %+v", got)
	}
}

func TestInspect(t *testing.T) {
	input := writeSampleEPUB(t, t.TempDir(), "sample.epub")

	info, err := Inspect(input, nil)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if info.Folder != "Sample A Book_obsidian" {
		t.Errorf("Folder = %q", info.Folder)
	}
	if info.Metadata.Publisher != "Acme" || info.Images != 1 {
		t.Errorf("info = %+v", info)
	}
	want := []string{"01 - First.md", "02 - Second.md", "03 - Chapter 3.md"}
	if len(info.Chapters) != len(want) {
		t.Fatalf("got %d chapters, want %d", len(info.Chapters), len(want))
	}
	for i, c := range info.Chapters {
		if c.FileName() != want[i] {
			t.Errorf("chapter %d = %q, want %q", i, c.FileName(), want[i])
		}
	}
}
