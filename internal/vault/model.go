package vault

// Metadata describes the book. Empty fields are treated as absent.
type Metadata struct {
	Title       string
	Authors     []string
	Publisher   string
	Language    string
	Identifier  string
	ISBN        string
	Date        string
	Description string
	Subjects    []string
	Rights      string
	Extra       map[string]string
}

// Document is one content document selected as a chapter.
// Positions of a book's documents must be exactly 0..n-1.
type Document struct {
	Position int
	SourceID string
	Href     string // archive path
	Heading  string // first heading text, may be empty
	HTML     string
}

// Image is an embedded image resource.
type Image struct {
	Path      string // archive path
	MediaType string
	Data      []byte
}

// Book is the input of Build.
type Book struct {
	Metadata  Metadata
	Documents []Document
	Images    []Image // archive encounter order
	Cover     string  // archive path of the cover image, if any
}

// Renderer converts a content document to Markdown. images maps archive
// paths to placed image names and is nil when images are not extracted.
type Renderer interface {
	Render(html string, images map[string]string) (string, error)
}

// Config controls Build.
type Config struct {
	ExtractImages bool
	// MaxImageWidth downscales wider raster images; zero keeps originals.
	MaxImageWidth int
}

// File is a note to be written into the book folder.
type File struct {
	Name    string
	Content []byte
}

// Layout is the computed content of a book folder.
type Layout struct {
	Folder   string
	Index    File
	Info     File
	Chapters []File // position order
	Images   []PlacedImage
	Warnings []Warning
}

// Notes returns every note in write order: Index, Info, then chapters.
func (l *Layout) Notes() []File {
	notes := make([]File, 0, len(l.Chapters)+2)
	notes = append(notes, l.Index, l.Info)
	return append(notes, l.Chapters...)
}

// Warning records a recovered problem; the affected output is still produced.
type Warning struct {
	Stage   string // "render" or "image"
	Subject string
	Err     error
}

func (w Warning) String() string {
	return w.Stage + " " + w.Subject + ": " + w.Err.Error()
}
