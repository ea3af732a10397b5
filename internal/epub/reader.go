package epub

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"
)

const (
	epubMimetype  = "application/epub+zip"
	containerPath = "META-INF/container.xml"
	opfMediaType  = "application/oebps-package+xml"
)

// EPUBReader provides access to EPUB file contents
type EPUBReader struct {
	zipReader *zip.ReadCloser
	files     map[string]*zip.File
	lower     map[string]*zip.File
	opfPath   string
}

// container.xml structure
type container struct {
	Rootfiles struct {
		Rootfile []struct {
			FullPath  string `xml:"full-path,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"rootfile"`
	} `xml:"rootfiles"`
}

// Open opens an EPUB file and validates its structure.
// Structural problems are reported as errors wrapping ErrInvalidEPUB.
func Open(filePath string) (*EPUBReader, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: not a zip archive: %v", ErrInvalidEPUB, err)
	}

	reader := &EPUBReader{
		zipReader: zr,
		files:     make(map[string]*zip.File, len(zr.File)),
		lower:     make(map[string]*zip.File, len(zr.File)),
	}
	for _, f := range zr.File {
		name := normalizePath(f.Name)
		reader.files[name] = f
		reader.lower[strings.ToLower(name)] = f
	}

	for _, check := range []func() error{
		reader.validateMimetype,
		reader.checkDRM,
		reader.parseContainer,
	} {
		if err := check(); err != nil {
			zr.Close()
			return nil, err
		}
	}

	return reader, nil
}

// Close closes the EPUB reader
func (r *EPUBReader) Close() error {
	return r.zipReader.Close()
}

// OPFPath returns the path to the OPF file
func (r *EPUBReader) OPFPath() string {
	return r.opfPath
}

// Has reports whether the archive contains the given path.
func (r *EPUBReader) Has(name string) bool {
	return r.lookup(name) != nil
}

// ReadFile reads the contents of a file from the EPUB.
// Lookups fall back to a case-insensitive match, since hrefs in
// real-world packages do not always match the zip entry case.
func (r *EPUBReader) ReadFile(name string) ([]byte, error) {
	f := r.lookup(name)
	if f == nil {
		return nil, fmt.Errorf("file not found: %s", normalizePath(name))
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", name, err)
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

func (r *EPUBReader) lookup(name string) *zip.File {
	name = normalizePath(name)
	if f, ok := r.files[name]; ok {
		return f
	}
	return r.lower[strings.ToLower(name)]
}

// validateMimetype checks that the mimetype file exists, is stored
// uncompressed and carries the EPUB media type.
func (r *EPUBReader) validateMimetype() error {
	f, ok := r.files["mimetype"]
	if !ok {
		return ErrMimetypeNotFound
	}
	if f.Method != zip.Store {
		return ErrMimetypeCompressed
	}

	content, err := r.ReadFile("mimetype")
	if err != nil {
		return fmt.Errorf("%w: failed to read mimetype: %v", ErrInvalidEPUB, err)
	}
	if strings.TrimSpace(string(content)) != epubMimetype {
		return ErrInvalidMimetype
	}
	return nil
}

// parseContainer parses container.xml to extract OPF path
func (r *EPUBReader) parseContainer() error {
	content, err := r.ReadFile(containerPath)
	if err != nil {
		return ErrContainerNotFound
	}

	var c container
	if err := xml.Unmarshal(content, &c); err != nil {
		return fmt.Errorf("%w: failed to parse container.xml: %v", ErrInvalidEPUB, err)
	}

	rootfiles := c.Rootfiles.Rootfile
	for _, rf := range rootfiles {
		if rf.FullPath != "" && (rf.MediaType == opfMediaType || rf.MediaType == "") {
			r.opfPath = normalizePath(rf.FullPath)
			return nil
		}
	}
	if len(rootfiles) > 0 && rootfiles[0].FullPath != "" {
		r.opfPath = normalizePath(rootfiles[0].FullPath)
		return nil
	}

	return ErrOPFPathNotFound
}

// normalizePath cleans an archive path and removes any leading "./" or "/".
func normalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean("/" + p)
	return strings.TrimPrefix(p, "/")
}
