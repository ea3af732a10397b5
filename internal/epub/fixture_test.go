package epub

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

const testContainerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const testOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="uid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Test Book</dc:title>
    <dc:creator id="c1">Ada Writer</dc:creator>
    <dc:language>en</dc:language>
    <dc:identifier id="uid">urn:uuid:12345</dc:identifier>
  </metadata>
  <manifest>
    <item id="cover" href="images/cover.jpg" media-type="image/jpeg" properties="cover-image"/>
    <item id="ch2" href="text/chapter2.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch1" href="text/chapter1.xhtml" media-type="application/xhtml+xml"/>
    <item id="blank" href="text/blank.xhtml" media-type="application/xhtml+xml"/>
    <item id="css" href="style.css" media-type="text/css"/>
  </manifest>
  <spine>
    <itemref idref="ch1"/>
    <itemref idref="blank"/>
    <itemref idref="ch2"/>
    <itemref idref="css"/>
  </spine>
</package>`

// zipEntry is a single file written into a test archive.
type zipEntry struct {
	Name   string
	Body   string
	Method uint16
}

// writeZip writes entries, in order, into dir/name.
func writeZip(t *testing.T, dir, name string, entries []zipEntry) string {
	t.Helper()
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for _, e := range entries {
		method := e.Method
		if method == 0 && e.Name != "mimetype" {
			method = zip.Deflate
		}
		fw, err := w.CreateHeader(&zip.FileHeader{Name: e.Name, Method: method})
		if err != nil {
			t.Fatalf("failed to create %s: %v", e.Name, err)
		}
		if _, err := fw.Write([]byte(e.Body)); err != nil {
			t.Fatalf("failed to write %s: %v", e.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return p
}

// baseEntries returns a valid package; extra entries are appended.
func baseEntries(extra ...zipEntry) []zipEntry {
	entries := []zipEntry{
		{Name: "mimetype", Body: "application/epub+zip", Method: zip.Store},
		{Name: "META-INF/container.xml", Body: testContainerXML},
		{Name: "OEBPS/content.opf", Body: testOPF},
		{Name: "OEBPS/text/chapter1.xhtml", Body: `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>One</title><link rel="stylesheet" href="../style.css"/></head>
<body><h1>The   Beginning</h1><p>Hello, World!</p><p><img src="../images/cover.jpg" alt="c"/></p><p>  </p></body>
</html>`},
		{Name: "OEBPS/text/chapter2.xhtml", Body: `<html><body><h2>Second</h2><p>More text.</p><script>x()</script></body></html>`},
		{Name: "OEBPS/text/blank.xhtml", Body: `<html><body><p> </p></body></html>`},
		{Name: "OEBPS/images/cover.jpg", Body: "jpeg-bytes"},
		{Name: "OEBPS/style.css", Body: "p { margin: 0 }"},
	}
	return append(entries, extra...)
}

func createTestEPUB(t *testing.T, dir string) string {
	t.Helper()
	return writeZip(t, dir, "test.epub", baseEntries())
}
