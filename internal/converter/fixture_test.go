package converter

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

const sampleOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="uid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:opf="http://www.idpf.org/2007/opf">
    <dc:title>Sample: A Book</dc:title>
    <dc:creator id="a1">Jane Doe</dc:creator>
    <dc:creator id="e1">Ed Itor</dc:creator>
    <meta refines="#e1" property="role" scheme="marc:relators">edt</meta>
    <dc:identifier id="uid">urn:isbn:9781234567897</dc:identifier>
    <dc:language>en</dc:language>
    <dc:publisher>Acme</dc:publisher>
  </metadata>
  <manifest>
    <item id="c1" href="text/one.xhtml" media-type="application/xhtml+xml"/>
    <item id="c2" href="text/two.xhtml" media-type="application/xhtml+xml"/>
    <item id="c3" href="text/three.xhtml" media-type="application/xhtml+xml"/>
    <item id="fig" href="images/fig.png" media-type="image/png"/>
  </manifest>
  <spine>
    <itemref idref="c1"/>
    <itemref idref="c2"/>
    <itemref idref="c3"/>
  </spine>
</package>`

// fixtureFile is one entry of a test archive.
type fixtureFile struct {
	name string
	body string
}

const testContainerXML = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles><rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/></rootfiles>
</container>`

// writeSampleEPUB writes a three chapter book with one image into dir.
func writeSampleEPUB(t *testing.T, dir, name string) string {
	t.Helper()
	return writeEPUB(t, dir, name, []fixtureFile{
		{"mimetype", "application/epub+zip"},
		{"META-INF/container.xml", testContainerXML},
		{"OEBPS/content.opf", sampleOPF},
		{"OEBPS/text/one.xhtml", `<html><body><h1>First</h1><p>Hello <em>there</em>.</p><p><img src="../images/fig.png" alt="fig"/></p></body></html>`},
		{"OEBPS/text/two.xhtml", `<html><body><h2>Second</h2><p>Middle.</p></body></html>`},
		{"OEBPS/text/three.xhtml", `<html><body><p>No heading here.</p></body></html>`},
		{"OEBPS/images/fig.png", "png-bytes"},
	})
}

// writeEPUB writes files, in order, into dir/name.
func writeEPUB(t *testing.T, dir, name string, files []fixtureFile) string {
	t.Helper()
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for _, file := range files {
		method := zip.Deflate
		if file.name == "mimetype" {
			method = zip.Store
		}
		fw, err := w.CreateHeader(&zip.FileHeader{Name: file.name, Method: method})
		if err != nil {
			t.Fatalf("failed to create %s: %v", file.name, err)
		}
		if _, err := fw.Write([]byte(file.body)); err != nil {
			t.Fatalf("failed to write %s: %v", file.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return p
}
