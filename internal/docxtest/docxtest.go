// Package docxtest builds minimal DOCX packages for tests.
package docxtest

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const packageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// Package describes the parts of a test document.
type Package struct {
	// Body is the inner XML of <w:body>.
	Body string
	// Header and Footer are the inner XML of word/header1.xml and
	// word/footer1.xml; empty means the part is omitted.
	Header string
	Footer string
	// Title is written to docProps/core.xml when set.
	Title string
	// Extra holds additional zip entries by name.
	Extra map[string]string
}

// Document wraps body XML in a w:document root.
func Document(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><w:body>` + body + `</w:body></w:document>`
}

// Bytes builds the package in memory.
func (p Package) Bytes(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	write := func(name, content string) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	write("[Content_Types].xml", contentTypes)
	write("_rels/.rels", packageRels)
	write("word/document.xml", Document(p.Body))

	var rels string
	if p.Header != "" {
		rels += `<Relationship Id="rIdH1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/header" Target="header1.xml"/>`
		write("word/header1.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:hdr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`+p.Header+`</w:hdr>`)
	}
	if p.Footer != "" {
		rels += `<Relationship Id="rIdF1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer" Target="footer1.xml"/>`
		write("word/footer1.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:ftr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`+p.Footer+`</w:ftr>`)
	}
	if rels != "" {
		write("word/_rels/document.xml.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+rels+`</Relationships>`)
	}

	if p.Title != "" {
		write("docProps/core.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>`+p.Title+`</dc:title></cp:coreProperties>`)
	}

	for name, content := range p.Extra {
		write(name, content)
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return buf.Bytes()
}

// Write builds the package into dir/name and returns the path.
func (p Package) Write(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, p.Bytes(t), 0o644); err != nil {
		t.Fatalf("failed to write docx: %v", err)
	}
	return path
}

// Create writes a package with the given body to a temp dir and returns the
// path.
func Create(t *testing.T, body string) string {
	t.Helper()
	return Package{Body: body}.Write(t, t.TempDir(), "test.docx")
}

// Para returns a paragraph with one run per text.
func Para(texts ...string) string {
	out := "<w:p>"
	for _, text := range texts {
		out += Run(text)
	}
	return out + "</w:p>"
}

// Run returns a plain run.
func Run(text string) string {
	return `<w:r><w:t xml:space="preserve">` + text + `</w:t></w:r>`
}

// Table returns a single-row table with one paragraph cell per content.
func Table(cells ...string) string {
	out := "<w:tbl><w:tr>"
	for _, cell := range cells {
		out += "<w:tc>" + cell + "</w:tc>"
	}
	return out + "</w:tr></w:tbl>"
}
