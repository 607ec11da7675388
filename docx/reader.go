// Package docx provides DOCX (Office Open XML) package access for template
// filling: the text-bearing parts are parsed into mutable XML trees, every
// other zip entry is carried through untouched.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/beevik/etree"
	"gitlab.com/tozd/go/errors"
)

// ErrMalformed is returned when a file cannot be read as a DOCX package.
var ErrMalformed = errors.New("malformed document")

const mainPart = "word/document.xml"

// entry is a single zip member kept in original order.
type entry struct {
	name     string
	method   uint16
	modified time.Time
	data     []byte
}

// Part is a text-bearing XML part of the package.
type Part struct {
	Name string
	Kind PartKind
	Tree *etree.Document
}

// Document is an opened DOCX package.
type Document struct {
	name      string
	entries   []*entry
	parts     []*Part
	coreProps *corePropertiesXML
}

// Open opens a DOCX file.
func Open(filename string) (*Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", filename, err)
	}
	return OpenBytes(filepath.Base(filename), data)
}

// OpenBytes parses a DOCX package held in memory. name is used for
// diagnostics and as the source filename of generated output.
func OpenBytes(name string, data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Errorf("%w: opening ZIP archive: %s%s", ErrMalformed, err.Error(), describe(data))
	}

	d := &Document{name: name}

	for _, f := range zr.File {
		content, err := readZipFile(f)
		if err != nil {
			return nil, errors.Errorf("%w: reading %s: %s", ErrMalformed, f.Name, err.Error())
		}
		d.entries = append(d.entries, &entry{
			name:     f.Name,
			method:   f.Method,
			modified: f.Modified,
			data:     content,
		})
	}

	// Validate required files exist
	if err := d.validate(); err != nil {
		return nil, errors.Errorf("%w%s", err, describe(data))
	}

	if err := d.parseParts(); err != nil {
		return nil, err
	}

	// Metadata is optional
	d.parseCoreProperties()

	return d, nil
}

// readZipFile reads a single zip member.
func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Name returns the source filename.
func (d *Document) Name() string {
	return d.name
}

// Parts returns the text-bearing parts, main document first.
func (d *Document) Parts() []*Part {
	return d.parts
}

// Metadata returns the core document properties.
func (d *Document) Metadata() Metadata {
	meta := Metadata{}
	if d.coreProps == nil {
		return meta
	}
	meta.Title = strings.TrimSpace(d.coreProps.Title)
	meta.Subject = d.coreProps.Subject
	meta.Author = d.coreProps.Creator
	if d.coreProps.Keywords != "" {
		meta.Keywords = strings.Split(d.coreProps.Keywords, ",")
		for i, kw := range meta.Keywords {
			meta.Keywords[i] = strings.TrimSpace(kw)
		}
	}
	return meta
}

// validate checks that required DOCX files exist.
func (d *Document) validate() error {
	required := []string{
		"[Content_Types].xml",
		mainPart,
	}

	for _, name := range required {
		if d.entry(name) == nil {
			return errors.Errorf("%w: missing required file: %s", ErrMalformed, name)
		}
	}

	return nil
}

// entry returns a zip member by name.
func (d *Document) entry(name string) *entry {
	for _, e := range d.entries {
		if e.name == name {
			return e
		}
	}
	return nil
}

// getFileContent reads the content of a file from the package.
func (d *Document) getFileContent(name string) ([]byte, error) {
	if e := d.entry(name); e != nil {
		return e.data, nil
	}
	return nil, errors.Errorf("file not found: %s", name)
}

// parseParts parses the main document and every header, footer, footnote
// and endnote part referenced from its relationships.
func (d *Document) parseParts() error {
	body, err := d.parsePart(mainPart, KindBody)
	if err != nil {
		return err
	}
	d.parts = append(d.parts, body)

	rels, err := d.parseRelationships()
	if err != nil {
		return err
	}

	seen := map[string]bool{mainPart: true}
	for _, rel := range rels {
		kind, ok := relationshipKind(rel.Type)
		if !ok || rel.TargetMode == "External" {
			continue
		}
		name := resolveTarget(rel.Target)
		if seen[name] || d.entry(name) == nil {
			continue
		}
		seen[name] = true

		part, err := d.parsePart(name, kind)
		if err != nil {
			return err
		}
		d.parts = append(d.parts, part)
	}

	return nil
}

// parsePart reads a part into a mutable tree.
func (d *Document) parsePart(name string, kind PartKind) (*Part, error) {
	data, err := d.getFileContent(name)
	if err != nil {
		return nil, errors.Errorf("%w: %s", ErrMalformed, err.Error())
	}

	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(data); err != nil {
		return nil, errors.Errorf("%w: parsing %s: %s", ErrMalformed, name, err.Error())
	}
	if tree.Root() == nil {
		return nil, errors.Errorf("%w: %s has no root element", ErrMalformed, name)
	}

	return &Part{Name: name, Kind: kind, Tree: tree}, nil
}

// parseRelationships parses the main document relationships file.
func (d *Document) parseRelationships() ([]relationshipXML, error) {
	data, err := d.getFileContent("word/_rels/document.xml.rels")
	if err != nil {
		// Relationships file is optional
		return nil, nil
	}

	rels := &relationshipsXML{}
	if err := xml.Unmarshal(data, rels); err != nil {
		return nil, errors.Errorf("%w: parsing relationships: %s", ErrMalformed, err.Error())
	}
	return rels.Relationships, nil
}

// parseCoreProperties parses Dublin Core metadata.
func (d *Document) parseCoreProperties() {
	data, err := d.getFileContent("docProps/core.xml")
	if err != nil {
		return
	}

	props := &corePropertiesXML{}
	if xml.Unmarshal(data, props) == nil {
		d.coreProps = props
	}
}

// resolveTarget turns a relationship target relative to word/ into a
// package path.
func resolveTarget(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Clean(path.Join("word", target))
}
