package docx

import (
	"archive/zip"
	"bytes"
	"io"

	"gitlab.com/tozd/go/errors"
)

// Clone returns an independent copy of the document. Part trees are deep
// copied; raw entries are shared since they are never modified.
func (d *Document) Clone() *Document {
	c := &Document{
		name:      d.name,
		entries:   d.entries,
		coreProps: d.coreProps,
		parts:     make([]*Part, len(d.parts)),
	}
	for i, part := range d.parts {
		c.parts[i] = &Part{
			Name: part.Name,
			Kind: part.Kind,
			Tree: part.Tree.Copy(),
		}
	}
	return c
}

// part returns the parsed part with the given name.
func (d *Document) part(name string) *Part {
	for _, p := range d.parts {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// WriteTo writes the package as a DOCX zip archive. Entries keep their
// original order; parsed parts are serialized from their trees.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)

	for _, e := range d.entries {
		data := e.data
		if p := d.part(e.name); p != nil {
			serialized, err := p.Tree.WriteToBytes()
			if err != nil {
				return cw.n, errors.Errorf("serializing %s: %w", e.name, err)
			}
			data = serialized
		}

		method := e.method
		if method != zip.Store {
			method = zip.Deflate
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.name,
			Method:   method,
			Modified: e.modified,
		})
		if err != nil {
			return cw.n, errors.Errorf("creating %s: %w", e.name, err)
		}
		if _, err := fw.Write(data); err != nil {
			return cw.n, errors.Errorf("writing %s: %w", e.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return cw.n, errors.Errorf("closing archive: %w", err)
	}
	return cw.n, nil
}

// Bytes returns the serialized package.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// countingWriter counts bytes written through it.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
