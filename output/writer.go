package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/tsawler/docfill/docx"
)

// ContentType is the MIME type of WordprocessingML documents.
const ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// ErrIO matches every persistence or delivery failure.
var ErrIO = errors.New("output i/o failure")

// IOError is a file system failure while writing or reading output.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrIO) hold for every IOError.
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

// Artifact is a persisted generated document.
type Artifact struct {
	Path        string
	Filename    string
	ContentType string
	Size        int64

	content []byte // bytes written by Persist
}

// Writer persists generated documents.
type Writer struct {
	Dir   string
	Namer Namer
}

// NewWriter returns a Writer for dir using policy.
func NewWriter(dir string, policy Policy) *Writer {
	return &Writer{Dir: dir, Namer: Namer{Policy: policy}}
}

// Persist serializes doc and stores it under the output directory, which
// is created when missing. The file is written to a temporary name and
// renamed into place, so a failed write never leaves partial output.
func (w *Writer) Persist(ctx context.Context, doc *docx.Document, templateID string) (Artifact, error) {
	data, err := doc.Bytes()
	if err != nil {
		return Artifact{}, errors.Errorf("serializing %s: %w", doc.Name(), err)
	}
	return w.PersistBytes(ctx, doc.Name(), templateID, data)
}

// PersistBytes stores already serialized content generated from source.
func (w *Writer) PersistBytes(ctx context.Context, source, templateID string, data []byte) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, errors.WithStack(err)
	}

	name := w.Namer.Name(source, templateID, data)
	path := filepath.Join(w.Dir, name.Disk)

	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return Artifact{}, &IOError{Op: "mkdir", Path: w.Dir, Err: err}
	}

	tmp, err := os.CreateTemp(w.Dir, ".docfill-*.tmp")
	if err != nil {
		return Artifact{}, &IOError{Op: "create", Path: w.Dir, Err: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return Artifact{}, &IOError{Op: "write", Path: tmpName, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return Artifact{}, &IOError{Op: "close", Path: tmpName, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return Artifact{}, &IOError{Op: "chmod", Path: tmpName, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		return Artifact{}, &IOError{Op: "rename", Path: path, Err: err}
	}

	zerolog.Ctx(ctx).Info().
		Str("path", path).
		Str("filename", name.Download).
		Int("size", len(data)).
		Msg("persisted document")

	return Artifact{
		Path:        path,
		Filename:    name.Download,
		ContentType: ContentType,
		Size:        int64(len(data)),
		content:     data,
	}, nil
}
