package output

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"os"
	"strconv"
)

// Deliver streams an artifact as a download. An artifact returned by
// Persist carries the bytes it wrote and is sent from memory, so a later
// write to the same path cannot change what this response contains. Other
// artifacts are read from Path.
func Deliver(w http.ResponseWriter, a Artifact) error {
	var (
		body io.Reader
		size int64
	)
	if a.content != nil {
		body = bytes.NewReader(a.content)
		size = int64(len(a.content))
	} else {
		f, err := os.Open(a.Path)
		if err != nil {
			return &IOError{Op: "open", Path: a.Path, Err: err}
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return &IOError{Op: "stat", Path: a.Path, Err: err}
		}
		body = f
		size = info.Size()
	}

	contentType := a.ContentType
	if contentType == "" {
		contentType = ContentType
	}

	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Disposition", ContentDisposition(a.Filename))
	h.Set("Content-Length", strconv.FormatInt(size, 10))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		return &IOError{Op: "send", Path: a.Path, Err: err}
	}
	return nil
}

// ContentDisposition returns an attachment header value for filename.
// Non-ASCII names are sent RFC 2231 encoded as filename*.
func ContentDisposition(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}
