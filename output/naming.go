// Package output names generated documents, persists them under an output
// directory and streams them to HTTP clients as attachments.
package output

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"
)

// Policy selects how output files are named.
type Policy string

const (
	// PolicyDate names files <stem>_<YYYY-MM-DD><ext>.
	PolicyDate Policy = "date"
	// PolicyID offers generated_<template-id>.docx as the download name.
	PolicyID Policy = "id"
)

const (
	defaultExt  = ".docx"
	defaultStem = "document"
	dateLayout  = "2006-01-02"
	hashLength  = 8
)

// ParsePolicy validates a policy name. The empty string selects PolicyDate.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "":
		return PolicyDate, nil
	case PolicyDate, PolicyID:
		return Policy(s), nil
	}
	return "", errors.Errorf("unknown naming policy %q", s)
}

// Name is the pair of names used for one generated document.
type Name struct {
	// Download is offered to the client in Content-Disposition.
	Download string
	// Disk is the file name under the output directory.
	Disk string
}

// Namer derives output names.
type Namer struct {
	Policy Policy
	// Now defaults to time.Now.
	Now func() time.Time
}

// Name derives the names for a document generated from source (a file name
// or path) and template id. Under both policies the disk name carries a
// short content hash so that different documents never overwrite each
// other; identical documents share one file.
func (n Namer) Name(source, templateID string, content []byte) Name {
	if n.Policy == PolicyID {
		name := IDName(templateID)
		stem, ext := splitName(name)
		return Name{Download: name, Disk: stem + "_" + contentToken(content) + ext}
	}

	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	date := now()

	stem, ext := splitName(source)
	return Name{
		Download: stem + "_" + date.Format(dateLayout) + ext,
		Disk:     stem + "_" + date.Format(dateLayout) + "_" + contentToken(content) + ext,
	}
}

// DateName returns <stem>_<YYYY-MM-DD><ext> for source. The extension
// defaults to .docx.
func DateName(source string, date time.Time) string {
	stem, ext := splitName(source)
	return stem + "_" + date.Format(dateLayout) + ext
}

// IDName returns generated_<id>.docx.
func IDName(id string) string {
	id = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, id)
	if id == "" {
		id = defaultStem
	}
	return "generated_" + id + defaultExt
}

// splitName returns the base name of source without and with its
// extension.
func splitName(source string) (stem, ext string) {
	base := filepath.Base(filepath.FromSlash(source))
	if base == "." || base == string(filepath.Separator) {
		base = ""
	}
	ext = filepath.Ext(base)
	stem = strings.TrimSuffix(base, ext)
	if ext == "" || ext == "." {
		ext = defaultExt
	}
	if stem == "" {
		stem = defaultStem
	}
	return stem, ext
}

// contentToken is the leading hex digits of the SHA-256 of content.
func contentToken(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])[:hashLength]
}
