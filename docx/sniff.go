package docx

import (
	"archive/zip"
	"bytes"
	"strings"
)

// Format is the kind of file a byte slice holds, as far as it matters for
// explaining why it cannot be filled.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// DOCX indicates a WordprocessingML package.
	DOCX
	// LegacyDoc indicates a Word 97-2003 binary (OLE2 compound) file.
	LegacyDoc
	// PDF indicates a PDF document.
	PDF
	// ODT indicates an OpenDocument Text document.
	ODT
	// XLSX indicates a spreadsheet package.
	XLSX
	// PPTX indicates a presentation package.
	PPTX
	// Zip indicates a ZIP archive that is not an office document.
	Zip
)

// String returns a human readable name for the format.
func (f Format) String() string {
	switch f {
	case DOCX:
		return "Word document"
	case LegacyDoc:
		return "Word 97-2003 document"
	case PDF:
		return "PDF document"
	case ODT:
		return "OpenDocument text"
	case XLSX:
		return "Excel workbook"
	case PPTX:
		return "PowerPoint presentation"
	case Zip:
		return "ZIP archive"
	default:
		return "unknown file"
	}
}

var (
	magicZip = []byte("PK\x03\x04")
	magicPDF = []byte("%PDF")
	magicOLE = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Sniff inspects file content to determine its format. ZIP archives are
// told apart by their member names.
func Sniff(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, magicPDF):
		return PDF
	case bytes.HasPrefix(data, magicOLE):
		return LegacyDoc
	case bytes.HasPrefix(data, magicZip):
		return sniffZip(data)
	}
	return Unknown
}

// sniffZip classifies a ZIP archive by its mimetype member or OOXML folders.
func sniffZip(data []byte) Format {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Unknown
	}

	for _, f := range zr.File {
		if f.Name != "mimetype" {
			continue
		}
		content, err := readZipFile(f)
		if err == nil && strings.Contains(string(content), "application/vnd.oasis.opendocument.text") {
			return ODT
		}
	}

	for _, f := range zr.File {
		switch {
		case strings.HasPrefix(f.Name, "word/"):
			return DOCX
		case strings.HasPrefix(f.Name, "xl/"):
			return XLSX
		case strings.HasPrefix(f.Name, "ppt/"):
			return PPTX
		}
	}
	return Zip
}

// describe explains what data is when it is not a usable DOCX package.
func describe(data []byte) string {
	switch f := Sniff(data); f {
	case Unknown, DOCX:
		return ""
	default:
		return " (file is a " + f.String() + ")"
	}
}
