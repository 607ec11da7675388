package docx

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tsawler/docfill/internal/docxtest"
)

func openBody(t *testing.T, body string) *Document {
	t.Helper()
	d, err := OpenBytes("edit.docx", docxtest.Package{Body: body}.Bytes(t))
	if err != nil {
		t.Fatalf("OpenBytes failed: %v", err)
	}
	return d
}

func TestSegmentSetText(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		wantText string
		wantTags []string
	}{
		{name: "plain", value: "Alice", wantText: "Alice", wantTags: []string{"t"}},
		{name: "newline", value: "line1\nline2", wantText: "line1\nline2", wantTags: []string{"t", "br", "t"}},
		{name: "crlf", value: "a\r\nb", wantText: "a\nb", wantTags: []string{"t", "br", "t"}},
		{name: "tab", value: "a\tb", wantText: "a\tb", wantTags: []string{"t", "tab", "t"}},
		{name: "leading newline", value: "\nb", wantText: "\nb", wantTags: []string{"t", "br", "t"}},
		{name: "empty", value: "", wantText: "", wantTags: []string{"t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := openBody(t, docxtest.Para("placeholder"))
			p := d.Paragraphs()[0]
			p.Segments()[0].SetText(tt.value)

			if got := p.Text(); got != tt.wantText {
				t.Errorf("Text = %q, want %q", got, tt.wantText)
			}

			var tags []string
			for _, child := range p.Runs[0].Element().ChildElements() {
				tags = append(tags, child.Tag)
			}
			if strings.Join(tags, ",") != strings.Join(tt.wantTags, ",") {
				t.Errorf("run children = %v, want %v", tags, tt.wantTags)
			}
		})
	}
}

func TestSegmentSetText_PreservesSpaces(t *testing.T) {
	d := openBody(t, `<w:p><w:r><w:t>x</w:t></w:r></w:p>`)
	seg := d.Paragraphs()[0].Segments()[0]
	seg.SetText(" padded ")

	if got := seg.el.SelectAttrValue("xml:space", ""); got != "preserve" {
		t.Errorf("xml:space = %q, want preserve", got)
	}
}

func TestRunSetFont(t *testing.T) {
	body := `<w:p>
<w:r><w:t>bare</w:t></w:r>
<w:r><w:rPr><w:rStyle w:val="Strong"/><w:b/></w:rPr><w:t>styled</w:t></w:r>
<w:r><w:rPr><w:rFonts w:asciiTheme="minorHAnsi" w:ascii="Arial"/></w:rPr><w:t>themed</w:t></w:r>
</w:p>`
	d := openBody(t, body)
	runs := d.Paragraphs()[0].Runs

	for _, r := range runs {
		r.SetFont("Times New Roman")
		if r.Font() != "Times New Roman" {
			t.Errorf("Font = %q", r.Font())
		}
		if r.EastAsiaFont() != "Times New Roman" {
			t.Errorf("EastAsiaFont = %q", r.EastAsiaFont())
		}
	}

	// rPr must be the first child of the run.
	if first := runs[0].Element().ChildElements()[0]; first.Tag != "rPr" {
		t.Errorf("first child = %q, want rPr", first.Tag)
	}

	// rFonts follows rStyle.
	rPr := firstChild(runs[1].Element(), "rPr")
	children := rPr.ChildElements()
	if children[0].Tag != "rStyle" || children[1].Tag != "rFonts" {
		t.Errorf("rPr children = %s,%s, want rStyle,rFonts", children[0].Tag, children[1].Tag)
	}

	fonts := firstChild(firstChild(runs[2].Element(), "rPr"), "rFonts")
	if fonts.SelectAttr("w:asciiTheme") != nil {
		t.Error("theme attribute should be removed")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	src := openBody(t, docxtest.Para("original"))
	clone := src.Clone()

	clone.Paragraphs()[0].Segments()[0].SetText("changed")

	if got := src.Paragraphs()[0].Text(); got != "original" {
		t.Errorf("source text = %q, want original", got)
	}
	if got := clone.Paragraphs()[0].Text(); got != "changed" {
		t.Errorf("clone text = %q, want changed", got)
	}
}

func TestWriteTo_RoundTrip(t *testing.T) {
	pkg := docxtest.Package{
		Body:   docxtest.Para("Привет, мир &amp; &lt;друзья&gt;"),
		Header: docxtest.Para("head"),
		Extra:  map[string]string{"word/media/image1.png": "\x89PNG fake"},
	}
	d, err := OpenBytes("rt.docx", pkg.Bytes(t))
	if err != nil {
		t.Fatalf("OpenBytes failed: %v", err)
	}
	d.Paragraphs()[0].Segments()[0].SetText("Готово & <ok>")

	data, err := d.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}

	reopened, err := OpenBytes("rt.docx", data)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if got := reopened.Paragraphs()[0].Text(); got != "Готово & <ok>" {
		t.Errorf("Text = %q", got)
	}
	if len(reopened.Parts()) != 2 {
		t.Errorf("expected 2 parts after round trip, got %d", len(reopened.Parts()))
	}

	media, err := reopened.getFileContent("word/media/image1.png")
	if err != nil {
		t.Fatalf("media entry missing: %v", err)
	}
	if !bytes.Equal(media, []byte("\x89PNG fake")) {
		t.Error("media entry changed")
	}

	var names []string
	for _, e := range reopened.entries {
		names = append(names, e.name)
	}
	if names[0] != "[Content_Types].xml" {
		t.Errorf("entry order changed: %v", names)
	}
}
