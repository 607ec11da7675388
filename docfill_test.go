package docfill

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsawler/docfill/docx"
	"github.com/tsawler/docfill/fill"
	"github.com/tsawler/docfill/internal/docxtest"
)

func testTemplate(t *testing.T) string {
	t.Helper()
	return docxtest.Package{
		Body: docxtest.Para("Hello {$Имя}, {$ФИО_1} is {$Возраст_1}") +
			docxtest.Table(docxtest.Para("{$Имя}")),
	}.Write(t, t.TempDir(), "Договор.docx")
}

func TestOpen(t *testing.T) {
	// Test with non-existent file
	_, err := Open("nonexistent.docx").Tags()
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestOpen_NoFilename(t *testing.T) {
	_, err := Open("").Tags()
	if err == nil {
		t.Error("expected error for empty filename")
	}
}

func TestTags(t *testing.T) {
	tags, err := Open(testTemplate(t)).Tags()
	if err != nil {
		t.Fatalf("Tags failed: %v", err)
	}

	want := []string{"Имя", "ФИО_1", "Возраст_1"}
	if len(tags) != len(want) {
		t.Fatalf("got %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("tags[%d] = %q, want %q", i, tags[i], want[i])
		}
	}
}

func TestPrivileged(t *testing.T) {
	tags, err := Open(testTemplate(t)).Privileged().Tags()
	if err != nil {
		t.Fatalf("Tags failed: %v", err)
	}

	if tags[1] != "Возраст_1" {
		t.Errorf("expected Возраст_1 second without privilege, got %v", tags)
	}
}

func TestSchema(t *testing.T) {
	schema, err := Open(testTemplate(t)).Required().MaxLength(5).Schema()
	if err != nil {
		t.Fatalf("Schema failed: %v", err)
	}

	if len(schema.Fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(schema.Fields))
	}
	for _, f := range schema.Fields {
		if !f.Required || f.MaxLength != 5 {
			t.Errorf("field %q not configured: %+v", f.Name, f)
		}
	}
}

func TestFill(t *testing.T) {
	path := testTemplate(t)

	doc, res, err := Open(path).Fill(map[string]string{"Имя": "Анна", "ФИО_1": "Иванов И.И."})
	if err != nil {
		t.Fatalf("Fill failed: %v", err)
	}

	paras := doc.Paragraphs()
	if got := paras[0].Text(); got != "Hello Анна, Иванов И.И. is " {
		t.Errorf("paragraph = %q", got)
	}
	if got := paras[1].Text(); got != "Анна" {
		t.Errorf("cell = %q", got)
	}
	if len(res.Unresolved) != 1 || res.Unresolved[0] != "Возраст_1" {
		t.Errorf("Unresolved = %v", res.Unresolved)
	}
}

func TestWriteTo(t *testing.T) {
	var buf bytes.Buffer

	_, err := Open(testTemplate(t)).WriteTo(&buf, map[string]string{"Имя": "x"})
	if err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}

	doc, err := docx.OpenBytes("out.docx", buf.Bytes())
	if err != nil {
		t.Fatalf("output does not reopen: %v", err)
	}
	if got := doc.Paragraphs()[1].Text(); got != "x" {
		t.Errorf("cell = %q, want %q", got, "x")
	}
}

func TestFillTo(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "media")

	a, _, err := Open(testTemplate(t)).NameByID("7").FillTo(dir, nil)
	if err != nil {
		t.Fatalf("FillTo failed: %v", err)
	}

	if a.Filename != "generated_7.docx" {
		t.Errorf("Filename = %q", a.Filename)
	}
	if filepath.Dir(a.Path) != dir || !strings.HasPrefix(filepath.Base(a.Path), "generated_7_") {
		t.Errorf("Path = %q", a.Path)
	}
	if _, err := os.Stat(a.Path); err != nil {
		t.Errorf("artifact not on disk: %v", err)
	}
}

func TestFontOptions(t *testing.T) {
	doc, _, err := Open(testTemplate(t)).Font("Arial").FontMode(fill.FontAll).Fill(nil)
	if err != nil {
		t.Fatalf("Fill failed: %v", err)
	}

	for _, p := range doc.Paragraphs() {
		for _, r := range p.Runs {
			if r.Font() != "Arial" {
				t.Errorf("run font = %q, want Arial", r.Font())
			}
		}
	}
}

func TestInvalidOptions(t *testing.T) {
	if _, err := Open(testTemplate(t)).Font("").Tags(); err == nil {
		t.Error("expected error for empty font")
	}
	if _, err := Open(testTemplate(t)).FontMode("bold").Tags(); err == nil {
		t.Error("expected error for unknown font mode")
	}
}

func TestChainIsImmutable(t *testing.T) {
	base := Open(testTemplate(t))
	_ = base.Required()

	schema, err := base.Schema()
	if err != nil {
		t.Fatalf("Schema failed: %v", err)
	}
	if schema.Fields[0].Required {
		t.Error("configuring a derived Filler changed its base")
	}
}

func TestFromDocument(t *testing.T) {
	data := docxtest.Package{Body: docxtest.Para("{$A}")}.Bytes(t)
	doc, err := docx.OpenBytes("a.docx", data)
	if err != nil {
		t.Fatalf("OpenBytes failed: %v", err)
	}

	tags := Must(FromDocument(doc).Tags())
	if len(tags) != 1 || tags[0] != "A" {
		t.Errorf("tags = %v", tags)
	}
}

func TestContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Open(testTemplate(t)).Context(ctx).Fill(nil)
	if err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestMustPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	Must(Open("nonexistent.docx").Tags())
}
