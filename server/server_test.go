package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/tsawler/docfill/config"
	"github.com/tsawler/docfill/docx"
	"github.com/tsawler/docfill/internal/docxtest"
	"github.com/tsawler/docfill/output"
	"github.com/tsawler/docfill/registry"
)

const manifest = `templates:
  - id: contract
    name: Договор
    file: contract.docx
  - id: broken
    name: Broken
    file: broken.docx
`

func newTestServer(t *testing.T, mutate func(*config.Config)) (*Server, *config.Config) {
	t.Helper()

	dir := t.TempDir()
	docxtest.Package{
		Body: docxtest.Para("Hello {$Name}, today is {$Date}.") +
			docxtest.Table(docxtest.Para("{$Name2}")) +
			docxtest.Para("{$ФИО_1} {$Возраст_1} {$Имя}"),
	}.Write(t, dir, "contract.docx")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.docx"), []byte("not a zip"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, registry.ManifestFile), []byte(manifest), 0o644))

	cfg := config.Default()
	cfg.Templates.Dir = dir
	cfg.Output.Dir = filepath.Join(t.TempDir(), "media")
	if mutate != nil {
		mutate(cfg)
	}

	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
	ctx := logger.WithContext(context.Background())

	reg, err := registry.Load(ctx, cfg.Templates.Dir, cfg.Templates.Pattern)
	require.NoError(t, err)

	s, err := New(reg, cfg, logger)
	require.NoError(t, err)
	return s, cfg
}

// inputs returns the name attributes of the text inputs in page order.
func inputs(t *testing.T, body string) []string {
	t.Helper()

	doc, err := html.Parse(strings.NewReader(body))
	require.NoError(t, err)

	var names []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "input" {
			for _, a := range n.Attr {
				if a.Key == "name" {
					names = append(names, a.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return names
}

func TestIndex(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Договор")
	assert.Contains(t, rec.Body.String(), `href="/fill/contract"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestForm_RendersFieldsInOrder(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fill/contract", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	want := []string{"Date", "Name", "Name2", "Имя", "ФИО_1", "Возраст_1"}
	if diff := cmp.Diff(want, inputs(t, rec.Body.String())); diff != "" {
		t.Errorf("inputs mismatch (-want +got):\n%s", diff)
	}
}

func TestForm_NotFound(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fill/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestForm_Malformed(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fill/broken", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "not a valid .docx")
}

func post(s *Server, path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Request-Id", "test-request")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestFill_Download(t *testing.T) {
	s, cfg := newTestServer(t, func(c *config.Config) { c.Output.Naming = "id" })

	rec := post(s, "/fill/contract", url.Values{
		"Name":  {"Alice"},
		"Date":  {"2024-01-01"},
		"Name2": {"Bob"},
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, output.ContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=generated_contract.docx", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "test-request", rec.Header().Get("X-Request-Id"))

	doc, err := docx.OpenBytes("out.docx", rec.Body.Bytes())
	require.NoError(t, err)
	paras := doc.Paragraphs()
	assert.Equal(t, "Hello Alice, today is 2024-01-01.", paras[0].Text())
	assert.Equal(t, "Bob", paras[1].Text())
	assert.Equal(t, "  ", paras[2].Text())

	matches, err := filepath.Glob(filepath.Join(cfg.Output.Dir, "generated_contract_*.docx"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestFill_DateNaming(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := post(s, "/fill/contract", url.Values{"Name": {"Alice"}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Regexp(t, `^attachment; filename=contract_\d{4}-\d{2}-\d{2}\.docx$`, rec.Header().Get("Content-Disposition"))
}

func TestFill_ConcurrentRequestsGetOwnDocument(t *testing.T) {
	s, cfg := newTestServer(t, func(c *config.Config) { c.Output.Naming = "id" })

	names := []string{"Alice", "Bob", "Carol", "Dave", "Erin", "Frank", "Grace", "Heidi"}
	recs := make([]*httptest.ResponseRecorder, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			recs[i] = post(s, "/fill/contract", url.Values{"Name": {name}, "Date": {"2024-01-01"}})
		}()
	}
	wg.Wait()

	entries, err := os.ReadDir(cfg.Output.Dir)
	require.NoError(t, err)
	assert.Len(t, entries, len(names), "one output file per request")

	for i, name := range names {
		rec := recs[i]
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		doc, err := docx.OpenBytes("out.docx", rec.Body.Bytes())
		require.NoError(t, err)
		assert.Equal(t, "Hello "+name+", today is 2024-01-01.", doc.Paragraphs()[0].Text())
	}
}

func TestFill_ValidationRerendersForm(t *testing.T) {
	s, _ := newTestServer(t, func(c *config.Config) { c.Form.Required = true })

	rec := post(s, "/fill/contract", url.Values{"Name": {"Alice"}})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "is required")
	assert.Contains(t, body, `value="Alice"`)
	assert.Len(t, inputs(t, body), 6)
}

func TestFill_UnwritableOutput(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	s, _ := newTestServer(t, func(c *config.Config) { c.Output.Dir = filepath.Join(blocker, "media") })

	rec := post(s, "/fill/contract", url.Values{})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "could not be saved")
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
