package server

import (
	"net/http"

	"github.com/flosch/pongo2/v6"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/tsawler/docfill/docx"
	"github.com/tsawler/docfill/form"
	"github.com/tsawler/docfill/output"
	"github.com/tsawler/docfill/placeholder"
	"github.com/tsawler/docfill/registry"
)

// fieldView is one form input as rendered.
type fieldView struct {
	Name      string
	Label     string
	Value     string
	Required  bool
	MaxLength int
	Errors    []string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "index.html", pongo2.Context{
		"templates": s.registry.List(),
	})
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	tpl, _, schema, err := s.load(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.renderForm(w, r, http.StatusOK, tpl, schema, nil, nil)
}

func (s *Server) handleFill(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	tpl, src, schema, err := s.load(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Bad request", "The form submission could not be read.")
		return
	}

	values, err := schema.Collect(r.PostForm)
	var verr *form.ValidationError
	if errors.As(err, &verr) {
		logger.Debug().Str("template", tpl.ID).Int("fields", len(verr.Fields)).Msg("form rejected")
		s.renderForm(w, r, http.StatusUnprocessableEntity, tpl, schema, values, verr.Fields)
		return
	} else if err != nil {
		s.fail(w, r, err)
		return
	}

	doc, res, err := s.engine.Fill(r.Context(), src, values)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	artifact, err := s.writer.Persist(r.Context(), doc, tpl.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	logger.Info().
		Str("template", tpl.ID).
		Str("file", artifact.Filename).
		Strs("unresolved", res.Unresolved).
		Msg("generated document")

	if err := output.Deliver(w, artifact); err != nil {
		// Headers may already be sent; only log.
		logger.Error().Err(err).Str("path", artifact.Path).Msg("delivering document")
	}
}

// load resolves the template of the request, opens it and builds its form
// schema. Every request works on its own copy of the document.
func (s *Server) load(r *http.Request) (registry.Template, *docx.Document, *form.Schema, error) {
	tpl, err := s.registry.Get(r.PathValue("id"))
	if err != nil {
		return registry.Template{}, nil, nil, err
	}
	doc, err := tpl.Open()
	if err != nil {
		return tpl, nil, nil, err
	}
	names := s.orderer.Order(placeholder.Scan(doc).Slice())
	return tpl, doc, form.New(names, s.formOpts...), nil
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, tpl registry.Template, schema *form.Schema, values form.Values, problems map[string][]string) {
	fields := make([]fieldView, 0, len(schema.Fields))
	for _, f := range schema.Fields {
		fields = append(fields, fieldView{
			Name:      f.Name,
			Label:     f.Label,
			Value:     values[f.Name],
			Required:  f.Required,
			MaxLength: f.MaxLength,
			Errors:    problems[f.Name],
		})
	}
	s.render(w, r, status, "form.html", pongo2.Context{
		"template": tpl,
		"fields":   fields,
		"invalid":  len(problems) > 0,
	})
}

// fail maps an error to a status and renders the error page.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	logger := zerolog.Ctx(r.Context())

	switch {
	case errors.Is(err, registry.ErrNotFound):
		s.renderError(w, r, http.StatusNotFound, "Not found", "No template with this id exists.")
	case errors.Is(err, docx.ErrMalformed):
		logger.Warn().Err(err).Msg("malformed template")
		s.renderError(w, r, http.StatusUnprocessableEntity, "Unreadable template", "The template is not a valid .docx document.")
	case errors.Is(err, output.ErrIO):
		logger.Error().Err(err).Msg("writing output")
		s.renderError(w, r, http.StatusInternalServerError, "Server error", "The document could not be saved.")
	default:
		logger.Error().Err(err).Msg("request failed")
		s.renderError(w, r, http.StatusInternalServerError, "Server error", "The document could not be generated.")
	}
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, title, message string) {
	s.render(w, r, status, "error.html", pongo2.Context{
		"title":      title,
		"message":    message,
		"request_id": w.Header().Get(requestIDHeader),
	})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pongo2.Context) {
	tpl, err := s.views.FromCache(name)
	if err == nil {
		var page []byte
		page, err = tpl.ExecuteBytes(data)
		if err == nil {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(status)
			_, _ = w.Write(page)
			return
		}
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Str("view", name).Msg("rendering view")
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
