// Package server is the HTTP front end: a template index, a fill form per
// template and the download of generated documents.
package server

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"time"

	"github.com/flosch/pongo2/v6"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/tsawler/docfill/config"
	"github.com/tsawler/docfill/fill"
	"github.com/tsawler/docfill/form"
	"github.com/tsawler/docfill/output"
	"github.com/tsawler/docfill/placeholder"
	"github.com/tsawler/docfill/registry"
)

//go:embed views/*.html
var viewsFS embed.FS

// Server serves the fill workflow for a template registry.
type Server struct {
	registry *registry.Registry
	engine   *fill.Engine
	writer   *output.Writer
	orderer  placeholder.Orderer
	formOpts []form.Option
	addr     string
	logger   zerolog.Logger

	views *pongo2.TemplateSet
}

// New returns a Server configured from cfg.
func New(reg *registry.Registry, cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	views, err := loadViews()
	if err != nil {
		return nil, err
	}
	return &Server{
		registry: reg,
		engine:   cfg.Engine(),
		writer:   cfg.Writer(),
		orderer:  cfg.Orderer(),
		formOpts: cfg.FormOptions(),
		addr:     cfg.Server.Addr,
		logger:   logger,
		views:    views,
	}, nil
}

// loadViews parses the embedded page templates.
func loadViews() (*pongo2.TemplateSet, error) {
	sub, err := fsSub(viewsFS, "views")
	if err != nil {
		return nil, err
	}
	set := pongo2.NewSet("docfill", pongo2.NewFSLoader(sub))
	for _, name := range []string{"index.html", "form.html", "error.html"} {
		if _, err := set.FromCache(name); err != nil {
			return nil, errors.Errorf("parsing view %s: %w", name, err)
		}
	}
	return set, nil
}

func fsSub(fsys fs.FS, dir string) (fs.FS, error) {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return nil, errors.Errorf("opening %s: %w", dir, err)
	}
	return sub, nil
}

// Handler returns the routes wrapped with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /fill/{id}", s.handleForm)
	mux.HandleFunc("POST /fill/{id}", s.handleFill)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return s.withRequestID(mux)
}

// Run serves until ctx is canceled, then shuts down within grace.
func (s *Server) Run(ctx context.Context, grace time.Duration) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.addr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err, ok := <-errChan:
		if ok {
			return errors.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Errorf("shutdown: %w", err)
	}
	s.logger.Info().Msg("server stopped")
	return nil
}
