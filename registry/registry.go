// Package registry discovers DOCX templates in a directory and gives each a
// stable id and a display name.
package registry

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/docfill/docx"
)

// ManifestFile is the optional manifest read from the template directory.
const ManifestFile = "templates.yaml"

// DefaultPattern matches every .docx file below the directory.
const DefaultPattern = "**/*.docx"

// ErrNotFound is returned for unknown template ids.
var ErrNotFound = errors.New("template not found")

// Template is a registered template file.
type Template struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	// File is the slash-separated path relative to the registry directory.
	File string `yaml:"file"`
	// Path is the file system path of the template.
	Path string `yaml:"-"`
}

// Open opens the template document.
func (t Template) Open() (*docx.Document, error) {
	return docx.Open(t.Path)
}

type manifest struct {
	Templates []Template `yaml:"templates"`
}

// Registry is an immutable set of templates.
type Registry struct {
	dir  string
	list []Template
	byID map[string]Template
}

// Load discovers templates under dir. Files matching pattern (DefaultPattern
// when empty) are registered; Word lock files (~$name.docx) are skipped.
// Entries of an optional templates.yaml manifest set explicit ids and names
// and may name files outside the pattern. Other templates get an id derived
// from their relative path and the document title (or file stem) as name.
func Load(ctx context.Context, dir, pattern string) (*Registry, error) {
	logger := zerolog.Ctx(ctx)
	if pattern == "" {
		pattern = DefaultPattern
	}

	r := &Registry{dir: dir, byID: make(map[string]Template)}

	m, err := readManifest(dir)
	if err != nil {
		return nil, err
	}
	listed := make(map[string]bool, len(m.Templates))
	for _, t := range m.Templates {
		if t.File == "" {
			return nil, errors.Errorf("%s: template %q has no file", ManifestFile, t.ID)
		}
		t.File = path.Clean(filepath.ToSlash(t.File))
		t.Path = filepath.Join(dir, filepath.FromSlash(t.File))
		if _, err := os.Stat(t.Path); err != nil {
			return nil, errors.Errorf("%s: template %q: %w", ManifestFile, t.ID, err)
		}
		if t.ID == "" {
			t.ID = DeriveID(t.File)
		}
		if t.Name == "" {
			t.Name = displayName(t.Path)
		}
		if err := r.add(t); err != nil {
			return nil, err
		}
		listed[t.File] = true
	}

	matches, err := doublestar.Glob(os.DirFS(dir), pattern)
	if err != nil {
		return nil, errors.Errorf("matching %q in %s: %w", pattern, dir, err)
	}
	for _, rel := range matches {
		if listed[rel] || strings.HasPrefix(path.Base(rel), "~$") {
			continue
		}
		t := Template{
			ID:   DeriveID(rel),
			File: rel,
			Path: filepath.Join(dir, filepath.FromSlash(rel)),
		}
		t.Name = displayName(t.Path)
		if err := r.add(t); err != nil {
			return nil, err
		}
	}

	sort.SliceStable(r.list, func(i, j int) bool {
		if r.list[i].Name != r.list[j].Name {
			return r.list[i].Name < r.list[j].Name
		}
		return r.list[i].ID < r.list[j].ID
	})

	logger.Debug().Str("dir", dir).Int("templates", len(r.list)).Msg("loaded template registry")
	return r, nil
}

// readManifest reads the manifest, which may be absent.
func readManifest(dir string) (manifest, error) {
	var m manifest
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	} else if err != nil {
		return m, errors.Errorf("reading %s: %w", ManifestFile, err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, errors.Errorf("parsing %s: %w", ManifestFile, err)
	}
	return m, nil
}

func (r *Registry) add(t Template) error {
	if _, ok := r.byID[t.ID]; ok {
		return errors.Errorf("duplicate template id %q (%s)", t.ID, t.File)
	}
	r.byID[t.ID] = t
	r.list = append(r.list, t)
	return nil
}

// DeriveID returns the id used for a template file without an explicit one:
// the first 8 hex digits of a name-based UUID over its relative path.
func DeriveID(rel string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("docfill:"+filepath.ToSlash(rel))).String()[:8]
}

// displayName is the document title, or the file stem when the title is
// empty or the file cannot be read.
func displayName(p string) string {
	if doc, err := docx.Open(p); err == nil {
		if title := doc.Metadata().Title; title != "" {
			return title
		}
	}
	base := filepath.Base(p)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Dir returns the registry directory.
func (r *Registry) Dir() string {
	return r.dir
}

// List returns the templates sorted by name.
func (r *Registry) List() []Template {
	out := make([]Template, len(r.list))
	copy(out, r.list)
	return out
}

// Get returns the template with the given id.
func (r *Registry) Get(id string) (Template, error) {
	t, ok := r.byID[id]
	if !ok {
		return Template{}, errors.Errorf("%w: %s", ErrNotFound, id)
	}
	return t, nil
}
