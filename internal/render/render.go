// Package render turns a Context into testbench source text.
//
// Templates are looked up by id in an explicit Set. The default set is built
// from the embedded templates directory; a directory on disk can override
// individual files, and tests can register in-memory renderers.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"text/template"
)

//go:embed templates/*.sv.tmpl
var templateFS embed.FS

// TemplateExt is the extension of template files.
const TemplateExt = ".sv.tmpl"

// ErrTemplateNotFound is returned when a Set has no renderer for an id.
var ErrTemplateNotFound = errors.New("template not found")

// Renderer renders one artifact.
type Renderer interface {
	Render(ctx Context) ([]byte, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx Context) ([]byte, error)

// Render calls f(ctx).
func (f RendererFunc) Render(ctx Context) ([]byte, error) { return f(ctx) }

// Set maps template ids to renderers. A Set must not be modified while it is
// being used for rendering.
type Set struct {
	renderers map[string]Renderer
	origins   map[string]string
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{
		renderers: make(map[string]Renderer),
		origins:   make(map[string]string),
	}
}

// Add registers r under id, replacing any previous renderer.
func (s *Set) Add(id string, r Renderer) {
	s.renderers[id] = r
	s.origins[id] = "memory"
}

// Lookup returns the renderer for id.
func (s *Set) Lookup(id string) (Renderer, error) {
	r, ok := s.renderers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return r, nil
}

// Render looks up id and renders ctx with it.
func (s *Set) Render(id string, ctx Context) ([]byte, error) {
	r, err := s.Lookup(id)
	if err != nil {
		return nil, err
	}
	return r.Render(ctx)
}

// IDs returns the registered ids, sorted.
func (s *Set) IDs() []string {
	ids := make([]string, 0, len(s.renderers))
	for id := range s.renderers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Origin reports where the renderer for id came from: "embedded", a file
// path, or "memory".
func (s *Set) Origin(id string) string {
	return s.origins[id]
}

// Default returns a Set holding every embedded template.
func Default() (*Set, error) {
	s := NewSet()
	entries, err := fs.ReadDir(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("reading embedded templates: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		src, err := templateFS.ReadFile("templates/" + name)
		if err != nil {
			return nil, fmt.Errorf("reading embedded template %s: %w", name, err)
		}
		tr, err := Parse(name, string(src))
		if err != nil {
			return nil, err
		}
		s.renderers[name] = tr
		s.origins[name] = "embedded"
	}
	return s, nil
}

// MustDefault is Default for callers that cannot recover from a broken build.
func MustDefault() *Set {
	s, err := Default()
	if err != nil {
		panic(err)
	}
	return s
}

// LoadDir parses every *.sv.tmpl file in dir into s, overriding templates
// with the same name. A parse error leaves s unchanged.
func (s *Set) LoadDir(dir string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("template dir: %w", err)
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*"+TemplateExt))
	if err != nil {
		return nil, fmt.Errorf("listing templates in %s: %w", dir, err)
	}
	sort.Strings(matches)

	parsed := make(map[string]Renderer, len(matches))
	for _, path := range matches {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading template: %w", err)
		}
		tr, err := Parse(filepath.Base(path), string(src))
		if err != nil {
			return nil, err
		}
		parsed[path] = tr
	}

	loaded := make([]string, 0, len(parsed))
	for _, path := range matches {
		id := filepath.Base(path)
		s.renderers[id] = parsed[path]
		s.origins[id] = path
		loaded = append(loaded, id)
	}
	return loaded, nil
}

// TemplateRenderer renders a parsed text/template.
type TemplateRenderer struct {
	tmpl *template.Template
}

// Parse compiles a template with FuncMap available.
func Parse(name, src string) (*TemplateRenderer, error) {
	t, err := template.New(name).Funcs(FuncMap()).Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}
	return &TemplateRenderer{tmpl: t}, nil
}

// Render executes the template into memory. Nothing is returned on failure,
// so a partial document can never reach disk.
func (t *TemplateRenderer) Render(ctx Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, ctx); err != nil {
		return nil, fmt.Errorf("executing template %s: %w", t.tmpl.Name(), err)
	}
	return buf.Bytes(), nil
}
