// Package theme loads the HTML templates of a site theme and renders them by name.
package theme

import (
	"bytes"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/mdbear/internal/foundation/errors"
)

// Template names every theme must provide.
const (
	PageTemplate = "page.html"
	ListTemplate = "list.html"
)

// Renderer renders a named template with a data mapping.
type Renderer interface {
	Render(name string, data map[string]any) (string, error)
}

// Theme is a parsed set of templates. All *.html files below the theme root are
// parsed into one set, named by their slash separated relative path, so any
// file may call a {{define}} block from another.
type Theme struct {
	root  string
	set   *template.Template
	names []string
}

// Funcs are the helpers available to every theme template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"deref": deref,
	}
}

// Load parses every *.html file under root. The page and list templates are required.
func Load(root string) (*Theme, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, errors.WrapError(err, errors.CategoryTemplate, "theme directory not found").
			WithContext("path", root).Build()
	}

	set := template.New("").Funcs(Funcs())
	var names []string
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".html") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if _, err := set.New(name).Parse(string(src)); err != nil {
			return errors.WrapError(err, errors.CategoryTemplate, "cannot parse template").
				WithContext("path", name).Build()
		}
		names = append(names, name)
		return nil
	})
	if walkErr != nil {
		if errors.IsClassified(walkErr) {
			return nil, walkErr
		}
		return nil, errors.WrapError(walkErr, errors.CategoryTemplate, "cannot load theme").
			WithContext("path", root).Build()
	}

	for _, required := range []string{PageTemplate, ListTemplate} {
		if set.Lookup(required) == nil {
			return nil, errors.TemplateError("theme is missing a required template").
				WithContext("path", root).WithContext("template", required).Build()
		}
	}

	sort.Strings(names)
	return &Theme{root: root, set: set, names: names}, nil
}

// Render executes the named template. Rendering never mutates the set, so a
// Theme may be shared between builds running one after another.
func (t *Theme) Render(name string, data map[string]any) (string, error) {
	tpl := t.set.Lookup(name)
	if tpl == nil {
		return "", errors.TemplateError("template not found").WithContext("template", name).Build()
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", errors.WrapError(err, errors.CategoryTemplate, "cannot render template").
			Fatal().WithContext("template", name).Build()
	}
	return buf.String(), nil
}

// Names lists the parsed template files.
func (t *Theme) Names() []string { return append([]string(nil), t.names...) }

// Root returns the directory the theme was loaded from.
func (t *Theme) Root() string { return t.root }

func deref(v any) string {
	switch s := v.(type) {
	case *string:
		if s == nil {
			return ""
		}
		return *s
	case string:
		return s
	default:
		return ""
	}
}
