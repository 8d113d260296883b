package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdbear/internal/foundation/errors"
)

func writeTheme(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, body := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
	}
	return root
}

func TestLoadAndRender(t *testing.T) {
	root := writeTheme(t, map[string]string{
		"page.html":          `{{template "partials/head.html" .}}<main>{{.content}}</main>`,
		"list.html":          `<h1>{{.section_title}}</h1>{{range .posts}}<a href="{{.}}">{{.}}</a>{{end}}`,
		"partials/head.html": `<title>{{deref .title}}</title>`,
		"fonts/readme.txt":   "ignored",
	})

	th, err := Load(root)
	require.NoError(t, err)
	require.Equal(t, []string{"list.html", "page.html", "partials/head.html"}, th.Names())

	title := "Hello"
	out, err := th.Render(PageTemplate, map[string]any{"title": &title, "content": "<b>x</b>"})
	require.NoError(t, err)
	require.Equal(t, `<title>Hello</title><main>&lt;b&gt;x&lt;/b&gt;</main>`, out)

	out, err = th.Render(ListTemplate, map[string]any{"section_title": "Blog", "posts": []string{"a.html"}})
	require.NoError(t, err)
	require.Equal(t, `<h1>Blog</h1><a href="a.html">a.html</a>`, out)
}

func TestDerefNil(t *testing.T) {
	var missing *string
	require.Equal(t, "", deref(missing))
	require.Equal(t, "", deref(nil))
	require.Equal(t, "s", deref("s"))
}

func TestLoad_MissingRequiredTemplate(t *testing.T) {
	root := writeTheme(t, map[string]string{"page.html": "ok"})

	_, err := Load(root)
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryTemplate))
}

func TestLoad_ParseError(t *testing.T) {
	root := writeTheme(t, map[string]string{"page.html": "{{ .broken", "list.html": "ok"})

	_, err := Load(root)
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryTemplate))
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.True(t, errors.HasCategory(err, errors.CategoryTemplate))
}

func TestRender_ExecutionError(t *testing.T) {
	root := writeTheme(t, map[string]string{"page.html": `{{template "missing" .}}`, "list.html": "ok"})
	th, err := Load(root)
	require.NoError(t, err)

	_, err = th.Render(PageTemplate, map[string]any{})
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryTemplate))
}

func TestRender_UnknownTemplate(t *testing.T) {
	root := writeTheme(t, map[string]string{"page.html": "p", "list.html": "l"})
	th, err := Load(root)
	require.NoError(t, err)

	_, err = th.Render("nope.html", nil)
	require.True(t, errors.HasCategory(err, errors.CategoryTemplate))
}
