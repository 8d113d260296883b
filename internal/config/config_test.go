package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdbear/internal/foundation/errors"
)

const sampleTOML = `
site_icon = "🐻"
site_name = "My Blog"
author = "bear"
output_dir = "public"

[[nav]]
name = "Home"
path = "index.md"
type = "page"

[[nav]]
name = "Blog"
path = "blog"
type = "blog"

[[nav]]
name = "GitHub"
path = "https://github.com"
type = "link"
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_TOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, sampleTOML)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "My Blog", cfg.SiteName)
	require.Equal(t, "bear", cfg.Author)
	require.Len(t, cfg.Nav, 3)
	require.Equal(t, []NavKind{NavPage, NavSection, NavLink},
		[]NavKind{cfg.Nav[0].Kind(), cfg.Nav[1].Kind(), cfg.Nav[2].Kind()})

	require.Equal(t, filepath.Join(dir, "public"), cfg.OutputPath())
	require.Equal(t, filepath.Join(dir, "content"), cfg.ContentPath())
	require.Equal(t, filepath.Join(dir, "theme"), cfg.ThemePath())
	require.Equal(t, 3000, cfg.Serve.Port)
	require.Equal(t, 100*time.Millisecond, cfg.Serve.DebounceWindow)
	require.True(t, cfg.Serve.LiveReloadEnabled())
	require.False(t, cfg.Serve.Open)
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yaml")
	writeFile(t, path, `
site_name: Yaml Site
output_dir: out
nav:
  - name: Home
    path: index.md
    type: page
serve:
  port: 8080
  debounce: 250ms
  live_reload: false
  open: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Yaml Site", cfg.SiteName)
	require.Equal(t, 8080, cfg.Serve.Port)
	require.Equal(t, 250*time.Millisecond, cfg.Serve.DebounceWindow)
	require.False(t, cfg.Serve.LiveReloadEnabled())
	require.True(t, cfg.Serve.Open)
}

func TestLoad_ExpandsEnvironmentAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".env"), "MDBEAR_TEST_AUTHOR=from-dotenv\n")
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, `
site_name = "${MDBEAR_TEST_NAME}"
author = "${MDBEAR_TEST_AUTHOR}"
output_dir = "public"
`)
	t.Setenv("MDBEAR_TEST_NAME", "Env Site")
	t.Cleanup(func() { _ = os.Unsetenv("MDBEAR_TEST_AUTHOR") })

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Env Site", cfg.SiteName)
	require.Equal(t, "from-dotenv", cfg.Author)
}

func TestLoad_LeavesBareDollarWordsAlone(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, `
site_name = "Save $5 on $HOME ${MDBEAR_TEST_SUFFIX}"
author = "$ {not a ref} ${MDBEAR_TEST_UNSET}"
output_dir = "public"
`)
	t.Setenv("MDBEAR_TEST_SUFFIX", "today")
	t.Setenv("MDBEAR_TEST_UNSET", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Save $5 on $HOME today", cfg.SiteName)
	require.Equal(t, "$ {not a ref} ", cfg.Author)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"missing output_dir":   `site_name = "x"`,
		"unparsable":           `site_name = `,
		"nav without name":     "output_dir = \"public\"\n[[nav]]\npath = \"index.md\"\ntype = \"page\"\n",
		"nav escaping root":    "output_dir = \"public\"\n[[nav]]\nname = \"x\"\npath = \"../secret.md\"\ntype = \"page\"\n",
		"output is root":       `output_dir = "."`,
		"output holds content": "output_dir = \"site\"\ncontent_dir = \"site/content\"\n",
		"bad debounce":         "output_dir = \"public\"\n[serve]\ndebounce = \"soon\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.toml")
			writeFile(t, path, body)

			_, err := Load(path)
			require.Error(t, err)
			require.True(t, errors.HasCategory(err, errors.CategoryConfig))
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestLoad_UnknownNavTypeIsNotAConfigError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeFile(t, path, "output_dir = \"public\"\n[[nav]]\nname = \"Gallery\"\npath = \"gallery\"\ntype = \"gallery\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, NavUnknown, cfg.Nav[0].Kind())
}

func TestParseNavKind(t *testing.T) {
	require.Equal(t, NavPage, ParseNavKind("page"))
	require.Equal(t, NavSection, ParseNavKind("Section"))
	require.Equal(t, NavSection, ParseNavKind("blog"))
	require.Equal(t, NavLink, ParseNavKind(" link "))
	require.Equal(t, NavUnknown, ParseNavKind("carousel"))
	require.Equal(t, "unknown", NavUnknown.String())
}

func TestNavEntryHref(t *testing.T) {
	require.Equal(t, "index.html", NavEntry{Path: "index.md", Type: "page"}.Href())
	require.Equal(t, "me.html", NavEntry{Path: "about/me.md", Type: "page"}.Href())
	require.Equal(t, "blog/index.html", NavEntry{Path: "blog/", Type: "section"}.Href())
	require.Equal(t, "https://example.com", NavEntry{Path: "https://example.com", Type: "link"}.Href())
	require.Empty(t, NavEntry{Path: "x", Type: "other"}.Href())
}
