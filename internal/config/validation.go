package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/mdbear/internal/foundation/errors"
)

// Validate checks the fields the build depends on. All failures are config errors.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OutputDir) == "" {
		return errors.ConfigError("output_dir is required").Build()
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return errors.ConfigError("serve.port out of range").WithContext("port", c.Serve.Port).Build()
	}
	if err := c.validateOutputPlacement(); err != nil {
		return err
	}

	for i, entry := range c.Nav {
		field := fmt.Sprintf("nav[%d]", i)
		if strings.TrimSpace(entry.Name) == "" {
			return errors.ConfigError("navigation entry needs a name").WithContext("field", field).Build()
		}
		switch entry.Kind() {
		case NavPage, NavSection:
			if !filepath.IsLocal(filepath.FromSlash(entry.Path)) {
				return errors.ConfigError("navigation path must be a relative path inside the content directory").
					WithContext("field", field).WithContext("path", entry.Path).Build()
			}
		case NavLink, NavUnknown:
		}
	}
	return nil
}

// validateOutputPlacement rejects output directories that would delete sources when cleaned.
func (c *Config) validateOutputPlacement() error {
	out, err := filepath.Abs(c.OutputPath())
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "cannot resolve output_dir").Fatal().Build()
	}
	guarded := []struct{ label, dir string }{
		{"config directory", c.Root},
		{"content directory", c.ContentPath()},
		{"theme directory", c.ThemePath()},
	}
	for _, g := range guarded {
		label, dir := g.label, g.dir
		if dir == "" {
			continue
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		if within(abs, out) {
			return errors.ConfigError("output_dir must not contain the "+label).
				WithContext("output_dir", out).WithContext("path", abs).Build()
		}
	}
	return nil
}

// within reports whether path equals root or lies below it.
func within(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || filepath.IsLocal(rel)
}
