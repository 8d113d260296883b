// Package scaffold writes the default project created by `mdbear init`.
package scaffold

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"git.home.luguber.info/inful/mdbear/internal/foundation/errors"
)

//go:embed defaults
var defaults embed.FS

const root = "defaults"

// Files lists the slash separated paths of the default project in lexical order.
func Files() ([]string, error) {
	var files []string
	err := fs.WalkDir(defaults, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel := p[len(root)+1:]
			files = append(files, rel)
		}
		return nil
	})
	return files, err
}

// Init creates dir and writes the default project into it. An existing dir is
// refused unless force is set, in which case default files overwrite files of
// the same name and everything else is left alone. It returns the files written.
func Init(dir string, force bool) ([]string, error) {
	if _, err := os.Stat(dir); err == nil && !force {
		return nil, errors.ValidationError("directory already exists").
			WithContext("path", dir).Build()
	}

	files, err := Files()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "cannot read embedded project").Fatal().Build()
	}

	written := make([]string, 0, len(files))
	for _, rel := range files {
		data, err := defaults.ReadFile(path.Join(root, rel))
		if err != nil {
			return written, errors.WrapError(err, errors.CategoryInternal, "cannot read embedded file").
				Fatal().WithContext("path", rel).Build()
		}
		target := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return written, errors.WrapError(err, errors.CategoryFileSystem, "cannot create directory").
				Fatal().WithContext("path", filepath.Dir(target)).Build()
		}
		if err := os.WriteFile(target, data, 0o644); err != nil { //nolint:gosec // project sources, non-sensitive
			return written, errors.WrapError(err, errors.CategoryFileSystem, "cannot write file").
				Fatal().WithContext("path", target).Build()
		}
		written = append(written, rel)
	}
	return written, nil
}
