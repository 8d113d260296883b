package site

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/mdbear/internal/foundation/errors"
)

// resetDir removes dir with everything below it and recreates it empty.
func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "cannot clean output directory").
			Fatal().WithContext("path", dir).Build()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "cannot create output directory").
			Fatal().WithContext("path", dir).Build()
	}
	return nil
}

func writeHTML(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "cannot create output directory").
			Fatal().WithContext("path", filepath.Dir(path)).Build()
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil { //nolint:gosec // public HTML output, non-sensitive
		return errors.WrapError(err, errors.CategoryFileSystem, "cannot write page").
			Fatal().WithContext("path", path).Build()
	}
	return nil
}

// CopyDir recursively copies src into dst, preserving the permission bits of
// every file and directory. It returns the number of files copied. A missing
// src is not an error and copies nothing.
func CopyDir(src, dst string) (int, error) {
	info, err := os.Stat(src)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.WrapError(err, errors.CategoryFileSystem, "cannot stat copy source").
			WithContext("path", src).Build()
	}
	if !info.IsDir() {
		return 0, errors.FileSystemError("copy source is not a directory").WithContext("path", src).Build()
	}

	copied := 0
	err = filepath.WalkDir(src, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		fi, err := d.Info()
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			return os.Chmod(target, fi.Mode().Perm())
		}
		if !fi.Mode().IsRegular() {
			return nil
		}
		if err := copyFile(p, target, fi.Mode().Perm()); err != nil {
			return err
		}
		copied++
		return nil
	})
	if err != nil {
		return copied, errors.WrapError(err, errors.CategoryFileSystem, "cannot copy directory").
			Fatal().WithContext("path", src).WithContext("target", dst).Build()
	}
	return copied, nil
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(filepath.Clean(dst), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	// OpenFile applies the umask.
	return os.Chmod(dst, perm)
}
