// Package linkcheck reports relative links in a rendered site that point at
// files missing from the output tree.
package linkcheck

import (
	"context"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/mdbear/internal/foundation/errors"
)

// Warning is a broken relative link.
type Warning struct {
	// Page is the slash separated output path of the page holding the link.
	Page string `json:"page"`
	// Link is the reference as written in the page.
	Link string `json:"link"`
	Tag  string `json:"tag"`
}

// Check scans every *.html file under root. It only fails when the tree cannot
// be walked; broken links are returned as warnings.
func Check(ctx context.Context, root string) ([]Warning, error) {
	var warnings []Warning
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(p), ".html") {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		links, err := ExtractLinks(p)
		if err != nil {
			return err
		}
		page := filepath.ToSlash(rel)
		for _, l := range links {
			target, ok := localTarget(page, l.URL)
			if !ok || exists(root, target) {
				continue
			}
			warnings = append(warnings, Warning{Page: page, Link: l.URL, Tag: l.Tag})
		}
		return nil
	})
	if err != nil {
		if errors.IsClassified(err) {
			return warnings, err
		}
		return warnings, errors.WrapError(err, errors.CategoryFileSystem, "cannot scan output for links").
			WithContext("path", root).Build()
	}
	return warnings, nil
}

// localTarget resolves link relative to page. ok is false for links that cannot
// be checked against the tree: other schemes, hosts, and pure fragments.
func localTarget(page, link string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Scheme != "" || u.Host != "" || u.Opaque != "" {
		return "", false
	}
	if u.Path == "" {
		return "", false
	}
	if strings.HasPrefix(u.Path, "/") {
		return path.Clean(u.Path[1:]), true
	}
	return path.Join(path.Dir(page), u.Path), true
}

// exists reports whether target is a file, or a directory with an index, inside root.
// Targets escaping the root never exist.
func exists(root, target string) bool {
	if target == ".." || strings.HasPrefix(target, "../") {
		return false
	}
	full := filepath.Join(root, filepath.FromSlash(target))
	info, err := os.Stat(full)
	if err != nil {
		return false
	}
	if info.IsDir() {
		_, err := os.Stat(filepath.Join(full, "index.html"))
		return err == nil
	}
	return true
}
