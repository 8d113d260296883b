package site

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/mdbear/internal/config"
	"git.home.luguber.info/inful/mdbear/internal/foundation/errors"
	"git.home.luguber.info/inful/mdbear/internal/logfields"
	"git.home.luguber.info/inful/mdbear/internal/page"
	"git.home.luguber.info/inful/mdbear/internal/theme"
)

// BuildSection renders every dated Markdown document directly inside the
// section directory, followed by the section index listing them newest first.
//
// Documents that fail to load are logged and skipped; template and write
// failures abort the build.
func BuildSection(ctx context.Context, bc BuildContext, entry config.NavEntry, report *Report) error {
	sectionOut := filepath.Join(bc.outputRoot, filepath.FromSlash(entry.Path))
	if err := os.MkdirAll(sectionOut, 0o755); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "cannot create section directory").
			Fatal().WithContext("path", sectionOut).Build()
	}
	log := bc.logger.With(logfields.Section(entry.Name))

	names, err := sectionDocuments(filepath.Join(bc.contentRoot, filepath.FromSlash(entry.Path)))
	if err != nil {
		return err
	}

	posts := make([]page.Page, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel := path.Join(filepath.ToSlash(entry.Path), name)
		p, err := bc.loader.Load(bc.contentRoot, rel, true)
		if err != nil {
			log.Warn("Skipping document", logfields.Path(rel), logfields.Error(err))
			report.skip(rel, err)
			continue
		}

		html, err := bc.renderer.Render(theme.PageTemplate, map[string]any{
			"config":       bc.cfg,
			"current_page": p,
			"content":      p.ContentHTML,
			"root_path":    "..",
		})
		if err != nil {
			return err
		}
		if err := writeHTML(filepath.Join(sectionOut, p.URL), html); err != nil {
			return err
		}
		report.PagesWritten++
		posts = append(posts, p)
	}

	SortByDateDesc(posts)

	html, err := bc.renderer.Render(theme.ListTemplate, map[string]any{
		"config":        bc.cfg,
		"section_title": entry.Name,
		"posts":         posts,
		"root_path":     "..",
	})
	if err != nil {
		return err
	}
	if err := writeHTML(filepath.Join(sectionOut, "index.html"), html); err != nil {
		return err
	}
	report.PagesWritten++
	log.Debug("Wrote section", logfields.Count(len(posts)))
	return nil
}

// SortByDateDesc orders pages newest first by comparing date strings. Pages
// with equal dates keep their relative order.
func SortByDateDesc(pages []page.Page) {
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].Meta.DateString() > pages[j].Meta.DateString()
	})
}

// sectionDocuments lists the *.md files directly inside dir in lexical order.
// A missing directory is an empty section.
func sectionDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "cannot read section directory").
			Fatal().WithContext("path", dir).Build()
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".md") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}
