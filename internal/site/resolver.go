package site

import (
	"context"
	"path/filepath"

	"git.home.luguber.info/inful/mdbear/internal/config"
	"git.home.luguber.info/inful/mdbear/internal/foundation/errors"
	"git.home.luguber.info/inful/mdbear/internal/logfields"
	"git.home.luguber.info/inful/mdbear/internal/theme"
)

// Resolve renders every navigation entry in configuration order.
//
// Page entries and sections are written to the output tree, links need no
// output, and entries of an unknown type are reported and skipped.
func Resolve(ctx context.Context, bc BuildContext, report *Report) error {
	for _, entry := range bc.cfg.Nav {
		if err := ctx.Err(); err != nil {
			return err
		}
		log := bc.logger.With(logfields.NavKind(entry.Kind().String()), logfields.Path(entry.Path))

		switch entry.Kind() {
		case config.NavPage:
			if err := buildPage(bc, entry, report); err != nil {
				return err
			}
		case config.NavSection:
			if err := BuildSection(ctx, bc, entry, report); err != nil {
				return err
			}
		case config.NavLink:
			log.Debug("Skipping link entry", "name", entry.Name)
		default:
			log.Warn("Ignoring navigation entry with unknown type", "name", entry.Name, "type", entry.Type)
			report.warn("navigation entry %q has unknown type %q", entry.Name, entry.Type)
		}
	}
	return nil
}

// buildPage loads a standalone page leniently and writes it at the output root.
func buildPage(bc BuildContext, entry config.NavEntry, report *Report) error {
	p, err := bc.loader.Load(bc.contentRoot, entry.Path, false)
	if err != nil {
		return fatal(err, "cannot load page")
	}

	html, err := bc.renderer.Render(theme.PageTemplate, map[string]any{
		"config":       bc.cfg,
		"current_page": p,
		"content":      p.ContentHTML,
		"root_path":    ".",
	})
	if err != nil {
		return err
	}

	if err := writeHTML(filepath.Join(bc.outputRoot, p.URL), html); err != nil {
		return err
	}
	report.PagesWritten++
	bc.logger.Debug("Wrote page", logfields.Page(p.Slug), logfields.URL(p.URL))
	return nil
}

// fatal promotes a load failure of a standalone page to a fatal build error,
// keeping its category and sentinel chain.
func fatal(err error, message string) error {
	return errors.WrapError(err, errors.GetCategory(err), message).Fatal().Build()
}
