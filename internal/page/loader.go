package page

import (
	stderrors "errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/mdbear/internal/foundation/errors"
	"git.home.luguber.info/inful/mdbear/internal/frontmatter"
	"git.home.luguber.info/inful/mdbear/internal/logfields"
	"git.home.luguber.info/inful/mdbear/internal/markdown"
)

var (
	// ErrMissingFrontmatter is returned in strict mode for documents without a metadata block.
	ErrMissingFrontmatter = stderrors.New("document has no frontmatter")
	// ErrMissingDate is returned in strict mode for documents without a date.
	ErrMissingDate = stderrors.New("document has no date")
	// ErrMetadataParse is returned when the metadata block cannot be parsed.
	ErrMetadataParse = stderrors.New("document frontmatter cannot be parsed")
)

// Loader reads documents relative to a content root.
type Loader struct {
	md     *markdown.Renderer
	logger *slog.Logger
}

// NewLoader returns a Loader rendering bodies with md. A nil logger uses slog.Default.
func NewLoader(md *markdown.Renderer, logger *slog.Logger) *Loader {
	if md == nil {
		md = markdown.New(markdown.DefaultOptions())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{md: md, logger: logger}
}

// Load reads contentRoot/relPath and builds a Page.
//
// In strict mode the document must carry frontmatter with a date; a missing
// title defaults to the slug. Non-strict documents may omit frontmatter.
func (l *Loader) Load(contentRoot, relPath string, strict bool) (Page, error) {
	full := filepath.Join(contentRoot, filepath.FromSlash(relPath))
	raw, err := os.ReadFile(full)
	if err != nil {
		return Page{}, errors.WrapError(err, errors.CategoryFileSystem, "cannot read document").
			WithContext("path", relPath).Build()
	}

	doc, err := frontmatter.Parse(raw)
	if err != nil {
		return Page{}, errors.WrapError(fmt.Errorf("%w: %w", ErrMetadataParse, err),
			errors.CategoryValidation, "invalid frontmatter").WithContext("path", relPath).Build()
	}
	if strict && !doc.HasFrontmatter() {
		return Page{}, errors.WrapError(ErrMissingFrontmatter, errors.CategoryValidation, "missing frontmatter").
			WithContext("path", relPath).Build()
	}

	meta := l.decodeMeta(doc, relPath)
	slug := SlugFor(relPath)
	if strict && meta.Title == nil {
		meta.Title = strPtr(slug)
	}
	if strict && meta.Date == nil {
		return Page{}, errors.WrapError(ErrMissingDate, errors.CategoryValidation, "missing date").
			WithContext("path", relPath).Build()
	}

	html, err := l.md.Render(doc.Body())
	if err != nil {
		return Page{}, errors.WrapError(err, errors.CategoryMarkdown, "cannot render markdown").
			WithContext("path", relPath).Build()
	}

	return Page{
		Meta:        meta,
		ContentHTML: template.HTML(html), //nolint:gosec // content is author controlled
		Slug:        slug,
		URL:         URLFor(relPath),
		SourcePath:  relPath,
		Fingerprint: mdfp.CalculateFingerprintFromParts(string(doc.Raw()), string(doc.Body())),
	}, nil
}

// decodeMeta extracts title and date. A block that is not a mapping, or a
// field that is not a string (list, mapping, number, bool), degrades to empty
// metadata with a warning.
func (l *Loader) decodeMeta(doc frontmatter.Document, relPath string) Meta {
	var meta Meta
	for _, field := range []struct {
		key string
		dst **string
	}{{"title", &meta.Title}, {"date", &meta.Date}} {
		v, ok, err := doc.StringField(field.key)
		if err != nil {
			l.logger.Warn("Ignoring unusable frontmatter",
				logfields.Path(relPath), slog.String("field", field.key), logfields.Error(err))
			return Meta{}
		}
		if ok {
			*field.dst = strPtr(v)
		}
	}
	return meta
}
