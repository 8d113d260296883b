// Package page loads Markdown documents from the content tree into renderable pages.
package page

import (
	"html/template"
	"path"
	"path/filepath"
	"strings"
)

// Meta is the metadata recognised in a document's frontmatter. Both fields are
// optional; strict loading guarantees Date is set.
type Meta struct {
	Title *string
	Date  *string
}

// TitleOr returns the title or fallback when no title was given.
func (m Meta) TitleOr(fallback string) string {
	if m.Title == nil {
		return fallback
	}
	return *m.Title
}

// DateString returns the date or the empty string.
func (m Meta) DateString() string {
	if m.Date == nil {
		return ""
	}
	return *m.Date
}

// Page is a loaded document. Pages are values and are never modified after Load returns.
type Page struct {
	Meta        Meta
	ContentHTML template.HTML
	Slug        string
	URL         string
	SourcePath  string
	Fingerprint string
}

// SlugFor strips the directory and extension from a content relative path.
func SlugFor(relPath string) string {
	base := path.Base(filepath.ToSlash(relPath))
	return strings.TrimSuffix(base, path.Ext(base))
}

// URLFor maps a content relative path to its output file name.
//
// A top level document named index keeps index.html; every other document
// becomes slug.html in the directory it is written to. A nested index
// (blog/index.md) therefore also yields index.html, relative to its section.
func URLFor(relPath string) string {
	return SlugFor(relPath) + ".html"
}

func strPtr(s string) *string { return &s }
