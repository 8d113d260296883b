package config

import (
	"path"
	"strings"

	"git.home.luguber.info/inful/mdbear/internal/foundation/normalization"
)

// NavKind is the closed set of navigation entry kinds.
type NavKind int

const (
	// NavUnknown is any type string this version does not recognise. Such
	// entries are skipped with a warning so newer configs still build.
	NavUnknown NavKind = iota
	NavPage
	NavSection
	NavLink
)

func (k NavKind) String() string {
	switch k {
	case NavPage:
		return "page"
	case NavSection:
		return "section"
	case NavLink:
		return "link"
	default:
		return "unknown"
	}
}

// ParseNavKind maps a config type string to a NavKind. "blog" is accepted as an
// alias for "section".
func ParseNavKind(s string) NavKind {
	return navKinds.Normalize(s)
}

var navKinds = normalization.NewNormalizer(map[string]NavKind{
	"page":    NavPage,
	"section": NavSection,
	"blog":    NavSection,
	"link":    NavLink,
}, NavUnknown)

// NavEntry is one item of the ordered navigation sequence.
type NavEntry struct {
	Name string `toml:"name" yaml:"name"`
	// Path is a document for pages, a directory for sections and a URL for links.
	Path string `toml:"path" yaml:"path"`
	Type string `toml:"type" yaml:"type"`
}

// Kind returns the parsed entry kind.
func (e NavEntry) Kind() NavKind { return ParseNavKind(e.Type) }

// IsPage, IsSection and IsLink are convenience accessors for templates.
func (e NavEntry) IsPage() bool    { return e.Kind() == NavPage }
func (e NavEntry) IsSection() bool { return e.Kind() == NavSection }
func (e NavEntry) IsLink() bool    { return e.Kind() == NavLink }

// Href is the link target of the entry relative to the site root: the written
// file for pages, the index for sections and the URL itself for links. Unknown
// entries have no target.
func (e NavEntry) Href() string {
	p := strings.ReplaceAll(e.Path, "\\", "/")
	switch e.Kind() {
	case NavPage:
		base := path.Base(p)
		return strings.TrimSuffix(base, path.Ext(base)) + ".html"
	case NavSection:
		return strings.Trim(path.Clean(p), "/") + "/index.html"
	case NavLink:
		return e.Path
	default:
		return ""
	}
}
