// Package markdown converts Markdown bodies to HTML fragments.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// Options configures the goldmark pipeline.
type Options struct {
	// HardWraps renders soft line breaks as <br>.
	HardWraps bool
	// Unsafe passes raw HTML through instead of replacing it with a comment.
	Unsafe bool
}

// DefaultOptions passes raw HTML through; content authors own their content.
func DefaultOptions() Options {
	return Options{Unsafe: true}
}

// Renderer renders Markdown to HTML. It holds no per-call state and is safe for
// concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New returns a Renderer with GFM extensions and automatic heading ids.
func New(opts Options) *Renderer {
	var htmlOpts []renderer.Option
	if opts.HardWraps {
		htmlOpts = append(htmlOpts, html.WithHardWraps())
	}
	if opts.Unsafe {
		htmlOpts = append(htmlOpts, html.WithUnsafe())
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(htmlOpts...),
	)
	return &Renderer{md: md}
}

// Render converts body to an HTML fragment. The same input always yields the same bytes.
func (r *Renderer) Render(body []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
