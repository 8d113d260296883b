// Package frontmatter splits Markdown documents into a YAML metadata block and a body.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

var (
	// ErrMissingClosingDelimiter indicates the document started with a frontmatter
	// delimiter but never closed the block.
	ErrMissingClosingDelimiter = errors.New("frontmatter start delimiter found but closing delimiter is missing")

	// ErrInvalidYAML indicates the metadata block is not parsable YAML.
	ErrInvalidYAML = errors.New("frontmatter is not valid YAML")

	// ErrNotMapping is returned by field accessors when the block is valid YAML but not a mapping.
	ErrNotMapping = errors.New("frontmatter is not a key/value mapping")

	// ErrNotScalar is returned by StringField when the value is a list or a nested mapping.
	ErrNotScalar = errors.New("frontmatter field is not a scalar")

	// ErrNotString is returned by StringField when the scalar is a number, bool or
	// other non-string type.
	ErrNotString = errors.New("frontmatter field is not a string")
)

// Document is a raw document split into metadata and body.
type Document struct {
	raw  []byte
	body []byte
	had  bool
	root *yaml.Node
}

// Parse splits content into an optional `---` delimited YAML block and the body.
//
// A document that does not start with the delimiter has no metadata and its body
// is the whole input. Parse fails only when the block is unterminated or is not
// parsable YAML; field semantics are left to the caller.
func Parse(content []byte) (Document, error) {
	raw, body, had, err := split(content)
	if err != nil {
		return Document{}, err
	}
	doc := Document{raw: raw, body: body, had: had}
	if !had || len(bytes.TrimSpace(raw)) == 0 {
		return doc, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrInvalidYAML, err)
	}
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		doc.root = node.Content[0]
	}
	return doc, nil
}

// HasFrontmatter reports whether the document carried a metadata block, even an empty one.
func (d Document) HasFrontmatter() bool { return d.had }

// Body returns the Markdown body with the metadata block removed.
func (d Document) Body() []byte { return d.body }

// Raw returns the metadata block without delimiters.
func (d Document) Raw() []byte { return d.raw }

// StringField returns the scalar value stored under key as its literal text.
//
// ok is false when the key is missing or null. Strings and unquoted timestamps
// are returned as written in the source; any other scalar type is ErrNotString.
func (d Document) StringField(key string) (value string, ok bool, err error) {
	if d.root == nil {
		return "", false, nil
	}
	if d.root.Kind != yaml.MappingNode {
		return "", false, ErrNotMapping
	}
	for i := 0; i+1 < len(d.root.Content); i += 2 {
		k, v := d.root.Content[i], d.root.Content[i+1]
		if k.Value != key {
			continue
		}
		if v.Kind == yaml.AliasNode && v.Alias != nil {
			v = v.Alias
		}
		if v.Kind != yaml.ScalarNode {
			return "", false, fmt.Errorf("%w: %s", ErrNotScalar, key)
		}
		switch v.ShortTag() {
		case "!!null":
			return "", false, nil
		case "!!str", "!!timestamp":
			return v.Value, true, nil
		default:
			return "", false, fmt.Errorf("%w: %s is %s", ErrNotString, key, v.ShortTag())
		}
	}
	return "", false, nil
}

func split(content []byte) (raw []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)
	open := []byte(delimiter + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	rest := content[len(open):]
	closeLine := []byte(delimiter + nl)
	if bytes.HasPrefix(rest, closeLine) {
		return []byte{}, rest[len(closeLine):], true, nil
	}
	if bytes.Equal(rest, []byte(delimiter)) {
		return []byte{}, []byte{}, true, nil
	}

	closeSeq := []byte(nl + delimiter + nl)
	if idx := bytes.Index(rest, closeSeq); idx >= 0 {
		return rest[:idx+len(nl)], rest[idx+len(closeSeq):], true, nil
	}
	// Closing delimiter on the final line without a trailing newline.
	if tail := []byte(nl + delimiter); bytes.HasSuffix(rest, tail) {
		return rest[:len(rest)-len(delimiter)], []byte{}, true, nil
	}
	return nil, nil, false, ErrMissingClosingDelimiter
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
