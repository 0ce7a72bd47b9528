// Package dom implements the document traversal capability consumed by the
// filtering engine: parsing HTML pages and selecting elements by CSS
// selectors.
package dom

import (
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/filterkit/elemhide/rules"
)

// Document is a parsed HTML page.
type Document struct {
	root *html.Node
}

// type check
var _ rules.Document = (*Document)(nil)

// Parse reads and parses an HTML page from r.
func Parse(r io.Reader) (d *Document, err error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	return &Document{root: root}, nil
}

// ParseString parses an HTML page from a string.
func ParseString(page string) (d *Document, err error) {
	return Parse(strings.NewReader(page))
}

// Select implements the [rules.Document] interface for *Document.  Selectors
// that cascadia cannot compile (extended CSS capabilities, syntax errors)
// match nothing.
func (d *Document) Select(selector string) (elements []rules.Element) {
	s, err := cascadia.Compile(selector)
	if err != nil {
		return nil
	}

	for _, n := range s.MatchAll(d.root) {
		elements = append(elements, &Element{node: n})
	}

	return elements
}

// Element is a single element of a parsed page.
type Element struct {
	node *html.Node
}

// type check
var _ rules.Element = (*Element)(nil)

// Tag returns the element tag name.
func (e *Element) Tag() string {
	return e.node.Data
}

// Attr returns the value of the named attribute, or an empty string if the
// element doesn't have it.
func (e *Element) Attr(name string) string {
	for _, a := range e.node.Attr {
		if a.Key == name {
			return a.Val
		}
	}

	return ""
}

// OuterHTML renders the element and its subtree back to HTML.
func (e *Element) OuterHTML() string {
	sb := &strings.Builder{}
	_ = html.Render(sb, e.node)

	return sb.String()
}
