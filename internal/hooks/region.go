// Package hooks provides the lifecycle hook dispatcher invoked after a page
// fragment is mounted.
//
// Hooks are the page-activation contract: a hook receives the mounted region
// as a parsed HTML tree and annotates it (form wiring, chart bootstrap data,
// animation markers). Hook failures and panics are isolated; a broken widget
// never breaks routing.
package hooks

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Region wraps a mounted fragment's parsed HTML tree with traversal and
// annotation helpers.
type Region struct {
	nodes []*html.Node
}

// bodyContext is the parsing context for fragments: partials are body-level
// markup.
var bodyContext = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

// ParseRegion parses fragment markup into a region.
func ParseRegion(markup string) (*Region, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), bodyContext)
	if err != nil {
		return nil, err
	}

	return &Region{nodes: nodes}, nil
}

// Render serializes the region back to markup.
func (r *Region) Render() (string, error) {
	var sb strings.Builder
	for _, n := range r.nodes {
		if err := html.Render(&sb, n); err != nil {
			return "", err
		}
	}

	return sb.String(), nil
}

// Walk visits every element node in document order.
func (r *Region) Walk(visit func(*html.Node)) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			visit(n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range r.nodes {
		walk(n)
	}
}

// FindAll returns all elements with the given tag name.
func (r *Region) FindAll(tag string) []*html.Node {
	var found []*html.Node
	r.Walk(func(n *html.Node) {
		if n.Data == tag {
			found = append(found, n)
		}
	})

	return found
}

// FindByClass returns all elements carrying the given class.
func (r *Region) FindByClass(class string) []*html.Node {
	var found []*html.Node
	r.Walk(func(n *html.Node) {
		if HasClass(n, class) {
			found = append(found, n)
		}
	})

	return found
}

// Attr returns the value of an attribute on a node.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}

	return "", false
}

// SetAttr sets or replaces an attribute on a node.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// HasClass reports whether a node's class attribute contains the given class.
func HasClass(n *html.Node, class string) bool {
	val, ok := Attr(n, "class")
	if !ok {
		return false
	}

	for _, c := range strings.Fields(val) {
		if c == class {
			return true
		}
	}

	return false
}

// AddClass appends a class to a node if it is not already present.
func AddClass(n *html.Node, class string) {
	if HasClass(n, class) {
		return
	}

	val, ok := Attr(n, "class")
	if !ok || val == "" {
		SetAttr(n, "class", class)
		return
	}
	SetAttr(n, "class", val+" "+class)
}

// Text returns the concatenated text content of a node.
func Text(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}

	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(Text(c))
	}
	return sb.String()
}
