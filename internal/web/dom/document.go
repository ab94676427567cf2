// Package dom is a small mutable view over an HTML document parsed with
// golang.org/x/net/html. It offers the handful of element operations a page
// controller needs: lookup by id, text and child replacement, visibility
// through the inline display style, and attribute/class helpers.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed HTML page.
type Document struct {
	root *html.Node
}

// Parse reads a full HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString is Parse for in-memory markup.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// ByID returns the element with the given id, or nil.
func (d *Document) ByID(id string) *Element {
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return nil
	}
	return &Element{n: found}
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document, returning "" on failure.
func (d *Document) String() string {
	var b bytes.Buffer
	if err := d.Render(&b); err != nil {
		return ""
	}
	return b.String()
}

// Element wraps one element node.
type Element struct {
	n *html.Node
}

// NewElement creates a detached element.
func NewElement(tag string, classes ...string) *Element {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	e := &Element{n: n}
	if len(classes) > 0 {
		e.SetAttr("class", strings.Join(classes, " "))
	}
	return e
}

// Tag is the element name.
func (e *Element) Tag() string { return e.n.Data }

// Text is the concatenated text of all descendant text nodes.
func (e *Element) Text() string {
	var b strings.Builder
	walk(e.n, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		return true
	})
	return b.String()
}

// SetText replaces all children with a single text node.
func (e *Element) SetText(s string) {
	e.Clear()
	if s != "" {
		e.AppendText(s)
	}
}

// Clear removes every child node.
func (e *Element) Clear() {
	for c := e.n.FirstChild; c != nil; {
		next := c.NextSibling
		e.n.RemoveChild(c)
		c = next
	}
}

// Append adds elements as last children. Elements already attached
// elsewhere are moved.
func (e *Element) Append(children ...*Element) *Element {
	for _, c := range children {
		if c.n.Parent != nil {
			c.n.Parent.RemoveChild(c.n)
		}
		e.n.AppendChild(c.n)
	}
	return e
}

// AppendText adds a text node as last child.
func (e *Element) AppendText(s string) *Element {
	e.n.AppendChild(&html.Node{Type: html.TextNode, Data: s})
	return e
}

// Children returns the element children in document order.
func (e *Element) Children() []*Element {
	var out []*Element
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, &Element{n: c})
		}
	}
	return out
}

// FindAll returns descendants with the given tag name.
func (e *Element) FindAll(tag string) []*Element {
	var out []*Element
	walk(e.n, func(n *html.Node) bool {
		if n != e.n && n.Type == html.ElementNode && n.Data == tag {
			out = append(out, &Element{n: n})
		}
		return true
	})
	return out
}

// Attr returns an attribute value and whether it is present.
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces an attribute.
func (e *Element) SetAttr(key, val string) {
	for i, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == key {
			e.n.Attr[i].Val = val
			return
		}
	}
	e.n.Attr = append(e.n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes an attribute if present.
func (e *Element) RemoveAttr(key string) {
	out := e.n.Attr[:0]
	for _, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	e.n.Attr = out
}

// Classes returns the class list.
func (e *Element) Classes() []string {
	v, _ := e.Attr("class")
	return strings.Fields(v)
}

// HasClass reports whether the class list contains c.
func (e *Element) HasClass(c string) bool {
	for _, have := range e.Classes() {
		if have == c {
			return true
		}
	}
	return false
}

// SetDisabled toggles the boolean disabled attribute.
func (e *Element) SetDisabled(disabled bool) {
	if disabled {
		e.SetAttr("disabled", "")
		return
	}
	e.RemoveAttr("disabled")
}

// Disabled reports whether the disabled attribute is present.
func (e *Element) Disabled() bool {
	_, ok := e.Attr("disabled")
	return ok
}

// Show sets display:block.
func (e *Element) Show() { e.setStyle("display", "block") }

// Hide sets display:none.
func (e *Element) Hide() { e.setStyle("display", "none") }

// Visible is false only when the inline style says display:none.
func (e *Element) Visible() bool {
	return e.style("display") != "none"
}

func (e *Element) style(prop string) string {
	v, _ := e.Attr("style")
	for _, decl := range strings.Split(v, ";") {
		k, val, ok := strings.Cut(decl, ":")
		if ok && strings.EqualFold(strings.TrimSpace(k), prop) {
			return strings.TrimSpace(val)
		}
	}
	return ""
}

func (e *Element) setStyle(prop, val string) {
	v, _ := e.Attr("style")
	var decls []string
	replaced := false
	for _, decl := range strings.Split(v, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		k, _, _ := strings.Cut(decl, ":")
		if strings.EqualFold(strings.TrimSpace(k), prop) {
			decl = prop + ": " + val
			replaced = true
		}
		decls = append(decls, decl)
	}
	if !replaced {
		decls = append(decls, prop+": "+val)
	}
	e.SetAttr("style", strings.Join(decls, "; "))
}

// walk visits n and its descendants depth first until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}
