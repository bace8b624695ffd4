// Package dom provides the in-memory display-node tree that the binder
// keeps synchronized with the state tree.
//
// The tree is host-agnostic: it is not a browser DOM, just an ordered
// element/text tree with attributes. Template fragments are parsed from
// serialized HTML via golang.org/x/net/html, and any subtree can be
// rendered back to HTML, which makes the binder usable for server-side
// rendering and easy to assert against in tests.
package dom

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NodeKind distinguishes element nodes from text nodes.
type NodeKind uint8

const (
	// KindElement is a tagged element with attributes and children.
	KindElement NodeKind = iota
	// KindText is a leaf holding character data.
	KindText
)

// Node is one display node. Nodes have stable identity: the binder
// preserves the same *Node instance for a repeated item whose key survives
// a refresh.
type Node struct {
	ID     string            // stable identity, assigned at creation
	Kind   NodeKind          //
	Tag    string            // element tag, empty for text nodes
	Attrs  map[string]string // element attributes
	Text   string            // character data for text nodes
	Hidden bool              // set by conditional bindings; skipped on render

	children []*Node
	parent   *Node
}

// NewElement creates a detached element node.
func NewElement(tag string) *Node {
	return &Node{
		ID:    uuid.NewString(),
		Kind:  KindElement,
		Tag:   tag,
		Attrs: make(map[string]string),
	}
}

// NewText creates a detached text node.
func NewText(text string) *Node {
	return &Node{
		ID:   uuid.NewString(),
		Kind: KindText,
		Text: text,
	}
}

// Parent returns the node's parent, or nil when detached.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the node's children. The returned slice is the live
// backing array; callers must not modify it.
func (n *Node) Children() []*Node {
	return n.children
}

// Attr returns the value of an attribute and whether it is present.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

// SetAttr sets an attribute value.
func (n *Node) SetAttr(name, value string) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[name] = value
}

// RemoveAttr deletes an attribute.
func (n *Node) RemoveAttr(name string) {
	delete(n.Attrs, name)
}

// AppendChild adds child as the last child of n, detaching it from any
// previous parent first.
func (n *Node) AppendChild(child *Node) {
	child.Detach()
	child.parent = n
	n.children = append(n.children, child)
}

// InsertAt inserts child at index i among n's children.
func (n *Node) InsertAt(i int, child *Node) {
	child.Detach()
	if i < 0 {
		i = 0
	}
	if i > len(n.children) {
		i = len(n.children)
	}
	child.parent = n
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child
}

// InsertAfter inserts child immediately after ref among n's children.
// A nil ref inserts at the front.
func (n *Node) InsertAfter(child, ref *Node) {
	if ref == nil {
		n.InsertAt(0, child)
		return
	}
	n.InsertAt(n.IndexOf(ref)+1, child)
}

// IndexOf returns the position of child among n's children, or -1.
func (n *Node) IndexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// NextSibling returns the node immediately following n under its parent,
// or nil.
func (n *Node) NextSibling() *Node {
	if n.parent == nil {
		return nil
	}
	i := n.parent.IndexOf(n)
	if i < 0 || i+1 >= len(n.parent.children) {
		return nil
	}
	return n.parent.children[i+1]
}

// Detach removes n from its parent, leaving it and its subtree intact.
func (n *Node) Detach() {
	p := n.parent
	if p == nil {
		return
	}
	if i := p.IndexOf(n); i >= 0 {
		p.children = append(p.children[:i], p.children[i+1:]...)
	}
	n.parent = nil
}

// Attached reports whether n is still reachable from root. The binder uses
// this to prune bindings whose target left the live tree.
func (n *Node) Attached(root *Node) bool {
	for cur := n; cur != nil; cur = cur.parent {
		if cur == root {
			return true
		}
	}
	return false
}

// Depth returns the number of ancestors above n.
func (n *Node) Depth() int {
	d := 0
	for cur := n.parent; cur != nil; cur = cur.parent {
		d++
	}
	return d
}

// Walk visits n and every descendant depth-first. Returning false from
// visit stops the descent into that subtree.
func (n *Node) Walk(visit func(*Node) bool) {
	if !visit(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(visit)
	}
}

// Clone returns a deep copy of the subtree with fresh node identities.
// Used to instantiate one repeater item from the parsed template.
func (n *Node) Clone() *Node {
	c := &Node{
		ID:   uuid.NewString(),
		Kind: n.Kind,
		Tag:  n.Tag,
		Text: n.Text,
	}
	if n.Attrs != nil {
		c.Attrs = make(map[string]string, len(n.Attrs))
		for k, v := range n.Attrs {
			c.Attrs[k] = v
		}
	}
	for _, child := range n.children {
		c.AppendChild(child.Clone())
	}
	return c
}

// ParseFragment parses a serialized HTML fragment into display nodes.
// Whitespace-only text between elements is dropped.
func ParseFragment(fragment string) ([]*Node, error) {
	ctx := &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
	parsed, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return nil, err
	}

	var nodes []*Node
	for _, hn := range parsed {
		if n := fromHTML(hn); n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}

// fromHTML converts one x/net/html node into a display node.
func fromHTML(hn *html.Node) *Node {
	switch hn.Type {
	case html.TextNode:
		if strings.TrimSpace(hn.Data) == "" {
			return nil
		}
		return NewText(hn.Data)
	case html.ElementNode:
		n := NewElement(hn.Data)
		for _, a := range hn.Attr {
			n.SetAttr(a.Key, a.Val)
		}
		for c := hn.FirstChild; c != nil; c = c.NextSibling {
			if child := fromHTML(c); child != nil {
				n.AppendChild(child)
			}
		}
		return n
	default:
		return nil
	}
}

// Render serializes the subtree back to HTML. Hidden nodes render nothing.
func (n *Node) Render() string {
	var b strings.Builder
	n.render(&b)
	return b.String()
}

func (n *Node) render(b *strings.Builder) {
	if n.Hidden {
		return
	}
	if n.Kind == KindText {
		b.WriteString(html.EscapeString(n.Text))
		return
	}

	b.WriteByte('<')
	b.WriteString(n.Tag)
	for _, k := range sortedAttrNames(n.Attrs) {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(n.Attrs[k]))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	for _, c := range n.children {
		c.render(b)
	}
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteByte('>')
}

func sortedAttrNames(attrs map[string]string) []string {
	if len(attrs) == 0 {
		return nil
	}
	names := make([]string, 0, len(attrs))
	for k := range attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
