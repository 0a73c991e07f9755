package html

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parser represents an HTML parser
type Parser struct {
	// Configuration options could be added here
}

// Node represents an HTML node in the document tree
type Node struct {
	Type        html.NodeType
	Data        string
	Attr        []html.Attribute
	Parent      *Node
	FirstChild  *Node
	LastChild   *Node
	PrevSibling *Node
	NextSibling *Node
}

// Document represents a parsed HTML document
type Document struct {
	Root *Node
}

// NewParser creates a new HTML parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseString parses HTML from a string
func (p *Parser) ParseString(content string) (*Document, error) {
	return p.Parse(strings.NewReader(content))
}

// Parse parses HTML from an io.Reader
func (p *Parser) Parse(r io.Reader) (*Document, error) {
	node, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	root := convertNode(node, nil)
	return &Document{Root: root}, nil
}

// convertNode converts an html.Node to our Node structure
func convertNode(n *html.Node, parent *Node) *Node {
	if n == nil {
		return nil
	}

	node := &Node{
		Type:   n.Type,
		Data:   n.Data,
		Attr:   append([]html.Attribute(nil), n.Attr...),
		Parent: parent,
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		node.AppendChild(convertNode(c, nil))
	}
	return node
}

// toNetNode converts our subtree back to golang.org/x/net/html nodes.
func toNetNode(n *Node) *html.Node {
	out := &html.Node{
		Type:     n.Type,
		Data:     n.Data,
		DataAtom: atom.Lookup([]byte(n.Data)),
		Attr:     n.Attr,
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out.AppendChild(toNetNode(c))
	}
	return out
}

// Render renders the document back to HTML
func (d *Document) Render() (string, error) {
	var buf bytes.Buffer
	if err := d.WriteTo(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteTo renders the whole document to w.
func (d *Document) WriteTo(w io.Writer) error {
	if d == nil || d.Root == nil {
		return nil
	}
	return html.Render(w, toNetNode(d.Root))
}

// Body returns the <body> element or nil.
func (d *Document) Body() *Node {
	if d == nil || d.Root == nil {
		return nil
	}
	return d.Root.FindFirst(func(n *Node) bool { return n.IsElement("body") })
}

// RenderNode renders a single subtree to HTML.
func RenderNode(n *Node) (string, error) {
	if n == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, toNetNode(n)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// NewElement creates a detached element with the given classes.
func NewElement(tag string, classes ...string) *Node {
	n := &Node{Type: html.ElementNode, Data: tag}
	if len(classes) > 0 {
		n.SetAttr("class", strings.Join(classes, " "))
	}
	return n
}

// NewText creates a detached text node.
func NewText(text string) *Node {
	return &Node{Type: html.TextNode, Data: text}
}

// IsElement reports whether n is an element, optionally with one of the given tags.
func (n *Node) IsElement(tags ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if strings.EqualFold(n.Data, t) {
			return true
		}
	}
	return false
}

// Tag returns the lower-cased tag name of an element.
func (n *Node) Tag() string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(n.Data)
}

// GetAttr returns the value of an attribute.
func (n *Node) GetAttr(key string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces an attribute.
func (n *Node) SetAttr(key, val string) {
	for i, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// Classes returns the class list of an element.
func (n *Node) Classes() []string {
	v, _ := n.GetAttr("class")
	return strings.Fields(v)
}

// HasClass reports whether the element carries the class.
func (n *Node) HasClass(class string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, c := range n.Classes() {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass appends a class unless already present.
func (n *Node) AddClass(class string) {
	if n.HasClass(class) {
		return
	}
	n.SetAttr("class", strings.TrimSpace(strings.Join(append(n.Classes(), class), " ")))
}

// AppendChild adds c as the last child of n. c is detached first.
func (n *Node) AppendChild(c *Node) {
	if c == nil {
		return
	}
	c.Detach()
	c.Parent = n
	c.PrevSibling = n.LastChild
	if n.LastChild != nil {
		n.LastChild.NextSibling = c
	} else {
		n.FirstChild = c
	}
	n.LastChild = c
}

// InsertBefore inserts c before ref, which must be a child of n. A nil ref appends.
func (n *Node) InsertBefore(c, ref *Node) {
	if ref == nil {
		n.AppendChild(c)
		return
	}
	c.Detach()
	c.Parent = n
	c.NextSibling = ref
	c.PrevSibling = ref.PrevSibling
	if ref.PrevSibling != nil {
		ref.PrevSibling.NextSibling = c
	} else {
		n.FirstChild = c
	}
	ref.PrevSibling = c
}

// Detach removes n from its parent. The subtree stays intact.
func (n *Node) Detach() {
	p := n.Parent
	if p == nil {
		return
	}
	if n.PrevSibling != nil {
		n.PrevSibling.NextSibling = n.NextSibling
	} else {
		p.FirstChild = n.NextSibling
	}
	if n.NextSibling != nil {
		n.NextSibling.PrevSibling = n.PrevSibling
	} else {
		p.LastChild = n.PrevSibling
	}
	n.Parent, n.PrevSibling, n.NextSibling = nil, nil, nil
}

// ShallowClone copies the node and its attributes without children.
func (n *Node) ShallowClone() *Node {
	return &Node{
		Type: n.Type,
		Data: n.Data,
		Attr: append([]html.Attribute(nil), n.Attr...),
	}
}

// Clone returns a detached deep copy of the subtree.
func (n *Node) Clone() *Node {
	c := n.ShallowClone()
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.AppendChild(ch.Clone())
	}
	return c
}

// Children returns the direct children as a slice, safe to mutate the tree while ranging.
func (n *Node) Children() []*Node {
	var out []*Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// ElementChildren returns the direct element children.
func (n *Node) ElementChildren() []*Node {
	var out []*Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Walk visits n and its descendants in document order. Returning false from fn
// skips the node's subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		c.Walk(fn)
		c = next
	}
}

// FindAll returns the descendants (not n itself) matching pred, in document order.
func (n *Node) FindAll(pred func(*Node) bool) []*Node {
	var out []*Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		c.Walk(func(x *Node) bool {
			if pred(x) {
				out = append(out, x)
			}
			return true
		})
	}
	return out
}

// FindFirst returns the first descendant matching pred.
func (n *Node) FindFirst(pred func(*Node) bool) *Node {
	var found *Node
	for c := n.FirstChild; c != nil && found == nil; c = c.NextSibling {
		c.Walk(func(x *Node) bool {
			if found != nil {
				return false
			}
			if pred(x) {
				found = x
				return false
			}
			return true
		})
	}
	return found
}

// ByClass returns descendant elements carrying class.
func (n *Node) ByClass(class string) []*Node {
	return n.FindAll(func(x *Node) bool { return x.HasClass(class) })
}

// ByTag returns descendant elements with the tag.
func (n *Node) ByTag(tag string) []*Node {
	return n.FindAll(func(x *Node) bool { return x.IsElement(tag) })
}

// Contains reports whether d is n or one of its descendants.
func (n *Node) Contains(d *Node) bool {
	for x := d; x != nil; x = x.Parent {
		if x == n {
			return true
		}
	}
	return false
}

// TextContent concatenates all descendant text.
func (n *Node) TextContent() string {
	var b strings.Builder
	n.Walk(func(x *Node) bool {
		if x.Type == html.TextNode {
			b.WriteString(x.Data)
		}
		return true
	})
	return b.String()
}

// SetText replaces all children with a single text node.
func (n *Node) SetText(text string) {
	for _, c := range n.Children() {
		c.Detach()
	}
	n.AppendChild(NewText(text))
}
