package pagination

import (
	"fmt"
	"strings"

	"github.com/gompdf/repaginate/internal/parser/html"
	xhtml "golang.org/x/net/html"
)

// Region is a header, body or footer element of the source document.
type Region struct {
	Node     *html.Node
	Role     Role
	Variants VariantSet
}

// Block is an indivisible unit of body content, or one holding a splittable table.
type Block struct {
	Node   *html.Node
	Height float64
	Table  *Table
}

// Source is the unpaginated document: its regions and the pool of body blocks
// still waiting to be placed.
type Source struct {
	Root    *html.Node
	Regions []*Region
	Headers []*Region
	Footers []*Region
	Bodies  []*Region
	Blocks  []*Block

	next int // first block not yet fully placed
}

// Pending returns the blocks not yet fully placed.
func (s *Source) Pending() []*Block {
	return s.Blocks[s.next:]
}

// Done reports whether every block has been placed.
func (s *Source) Done() bool {
	return s.next >= len(s.Blocks)
}

// Tables returns the splittable tables in document order.
func (s *Source) Tables() []*Table {
	var out []*Table
	for _, b := range s.Blocks {
		if b.Table != nil {
			out = append(out, b.Table)
		}
	}
	return out
}

// buildSource collects regions and blocks under root and measures them. It
// must run before anything is moved.
func buildSource(root *html.Node, m *HeightMeasurer) (*Source, []Diagnostic) {
	src := &Source{Root: root}
	var diags []Diagnostic

	for _, n := range m.regionNodes(root) {
		r := &Region{Node: n}
		r.Role, _ = m.roleOf(n)
		switch r.Role {
		case RoleHeader:
			src.Headers = append(src.Headers, r)
		case RoleBody:
			src.Bodies = append(src.Bodies, r)
		default:
			src.Footers = append(src.Footers, r)
		}
		r.Variants = variantsOf(n, m.defaults.For(r.Role))
		src.Regions = append(src.Regions, r)
	}

	for _, body := range src.Bodies {
		for _, c := range body.Node.Children() {
			if c.Type == xhtml.TextNode && strings.TrimSpace(c.Data) != "" {
				diags = append(diags, Diagnostic{
					Kind:    DiagUnplaced,
					Message: fmt.Sprintf("loose text %q in body region is not a block", strings.TrimSpace(c.Data)),
				})
			}
			if c.Type != xhtml.ElementNode {
				continue
			}
			b := &Block{Node: c, Height: m.Height(c)}
			if t := findSplittable(c, m.vocab.Splittable); t != nil {
				b.Table = newTable(t, b, m)
			}
			src.Blocks = append(src.Blocks, b)
		}
	}
	return src, diags
}

func findSplittable(n *html.Node, class string) *html.Node {
	if n.HasClass(class) && n.IsElement("table") {
		return n
	}
	return n.FindFirst(func(x *html.Node) bool {
		return x.IsElement("table") && x.HasClass(class)
	})
}

// detachRegions removes all regions from the source tree.
func (s *Source) detachRegions() {
	for _, r := range s.Regions {
		r.Node.Detach()
	}
}
