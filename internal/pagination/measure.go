package pagination

import (
	"fmt"
	"math"

	"github.com/gompdf/repaginate/internal/parser/html"
)

// epsilon absorbs float noise in height comparisons; exact fits count as fits.
const epsilon = 1e-6

func fits(height, avail float64) bool {
	return height <= avail+epsilon
}

// Backend reports the rendered outer height of a node in px, margins included.
type Backend interface {
	OuterHeight(n *html.Node) float64
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(n *html.Node) float64

func (f BackendFunc) OuterHeight(n *html.Node) float64 { return f(n) }

// Measurement is a summed height together with how many nodes contributed.
type Measurement struct {
	Height  float64
	Matched int
}

// Gap reports that nothing matched, so Height is a zero default.
func (m Measurement) Gap() bool { return m.Matched == 0 }

// HeightMeasurer selects nodes by role and variant and sums their heights.
type HeightMeasurer struct {
	backend  Backend
	vocab    Vocabulary
	defaults Defaults
}

// NewHeightMeasurer creates a measurer over backend.
func NewHeightMeasurer(backend Backend, vocab Vocabulary, defaults Defaults) *HeightMeasurer {
	return &HeightMeasurer{backend: backend, vocab: vocab.withDefaults(), defaults: defaults}
}

// Height measures a single node. Negative or NaN reports count as zero.
func (m *HeightMeasurer) Height(n *html.Node) float64 {
	h := m.backend.OuterHeight(n)
	if h < 0 || math.IsNaN(h) {
		return 0
	}
	return h
}

// HeightOf sums the heights of every region under root with the role whose
// variant set contains v. No match gives a zero height.
func (m *HeightMeasurer) HeightOf(role Role, v Variant, root *html.Node) Measurement {
	var out Measurement
	for _, r := range m.regions(root, role) {
		if variantsOf(r, m.defaults.For(role)).Has(v) {
			out.Height += m.Height(r)
			out.Matched++
		}
	}
	return out
}

// regions returns the outermost regions under root with the given role. A
// region nested in another region belongs to the outer one and is skipped.
func (m *HeightMeasurer) regions(root *html.Node, role Role) []*html.Node {
	var out []*html.Node
	for _, n := range m.regionNodes(root) {
		if r, _ := m.roleOf(n); r == role {
			out = append(out, n)
		}
	}
	return out
}

// regionNodes returns the outermost elements under root carrying any region
// class. Anything inside existing page containers is ignored.
func (m *HeightMeasurer) regionNodes(root *html.Node) []*html.Node {
	var out []*html.Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		c.Walk(func(n *html.Node) bool {
			if n.HasClass(m.vocab.Page) || n.HasClass(m.vocab.Pages) {
				return false
			}
			if _, ok := m.roleOf(n); ok {
				out = append(out, n)
				return false
			}
			return true
		})
	}
	return out
}

// roleOf returns the region role of n. Header wins over body, body over footer.
func (m *HeightMeasurer) roleOf(n *html.Node) (Role, bool) {
	for _, role := range []Role{RoleHeader, RoleBody, RoleFooter} {
		if n.HasClass(m.vocab.regionClass(role)) {
			return role, true
		}
	}
	return 0, false
}

// MeasurePageCapacity attaches an empty page container under root, measures
// it and removes it again.
func (m *HeightMeasurer) MeasurePageCapacity(root *html.Node) Measurement {
	page := html.NewElement("div", m.vocab.Page)
	root.AppendChild(page)
	defer page.Detach()

	h := m.Height(page)
	if h <= 0 {
		return Measurement{}
	}
	return Measurement{Height: h, Matched: 1}
}

// HeightProfile is the snapshot of capacities and content sizes taken before
// any node moves. Arrays are indexed by Variant.
type HeightProfile struct {
	PageAvailable float64
	Header        [4]float64
	Footer        [4]float64
	Body          [4]float64
	BodyAvailable [4]float64

	// BodyContent is the height of plain body blocks, TableContent the height
	// of table-bearing blocks measured unsplit.
	BodyContent  float64
	TableContent float64
}

// Available returns the body height available on a page of variant v.
func (p HeightProfile) Available(v Variant) float64 {
	return p.BodyAvailable[v]
}

// ContentHeight is the total body height to distribute over pages.
func (p HeightProfile) ContentHeight() float64 {
	return p.BodyContent + p.TableContent
}

// Profile measures the regions under root. The source model supplies the
// block heights so that they are measured only once.
func (m *HeightMeasurer) Profile(root *html.Node, capacity float64, src *Source) (HeightProfile, []Diagnostic) {
	var (
		p     = HeightProfile{PageAvailable: capacity}
		diags []Diagnostic
	)
	for _, v := range Variants {
		for _, x := range []struct {
			role Role
			dst  *[4]float64
		}{{RoleHeader, &p.Header}, {RoleFooter, &p.Footer}, {RoleBody, &p.Body}} {
			mm := m.HeightOf(x.role, v, root)
			if mm.Gap() {
				diags = append(diags, Diagnostic{
					Kind:    DiagMeasurementGap,
					Message: fmt.Sprintf("no %s content for %s", x.role, v),
				})
			}
			x.dst[v] = mm.Height
		}
		p.BodyAvailable[v] = capacity - p.Header[v] - p.Footer[v]
	}
	for _, b := range src.Blocks {
		if b.Table != nil {
			p.TableContent += b.Height
		} else {
			p.BodyContent += b.Height
		}
	}
	return p, diags
}
