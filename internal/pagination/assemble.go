package pagination

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/gompdf/repaginate/internal/parser/html"
)

// Page is one assembled output page.
type Page struct {
	Number int
	Type   Variant
	Node   *html.Node
	// BodyUsed is the body height the placed content was measured at.
	BodyUsed float64
}

// PageAssembler builds page containers from cloned headers and footers and a
// body filled by the body splitter.
type PageAssembler struct {
	vocab Vocabulary
	body  *BodySplitter
	log   *zap.Logger
}

// NewPageAssembler creates a page assembler.
func NewPageAssembler(vocab Vocabulary, body *BodySplitter, log *zap.Logger) *PageAssembler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PageAssembler{vocab: vocab.withDefaults(), body: body, log: log}
}

// Assemble appends count pages to target and returns them in order.
func (a *PageAssembler) Assemble(src *Source, profile HeightProfile, count int, target *html.Node) ([]*Page, []Diagnostic) {
	var (
		pages []*Page
		diags []Diagnostic
	)
	for i := 1; i <= count; i++ {
		v := PageVariant(i, count)

		node := html.NewElement("div", a.vocab.Page, v.String())
		node.SetAttr("data-page-number", strconv.Itoa(i))

		for _, h := range src.Headers {
			if h.Variants.Has(v) {
				node.AppendChild(h.Node.Clone())
			}
		}
		body := a.bodyContainer(src)
		node.AppendChild(body)
		used, d := a.body.Fill(body, src, profile.Available(v), i)
		diags = append(diags, d...)
		for _, f := range src.Footers {
			if f.Variants.Has(v) {
				node.AppendChild(f.Node.Clone())
			}
		}

		a.stamp(node, i, count)
		target.AppendChild(node)
		pages = append(pages, &Page{Number: i, Type: v, Node: node, BodyUsed: used})

		a.log.Debug("Assembled page",
			zap.Int("page", i),
			zap.String("type", v.String()),
			zap.Float64("available", profile.Available(v)),
			zap.Float64("used", used))
	}
	return pages, diags
}

// bodyContainer is an empty copy of the first body region, so its classes
// and attributes carry over to every page.
func (a *PageAssembler) bodyContainer(src *Source) *html.Node {
	if len(src.Bodies) > 0 {
		return src.Bodies[0].Node.ShallowClone()
	}
	return html.NewElement("div", a.vocab.Body)
}

// stamp fills the page number and page count placeholders of a page.
func (a *PageAssembler) stamp(page *html.Node, number, count int) {
	for _, n := range page.ByClass(a.vocab.PageNumber) {
		n.SetText(strconv.Itoa(number))
	}
	for _, n := range page.ByClass(a.vocab.PageCount) {
		n.SetText(strconv.Itoa(count))
	}
}
