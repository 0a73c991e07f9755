package layout

import (
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/gompdf/repaginate/internal/parser/html"
	"github.com/gompdf/repaginate/internal/style"
	xhtml "golang.org/x/net/html"
)

// DefaultWidth is the A4 page width in CSS px.
const DefaultWidth = 794.0

// Options represents options for the layout engine
type Options struct {
	// Width of the initial containing block in px.
	Width float64
}

// Engine lays out element subtrees into box trees and measures them.
type Engine struct {
	options Options
	styles  *style.StyleEngine
	metrics TextMetrics
	log     *zap.Logger
}

// NewEngine creates a new layout engine
func NewEngine(styles *style.StyleEngine, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		options: Options{Width: DefaultWidth},
		styles:  styles,
		metrics: FpdfMetrics{},
		log:     log,
	}
}

// SetOptions sets the options for the layout engine
func (e *Engine) SetOptions(options Options) {
	if options.Width <= 0 {
		options.Width = DefaultWidth
	}
	e.options = options
}

// SetMetrics replaces the text measurement.
func (e *Engine) SetMetrics(m TextMetrics) {
	e.metrics = m
}

// Styles returns the style engine used for layout.
func (e *Engine) Styles() *style.StyleEngine {
	return e.styles
}

// Layout lays node out with its top-left margin edge at (x, y), using the
// width it would get in its current position in the tree.
func (e *Engine) Layout(node *html.Node, x, y float64) *BlockBox {
	if node == nil || node.Type != xhtml.ElementNode {
		return &BlockBox{X: x, Y: y}
	}
	b := e.layoutBox(node, x, y, e.availableWidth(node))
	e.log.Debug("Layout",
		zap.String("tag", node.Tag()),
		zap.Strings("class", node.Classes()),
		zap.Float64("width", b.Width),
		zap.Float64("height", b.Height))
	return b
}

// OuterHeight returns the vertical space node takes in flow, margins included.
// Table rows include one row of border spacing.
func (e *Engine) OuterHeight(node *html.Node) float64 {
	if node == nil || node.Type != xhtml.ElementNode {
		return 0
	}
	if style.Hidden(e.styles.StyleOf(node)) {
		return 0
	}
	if e.display(node) == "table-row" {
		if table := tableOf(node); table != nil {
			tb := e.tableGeometry(table)
			row := e.layoutRow(node, 0, 0, tb.cols, tb.gap)
			return row.Height + tb.gap
		}
	}
	return e.Layout(node, 0, 0).OuterHeight()
}

var blockTags = map[string]bool{
	"html": true, "body": true, "div": true, "p": true, "section": true,
	"article": true, "header": true, "footer": true, "main": true, "nav": true,
	"aside": true, "address": true, "blockquote": true, "figure": true,
	"figcaption": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "ul": true, "ol": true, "li": true, "dl": true,
	"dt": true, "dd": true, "pre": true, "hr": true, "form": true, "fieldset": true,
}

// display returns the used display value of an element.
func (e *Engine) display(n *html.Node) string {
	if n.Type != xhtml.ElementNode {
		return "inline"
	}
	switch d := e.styles.StyleOf(n).Get("display"); d {
	case "":
	case "inline-block", "flex", "grid", "list-item", "flow-root":
		return "block"
	default:
		return d
	}
	switch tag := n.Tag(); {
	case blockTags[tag]:
		return "block"
	case tag == "table":
		return "table"
	case tag == "tr":
		return "table-row"
	case tag == "td" || tag == "th":
		return "table-cell"
	case tag == "thead" || tag == "tbody" || tag == "tfoot":
		return "table-row-group"
	case tag == "caption":
		return "table-caption"
	case tag == "colgroup" || tag == "col":
		return "none"
	}
	return "inline"
}

func (e *Engine) layoutBox(n *html.Node, x, y, avail float64) *BlockBox {
	switch e.display(n) {
	case "table":
		return e.layoutTable(n, x, y, avail)
	case "table-row":
		if table := tableOf(n); table != nil {
			tb := e.tableGeometry(table)
			row := e.layoutRow(n, x, y, tb.cols, tb.gap)
			row.Margin.Bottom = tb.gap
			return row
		}
	case "table-row-group":
		if table := tableOf(n); table != nil {
			return e.layoutRowGroup(n, table, x, y)
		}
	}
	return e.layoutBlock(n, x, y, avail)
}

// layoutBlock lays out a block container and its in-flow children.
func (e *Engine) layoutBlock(n *html.Node, x, y, avail float64) *BlockBox {
	st := e.styles.StyleOf(n)
	b := NewBlockBox(n, st)
	b.Margin, b.Border, b.Padding = boxModel(st, avail)
	b.X = x + b.Margin.Left
	b.Y = y + b.Margin.Top
	b.Width = borderBoxWidth(st, avail, b.Margin, b.Border, b.Padding)

	contentHeight := e.layoutFlow(b, n.Children())
	b.Height = usedHeight(st, contentHeight, avail, b.Border, b.Padding)
	return b
}

// layoutFlow stacks block children and wraps runs of inline children into
// line boxes. Vertical margins do not collapse.
func (e *Engine) layoutFlow(b *BlockBox, children []*html.Node) float64 {
	x, y, width := b.ContentX(), b.ContentY(), b.ContentWidth()
	cursor := y
	var inline []*html.Node

	flush := func() {
		if len(inline) == 0 {
			return
		}
		atoms := e.collectAtoms(inline, nil)
		inline = inline[:0]
		if len(atoms) == 0 {
			return
		}
		lines, h := e.layoutLines(atoms, x, cursor, width, b.Style.Get("text-align"))
		for _, l := range lines {
			b.AddChild(l)
		}
		cursor += h
	}

	for _, c := range children {
		switch c.Type {
		case xhtml.TextNode:
			inline = append(inline, c)
			continue
		case xhtml.ElementNode:
		default:
			continue
		}
		switch d := e.display(c); d {
		case "none":
		case "inline":
			inline = append(inline, c)
		default:
			flush()
			child := e.layoutBox(c, x, cursor, width)
			b.AddChild(child)
			cursor += child.OuterHeight()
		}
	}
	flush()
	return cursor - y
}

// tableGeometry is what rows need to know about their table.
type tableGeometry struct {
	width float64
	cols  []float64
	gap   float64
}

func (e *Engine) borderSpacing(st style.ComputedStyle) float64 {
	if st.Get("border-collapse") == "collapse" {
		return 0
	}
	parts := strings.Fields(st.Get("border-spacing"))
	if len(parts) == 0 {
		return 0
	}
	return math.Max(0, style.ParseLength(parts[len(parts)-1], 0, style.FontSize(st), 0))
}

// tableGeometry resolves the column widths of table in its current position.
func (e *Engine) tableGeometry(table *html.Node) tableGeometry {
	st := e.styles.StyleOf(table)
	avail := e.availableWidth(table)
	margin, border, padding := boxModel(st, avail)
	width := borderBoxWidth(st, avail, margin, border, padding)
	inner := math.Max(0, width-border.Horizontal()-padding.Horizontal())
	gap := e.borderSpacing(st)
	return tableGeometry{
		width: inner,
		cols:  e.columnWidths(table, inner, gap),
		gap:   gap,
	}
}

// layoutTable lays out caption, header rows, body rows and footer rows in
// that order. Rows become direct children of the table box.
func (e *Engine) layoutTable(n *html.Node, x, y, avail float64) *BlockBox {
	st := e.styles.StyleOf(n)
	b := NewBlockBox(n, st)
	b.Margin, b.Border, b.Padding = boxModel(st, avail)
	b.X = x + b.Margin.Left
	b.Y = y + b.Margin.Top
	b.Width = borderBoxWidth(st, avail, b.Margin, b.Border, b.Padding)

	gap := e.borderSpacing(st)
	cols := e.columnWidths(n, b.ContentWidth(), gap)
	cursor := b.ContentY()

	for _, c := range n.ElementChildren() {
		if e.display(c) == "table-caption" {
			cb := e.layoutBlock(c, b.ContentX(), cursor, b.ContentWidth())
			b.AddChild(cb)
			cursor += cb.OuterHeight()
		}
	}
	rows := TableRows(n)
	if len(rows) > 0 {
		cursor += gap
	}
	for _, tr := range rows {
		if style.Hidden(e.styles.StyleOf(tr)) {
			continue
		}
		row := e.layoutRow(tr, b.ContentX(), cursor, cols, gap)
		b.AddChild(row)
		cursor += row.Height + gap
	}
	b.Height = usedHeight(st, cursor-b.ContentY(), avail, b.Border, b.Padding)
	return b
}

// layoutRowGroup lays out a thead, tbody or tfoot on its own.
func (e *Engine) layoutRowGroup(group, table *html.Node, x, y float64) *BlockBox {
	tb := e.tableGeometry(table)
	b := NewBlockBox(group, e.styles.StyleOf(group))
	b.X, b.Y, b.Width = x, y, tb.width
	cursor := y
	for _, tr := range group.ElementChildren() {
		if !tr.IsElement("tr") {
			continue
		}
		row := e.layoutRow(tr, x, cursor, tb.cols, tb.gap)
		b.AddChild(row)
		cursor += row.Height + tb.gap
	}
	b.Height = cursor - y
	return b
}

// layoutRow places cells on the column grid. The row is as tall as its
// tallest cell and every cell is stretched to the row height.
func (e *Engine) layoutRow(tr *html.Node, x, y float64, cols []float64, gap float64) *BlockBox {
	st := e.styles.StyleOf(tr)
	row := NewBlockBox(tr, st)
	row.X, row.Y = x, y

	colX := make([]float64, len(cols)+1)
	cx := x + gap
	for i, w := range cols {
		colX[i] = cx
		cx += w + gap
	}
	colX[len(cols)] = cx
	row.Width = cx - x

	maxH := 0.0
	col := 0
	var cells []*BlockBox
	for _, c := range tr.ElementChildren() {
		if !c.IsElement("td", "th") || style.Hidden(e.styles.StyleOf(c)) {
			continue
		}
		span := colspan(c)
		if col >= len(cols) {
			break
		}
		end := col + span
		if end > len(cols) {
			end = len(cols)
		}
		w := colX[end] - colX[col] - gap
		cell := e.layoutCell(c, colX[col], y, w)
		cells = append(cells, cell)
		row.AddChild(cell)
		if cell.Height > maxH {
			maxH = cell.Height
		}
		col = end
	}
	if h := style.ParseLength(st.Get("height"), 0, style.FontSize(st), 0); h > maxH {
		maxH = h
	}
	for _, cell := range cells {
		cell.Height = maxH
	}
	row.Height = maxH
	return row
}

func (e *Engine) layoutCell(td *html.Node, x, y, width float64) *BlockBox {
	st := e.styles.StyleOf(td)
	b := NewBlockBox(td, st)
	_, b.Border, b.Padding = boxModel(st, width)
	b.X, b.Y, b.Width = x, y, width
	contentHeight := e.layoutFlow(b, td.Children())
	b.Height = usedHeight(st, contentHeight, width, b.Border, b.Padding)
	return b
}

// TableRows returns the rows of a table in rendering order: thead rows,
// body rows (tbody and bare tr, in source order) and then tfoot rows.
func TableRows(table *html.Node) []*html.Node {
	var head, body, foot []*html.Node
	for _, c := range table.ElementChildren() {
		switch c.Tag() {
		case "thead":
			head = append(head, rowsOf(c)...)
		case "tfoot":
			foot = append(foot, rowsOf(c)...)
		case "tbody":
			body = append(body, rowsOf(c)...)
		case "tr":
			body = append(body, c)
		}
	}
	return append(append(head, body...), foot...)
}

func rowsOf(group *html.Node) []*html.Node {
	var rows []*html.Node
	for _, c := range group.ElementChildren() {
		if c.IsElement("tr") {
			rows = append(rows, c)
		}
	}
	return rows
}

func tableOf(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.IsElement("table") {
			return p
		}
	}
	return nil
}

func colspan(cell *html.Node) int {
	if v, ok := cell.GetAttr("colspan"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 1 {
			return n
		}
	}
	return 1
}

// columnWidths determines column widths for a table. Widths declared on the
// first header row win, otherwise the first row is used. Undeclared columns
// share the remaining width evenly.
func (e *Engine) columnWidths(table *html.Node, width, gap float64) []float64 {
	rows := TableRows(table)
	if len(rows) == 0 {
		return nil
	}
	spec := rows[0]

	type colSpec struct {
		width float64
		span  int
	}
	var specs []colSpec
	cols := 0
	for _, c := range spec.ElementChildren() {
		if !c.IsElement("td", "th") {
			continue
		}
		span := colspan(c)
		st := e.styles.StyleOf(c)
		w := -1.0
		if v := st.Get("width"); v != "" {
			w = style.ParseLength(v, width, style.FontSize(st), -1)
		} else if v, ok := c.GetAttr("width"); ok {
			w = style.ParseLength(v, width, style.FontSize(st), -1)
		}
		specs = append(specs, colSpec{width: w, span: span})
		cols += span
	}
	// other rows may have more cells than the first row
	for _, r := range rows[1:] {
		n := 0
		for _, c := range r.ElementChildren() {
			if c.IsElement("td", "th") {
				n += colspan(c)
			}
		}
		if n > cols {
			specs = append(specs, colSpec{width: -1, span: n - cols})
			cols = n
		}
	}
	if cols == 0 {
		return nil
	}

	effective := math.Max(0, width-gap*float64(cols+1))
	out := make([]float64, cols)
	declared := 0.0
	undeclared := 0
	i := 0
	for _, s := range specs {
		for j := 0; j < s.span; j++ {
			if s.width >= 0 {
				out[i] = s.width / float64(s.span)
				declared += out[i]
			} else {
				out[i] = -1
				undeclared++
			}
			i++
		}
	}
	if undeclared > 0 {
		each := math.Max(0, effective-declared) / float64(undeclared)
		for i := range out {
			if out[i] < 0 {
				out[i] = each
			}
		}
	}
	return out
}

// availableWidth returns the width n is laid out against: the content width of
// its containing block, or its column width for table cells.
func (e *Engine) availableWidth(n *html.Node) float64 {
	p := n.Parent
	if p == nil || p.Type != xhtml.ElementNode {
		return e.options.Width
	}
	if n.IsElement("td", "th") {
		if table := tableOf(n); table != nil {
			return e.cellWidth(n, e.tableGeometry(table))
		}
	}
	switch e.display(p) {
	case "table":
		return e.tableGeometry(p).width
	case "table-row", "table-row-group":
		if table := tableOf(p); table != nil {
			return e.tableGeometry(table).width
		}
	case "table-cell":
		avail := e.availableWidth(p)
		_, border, padding := boxModel(e.styles.StyleOf(p), avail)
		return math.Max(0, avail-border.Horizontal()-padding.Horizontal())
	}
	avail := e.availableWidth(p)
	st := e.styles.StyleOf(p)
	margin, border, padding := boxModel(st, avail)
	return math.Max(0, borderBoxWidth(st, avail, margin, border, padding)-border.Horizontal()-padding.Horizontal())
}

func (e *Engine) cellWidth(cell *html.Node, tb tableGeometry) float64 {
	col := 0
	for c := cell.Parent.FirstChild; c != nil && c != cell; c = c.NextSibling {
		if c.IsElement("td", "th") {
			col += colspan(c)
		}
	}
	w := 0.0
	span := colspan(cell)
	for i := col; i < col+span && i < len(tb.cols); i++ {
		w += tb.cols[i]
	}
	if span > 1 {
		w += tb.gap * float64(span-1)
	}
	return w
}
