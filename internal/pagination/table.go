package pagination

import (
	"go.uber.org/zap"

	"github.com/gompdf/repaginate/internal/parser/html"
)

// TableState is the page variant a splittable table is currently emitted in.
// It is kept on the table between pages.
type TableState int

const (
	StateAbsent TableState = iota
	StateFirst
	StateInner
	StateLast
)

// Variant returns the page variant whose head and foot rows the state uses.
func (s TableState) Variant() Variant {
	switch s {
	case StateInner:
		return InnerPages
	case StateLast:
		return LastPage
	}
	return FirstPage
}

func (s TableState) String() string {
	if s == StateAbsent {
		return "absent"
	}
	return s.Variant().String()
}

// Row is a table row with its measured height and the variants it shows on.
// Body rows are moved into fragments, head and foot rows are cloned.
type Row struct {
	Node     *html.Node
	Height   float64
	Variants VariantSet
}

// Table is a splittable table and the rows still waiting to be placed.
type Table struct {
	Node  *html.Node
	Block *Block
	State TableState

	Head []*Row
	Foot []*Row
	Rows []*Row

	// Lead is the height of wrapper content around the table that goes out
	// with the first fragment. Chrome is the table's own height beyond its rows.
	Lead       float64
	Chrome     float64
	FullHeight float64

	next      int
	fragments int
	finished  bool
	path      []*html.Node // block .. table
	caption   *html.Node
	colgroups []*html.Node
	headGroup *html.Node
	bodyGroup *html.Node
	footGroup *html.Node
}

func newTable(n *html.Node, block *Block, m *HeightMeasurer) *Table {
	t := &Table{Node: n, Block: block}
	for p := n; p != nil; p = p.Parent {
		t.path = append([]*html.Node{p}, t.path...)
		if p == block.Node {
			break
		}
	}

	rowsOf := func(group *html.Node, role Role) []*Row {
		var out []*Row
		def := variantsOf(group, m.defaults.For(role))
		for _, tr := range group.ElementChildren() {
			if !tr.IsElement("tr") {
				continue
			}
			out = append(out, &Row{Node: tr, Height: m.Height(tr), Variants: variantsOf(tr, def)})
		}
		return out
	}

	for _, c := range n.ElementChildren() {
		switch c.Tag() {
		case "caption":
			t.caption = c
		case "colgroup":
			t.colgroups = append(t.colgroups, c)
		case "thead":
			if t.headGroup == nil {
				t.headGroup = c
			}
			t.Head = append(t.Head, rowsOf(c, RoleTableHead)...)
		case "tfoot":
			if t.footGroup == nil {
				t.footGroup = c
			}
			t.Foot = append(t.Foot, rowsOf(c, RoleTableFoot)...)
		case "tbody":
			if t.bodyGroup == nil {
				t.bodyGroup = c
			}
			for _, tr := range c.ElementChildren() {
				if tr.IsElement("tr") {
					t.Rows = append(t.Rows, &Row{Node: tr, Height: m.Height(tr), Variants: AllVariants})
				}
			}
		case "tr":
			t.Rows = append(t.Rows, &Row{Node: c, Height: m.Height(c), Variants: AllVariants})
		}
	}

	t.FullHeight = m.Height(n)
	rows := 0.0
	for _, group := range [][]*Row{t.Head, t.Rows, t.Foot} {
		for _, r := range group {
			rows += r.Height
		}
	}
	if t.Chrome = t.FullHeight - rows; t.Chrome < 0 {
		t.Chrome = 0
	}
	if block.Node != n {
		if t.Lead = block.Height - t.FullHeight; t.Lead < 0 {
			t.Lead = 0
		}
	}
	return t
}

// Pending returns the body rows not yet placed.
func (t *Table) Pending() []*Row { return t.Rows[t.next:] }

// Finished reports whether the last-page fragment has been emitted.
func (t *Table) Finished() bool { return t.finished }

// HeadHeight sums head rows shown in variant v.
func (t *Table) HeadHeight(v Variant) float64 { return sumRows(t.Head, v) }

// FootHeight sums foot rows shown in variant v.
func (t *Table) FootHeight(v Variant) float64 { return sumRows(t.Foot, v) }

func sumRows(rows []*Row, v Variant) float64 {
	h := 0.0
	for _, r := range rows {
		if r.Variants.Has(v) {
			h += r.Height
		}
	}
	return h
}

// overhead is everything a fragment in variant v needs besides body rows.
func (t *Table) overhead(v Variant) float64 {
	h := t.HeadHeight(v) + t.FootHeight(v) + t.Chrome
	if t.fragments == 0 {
		h += t.Lead
	}
	return h
}

// RemainingHeight is the height of the rest of the table if it were emitted
// as the last fragment.
func (t *Table) RemainingHeight() float64 {
	h := t.overhead(LastPage)
	for _, r := range t.Pending() {
		h += r.Height
	}
	return h
}

// Fragment is the part of a table placed on one page.
type Fragment struct {
	Node   *html.Node
	Height float64
	State  TableState
	Rows   int
	Forced bool
}

// TableSplitter moves the rows of splittable tables into per-page fragments.
type TableSplitter struct {
	log *zap.Logger
}

// NewTableSplitter creates a table splitter.
func NewTableSplitter(log *zap.Logger) *TableSplitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &TableSplitter{log: log}
}

// DetermineState picks the state for the next fragment and stores it on the
// table: last-page when everything left fits in avail, otherwise the stored
// state, otherwise first-page.
func (s *TableSplitter) DetermineState(t *Table, avail float64) TableState {
	switch {
	case fits(t.RemainingHeight(), avail):
		t.State = StateLast
	case t.State == StateAbsent:
		t.State = StateFirst
	}
	return t.State
}

// Split emits the next fragment of t for a page body with avail px left. It
// returns nil when not even one row fits, unless force is set, in which case
// one row is placed regardless. Either way a table that is not in the
// last-page state continues in the inner-pages state. A table that is not in the last-page state
// keeps its final row back, so the final row always goes out with the
// last-page head and foot.
func (s *TableSplitter) Split(t *Table, avail float64, force bool) *Fragment {
	if t.finished {
		return nil
	}
	state := s.DetermineState(t, avail)
	pending := t.Pending()

	limit := len(pending)
	if state != StateLast {
		limit--
	}
	room := avail - t.overhead(state.Variant())
	n, used := 0, 0.0
	for n < limit && fits(used+pending[n].Height, room) {
		used += pending[n].Height
		n++
	}

	forced := false
	if n == 0 && (len(pending) > 0 || state != StateLast) {
		if !force {
			if state != StateLast {
				t.State = StateInner
			}
			s.log.Debug("Table fragment does not fit",
				zap.String("state", state.String()),
				zap.Float64("available", avail),
				zap.Int("pending", len(pending)))
			return nil
		}
		forced = true
		if limit <= 0 {
			state = StateLast
			t.State = StateLast
		}
		if len(pending) > 0 {
			n = 1
			used = pending[0].Height
		}
	}

	v := state.Variant()
	frag := &Fragment{
		Node:   t.build(v, pending[:n]),
		Height: t.overhead(v) + used,
		State:  state,
		Rows:   n,
		Forced: forced,
	}
	t.next += n
	t.fragments++
	if state == StateLast {
		t.finished = true
	} else {
		t.State = StateInner
	}
	return frag
}

// build assembles a fragment: the table shell with one merged head group,
// one body group with the moved rows and one merged foot group, wrapped in
// copies of the ancestors up to the block.
func (t *Table) build(v Variant, rows []*Row) *html.Node {
	first := t.fragments == 0

	shell := t.Node.ShallowClone()
	shell.SetAttr("data-table-state", v.String())
	if first && t.caption != nil {
		shell.AppendChild(t.caption)
	}
	for _, cg := range t.colgroups {
		shell.AppendChild(cg.Clone())
	}

	group := func(tmpl *html.Node, tag string) *html.Node {
		if tmpl != nil {
			return tmpl.ShallowClone()
		}
		return html.NewElement(tag)
	}
	if head := matching(t.Head, v); len(head) > 0 {
		thead := group(t.headGroup, "thead")
		for _, r := range head {
			thead.AppendChild(r.Node.Clone())
		}
		shell.AppendChild(thead)
	}
	tbody := group(t.bodyGroup, "tbody")
	for _, r := range rows {
		tbody.AppendChild(r.Node)
	}
	shell.AppendChild(tbody)
	if foot := matching(t.Foot, v); len(foot) > 0 {
		tfoot := group(t.footGroup, "tfoot")
		for _, r := range foot {
			tfoot.AppendChild(r.Node.Clone())
		}
		shell.AppendChild(tfoot)
	}
	return t.wrap(shell, first)
}

// wrap rebuilds the ancestors between the block and the table around a
// fragment. The first fragment takes the wrappers' other content with it.
func (t *Table) wrap(fragment *html.Node, first bool) *html.Node {
	child := fragment
	for i := len(t.path) - 2; i >= 0; i-- {
		anc, pathChild := t.path[i], t.path[i+1]
		clone := anc.ShallowClone()
		if first {
			for _, c := range anc.Children() {
				if c == pathChild {
					clone.AppendChild(child)
					continue
				}
				clone.AppendChild(c)
			}
		} else {
			clone.AppendChild(child)
		}
		child = clone
	}
	return child
}

func matching(rows []*Row, v Variant) []*Row {
	var out []*Row
	for _, r := range rows {
		if r.Variants.Has(v) {
			out = append(out, r)
		}
	}
	return out
}
