package layout

import (
	"strings"
	"unicode"

	"github.com/gompdf/repaginate/internal/parser/html"
	"github.com/gompdf/repaginate/internal/style"
	xhtml "golang.org/x/net/html"
)

// InlineBox is a run of text on a single line sharing one style.
type InlineBox struct {
	Node   *html.Node
	Style  style.ComputedStyle
	X      float64
	Y      float64
	Width  float64
	Height float64
	Text   string
}

func (b *InlineBox) GetX() float64       { return b.X }
func (b *InlineBox) GetY() float64       { return b.Y }
func (b *InlineBox) GetWidth() float64   { return b.Width }
func (b *InlineBox) GetHeight() float64  { return b.Height }
func (b *InlineBox) GetNode() *html.Node { return b.Node }

// FontSize returns the run font size in px.
func (b *InlineBox) FontSize() float64 { return style.FontSize(b.Style) }

type atomKind int

const (
	atomWord atomKind = iota
	atomImage
	atomBreak
)

// atom is the unit of line breaking.
type atom struct {
	kind  atomKind
	text  string
	space bool // collapsible space before the atom
	node  *html.Node
	style style.ComputedStyle
}

// collectAtoms flattens inline content into words, images and forced breaks.
func (e *Engine) collectAtoms(nodes []*html.Node, out []atom) []atom {
	for _, n := range nodes {
		switch n.Type {
		case xhtml.TextNode:
			out = e.textAtoms(n, out)
		case xhtml.ElementNode:
			st := e.styles.StyleOf(n)
			if style.Hidden(st) {
				continue
			}
			switch n.Tag() {
			case "br":
				out = append(out, atom{kind: atomBreak, node: n, style: st})
			case "img":
				out = append(out, atom{kind: atomImage, node: n, style: st, space: pendingSpace(n)})
			default:
				out = e.collectAtoms(n.Children(), out)
			}
		}
	}
	return out
}

func pendingSpace(n *html.Node) bool {
	prev := n.PrevSibling
	return prev != nil && prev.Type == xhtml.TextNode && strings.TrimRightFunc(prev.Data, unicode.IsSpace) != prev.Data
}

func (e *Engine) textAtoms(n *html.Node, out []atom) []atom {
	st := e.styles.StyleOf(n)
	switch st.Get("white-space") {
	case "pre", "pre-wrap", "pre-line":
		for i, line := range strings.Split(n.Data, "\n") {
			if i > 0 {
				out = append(out, atom{kind: atomBreak, node: n, style: st})
			}
			if line != "" {
				out = append(out, atom{kind: atomWord, text: line, node: n, style: st})
			}
		}
		return out
	}

	space := len(n.Data) > 0 && unicode.IsSpace(rune(n.Data[0]))
	for _, word := range strings.Fields(n.Data) {
		out = append(out, atom{kind: atomWord, text: word, space: space, node: n, style: st})
		space = true
	}
	return out
}

// layoutLines breaks atoms into lines of at most width px starting at (x, y).
// It returns the lines and their total height.
func (e *Engine) layoutLines(atoms []atom, x, y, width float64, align string) ([]*LineBox, float64) {
	var (
		lines  []*LineBox
		line   *LineBox
		cursor = y
		used   float64
		last   *InlineBox
	)

	finish := func() {
		if line == nil {
			return
		}
		if line.Height == 0 {
			line.Height = style.LineHeight(style.ComputedStyle{})
		}
		// bottom-align runs of different heights
		for _, c := range line.Children {
			switch r := c.(type) {
			case *InlineBox:
				r.Y = line.Y + line.Height - r.Height
			case *ImageBox:
				r.Y = line.Y + line.Height - r.Height
			}
		}
		shift := 0.0
		switch align {
		case "right", "end":
			shift = width - used
		case "center":
			shift = (width - used) / 2
		}
		if shift > 0 {
			for _, c := range line.Children {
				switch r := c.(type) {
				case *InlineBox:
					r.X += shift
				case *ImageBox:
					r.X += shift
				}
			}
		}
		line.Width = used
		lines = append(lines, line)
		cursor += line.Height
		line, used, last = nil, 0, nil
	}

	for _, a := range atoms {
		if a.kind == atomBreak {
			if line == nil {
				line = &LineBox{X: x, Y: cursor, Height: style.LineHeight(a.style)}
			}
			finish()
			continue
		}
		nowrap := a.style.Get("white-space") == "nowrap"

		var w, h, gap float64
		fs := style.FontSize(a.style)
		switch a.kind {
		case atomWord:
			w = e.metrics.StringWidth(a.text, fs, a.style)
			h = style.LineHeight(a.style)
		case atomImage:
			img := newImageBox(a.node, a.style, width)
			w, h = img.Width, img.Height
		}
		if line != nil && a.space {
			gap = e.metrics.StringWidth(" ", fs, a.style)
		}
		if line != nil && !nowrap && used+gap+w > width && len(line.Children) > 0 {
			finish()
			gap = 0
		}
		if line == nil {
			line = &LineBox{X: x, Y: cursor}
		}
		if h > line.Height {
			line.Height = h
		}

		if a.kind == atomImage {
			img := newImageBox(a.node, a.style, width)
			img.X = x + used + gap
			line.Children = append(line.Children, img)
			used += gap + w
			last = nil
			continue
		}
		if last != nil && last.Node == a.node {
			if gap > 0 {
				last.Text += " "
			}
			last.Text += a.text
			last.Width += gap + w
		} else {
			last = &InlineBox{Node: a.node, Style: a.style, X: x + used + gap, Width: w, Height: h, Text: a.text}
			line.Children = append(line.Children, last)
		}
		used += gap + w
	}
	finish()
	return lines, cursor - y
}
