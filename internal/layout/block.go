package layout

import (
	"github.com/gompdf/repaginate/internal/parser/html"
	"github.com/gompdf/repaginate/internal/style"
)

// BlockBox represents a block-level box in the layout. X, Y, Width and Height
// describe the border box; margins sit outside of it.
type BlockBox struct {
	Node     *html.Node
	Style    style.ComputedStyle
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Margin   Edges
	Padding  Edges
	Border   Edges
	Children []Box
}

// NewBlockBox creates a new block box for an element
func NewBlockBox(node *html.Node, computedStyle style.ComputedStyle) *BlockBox {
	return &BlockBox{
		Node:  node,
		Style: computedStyle,
	}
}

// ContentX returns the left edge of the content box.
func (b *BlockBox) ContentX() float64 {
	return b.X + b.Border.Left + b.Padding.Left
}

// ContentY returns the top edge of the content box.
func (b *BlockBox) ContentY() float64 {
	return b.Y + b.Border.Top + b.Padding.Top
}

// ContentWidth returns the width of the content box.
func (b *BlockBox) ContentWidth() float64 {
	w := b.Width - b.Border.Horizontal() - b.Padding.Horizontal()
	if w < 0 {
		return 0
	}
	return w
}

// OuterHeight is the height including vertical margins.
func (b *BlockBox) OuterHeight() float64 {
	return b.Margin.Top + b.Height + b.Margin.Bottom
}

// AddChild adds a child box
func (b *BlockBox) AddChild(child Box) {
	b.Children = append(b.Children, child)
}

func (b *BlockBox) GetX() float64       { return b.X }
func (b *BlockBox) GetY() float64       { return b.Y }
func (b *BlockBox) GetWidth() float64   { return b.Width }
func (b *BlockBox) GetHeight() float64  { return b.Height }
func (b *BlockBox) GetNode() *html.Node { return b.Node }

// boxModel resolves margins, borders and padding against the containing width.
func boxModel(st style.ComputedStyle, avail float64) (margin, border, padding Edges) {
	fs := style.FontSize(st)
	side := func(prefix, suffix, name string) float64 {
		v := style.ParseLength(st.Get(prefix+name+suffix), avail, fs, 0)
		if v < 0 && prefix != "margin-" {
			return 0
		}
		return v
	}
	margin = Edges{side("margin-", "", "top"), side("margin-", "", "right"), side("margin-", "", "bottom"), side("margin-", "", "left")}
	padding = Edges{side("padding-", "", "top"), side("padding-", "", "right"), side("padding-", "", "bottom"), side("padding-", "", "left")}
	border = Edges{side("border-", "-width", "top"), side("border-", "-width", "right"), side("border-", "-width", "bottom"), side("border-", "-width", "left")}
	return margin, border, padding
}

// borderBoxWidth resolves the used width of a block inside avail.
func borderBoxWidth(st style.ComputedStyle, avail float64, margin, border, padding Edges) float64 {
	w := avail - margin.Horizontal()
	if v := st.Get("width"); v != "" && v != "auto" {
		explicit := style.ParseLength(v, avail, style.FontSize(st), -1)
		if explicit >= 0 {
			w = explicit
			if st.Get("box-sizing") != "border-box" {
				w += border.Horizontal() + padding.Horizontal()
			}
		}
	}
	if w < 0 {
		w = 0
	}
	return w
}

// usedHeight applies height and min-height to the laid out content height.
func usedHeight(st style.ComputedStyle, contentHeight, avail float64, border, padding Edges) float64 {
	fs := style.FontSize(st)
	extra := border.Vertical() + padding.Vertical()
	h := contentHeight + extra
	if v := st.Get("height"); v != "" && v != "auto" {
		if explicit := style.ParseLength(v, avail, fs, -1); explicit >= 0 {
			h = explicit
			if st.Get("box-sizing") != "border-box" {
				h += extra
			}
		}
	}
	if v := st.Get("min-height"); v != "" {
		if mh := style.ParseLength(v, avail, fs, -1); mh >= 0 {
			if st.Get("box-sizing") != "border-box" {
				mh += extra
			}
			if mh > h {
				h = mh
			}
		}
	}
	return h
}
