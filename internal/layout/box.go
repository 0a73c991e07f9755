package layout

import (
	"github.com/gompdf/repaginate/internal/parser/html"
)

// Box is a positioned rectangle in the layout tree. Coordinates are CSS px
// measured from the top-left corner of whatever the root was laid out at.
type Box interface {
	GetX() float64
	GetY() float64
	GetWidth() float64
	GetHeight() float64
	GetNode() *html.Node
}

// Edges holds the four sides of a margin, border or padding.
type Edges struct {
	Top, Right, Bottom, Left float64
}

// Horizontal returns left + right.
func (e Edges) Horizontal() float64 { return e.Left + e.Right }

// Vertical returns top + bottom.
func (e Edges) Vertical() float64 { return e.Top + e.Bottom }

// LineBox is one line of inline content inside a block.
type LineBox struct {
	X, Y, Width, Height float64
	Children            []Box
}

func (l *LineBox) GetX() float64       { return l.X }
func (l *LineBox) GetY() float64       { return l.Y }
func (l *LineBox) GetWidth() float64   { return l.Width }
func (l *LineBox) GetHeight() float64  { return l.Height }
func (l *LineBox) GetNode() *html.Node { return nil }
