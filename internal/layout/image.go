package layout

import (
	"github.com/gompdf/repaginate/internal/parser/html"
	"github.com/gompdf/repaginate/internal/style"
)

// DefaultImageSize is used for <img> elements without CSS or attribute sizes.
const DefaultImageSize = 40.0

// ImageBox represents an <img> element laid out as an inline replaced element.
type ImageBox struct {
	Node   *html.Node
	Style  style.ComputedStyle
	X      float64
	Y      float64
	Width  float64
	Height float64

	Src string // resolved later by the renderer
}

func newImageBox(node *html.Node, st style.ComputedStyle, avail float64) *ImageBox {
	b := &ImageBox{Node: node, Style: st, Width: DefaultImageSize, Height: DefaultImageSize}
	b.Src, _ = node.GetAttr("src")
	fs := style.FontSize(st)

	size := func(prop string, def float64) float64 {
		if v := st.Get(prop); v != "" {
			if px := style.ParseLength(v, avail, fs, -1); px > 0 {
				return px
			}
		}
		if v, ok := node.GetAttr(prop); ok {
			if px := style.ParseLength(v, avail, fs, -1); px > 0 {
				return px
			}
		}
		return def
	}
	b.Width = size("width", b.Width)
	b.Height = size("height", b.Height)
	return b
}

func (b *ImageBox) GetX() float64       { return b.X }
func (b *ImageBox) GetY() float64       { return b.Y }
func (b *ImageBox) GetWidth() float64   { return b.Width }
func (b *ImageBox) GetHeight() float64  { return b.Height }
func (b *ImageBox) GetNode() *html.Node { return b.Node }
