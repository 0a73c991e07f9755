package pdf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/gompdf/repaginate/internal/layout"
	"github.com/gompdf/repaginate/internal/pagination"
	"github.com/gompdf/repaginate/internal/res"
	"github.com/gompdf/repaginate/internal/style"
)

// ptPerPx converts CSS px (96 per inch) to PDF points (72 per inch).
const ptPerPx = 0.75

func pt(px float64) float64 { return px * ptPerPx }

// Renderer draws paginated pages into a PDF document, one PDF page per page
// container.
type Renderer struct {
	// RenderBackgrounds controls whether box backgrounds are painted
	RenderBackgrounds bool
	// RenderBorders controls whether box borders are painted
	RenderBorders bool
	// DebugDrawBoxes outlines every box
	DebugDrawBoxes bool

	layout *layout.Engine
	loader *res.Loader
	log    *zap.Logger

	// listStack tracks nested list contexts while rendering
	listStack []listContext
	// images maps a source to its registered name, "" when it failed to load
	images map[string]string
	tr     func(string) string
}

// listContext represents an active list (ul/ol) while rendering
type listContext struct {
	kind    string // "ul" or "ol"
	style   string // list-style-type
	counter int    // for ordered lists
}

// RenderOptions contains options for rendering
type RenderOptions struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Creator  string
	Producer string
	// PageSize is the page geometry in px; zero means A4 portrait.
	PageSize pagination.PageSize
}

// NewRenderer creates a renderer laying pages out with engine. Images are
// resolved through loader; nil disables them.
func NewRenderer(engine *layout.Engine, loader *res.Loader, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{
		RenderBackgrounds: true,
		RenderBorders:     true,
		layout:            engine,
		loader:            loader,
		log:               log.Named("pdf"),
	}
}

// RenderFile renders pages to a PDF file, creating its directory if needed.
func (r *Renderer) RenderFile(pages []*pagination.Page, outputPath string, options RenderOptions) (err error) {
	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	return r.Render(pages, f, options)
}

// Render writes pages as a PDF document to w.
func (r *Renderer) Render(pages []*pagination.Page, w io.Writer, options RenderOptions) error {
	size := options.PageSize
	if size.Width <= 0 || size.Height <= 0 {
		size = pagination.PageSizeA4
	}
	orient := "P"
	if size.Width > size.Height {
		orient = "L"
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: orient,
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: pt(size.Width), Ht: pt(size.Height)},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(options.Title, true)
	pdf.SetAuthor(options.Author, true)
	pdf.SetSubject(options.Subject, true)
	pdf.SetKeywords(options.Keywords, true)
	pdf.SetCreator(options.Creator, true)
	pdf.SetProducer(options.Producer, true)
	pdf.SetFont("Helvetica", "", 12)

	r.tr = pdf.UnicodeTranslatorFromDescriptor("")
	r.images = make(map[string]string)
	r.listStack = nil

	// pages were assembled after styles were cached
	r.layout.Styles().Reset()
	r.layout.SetOptions(layout.Options{Width: size.Width})

	r.log.Debug("Rendering", zap.Int("pages", len(pages)), zap.String("size", size.Name))
	for _, page := range pages {
		pdf.AddPage()
		box := r.layout.Layout(page.Node, 0, 0)
		if box.OuterHeight() > size.Height+0.5 {
			r.log.Warn("Page content overflows",
				zap.Int("page", page.Number),
				zap.Float64("height", box.OuterHeight()),
				zap.Float64("page_height", size.Height))
		}
		r.renderBox(pdf, box)
		if pdf.Err() {
			return fmt.Errorf("unable to render page %d: %w", page.Number, pdf.Error())
		}
	}
	return pdf.Output(w)
}

// renderBox renders a box to the PDF
func (r *Renderer) renderBox(pdf *fpdf.Fpdf, box layout.Box) {
	switch b := box.(type) {
	case *layout.BlockBox:
		r.renderBlockBox(pdf, b)
	case *layout.LineBox:
		for _, c := range b.Children {
			r.renderBox(pdf, c)
		}
	case *layout.InlineBox:
		r.renderText(pdf, b)
	case *layout.ImageBox:
		r.renderImage(pdf, b)
	default:
		r.log.Debug("Unknown box type", zap.String("type", fmt.Sprintf("%T", box)))
	}
}

// renderBlockBox renders a block box and its children
func (r *Renderer) renderBlockBox(pdf *fpdf.Fpdf, box *layout.BlockBox) {
	r.renderBackground(pdf, box.X, box.Y, box.Width, box.Height, box.Style)
	r.renderBorders(pdf, box)

	enteringList := false
	if box.Node != nil && box.Node.IsElement("ul", "ol") {
		enteringList = true
		lc := listContext{kind: box.Node.Tag(), style: strings.ToLower(strings.TrimSpace(box.Style.Get("list-style-type")))}
		if lc.style == "" {
			lc.style = "disc"
			if lc.kind == "ol" {
				lc.style = "decimal"
			}
		}
		r.listStack = append(r.listStack, lc)
	}

	for _, child := range box.Children {
		if cb, ok := child.(*layout.BlockBox); ok && len(r.listStack) > 0 && cb.Node != nil && cb.Node.IsElement("li") {
			top := &r.listStack[len(r.listStack)-1]
			top.counter++
			r.renderListMarker(pdf, cb, *top)
		}
		r.renderBox(pdf, child)
	}

	if enteringList {
		r.listStack = r.listStack[:len(r.listStack)-1]
	}

	if r.DebugDrawBoxes {
		pdf.SetDrawColor(200, 0, 0)
		pdf.SetLineWidth(0.5)
		pdf.Rect(pt(box.X), pt(box.Y), pt(box.Width), pt(box.Height), "D")
	}
}

// renderBackground fills the border box when a background color is set.
func (r *Renderer) renderBackground(pdf *fpdf.Fpdf, x, y, w, h float64, st style.ComputedStyle) {
	if !r.RenderBackgrounds || w <= 0 || h <= 0 {
		return
	}
	bg := st.Get("background-color")
	if bg == "" {
		bg = st.Get("background")
	}
	c, ok := parseColor(bg)
	if !ok {
		return
	}
	pdf.SetFillColor(c[0], c[1], c[2])
	pdf.Rect(pt(x), pt(y), pt(w), pt(h), "F")
}

// renderBorders draws each side that has a width as a filled strip.
func (r *Renderer) renderBorders(pdf *fpdf.Fpdf, box *layout.BlockBox) {
	if !r.RenderBorders {
		return
	}
	b := box.Border
	sides := []struct {
		name       string
		width      float64
		x, y, w, h float64
	}{
		{"top", b.Top, box.X, box.Y, box.Width, b.Top},
		{"right", b.Right, box.X + box.Width - b.Right, box.Y, b.Right, box.Height},
		{"bottom", b.Bottom, box.X, box.Y + box.Height - b.Bottom, box.Width, b.Bottom},
		{"left", b.Left, box.X, box.Y, b.Left, box.Height},
	}
	for _, s := range sides {
		if s.width <= 0 {
			continue
		}
		c := borderColor(box.Style, s.name)
		pdf.SetFillColor(c[0], c[1], c[2])
		pdf.Rect(pt(s.x), pt(s.y), pt(s.w), pt(s.h), "F")
	}
}

func borderColor(st style.ComputedStyle, side string) [3]int {
	for _, prop := range []string{"border-" + side + "-color", "border-color", "color"} {
		if c, ok := parseColor(st.Get(prop)); ok {
			return c
		}
	}
	return [3]int{0, 0, 0}
}

// renderText draws one run of text on its line.
func (r *Renderer) renderText(pdf *fpdf.Fpdf, box *layout.InlineBox) {
	if strings.TrimSpace(box.Text) == "" {
		return
	}
	r.renderBackground(pdf, box.X, box.Y, box.Width, box.Height, box.Style)

	fontSize := box.FontSize()
	family, fontStyle := layout.ResolveFont(box.Style)
	pdf.SetFont(family, fontStyle, pt(fontSize))

	color, ok := parseColor(box.Style.Get("color"))
	if !ok {
		color = [3]int{0, 0, 0}
	}
	pdf.SetTextColor(color[0], color[1], color[2])

	// approximate ascent; half of the leading goes above the glyphs
	leading := box.Height - fontSize
	if leading < 0 {
		leading = 0
	}
	baseline := box.Y + leading/2 + fontSize*0.8
	pdf.Text(pt(box.X), pt(baseline), r.tr(box.Text))

	if deco := box.Style.Get("text-decoration"); strings.Contains(deco, "underline") {
		pdf.SetDrawColor(color[0], color[1], color[2])
		pdf.SetLineWidth(pt(fontSize / 16))
		y := pt(baseline + fontSize*0.1)
		pdf.Line(pt(box.X), y, pt(box.X+box.Width), y)
	}

	if r.DebugDrawBoxes {
		pdf.SetDrawColor(0, 0, 200)
		pdf.SetLineWidth(0.1)
		pdf.Rect(pt(box.X), pt(box.Y), pt(box.Width), pt(box.Height), "D")
	}
}

// renderListMarker draws the bullet or number for a list item
func (r *Renderer) renderListMarker(pdf *fpdf.Fpdf, li *layout.BlockBox, ctx listContext) {
	if ctx.style == "none" {
		return
	}
	fontSize := style.FontSize(li.Style)
	color, ok := parseColor(li.Style.Get("color"))
	if !ok {
		color = [3]int{0, 0, 0}
	}
	baseline := li.ContentY() + (style.LineHeight(li.Style)-fontSize)/2 + fontSize*0.8

	if ctx.kind == "ul" {
		radius := fontSize * 0.18
		cx, cy := li.X-fontSize*0.75, baseline-fontSize*0.3
		pdf.SetDrawColor(color[0], color[1], color[2])
		pdf.SetFillColor(color[0], color[1], color[2])
		switch ctx.style {
		case "circle":
			pdf.SetLineWidth(0.6)
			pdf.Circle(pt(cx), pt(cy), pt(radius), "D")
		case "square":
			pdf.Rect(pt(cx-radius), pt(cy-radius), pt(radius*2), pt(radius*2), "F")
		default:
			pdf.Circle(pt(cx), pt(cy), pt(radius), "F")
		}
		return
	}

	marker := fmt.Sprintf("%d.", ctx.counter)
	switch ctx.style {
	case "lower-alpha", "lower-latin":
		marker = toAlpha(ctx.counter, false) + "."
	case "upper-alpha", "upper-latin":
		marker = toAlpha(ctx.counter, true) + "."
	}
	family, fontStyle := layout.ResolveFont(li.Style)
	pdf.SetFont(family, fontStyle, pt(fontSize))
	pdf.SetTextColor(color[0], color[1], color[2])
	x := pt(li.X) - pdf.GetStringWidth(marker) - pt(fontSize*0.3)
	if x < 0 {
		x = 0
	}
	pdf.Text(x, pt(baseline), marker)
}

// toAlpha converts 1-based index to alphabetic sequence (a..z, aa..zz, ...)
func toAlpha(n int, upper bool) string {
	if n <= 0 {
		return ""
	}
	base := 'a'
	if upper {
		base = 'A'
	}
	var letters []rune
	for n > 0 {
		n--
		letters = append([]rune{base + rune(n%26)}, letters...)
		n /= 26
	}
	return string(letters)
}
