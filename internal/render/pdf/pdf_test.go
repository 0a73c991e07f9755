package pdf

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/gompdf/repaginate/internal/layout"
	"github.com/gompdf/repaginate/internal/pagination"
	"github.com/gompdf/repaginate/internal/parser/html"
	"github.com/gompdf/repaginate/internal/res"
	"github.com/gompdf/repaginate/internal/style"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want [3]int
		ok   bool
	}{
		{"#ff0000", [3]int{255, 0, 0}, true},
		{"#0f0", [3]int{0, 255, 0}, true},
		{"rgb(1, 2, 3)", [3]int{1, 2, 3}, true},
		{"rgba(10,20,30,0.5)", [3]int{10, 20, 30}, true},
		{"rgba(10,20,30,0)", [3]int{}, false},
		{"rgb(100%, 0%, 50%)", [3]int{255, 0, 128}, true},
		{"navy", [3]int{0, 0, 128}, true},
		{"#eee no-repeat", [3]int{238, 238, 238}, true},
		{"transparent", [3]int{}, false},
		{"", [3]int{}, false},
		{"#12", [3]int{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseColor(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToAlpha(t *testing.T) {
	assert.Equal(t, "a", toAlpha(1, false))
	assert.Equal(t, "Z", toAlpha(26, true))
	assert.Equal(t, "aa", toAlpha(27, false))
	assert.Equal(t, "", toAlpha(0, false))
}

func renderPages(t *testing.T, markup string) []*pagination.Page {
	t.Helper()
	doc, err := html.NewParser().ParseString(markup)
	require.NoError(t, err)
	var pages []*pagination.Page
	for i, n := range doc.Body().ByClass("page") {
		pages = append(pages, &pagination.Page{Number: i + 1, Node: n})
	}
	return pages
}

func TestRenderOnePagePerContainer(t *testing.T) {
	pages := renderPages(t, `<html><body><div class="pages">
		<div class="page first-page">
			<h1 style="color: #333">Invoice</h1>
			<table style="border: 1px solid #ccc"><tr><td style="background: #eee">Widget</td><td>10.00</td></tr></table>
			<ul><li>one</li><li>two</li></ul>
			<img src="data:image/png;base64,aGVsbG8=" width="20" height="20">
		</div>
		<div class="page last-page"><p>Thank you</p><ol><li>a</li></ol></div>
	</div></body></html>`)
	require.Len(t, pages, 2)

	engine := layout.NewEngine(style.NewStyleEngine(), nil)
	r := NewRenderer(engine, res.NewLoader(""), nil)
	r.DebugDrawBoxes = true

	var buf bytes.Buffer
	require.NoError(t, r.Render(pages, &buf, RenderOptions{Title: "Invoice", PageSize: pagination.PageSizeA4}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("/Type /Page\n")))
}

func TestRenderFile(t *testing.T) {
	pages := renderPages(t, `<html><body><div class="page"><p>Hello</p></div></body></html>`)
	out := filepath.Join(t.TempDir(), "out", "invoice.pdf")

	r := NewRenderer(layout.NewEngine(style.NewStyleEngine(), nil), nil, nil)
	require.NoError(t, r.RenderFile(pages, out, RenderOptions{PageSize: pagination.PageSizeLetter}))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestPDFImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var raw bytes.Buffer
	require.NoError(t, bmp.Encode(&raw, img))
	tp, data, err := pdfImage(&res.Resource{MimeType: "image/bmp", Data: raw.Bytes()})
	require.NoError(t, err)
	assert.Equal(t, "PNG", tp)
	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())

	tp, data, err = pdfImage(&res.Resource{MimeType: "image/jpeg", Data: []byte("jpeg")})
	require.NoError(t, err)
	assert.Equal(t, "JPG", tp)
	assert.Equal(t, []byte("jpeg"), data)

	_, _, err = pdfImage(&res.Resource{MimeType: "image/x-unknown", Data: []byte("nope")})
	assert.Error(t, err)
}
