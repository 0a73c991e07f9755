package pdf

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"codeberg.org/go-pdf/fpdf"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gompdf/repaginate/internal/layout"
	"github.com/gompdf/repaginate/internal/res"
)

// fpdfImageTypes are the formats fpdf embeds directly; anything else is
// decoded and re-encoded as PNG.
var fpdfImageTypes = map[string]string{
	"image/jpeg": "JPG",
	"image/jpg":  "JPG",
	"image/png":  "PNG",
	"image/gif":  "GIF",
}

// renderImage draws an image box, or a light placeholder when the image
// cannot be loaded.
func (r *Renderer) renderImage(pdf *fpdf.Fpdf, box *layout.ImageBox) {
	name, ok := r.registerImage(pdf, box.Src)
	if !ok {
		pdf.SetDrawColor(200, 200, 200)
		pdf.SetLineWidth(0.5)
		pdf.Rect(pt(box.X), pt(box.Y), pt(box.Width), pt(box.Height), "D")
		return
	}
	pdf.ImageOptions(name, pt(box.X), pt(box.Y), pt(box.Width), pt(box.Height), false, fpdf.ImageOptions{}, 0, "")
}

// registerImage loads src once per document and returns its fpdf name.
func (r *Renderer) registerImage(pdf *fpdf.Fpdf, src string) (string, bool) {
	if src == "" || r.loader == nil {
		return "", false
	}
	if name, ok := r.images[src]; ok {
		return name, name != ""
	}
	r.images[src] = ""

	resource, err := r.loader.LoadImage(src)
	if err != nil {
		r.log.Warn("Unable to load image", zap.String("src", src), zap.Error(err))
		return "", false
	}
	tp, data, err := pdfImage(resource)
	if err != nil {
		r.log.Warn("Unable to decode image", zap.String("src", src), zap.Error(err))
		return "", false
	}

	name := fmt.Sprintf("img%d", len(r.images))
	pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: tp}, bytes.NewReader(data))
	if pdf.Err() {
		r.log.Warn("Unable to embed image", zap.String("src", src), zap.Error(pdf.Error()))
		pdf.ClearError()
		return "", false
	}
	r.images[src] = name
	return name, true
}

// pdfImage returns the fpdf image type and bytes for a resource.
func pdfImage(resource *res.Resource) (string, []byte, error) {
	if tp, ok := fpdfImageTypes[resource.MimeType]; ok {
		return tp, resource.Data, nil
	}
	img, _, err := image.Decode(resource.GetReader())
	if err != nil {
		return "", nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", nil, err
	}
	return "PNG", buf.Bytes(), nil
}
