package layout

import (
	"strings"
	"sync"
	"unicode/utf8"

	"codeberg.org/go-pdf/fpdf"

	"github.com/gompdf/repaginate/internal/style"
)

// TextMetrics measures rendered text width in px for a font size in px.
type TextMetrics interface {
	StringWidth(text string, fontSize float64, st style.ComputedStyle) float64
}

// FpdfMetrics uses the core PDF font metrics, the same ones the renderer
// draws with.
type FpdfMetrics struct{}

func (FpdfMetrics) StringWidth(text string, fontSize float64, st style.ComputedStyle) float64 {
	return measureTextWidth(text, fontSize, st)
}

// FixedMetrics gives every rune the same advance, a fraction of the font size.
type FixedMetrics struct {
	Advance float64
}

func (m FixedMetrics) StringWidth(text string, fontSize float64, _ style.ComputedStyle) float64 {
	return float64(utf8.RuneCountInString(text)) * fontSize * m.Advance
}

// Singleton PDF instance for text measurement using go-pdf/fpdf metrics
var (
	measureOnce sync.Once
	measurePDF  *fpdf.Fpdf
	measureTr   func(string) string
	measureMu   sync.Mutex
)

func initMeasurePDF() {
	measurePDF = fpdf.New("P", "pt", "A4", "")
	measurePDF.SetFont("Helvetica", "", 12)
	measureTr = measurePDF.UnicodeTranslatorFromDescriptor("")
}

// measureTextWidth returns a font-aware width using fpdf metrics. With unit
// "pt" the result scales with whatever unit fontSize is given in.
func measureTextWidth(text string, fontSize float64, st style.ComputedStyle) float64 {
	if text == "" || fontSize <= 0 {
		return 0
	}
	measureOnce.Do(initMeasurePDF)
	measureMu.Lock()
	defer measureMu.Unlock()
	fam, sty := ResolveFont(st)
	measurePDF.SetFont(fam, sty, fontSize)
	return measurePDF.GetStringWidth(measureTr(text))
}

// ResolveFont maps CSS font properties to a core PDF font family and style.
func ResolveFont(st style.ComputedStyle) (string, string) {
	family := "Helvetica"
	if ff := st.Get("font-family"); ff != "" {
		first := strings.Split(ff, ",")[0]
		first = strings.TrimSpace(strings.Trim(strings.TrimSpace(first), "'\""))
		switch strings.ToLower(first) {
		case "times", "times new roman", "serif", "georgia":
			family = "Times"
		case "courier", "courier new", "monospace":
			family = "Courier"
		}
	}
	styleStr := ""
	switch st.Get("font-weight") {
	case "bold", "bolder", "600", "700", "800", "900":
		styleStr += "B"
	}
	if fs := st.Get("font-style"); fs == "italic" || fs == "oblique" {
		styleStr += "I"
	}
	return family, styleStr
}
