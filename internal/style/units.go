package style

import (
	"strconv"
	"strings"
)

// Defaults used when nothing in the cascade sets a value.
const (
	DefaultFontSize   = 16.0
	DefaultLineHeight = 1.2
)

// Absolute unit factors in CSS pixels (96 per inch).
var absoluteUnits = map[string]float64{
	"px": 1,
	"pt": 96.0 / 72.0,
	"pc": 16,
	"in": 96,
	"cm": 96 / 2.54,
	"mm": 96 / 25.4,
	"q":  96 / 101.6,
}

var keywordWidths = map[string]float64{
	"thin":   1,
	"medium": 3,
	"thick":  5,
}

// ParseLength resolves a CSS length to px. Percentages are taken of percentBase,
// em of fontSize and rem of the root default. Unparseable values yield def.
func ParseLength(value string, percentBase, fontSize, def float64) float64 {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" || v == "auto" || v == "normal" || v == "none" {
		return def
	}
	if w, ok := keywordWidths[v]; ok {
		return w
	}
	if strings.HasSuffix(v, "%") {
		if n, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64); err == nil {
			return percentBase * n / 100
		}
		return def
	}
	if strings.HasSuffix(v, "rem") {
		if n, err := strconv.ParseFloat(strings.TrimSuffix(v, "rem"), 64); err == nil {
			return n * DefaultFontSize
		}
		return def
	}
	if strings.HasSuffix(v, "em") {
		if n, err := strconv.ParseFloat(strings.TrimSuffix(v, "em"), 64); err == nil {
			return n * fontSize
		}
		return def
	}
	for unit, factor := range absoluteUnits {
		if strings.HasSuffix(v, unit) {
			if n, err := strconv.ParseFloat(strings.TrimSuffix(v, unit), 64); err == nil {
				return n * factor
			}
		}
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n
	}
	return def
}

// relativeToPx converts em/% font sizes to px against the parent size.
func relativeToPx(value string, parentSize float64) (float64, bool) {
	v := strings.TrimSpace(value)
	switch {
	case strings.HasSuffix(v, "rem"):
		return 0, false
	case strings.HasSuffix(v, "em"), strings.HasSuffix(v, "%"):
		return ParseLength(v, parentSize, parentSize, parentSize), true
	}
	return 0, false
}

func formatPx(px float64) string {
	return strconv.FormatFloat(px, 'f', -1, 64) + "px"
}

// FontSize returns the element font size in px.
func FontSize(st ComputedStyle) float64 {
	if fs := ParseLength(st.Get("font-size"), DefaultFontSize, DefaultFontSize, DefaultFontSize); fs > 0 {
		return fs
	}
	return DefaultFontSize
}

// LineHeight returns the used line height in px. Unitless values multiply the font size.
func LineHeight(st ComputedStyle) float64 {
	fs := FontSize(st)
	v := st.Get("line-height")
	if v == "" || v == "normal" {
		return fs * DefaultLineHeight
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n * fs
	}
	return ParseLength(v, fs, fs, fs*DefaultLineHeight)
}

// Hidden reports whether the element generates no box.
func Hidden(st ComputedStyle) bool {
	return st.Get("display") == "none"
}
