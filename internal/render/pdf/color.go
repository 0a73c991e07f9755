package pdf

import (
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// parseColor parses a CSS color value. Transparent and unknown values report
// false so nothing gets painted.
func parseColor(value string) ([3]int, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case v == "" || v == "transparent" || v == "none" || v == "inherit" || v == "currentcolor":
		return [3]int{}, false
	case strings.HasPrefix(v, "#"):
		return parseHexColor(strings.Fields(v)[0])
	case strings.HasPrefix(v, "rgb"):
		return parseRGB(v)
	}
	// the background shorthand may carry more than a color
	for _, f := range strings.Fields(v) {
		if c, ok := colornames.Map[f]; ok {
			return [3]int{int(c.R), int(c.G), int(c.B)}, true
		}
		if strings.HasPrefix(f, "#") {
			return parseHexColor(f)
		}
	}
	return [3]int{}, false
}

// parseHexColor parses #RRGGBB or #RGB
func parseHexColor(s string) ([3]int, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 || len(s) == 4 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 && len(s) != 8 {
		return [3]int{}, false
	}
	var out [3]int
	for i := range out {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return [3]int{}, false
		}
		out[i] = int(v)
	}
	return out, true
}

// parseRGB parses rgb() and rgba(); a zero alpha counts as transparent.
func parseRGB(s string) ([3]int, bool) {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return [3]int{}, false
	}
	parts := strings.FieldsFunc(s[open+1:end], func(r rune) bool { return r == ',' || r == ' ' || r == '/' })
	if len(parts) < 3 {
		return [3]int{}, false
	}
	if len(parts) > 3 {
		if a, err := strconv.ParseFloat(strings.TrimSuffix(parts[3], "%"), 64); err == nil && a == 0 {
			return [3]int{}, false
		}
	}
	var out [3]int
	for i := range out {
		p := parts[i]
		scale := 1.0
		if strings.HasSuffix(p, "%") {
			p, scale = strings.TrimSuffix(p, "%"), 2.55
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return [3]int{}, false
		}
		v *= scale
		out[i] = int(max(0, min(255, v+0.5)))
	}
	return out, true
}
