package style

import (
	"strings"

	"github.com/gompdf/repaginate/internal/parser/css"
	"github.com/gompdf/repaginate/internal/parser/html"
	xhtml "golang.org/x/net/html"
)

// Specificity represents the specificity of a CSS selector
type Specificity struct {
	ID      int
	Class   int
	Element int
}

// StyleProperty represents a computed style property
type StyleProperty struct {
	Name        string
	Value       string
	Important   bool
	Source      Source
	Specificity Specificity
	order       int
}

// Source represents the source of a style property
type Source int

const (
	SourceInherited Source = iota
	SourceUserAgent
	SourceAuthor
	SourceInline
)

// ComputedStyle represents the computed style for an element
type ComputedStyle map[string]StyleProperty

// Get returns the value of a property or "".
func (s ComputedStyle) Get(name string) string {
	return strings.TrimSpace(s[name].Value)
}

// inherited lists the properties copied from the parent when not set.
var inherited = []string{
	"font-family",
	"font-size",
	"font-style",
	"font-weight",
	"line-height",
	"white-space",
	"color",
	"text-align",
	"border-collapse",
	"border-spacing",
}

// StyleEngine handles the CSS cascade and style computation
type StyleEngine struct {
	userAgentStyles *css.Stylesheet
	authorStyles    []*css.Stylesheet
	cache           map[*html.Node]ComputedStyle
}

// NewStyleEngine creates a new style engine
func NewStyleEngine() *StyleEngine {
	return &StyleEngine{
		userAgentStyles: defaultUserAgentStyles(),
		cache:           make(map[*html.Node]ComputedStyle),
	}
}

// SetUserAgentStylesheet replaces the built-in UA stylesheet.
func (e *StyleEngine) SetUserAgentStylesheet(stylesheet *css.Stylesheet) {
	e.userAgentStyles = stylesheet
	e.Reset()
}

// AddStylesheet adds an author stylesheet to the style engine
func (e *StyleEngine) AddStylesheet(stylesheet *css.Stylesheet) {
	e.authorStyles = append(e.authorStyles, stylesheet)
	e.Reset()
}

// Reset drops cached styles. Needed after the tree is restructured.
func (e *StyleEngine) Reset() {
	e.cache = make(map[*html.Node]ComputedStyle)
}

// ComputeStyles computes styles for all elements in the document
func (e *StyleEngine) ComputeStyles(doc *html.Document) map[*html.Node]ComputedStyle {
	result := make(map[*html.Node]ComputedStyle)
	doc.Root.Walk(func(n *html.Node) bool {
		if n.Type == xhtml.ElementNode {
			result[n] = e.StyleOf(n)
		}
		return true
	})
	return result
}

// StyleOf returns the cascaded and inherited style of an element. Text nodes
// get their parent's style.
func (e *StyleEngine) StyleOf(node *html.Node) ComputedStyle {
	if node == nil {
		return ComputedStyle{}
	}
	if node.Type != xhtml.ElementNode {
		return e.StyleOf(node.Parent)
	}
	if st, ok := e.cache[node]; ok {
		return st
	}

	st := e.computeStyleForElement(node)
	if node.Parent != nil && node.Parent.Type == xhtml.ElementNode {
		parent := e.StyleOf(node.Parent)
		for _, name := range inherited {
			if _, ok := st[name]; ok {
				continue
			}
			if p, ok := parent[name]; ok {
				p.Source = SourceInherited
				st[name] = p
			}
		}
		st = resolveRelativeFontSize(st, parent)
	}
	e.cache[node] = st
	return st
}

// computeStyleForElement computes the style for a single element
func (e *StyleEngine) computeStyleForElement(node *html.Node) ComputedStyle {
	style := make(ComputedStyle)
	order := 0

	if e.userAgentStyles != nil {
		order = e.applyStylesheet(style, node, e.userAgentStyles, SourceUserAgent, order)
	}
	for _, stylesheet := range e.authorStyles {
		order = e.applyStylesheet(style, node, stylesheet, SourceAuthor, order)
	}
	if v, ok := node.GetAttr("style"); ok {
		decls := css.NewParser().ParseDeclarations(v)
		applyDeclarations(style, expandShorthands(decls), Specificity{ID: 1 << 10}, SourceInline, order)
	}
	return style
}

// applyStylesheet applies styles from a stylesheet to an element
func (e *StyleEngine) applyStylesheet(style ComputedStyle, node *html.Node, stylesheet *css.Stylesheet, source Source, order int) int {
	for _, rule := range stylesheet.Rules {
		decls := expandShorthands(rule.Declarations)
		for _, selector := range rule.Selectors {
			if selectorMatches(node, selector) {
				order++
				applyDeclarations(style, decls, calculateSpecificity(selector), source, order)
			}
		}
	}
	return order
}

// applyDeclarations applies declarations if they win over what is already set:
// importance first, then origin, then specificity, then source order.
func applyDeclarations(style ComputedStyle, declarations []*css.Declaration, specificity Specificity, source Source, order int) {
	for _, decl := range declarations {
		existing, exists := style[decl.Property]
		if exists && !wins(decl.Important, source, specificity, existing) {
			continue
		}
		style[decl.Property] = StyleProperty{
			Name:        decl.Property,
			Value:       decl.Value,
			Important:   decl.Important,
			Source:      source,
			Specificity: specificity,
			order:       order,
		}
	}
}

func wins(important bool, source Source, spec Specificity, existing StyleProperty) bool {
	if important != existing.Important {
		return important
	}
	if source != existing.Source {
		return source > existing.Source
	}
	if c := compareSpecificity(spec, existing.Specificity); c != 0 {
		return c > 0
	}
	return true
}

// selectorMatches checks descendant selectors ("a .b c.d") and child
// selectors ("a > b") against an element.
func selectorMatches(node *html.Node, selector string) bool {
	parts := strings.Fields(strings.ReplaceAll(selector, ">", " > "))
	if len(parts) == 0 || node == nil {
		return false
	}
	if !matchCompoundSelector(node, parts[len(parts)-1]) {
		return false
	}

	current := node.Parent
	for i := len(parts) - 2; i >= 0; i-- {
		if parts[i] == ">" {
			i--
			if i < 0 || current == nil || !matchCompoundSelector(current, parts[i]) {
				return false
			}
			current = current.Parent
			continue
		}
		found := false
		for anc := current; anc != nil; anc = anc.Parent {
			if matchCompoundSelector(anc, parts[i]) {
				found = true
				current = anc.Parent
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// matchCompoundSelector matches tag, #id and .class parts of one compound
// selector. Attribute selectors and pseudo-classes never match.
func matchCompoundSelector(node *html.Node, sel string) bool {
	if node == nil || node.Type != xhtml.ElementNode || sel == "" {
		return false
	}
	if strings.ContainsAny(sel, "[:") {
		return false
	}

	i := 0
	for i < len(sel) && sel[i] != '.' && sel[i] != '#' {
		i++
	}
	if tag := sel[:i]; tag != "" && tag != "*" && !strings.EqualFold(tag, node.Data) {
		return false
	}

	for i < len(sel) {
		kind := sel[i]
		j := i + 1
		for j < len(sel) && sel[j] != '.' && sel[j] != '#' {
			j++
		}
		name := sel[i+1 : j]
		switch kind {
		case '#':
			if id, _ := node.GetAttr("id"); id != name {
				return false
			}
		case '.':
			if !node.HasClass(name) {
				return false
			}
		}
		i = j
	}
	return true
}

// calculateSpecificity calculates the specificity of a CSS selector
func calculateSpecificity(selector string) Specificity {
	var s Specificity
	for _, part := range strings.Fields(strings.ReplaceAll(selector, ">", " ")) {
		s.ID += strings.Count(part, "#")
		s.Class += strings.Count(part, ".")
		if part[0] != '.' && part[0] != '#' && part[0] != '*' {
			s.Element++
		}
	}
	return s
}

// compareSpecificity compares two specificities
func compareSpecificity(a, b Specificity) int {
	if a.ID != b.ID {
		return a.ID - b.ID
	}
	if a.Class != b.Class {
		return a.Class - b.Class
	}
	return a.Element - b.Element
}

// expandShorthands rewrites margin/padding/border shorthands into longhands so
// later longhand declarations can override parts of them.
func expandShorthands(decls []*css.Declaration) []*css.Declaration {
	out := make([]*css.Declaration, 0, len(decls))
	for _, d := range decls {
		switch d.Property {
		case "margin", "padding":
			t, r, b, l := splitBox(d.Value)
			for side, v := range map[string]string{"top": t, "right": r, "bottom": b, "left": l} {
				out = append(out, &css.Declaration{Property: d.Property + "-" + side, Value: v, Important: d.Important})
			}
		case "border", "border-top", "border-right", "border-bottom", "border-left":
			width, color := splitBorder(d.Value)
			sides := []string{"top", "right", "bottom", "left"}
			if d.Property != "border" {
				sides = []string{strings.TrimPrefix(d.Property, "border-")}
			}
			for _, side := range sides {
				out = append(out, &css.Declaration{Property: "border-" + side + "-width", Value: width, Important: d.Important})
				if color != "" {
					out = append(out, &css.Declaration{Property: "border-" + side + "-color", Value: color, Important: d.Important})
				}
			}
		case "border-width":
			t, r, b, l := splitBox(d.Value)
			for side, v := range map[string]string{"top": t, "right": r, "bottom": b, "left": l} {
				out = append(out, &css.Declaration{Property: "border-" + side + "-width", Value: v, Important: d.Important})
			}
		default:
			out = append(out, d)
		}
	}
	return out
}

// splitBox expands the 1-4 value box shorthand into top, right, bottom, left.
func splitBox(value string) (string, string, string, string) {
	parts := strings.Fields(value)
	switch len(parts) {
	case 0:
		return "", "", "", ""
	case 1:
		return parts[0], parts[0], parts[0], parts[0]
	case 2:
		return parts[0], parts[1], parts[0], parts[1]
	case 3:
		return parts[0], parts[1], parts[2], parts[1]
	default:
		return parts[0], parts[1], parts[2], parts[3]
	}
}

var borderStyles = map[string]bool{
	"none": true, "hidden": true, "dotted": true, "dashed": true, "solid": true,
	"double": true, "groove": true, "ridge": true, "inset": true, "outset": true,
}

// splitBorder pulls width and color out of a border shorthand.
func splitBorder(value string) (width, color string) {
	width = "medium"
	for _, p := range strings.Fields(value) {
		switch {
		case p == "none" || p == "hidden":
			width = "0"
		case borderStyles[p]:
		case p[0] >= '0' && p[0] <= '9' || p[0] == '.' || p == "thin" || p == "medium" || p == "thick":
			width = p
		default:
			color = p
		}
	}
	return width, color
}

// resolveRelativeFontSize turns em and % font sizes into px against the parent.
func resolveRelativeFontSize(st, parent ComputedStyle) ComputedStyle {
	fs, ok := st["font-size"]
	if !ok || fs.Source == SourceInherited {
		return st
	}
	parentSize := FontSize(parent)
	if px, ok := relativeToPx(fs.Value, parentSize); ok {
		fs.Value = formatPx(px)
		st["font-size"] = fs
	}
	return st
}

// defaultUserAgentStyles returns the default user agent stylesheet
func defaultUserAgentStyles() *css.Stylesheet {
	stylesheet, _ := css.NewParser().ParseString(DefaultUserAgentStylesheet)
	return stylesheet
}

// DefaultUserAgentStylesheet is applied beneath author styles.
const DefaultUserAgentStylesheet = `
	html, body { font-family: Helvetica, sans-serif; font-size: 16px; line-height: 1.2; }
	head, script, style, title, meta, link { display: none; }
	h1 { font-size: 2em; margin: 0.67em 0; font-weight: bold; }
	h2 { font-size: 1.5em; margin: 0.75em 0; font-weight: bold; }
	h3 { font-size: 1.17em; margin: 0.83em 0; font-weight: bold; }
	p { margin: 1em 0; }
	b, strong, th { font-weight: bold; }
	i, em { font-style: italic; }
	table { border-collapse: separate; border-spacing: 2px; }
	td, th { padding: 1px; }
`
