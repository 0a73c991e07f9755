package css

import (
	"errors"
	"io"
	"strings"
)

// Parser represents a CSS parser
type Parser struct {
	// Configuration options could be added here
}

// Rule represents a CSS rule
type Rule struct {
	Selectors    []string
	Declarations []*Declaration
}

// Declaration represents a CSS declaration (property-value pair)
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Stylesheet represents a parsed CSS stylesheet
type Stylesheet struct {
	Rules []*Rule
}

var errInvalidRule = errors.New("invalid rule format")

// NewParser creates a new CSS parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseString parses CSS from a string
func (p *Parser) ParseString(content string) (*Stylesheet, error) {
	return p.Parse(strings.NewReader(content))
}

// Parse parses CSS from an io.Reader
func (p *Parser) Parse(r io.Reader) (*Stylesheet, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return p.parseCSS(string(content)), nil
}

// ParseDeclarations parses the body of a style attribute.
func (p *Parser) ParseDeclarations(block string) []*Declaration {
	return parseDeclarations(removeComments(block))
}

// parseCSS parses CSS content. Invalid rules and at-rules (@media, @page,
// @font-face, @import) are dropped.
func (p *Parser) parseCSS(content string) *Stylesheet {
	stylesheet := &Stylesheet{}

	for _, ruleStr := range splitRules(removeComments(content)) {
		if strings.HasPrefix(ruleStr, "@") {
			continue
		}
		rule, err := parseRule(ruleStr)
		if err != nil {
			continue
		}
		stylesheet.Rules = append(stylesheet.Rules, rule)
	}
	return stylesheet
}

// parseRule parses a single "selectors { declarations }" rule
func parseRule(ruleStr string) (*Rule, error) {
	open := strings.IndexByte(ruleStr, '{')
	if open < 0 {
		return nil, errInvalidRule
	}
	selectors := parseSelectors(ruleStr[:open])
	if len(selectors) == 0 {
		return nil, errors.New("no selectors found")
	}
	body := strings.TrimSuffix(strings.TrimSpace(ruleStr[open+1:]), "}")
	return &Rule{
		Selectors:    selectors,
		Declarations: parseDeclarations(body),
	}, nil
}

// parseSelectors splits a selector group on commas
func parseSelectors(selectorStr string) []string {
	var result []string
	for _, selector := range strings.Split(selectorStr, ",") {
		if selector = strings.Join(strings.Fields(selector), " "); selector != "" {
			result = append(result, selector)
		}
	}
	return result
}

// parseDeclarations parses "prop: value; prop: value !important"
func parseDeclarations(declarationsStr string) []*Declaration {
	var result []*Declaration
	for _, declStr := range strings.Split(declarationsStr, ";") {
		property, value, ok := strings.Cut(declStr, ":")
		if !ok {
			continue
		}
		property = strings.ToLower(strings.TrimSpace(property))
		value = strings.TrimSpace(value)
		if property == "" {
			continue
		}

		important := false
		if strings.HasSuffix(value, "!important") {
			important = true
			value = strings.TrimSpace(strings.TrimSuffix(value, "!important"))
		}

		result = append(result, &Declaration{
			Property:  property,
			Value:     value,
			Important: important,
		})
	}
	return result
}

// removeComments removes /* */ comments
func removeComments(content string) string {
	var result strings.Builder
	for {
		start := strings.Index(content, "/*")
		if start < 0 {
			result.WriteString(content)
			break
		}
		result.WriteString(content[:start])
		end := strings.Index(content[start+2:], "*/")
		if end < 0 {
			break
		}
		content = content[start+2+end+2:]
	}
	return result.String()
}

// splitRules splits CSS content into top level rules. Statement at-rules
// terminated by ';' outside of braces (@import, @charset) become their own entry.
func splitRules(content string) []string {
	var rules []string
	var current strings.Builder
	depth := 0

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			rules = append(rules, s)
		}
		current.Reset()
	}

	for i := 0; i < len(content); i++ {
		ch := content[i]
		switch {
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth <= 0 {
				depth = 0
				current.WriteByte(ch)
				flush()
				continue
			}
		case ch == ';' && depth == 0:
			current.WriteByte(ch)
			flush()
			continue
		}
		current.WriteByte(ch)
	}
	flush()
	return rules
}
