package pagination

import (
	"fmt"
	"strings"

	"github.com/gompdf/repaginate/internal/parser/html"
)

// Variant is the role a page plays in the output and selects which header,
// footer and table head/foot content appears on it.
type Variant int

const (
	SinglePage Variant = iota
	FirstPage
	InnerPages
	LastPage
)

// Variants lists all page variants in index order.
var Variants = [...]Variant{SinglePage, FirstPage, InnerPages, LastPage}

var variantNames = [...]string{"single-page", "first-page", "inner-pages", "last-page"}

// String returns the class name of the variant.
func (v Variant) String() string {
	if v < 0 || int(v) >= len(variantNames) {
		return fmt.Sprintf("variant(%d)", int(v))
	}
	return variantNames[v]
}

// ParseVariant maps a class name to a variant.
func ParseVariant(s string) (Variant, bool) {
	for i, name := range variantNames {
		if s == name {
			return Variant(i), true
		}
	}
	return 0, false
}

// PageVariant returns the variant of page ordinal (1-based) out of count pages.
func PageVariant(ordinal, count int) Variant {
	switch {
	case count <= 1:
		return SinglePage
	case ordinal == 1:
		return FirstPage
	case ordinal == count:
		return LastPage
	}
	return InnerPages
}

// VariantSet is a set of page variants.
type VariantSet uint8

// AllVariants contains every page variant.
const AllVariants VariantSet = 1<<len(variantNames) - 1

// NewVariantSet returns a set holding vs.
func NewVariantSet(vs ...Variant) VariantSet {
	var s VariantSet
	for _, v := range vs {
		s = s.Add(v)
	}
	return s
}

// Add returns s with v included.
func (s VariantSet) Add(v Variant) VariantSet { return s | 1<<uint(v) }

// Has reports whether v is in s.
func (s VariantSet) Has(v Variant) bool { return s&(1<<uint(v)) != 0 }

// Empty reports whether s has no variants.
func (s VariantSet) Empty() bool { return s == 0 }

func (s VariantSet) String() string {
	var names []string
	for _, v := range Variants {
		if s.Has(v) {
			names = append(names, v.String())
		}
	}
	return strings.Join(names, " ")
}

// ParseVariantSet parses variant class names separated by spaces or commas.
func ParseVariantSet(s string) (VariantSet, error) {
	var set VariantSet
	for _, name := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		v, ok := ParseVariant(name)
		if !ok {
			return 0, fmt.Errorf("unknown page variant %q", name)
		}
		set = set.Add(v)
	}
	return set, nil
}

// Role is what a piece of content is to the paginator.
type Role int

const (
	RoleHeader Role = iota
	RoleBody
	RoleFooter
	RoleTableHead
	RoleTableFoot
)

var roleNames = [...]string{"header", "body", "footer", "table-head", "table-foot"}

func (r Role) String() string {
	if r < 0 || int(r) >= len(roleNames) {
		return fmt.Sprintf("role(%d)", int(r))
	}
	return roleNames[r]
}

// ParseRole maps a role name to a role.
func ParseRole(s string) (Role, bool) {
	for i, name := range roleNames {
		if s == name {
			return Role(i), true
		}
	}
	return 0, false
}

// Defaults holds the variants assumed for content that carries no variant class.
type Defaults map[Role]VariantSet

// StandardDefaults returns the default variant table: headers and body regions
// appear on the first page only, footers on every page of a multi-page
// document, and table head/foot rows everywhere.
func StandardDefaults() Defaults {
	return Defaults{
		RoleHeader:    NewVariantSet(FirstPage),
		RoleBody:      NewVariantSet(FirstPage),
		RoleFooter:    NewVariantSet(FirstPage, InnerPages, LastPage),
		RoleTableHead: AllVariants,
		RoleTableFoot: AllVariants,
	}
}

// For returns the default set of a role. Missing roles fall back to the standard table.
func (d Defaults) For(r Role) VariantSet {
	if s, ok := d[r]; ok {
		return s
	}
	return StandardDefaults()[r]
}

// Vocabulary names the classes the paginator reads and writes.
type Vocabulary struct {
	Header       string `yaml:"header" validate:"required"`
	Body         string `yaml:"body" validate:"required"`
	Footer       string `yaml:"footer" validate:"required"`
	Splittable   string `yaml:"splittable" validate:"required"`
	Amount       string `yaml:"amount" validate:"required"`
	CarryOver    string `yaml:"carry_over" validate:"required"`
	RunningTotal string `yaml:"running_total" validate:"required"`
	PageNumber   string `yaml:"page_number" validate:"required"`
	PageCount    string `yaml:"page_count" validate:"required"`
	Page         string `yaml:"page" validate:"required"`
	Pages        string `yaml:"pages" validate:"required"`
}

// DefaultVocabulary returns the standard class names.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Header:       "header",
		Body:         "body",
		Footer:       "footer",
		Splittable:   "splittable",
		Amount:       "amount",
		CarryOver:    "carry-over",
		RunningTotal: "running-total",
		PageNumber:   "page-number",
		PageCount:    "page-count",
		Page:         "page",
		Pages:        "pages",
	}
}

// withDefaults fills empty names from the default vocabulary.
func (v Vocabulary) withDefaults() Vocabulary {
	d := DefaultVocabulary()
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&v.Header, d.Header)
	fill(&v.Body, d.Body)
	fill(&v.Footer, d.Footer)
	fill(&v.Splittable, d.Splittable)
	fill(&v.Amount, d.Amount)
	fill(&v.CarryOver, d.CarryOver)
	fill(&v.RunningTotal, d.RunningTotal)
	fill(&v.PageNumber, d.PageNumber)
	fill(&v.PageCount, d.PageCount)
	fill(&v.Page, d.Page)
	fill(&v.Pages, d.Pages)
	return v
}

// regionClass returns the class of a region role.
func (v Vocabulary) regionClass(r Role) string {
	switch r {
	case RoleHeader:
		return v.Header
	case RoleBody:
		return v.Body
	case RoleFooter:
		return v.Footer
	}
	return ""
}

// variantsOf returns the variant classes of n, or def if it has none.
func variantsOf(n *html.Node, def VariantSet) VariantSet {
	var s VariantSet
	for _, c := range n.Classes() {
		if v, ok := ParseVariant(c); ok {
			s = s.Add(v)
		}
	}
	if s.Empty() {
		return def
	}
	return s
}
