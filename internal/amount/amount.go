// Package amount formats and parses monetary amounts the way a locale writes them.
package amount

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultDigits is the number of fraction digits written by default.
const DefaultDigits = 2

// Result is the outcome of parsing an amount. Value is 0 when OK is false.
type Result struct {
	Value float64
	OK    bool
	Err   error
}

// ValueOr returns the parsed value or def when parsing failed.
func (r Result) ValueOr(def float64) float64 {
	if !r.OK {
		return def
	}
	return r.Value
}

// Formatter converts between float64 amounts and locale-formatted strings.
type Formatter struct {
	tag     language.Tag
	digits  int
	printer *message.Printer
	group   string
	decimal string
}

// New returns a formatter for the locale. An unknown locale is an error.
func New(locale string, digits int) (*Formatter, error) {
	tag := language.English
	if locale != "" {
		var err error
		if tag, err = language.Parse(locale); err != nil {
			return nil, fmt.Errorf("unable to parse locale %q: %w", locale, err)
		}
	}
	return NewForTag(tag, digits), nil
}

// NewForTag returns a formatter for a language tag. Negative digits mean DefaultDigits.
func NewForTag(tag language.Tag, digits int) *Formatter {
	if digits < 0 {
		digits = DefaultDigits
	}
	f := &Formatter{tag: tag, digits: digits, printer: message.NewPrinter(tag)}
	f.group, f.decimal = separators(f.printer)
	return f
}

// separators derives the grouping and decimal separators from a formatted sample.
func separators(p *message.Printer) (group, decimal string) {
	sample := p.Sprint(number.Decimal(1234.5, number.MinFractionDigits(1), number.MaxFractionDigits(1)))
	var runs []string
	var cur strings.Builder
	for _, r := range sample {
		if unicode.IsDigit(r) {
			if cur.Len() > 0 {
				runs = append(runs, cur.String())
				cur.Reset()
			}
			continue
		}
		cur.WriteRune(r)
	}
	switch len(runs) {
	case 0:
		return "", "."
	case 1:
		return "", runs[0]
	default:
		return runs[0], runs[len(runs)-1]
	}
}

// Tag returns the formatter's locale.
func (f *Formatter) Tag() language.Tag { return f.tag }

// Digits returns the number of fraction digits written.
func (f *Formatter) Digits() int { return f.digits }

// Format writes v with the locale's grouping and exactly Digits fraction digits.
func (f *Formatter) Format(v float64) string {
	if f.IsZero(v) {
		v = 0
	}
	return f.printer.Sprint(number.Decimal(v,
		number.MinFractionDigits(f.digits),
		number.MaxFractionDigits(f.digits)))
}

// Parse reads a locale-formatted amount. Grouping separators, currency symbols
// and spaces are ignored; a leading minus or parentheses make it negative.
func (f *Formatter) Parse(s string) Result {
	s = strings.TrimSpace(s)
	if s == "" {
		return Result{Err: fmt.Errorf("empty amount")}
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	if f.group != "" {
		s = strings.ReplaceAll(s, f.group, "")
	}
	if f.decimal != "." {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, f.decimal, ".")
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == '-' || r == '−':
			if b.Len() > 0 {
				return Result{Err: fmt.Errorf("misplaced sign in amount %q", s)}
			}
			negative = !negative
		case unicode.IsSpace(r) || unicode.Is(unicode.Sc, r) || unicode.IsLetter(r):
		default:
			return Result{Err: fmt.Errorf("unexpected %q in amount %q", r, s)}
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return Result{Err: fmt.Errorf("unable to parse amount %q: %w", s, err)}
	}
	if negative {
		v = -v
	}
	return Result{Value: v, OK: true}
}

// IsZero reports whether v would be written as zero.
func (f *Formatter) IsZero(v float64) bool {
	return math.Abs(v) < 0.5*math.Pow10(-f.digits)
}
