package pagination

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gompdf/repaginate/internal/amount"
	"github.com/gompdf/repaginate/internal/parser/html"
)

var (
	// ErrNilDocument is returned when there is no tree to paginate.
	ErrNilDocument = errors.New("nil document")
	// ErrUnplacedContent is returned in strict mode when body content is left
	// over after the last page.
	ErrUnplacedContent = errors.New("content left unplaced")
)

// DiagnosticKind classifies degraded paths that did not stop the run.
type DiagnosticKind string

const (
	DiagMeasurementGap DiagnosticKind = "measurement-gap"
	DiagSkipped        DiagnosticKind = "skipped"
	DiagForced         DiagnosticKind = "forced"
	DiagUnplaced       DiagnosticKind = "unplaced"
	DiagAmountParse    DiagnosticKind = "amount-parse"
	DiagCapacity       DiagnosticKind = "capacity"
)

// Diagnostic describes one degraded path. Page is 0 when not page specific.
type Diagnostic struct {
	Kind    DiagnosticKind
	Page    int
	Message string
}

func (d Diagnostic) String() string {
	if d.Page > 0 {
		return fmt.Sprintf("%s (page %d): %s", d.Kind, d.Page, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// PageSize is a page geometry in CSS px.
type PageSize struct {
	Width  float64
	Height float64
	Name   string
}

// Standard page sizes in CSS px (96 per inch)
var (
	PageSizeA4     = PageSize{Width: 794, Height: 1123, Name: "A4"}
	PageSizeA3     = PageSize{Width: 1123, Height: 1587, Name: "A3"}
	PageSizeA5     = PageSize{Width: 559, Height: 794, Name: "A5"}
	PageSizeLetter = PageSize{Width: 816, Height: 1056, Name: "Letter"}
	PageSizeLegal  = PageSize{Width: 816, Height: 1344, Name: "Legal"}
)

// PageSizes indexes the standard sizes by name.
var PageSizes = map[string]PageSize{
	"A4":     PageSizeA4,
	"A3":     PageSizeA3,
	"A5":     PageSizeA5,
	"Letter": PageSizeLetter,
	"Legal":  PageSizeLegal,
}

// DefaultPageCapacity is the A4 portrait height used when nothing else sets it.
var DefaultPageCapacity = PageSizeA4.Height

// Options represents options for the pagination engine
type Options struct {
	// PageCapacity overrides the measured page height when positive.
	PageCapacity float64
	// FallbackCapacity is used when an empty page container measures nothing.
	FallbackCapacity float64
	Vocabulary       Vocabulary
	Defaults         Defaults
	Progress         Progress
	// Strict turns unplaced content into ErrUnplacedContent.
	Strict  bool
	Amounts *amount.Formatter
	Logger  *zap.Logger
}

// DefaultOptions returns the standard engine options.
func DefaultOptions() Options {
	f, _ := amount.New("en", amount.DefaultDigits)
	return Options{
		FallbackCapacity: DefaultPageCapacity,
		Vocabulary:       DefaultVocabulary(),
		Defaults:         StandardDefaults(),
		Progress:         ProgressForce,
		Amounts:          f,
		Logger:           zap.NewNop(),
	}
}

// Result is what a pagination run produced.
type Result struct {
	Pages       []*Page
	PageCount   int
	Profile     HeightProfile
	Target      *html.Node
	Totals      []TableTotal
	Diagnostics []Diagnostic
	// Unplaced lists blocks still pending after the last page.
	Unplaced []*Block
}

// DiagnosticsOf returns the diagnostics of one kind.
func (r *Result) DiagnosticsOf(kind DiagnosticKind) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// Engine handles the pagination process
type Engine struct {
	options Options
	backend Backend
	log     *zap.Logger
}

// NewEngine creates a pagination engine measuring with backend.
func NewEngine(backend Backend, options Options) *Engine {
	d := DefaultOptions()
	options.Vocabulary = options.Vocabulary.withDefaults()
	if options.FallbackCapacity <= 0 {
		options.FallbackCapacity = d.FallbackCapacity
	}
	if options.Defaults == nil {
		options.Defaults = d.Defaults
	}
	if options.Amounts == nil {
		options.Amounts = d.Amounts
	}
	if options.Logger == nil {
		options.Logger = d.Logger
	}
	return &Engine{
		options: options,
		backend: backend,
		log:     options.Logger.Named("pagination"),
	}
}

// Measure builds the source model and height profile of root without moving
// anything.
func (e *Engine) Measure(root *html.Node) (*Source, HeightProfile, []Diagnostic, error) {
	if root == nil {
		return nil, HeightProfile{}, nil, ErrNilDocument
	}
	m := NewHeightMeasurer(e.backend, e.options.Vocabulary, e.options.Defaults)

	var diags []Diagnostic
	capacity := e.options.PageCapacity
	if capacity <= 0 {
		if mm := m.MeasurePageCapacity(root); mm.Gap() {
			capacity = e.options.FallbackCapacity
			diags = append(diags, Diagnostic{
				Kind:    DiagCapacity,
				Message: fmt.Sprintf("empty page container has no height, using %.0fpx", capacity),
			})
		} else {
			capacity = mm.Height
		}
	}

	src, d := buildSource(root, m)
	diags = append(diags, d...)
	profile, d := m.Profile(root, capacity, src)
	diags = append(diags, d...)
	return src, profile, diags, nil
}

// Paginate moves the content under root into pages appended to the target
// container and reconciles running totals. Degraded paths are reported as
// diagnostics; only a nil root, or leftover content in strict mode, is an error.
func (e *Engine) Paginate(root *html.Node) (*Result, error) {
	src, profile, diags, err := e.Measure(root)
	if err != nil {
		return nil, err
	}
	for _, d := range diags {
		e.log.Debug("Diagnostic", zap.String("kind", string(d.Kind)), zap.String("message", d.Message))
	}

	count := CountPages(profile)
	e.log.Debug("Profile",
		zap.Float64("capacity", profile.PageAvailable),
		zap.Float64s("available", profile.BodyAvailable[:]),
		zap.Float64("content", profile.ContentHeight()),
		zap.Int("pages", count))

	target := e.target(root, src)
	tables := NewTableSplitter(e.log)
	body := NewBodySplitter(tables, e.options.Progress, e.log)
	pages, d := NewPageAssembler(e.options.Vocabulary, body, e.log).Assemble(src, profile, count, target)
	diags = append(diags, d...)
	src.detachRegions()

	res := &Result{
		Pages:     pages,
		PageCount: count,
		Profile:   profile,
		Target:    target,
	}
	for _, b := range src.Pending() {
		res.Unplaced = append(res.Unplaced, b)
		msg := fmt.Sprintf("block <%s> of %.1fpx", b.Node.Tag(), b.Height)
		if b.Table != nil {
			msg = fmt.Sprintf("table with %d rows pending", len(b.Table.Pending()))
		}
		diags = append(diags, Diagnostic{Kind: DiagUnplaced, Message: msg})
		e.log.Warn("Content not placed", zap.String("block", msg))
	}

	totals, d := NewRunningTotalCalculator(e.options.Vocabulary, e.options.Amounts, e.log).Apply(pages)
	res.Totals = totals
	res.Diagnostics = append(diags, d...)

	e.log.Info("Paginated",
		zap.Int("pages", count),
		zap.Int("tables", len(src.Tables())),
		zap.Int("unplaced", len(res.Unplaced)),
		zap.Int("diagnostics", len(res.Diagnostics)))

	if e.options.Strict && len(res.Unplaced) > 0 {
		return res, fmt.Errorf("%d blocks after page %d: %w", len(res.Unplaced), count, ErrUnplacedContent)
	}
	return res, nil
}

// target returns the container pages go into: an existing element with the
// pages class, or a new one inserted where the first region was.
func (e *Engine) target(root *html.Node, src *Source) *html.Node {
	class := e.options.Vocabulary.Pages
	if n := root.FindFirst(func(n *html.Node) bool { return n.HasClass(class) }); n != nil {
		return n
	}
	t := html.NewElement("div", class)
	if len(src.Regions) > 0 {
		first := src.Regions[0].Node
		first.Parent.InsertBefore(t, first)
	} else {
		root.AppendChild(t)
	}
	return t
}
