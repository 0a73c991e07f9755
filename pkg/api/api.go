package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/gompdf/repaginate/internal/amount"
	"github.com/gompdf/repaginate/internal/layout"
	"github.com/gompdf/repaginate/internal/pagination"
	"github.com/gompdf/repaginate/internal/parser/css"
	"github.com/gompdf/repaginate/internal/parser/html"
	"github.com/gompdf/repaginate/internal/render/pdf"
	"github.com/gompdf/repaginate/internal/res"
	"github.com/gompdf/repaginate/internal/style"
)

// Re-exported pagination types
type (
	Result         = pagination.Result
	Diagnostic     = pagination.Diagnostic
	DiagnosticKind = pagination.DiagnosticKind
	Page           = pagination.Page
	Vocabulary     = pagination.Vocabulary
	Defaults       = pagination.Defaults
	Progress       = pagination.Progress
	PageSize       = pagination.PageSize
)

const (
	ProgressForce = pagination.ProgressForce
	ProgressSkip  = pagination.ProgressSkip
)

// Diagnostic kinds
const (
	DiagMeasurementGap = pagination.DiagMeasurementGap
	DiagSkipped        = pagination.DiagSkipped
	DiagForced         = pagination.DiagForced
	DiagUnplaced       = pagination.DiagUnplaced
	DiagAmountParse    = pagination.DiagAmountParse
	DiagCapacity       = pagination.DiagCapacity
)

// ErrUnplacedContent is returned in strict mode when content is left over.
var ErrUnplacedContent = pagination.ErrUnplacedContent

const producer = "repaginate"

// Paginator is the main API for splitting an invoice into pages
type Paginator struct {
	options Options
	log     *zap.Logger
}

// New creates a paginator with the default options modified by opts
func New(opts ...Option) *Paginator {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return NewWithOptions(options)
}

// NewWithOptions creates a paginator with the specified options
func NewWithOptions(options Options) *Paginator {
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	return &Paginator{options: options, log: options.Logger}
}

// Options returns the options the paginator runs with.
func (p *Paginator) Options() Options {
	return p.options
}

// run is one pass over a document: parsed, styled, measured and paginated.
type run struct {
	doc    *html.Document
	layout *layout.Engine
	loader *res.Loader
	result *Result
	size   PageSize
	title  string
}

// Paginate splits htmlContent into pages and returns the resulting document.
// In strict mode leftover content is reported as ErrUnplacedContent together
// with the result.
func (p *Paginator) Paginate(htmlContent string) (string, *Result, error) {
	r, err := p.paginate(htmlContent, p.newLoader(""))
	if r == nil {
		return "", nil, err
	}
	out, rerr := r.doc.Render()
	if rerr != nil {
		return "", r.result, fmt.Errorf("failed to render HTML: %w", rerr)
	}
	return out, r.result, err
}

// PaginateToPDF paginates htmlContent and writes one PDF page per page
// container to w.
func (p *Paginator) PaginateToPDF(htmlContent string, w io.Writer) (*Result, error) {
	r, err := p.paginate(htmlContent, p.newLoader(""))
	if err != nil {
		return resultOf(r), err
	}
	return r.result, p.renderPDF(r, func(rd *pdf.Renderer, opts pdf.RenderOptions) error {
		return rd.Render(r.result.Pages, w, opts)
	})
}

// PaginateFile paginates the document at inputPath, a file or an http(s)
// URL, and writes the paginated HTML to outputPath.
func (p *Paginator) PaginateFile(ctx context.Context, inputPath, outputPath string) (*Result, error) {
	r, err := p.paginateRef(ctx, inputPath)
	if err != nil {
		return resultOf(r), err
	}
	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return r.result, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	out, err := r.doc.Render()
	if err != nil {
		return r.result, fmt.Errorf("failed to render HTML: %w", err)
	}
	if err := os.WriteFile(outputPath, []byte(out), 0644); err != nil {
		return r.result, fmt.Errorf("unable to write output file: %w", err)
	}
	return r.result, nil
}

// PaginateFileToPDF paginates the document at inputPath and writes a PDF to
// outputPath.
func (p *Paginator) PaginateFileToPDF(ctx context.Context, inputPath, outputPath string) (*Result, error) {
	r, err := p.paginateRef(ctx, inputPath)
	if err != nil {
		return resultOf(r), err
	}
	return r.result, p.renderPDF(r, func(rd *pdf.Renderer, opts pdf.RenderOptions) error {
		return rd.RenderFile(r.result.Pages, outputPath, opts)
	})
}

func resultOf(r *run) *Result {
	if r == nil {
		return nil
	}
	return r.result
}

func (p *Paginator) newLoader(base string) *res.Loader {
	loader := res.NewLoader(base)
	for _, path := range p.options.ResourcePaths {
		loader.AddSearchPath(path)
	}
	if p.options.Timeout > 0 {
		loader.SetTimeout(p.options.Timeout)
	}
	return loader
}

func (p *Paginator) paginateRef(ctx context.Context, ref string) (*run, error) {
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		abs, err := filepath.Abs(ref)
		if err != nil {
			return nil, fmt.Errorf("invalid input path: %w", err)
		}
		ref = abs
	}
	loader := p.newLoader(ref)
	if p.options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.options.Timeout)
		defer cancel()
	}
	r, err := loader.LoadHTML(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to read HTML: %w", err)
	}
	return p.paginate(r.GetString(), loader)
}

// paginate runs the whole pipeline on a document. A strict-mode failure still
// returns the run so callers can report what was placed.
func (p *Paginator) paginate(htmlContent string, loader *res.Loader) (*run, error) {
	doc, err := html.NewParser().ParseString(htmlContent)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	styles, err := p.styles(doc, loader)
	if err != nil {
		return nil, err
	}

	size := p.options.pageSize()
	layoutEngine := layout.NewEngine(styles, p.log)
	layoutEngine.SetOptions(layout.Options{Width: size.Width})

	formatter, err := amount.New(p.options.Locale, p.options.FractionDigits)
	if err != nil {
		return nil, fmt.Errorf("invalid amount settings: %w", err)
	}

	engine := pagination.NewEngine(layoutEngine, pagination.Options{
		PageCapacity:     p.options.PageCapacity,
		FallbackCapacity: size.Height,
		Vocabulary:       p.options.Vocabulary,
		Defaults:         p.options.Defaults,
		Progress:         p.options.Progress,
		Strict:           p.options.Strict,
		Amounts:          formatter,
		Logger:           p.log,
	})

	body := doc.Body()
	if body == nil {
		body = doc.Root
	}
	result, err := engine.Paginate(body)
	if result == nil {
		return nil, fmt.Errorf("failed to paginate: %w", err)
	}
	for _, d := range result.Diagnostics {
		p.log.Debug("Diagnostic", zap.Stringer("diagnostic", d))
	}

	r := &run{
		doc:    doc,
		layout: layoutEngine,
		loader: loader,
		result: result,
		size:   size,
		title:  documentTitle(doc),
	}
	if err != nil {
		return r, fmt.Errorf("failed to paginate: %w", err)
	}
	return r, nil
}

// styles builds the cascade: user agent sheet, the document's own sheets in
// source order, then the user sheet.
func (p *Paginator) styles(doc *html.Document, loader *res.Loader) (*style.StyleEngine, error) {
	parser := css.NewParser()
	engine := style.NewStyleEngine()

	if p.options.UserAgentStylesheet != "" {
		ua, err := parser.ParseString(p.options.UserAgentStylesheet)
		if err != nil {
			return nil, fmt.Errorf("failed to parse user agent stylesheet: %w", err)
		}
		engine.SetUserAgentStylesheet(ua)
	}

	for _, text := range collectDocumentStylesheets(doc.Root, loader, p.log) {
		sheet, err := parser.ParseString(text)
		if err != nil {
			p.log.Warn("Failed to parse stylesheet", zap.Error(err))
			continue
		}
		engine.AddStylesheet(sheet)
	}

	if p.options.UserStylesheet != "" {
		user, err := parser.ParseString(p.options.UserStylesheet)
		if err != nil {
			return nil, fmt.Errorf("failed to parse user stylesheet: %w", err)
		}
		engine.AddStylesheet(user)
	}
	return engine, nil
}

func (p *Paginator) renderPDF(r *run, write func(*pdf.Renderer, pdf.RenderOptions) error) error {
	if len(r.result.Pages) == 0 {
		return errors.New("nothing to render: document produced no pages")
	}
	renderer := pdf.NewRenderer(r.layout, r.loader, p.log)
	renderer.RenderBackgrounds = p.options.RenderBackgrounds
	renderer.RenderBorders = p.options.RenderBorders
	renderer.DebugDrawBoxes = p.options.DebugDrawBoxes

	height := r.result.Profile.PageAvailable
	if height <= 0 {
		height = r.size.Height
	}
	title := p.options.Title
	if title == "" {
		title = r.title
	}
	opts := pdf.RenderOptions{
		Title:    title,
		Author:   p.options.Author,
		Subject:  p.options.Subject,
		Keywords: p.options.Keywords,
		Creator:  producer,
		Producer: producer,
		PageSize: PageSize{Width: r.size.Width, Height: height, Name: r.size.Name},
	}
	if err := write(renderer, opts); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	return nil
}

func documentTitle(doc *html.Document) string {
	t := doc.Root.FindFirst(func(n *html.Node) bool { return n.IsElement("title") })
	if t == nil {
		return ""
	}
	return strings.TrimSpace(t.TextContent())
}

// collectDocumentStylesheets returns the author stylesheets of the document,
// external <link rel="stylesheet"> and inline <style> blocks, in source order.
// External sheets are resolved through loader.
func collectDocumentStylesheets(root *html.Node, loader *res.Loader, log *zap.Logger) []string {
	var styles []string
	root.Walk(func(n *html.Node) bool {
		switch {
		case n.IsElement("link"):
			rel, _ := n.GetAttr("rel")
			href, _ := n.GetAttr("href")
			if href == "" || !strings.Contains(strings.ToLower(rel), "stylesheet") || loader == nil {
				return false
			}
			r, err := loader.LoadCSS(href)
			if err != nil {
				log.Warn("Failed to load external stylesheet", zap.String("href", href), zap.Error(err))
				return false
			}
			log.Debug("Loaded external stylesheet", zap.String("href", href))
			styles = append(styles, r.GetString())
			return false
		case n.IsElement("style"):
			if text := strings.TrimSpace(n.TextContent()); text != "" {
				styles = append(styles, text)
			}
			return false
		}
		return true
	})
	return styles
}
