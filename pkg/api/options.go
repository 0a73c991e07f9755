package api

import (
	"time"

	"go.uber.org/zap"

	"github.com/gompdf/repaginate/internal/amount"
	"github.com/gompdf/repaginate/internal/pagination"
)

// Options represents configuration options for the paginator
type Options struct {
	// Page geometry in CSS px. The width is the layout width, the height is
	// the page capacity unless PageCapacity or the document's CSS for the page
	// container says otherwise.
	PageSize pagination.PageSize
	// Page orientation: portrait or landscape
	PageOrientation PageOrientation
	// PageCapacity overrides the page height used for pagination when positive.
	PageCapacity float64

	// Amounts
	Locale         string
	FractionDigits int

	// Pagination policy
	Progress   pagination.Progress
	Strict     bool
	Vocabulary pagination.Vocabulary
	Defaults   pagination.Defaults

	// Visual rendering toggles
	// When false, backgrounds will not be painted
	RenderBackgrounds bool
	// When false, borders will not be painted
	RenderBorders bool
	// When true, outline every box in the PDF
	DebugDrawBoxes bool

	// Resource paths
	ResourcePaths []string
	// Timeout bounds remote documents, stylesheets and images.
	Timeout time.Duration

	// Document metadata
	Title    string
	Author   string
	Subject  string
	Keywords string

	// UserStylesheet is applied after the document's own stylesheets.
	UserStylesheet string
	// UserAgentStylesheet replaces the built-in defaults when set.
	UserAgentStylesheet string

	Logger *zap.Logger
}

// Option is a function that modifies Options
type Option func(*Options)

// PageOrientation represents page orientation
type PageOrientation string

const (
	// PageOrientationPortrait sets the page to portrait orientation
	PageOrientationPortrait PageOrientation = "portrait"
	// PageOrientationLandscape sets the page to landscape orientation
	PageOrientationLandscape PageOrientation = "landscape"
)

// Standard page sizes in CSS px (96 per inch)
var (
	PageSizeA3     = pagination.PageSizeA3
	PageSizeA4     = pagination.PageSizeA4
	PageSizeA5     = pagination.PageSizeA5
	PageSizeLetter = pagination.PageSizeLetter
	PageSizeLegal  = pagination.PageSizeLegal
)

// DefaultOptions returns the default options
func DefaultOptions() Options {
	return Options{
		PageSize:        PageSizeA4,
		PageOrientation: PageOrientationPortrait,

		Locale:         "en",
		FractionDigits: amount.DefaultDigits,

		Progress:   pagination.ProgressForce,
		Vocabulary: pagination.DefaultVocabulary(),
		Defaults:   pagination.StandardDefaults(),

		RenderBackgrounds: true,
		RenderBorders:     true,

		Timeout: 30 * time.Second,
		Logger:  zap.NewNop(),
	}
}

// pageSize applies the orientation to the configured size.
func (o Options) pageSize() pagination.PageSize {
	size := o.PageSize
	if size.Width <= 0 || size.Height <= 0 {
		size = PageSizeA4
	}
	switch o.PageOrientation {
	case PageOrientationLandscape:
		if size.Width < size.Height {
			size.Width, size.Height = size.Height, size.Width
		}
	default:
		if size.Width > size.Height {
			size.Width, size.Height = size.Height, size.Width
		}
	}
	return size
}

// WithPageSize sets the page size in px
func WithPageSize(width, height float64) Option {
	return func(o *Options) {
		o.PageSize = pagination.PageSize{Width: width, Height: height, Name: "custom"}
	}
}

// WithNamedPageSize sets one of the standard page sizes
func WithNamedPageSize(size pagination.PageSize) Option {
	return func(o *Options) {
		o.PageSize = size
	}
}

// WithPageSizeA4 sets the page size to A4
func WithPageSizeA4() Option { return WithNamedPageSize(PageSizeA4) }

// WithPageSizeLetter sets the page size to US Letter
func WithPageSizeLetter() Option { return WithNamedPageSize(PageSizeLetter) }

// WithPageSizeLegal sets the page size to US Legal
func WithPageSizeLegal() Option { return WithNamedPageSize(PageSizeLegal) }

// WithPageOrientation sets the page orientation
func WithPageOrientation(orientation PageOrientation) Option {
	return func(o *Options) {
		o.PageOrientation = orientation
	}
}

// WithPageCapacity fixes the page height used for pagination
func WithPageCapacity(px float64) Option {
	return func(o *Options) {
		o.PageCapacity = px
	}
}

// WithLocale sets the locale amounts are parsed and written in
func WithLocale(locale string) Option {
	return func(o *Options) {
		o.Locale = locale
	}
}

// WithFractionDigits sets how many decimals totals are written with
func WithFractionDigits(digits int) Option {
	return func(o *Options) {
		o.FractionDigits = digits
	}
}

// WithProgress sets what happens to content too tall for an empty page
func WithProgress(p pagination.Progress) Option {
	return func(o *Options) {
		o.Progress = p
	}
}

// WithStrict makes leftover content an error
func WithStrict(strict bool) Option {
	return func(o *Options) {
		o.Strict = strict
	}
}

// WithVocabulary sets the class names the paginator looks for
func WithVocabulary(v pagination.Vocabulary) Option {
	return func(o *Options) {
		o.Vocabulary = v
	}
}

// WithDefaults sets the variants untagged regions and table groups show on
func WithDefaults(d pagination.Defaults) Option {
	return func(o *Options) {
		o.Defaults = d
	}
}

// WithResourcePath adds a path to search for resources
func WithResourcePath(path string) Option {
	return func(o *Options) {
		o.ResourcePaths = append(o.ResourcePaths, path)
	}
}

// WithTimeout bounds remote fetches
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithTitle sets the document title
func WithTitle(title string) Option {
	return func(o *Options) {
		o.Title = title
	}
}

// WithAuthor sets the document author
func WithAuthor(author string) Option {
	return func(o *Options) {
		o.Author = author
	}
}

// WithSubject sets the document subject
func WithSubject(subject string) Option {
	return func(o *Options) {
		o.Subject = subject
	}
}

// WithKeywords sets the document keywords
func WithKeywords(keywords string) Option {
	return func(o *Options) {
		o.Keywords = keywords
	}
}

// WithUserStylesheet adds CSS applied after the document's stylesheets
func WithUserStylesheet(stylesheet string) Option {
	return func(o *Options) {
		o.UserStylesheet = stylesheet
	}
}

// WithUserAgentStylesheet sets the user agent stylesheet
func WithUserAgentStylesheet(stylesheet string) Option {
	return func(o *Options) {
		o.UserAgentStylesheet = stylesheet
	}
}

// WithRendering toggles backgrounds, borders and debug outlines in PDF output
func WithRendering(backgrounds, borders, debugBoxes bool) Option {
	return func(o *Options) {
		o.RenderBackgrounds = backgrounds
		o.RenderBorders = borders
		o.DebugDrawBoxes = debugBoxes
	}
}

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = log
	}
}
