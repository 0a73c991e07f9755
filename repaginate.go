package repaginate

import (
	"github.com/gompdf/repaginate/pkg/api"
)

type Paginator = api.Paginator
type Options = api.Options
type Option = api.Option
type PageOrientation = api.PageOrientation
type Result = api.Result
type Diagnostic = api.Diagnostic
type DiagnosticKind = api.DiagnosticKind
type Page = api.Page
type PageSize = api.PageSize
type Vocabulary = api.Vocabulary
type Defaults = api.Defaults
type Progress = api.Progress

func New(opts ...Option) *Paginator             { return api.New(opts...) }
func NewWithOptions(options Options) *Paginator { return api.NewWithOptions(options) }
func DefaultOptions() Options                   { return api.DefaultOptions() }

var (
	WithPageSize            = api.WithPageSize
	WithNamedPageSize       = api.WithNamedPageSize
	WithPageSizeA4          = api.WithPageSizeA4
	WithPageSizeLetter      = api.WithPageSizeLetter
	WithPageSizeLegal       = api.WithPageSizeLegal
	WithPageOrientation     = api.WithPageOrientation
	WithPageCapacity        = api.WithPageCapacity
	WithLocale              = api.WithLocale
	WithFractionDigits      = api.WithFractionDigits
	WithProgress            = api.WithProgress
	WithStrict              = api.WithStrict
	WithVocabulary          = api.WithVocabulary
	WithDefaults            = api.WithDefaults
	WithResourcePath        = api.WithResourcePath
	WithTimeout             = api.WithTimeout
	WithTitle               = api.WithTitle
	WithAuthor              = api.WithAuthor
	WithSubject             = api.WithSubject
	WithKeywords            = api.WithKeywords
	WithUserStylesheet      = api.WithUserStylesheet
	WithUserAgentStylesheet = api.WithUserAgentStylesheet
	WithRendering           = api.WithRendering
	WithLogger              = api.WithLogger

	PageSizeA3     = api.PageSizeA3
	PageSizeA4     = api.PageSizeA4
	PageSizeA5     = api.PageSizeA5
	PageSizeLetter = api.PageSizeLetter
	PageSizeLegal  = api.PageSizeLegal

	ErrUnplacedContent = api.ErrUnplacedContent
)

const (
	PageOrientationPortrait  = api.PageOrientationPortrait
	PageOrientationLandscape = api.PageOrientationLandscape

	ProgressForce = api.ProgressForce
	ProgressSkip  = api.ProgressSkip
)
