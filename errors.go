package md2watch

import "errors"

// Error kinds. Causes are attached with fmt.Errorf("%w: %w", kind, cause)
// so callers can match the kind with errors.Is and still reach the cause.
var (
	// ErrRender reports a failed Markdown, HTML or engine conversion step.
	ErrRender = errors.New("render failed")

	// ErrPagination reports an undecodable or degenerate full-height raster.
	ErrPagination = errors.New("pagination failed")

	// ErrConfiguration reports geometry that can never paginate,
	// such as an overlap that is not smaller than the page height.
	ErrConfiguration = errors.New("invalid configuration")
)

// Request validation errors.
var (
	ErrEmptyMarkdown    = errors.New("markdown content cannot be empty")
	ErrMarkdownTooLarge = errors.New("markdown content too large")
	ErrUnknownDevice    = errors.New("unknown device")
	ErrInvalidTheme     = errors.New("invalid theme")
	ErrInvalidLayout    = errors.New("invalid layout")
	ErrInvalidTemplate  = errors.New("invalid template")
	ErrInvalidFontScale = errors.New("invalid font scale")
	ErrInvalidPadding   = errors.New("invalid padding")
	ErrInvalidFont      = errors.New("invalid font family")
)

// ErrPDFInvalid reports engine output that does not parse as a PDF document.
var ErrPDFInvalid = errors.New("generated PDF is not readable")

// IsValidationError reports whether err was caused by a malformed Request.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyMarkdown) ||
		errors.Is(err, ErrMarkdownTooLarge) ||
		errors.Is(err, ErrUnknownDevice) ||
		errors.Is(err, ErrInvalidTheme) ||
		errors.Is(err, ErrInvalidLayout) ||
		errors.Is(err, ErrInvalidTemplate) ||
		errors.Is(err, ErrInvalidFontScale) ||
		errors.Is(err, ErrInvalidPadding) ||
		errors.Is(err, ErrInvalidFont)
}
