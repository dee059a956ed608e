package md2watch

import (
	"fmt"
	"strings"
	"time"

	"github.com/alnah/go-md2watch/internal/pipeline"
)

// Theme selects the colour scheme.
type Theme string

// Themes.
const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Layout selects between one fixed-size image and a paginated sequence.
type Layout string

// Layouts.
const (
	LayoutContinuous Layout = "continuous"
	LayoutMultipage  Layout = "multipage"
)

// Template selects the visual style of the rendered document.
type Template string

// Templates.
const (
	TemplateMinimalistic Template = "minimalistic"
	TemplateModern       Template = "modern"
	TemplateClassic      Template = "classic"
)

// Font scale presets.
const (
	FontScaleSmall  = 0.8
	FontScaleMedium = 1.0
	FontScaleLarge  = 1.2
)

// Request defaults and bounds.
const (
	DefaultFontScale = FontScaleMedium
	DefaultTheme     = ThemeDark
	DefaultLayout    = LayoutContinuous
	DefaultTemplate  = TemplateMinimalistic
	DefaultPadding   = 20 // pixels
	DefaultOverlap   = 10 // pixels shared by consecutive pages

	MaxFontScale     = 4.0
	MaxMarkdownBytes = 1 << 20
)

// DefaultRenderDelay gives scripts such as MathJax time to typeset.
const DefaultRenderDelay = 2 * time.Second

// Themes lists the accepted themes.
func Themes() []Theme { return []Theme{ThemeDark, ThemeLight} }

// Layouts lists the accepted layouts.
func Layouts() []Layout { return []Layout{LayoutContinuous, LayoutMultipage} }

// Templates lists the accepted templates in menu order.
func Templates() []Template {
	return []Template{TemplateMinimalistic, TemplateModern, TemplateClassic}
}

// ParseTheme parses a theme name, case-insensitively.
func ParseTheme(s string) (Theme, error) {
	for _, t := range Themes() {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q (must be dark or light)", ErrInvalidTheme, s)
}

// ParseLayout parses a layout name, case-insensitively.
func ParseLayout(s string) (Layout, error) {
	for _, l := range Layouts() {
		if strings.EqualFold(s, string(l)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q (must be continuous or multipage)", ErrInvalidLayout, s)
}

// ParseTemplate parses a template name, case-insensitively.
func ParseTemplate(s string) (Template, error) {
	for _, t := range Templates() {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q (must be minimalistic, modern, or classic)", ErrInvalidTemplate, s)
}

// Fonts overrides the font families of a template. Empty fields keep
// the template's own choice.
type Fonts struct {
	Body   string
	Header string
	Code   string
}

// Validate checks every non-empty family name.
func (f Fonts) Validate() error {
	if err := pipeline.Fonts(f).Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFont, err)
	}
	return nil
}

// Request is one render job. Build it with NewRequest to get the defaults.
type Request struct {
	Markdown  string
	Device    DeviceProfile
	FontScale float64
	Theme     Theme
	Padding   int // pixels on every side
	Layout    Layout
	Template  Template
	Fonts     Fonts
}

// NewRequest returns a request for device with every option at its default.
func NewRequest(markdown string, device DeviceProfile) Request {
	return Request{
		Markdown:  markdown,
		Device:    device,
		FontScale: DefaultFontScale,
		Theme:     DefaultTheme,
		Padding:   DefaultPadding,
		Layout:    DefaultLayout,
		Template:  DefaultTemplate,
	}
}

// Validate checks every field. It is the trust boundary for callers that
// build requests by hand.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Markdown) == "" {
		return ErrEmptyMarkdown
	}
	if len(r.Markdown) > MaxMarkdownBytes {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrMarkdownTooLarge, len(r.Markdown), MaxMarkdownBytes)
	}
	if err := r.Device.Validate(); err != nil {
		return err
	}
	if r.FontScale <= 0 || r.FontScale > MaxFontScale {
		return fmt.Errorf("%w: %v (must be in (0, %v])", ErrInvalidFontScale, r.FontScale, MaxFontScale)
	}
	if _, err := ParseTheme(string(r.Theme)); err != nil {
		return err
	}
	if _, err := ParseLayout(string(r.Layout)); err != nil {
		return err
	}
	if _, err := ParseTemplate(string(r.Template)); err != nil {
		return err
	}
	if r.Padding < 0 || 2*r.Padding >= r.Device.Width {
		return fmt.Errorf("%w: %d (must be >= 0 and leave room on a %dpx screen)", ErrInvalidPadding, r.Padding, r.Device.Width)
	}
	return r.Fonts.Validate()
}

// Page is one device-sized slice of a rendered document.
type Page struct {
	Number int // 1-based
	Top    int // first raster row, inclusive
	Bottom int // last raster row, exclusive
	Width  int
	Height int
	PNG    []byte
}

// Result is the output of Converter.Render.
type Result struct {
	Device DeviceProfile
	Layout Layout
	HTML   string
	Pages  []Page
}

// PDFResult is the output of Converter.RenderPDF.
type PDFResult struct {
	PDF      []byte
	Pages    int
	Version  string
	Producer string
}
