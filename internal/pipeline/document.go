package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"math"
	"regexp"
	"strconv"
	"sync"
	texttemplate "text/template"

	"github.com/alnah/go-md2watch/internal/assets"
)

// Sentinel errors for document assembly.
var (
	ErrDocumentRender    = errors.New("document template rendering failed")
	ErrStyleRender       = errors.New("style template rendering failed")
	ErrInvalidFontFamily = errors.New("invalid font family")
)

// BaseFontSize is the body font size in CSS pixels at scale 1.0.
const BaseFontSize = 16.0

// Heading sizes relative to the body font size, h1 through h4.
var headingScales = [4]float64{2.0, 1.75, 1.5, 1.25}

// fontFamilyPattern accepts plain family names; quoting is done by the styles.
var fontFamilyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 \-]{0,63}$`)

// ValidateFontFamily rejects names that could escape a quoted CSS string.
// An empty name is valid and means the style default.
func ValidateFontFamily(name string) error {
	if name == "" || fontFamilyPattern.MatchString(name) {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidFontFamily, name)
}

// Fonts overrides the font families of a style. Empty fields keep the default.
type Fonts struct {
	Body   string
	Header string
	Code   string
}

// Validate checks every non-empty family name.
func (f Fonts) Validate() error {
	for _, name := range []string{f.Body, f.Header, f.Code} {
		if err := ValidateFontFamily(name); err != nil {
			return err
		}
	}
	return nil
}

// DocumentOptions describes how a body fragment is laid out.
type DocumentOptions struct {
	Title     string
	Width     int // CSS pixels
	Height    int // 0 lets the document grow to its natural height
	Padding   int
	FontScale float64
	Dark      bool
	Style     string // asset style name, e.g. "modern"
	Fonts     Fonts
	MathJax   bool
	ExtraCSS  string
}

// styleData is the value styles are rendered against.
type styleData struct {
	Width, Height, Padding int

	FontSize, H1Size, H2Size, H3Size, H4Size string

	Background, Foreground, CodeBackground, Rule string

	BodyFont, HeaderFont, CodeFont string

	Dark bool
}

// documentData is the value the page template is rendered against.
type documentData struct {
	Title   string
	Width   int
	Height  int
	Theme   string
	Style   string
	CSS     template.CSS
	Body    template.HTML
	MathJax bool
}

// DocumentBuilder assembles complete HTML documents from body fragments.
// It is safe for concurrent use.
type DocumentBuilder struct {
	loader   assets.AssetLoader
	injector CSSInjector
	page     *template.Template

	mu     sync.Mutex
	styles map[string]*texttemplate.Template
}

// NewDocumentBuilder parses the document template from loader.
func NewDocumentBuilder(loader assets.AssetLoader) (*DocumentBuilder, error) {
	src, err := loader.LoadTemplate(assets.DocumentTemplateName)
	if err != nil {
		return nil, err
	}
	page, err := template.New(assets.DocumentTemplateName).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentRender, err)
	}
	return &DocumentBuilder{
		loader:   loader,
		injector: &CSSInjection{},
		page:     page,
		styles:   make(map[string]*texttemplate.Template),
	}, nil
}

// Build wraps body in the page template with the base stylesheet and the
// requested style rendered for opts. Body must be trusted HTML, such as
// GoldmarkConverter output.
func (b *DocumentBuilder) Build(ctx context.Context, body string, opts DocumentOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := opts.Fonts.Validate(); err != nil {
		return "", err
	}

	style := opts.Style
	if style == "" {
		style = assets.DefaultStyleName
	}

	data := newStyleData(opts)
	var css bytes.Buffer
	for _, name := range []string{assets.BaseStyleName, style} {
		tmpl, err := b.style(name)
		if err != nil {
			return "", err
		}
		if err := tmpl.Execute(&css, data); err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrStyleRender, name, err)
		}
		css.WriteByte('\n')
	}

	theme := "light"
	if opts.Dark {
		theme = "dark"
	}

	var out bytes.Buffer
	err := b.page.Execute(&out, documentData{
		Title:   opts.Title,
		Width:   opts.Width,
		Height:  opts.Height,
		Theme:   theme,
		Style:   style,
		CSS:     template.CSS(sanitizeCSS(css.String())), // #nosec G203 -- style assets are trusted, "</" escaped
		Body:    template.HTML(body),                     // #nosec G203 -- goldmark output in safe mode
		MathJax: opts.MathJax,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDocumentRender, err)
	}

	return b.injector.InjectCSS(ctx, out.String(), opts.ExtraCSS), nil
}

// style returns the parsed template for a style, loading it on first use.
func (b *DocumentBuilder) style(name string) (*texttemplate.Template, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if tmpl, ok := b.styles[name]; ok {
		return tmpl, nil
	}

	src, err := b.loader.LoadStyle(name)
	if err != nil {
		return nil, err
	}
	tmpl, err := texttemplate.New(name).Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStyleRender, name, err)
	}
	b.styles[name] = tmpl
	return tmpl, nil
}

func newStyleData(opts DocumentOptions) styleData {
	scale := opts.FontScale
	if scale <= 0 {
		scale = 1.0
	}
	base := BaseFontSize * scale

	d := styleData{
		Width:      opts.Width,
		Height:     opts.Height,
		Padding:    opts.Padding,
		FontSize:   formatPx(base),
		H1Size:     formatPx(base * headingScales[0]),
		H2Size:     formatPx(base * headingScales[1]),
		H3Size:     formatPx(base * headingScales[2]),
		H4Size:     formatPx(base * headingScales[3]),
		BodyFont:   opts.Fonts.Body,
		HeaderFont: opts.Fonts.Header,
		CodeFont:   opts.Fonts.Code,
		Dark:       opts.Dark,
	}
	if opts.Dark {
		d.Background, d.Foreground, d.CodeBackground, d.Rule = "black", "white", "#333", "#555"
	} else {
		d.Background, d.Foreground, d.CodeBackground, d.Rule = "white", "black", "#f4f4f4", "#ccc"
	}
	return d
}

// formatPx renders a CSS pixel length with at most two decimals.
func formatPx(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
