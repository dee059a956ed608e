package md2watch

import (
	"time"

	"github.com/alnah/go-md2watch/internal/engine"
)

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout     time.Duration
	renderDelay time.Duration
	overlap     int
	mathJax     bool
	assetPath   string
	extraCSS    string
	engineName  string
	engineOpts  engine.Options
}

func defaultConfig() converterConfig {
	return converterConfig{
		timeout:     engine.DefaultTimeout,
		renderDelay: DefaultRenderDelay,
		overlap:     DefaultOverlap,
		mathJax:     true,
		engineName:  engine.DefaultName,
	}
}

// WithTimeout bounds one whole render, including browser start-up.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("md2watch: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
		c.cfg.engineOpts.Timeout = d
	}
}

// WithRenderDelay sets how long scripts run after page load before capture.
// Zero captures as soon as the page has loaded.
// Panics if d < 0.
func WithRenderDelay(d time.Duration) Option {
	if d < 0 {
		panic("md2watch: WithRenderDelay duration must not be negative")
	}
	return func(c *Converter) {
		c.cfg.renderDelay = d
	}
}

// WithOverlap sets the rows shared by consecutive multipage pages.
// NewConverter rejects values that some device could not paginate with.
func WithOverlap(px int) Option {
	return func(c *Converter) {
		c.cfg.overlap = px
	}
}

// WithMathJax toggles the MathJax script in rendered documents.
func WithMathJax(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.mathJax = enabled
	}
}

// WithEngine uses e instead of starting a backend. The caller keeps
// ownership: Converter.Close does not close e.
func WithEngine(e Engine) Option {
	return func(c *Converter) {
		c.engine = e
		c.ownsEngine = false
	}
}

// WithEngineName selects a built-in backend by name (see EngineNames).
func WithEngineName(name string) Option {
	return func(c *Converter) {
		c.cfg.engineName = name
	}
}

// WithBrowserBin sets the Chrome executable used by the rod and chromedp backends.
func WithBrowserBin(path string) Option {
	return func(c *Converter) {
		c.cfg.engineOpts.BrowserBin = path
	}
}

// WithNoSandbox disables the Chrome sandbox, which containers usually require.
func WithNoSandbox(noSandbox bool) Option {
	return func(c *Converter) {
		c.cfg.engineOpts.NoSandbox = noSandbox
	}
}

// WithWkhtmlBins overrides the wkhtmltoimage and wkhtmltopdf executables.
func WithWkhtmlBins(toImage, toPDF string) Option {
	return func(c *Converter) {
		c.cfg.engineOpts.WkhtmlToImageBin = toImage
		c.cfg.engineOpts.WkhtmlToPDFBin = toPDF
	}
}

// WithAssetPath loads styles and the document template from dir first,
// falling back to the embedded assets for anything dir lacks.
func WithAssetPath(dir string) Option {
	return func(c *Converter) {
		c.cfg.assetPath = dir
	}
}

// WithExtraCSS appends css after the template styles of every document.
func WithExtraCSS(css string) Option {
	return func(c *Converter) {
		c.cfg.extraCSS = css
	}
}
