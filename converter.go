package md2watch

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"github.com/alnah/go-md2watch/internal/assets"
	"github.com/alnah/go-md2watch/internal/engine"
	"github.com/alnah/go-md2watch/internal/pdfinfo"
	"github.com/alnah/go-md2watch/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.MessagePreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.CSSInjector          = (*pipeline.CSSInjection)(nil)
	_ Renderer                      = (*Converter)(nil)
	_ Renderer                      = (*ConverterPool)(nil)
)

// documentTitle is the <title> of every rendered document.
const documentTitle = "Watch Markdown"

// Renderer is what the bot, the HTTP server and the CLI need from a
// converter. Both Converter and ConverterPool implement it.
type Renderer interface {
	Render(ctx context.Context, req Request) (*Result, error)
	RenderPDF(ctx context.Context, req Request) (*PDFResult, error)
	Preview(ctx context.Context, req Request) (string, error)
}

// Converter runs the Markdown to watch-page pipeline on one engine.
// Create with NewConverter and Close when done. A Converter may be used
// from several goroutines, but each call holds the engine's browser for
// its duration; use ConverterPool to render in parallel.
type Converter struct {
	cfg           converterConfig
	engine        Engine
	ownsEngine    bool
	preprocessor  pipeline.MarkdownPreprocessor
	htmlConverter pipeline.HTMLConverter
	documents     *pipeline.DocumentBuilder
}

// NewConverter creates a Converter. Without WithEngine the backend named by
// WithEngineName (default rod) is created; its browser starts on first use.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg:           defaultConfig(),
		preprocessor:  &pipeline.MessagePreprocessor{},
		htmlConverter: pipeline.NewGoldmarkConverter(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if limit := minDeviceHeight(); c.cfg.overlap < 0 || c.cfg.overlap >= limit {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrConfiguration, c.cfg.overlap, limit)
	}

	var loader assets.AssetLoader = assets.NewEmbeddedLoader()
	if c.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(c.cfg.assetPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		loader = resolver
	}

	documents, err := pipeline.NewDocumentBuilder(loader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	c.documents = documents

	if c.engine == nil {
		e, err := engine.New(c.cfg.engineName, c.cfg.engineOpts)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		c.engine = e
		c.ownsEngine = true
	}

	return c, nil
}

// Overlap returns the rows shared by consecutive multipage pages.
func (c *Converter) Overlap() int {
	return c.cfg.overlap
}

// Render produces the pages of req. A continuous layout yields one page of
// exactly the device size; a multipage layout renders the whole document
// once and cuts it into overlapping device-height pages.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Render(ctx context.Context, req Request) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: internal error: %v", ErrRender, r)
		}
	}()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	defer cancel()

	start := time.Now()
	height := 0
	if req.Layout == LayoutContinuous {
		height = req.Device.Height
	}

	html, err := c.document(ctx, req, height)
	if err != nil {
		return nil, err
	}

	raster, err := c.engine.Screenshot(ctx, html, Geometry{
		Width:  req.Device.Width,
		Height: height,
		Delay:  c.cfg.renderDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	captured := time.Since(start)

	var pages []Page
	if req.Layout == LayoutContinuous {
		page, err := fitPage(raster, req.Device, req.Theme)
		if err != nil {
			return nil, err
		}
		pages = []Page{page}
	} else {
		pages, err = Paginate(raster, req.Device.Width, req.Device.Height, req.Padding, c.cfg.overlap)
		if err != nil {
			return nil, err
		}
	}

	zerolog.Ctx(ctx).Debug().
		Str("device", req.Device.Key).
		Str("layout", string(req.Layout)).
		Int("pages", len(pages)).
		Dur("capture", captured).
		Dur("total", time.Since(start)).
		Msg("rendered")

	return &Result{
		Device: req.Device,
		Layout: req.Layout,
		HTML:   html,
		Pages:  pages,
	}, nil
}

// RenderPDF prints the whole document of req, at device width, as a PDF.
// The output is parsed before it is returned.
func (c *Converter) RenderPDF(ctx context.Context, req Request) (res *PDFResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: internal error: %v", ErrRender, r)
		}
	}()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	defer cancel()

	start := time.Now()
	html, err := c.document(ctx, req, 0)
	if err != nil {
		return nil, err
	}

	data, err := c.engine.PrintPDF(ctx, html, Geometry{
		Width:  req.Device.Width,
		Height: req.Device.Height,
		Delay:  c.cfg.renderDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	info, err := pdfinfo.Inspect(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrRender, ErrPDFInvalid, err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("device", req.Device.Key).
		Int("pdf_pages", info.Pages).
		Int("bytes", info.Size).
		Dur("total", time.Since(start)).
		Msg("printed")

	return &PDFResult{
		PDF:      data,
		Pages:    info.Pages,
		Version:  info.Version,
		Producer: info.Producer,
	}, nil
}

// Preview returns the HTML document Render would capture for a multipage
// layout. No engine is involved.
func (c *Converter) Preview(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	return c.document(ctx, req, 0)
}

// Close releases the engine if the converter created it.
func (c *Converter) Close() error {
	if c.engine != nil && c.ownsEngine {
		return c.engine.Close()
	}
	return nil
}

// document converts req.Markdown into a complete HTML page sized for the
// device. Height 0 lets the page grow with its content.
func (c *Converter) document(ctx context.Context, req Request, height int) (string, error) {
	md := c.preprocessor.PreprocessMarkdown(ctx, req.Markdown)
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}

	dark := req.Theme == ThemeDark
	body, err := c.htmlConverter.ToHTML(ctx, md, dark)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}

	html, err := c.documents.Build(ctx, body, pipeline.DocumentOptions{
		Title:     documentTitle,
		Width:     req.Device.Width,
		Height:    height,
		Padding:   req.Padding,
		FontScale: req.FontScale,
		Dark:      dark,
		Style:     string(req.Template),
		Fonts:     pipeline.Fonts(req.Fonts),
		MathJax:   c.cfg.mathJax,
		ExtraCSS:  c.cfg.extraCSS,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}
	return html, nil
}

// fitPage turns a fixed-height capture into the single continuous page.
// Engines may return a raster a few pixels off the viewport; it is cropped
// or padded with the theme background to exactly the device size.
func fitPage(raster []byte, d DeviceProfile, theme Theme) (Page, error) {
	page := Page{Number: 1, Top: 0, Bottom: d.Height, Width: d.Width, Height: d.Height}

	img, err := imaging.Decode(bytes.NewReader(raster))
	if err != nil {
		return Page{}, fmt.Errorf("%w: decoding capture: %w", ErrRender, err)
	}
	if b := img.Bounds(); b.Dx() == d.Width && b.Dy() == d.Height {
		page.PNG = raster
		return page, nil
	}

	canvas := imaging.New(d.Width, d.Height, background(theme))
	canvas = imaging.Paste(canvas, img, image.Pt(0, 0))

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG); err != nil {
		return Page{}, fmt.Errorf("%w: encoding page: %w", ErrRender, err)
	}
	page.PNG = buf.Bytes()
	return page, nil
}

func background(theme Theme) color.Color {
	if theme == ThemeLight {
		return color.White
	}
	return color.Black
}
