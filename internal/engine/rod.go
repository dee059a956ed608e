package engine

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-md2watch/internal/fileutil"
	"github.com/alnah/go-md2watch/internal/process"
)

// Rod renders through headless Chrome driven by go-rod.
// Rod downloads Chromium on first run if no browser is found.
type Rod struct {
	opts Options

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewRod creates a Rod engine. The browser starts on first use.
func NewRod(opts Options) *Rod {
	return &Rod{opts: opts}
}

// ensureBrowser lazily launches and connects to the browser.
func (r *Rod) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New()
	if r.opts.BrowserBin != "" {
		l = l.Bin(r.opts.BrowserBin)
	}
	if r.opts.NoSandbox {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, wrap(ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		killLauncher(l)
		return nil, wrap(ErrBrowserConnect, err)
	}

	r.launcher = l
	r.browser = browser
	return browser, nil
}

// Close closes the browser and kills its process group.
func (r *Rod) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		killLauncher(r.launcher)
		r.launcher = nil
	}
	return err
}

func killLauncher(l *launcher.Launcher) {
	if pid := l.PID(); pid > 0 {
		process.KillProcessGroup(pid)
	}
	l.Kill()
}

// open loads html into a new tab sized to g and waits for g.Delay.
// The returned cleanup closes the tab and removes the temp file.
func (r *Rod) open(ctx context.Context, html string, g Geometry) (*rod.Page, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, nil, err
	}

	browser, err := r.ensureBrowser()
	if err != nil {
		return nil, nil, err
	}

	path, removeFile, err := fileutil.WriteTempFile(html, "html")
	if err != nil {
		return nil, nil, wrap(ErrPageLoad, err)
	}

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "file://" + path})
	if err != nil {
		removeFile()
		return nil, nil, wrap(ErrPageLoad, err)
	}
	cleanup := func() {
		_ = page.Close()
		removeFile()
	}

	height := g.Height
	if height == 0 {
		height = layoutViewportHeight
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             g.Width,
		Height:            height,
		DeviceScaleFactor: 1,
	}); err != nil {
		cleanup()
		return nil, nil, wrap(ErrPageLoad, err)
	}

	timeout, err := loadTimeout(ctx, r.opts.timeout())
	if err != nil {
		cleanup()
		return nil, nil, wrap(ErrPageLoad, err)
	}
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		cleanup()
		return nil, nil, wrap(ErrPageLoad, err)
	}
	if err := sleep(ctx, g.Delay); err != nil {
		cleanup()
		return nil, nil, wrap(ErrPageLoad, err)
	}

	return page, cleanup, nil
}

// Screenshot captures the viewport, or the full document when g.Height is 0.
func (r *Rod) Screenshot(ctx context.Context, html string, g Geometry) ([]byte, error) {
	page, cleanup, err := r.open(ctx, html, g)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	png, err := page.Screenshot(g.Height == 0, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, wrap(ErrCapture, err)
	}
	return png, nil
}

// PrintPDF prints one page g.Width wide and as tall as the content.
func (r *Rod) PrintPDF(ctx context.Context, html string, g Geometry) ([]byte, error) {
	page, cleanup, err := r.open(ctx, html, Geometry{Width: g.Width, Delay: g.Delay})
	if err != nil {
		return nil, err
	}
	defer cleanup()

	res, err := page.Eval(`() => document.documentElement.scrollHeight`)
	if err != nil {
		return nil, wrap(ErrPrint, err)
	}
	contentHeight := res.Value.Int()
	if contentHeight <= 0 {
		return nil, wrap(ErrPrint, fmt.Errorf("document height %d", contentHeight))
	}

	reader, err := page.PDF(&proto.PagePrintToPDF{
		PaperWidth:      floatPtr(pxToInches(g.Width)),
		PaperHeight:     floatPtr(pxToInches(contentHeight + 1)), // rounding must not spill a blank page
		MarginTop:       floatPtr(0),
		MarginBottom:    floatPtr(0),
		MarginLeft:      floatPtr(0),
		MarginRight:     floatPtr(0),
		PrintBackground: true,
	})
	if err != nil {
		return nil, wrap(ErrPrint, err)
	}

	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, wrap(ErrPrint, fmt.Errorf("reading PDF stream: %w", err))
	}
	return pdf, nil
}

func floatPtr(v float64) *float64 {
	return &v
}

// Compile-time interface check.
var _ Engine = (*Rod)(nil)
