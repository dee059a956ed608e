package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Chromedp renders through headless Chrome driven by chromedp.
type Chromedp struct {
	opts Options

	mu            sync.Mutex
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
}

// NewChromedp creates a Chromedp engine. The browser starts on first use.
func NewChromedp(opts Options) *Chromedp {
	return &Chromedp{opts: opts}
}

func (c *Chromedp) ensureBrowser() (context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.browserCtx != nil {
		return c.browserCtx, nil
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.Flag("hide-scrollbars", true),
	)
	if c.opts.BrowserBin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(c.opts.BrowserBin))
	}
	if c.opts.NoSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Running with no actions starts the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, wrap(ErrBrowserConnect, err)
	}

	c.browserCtx = browserCtx
	c.cancelBrowser = cancelBrowser
	c.cancelAlloc = cancelAlloc
	return browserCtx, nil
}

// Close shuts the browser down.
func (c *Chromedp) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancelBrowser != nil {
		c.cancelBrowser()
		c.cancelAlloc()
	}
	c.browserCtx, c.cancelBrowser, c.cancelAlloc = nil, nil, nil
	return nil
}

// run opens a tab, loads html at g, then runs capture inside the tab.
func (c *Chromedp) run(ctx context.Context, html string, g Geometry, stage error, capture ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := g.Validate(); err != nil {
		return err
	}

	browserCtx, err := c.ensureBrowser()
	if err != nil {
		return err
	}

	timeout, err := loadTimeout(ctx, c.opts.timeout())
	if err != nil {
		return wrap(ErrPageLoad, err)
	}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, timeout)
	defer cancelTimeout()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	height := g.Height
	if height == 0 {
		height = layoutViewportHeight
	}

	load := chromedp.Tasks{
		chromedp.EmulateViewport(int64(g.Width), int64(height), chromedp.EmulateScale(1)),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(g.Delay),
	}
	if err := chromedp.Run(tabCtx, load); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return wrap(ErrPageLoad, err)
	}

	if err := chromedp.Run(tabCtx, capture...); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return wrap(stage, err)
	}
	return nil
}

// Screenshot captures the viewport, or the full document when g.Height is 0.
func (c *Chromedp) Screenshot(ctx context.Context, html string, g Geometry) ([]byte, error) {
	var png []byte
	capture := chromedp.CaptureScreenshot(&png)
	if g.Height == 0 {
		capture = chromedp.FullScreenshot(&png, 100) // quality 100 selects PNG
	}
	if err := c.run(ctx, html, g, ErrCapture, capture); err != nil {
		return nil, err
	}
	return png, nil
}

// PrintPDF prints one page g.Width wide and as tall as the content.
func (c *Chromedp) PrintPDF(ctx context.Context, html string, g Geometry) ([]byte, error) {
	var (
		contentHeight int
		pdf           []byte
	)
	err := c.run(ctx, html, Geometry{Width: g.Width, Delay: g.Delay}, ErrPrint,
		chromedp.Evaluate(`document.documentElement.scrollHeight`, &contentHeight),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if contentHeight <= 0 {
				return fmt.Errorf("document height %d", contentHeight)
			}
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(pxToInches(g.Width)).
				WithPaperHeight(pxToInches(contentHeight + 1)).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdf, nil
}

// Compile-time interface check.
var _ Engine = (*Chromedp)(nil)
