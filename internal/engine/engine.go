// Package engine turns HTML documents into PNG rasters and PDF documents.
//
// Three backends share one interface:
//   - rod: headless Chrome driven through go-rod (default)
//   - chromedp: headless Chrome driven through chromedp
//   - wkhtml: the wkhtmltoimage and wkhtmltopdf command-line tools
//
// Browsers are started lazily on the first call and released by Close.
// An Engine is safe for concurrent use, but callers normally pool them so
// that each request owns one browser at a time.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

// Engine names accepted by New.
const (
	NameRod      = "rod"
	NameChromedp = "chromedp"
	NameWkhtml   = "wkhtml"
)

// DefaultName is the engine used when none is configured.
const DefaultName = NameRod

// DefaultTimeout bounds one page load when the caller's context has no deadline.
const DefaultTimeout = 30 * time.Second

// cssPixelsPerInch is the CSS reference resolution used by print layouts.
const cssPixelsPerInch = 96.0

// layoutViewportHeight is the viewport height used to lay out documents of
// unknown height. Chrome never reports a document shorter than its viewport,
// so a 1px viewport makes full-page captures and scrollHeight equal the
// content height.
const layoutViewportHeight = 1

// Sentinel errors. Every backend failure wraps ErrEngine.
var (
	ErrEngine         = errors.New("engine failure")
	ErrUnknownEngine  = errors.New("unknown engine")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageLoad       = errors.New("failed to load page")
	ErrCapture        = errors.New("failed to capture screenshot")
	ErrPrint          = errors.New("failed to print PDF")
	ErrGeometry       = errors.New("invalid geometry")
)

// Geometry describes the viewport an HTML document is rendered into.
type Geometry struct {
	// Width is the viewport width in CSS pixels.
	Width int

	// Height is the viewport height in CSS pixels. For screenshots, zero
	// captures the whole document at its natural height. For PDFs it is the
	// page height of paginating backends (wkhtml); Chrome backends print
	// one page as tall as the content.
	Height int

	// Delay is how long scripts such as MathJax get to run after load.
	Delay time.Duration
}

// Validate reports geometry that no backend can render.
func (g Geometry) Validate() error {
	if g.Width <= 0 || g.Height < 0 || g.Delay < 0 {
		return fmt.Errorf("%w: %w: width=%d height=%d delay=%s", ErrEngine, ErrGeometry, g.Width, g.Height, g.Delay)
	}
	return nil
}

// Engine renders HTML documents.
type Engine interface {
	// Screenshot returns a PNG of the document rendered at g.
	Screenshot(ctx context.Context, html string, g Geometry) ([]byte, error)

	// PrintPDF returns the document printed as PDF at g.Width.
	PrintPDF(ctx context.Context, html string, g Geometry) ([]byte, error)

	// Close releases the browser or any other held process.
	Close() error
}

// Options configures a backend.
type Options struct {
	// Timeout bounds page loads when the context carries no deadline.
	Timeout time.Duration

	// BrowserBin overrides the Chrome executable for rod and chromedp.
	BrowserBin string

	// NoSandbox disables the Chrome sandbox (containers, CI).
	NoSandbox bool

	// WkhtmlToImageBin and WkhtmlToPDFBin override the wkhtml executables.
	WkhtmlToImageBin string
	WkhtmlToPDFBin   string
}

func (o Options) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return DefaultTimeout
}

// Names lists the accepted engine names.
func Names() []string {
	return []string{NameRod, NameChromedp, NameWkhtml}
}

// IsValidName reports whether name selects a backend. Empty means default.
func IsValidName(name string) bool {
	return name == "" || slices.Contains(Names(), strings.ToLower(name))
}

// New returns the backend registered under name. Empty selects DefaultName.
func New(name string, opts Options) (Engine, error) {
	switch strings.ToLower(name) {
	case "", NameRod:
		return NewRod(opts), nil
	case NameChromedp:
		return NewChromedp(opts), nil
	case NameWkhtml:
		return NewWkhtml(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownEngine, name, strings.Join(Names(), ", "))
	}
}

// loadTimeout returns the time left before ctx expires, or fallback.
func loadTimeout(ctx context.Context, fallback time.Duration) (time.Duration, error) {
	if deadline, ok := ctx.Deadline(); ok {
		left := time.Until(deadline)
		if left <= 0 {
			return 0, context.DeadlineExceeded
		}
		return left, nil
	}
	return fallback, nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// pxToInches converts CSS pixels to inches.
func pxToInches(px int) float64 {
	return float64(px) / cssPixelsPerInch
}

// pxToMillimeters converts CSS pixels to millimeters, rounded to 0.01 mm.
func pxToMillimeters(px int) float64 {
	return math.Round(float64(px)*2540/cssPixelsPerInch) / 100
}

// wrap attaches ErrEngine and a stage sentinel to a cause.
// Context errors pass through so callers can tell timeouts apart.
func wrap(stage error, cause error) error {
	if errors.Is(cause, context.DeadlineExceeded) || errors.Is(cause, context.Canceled) {
		return fmt.Errorf("%w: %w: %w", ErrEngine, stage, cause)
	}
	return fmt.Errorf("%w: %w: %v", ErrEngine, stage, cause)
}
