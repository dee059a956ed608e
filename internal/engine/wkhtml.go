package engine

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
)

// Default wkhtml executables, resolved through PATH.
const (
	defaultWkhtmlToImage = "wkhtmltoimage"
	defaultWkhtmlToPDF   = "wkhtmltopdf"
)

// Wkhtml renders with the wkhtmltoimage and wkhtmltopdf tools.
// HTML goes in on stdin and the result comes back on stdout.
type Wkhtml struct {
	opts Options
}

// NewWkhtml creates a Wkhtml engine.
func NewWkhtml(opts Options) *Wkhtml {
	return &Wkhtml{opts: opts}
}

// Screenshot runs wkhtmltoimage at g. A zero height renders the full document.
func (w *Wkhtml) Screenshot(ctx context.Context, html string, g Geometry) ([]byte, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	bin := w.opts.WkhtmlToImageBin
	if bin == "" {
		bin = defaultWkhtmlToImage
	}
	return w.run(ctx, bin, imageArgs(g), html, ErrCapture)
}

// PrintPDF runs wkhtmltopdf with pages of g.Width by g.Height.
// A zero height prints pages with the width-to-height ratio of A4.
func (w *Wkhtml) PrintPDF(ctx context.Context, html string, g Geometry) ([]byte, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	bin := w.opts.WkhtmlToPDFBin
	if bin == "" {
		bin = defaultWkhtmlToPDF
	}
	return w.run(ctx, bin, pdfArgs(g), html, ErrPrint)
}

// Close is a no-op; wkhtml processes end with each call.
func (w *Wkhtml) Close() error {
	return nil
}

func imageArgs(g Geometry) []string {
	args := []string{"--quiet", "--width", strconv.Itoa(g.Width)}
	if g.Height > 0 {
		args = append(args, "--height", strconv.Itoa(g.Height))
	}
	args = append(args,
		"--disable-smart-width",
		"--encoding", "UTF-8",
		"--javascript-delay", strconv.FormatInt(g.Delay.Milliseconds(), 10),
		"--format", "png",
		"-", "-",
	)
	return args
}

func pdfArgs(g Geometry) []string {
	height := g.Height
	if height == 0 {
		height = g.Width * 297 / 210
	}
	return []string{
		"--quiet",
		"--page-width", formatMM(pxToMillimeters(g.Width)),
		"--page-height", formatMM(pxToMillimeters(height)),
		"--margin-top", "0",
		"--margin-bottom", "0",
		"--margin-left", "0",
		"--margin-right", "0",
		"--disable-smart-shrinking",
		"--encoding", "UTF-8",
		"--javascript-delay", strconv.FormatInt(g.Delay.Milliseconds(), 10),
		"-", "-",
	}
}

func formatMM(mm float64) string {
	return strconv.FormatFloat(mm, 'f', -1, 64) + "mm"
}

func (w *Wkhtml) run(ctx context.Context, bin string, args []string, html string, stage error) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timeout, err := loadTimeout(ctx, w.opts.timeout())
	if err != nil {
		return nil, wrap(stage, err)
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, bin, args...) // #nosec G204 -- binary comes from configuration
	cmd.Stdin = strings.NewReader(html)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := cmdCtx.Err(); ctxErr != nil {
			return nil, wrap(stage, ctxErr)
		}
		message := strings.TrimSpace(stderr.String())
		if message == "" {
			message = bin + " failed"
		}
		return nil, wrap(stage, errors.New(message+": "+err.Error()))
	}
	if stdout.Len() == 0 {
		return nil, wrap(stage, errors.New(bin+" produced no output"))
	}
	return stdout.Bytes(), nil
}

// Compile-time interface check.
var _ Engine = (*Wkhtml)(nil)
