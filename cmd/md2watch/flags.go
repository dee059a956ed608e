package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"
)

// ErrUsage wraps flag parsing failures.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// requestFlags override the defaults of one render request.
type requestFlags struct {
	device     string
	theme      string
	layout     string
	template   string
	fontScale  float64
	padding    int
	fontBody   string
	fontHeader string
	fontCode   string

	fontScaleSet bool
	paddingSet   bool
}

// engineFlags override the render section of the config.
type engineFlags struct {
	engine    string
	workers   int
	timeout   time.Duration
	overlap   int
	noSandbox bool
	noMathJax bool

	workersSet bool
	overlapSet bool
}

// renderFlags holds all flags of the render command.
type renderFlags struct {
	common  commonFlags
	request requestFlags
	engine  engineFlags
	output  string
	format  string
}

// serveFlags holds all flags of the serve command.
type serveFlags struct {
	common     commonFlags
	engine     engineFlags
	httpAddr   string
	noBot      bool
	logConsole bool
}

// addCommonFlags adds config and verbosity flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed output")
}

// addRequestFlags adds the per-render options to a FlagSet.
func addRequestFlags(fs *flag.FlagSet, f *requestFlags) {
	fs.StringVarP(&f.device, "device", "d", "", "watch model (see 'md2watch devices')")
	fs.StringVar(&f.theme, "theme", "", "dark or light")
	fs.StringVar(&f.layout, "layout", "", "continuous or multipage")
	fs.StringVar(&f.template, "template", "", "minimalistic, modern, or classic")
	fs.Float64Var(&f.fontScale, "font-scale", 0, "font scale (0.8 small, 1.0 medium, 1.2 large)")
	fs.IntVar(&f.padding, "padding", 0, "padding in pixels on every side")
	fs.StringVar(&f.fontBody, "font-body", "", "body font family")
	fs.StringVar(&f.fontHeader, "font-header", "", "header font family")
	fs.StringVar(&f.fontCode, "font-code", "", "code font family")
}

// addEngineFlags adds converter flags to a FlagSet.
func addEngineFlags(fs *flag.FlagSet, f *engineFlags) {
	fs.StringVarP(&f.engine, "engine", "e", "", "rendering engine: rod, chromedp, or wkhtml")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel converters (0 = auto)")
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "per-render timeout (e.g., 30s, 2m)")
	fs.IntVar(&f.overlap, "overlap", 0, "pixels shared by consecutive pages")
	fs.BoolVar(&f.noSandbox, "no-sandbox", false, "disable the Chrome sandbox (Docker/CI)")
	fs.BoolVar(&f.noMathJax, "no-mathjax", false, "do not load MathJax")
}

// buildRenderFlagSet registers every render flag on a new FlagSet.
func buildRenderFlagSet(f *renderFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.StringVarP(&f.output, "output", "o", "", "output directory (default: next to the input)")
	fs.StringVarP(&f.format, "format", "f", formatPNG, "png, pdf, or html")
	addCommonFlags(fs, &f.common)
	addRequestFlags(fs, &f.request)
	addEngineFlags(fs, &f.engine)
	return fs
}

// buildServeFlagSet registers every serve flag on a new FlagSet.
func buildServeFlagSet(f *serveFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.StringVar(&f.httpAddr, "http", "", "HTTP API address (e.g., :8080)")
	fs.BoolVar(&f.noBot, "no-bot", false, "do not start the Telegram bot")
	fs.BoolVar(&f.logConsole, "log-console", false, "human-readable log output")
	addCommonFlags(fs, &f.common)
	addEngineFlags(fs, &f.engine)
	return fs
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string, stderr io.Writer) (*renderFlags, []string, error) {
	f := &renderFlags{}
	fs := buildRenderFlagSet(f)
	fs.SetOutput(stderr)
	fs.Usage = func() { printRenderUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	f.request.fontScaleSet = fs.Changed("font-scale")
	f.request.paddingSet = fs.Changed("padding")
	f.engine.workersSet = fs.Changed("workers")
	f.engine.overlapSet = fs.Changed("overlap")
	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, error) {
	f := &serveFlags{}
	fs := buildServeFlagSet(f)
	fs.SetOutput(stderr)
	fs.Usage = func() { printServeUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, usageError(err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: serve takes no arguments, got %q", ErrUsage, fs.Arg(0))
	}
	f.engine.workersSet = fs.Changed("workers")
	f.engine.overlapSet = fs.Changed("overlap")
	return f, nil
}

// usageError keeps flag.ErrHelp intact and marks every other parse error.
func usageError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUsage, err)
}
