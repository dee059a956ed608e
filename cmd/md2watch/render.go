package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	md2watch "github.com/alnah/go-md2watch"
	"github.com/alnah/go-md2watch/internal/config"
	"github.com/alnah/go-md2watch/internal/fileutil"
	"github.com/alnah/go-md2watch/internal/logging"
)

// Sentinel errors for the render command.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrReadMarkdown       = errors.New("failed to read markdown file")
	ErrWriteOutput        = errors.New("failed to write output file")
	ErrInvalidExtension   = errors.New("file must have .md, .markdown or .txt extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrInvalidFormat      = errors.New("invalid output format")
)

// Output formats.
const (
	formatPNG  = "png"
	formatPDF  = "pdf"
	formatHTML = "html"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

var markdownExtensions = []string{".md", ".markdown", ".txt"}

// FileToRender is one input file and the output path prefix, without
// extension, its results are written to.
type FileToRender struct {
	InputPath  string
	OutputBase string
}

// RenderResult holds the outcome of a single file.
type RenderResult struct {
	InputPath string
	Outputs   []string
	Err       error
	Duration  time.Duration
}

// runRenderCmd renders Markdown files into watch pages, PDFs or HTML.
func runRenderCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	switch len(positional) {
	case 0:
		return fmt.Errorf("%w: usage: md2watch render <input> [flags]", ErrNoInput)
	case 1:
	default:
		return fmt.Errorf("%w: render takes one input, got %d", ErrUsage, len(positional))
	}
	if err := validateFormat(flags.format); err != nil {
		return err
	}
	if err := validateWorkers(flags.engine.workers); err != nil {
		return err
	}

	cfg, err := loadConfig(env, flags.common.config, flags.engine)
	if err != nil {
		return err
	}
	initCLILogging(env, flags.common)

	base, err := buildRequest(cfg, flags.request)
	if err != nil {
		return withHint(err, cfg)
	}

	files, err := discoverFiles(positional[0], flags.output)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no markdown files found in %s", ErrNoInput, positional[0])
	}

	renderer := env.NewRenderer(cfg)
	defer func() { _ = renderer.Close() }()

	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Rendering %d file(s) for %s with %s (%d worker(s))\n",
			len(files), base.Device, cfg.Render.Engine, renderer.Size())
	}

	start := env.Now()
	results := renderBatch(ctx, renderer, files, base, flags.format)
	failed := printResults(results, flags.common.quiet, flags.common.verbose, env)
	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Done in %v\n", env.Now().Sub(start).Round(time.Millisecond))
	}
	if failed > 0 {
		first := firstError(results)
		return fmt.Errorf("%d of %d file(s) failed: %w", failed, len(results), withHint(first, cfg))
	}
	return nil
}

// loadConfig loads the configuration and applies engine flag overrides.
func loadConfig(env *Environment, nameOrPath string, f engineFlags) (*config.Config, error) {
	cfg, err := env.LoadConfig(nameOrPath)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, withHint(err, nil)
		}
		return nil, err
	}
	applyEngineFlags(cfg, f)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEngineFlags overrides render settings with explicitly set flags.
func applyEngineFlags(cfg *config.Config, f engineFlags) {
	r := &cfg.Render
	if f.engine != "" {
		r.Engine = f.engine
	}
	if f.workersSet {
		r.Workers = f.workers
	}
	if f.timeout > 0 {
		r.Timeout = config.Duration(f.timeout)
	}
	if f.overlapSet {
		overlap := f.overlap
		r.Overlap = &overlap
	}
	if f.noSandbox {
		r.NoSandbox = true
	}
	if f.noMathJax {
		off := false
		r.MathJax = &off
	}
}

// initCLILogging sends library logs to stderr: warnings only, or
// everything with --verbose.
func initCLILogging(env *Environment, f commonFlags) {
	level := "warn"
	switch {
	case f.verbose:
		level = "debug"
	case f.quiet:
		level = "error"
	}
	logging.Init(logging.Options{Level: level, Console: true, Stderr: env.Stderr})
}

// buildRequest returns the request every file is rendered with, its
// Markdown left empty. Fields come from flags, then from the config.
func buildRequest(cfg *config.Config, f requestFlags) (md2watch.Request, error) {
	key := f.device
	if key == "" {
		key = cfg.Render.Device
	}
	device, err := md2watch.LookupDevice(key)
	if err != nil {
		return md2watch.Request{}, err
	}

	req := md2watch.NewRequest("", device)
	if f.theme != "" {
		if req.Theme, err = md2watch.ParseTheme(f.theme); err != nil {
			return md2watch.Request{}, err
		}
	}
	if f.layout != "" {
		if req.Layout, err = md2watch.ParseLayout(f.layout); err != nil {
			return md2watch.Request{}, err
		}
	}
	if f.template != "" {
		if req.Template, err = md2watch.ParseTemplate(f.template); err != nil {
			return md2watch.Request{}, err
		}
	}
	if f.fontScaleSet {
		req.FontScale = f.fontScale
	}
	if f.paddingSet {
		req.Padding = f.padding
	}
	req.Fonts = md2watch.Fonts{Body: f.fontBody, Header: f.fontHeader, Code: f.fontCode}

	// Everything but the Markdown is checked now, once.
	probe := req
	probe.Markdown = "#"
	if err := probe.Validate(); err != nil {
		return md2watch.Request{}, err
	}
	return req, nil
}

// discoverFiles finds all markdown files to render.
func discoverFiles(inputPath, outputDir string) ([]FileToRender, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadMarkdown, err)
	}

	if !info.IsDir() {
		if err := validateMarkdownExtension(inputPath); err != nil {
			return nil, err
		}
		return []FileToRender{{InputPath: inputPath, OutputBase: resolveOutputBase(inputPath, outputDir, "")}}, nil
	}

	var files []FileToRender
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() || validateMarkdownExtension(path) != nil {
			return nil
		}
		files = append(files, FileToRender{InputPath: path, OutputBase: resolveOutputBase(path, outputDir, inputPath)})
		return nil
	})
	return files, err
}

// resolveOutputBase returns the output path of a file without extension.
// Directory inputs keep their layout under outputDir.
func resolveOutputBase(inputPath, outputDir, baseInputDir string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), base)
	}
	if baseInputDir != "" {
		if rel, err := filepath.Rel(baseInputDir, inputPath); err == nil {
			return filepath.Join(outputDir, filepath.Dir(rel), base)
		}
	}
	return filepath.Join(outputDir, base)
}

// validateMarkdownExtension checks the file extension, case-insensitively.
func validateMarkdownExtension(path string) error {
	if fileutil.HasExtension(path, markdownExtensions...) {
		return nil
	}
	return fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(path))
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > md2watch.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, md2watch.MaxPoolSize)
	}
	return nil
}

func validateFormat(format string) error {
	switch format {
	case formatPNG, formatPDF, formatHTML:
		return nil
	}
	return fmt.Errorf("%w: %q (must be png, pdf, or html)", ErrInvalidFormat, format)
}

// renderBatch renders files concurrently, at most renderer.Size() at a time.
// Results keep the order of files.
func renderBatch(ctx context.Context, r Renderer, files []FileToRender, base md2watch.Request, format string) []RenderResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(r.Size(), len(files))
	results := make([]RenderResult, len(files))
	jobs := make(chan int, len(files))
	for i := range files {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					results[idx] = RenderResult{InputPath: files[idx].InputPath, Err: err}
					continue
				}
				results[idx] = renderFile(ctx, r, files[idx], base, format)
			}
		}()
	}
	wg.Wait()
	return results
}

// renderFile renders a single file and writes its outputs.
func renderFile(ctx context.Context, r Renderer, f FileToRender, base md2watch.Request, format string) RenderResult {
	start := time.Now()
	result := RenderResult{InputPath: f.InputPath}
	ctx = logging.WithRequest(ctx, logging.NewRequestID(), "file", f.InputPath)

	outputs, err := renderOutputs(ctx, r, f, base, format)
	result.Outputs = outputs
	result.Err = err
	result.Duration = time.Since(start)
	if err != nil {
		logging.FromContext(ctx).Debug().Err(err).Msg("render failed")
	}
	return result
}

func renderOutputs(ctx context.Context, r Renderer, f FileToRender, base md2watch.Request, format string) ([]string, error) {
	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadMarkdown, err)
	}
	req := base
	req.Markdown = string(content)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(f.OutputBase), dirPermissions); err != nil {
		return nil, fmt.Errorf("%w: creating output directory: %w", ErrWriteOutput, err)
	}

	switch format {
	case formatPDF:
		res, err := r.RenderPDF(ctx, req)
		if err != nil {
			return nil, err
		}
		path := f.OutputBase + ".pdf"
		return []string{path}, writeOutput(path, res.PDF)

	case formatHTML:
		html, err := r.Preview(ctx, req)
		if err != nil {
			return nil, err
		}
		path := f.OutputBase + ".html"
		return []string{path}, writeOutput(path, []byte(html))

	default:
		res, err := r.Render(ctx, req)
		if err != nil {
			return nil, err
		}
		// Pages are written only after the whole document rendered.
		paths := make([]string, 0, len(res.Pages))
		for _, p := range res.Pages {
			path := pagePath(f.OutputBase, p.Number)
			if err := writeOutput(path, p.PNG); err != nil {
				return paths, err
			}
			paths = append(paths, path)
		}
		return paths, nil
	}
}

// pagePath names page n of a document, 1-based.
func pagePath(outputBase string, n int) string {
	return fmt.Sprintf("%s_%d.png", outputBase, n)
}

func writeOutput(path string, data []byte) error {
	if err := os.WriteFile(path, data, filePermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return nil
}

// printResults outputs render results and returns the failure count.
func printResults(results []RenderResult, quiet, verbose bool, env *Environment) int {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}
		if quiet {
			continue
		}
		for _, out := range r.Outputs {
			if verbose {
				fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, out, r.Duration.Round(time.Millisecond))
			} else {
				fmt.Fprintf(env.Stdout, "Created %s\n", out)
			}
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", len(results)-failed, failed)
	}
	return failed
}

func firstError(results []RenderResult) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}
