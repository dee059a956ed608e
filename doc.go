// Package md2watch renders Markdown into PNG pages and PDFs sized for
// smartwatch screens.
//
// # Quick Start
//
// Create a converter, render a request, and close when done:
//
//	conv, err := md2watch.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	req := md2watch.NewRequest("# Hello\n\nWorld", md2watch.DefaultDevice())
//	req.Layout = md2watch.LayoutMultipage
//
//	result, err := conv.Render(ctx, req)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, page := range result.Pages {
//	    os.WriteFile(fmt.Sprintf("page_%d.png", page.Number), page.PNG, 0644)
//	}
//
// RenderPDF prints the same document as a PDF, and Preview returns the
// HTML without starting a browser.
//
// # Rendering Pipeline
//
// A render follows these stages:
//
//  1. Markdown preprocessing (BOM, line endings, ==highlight== syntax)
//  2. Markdown to HTML via Goldmark (GFM, footnotes, Chroma highlighting)
//  3. Document assembly: template style, device width, font scale, theme
//  4. Capture through an Engine (rod, chromedp or wkhtml)
//  5. Pagination, for the multipage layout
//
// # Layouts
//
// LayoutContinuous captures one page of exactly the device size; content
// below the screen is cut off. LayoutMultipage captures the whole document
// at device width and cuts it into device-height pages. Consecutive pages
// share a few rows (WithOverlap, default 10) so that a line cut by one page
// edge is readable on the next page:
//
//	page 1: rows [0, 394)
//	page 2: rows [384, 778)
//	page 3: rows [768, 1000)
//
// Paginate and PageBands expose the cutting step on its own.
//
// # Parallel Processing
//
// For servers and bots, use ConverterPool to bound the number of browsers:
//
//	pool := md2watch.NewConverterPool(md2watch.ResolvePoolSize(0))
//	defer pool.Close()
//
//	result, err := pool.Render(ctx, req)
//
// # Browser Requirements
//
// The rod and chromedp engines require Chrome/Chromium. The go-rod library
// downloads a managed Chromium on first run (~/.cache/rod/browser/). Use
// WithBrowserBin to point at a custom binary and WithNoSandbox in
// containers. The wkhtml engine needs wkhtmltoimage and wkhtmltopdf on PATH.
package md2watch
