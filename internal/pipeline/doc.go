// Package pipeline turns Markdown into a standalone HTML document sized for
// a watch display.
//
// The stages are:
//   - Markdown preprocessing (line endings, blank lines, ==highlight== marks)
//   - Markdown to HTML conversion via Goldmark with chroma highlighting
//   - Document assembly: the embedded page template, the base stylesheet
//     and one watch style rendered against the device geometry
//   - Optional extra CSS injection
//
// Rasterizing and printing the document is handled by internal/engine.
package pipeline
