package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// Highlight placeholders live in the Unicode Private Use Area so they pass
// through Goldmark untouched and never collide with user text.
const (
	MarkStartPlaceholder = "\uE000" // U+E000
	MarkEndPlaceholder   = "\uE001" // U+E001
)

var (
	crlfOrCR           = regexp.MustCompile(`\r\n?`)
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)
	highlightPattern   = regexp.MustCompile(`==(.+?)==`)
)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// MessagePreprocessor cleans up Markdown typed into a chat client or
// uploaded as a file.
type MessagePreprocessor struct{}

// PreprocessMarkdown strips a leading BOM, normalizes line endings,
// compresses runs of blank lines and marks ==highlights==.
func (p *MessagePreprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}

	content = strings.TrimPrefix(content, "\uFEFF")
	content = crlfOrCR.ReplaceAllString(content, "\n")
	content = multipleBlankLines.ReplaceAllString(content, "\n\n")
	content = highlightPattern.ReplaceAllString(content, MarkStartPlaceholder+"$1"+MarkEndPlaceholder)
	return content
}

// ConvertMarkPlaceholders turns highlight placeholders into <mark> tags.
// It runs on Goldmark output, which keeps the renderer in safe mode.
func ConvertMarkPlaceholders(content string) string {
	return strings.ReplaceAll(
		strings.ReplaceAll(content, MarkStartPlaceholder, "<mark>"),
		MarkEndPlaceholder, "</mark>",
	)
}

// Compile-time interface check.
var _ MarkdownPreprocessor = (*MessagePreprocessor)(nil)
