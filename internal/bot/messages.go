package bot

import "fmt"

// Commands.
const (
	cmdStart    = "start"
	cmdHelp     = "help"
	cmdModel    = "model"
	cmdPadding  = "padding"
	cmdFontSize = "fontsize"
	cmdTheme    = "theme"
	cmdLayout   = "layout"
	cmdTemplate = "template"
	cmdFont     = "font"
	cmdSettings = "settings"
	cmdPreview  = "preview"
	cmdPDF      = "pdf"
)

// User-facing replies.
const (
	msgWelcome = "Welcome to md2watch.\n" +
		"Use /model to select your watch model.\n" +
		"Use /fontsize, /theme, /layout and /template to set appearance.\n" +
		"Set padding with /padding <value> (in pixels).\n" +
		"Override fonts with /font <body|header|code> <family|reset>.\n" +
		"Send Markdown text or a .txt/.md file to generate an image.\n" +
		"For an HTML preview use /preview <Markdown>, for a PDF use /pdf <Markdown>.\n" +
		"/settings shows your current settings."

	msgSelectModel    = "Select your watch model"
	msgSelectFontSize = "Select font size"
	msgSelectTheme    = "Select theme"
	msgSelectLayout   = "Select layout"
	msgSelectTemplate = "Select template"

	msgNoModel        = "Select a watch model first using /model"
	msgPaddingUsage   = "Usage: /padding <value>"
	msgPaddingInteger = "Invalid value. Please provide an integer."
	msgFontUsage      = "Usage: /font <body|header|code> <family|reset>"
	msgFontInvalid    = "Invalid font family. Use letters, digits, spaces, dashes and quotes only."
	msgPreviewUsage   = "Provide Markdown text after /preview"
	msgPDFUsage       = "Provide Markdown text after /pdf"
	msgUnknownCommand = "Unknown command. Use /help to see what I can do."
	msgUnknownOption  = "Unknown option"

	msgUploadType    = "Upload a .txt or .md file"
	msgDownloadError = "Error downloading file"
	msgNotUTF8       = "The file is not UTF-8 text"
	msgEmpty         = "The Markdown is empty"
	msgTimeout       = "Rendering took too long. Try a shorter text."
	msgError         = "Error processing request"

	captionPreview = "HTML Preview"
	captionPDF     = "PDF created"

	filePreview = "preview.html"
	filePDF     = "output.pdf"
)

func msgPaddingRange(limit int) string {
	return fmt.Sprintf("Padding must be between 0 and %d px", limit)
}

func msgPaddingSet(px int) string {
	return fmt.Sprintf("Padding set to %d px", px)
}

func msgFileTooLarge(limit int) string {
	if limit >= 1<<10 {
		return fmt.Sprintf("The file is too large (limit %d KiB)", limit>>10)
	}
	return fmt.Sprintf("The file is too large (limit %d bytes)", limit)
}

func pageFileName(n int) string {
	return fmt.Sprintf("watch_markdown_%d.png", n)
}

func pageCaption(n int, device string) string {
	return fmt.Sprintf("Page %d (%s)", n, device)
}
