package assets

// Built-in asset names.
const (
	// BaseStyleName is the stylesheet applied before every watch style.
	BaseStyleName = "base"

	// DocumentTemplateName is the page skeleton wrapping the rendered body.
	DocumentTemplateName = "document"

	// DefaultStyleName is the watch style used when none is requested.
	DefaultStyleName = "minimalistic"
)

// StyleNames lists the built-in watch styles in menu order.
func StyleNames() []string {
	return []string{"minimalistic", "modern", "classic"}
}

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a CSS file by name using the default embedded loader.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadTemplate loads an HTML template by name using the default embedded loader.
func LoadTemplate(name string) (string, error) {
	return defaultLoader.LoadTemplate(name)
}
