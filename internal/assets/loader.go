package assets

// Layout of an asset directory, shared by the embedded and on-disk loaders.
const (
	styleDir    = "styles"
	styleExt    = ".css"
	templateDir = "templates"
	templateExt = ".html"
)

// AssetLoader supplies the sources the document builder turns into a
// watch page: a stylesheet per watch style and the page template.
//
// Names are bare (no directory, no extension). Invalid names yield
// ErrInvalidAssetName; unknown ones yield ErrStyleNotFound or
// ErrTemplateNotFound.
type AssetLoader interface {
	// LoadStyle returns the CSS template for a watch style or the base sheet.
	LoadStyle(name string) (string, error)

	// LoadTemplate returns the HTML template that wraps a rendered body.
	LoadTemplate(name string) (string, error)
}
