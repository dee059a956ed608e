package assets

import (
	"embed"
	"fmt"
	"io/fs"
)

// watchAssets holds the base stylesheet, the watch styles and the
// document template compiled into the binary.
//
//go:embed styles/*.css templates/*.html
var watchAssets embed.FS

// EmbeddedLoader serves the watch styles and the document template that
// ship with the binary. It is the fallback behind AssetResolver.
type EmbeddedLoader struct {
	fsys fs.FS
}

// NewEmbeddedLoader returns a loader over the compiled-in assets.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{fsys: watchAssets}
}

// LoadStyle returns the text/template source of a watch style such as
// "modern", or of BaseStyleName.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	return e.read(styleDir, styleExt, name, ErrStyleNotFound)
}

// LoadTemplate returns the HTML skeleton a watch page is rendered into.
func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	return e.read(templateDir, templateExt, name, ErrTemplateNotFound)
}

func (e *EmbeddedLoader) read(dir, ext, name string, notFound error) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	// embed.FS paths always use forward slashes.
	content, err := fs.ReadFile(e.fsys, dir+"/"+name+ext)
	if err != nil {
		return "", fmt.Errorf("%w: %q", notFound, name)
	}
	return string(content), nil
}

var _ AssetLoader = (*EmbeddedLoader)(nil)
