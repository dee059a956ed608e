// Package assets provides the CSS styles and the HTML document template
// used to lay Markdown out on a watch display.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in styles)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// EmbeddedLoader ships the base stylesheet, the three watch styles
// (minimalistic, modern, classic) and the document template.
//
// AssetResolver is the loader used by the document builder. A custom
// directory can override any single asset while the rest fall back to
// the embedded copies.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   ├── base.css             # layout shared by every style
//	│   └── {name}.css           # per-style accents (e.g., modern.css)
//	└── templates/
//	    └── document.html        # page skeleton
//
// Styles are text/template sources rendered against the document
// geometry, so a custom style can reference {{.Width}}, {{.Padding}} and
// the other fields of pipeline.DocumentData.
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
