package md2watch

import "github.com/alnah/go-md2watch/internal/engine"

// Engine turns HTML documents into PNG rasters and PDFs.
// Implementations must honour context cancellation.
type Engine = engine.Engine

// Geometry is the viewport an Engine renders into.
type Geometry = engine.Geometry

// Built-in engine names.
const (
	EngineRod      = engine.NameRod
	EngineChromedp = engine.NameChromedp
	EngineWkhtml   = engine.NameWkhtml
)

// EngineNames lists the built-in backends accepted by WithEngineName.
func EngineNames() []string {
	return engine.Names()
}

// IsValidEngineName reports whether name selects a built-in backend.
// Empty selects the default.
func IsValidEngineName(name string) bool {
	return engine.IsValidName(name)
}
