package main

import (
	"errors"
	"os"

	md2watch "github.com/alnah/go-md2watch"
	"github.com/alnah/go-md2watch/internal/config"
	"github.com/alnah/go-md2watch/internal/engine"
)

// Exit codes for the md2watch CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful command
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Rendering engine errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Usage/config/validation errors (exit 2). Checked first: geometry and
	// configuration errors can also carry engine sentinels.
	if md2watch.IsValidationError(err) ||
		errors.Is(err, md2watch.ErrConfiguration) ||
		errors.Is(err, engine.ErrUnknownEngine) ||
		errors.Is(err, engine.ErrGeometry) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrNothingToServe) ||
		errors.Is(err, ErrUnsupportedShell) {
		return ExitUsage
	}

	// Engine errors (exit 4)
	if errors.Is(err, engine.ErrEngine) ||
		errors.Is(err, md2watch.ErrPDFInvalid) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	return ExitGeneral
}
