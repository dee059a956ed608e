package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	md2watch "github.com/alnah/go-md2watch"
	"github.com/alnah/go-md2watch/internal/config"
	"github.com/alnah/go-md2watch/internal/engine"
	"github.com/alnah/go-md2watch/internal/hints"
)

// hintedError appends an actionable hint to an error message.
type hintedError struct {
	err  error
	hint string
}

func (e *hintedError) Error() string { return e.err.Error() + e.hint }
func (e *hintedError) Unwrap() error { return e.err }

// withHint attaches the hint matching err, if any. cfg may be nil.
func withHint(err error, cfg *config.Config) error {
	if err == nil {
		return nil
	}
	var h *hintedError
	if errors.As(err, &h) {
		return err
	}
	if hint := hintFor(err, cfg); hint != "" {
		return &hintedError{err: err, hint: hint}
	}
	return err
}

func hintFor(err error, cfg *config.Config) string {
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound([]string{userConfigPath()})
	case errors.Is(err, md2watch.ErrUnknownDevice):
		return hints.ForAvailable(md2watch.DeviceKeys())
	case errors.Is(err, engine.ErrUnknownEngine):
		return hints.ForAvailable(md2watch.EngineNames())
	case errors.Is(err, engine.ErrBrowserConnect):
		if cfg == nil {
			return hints.ForBrowserConnect(engine.DefaultName, false)
		}
		return hints.ForBrowserConnect(cfg.Render.Engine, cfg.Render.NoSandbox)
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	case errors.Is(err, ErrNothingToServe):
		return hints.ForServe()
	case errors.Is(err, ErrRedis):
		if cfg == nil {
			return hints.ForRedis("")
		}
		return hints.ForRedis(cfg.Redis.Addr)
	}
	return ""
}

// userConfigPath is where a named config is searched last.
func userConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "go-md2watch", "config.yaml")
}
