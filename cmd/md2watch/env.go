package main

import (
	"io"
	"os"
	"time"

	md2watch "github.com/alnah/go-md2watch"
	"github.com/alnah/go-md2watch/internal/config"
)

// Renderer is a concurrency-safe md2watch renderer that owns resources.
type Renderer interface {
	md2watch.Renderer
	Size() int
	Close() error
}

// Compile-time interface implementation check.
var _ Renderer = (*md2watch.ConverterPool)(nil)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, configuration loading and renderer creation.
type Environment struct {
	Now         func() time.Time
	Stdout      io.Writer
	Stderr      io.Writer
	LoadConfig  func(nameOrPath string) (*config.Config, error)
	NewRenderer func(cfg *config.Config) Renderer
	// ConnectTelegram authenticates the bot token.
	ConnectTelegram func(token string, debug bool) (Telegram, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:             time.Now,
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		LoadConfig:      config.Load,
		NewRenderer:     newPool,
		ConnectTelegram: connectTelegram,
	}
}

// newPool creates a converter pool sized by render.workers.
func newPool(cfg *config.Config) Renderer {
	return md2watch.NewConverterPool(md2watch.ResolvePoolSize(cfg.Render.Workers), cfg.ConverterOptions()...)
}
