// Package logging holds the process-wide zerolog logger.
//
// Output goes to stderr (JSON, or human-readable when Console is set) and
// optionally to a size-rotated file. Request-scoped loggers carry an xid
// request id and travel in contexts, where the library picks them up with
// zerolog.Ctx.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures Init.
type Options struct {
	Level      string
	File       string // empty disables file output
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	Console    bool      // human-readable stderr output
	Stderr     io.Writer // defaults to os.Stderr
}

var (
	mu     sync.RWMutex
	logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	closer io.Closer
)

// Init replaces the global logger. It closes the file of a previous Init.
func Init(opts Options) {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	if opts.Console {
		stderr = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.TimeOnly}
	}

	writers := []io.Writer{stderr}
	var file *lumberjack.Logger
	if opts.File != "" {
		file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}
		writers = append(writers, file)
	}

	l := zerolog.New(zerolog.SyncWriter(zerolog.MultiLevelWriter(writers...))).
		With().Timestamp().Logger().
		Level(parseLevel(opts.Level))

	mu.Lock()
	prev := closer
	logger = l
	closer = nil
	if file != nil {
		closer = file
	}
	mu.Unlock()

	if prev != nil {
		_ = prev.Close()
	}
}

// Close flushes and closes the log file, if any.
func Close() error {
	mu.Lock()
	c := closer
	closer = nil
	mu.Unlock()
	if c == nil {
		return nil
	}
	return c.Close()
}

// Logger returns the global logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetLoggerForTest swaps the global logger.
func SetLoggerForTest(l zerolog.Logger) {
	mu.Lock()
	logger = l
	mu.Unlock()
}

// SetLogLevel changes the level of the global logger. Unknown levels mean info.
func SetLogLevel(level string) {
	mu.Lock()
	logger = logger.Level(parseLevel(level))
	mu.Unlock()
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// Debug logs msg with key-value pairs at debug level.
func Debug(msg string, kv ...any) { log(zerolog.DebugLevel, msg, kv) }

// Info logs msg with key-value pairs at info level.
func Info(msg string, kv ...any) { log(zerolog.InfoLevel, msg, kv) }

// Warn logs msg with key-value pairs at warn level.
func Warn(msg string, kv ...any) { log(zerolog.WarnLevel, msg, kv) }

// Error logs msg with key-value pairs at error level.
func Error(msg string, kv ...any) { log(zerolog.ErrorLevel, msg, kv) }

func log(level zerolog.Level, msg string, kv []any) {
	l := Logger()
	e := l.WithLevel(level)
	if len(kv) > 0 {
		e = e.Fields(kv)
	}
	e.Msg(msg)
}

// NewRequestID returns a sortable, globally unique request id.
func NewRequestID() string {
	return xid.New().String()
}

// WithRequest returns ctx carrying a child of the global logger tagged with
// requestID and the extra key-value pairs.
func WithRequest(ctx context.Context, requestID string, kv ...any) context.Context {
	c := Logger().With().Str("request_id", requestID)
	if len(kv) > 0 {
		c = c.Fields(kv)
	}
	l := c.Logger()
	return l.WithContext(ctx)
}

// FromContext returns the logger carried by ctx, or the global logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	l := Logger()
	return &l
}
