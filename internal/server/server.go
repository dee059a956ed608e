// Package server exposes md2watch over HTTP with Fiber.
package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	memoryStorage "github.com/gofiber/storage/memory/v2"
	redisStorage "github.com/gofiber/storage/redis/v2"

	md2watch "github.com/alnah/go-md2watch"
	"github.com/alnah/go-md2watch/internal/cache"
	"github.com/alnah/go-md2watch/internal/logging"
)

// Defaults.
const (
	DefaultBodyLimit       = 2 << 20
	DefaultRateWindow      = time.Minute
	DefaultShutdownTimeout = 10 * time.Second
)

// ErrNilRenderer is returned by New without a renderer.
var ErrNilRenderer = errors.New("server: nil renderer")

// Options configures the HTTP API. Zero values select defaults.
type Options struct {
	Renderer md2watch.Renderer
	// Cache stores PDFs; nil disables caching.
	Cache      *cache.PDFCache
	EngineName string
	// DefaultDevice is used when a request names no device.
	DefaultDevice string
	// RateLimit is requests per RateWindow and client; 0 disables limiting.
	RateLimit  int
	RateWindow time.Duration
	// LimiterStorage holds limiter counters (default in-memory).
	LimiterStorage fiber.Storage
	BodyLimit      int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// Server is the HTTP API.
type Server struct {
	app  *fiber.App
	opts Options
}

// New builds the Fiber app and its routes.
func New(opts Options) (*Server, error) {
	if opts.Renderer == nil {
		return nil, ErrNilRenderer
	}
	if opts.DefaultDevice == "" {
		opts.DefaultDevice = md2watch.DefaultDeviceKey
	}
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = DefaultBodyLimit
	}
	if opts.RateWindow <= 0 {
		opts.RateWindow = DefaultRateWindow
	}
	if opts.LimiterStorage == nil {
		opts.LimiterStorage = memoryStorage.New()
	}

	app := fiber.New(fiber.Config{
		AppName:               "md2watch",
		DisableStartupMessage: true,
		BodyLimit:             opts.BodyLimit,
		ReadTimeout:           opts.ReadTimeout,
		WriteTimeout:          opts.WriteTimeout,
		ErrorHandler:          errorHandler,
	})

	s := &Server{app: app, opts: opts}
	s.registerMiddleware()
	s.registerRoutes()

	// Everything unmatched gets a JSON 404.
	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not Found")
	})
	return s, nil
}

// App returns the underlying Fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	logging.Info("http listening", "addr", addr)
	return s.app.Listen(addr)
}

// Serve listens on addr until ctx is done, then shuts down, giving
// in-flight requests DefaultShutdownTimeout to finish. Call it once.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ready := make(chan struct{})
	s.app.Hooks().OnListen(func(fiber.ListenData) error {
		close(ready)
		return nil
	})

	errc := make(chan error, 1)
	go func() { errc <- s.Listen(addr) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	// Shutting down before the listener exists would leave it running.
	select {
	case <-ready:
	case err := <-errc:
		return err
	}

	logging.Info("http shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	if err := s.Shutdown(sctx); err != nil {
		return err
	}
	return <-errc
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerMiddleware() {
	s.app.Use(fiberrecover.New())

	s.app.Use(requestid.New(requestid.Config{
		Generator: logging.NewRequestID,
	}))

	s.app.Use(healthcheck.New())

	s.app.Use(requestLogger)

	if s.opts.RateLimit > 0 {
		s.app.Use(limiter.New(limiter.Config{
			Max:               s.opts.RateLimit,
			Expiration:        s.opts.RateWindow,
			LimiterMiddleware: limiter.SlidingWindow{},
			Storage:           s.opts.LimiterStorage,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				logging.FromContext(c.UserContext()).Warn().Str("ip", c.IP()).Msg("rate limit exceeded")
				return errorJSON(c, fiber.StatusTooManyRequests, "Too Many Requests")
			},
		}))
	}
}

func (s *Server) registerRoutes() {
	v1 := s.app.Group("/v1")
	v1.Get("/devices", s.handleDevices)
	v1.Post("/render", s.handleRender)
	v1.Post("/pdf", s.handlePDF)
	v1.Post("/preview", s.handlePreview)
}

// requestLogger attaches a request-scoped logger to the user context and
// logs every completed request.
func requestLogger(c *fiber.Ctx) error {
	rid, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
	if rid == "" {
		rid = logging.NewRequestID()
	}
	c.SetUserContext(logging.WithRequest(c.UserContext(), rid, "method", c.Method(), "path", c.Path()))

	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	} else if err != nil {
		status = fiber.StatusInternalServerError
	}
	logging.FromContext(c.UserContext()).Info().
		Int("status", status).
		Dur("elapsed", time.Since(start)).
		Msg("request")
	return err
}

// errorHandler renders every error as {"error": {"code", "message"}}.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal Server Error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		logging.FromContext(c.UserContext()).Error().Err(err).Int("status", code).Msg("request failed")
	}
	return errorJSON(c, code, msg)
}

func errorJSON(c *fiber.Ctx, code int, msg string) error {
	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": msg,
		},
	})
}

// NewLimiterStorage returns Redis-backed limiter storage when addr is set,
// and in-memory storage otherwise or when Redis cannot be reached.
func NewLimiterStorage(addr, password string, db int) (storage fiber.Storage) {
	if addr == "" {
		return memoryStorage.New()
	}
	defer func() {
		if r := recover(); r != nil {
			logging.Error("redis limiter storage unavailable, falling back to memory", "addr", addr, "panic", r)
			storage = memoryStorage.New()
		}
	}()
	storage = redisStorage.New(redisStorage.Config{
		Addrs:    []string{addr},
		Password: password,
		Database: db,
	})
	logging.Info("using redis for rate limiting", "addr", addr, "db", db)
	return storage
}
