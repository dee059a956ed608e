// Package config loads the md2watch service configuration from a YAML file,
// an optional .env file and environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	md2watch "github.com/alnah/go-md2watch"
	"github.com/alnah/go-md2watch/internal/engine"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxTokenLength = 256
	MaxAddrLength  = 256
	MaxPathLength  = 4096
	MaxCSSLength   = 64 << 10
)

// Store names accepted by prefs.store.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Environment variables that override file values.
const (
	EnvBotToken   = "BOT_TOKEN"
	EnvEngine     = "MD2WATCH_ENGINE"
	EnvRedisAddr  = "MD2WATCH_REDIS_ADDR"
	EnvHTTPAddr   = "MD2WATCH_HTTP_ADDR"
	EnvLogLevel   = "MD2WATCH_LOG_LEVEL"
	EnvWorkers    = "MD2WATCH_WORKERS"
	EnvBrowserBin = "ROD_BROWSER_BIN"
	EnvChromeBin  = "CHROME_BIN"
)

// Config holds all configuration for the md2watch service.
type Config struct {
	Bot    BotConfig    `yaml:"bot"`
	Render RenderConfig `yaml:"render"`
	Prefs  PrefsConfig  `yaml:"prefs"`
	Cache  CacheConfig  `yaml:"cache"`
	HTTP   HTTPConfig   `yaml:"http"`
	Redis  RedisConfig  `yaml:"redis"`
	Log    LogConfig    `yaml:"log"`
}

// BotConfig configures the Telegram bot. An empty token disables it.
type BotConfig struct {
	Token       string   `yaml:"token"`
	PollTimeout Duration `yaml:"pollTimeout"` // long-poll wait (default 60s)
	Debug       bool     `yaml:"debug"`
}

// RenderConfig configures converters.
type RenderConfig struct {
	Engine       string    `yaml:"engine"`  // rod, chromedp, wkhtml (default rod)
	Workers      int       `yaml:"workers"` // 0 = derived from GOMAXPROCS
	Timeout      Duration  `yaml:"timeout"` // per render (default 30s)
	RenderDelay  *Duration `yaml:"renderDelay"`
	Overlap      *int      `yaml:"overlap"`
	MathJax      *bool     `yaml:"mathJax"`
	Device       string    `yaml:"device"` // device before the user picks one
	BrowserBin   string    `yaml:"browserBin"`
	NoSandbox    bool      `yaml:"noSandbox"`
	WkhtmlToImg  string    `yaml:"wkhtmltoimage"`
	WkhtmlToPDF  string    `yaml:"wkhtmltopdf"`
	AssetPath    string    `yaml:"assetPath"` // empty = embedded assets
	ExtraCSS     string    `yaml:"extraCSS"`
	MaxFileBytes int       `yaml:"maxFileBytes"` // largest uploaded document
}

// PrefsConfig selects where user preferences live.
type PrefsConfig struct {
	Store string   `yaml:"store"` // memory or redis (default memory)
	TTL   Duration `yaml:"ttl"`   // redis only; 0 keeps preferences forever
}

// CacheConfig configures the Redis PDF cache.
type CacheConfig struct {
	Enabled bool     `yaml:"enabled"`
	TTL     Duration `yaml:"ttl"` // default 24h
}

// HTTPConfig configures the HTTP API. An empty address disables it.
type HTTPConfig struct {
	Addr         string   `yaml:"addr"`
	RateLimit    int      `yaml:"rateLimit"`  // requests per window and client; 0 disables
	RateWindow   Duration `yaml:"rateWindow"` // default 1m
	BodyLimit    int      `yaml:"bodyLimit"`  // bytes (default 2 MiB)
	ReadTimeout  Duration `yaml:"readTimeout"`
	WriteTimeout Duration `yaml:"writeTimeout"`
}

// RedisConfig is shared by the preference store, the PDF cache and the
// rate limiter.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LogConfig configures the global logger. An empty file logs to stderr only.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	Compress   bool   `yaml:"compress"`
	Console    bool   `yaml:"console"` // human-readable output
}

// Defaults.
const (
	DefaultPollTimeout  = 60 * time.Second
	DefaultCacheTTL     = 24 * time.Hour
	DefaultRateWindow   = time.Minute
	DefaultBodyLimit    = 2 << 20
	DefaultHTTPTimeout  = 60 * time.Second
	DefaultMaxFileBytes = md2watch.MaxMarkdownBytes
	DefaultLogLevel     = "info"
	DefaultLogMaxSizeMB = 100
	DefaultLogBackups   = 3
	DefaultLogMaxAge    = 28
)

// DefaultConfig returns a configuration with every default applied:
// rod engine, in-memory preferences, cache and HTTP disabled.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills every unset field.
func (c *Config) applyDefaults() {
	if c.Bot.PollTimeout == 0 {
		c.Bot.PollTimeout = Duration(DefaultPollTimeout)
	}

	r := &c.Render
	if r.Engine == "" {
		r.Engine = engine.DefaultName
	}
	if r.Timeout == 0 {
		r.Timeout = Duration(engine.DefaultTimeout)
	}
	if r.RenderDelay == nil {
		d := Duration(md2watch.DefaultRenderDelay)
		r.RenderDelay = &d
	}
	if r.Overlap == nil {
		o := md2watch.DefaultOverlap
		r.Overlap = &o
	}
	if r.MathJax == nil {
		on := true
		r.MathJax = &on
	}
	if r.Device == "" {
		r.Device = md2watch.DefaultDeviceKey
	}
	if r.MaxFileBytes == 0 {
		r.MaxFileBytes = DefaultMaxFileBytes
	}

	if c.Prefs.Store == "" {
		c.Prefs.Store = StoreMemory
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = Duration(DefaultCacheTTL)
	}

	h := &c.HTTP
	if h.RateWindow == 0 {
		h.RateWindow = Duration(DefaultRateWindow)
	}
	if h.BodyLimit == 0 {
		h.BodyLimit = DefaultBodyLimit
	}
	if h.ReadTimeout == 0 {
		h.ReadTimeout = Duration(DefaultHTTPTimeout)
	}
	if h.WriteTimeout == 0 {
		h.WriteTimeout = Duration(DefaultHTTPTimeout)
	}

	l := &c.Log
	if l.Level == "" {
		l.Level = DefaultLogLevel
	}
	if l.MaxSizeMB == 0 {
		l.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if l.MaxBackups == 0 {
		l.MaxBackups = DefaultLogBackups
	}
	if l.MaxAgeDays == 0 {
		l.MaxAgeDays = DefaultLogMaxAge
	}
}

// Validate checks ranges and names. Called by Load and LoadConfig, but
// available for callers that build a Config by hand.
func (c *Config) Validate() error {
	if err := validateFieldLength("bot.token", c.Bot.Token, MaxTokenLength); err != nil {
		return err
	}
	if c.Bot.PollTimeout < 0 {
		return invalid("bot.pollTimeout", "must not be negative, got %s", c.Bot.PollTimeout)
	}

	r := c.Render
	if !engine.IsValidName(r.Engine) {
		return invalid("render.engine", "%q (must be one of %s)", r.Engine, strings.Join(engine.Names(), ", "))
	}
	if r.Workers < 0 {
		return invalid("render.workers", "must not be negative, got %d", r.Workers)
	}
	if r.Timeout <= 0 {
		return invalid("render.timeout", "must be positive, got %s", r.Timeout)
	}
	if r.RenderDelay != nil && *r.RenderDelay < 0 {
		return invalid("render.renderDelay", "must not be negative, got %s", *r.RenderDelay)
	}
	if r.Overlap != nil && (*r.Overlap < 0 || *r.Overlap > md2watch.MaxOverlap()) {
		return invalid("render.overlap", "must be between 0 and %d, got %d", md2watch.MaxOverlap(), *r.Overlap)
	}
	if _, err := md2watch.LookupDevice(r.Device); err != nil {
		return invalid("render.device", "%q (must be one of %s)", r.Device, strings.Join(md2watch.DeviceKeys(), ", "))
	}
	if r.MaxFileBytes < 0 || r.MaxFileBytes > md2watch.MaxMarkdownBytes {
		return invalid("render.maxFileBytes", "must be between 0 and %d, got %d", md2watch.MaxMarkdownBytes, r.MaxFileBytes)
	}
	for field, value := range map[string]string{
		"render.browserBin":    r.BrowserBin,
		"render.wkhtmltoimage": r.WkhtmlToImg,
		"render.wkhtmltopdf":   r.WkhtmlToPDF,
		"render.assetPath":     r.AssetPath,
		"log.file":             c.Log.File,
	} {
		if err := validateFieldLength(field, value, MaxPathLength); err != nil {
			return err
		}
	}
	if err := validateFieldLength("render.extraCSS", r.ExtraCSS, MaxCSSLength); err != nil {
		return err
	}

	switch c.Prefs.Store {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.Addr == "" {
			return invalid("prefs.store", "redis requires redis.addr")
		}
	default:
		return invalid("prefs.store", "%q (must be memory or redis)", c.Prefs.Store)
	}
	if c.Prefs.TTL < 0 {
		return invalid("prefs.ttl", "must not be negative, got %s", c.Prefs.TTL)
	}

	if c.Cache.Enabled && c.Redis.Addr == "" {
		return invalid("cache.enabled", "requires redis.addr")
	}
	if c.Cache.TTL < 0 {
		return invalid("cache.ttl", "must not be negative, got %s", c.Cache.TTL)
	}

	if err := validateFieldLength("http.addr", c.HTTP.Addr, MaxAddrLength); err != nil {
		return err
	}
	if c.HTTP.RateLimit < 0 {
		return invalid("http.rateLimit", "must not be negative, got %d", c.HTTP.RateLimit)
	}
	if c.HTTP.BodyLimit < 0 {
		return invalid("http.bodyLimit", "must not be negative, got %d", c.HTTP.BodyLimit)
	}
	if err := validateFieldLength("redis.addr", c.Redis.Addr, MaxAddrLength); err != nil {
		return err
	}
	if c.Redis.DB < 0 {
		return invalid("redis.db", "must not be negative, got %d", c.Redis.DB)
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		return invalid("log.level", "%q", c.Log.Level)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return invalid("log", "rotation limits must not be negative")
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func invalid(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidValue, field, fmt.Sprintf(format, args...))
}

// ApplyEnv overrides file values with the environment.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvBotToken); ok {
		c.Bot.Token = v
	}
	if v, ok := os.LookupEnv(EnvEngine); ok {
		c.Render.Engine = v
	}
	if v, ok := os.LookupEnv(EnvRedisAddr); ok {
		c.Redis.Addr = v
	}
	if v, ok := os.LookupEnv(EnvHTTPAddr); ok {
		c.HTTP.Addr = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := os.LookupEnv(EnvWorkers); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return invalid(EnvWorkers, "%q is not a number", v)
		}
		c.Render.Workers = n
	}
	// The go-rod variable wins; CHROME_BIN is the common container name.
	if c.Render.BrowserBin == "" {
		if v := os.Getenv(EnvBrowserBin); v != "" {
			c.Render.BrowserBin = v
		} else if v := os.Getenv(EnvChromeBin); v != "" {
			c.Render.BrowserBin = v
		}
	}
	return nil
}

// LoadDotEnv loads variables from env files into the process environment.
// Variables already set are kept and missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if !fileExists(p) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrConfigParse, p, err)
		}
	}
	return nil
}

// Load returns the configuration for the service: the file named by
// nameOrPath (optional), then .env, then the environment.
func Load(nameOrPath string) (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	if nameOrPath == "" {
		cfg := DefaultConfig()
		if err := cfg.ApplyEnv(); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return LoadConfig(nameOrPath)
}

// LoadConfig loads configuration from a file path or config name, then
// applies environment overrides.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := unmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	cfg.applyDefaults()

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-md2watch/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-md2watch", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// RenderFingerprint describes the converter settings that change rendered
// output but are not part of a request. Output caches mix it into their
// keys.
func (c *Config) RenderFingerprint() string {
	r := c.Render
	delay := md2watch.DefaultRenderDelay
	if r.RenderDelay != nil {
		delay = r.RenderDelay.Std()
	}
	mathJax := true
	if r.MathJax != nil {
		mathJax = *r.MathJax
	}
	return fmt.Sprintf("mathjax=%t\x00delay=%s\x00assets=%s\x00css=%s", mathJax, delay, r.AssetPath, r.ExtraCSS)
}

// ConverterOptions translates the render section into converter options.
func (c *Config) ConverterOptions() []md2watch.Option {
	r := c.Render
	opts := []md2watch.Option{
		md2watch.WithEngineName(r.Engine),
		md2watch.WithNoSandbox(r.NoSandbox),
		md2watch.WithBrowserBin(r.BrowserBin),
		md2watch.WithWkhtmlBins(r.WkhtmlToImg, r.WkhtmlToPDF),
	}
	if r.Timeout > 0 {
		opts = append(opts, md2watch.WithTimeout(r.Timeout.Std()))
	}
	if r.RenderDelay != nil {
		opts = append(opts, md2watch.WithRenderDelay(r.RenderDelay.Std()))
	}
	if r.Overlap != nil {
		opts = append(opts, md2watch.WithOverlap(*r.Overlap))
	}
	if r.MathJax != nil {
		opts = append(opts, md2watch.WithMathJax(*r.MathJax))
	}
	if r.AssetPath != "" {
		opts = append(opts, md2watch.WithAssetPath(r.AssetPath))
	}
	if r.ExtraCSS != "" {
		opts = append(opts, md2watch.WithExtraCSS(r.ExtraCSS))
	}
	return opts
}
