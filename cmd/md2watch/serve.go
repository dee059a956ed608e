package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	md2watch "github.com/alnah/go-md2watch"
	"github.com/alnah/go-md2watch/internal/bot"
	"github.com/alnah/go-md2watch/internal/cache"
	"github.com/alnah/go-md2watch/internal/config"
	"github.com/alnah/go-md2watch/internal/logging"
	"github.com/alnah/go-md2watch/internal/prefs"
	"github.com/alnah/go-md2watch/internal/server"
)

// Sentinel errors for the serve command.
var (
	ErrNothingToServe = errors.New("nothing to serve: neither the bot nor the HTTP API is configured")
	ErrRedis          = errors.New("redis unavailable")
)

const redisPingTimeout = 3 * time.Second

// Telegram is a connected bot account.
type Telegram interface {
	bot.Client
	// Updates starts long polling; the channel closes after Stop.
	Updates(pollTimeout time.Duration) <-chan tgbotapi.Update
	Stop()
}

// telegramAPI adapts *tgbotapi.BotAPI to Telegram.
type telegramAPI struct {
	*tgbotapi.BotAPI
}

func (t telegramAPI) Updates(pollTimeout time.Duration) <-chan tgbotapi.Update {
	return bot.Poll(t.BotAPI, pollTimeout)
}

func (t telegramAPI) Stop() { t.StopReceivingUpdates() }

func connectTelegram(token string, debug bool) (Telegram, error) {
	api, err := bot.Connect(token, debug)
	if err != nil {
		return nil, err
	}
	return telegramAPI{api}, nil
}

// runServeCmd runs the Telegram bot and the HTTP API until ctx is done.
func runServeCmd(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if err := validateWorkers(flags.engine.workers); err != nil {
		return err
	}

	cfg, err := loadConfig(env, flags.common.config, flags.engine)
	if err != nil {
		return err
	}
	applyServeFlags(cfg, flags)
	if cfg.Bot.Token == "" && cfg.HTTP.Addr == "" {
		return withHint(ErrNothingToServe, cfg)
	}

	logging.Init(logOptions(cfg, env))
	defer func() { _ = logging.Close() }()

	rdb, err := connectRedis(ctx, cfg.Redis)
	if err != nil {
		return withHint(err, cfg)
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	renderer := env.NewRenderer(cfg)
	defer func() { _ = renderer.Close() }()

	var pdfCache *cache.PDFCache
	if cfg.Cache.Enabled {
		pdfCache = cache.New(rdb, cfg.Cache.TTL.Std(), cfg.RenderFingerprint())
	}

	var srv *server.Server
	if cfg.HTTP.Addr != "" {
		if srv, err = newHTTPServer(cfg, renderer, pdfCache); err != nil {
			return err
		}
	}

	var (
		tg Telegram
		b  *bot.Bot
	)
	if cfg.Bot.Token != "" {
		if tg, err = env.ConnectTelegram(cfg.Bot.Token, cfg.Bot.Debug); err != nil {
			return err
		}
		b, err = bot.New(tg, renderer, newPrefsStore(cfg, rdb), bot.Options{
			MaxInFlight:  2 * renderer.Size(),
			MaxFileBytes: cfg.Render.MaxFileBytes,
			EngineName:   cfg.Render.Engine,
			Cache:        pdfCache,
		})
		if err != nil {
			return err
		}
		if err := bot.RegisterCommands(tg); err != nil {
			logging.Warn("registering bot commands", "error", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	if srv != nil {
		g.Go(func() error {
			if err := srv.Serve(gctx, cfg.HTTP.Addr); err != nil {
				return fmt.Errorf("http: %w", err)
			}
			return nil
		})
	}
	if b != nil {
		updates := tg.Updates(cfg.Bot.PollTimeout.Std())
		g.Go(func() error {
			<-gctx.Done()
			tg.Stop()
			return nil
		})
		g.Go(func() error { return b.Run(gctx, updates) })
	}

	logging.Info("md2watch serving",
		"version", Version,
		"engine", cfg.Render.Engine,
		"workers", renderer.Size(),
		"bot", cfg.Bot.Token != "",
		"http", cfg.HTTP.Addr,
		"cache", pdfCache != nil,
	)

	err = g.Wait()
	logging.Info("md2watch stopped")
	return err
}

// applyServeFlags overrides the config with serve-only flags.
func applyServeFlags(cfg *config.Config, f *serveFlags) {
	if f.httpAddr != "" {
		cfg.HTTP.Addr = f.httpAddr
	}
	if f.noBot {
		cfg.Bot.Token = ""
	}
	if f.common.verbose {
		cfg.Log.Level = "debug"
	}
	if f.common.quiet {
		cfg.Log.Level = "error"
	}
	if f.logConsole {
		cfg.Log.Console = true
	}
}

func logOptions(cfg *config.Config, env *Environment) logging.Options {
	l := cfg.Log
	return logging.Options{
		Level:      l.Level,
		File:       l.File,
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAgeDays: l.MaxAgeDays,
		Compress:   l.Compress,
		Console:    l.Console,
		Stderr:     env.Stderr,
	}
}

// connectRedis returns nil when no address is configured.
func connectRedis(ctx context.Context, rc config.RedisConfig) (*redis.Client, error) {
	if rc.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})
	pctx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrRedis, rc.Addr, err)
	}
	logging.Info("redis connected", "addr", rc.Addr, "db", rc.DB)
	return rdb, nil
}

// newPrefsStore picks the preference store named by prefs.store.
// Validate guarantees rdb is set for the redis store.
func newPrefsStore(cfg *config.Config, rdb *redis.Client) prefs.Store {
	if cfg.Prefs.Store == config.StoreRedis && rdb != nil {
		return prefs.NewRedisStore(rdb, cfg.Prefs.TTL.Std())
	}
	return prefs.NewMemoryStore()
}

func newHTTPServer(cfg *config.Config, r md2watch.Renderer, pdfCache *cache.PDFCache) (*server.Server, error) {
	h := cfg.HTTP
	opts := server.Options{
		Renderer:      r,
		Cache:         pdfCache,
		EngineName:    cfg.Render.Engine,
		DefaultDevice: cfg.Render.Device,
		RateLimit:     h.RateLimit,
		RateWindow:    h.RateWindow.Std(),
		BodyLimit:     h.BodyLimit,
		ReadTimeout:   h.ReadTimeout.Std(),
		WriteTimeout:  h.WriteTimeout.Std(),
	}
	if h.RateLimit > 0 {
		opts.LimiterStorage = server.NewLimiterStorage(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	}
	return server.New(opts)
}
