// Package bot serves md2watch over Telegram.
//
// Every update is handled on its own goroutine with the sender's
// preferences loaded from a prefs.Store; nothing else is shared between
// updates. The number of updates in flight is bounded, and renders are
// further bounded by the converter pool behind the Renderer.
package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	md2watch "github.com/alnah/go-md2watch"
	"github.com/alnah/go-md2watch/internal/cache"
	"github.com/alnah/go-md2watch/internal/logging"
	"github.com/alnah/go-md2watch/internal/prefs"
)

// Client is the part of the Telegram Bot API the bot uses.
// *tgbotapi.BotAPI implements it.
type Client interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

var _ Client = (*tgbotapi.BotAPI)(nil)

// ErrNilDependency is returned by New when a required dependency is missing.
var ErrNilDependency = errors.New("bot: nil dependency")

// Defaults.
const (
	DefaultMaxInFlight = 8
	downloadTimeout    = 30 * time.Second
)

// Options configures a Bot. Zero values select defaults.
type Options struct {
	// MaxInFlight bounds concurrently handled updates.
	MaxInFlight int
	// MaxFileBytes bounds uploaded documents (default md2watch.MaxMarkdownBytes).
	MaxFileBytes int
	// EngineName keys the PDF cache.
	EngineName string
	// Cache stores PDFs; nil disables caching.
	Cache *cache.PDFCache
	// HTTPClient downloads uploaded documents (default: 30s timeout).
	HTTPClient *http.Client
}

// Bot dispatches Telegram updates to command, callback and content handlers.
type Bot struct {
	client       Client
	renderer     md2watch.Renderer
	store        prefs.Store
	cache        *cache.PDFCache
	engineName   string
	httpClient   *http.Client
	maxFileBytes int
	slots        chan struct{}
	wg           sync.WaitGroup
}

// New creates a Bot.
func New(client Client, renderer md2watch.Renderer, store prefs.Store, opts Options) (*Bot, error) {
	if client == nil || renderer == nil || store == nil {
		return nil, ErrNilDependency
	}
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = DefaultMaxInFlight
	}
	if opts.MaxFileBytes <= 0 {
		opts.MaxFileBytes = md2watch.MaxMarkdownBytes
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: downloadTimeout}
	}
	return &Bot{
		client:       client,
		renderer:     renderer,
		store:        store,
		cache:        opts.Cache,
		engineName:   opts.EngineName,
		httpClient:   opts.HTTPClient,
		maxFileBytes: opts.MaxFileBytes,
		slots:        make(chan struct{}, opts.MaxInFlight),
	}, nil
}

// Run handles updates until ctx is done or updates is closed, then waits
// for in-flight handlers to finish.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) error {
	defer b.wg.Wait()
	logging.Info("bot started")

	for {
		select {
		case <-ctx.Done():
			logging.Info("bot stopping")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			select {
			case b.slots <- struct{}{}:
			case <-ctx.Done():
				return nil
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				defer func() { <-b.slots }()
				b.Handle(ctx, update)
			}()
		}
	}
}

// Handle processes a single update. Panics are logged and swallowed so one
// bad update cannot stop the bot.
func (b *Bot) Handle(ctx context.Context, update tgbotapi.Update) {
	userID, chatID := senderOf(update)
	ctx = logging.WithRequest(ctx, logging.NewRequestID(),
		"update_id", update.UpdateID, "user_id", userID, "chat_id", chatID)
	log := logging.FromContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("update handler panicked")
		}
	}()

	start := time.Now()
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	default:
		return
	}
	log.Debug().Dur("elapsed", time.Since(start)).Msg("update handled")
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	switch {
	case msg.Document != nil:
		b.handleDocument(ctx, msg)
	case msg.IsCommand():
		b.handleCommand(ctx, msg)
	case msg.Text != "":
		b.handleText(ctx, msg)
	}
}

func senderOf(update tgbotapi.Update) (userID, chatID int64) {
	switch {
	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		if q.From != nil {
			userID = q.From.ID
		}
		if q.Message != nil && q.Message.Chat != nil {
			chatID = q.Message.Chat.ID
		}
	case update.Message != nil:
		m := update.Message
		if m.Chat != nil {
			chatID = m.Chat.ID
		}
		userID = chatID
		if m.From != nil {
			userID = m.From.ID
		}
	}
	return userID, chatID
}

// reply sends a plain text message and logs delivery failures.
func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	b.send(ctx, tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(ctx context.Context, c tgbotapi.Chattable) {
	if _, err := b.client.Send(c); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("telegram send failed")
	}
}

func (b *Bot) request(ctx context.Context, c tgbotapi.Chattable) {
	if _, err := b.client.Request(c); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("telegram request failed")
	}
}

// loadPrefs loads the sender's preferences, replying with a failure
// message when the store is unavailable.
func (b *Bot) loadPrefs(ctx context.Context, userID, chatID int64) (prefs.Preferences, bool) {
	p, err := b.store.Load(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error().Err(err).Msg("loading preferences")
		b.reply(ctx, chatID, msgError)
		return prefs.Preferences{}, false
	}
	return p, true
}

func (b *Bot) savePrefs(ctx context.Context, userID int64, p prefs.Preferences) error {
	if err := b.store.Save(ctx, userID, p); err != nil {
		logging.FromContext(ctx).Error().Err(err).Msg("saving preferences")
		return err
	}
	return nil
}

// Commands lists the bot commands for the Telegram command menu.
func Commands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: cmdModel, Description: "Select your watch model"},
		{Command: cmdFontSize, Description: "Set the font size"},
		{Command: cmdTheme, Description: "Dark or light theme"},
		{Command: cmdLayout, Description: "Continuous or multipage"},
		{Command: cmdTemplate, Description: "Choose a template"},
		{Command: cmdPadding, Description: "Set padding in pixels"},
		{Command: cmdFont, Description: "Override a font family"},
		{Command: cmdSettings, Description: "Show your settings"},
		{Command: cmdPreview, Description: "HTML preview of Markdown"},
		{Command: cmdPDF, Description: "PDF of Markdown"},
		{Command: cmdHelp, Description: "Show help"},
	}
}

// RegisterCommands publishes Commands to Telegram.
func RegisterCommands(client Client) error {
	if _, err := client.Request(tgbotapi.SetMyCommandsConfig{Commands: Commands()}); err != nil {
		return fmt.Errorf("registering commands: %w", err)
	}
	return nil
}
