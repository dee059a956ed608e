package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	md2watch "github.com/alnah/go-md2watch"
	"github.com/alnah/go-md2watch/internal/logging"
	"github.com/alnah/go-md2watch/internal/prefs"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := senderOf(tgbotapi.Update{Message: msg})
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case cmdStart, cmdHelp:
		b.reply(ctx, chatID, msgWelcome)
	case cmdModel:
		b.sendKeyboard(ctx, chatID, msgSelectModel, deviceKeyboard())
	case cmdFontSize:
		b.sendKeyboard(ctx, chatID, msgSelectFontSize, fontSizeKeyboard())
	case cmdTheme:
		b.sendKeyboard(ctx, chatID, msgSelectTheme, themeKeyboard())
	case cmdLayout:
		b.sendKeyboard(ctx, chatID, msgSelectLayout, layoutKeyboard())
	case cmdTemplate:
		b.sendKeyboard(ctx, chatID, msgSelectTemplate, templateKeyboard())
	case cmdPadding:
		b.handlePadding(ctx, userID, chatID, args)
	case cmdFont:
		b.handleFont(ctx, userID, chatID, args)
	case cmdSettings:
		if p, ok := b.loadPrefs(ctx, userID, chatID); ok {
			b.reply(ctx, chatID, p.Summary())
		}
	case cmdPreview:
		b.handlePreview(ctx, userID, chatID, args)
	case cmdPDF:
		b.handlePDF(ctx, userID, chatID, args)
	default:
		b.reply(ctx, chatID, msgUnknownCommand)
	}
}

func (b *Bot) sendKeyboard(ctx context.Context, chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	m := tgbotapi.NewMessage(chatID, text)
	m.ReplyMarkup = kb
	b.send(ctx, m)
}

func (b *Bot) handlePadding(ctx context.Context, userID, chatID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		b.reply(ctx, chatID, msgPaddingUsage)
		return
	}
	px, err := strconv.Atoi(fields[0])
	if err != nil {
		b.reply(ctx, chatID, msgPaddingInteger)
		return
	}
	if err := prefs.ValidatePadding(px); err != nil {
		b.reply(ctx, chatID, msgPaddingRange(prefs.MaxPadding))
		return
	}

	p, ok := b.loadPrefs(ctx, userID, chatID)
	if !ok {
		return
	}
	p.Padding = px
	if err := b.savePrefs(ctx, userID, p); err != nil {
		b.reply(ctx, chatID, msgError)
		return
	}
	b.reply(ctx, chatID, msgPaddingSet(px))
}

func (b *Bot) handleFont(ctx context.Context, userID, chatID int64, args string) {
	slot, family, found := strings.Cut(args, " ")
	if !found || strings.TrimSpace(family) == "" {
		b.reply(ctx, chatID, msgFontUsage)
		return
	}

	p, ok := b.loadPrefs(ctx, userID, chatID)
	if !ok {
		return
	}
	p, err := p.SetFont(slot, family)
	switch {
	case errors.Is(err, prefs.ErrUnknownSlot):
		b.reply(ctx, chatID, msgFontUsage)
		return
	case errors.Is(err, md2watch.ErrInvalidFont):
		b.reply(ctx, chatID, msgFontInvalid)
		return
	case err != nil:
		b.reply(ctx, chatID, msgError)
		return
	}
	if err := b.savePrefs(ctx, userID, p); err != nil {
		b.reply(ctx, chatID, msgError)
		return
	}

	slot = strings.ToLower(slot)
	if strings.EqualFold(strings.TrimSpace(family), prefs.FontReset) {
		b.reply(ctx, chatID, label(slot)+" font reset to the template default")
		return
	}
	b.reply(ctx, chatID, label(slot)+" font set to "+strings.TrimSpace(family))
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	userID, chatID := senderOf(tgbotapi.Update{CallbackQuery: q})

	setting, err := prefs.ParseCallback(q.Data)
	if err != nil {
		logging.FromContext(ctx).Warn().Str("data", q.Data).Msg("unknown callback")
		b.request(ctx, tgbotapi.NewCallback(q.ID, msgUnknownOption))
		return
	}

	p, err := b.store.Load(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error().Err(err).Msg("loading preferences")
		b.request(ctx, tgbotapi.NewCallback(q.ID, msgError))
		return
	}
	if err := b.savePrefs(ctx, userID, setting.Apply(p)); err != nil {
		b.request(ctx, tgbotapi.NewCallback(q.ID, msgError))
		return
	}

	b.request(ctx, tgbotapi.NewCallback(q.ID, ""))
	if q.Message != nil {
		b.send(ctx, tgbotapi.NewEditMessageText(chatID, q.Message.MessageID, setting.Message))
	}
	logging.FromContext(ctx).Debug().Str("setting", string(setting.Kind)).Msg("preference changed")
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := senderOf(tgbotapi.Update{Message: msg})
	b.renderPages(ctx, userID, chatID, msg.Text)
}

// renderPages renders markdown with the sender's preferences and sends
// the pages in order. Nothing is sent unless the whole render succeeded.
func (b *Bot) renderPages(ctx context.Context, userID, chatID int64, markdown string) {
	req, ok := b.buildRequest(ctx, userID, chatID, markdown)
	if !ok {
		return
	}

	b.request(ctx, tgbotapi.NewChatAction(chatID, tgbotapi.ChatUploadPhoto))
	res, err := b.renderer.Render(ctx, req)
	if err != nil {
		b.replyRenderError(ctx, chatID, err)
		return
	}

	for _, page := range res.Pages {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{
			Name:  pageFileName(page.Number),
			Bytes: page.PNG,
		})
		photo.Caption = pageCaption(page.Number, req.Device.Name)
		if _, err := b.client.Send(photo); err != nil {
			logging.FromContext(ctx).Error().Err(err).Int("page", page.Number).Msg("sending page")
			return
		}
	}
	logging.FromContext(ctx).Info().
		Str("device", req.Device.Key).
		Str("layout", string(req.Layout)).
		Int("pages", len(res.Pages)).
		Msg("pages sent")
}

func (b *Bot) handlePreview(ctx context.Context, userID, chatID int64, markdown string) {
	if markdown == "" {
		b.reply(ctx, chatID, msgPreviewUsage)
		return
	}
	req, ok := b.buildRequest(ctx, userID, chatID, markdown)
	if !ok {
		return
	}

	html, err := b.renderer.Preview(ctx, req)
	if err != nil {
		b.replyRenderError(ctx, chatID, err)
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: filePreview, Bytes: []byte(html)})
	doc.Caption = captionPreview
	b.send(ctx, doc)
}

func (b *Bot) handlePDF(ctx context.Context, userID, chatID int64, markdown string) {
	if markdown == "" {
		b.reply(ctx, chatID, msgPDFUsage)
		return
	}
	req, ok := b.buildRequest(ctx, userID, chatID, markdown)
	if !ok {
		return
	}

	b.request(ctx, tgbotapi.NewChatAction(chatID, tgbotapi.ChatUploadDocument))
	res, hit, err := b.cache.RenderPDF(ctx, b.renderer, req, b.engineName)
	if err != nil {
		b.replyRenderError(ctx, chatID, err)
		return
	}
	logging.FromContext(ctx).Info().Int("pdf_pages", res.Pages).Bool("cached", hit).Msg("pdf sent")

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: filePDF, Bytes: res.PDF})
	doc.Caption = captionPDF
	b.send(ctx, doc)
}

// buildRequest loads the sender's preferences and turns them into a
// validated request, replying to the user on failure.
func (b *Bot) buildRequest(ctx context.Context, userID, chatID int64, markdown string) (md2watch.Request, bool) {
	p, ok := b.loadPrefs(ctx, userID, chatID)
	if !ok {
		return md2watch.Request{}, false
	}
	req, err := p.Request(markdown)
	if errors.Is(err, prefs.ErrNoDevice) {
		b.reply(ctx, chatID, msgNoModel)
		return md2watch.Request{}, false
	}
	if err == nil {
		err = req.Validate()
	}
	if err != nil {
		b.replyRenderError(ctx, chatID, err)
		return md2watch.Request{}, false
	}
	return req, true
}

// replyRenderError logs err and sends the matching user message.
func (b *Bot) replyRenderError(ctx context.Context, chatID int64, err error) {
	log := logging.FromContext(ctx)
	switch {
	case errors.Is(err, md2watch.ErrEmptyMarkdown):
		log.Info().Err(err).Msg("rejected request")
		b.reply(ctx, chatID, msgEmpty)
	case errors.Is(err, md2watch.ErrMarkdownTooLarge):
		log.Info().Err(err).Msg("rejected request")
		b.reply(ctx, chatID, msgFileTooLarge(md2watch.MaxMarkdownBytes))
	case errors.Is(err, context.DeadlineExceeded):
		log.Error().Err(err).Msg("render timed out")
		b.reply(ctx, chatID, msgTimeout)
	default:
		log.Error().Err(err).Msg("render failed")
		b.reply(ctx, chatID, msgError)
	}
}
