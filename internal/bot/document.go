package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/alnah/go-md2watch/internal/fileutil"
	"github.com/alnah/go-md2watch/internal/logging"
)

var (
	errFileTooLarge = errors.New("file too large")
	errNotUTF8      = errors.New("file is not UTF-8")
)

// handleDocument renders an uploaded .md or .txt file like a text message.
func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := senderOf(tgbotapi.Update{Message: msg})
	doc := msg.Document
	log := logging.FromContext(ctx)

	if !fileutil.HasExtension(doc.FileName, ".md", ".txt") {
		b.reply(ctx, chatID, msgUploadType)
		return
	}
	if doc.FileSize > b.maxFileBytes {
		b.reply(ctx, chatID, msgFileTooLarge(b.maxFileBytes))
		return
	}

	p, ok := b.loadPrefs(ctx, userID, chatID)
	if !ok {
		return
	}
	if !p.DeviceSelected() {
		b.reply(ctx, chatID, msgNoModel)
		return
	}

	text, err := b.download(ctx, doc.FileID)
	switch {
	case errors.Is(err, errFileTooLarge):
		b.reply(ctx, chatID, msgFileTooLarge(b.maxFileBytes))
		return
	case errors.Is(err, errNotUTF8):
		b.reply(ctx, chatID, msgNotUTF8)
		return
	case err != nil:
		log.Error().Err(err).Str("file", doc.FileName).Msg("downloading document")
		b.reply(ctx, chatID, msgDownloadError)
		return
	}

	log.Debug().Str("file", doc.FileName).Int("bytes", len(text)).Msg("document downloaded")
	b.renderPages(ctx, userID, chatID, text)
}

// download fetches a Telegram file. The direct URL embeds the bot token
// and is never logged.
func (b *Bot) download(ctx context.Context, fileID string) (string, error) {
	fileURL, err := b.client.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("resolving file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", errors.New("building request: invalid file URL")
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return "", fmt.Errorf("fetching file: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, int64(b.maxFileBytes)+1))
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	if len(data) > b.maxFileBytes {
		return "", errFileTooLarge
	}
	if !utf8.Valid(data) {
		return "", errNotUTF8
	}
	return string(data), nil
}
