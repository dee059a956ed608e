package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	md2watch "github.com/alnah/go-md2watch"
	"github.com/alnah/go-md2watch/internal/prefs"
)

// deviceKeyboard lists the catalog two models per row.
func deviceKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, d := range md2watch.Devices() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(d.Name, d.Key))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func fontSizeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Small", prefs.CallbackFontSmall),
		tgbotapi.NewInlineKeyboardButtonData("Medium", prefs.CallbackFontMedium),
		tgbotapi.NewInlineKeyboardButtonData("Large", prefs.CallbackFontLarge),
	))
}

func themeKeyboard() tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, t := range md2watch.Themes() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label(string(t)), prefs.ThemeCallback(t)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func layoutKeyboard() tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, l := range md2watch.Layouts() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label(string(l)), prefs.LayoutCallback(l)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func templateKeyboard() tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, t := range md2watch.Templates() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label(string(t)), prefs.TemplateCallback(t)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func label(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
