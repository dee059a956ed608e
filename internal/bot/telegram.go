package bot

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/alnah/go-md2watch/internal/logging"
)

// Connect authenticates token against the Telegram Bot API and routes the
// library's own log output through the global logger.
func Connect(token string, debug bool) (*tgbotapi.BotAPI, error) {
	if err := tgbotapi.SetLogger(apiLogger{}); err != nil {
		return nil, fmt.Errorf("telegram logger: %w", err)
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	api.Debug = debug
	logging.Info("telegram authorized", "bot", api.Self.UserName)
	return api, nil
}

// Poll starts long polling. Stop it with api.StopReceivingUpdates.
func Poll(api *tgbotapi.BotAPI, timeout time.Duration) tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(timeout / time.Second)
	u.AllowedUpdates = []string{"message", "callback_query"}
	return api.GetUpdatesChan(u)
}

// apiLogger adapts tgbotapi.BotLogger to the global logger.
type apiLogger struct{}

func (apiLogger) Println(v ...interface{}) {
	logging.Debug(strings.TrimSuffix(fmt.Sprintln(v...), "\n"), "component", "telegram")
}

func (apiLogger) Printf(format string, v ...interface{}) {
	logging.Debug(fmt.Sprintf(format, v...), "component", "telegram")
}
