package infrastructure

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TelegramNotifier posts staff alerts to a fixed chat. Delivery is best effort:
// send failures are logged and dropped, never surfaced to request handlers.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *zap.SugaredLogger
}

// NewTelegramNotifier returns a disabled notifier (nil bot) when the token is
// empty or invalid, so callers can always Notify unconditionally.
func NewTelegramNotifier(token string, chatID int64, log *zap.SugaredLogger) *TelegramNotifier {
	n := &TelegramNotifier{chatID: chatID, log: log}
	if token == "" || chatID == 0 {
		return n
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Warnw("telegram notifier disabled", "error", err)
		return n
	}
	n.bot = bot
	return n
}

func (n *TelegramNotifier) Notify(text string) {
	if n.bot == nil {
		return
	}
	go func() {
		if _, err := n.bot.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
			n.log.Warnw("telegram notify failed", "error", err)
		}
	}()
}
