package notify

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier sends every notification to a fixed list of chats.
type TelegramNotifier struct {
	bot     *tgbotapi.BotAPI
	chatIDs []int64
}

func NewTelegramNotifier(token string, chatIDs []int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize telegram bot: %w", err)
	}

	return NewTelegramNotifierWithBot(bot, chatIDs), nil
}

func NewTelegramNotifierWithBot(bot *tgbotapi.BotAPI, chatIDs []int64) *TelegramNotifier {
	return &TelegramNotifier{
		bot:     bot,
		chatIDs: chatIDs,
	}
}

func (that *TelegramNotifier) Notify(ctx context.Context, subject, body string) error {
	var errs []error

	for _, chatID := range that.chatIDs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		msg := tgbotapi.NewMessage(chatID, subject+"\n\n"+body)
		if _, err := that.bot.Send(msg); err != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
		}
	}

	return errors.Join(errs...)
}
