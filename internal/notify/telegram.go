package notify

import (
	"context"
	"fmt"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// telegramSender is the part of *tgbotapi.BotAPI we use
type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends to a single chat
type Telegram struct {
	api    telegramSender
	chatID int64
}

// NewTelegram creates a Telegram notifier
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	log.Info().Str("username", api.Self.UserName).Msg("🤖 Telegram bot initialized")

	return &Telegram{api: api, chatID: chatID}, nil
}

func (t *Telegram) Notify(_ context.Context, text, attachment string) {
	if attachment != "" {
		if _, err := os.Stat(attachment); err == nil {
			photo := tgbotapi.NewPhoto(t.chatID, tgbotapi.FilePath(attachment))
			photo.Caption = text
			if _, err := t.api.Send(photo); err != nil {
				log.Warn().Err(err).Msg("Failed to send Telegram photo")
			}
			return
		}
		log.Warn().Str("file", attachment).Msg("Attachment unavailable, sending text only")
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.api.Send(msg); err != nil {
		log.Warn().Err(err).Msg("Failed to send Telegram message")
	}
}
