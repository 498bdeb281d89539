// Package notify delivers best-effort messages to Discord and Telegram.
//
// Notifiers never return errors: a failed delivery is logged and dropped so
// that it can never roll back or block a trade.
package notify

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/web3guy0/kalshibot/internal/config"
)

// Notifier sends a text message, optionally with a file attached (path, or "")
type Notifier interface {
	Notify(ctx context.Context, text, attachment string)
}

// Nop drops everything
type Nop struct{}

func (Nop) Notify(context.Context, string, string) {}

// Multi fans out to every notifier in order
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, text, attachment string) {
	for _, n := range m {
		n.Notify(ctx, text, attachment)
	}
}

// FromConfig wires every channel that has credentials configured
func FromConfig(cfg *config.Config) Notifier {
	var out Multi

	if cfg.DiscordWebhookURL != "" {
		d, err := NewDiscord(cfg.DiscordWebhookURL)
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ Discord notifications disabled")
		} else {
			out = append(out, d)
		}
	}

	if cfg.TelegramToken != "" {
		tg, err := NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ Telegram notifications disabled")
		} else {
			out = append(out, tg)
		}
	}

	switch len(out) {
	case 0:
		log.Warn().Msg("No notification channel configured")
		return Nop{}
	case 1:
		return out[0]
	}
	return out
}
