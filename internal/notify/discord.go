package notify

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// webhookExecutor is the part of *discordgo.Session we use
type webhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Discord posts to a channel webhook
type Discord struct {
	session webhookExecutor
	id      string
	token   string
}

// NewDiscord parses https://discord.com/api/webhooks/<id>/<token>
func NewDiscord(webhookURL string) (*Discord, error) {
	id, token, err := parseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}
	// Webhooks carry their own token, the session needs no bot auth.
	s, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return &Discord{session: s, id: id, token: token}, nil
}

func parseWebhookURL(raw string) (id, token string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid DISCORD_WEBHOOK_URL: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", fmt.Errorf("invalid DISCORD_WEBHOOK_URL: no webhooks/<id>/<token> in %q", u.Path)
}

func (d *Discord) Notify(ctx context.Context, text, attachment string) {
	params := &discordgo.WebhookParams{Content: text}

	if attachment != "" {
		f, err := os.Open(attachment)
		if err != nil {
			log.Warn().Err(err).Str("file", attachment).Msg("Attachment unavailable, sending text only")
		} else {
			defer f.Close()
			params.Files = []*discordgo.File{{
				Name:        filepath.Base(attachment),
				ContentType: "image/png",
				Reader:      f,
			}}
		}
	}

	if _, err := d.session.WebhookExecute(d.id, d.token, false, params, discordgo.WithContext(ctx)); err != nil {
		log.Warn().Err(err).Msg("Failed to send Discord message")
	}
}
