package notify

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/bwmarrin/discordgo"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web3guy0/kalshibot/internal/config"
)

type fakeWebhook struct {
	id, token string
	content   string
	files     []string
	payloads  [][]byte
	err       error
}

func (f *fakeWebhook) WebhookExecute(id, token string, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.id, f.token, f.content = id, token, data.Content
	for _, file := range data.Files {
		f.files = append(f.files, file.Name)
		b, _ := io.ReadAll(file.Reader)
		f.payloads = append(f.payloads, b)
	}
	return &discordgo.Message{}, f.err
}

type fakeTelegram struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeTelegram) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func TestParseWebhookURL(t *testing.T) {
	id, token, err := parseWebhookURL("https://discord.com/api/webhooks/123/abc-def")
	require.NoError(t, err)
	assert.Equal(t, "123", id)
	assert.Equal(t, "abc-def", token)

	_, _, err = parseWebhookURL("https://discord.com/api/channels/123")
	assert.Error(t, err)
}

func TestDiscordText(t *testing.T) {
	wh := &fakeWebhook{}
	d := &Discord{session: wh, id: "123", token: "tok"}

	d.Notify(context.Background(), "No qualifying trades found today.", "")

	assert.Equal(t, "123", wh.id)
	assert.Equal(t, "tok", wh.token)
	assert.Equal(t, "No qualifying trades found today.", wh.content)
	assert.Empty(t, wh.files)
}

func TestDiscordAttachment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bankroll_graph.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0644))

	wh := &fakeWebhook{}
	d := &Discord{session: wh, id: "1", token: "t"}
	d.Notify(context.Background(), "trend", path)

	assert.Equal(t, []string{"bankroll_graph.png"}, wh.files)
	assert.Equal(t, [][]byte{[]byte("png")}, wh.payloads)
}

func TestDiscordErrorIsSwallowed(t *testing.T) {
	wh := &fakeWebhook{err: errors.New("429")}
	d := &Discord{session: wh, id: "1", token: "t"}

	assert.NotPanics(t, func() {
		d.Notify(context.Background(), "hello", filepath.Join(t.TempDir(), "missing.png"))
	})
	assert.Equal(t, "hello", wh.content)
	assert.Empty(t, wh.files)
}

func TestTelegram(t *testing.T) {
	fake := &fakeTelegram{}
	tg := &Telegram{api: fake, chatID: 42}

	tg.Notify(context.Background(), "hi", "")
	require.Len(t, fake.sent, 1)
	msg, ok := fake.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, "hi", msg.Text)
	assert.Equal(t, int64(42), msg.ChatID)

	path := filepath.Join(t.TempDir(), "chart.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0644))
	tg.Notify(context.Background(), "trend", path)
	require.Len(t, fake.sent, 2)
	photo, ok := fake.sent[1].(tgbotapi.PhotoConfig)
	require.True(t, ok)
	assert.Equal(t, "trend", photo.Caption)
}

type countingNotifier struct{ n int }

func (c *countingNotifier) Notify(context.Context, string, string) { c.n++ }

func TestMulti(t *testing.T) {
	a, b := &countingNotifier{}, &countingNotifier{}
	Multi{a, b}.Notify(context.Background(), "x", "")
	assert.Equal(t, 1, a.n)
	assert.Equal(t, 1, b.n)
}

func TestFromConfigWithoutChannels(t *testing.T) {
	n := FromConfig(&config.Config{})
	assert.IsType(t, Nop{}, n)
}
