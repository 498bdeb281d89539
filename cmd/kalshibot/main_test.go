package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web3guy0/kalshibot/internal/store"
	"github.com/web3guy0/kalshibot/internal/types"
)

func cleanEnv(t *testing.T, dataDir string) {
	t.Helper()
	for k, v := range map[string]string{
		"DATA_DIR":            dataDir,
		"STATE_BACKEND":       "file",
		"DATABASE_PATH":       "",
		"CHART_PATH":          "",
		"METRICS_PATH":        "",
		"DRY_RUN":             "true",
		"DEBUG":               "",
		"MIN_PROBABILITY":     "",
		"INITIAL_BANKROLL":    "",
		"HTTP_TIMEOUT":        "",
		"DISCORD_WEBHOOK_URL": "",
		"TELEGRAM_BOT_TOKEN":  "",
		"TELEGRAM_CHAT_ID":    "",
	} {
		t.Setenv(k, v)
	}
}

func TestRunStatus(t *testing.T) {
	dir := t.TempDir()
	cleanEnv(t, dir)

	fs, err := store.NewFileStore(dir, decimal.NewFromInt(125))
	require.NoError(t, err)
	require.NoError(t, fs.Commit(context.Background(), decimal.RequireFromString("115"), []types.OpenTrade{{
		ID:       "t1",
		Market:   "INXD-24DEC31-B5000",
		Side:     types.SideNo,
		Price:    decimal.RequireFromString("0.96"),
		Quantity: 10,
		OpenedAt: time.Date(2024, 12, 30, 9, 0, 0, 0, time.UTC),
	}}))

	var out bytes.Buffer
	assert.Equal(t, 0, run([]string{"--status"}, &out))
	assert.Contains(t, out.String(), "Bankroll: $115.00")
	assert.Contains(t, out.String(), "Open trades: 1")
	assert.Contains(t, out.String(), "INXD-24DEC31-B5000")
}

func TestRunReturnsOneOnConfigError(t *testing.T) {
	cleanEnv(t, t.TempDir())
	t.Setenv("MIN_PROBABILITY", "abc")

	assert.Equal(t, 1, run(nil, &bytes.Buffer{}))
}

func TestRunReturnsOneWhenStoreCannotOpen(t *testing.T) {
	dir := t.TempDir()
	cleanEnv(t, dir)

	// a regular file where the database directory should be
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	t.Setenv("STATE_BACKEND", "sqlite")
	t.Setenv("DATABASE_PATH", filepath.Join(blocker, "db", "kalshibot.db"))

	assert.Equal(t, 1, run([]string{"--status"}, &bytes.Buffer{}))
}
