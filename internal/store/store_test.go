package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web3guy0/kalshibot/internal/types"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleTrade(id string) types.OpenTrade {
	return types.OpenTrade{
		ID:       id,
		Market:   "INXD-24DEC31-B5000",
		Side:     types.SideYes,
		Price:    d("0.95"),
		Quantity: 200,
		OpenedAt: time.Date(2024, 12, 30, 9, 0, 0, 0, time.UTC),
	}
}

// contract runs the same checks against every backend.
func contract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	b, err := s.LoadBankroll(ctx)
	require.NoError(t, err)
	assert.True(t, b.Equal(d("125")), "seed expected, got %s", b)

	trades, err := s.LoadOpenTrades(ctx)
	require.NoError(t, err)
	assert.Empty(t, trades)

	require.NoError(t, s.SaveBankroll(ctx, d("115")))
	b, err = s.LoadBankroll(ctx)
	require.NoError(t, err)
	assert.True(t, b.Equal(d("115")))

	require.NoError(t, s.Commit(ctx, d("105"), []types.OpenTrade{sampleTrade("a"), sampleTrade("b")}))
	b, err = s.LoadBankroll(ctx)
	require.NoError(t, err)
	assert.True(t, b.Equal(d("105")))
	trades, err = s.LoadOpenTrades(ctx)
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "a", trades[0].ID)
	assert.Equal(t, "b", trades[1].ID)
	assert.Equal(t, int64(200), trades[0].Quantity)
	assert.True(t, trades[0].Price.Equal(d("0.95")))

	// whole-set overwrite
	require.NoError(t, s.SaveOpenTrades(ctx, []types.OpenTrade{sampleTrade("b")}))
	trades, err = s.LoadOpenTrades(ctx)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "b", trades[0].ID)

	require.NoError(t, s.SaveOpenTrades(ctx, nil))
	trades, err = s.LoadOpenTrades(ctx)
	require.NoError(t, err)
	assert.Empty(t, trades)

	// invalid ledger entries are refused
	bad := sampleTrade("c")
	bad.Quantity = 0
	assert.ErrorIs(t, s.SaveOpenTrades(ctx, []types.OpenTrade{bad}), ErrPersistence)

	// append-only history keeps order
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, s.AppendBankrollSnapshot(ctx, types.BankrollSnapshot{Timestamp: ts, Bankroll: d("125")}))
	require.NoError(t, s.AppendBankrollSnapshot(ctx, types.BankrollSnapshot{Timestamp: ts.Add(time.Hour), Bankroll: d("115")}))
	snaps, err := s.BankrollHistory(ctx)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.True(t, snaps[1].Bankroll.Equal(d("115")))
	assert.True(t, snaps[1].Timestamp.Equal(ts.Add(time.Hour)))

	rec := types.TradeRecord{
		Timestamp: ts, Market: "INXD-24DEC31-B5000", Side: types.SideYes,
		Price: d("0.95"), Quantity: 200, Outcome: types.OutcomePending, Bankroll: d("115"),
	}
	require.NoError(t, s.AppendTradeRecord(ctx, rec))
	rec.Outcome = types.OutcomeWin
	rec.Bankroll = d("315")
	require.NoError(t, s.AppendTradeRecord(ctx, rec))
	history, err := s.TradeHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, types.OutcomePending, history[0].Outcome)
	assert.Equal(t, types.OutcomeWin, history[1].Outcome)
	assert.True(t, history[1].Bankroll.Equal(d("315")))
}

func TestMemoryStore(t *testing.T) {
	contract(t, NewMemoryStore(d("125")))
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), d("125"))
	require.NoError(t, err)
	contract(t, s)
}

func TestGormStoreSQLite(t *testing.T) {
	s, err := NewGormStore(filepath.Join(t.TempDir(), "state", "bot.db"), d("125"))
	require.NoError(t, err)
	defer s.Close()
	contract(t, s)
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewFileStore(dir, d("125"))
	require.NoError(t, err)
	require.NoError(t, s.Commit(ctx, d("115"), []types.OpenTrade{sampleTrade("a")}))

	s2, err := NewFileStore(dir, d("999"))
	require.NoError(t, err)
	b, err := s2.LoadBankroll(ctx)
	require.NoError(t, err)
	assert.True(t, b.Equal(d("115")))
	trades, err := s2.LoadOpenTrades(ctx)
	require.NoError(t, err)
	require.Len(t, trades, 1)
}

func TestFileStoreRollsForwardJournal(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewFileStore(dir, d("125"))
	require.NoError(t, err)
	require.NoError(t, s.Commit(ctx, d("115"), []types.OpenTrade{sampleTrade("a")}))

	// a crash after the journal landed but before it was applied
	require.NoError(t, writeJSON(filepath.Join(dir, journalFile), journalDoc{
		Bankroll: d("315"),
		Trades:   []types.OpenTrade{},
	}))

	s2, err := NewFileStore(dir, d("125"))
	require.NoError(t, err)

	b, err := s2.LoadBankroll(ctx)
	require.NoError(t, err)
	assert.True(t, b.Equal(d("315")))
	trades, err := s2.LoadOpenTrades(ctx)
	require.NoError(t, err)
	assert.Empty(t, trades)

	_, err = os.Stat(filepath.Join(dir, journalFile))
	assert.True(t, os.IsNotExist(err))
}

func TestFileStoreCSVHeader(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s, err := NewFileStore(dir, d("125"))
	require.NoError(t, err)

	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, s.AppendBankrollSnapshot(ctx, types.BankrollSnapshot{Timestamp: ts, Bankroll: d("125")}))
	require.NoError(t, s.AppendBankrollSnapshot(ctx, types.BankrollSnapshot{Timestamp: ts, Bankroll: d("130")}))

	data, err := os.ReadFile(filepath.Join(dir, BankrollHistoryFile))
	require.NoError(t, err)
	assert.Equal(t,
		"timestamp,bankroll\n2025-01-02T03:04:05Z,125\n2025-01-02T03:04:05Z,130\n",
		string(data))
}

func TestFileStoreCorruptBankroll(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, BankrollFile), []byte("{not json"), 0644))

	s, err := NewFileStore(dir, d("125"))
	require.NoError(t, err)
	_, err = s.LoadBankroll(context.Background())
	assert.ErrorIs(t, err, ErrPersistence)
}
