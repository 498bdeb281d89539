package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web3guy0/kalshibot/internal/types"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func history(values ...int64) []types.BankrollSnapshot {
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	out := make([]types.BankrollSnapshot, 0, len(values))
	for i, v := range values {
		out = append(out, types.BankrollSnapshot{
			Timestamp: start.Add(time.Duration(i) * 24 * time.Hour),
			Bankroll:  decimal.NewFromInt(v),
		})
	}
	return out
}

func TestRenderBankroll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "bankroll_graph.png")
	require.NoError(t, RenderBankroll(history(125, 115, 315), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
}

func TestRenderFlatLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flat.png")
	require.NoError(t, RenderBankroll(history(125, 125), path))
}

func TestRenderNeedsTwoPoints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "none.png")
	assert.ErrorIs(t, RenderBankroll(history(125), path), ErrNotEnoughData)
	assert.ErrorIs(t, RenderBankroll(nil, path), ErrNotEnoughData)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
