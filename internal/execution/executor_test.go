package execution

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web3guy0/kalshibot/internal/types"
)

type stubPlacer struct {
	calls int
	res   *types.OrderResult
	err   error
}

func (s *stubPlacer) PlaceOrder(_ context.Context, _ string, _ types.Side, _ int64) (*types.OrderResult, error) {
	s.calls++
	return s.res, s.err
}

func TestNewSelectsMode(t *testing.T) {
	assert.Equal(t, ModePaper, New(true, nil).Mode())
	assert.Equal(t, ModeLive, New(false, &stubPlacer{}).Mode())
}

func TestPaperAlwaysAccepts(t *testing.T) {
	res, err := NewPaperExecutor().PlaceOrder(context.Background(), "INXD-A", types.SideYes, 10)
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.True(t, strings.HasPrefix(res.OrderID, "PAPER-"))
}

func TestPaperRejectsZeroQuantity(t *testing.T) {
	_, err := NewPaperExecutor().PlaceOrder(context.Background(), "INXD-A", types.SideYes, 0)
	assert.Error(t, err)
}

func TestLiveExecutor(t *testing.T) {
	ok := &stubPlacer{res: &types.OrderResult{OrderID: "o1", Accepted: true}}
	res, err := NewLiveExecutor(ok).PlaceOrder(context.Background(), "INXD-A", types.SideNo, 3)
	require.NoError(t, err)
	assert.Equal(t, "o1", res.OrderID)
	assert.Equal(t, 1, ok.calls)

	rejected := &stubPlacer{res: &types.OrderResult{Accepted: false}}
	_, err = NewLiveExecutor(rejected).PlaceOrder(context.Background(), "INXD-A", types.SideNo, 3)
	assert.ErrorIs(t, err, ErrRejected)

	boom := errors.New("connection reset")
	failing := &stubPlacer{err: boom}
	_, err = NewLiveExecutor(failing).PlaceOrder(context.Background(), "INXD-A", types.SideNo, 3)
	assert.ErrorIs(t, err, boom)
}
