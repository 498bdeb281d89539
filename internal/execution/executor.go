package execution

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/web3guy0/kalshibot/internal/types"
)

// ═══════════════════════════════════════════════════════════════════════════════
// EXECUTION GATEWAY - paper or live order placement
// ═══════════════════════════════════════════════════════════════════════════════
//
//   Engine → Executor.PlaceOrder
//               ├─ PaperExecutor: always fills, no side effects
//               └─ LiveExecutor:  Kalshi POST /portfolio/orders
//
// A nil error with Accepted=true is the only success. Anything else means the
// order was not placed and the caller must not touch state.
//
// ═══════════════════════════════════════════════════════════════════════════════

const (
	ModePaper = "PAPER"
	ModeLive  = "LIVE"
)

// ErrRejected is returned when the exchange answered but did not accept the order
var ErrRejected = errors.New("order rejected")

// Executor places a single market order
type Executor interface {
	PlaceOrder(ctx context.Context, ticker string, side types.Side, quantity int64) (*types.OrderResult, error)
	Mode() string
}

// OrderPlacer is the exchange surface LiveExecutor needs (kalshi.Client)
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, ticker string, side types.Side, count int64) (*types.OrderResult, error)
}

// New returns the paper executor when dryRun, otherwise a live one
func New(dryRun bool, placer OrderPlacer) Executor {
	if dryRun {
		return NewPaperExecutor()
	}
	return NewLiveExecutor(placer)
}

// PaperExecutor simulates fills
type PaperExecutor struct{}

func NewPaperExecutor() *PaperExecutor { return &PaperExecutor{} }

func (p *PaperExecutor) Mode() string { return ModePaper }

func (p *PaperExecutor) PlaceOrder(_ context.Context, ticker string, side types.Side, quantity int64) (*types.OrderResult, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be > 0, got %d", quantity)
	}
	orderID := "PAPER-" + uuid.NewString()
	log.Info().
		Str("order_id", orderID).
		Str("market", ticker).
		Str("side", side.Upper()).
		Int64("quantity", quantity).
		Msg("📝 DRY RUN: Order would be placed")
	return &types.OrderResult{OrderID: orderID, Accepted: true, Status: "simulated"}, nil
}

// LiveExecutor sends real orders
type LiveExecutor struct {
	placer OrderPlacer
}

func NewLiveExecutor(placer OrderPlacer) *LiveExecutor {
	return &LiveExecutor{placer: placer}
}

func (l *LiveExecutor) Mode() string { return ModeLive }

func (l *LiveExecutor) PlaceOrder(ctx context.Context, ticker string, side types.Side, quantity int64) (*types.OrderResult, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be > 0, got %d", quantity)
	}
	res, err := l.placer.PlaceOrder(ctx, ticker, side, quantity)
	if err != nil {
		return nil, fmt.Errorf("place order %s %s x%d: %w", ticker, side, quantity, err)
	}
	if res == nil || !res.Accepted {
		return nil, fmt.Errorf("%w: %s %s x%d", ErrRejected, ticker, side, quantity)
	}

	log.Info().
		Str("order_id", res.OrderID).
		Str("status", res.Status).
		Str("market", ticker).
		Str("side", side.Upper()).
		Int64("quantity", quantity).
		Msg("✅ Order placed")
	return res, nil
}
