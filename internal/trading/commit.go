package trading

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/web3guy0/kalshibot/internal/execution"
	"github.com/web3guy0/kalshibot/internal/types"
)

// Commit places the order and, only if it was accepted, books it: bankroll and
// ledger first (one atomic store commit), then history, then the
// notification. A rejected or failed order returns (nil, nil) and leaves the
// state untouched. A non-nil error is a persistence failure after the
// exchange already accepted the order.
func (e *Engine) Commit(ctx context.Context, state *State, c types.Candidate, quantity int64) (*types.OpenTrade, error) {
	mode := e.executor.Mode()

	res, err := e.executor.PlaceOrder(ctx, c.Market, c.Side, quantity)
	if err == nil && (res == nil || !res.Accepted) {
		err = execution.ErrRejected
	}
	if err != nil {
		e.metrics.Orders.WithLabelValues(mode, "failed").Inc()
		e.metrics.GatewayErrors.WithLabelValues("place_order").Inc()
		log.Warn().
			Err(err).
			Str("market", c.Market).
			Str("side", c.Side.Upper()).
			Int64("quantity", quantity).
			Msg("❌ Order not placed, skipping this run")
		return nil, nil
	}
	e.metrics.Orders.WithLabelValues(mode, "placed").Inc()

	cost := TotalCost(c.CostPerUnit(), quantity)
	bankroll := state.Bankroll.Sub(cost)

	trade := types.OpenTrade{
		ID:       uuid.NewString(),
		Market:   c.Market,
		Side:     c.Side,
		Price:    c.Price,
		Quantity: quantity,
		OpenedAt: e.now(),
	}
	ledger := make([]types.OpenTrade, 0, len(state.Open)+1)
	ledger = append(ledger, state.Open...)
	ledger = append(ledger, trade)

	if err := e.store.Commit(ctx, bankroll, ledger); err != nil {
		log.Error().
			Err(err).
			Str("order_id", res.OrderID).
			Str("market", c.Market).
			Str("side", c.Side.Upper()).
			Int64("quantity", quantity).
			Str("cost", cost.StringFixed(2)).
			Msg("🚨 Order placed but state not saved, reconcile manually")
		return nil, err
	}
	state.Bankroll = bankroll
	state.Open = ledger

	now := trade.OpenedAt
	if err := e.store.AppendBankrollSnapshot(ctx, types.BankrollSnapshot{Timestamp: now, Bankroll: bankroll}); err != nil {
		return &trade, err
	}
	if err := e.store.AppendTradeRecord(ctx, types.TradeRecord{
		Timestamp: now,
		Market:    c.Market,
		Side:      c.Side,
		Price:     c.Price,
		Quantity:  quantity,
		Outcome:   types.OutcomePending,
		Bankroll:  bankroll,
	}); err != nil {
		return &trade, err
	}

	log.Info().
		Str("order_id", res.OrderID).
		Str("market", c.Market).
		Str("side", c.Side.Upper()).
		Str("price", c.Price.String()).
		Int64("quantity", quantity).
		Str("cost", cost.StringFixed(2)).
		Str("bankroll", bankroll.StringFixed(2)).
		Msg("✅ Trade committed")

	dryNote := ""
	if mode == execution.ModePaper {
		dryNote = "(DRY RUN) "
	}
	e.notifier.Notify(ctx, fmt.Sprintf("%sPlaced trade: %s on %s @ %s%% for %d contracts.\nNew bankroll: $%s",
		dryNote, c.Side.Upper(), c.Market, c.Price.Shift(2).StringFixed(1), quantity, bankroll.StringFixed(2)), "")

	return &trade, nil
}
