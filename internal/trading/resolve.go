package trading

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/web3guy0/kalshibot/internal/types"
)

// Resolution is one trade settled during this run
type Resolution struct {
	Trade    types.OpenTrade
	Settled  types.Side
	Payout   decimal.Decimal
	Outcome  types.Outcome
	Bankroll decimal.Decimal // after payout
}

// Resolve settles every open trade whose market has a final outcome.
//
// Each settlement is committed (bankroll + remaining ledger) before anything
// else happens, so a crash or retry never pays the same trade twice. Markets
// that fail to load are kept for the next run without blocking the others.
func (e *Engine) Resolve(ctx context.Context, state *State) ([]Resolution, error) {
	if len(state.Open) == 0 {
		return nil, nil
	}

	var resolved []Resolution
	remaining := make([]types.OpenTrade, 0, len(state.Open))

	for i, trade := range state.Open {
		status, err := e.markets.GetMarket(ctx, trade.Market)
		if err != nil {
			if errors.Is(err, types.ErrInvalidSide) {
				log.Warn().Err(err).Str("market", trade.Market).Msg("⚠️ Malformed settlement, keeping trade")
			} else {
				log.Warn().Err(err).Str("market", trade.Market).Msg("⚠️ Market status unavailable, keeping trade")
			}
			e.metrics.GatewayErrors.WithLabelValues("get_market").Inc()
			remaining = append(remaining, trade)
			continue
		}
		if !status.Settled() {
			remaining = append(remaining, trade)
			continue
		}

		payout := trade.Payout(status.SettledSide)
		bankroll := state.Bankroll.Add(payout)

		// Everything not yet settled: kept so far plus not visited yet
		rest := make([]types.OpenTrade, 0, len(remaining)+len(state.Open)-i-1)
		rest = append(rest, remaining...)
		rest = append(rest, state.Open[i+1:]...)

		if err := e.store.Commit(ctx, bankroll, rest); err != nil {
			state.Open = append(remaining, state.Open[i:]...)
			return resolved, err
		}
		state.Bankroll = bankroll

		outcome := types.OutcomeLoss
		if payout.IsPositive() {
			outcome = types.OutcomeWin
		}
		r := Resolution{
			Trade:    trade,
			Settled:  status.SettledSide,
			Payout:   payout,
			Outcome:  outcome,
			Bankroll: bankroll,
		}
		resolved = append(resolved, r)
		e.metrics.Resolutions.WithLabelValues(string(outcome)).Inc()

		if err := e.recordResolution(ctx, r); err != nil {
			state.Open = rest
			return resolved, err
		}

		log.Info().
			Str("market", trade.Market).
			Str("side", trade.Side.Upper()).
			Str("settled", status.SettledSide.Upper()).
			Str("result", string(outcome)).
			Str("payout", payout.StringFixed(2)).
			Str("bankroll", bankroll.StringFixed(2)).
			Msg("🏁 Trade resolved")

		e.notifier.Notify(ctx, fmt.Sprintf("Resolved: %s on %s - %s - New bankroll: $%s",
			trade.Side.Upper(), trade.Market, outcome, bankroll.StringFixed(2)), "")
	}

	state.Open = remaining

	// Final write of exactly the unsettled subset
	if err := e.store.Commit(ctx, state.Bankroll, state.Open); err != nil {
		return resolved, err
	}
	return resolved, nil
}

func (e *Engine) recordResolution(ctx context.Context, r Resolution) error {
	now := e.now()
	if err := e.store.AppendBankrollSnapshot(ctx, types.BankrollSnapshot{Timestamp: now, Bankroll: r.Bankroll}); err != nil {
		return err
	}
	return e.store.AppendTradeRecord(ctx, types.TradeRecord{
		Timestamp: now,
		Market:    r.Trade.Market,
		Side:      r.Trade.Side,
		Price:     r.Trade.Price,
		Quantity:  r.Trade.Quantity,
		Outcome:   r.Outcome,
		Bankroll:  r.Bankroll,
	})
}
