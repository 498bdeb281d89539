package trading

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/web3guy0/kalshibot/internal/types"
)

// SettledTrade is a resolution row from the history with its realized P&L
type SettledTrade struct {
	types.TradeRecord
	Cost   decimal.Decimal
	Payout decimal.Decimal
	PnL    decimal.Decimal
}

// HistoryStats summarizes the trade history
type HistoryStats struct {
	Settled  []SettledTrade
	Wins     int
	Losses   int
	Pending  int // placements not yet matched by a resolution
	TotalPnL decimal.Decimal
	First    time.Time
	Last     time.Time
}

// WinRate is wins over settled trades, in percent
func (s HistoryStats) WinRate() float64 {
	n := s.Wins + s.Losses
	if n == 0 {
		return 0
	}
	return float64(s.Wins) / float64(n) * 100
}

// Summarize pairs placements with resolutions. Every WIN/LOSS row carries the
// trade's own price and quantity, so P&L comes from that row alone.
func Summarize(records []types.TradeRecord) HistoryStats {
	var s HistoryStats
	placed := 0
	for _, r := range records {
		if s.First.IsZero() || r.Timestamp.Before(s.First) {
			s.First = r.Timestamp
		}
		if r.Timestamp.After(s.Last) {
			s.Last = r.Timestamp
		}

		switch r.Outcome {
		case types.OutcomePending:
			placed++
			continue
		case types.OutcomeWin:
			s.Wins++
		case types.OutcomeLoss:
			s.Losses++
		default:
			continue
		}

		qty := decimal.NewFromInt(r.Quantity)
		cost := types.Candidate{Market: r.Market, Side: r.Side, Price: r.Price}.CostPerUnit().Mul(qty)
		payout := decimal.Zero
		if r.Outcome == types.OutcomeWin {
			payout = qty
		}
		st := SettledTrade{TradeRecord: r, Cost: cost, Payout: payout, PnL: payout.Sub(cost)}
		s.Settled = append(s.Settled, st)
		s.TotalPnL = s.TotalPnL.Add(st.PnL)
	}

	s.Pending = placed - len(s.Settled)
	if s.Pending < 0 {
		// history started after some trades were already open
		s.Pending = 0
	}
	return s
}
