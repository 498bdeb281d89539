package trading

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/web3guy0/kalshibot/internal/chart"
)

// Report redraws the bankroll chart and sends it. Failures only log.
func (e *Engine) Report(ctx context.Context) bool {
	if e.settings.ChartPath == "" {
		return false
	}

	history, err := e.store.BankrollHistory(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ Bankroll history unavailable, skipping report")
		return false
	}

	if err := chart.RenderBankroll(history, e.settings.ChartPath); err != nil {
		if errors.Is(err, chart.ErrNotEnoughData) {
			log.Debug().Int("points", len(history)).Msg("Not enough history for a chart yet")
		} else {
			log.Warn().Err(err).Msg("⚠️ Chart rendering failed")
		}
		return false
	}

	e.notifier.Notify(ctx, "📈 Current bankroll trend:", e.settings.ChartPath)
	return true
}
