// kalshistats prints the trade history of the configured state store with
// realized P&L per settled trade. Read-only.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/web3guy0/kalshibot/internal/config"
	"github.com/web3guy0/kalshibot/internal/store"
	"github.com/web3guy0/kalshibot/internal/trading"
	"github.com/web3guy0/kalshibot/internal/types"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if err := config.LoadEnvFile(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}
	os.Exit(run(os.Stdout))
}

func run(out io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return 1
	}

	st, err := store.Open(cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open state store")
		return 1
	}
	defer st.Close()

	ctx := context.Background()
	records, err := st.TradeHistory(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read trade history")
		return 1
	}
	bankroll, err := st.LoadBankroll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read bankroll")
		return 1
	}

	s := trading.Summarize(records)

	fmt.Fprintf(out, "📊 TRADE HISTORY - %d rows, %d settled\n\n", len(records), len(s.Settled))
	fmt.Fprintln(out, "═══════════════════════════════════════════════════════════════════════")
	fmt.Fprintln(out, "│ DATE         │ MARKET                   │ SIDE │ PRICE  │ QTY    │ P&L")
	fmt.Fprintln(out, "═══════════════════════════════════════════════════════════════════════")
	for _, t := range s.Settled {
		mark := "✅"
		if t.Outcome == types.OutcomeLoss {
			mark = "❌"
		}
		fmt.Fprintf(out, "│ %-12s │ %-24s │ %-4s │ %5s%% │ %6d │ %9s %s\n",
			t.Timestamp.Format("Jan 2 15:04"),
			t.Market,
			t.Side.Upper(),
			t.Price.Shift(2).StringFixed(1),
			t.Quantity,
			t.PnL.StringFixed(2),
			mark,
		)
	}
	fmt.Fprintln(out, "═══════════════════════════════════════════════════════════════════════")

	fmt.Fprintf(out, "\n📈 SUMMARY:\n")
	fmt.Fprintf(out, "   Wins: %d | Losses: %d | Win Rate: %.1f%%\n", s.Wins, s.Losses, s.WinRate())
	fmt.Fprintf(out, "   Pending: %d\n", s.Pending)
	fmt.Fprintf(out, "   Realized P&L: $%s\n", s.TotalPnL.StringFixed(2))
	fmt.Fprintf(out, "   Bankroll: $%s\n", bankroll.StringFixed(2))
	if !s.First.IsZero() {
		fmt.Fprintf(out, "\n   Date Range: %s to %s\n", s.First.Format("Jan 2 15:04"), s.Last.Format("Jan 2 15:04"))
	}
	return 0
}
