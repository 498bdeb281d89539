// Kalshibot - Threshold Trading Bot for Kalshi
//
// One invocation is one run, meant to be scheduled (cron, systemd timer):
// 1. Settle open trades whose markets resolved
// 2. Scan markets for the best side priced at or above the threshold
// 3. Put the whole bankroll on it in whole contracts
// 4. Notify and redraw the bankroll chart
//
// DRY_RUN defaults to true; set DRY_RUN=false to send real orders.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/web3guy0/kalshibot/internal/config"
	"github.com/web3guy0/kalshibot/internal/execution"
	"github.com/web3guy0/kalshibot/internal/kalshi"
	"github.com/web3guy0/kalshibot/internal/metrics"
	"github.com/web3guy0/kalshibot/internal/notify"
	"github.com/web3guy0/kalshibot/internal/store"
	"github.com/web3guy0/kalshibot/internal/trading"
)

const version = "1.0.0"

func main() {
	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	// Load environment
	if err := config.LoadEnvFile(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	// run returns instead of exiting so its deferred cleanup always happens
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return 1
	}
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg)
	if err != nil {
		log.Error().Err(err).Str("backend", cfg.StateBackend).Msg("Failed to open state store")
		return 1
	}
	defer st.Close()

	if len(args) > 0 && args[0] == "--status" {
		if err := printStatus(ctx, st, out); err != nil {
			log.Error().Err(err).Msg("Failed to read state")
			return 1
		}
		return 0
	}

	log.Info().
		Str("version", version).
		Str("mode", cfg.Mode()).
		Str("suffix", cfg.MarketSuffix).
		Str("min_probability", cfg.MinProbability.String()).
		Str("backend", cfg.StateBackend).
		Msg("🎯 Kalshibot starting...")

	client := kalshi.NewClient(cfg.KalshiAPIURL, cfg.KalshiAPIKey, cfg.HTTPTimeout)
	rec := metrics.New()

	engine := trading.NewEngine(
		trading.Settings{
			MarketSuffix:   cfg.MarketSuffix,
			MinProbability: cfg.MinProbability,
			ChartPath:      cfg.ChartPath,
		},
		client,
		execution.New(cfg.DryRun, client),
		st,
		notify.FromConfig(cfg),
		rec,
	)

	summary, err := engine.Run(ctx)
	if err != nil {
		if trading.IsFatal(err) {
			log.Error().Err(err).Msg("🚨 State could not be saved, aborting")
		} else {
			log.Error().Err(err).Msg("Run failed")
		}
		return 1
	}

	ev := log.Info().
		Int("resolved", len(summary.Resolved)).
		Int("wins", summary.Wins).
		Int("losses", summary.Losses).
		Str("bankroll", summary.Bankroll.StringFixed(2)).
		Int("open_trades", summary.OpenTrades).
		Dur("took", summary.CompletedAt.Sub(summary.StartedAt))
	if summary.Placed != nil {
		ev = ev.Str("placed", summary.Placed.Market).Int64("quantity", summary.Placed.Quantity)
	} else {
		ev = ev.Str("skipped", summary.Skipped)
	}
	ev.Msg("✅ Run complete")

	if cfg.MetricsPath != "" {
		if err := rec.WriteTextfile(cfg.MetricsPath); err != nil {
			log.Warn().Err(err).Str("path", cfg.MetricsPath).Msg("⚠️ Failed to write metrics")
		}
	}
	return 0
}

func printStatus(ctx context.Context, st store.Store, out io.Writer) error {
	bankroll, err := st.LoadBankroll(ctx)
	if err != nil {
		return err
	}
	open, err := st.LoadOpenTrades(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Bankroll: $%s\n", bankroll.StringFixed(2))
	fmt.Fprintf(out, "Open trades: %d\n", len(open))
	for _, t := range open {
		fmt.Fprintf(out, "  %s  %-3s  %-24s @ %s  x%d\n",
			t.OpenedAt.Format("2006-01-02 15:04"), t.Side.Upper(), t.Market, t.Price.StringFixed(2), t.Quantity)
	}
	return nil
}
