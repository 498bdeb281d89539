// Package trading runs the trade lifecycle for one invocation of the bot:
//
//	Resolve → Scan → Size → Commit → Report
//
// Pending trades are settled first, then live markets are scanned for the
// single best side at or above the probability threshold, and at most one new
// trade is placed against the persisted bankroll.
//
// The engine has no internal locking. Callers must guarantee that at most one
// run touches a given state store at a time (cron without overlap, flock, a
// systemd timer).
package trading

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/web3guy0/kalshibot/internal/execution"
	"github.com/web3guy0/kalshibot/internal/metrics"
	"github.com/web3guy0/kalshibot/internal/notify"
	"github.com/web3guy0/kalshibot/internal/store"
	"github.com/web3guy0/kalshibot/internal/types"
)

// MarketGateway is the read-only market data source (kalshi.Client)
type MarketGateway interface {
	ListMarkets(ctx context.Context, suffix string) ([]types.MarketQuote, error)
	GetMarket(ctx context.Context, ticker string) (types.MarketStatus, error)
}

// Settings are the strategy knobs taken from config
type Settings struct {
	MarketSuffix   string
	MinProbability decimal.Decimal
	ChartPath      string
}

// State is the bankroll and ledger for the current run. It is loaded once and
// threaded through every step; the store is updated whenever it changes.
type State struct {
	Bankroll decimal.Decimal
	Open     []types.OpenTrade
}

// Skip reasons reported in RunSummary
const (
	SkipNoCandidate  = "no qualifying trade"
	SkipInsufficient = "insufficient bankroll"
	SkipScanFailed   = "market scan failed"
	SkipOrderFailed  = "order not placed"
)

// RunSummary describes what one run did
type RunSummary struct {
	Resolved    []Resolution
	Wins        int
	Losses      int
	Placed      *types.OpenTrade
	Skipped     string
	Bankroll    decimal.Decimal
	OpenTrades  int
	StartedAt   time.Time
	CompletedAt time.Time
}

// Engine wires the gateways, store and notifier together
type Engine struct {
	settings Settings
	markets  MarketGateway
	executor execution.Executor
	store    store.Store
	notifier notify.Notifier
	metrics  *metrics.Recorder

	now func() time.Time
}

// NewEngine creates an engine; nil notifier and metrics get no-op defaults
func NewEngine(settings Settings, markets MarketGateway, executor execution.Executor,
	st store.Store, notifier notify.Notifier, rec *metrics.Recorder) *Engine {

	if notifier == nil {
		notifier = notify.Nop{}
	}
	if rec == nil {
		rec = metrics.New()
	}
	return &Engine{
		settings: settings,
		markets:  markets,
		executor: executor,
		store:    st,
		notifier: notifier,
		metrics:  rec,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// LoadState reads bankroll and ledger from the store
func (e *Engine) LoadState(ctx context.Context) (*State, error) {
	bankroll, err := e.store.LoadBankroll(ctx)
	if err != nil {
		return nil, err
	}
	open, err := e.store.LoadOpenTrades(ctx)
	if err != nil {
		return nil, err
	}
	return &State{Bankroll: bankroll, Open: open}, nil
}

// Run executes one full invocation. The only errors returned are persistence
// failures; gateway problems are logged and skipped.
func (e *Engine) Run(ctx context.Context) (*RunSummary, error) {
	summary := &RunSummary{StartedAt: e.now()}

	state, err := e.LoadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	log.Info().
		Str("bankroll", state.Bankroll.StringFixed(2)).
		Int("open_trades", len(state.Open)).
		Str("mode", e.executor.Mode()).
		Msg("🚀 Run started")

	// 1. Settle what we can
	resolved, err := e.Resolve(ctx, state)
	summary.Resolved = resolved
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	for _, r := range resolved {
		if r.Outcome == types.OutcomeWin {
			summary.Wins++
		} else {
			summary.Losses++
		}
	}

	// 2-4. Look for one new trade
	placed, skip, err := e.tryTrade(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	summary.Placed = placed
	summary.Skipped = skip

	// 5. Chart (never fatal)
	e.Report(ctx)

	summary.Bankroll = state.Bankroll
	summary.OpenTrades = len(state.Open)
	summary.CompletedAt = e.now()

	e.metrics.Bankroll.Set(state.Bankroll.InexactFloat64())
	e.metrics.OpenTrades.Set(float64(len(state.Open)))

	return summary, nil
}

func (e *Engine) tryTrade(ctx context.Context, state *State) (*types.OpenTrade, string, error) {
	best, err := e.Scan(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ Market scan failed, no new trade this run")
		return nil, SkipScanFailed, nil
	}
	if best == nil {
		log.Info().Msg("📭 No qualifying trades")
		e.notifier.Notify(ctx, "No qualifying trades found today.", "")
		return nil, SkipNoCandidate, nil
	}

	cost := best.CostPerUnit()
	qty := MaxQuantity(state.Bankroll, cost)
	if qty == 0 {
		log.Info().
			Str("bankroll", state.Bankroll.StringFixed(2)).
			Str("cost_per_unit", cost.String()).
			Msg("💸 Not enough bankroll for a trade")
		e.notifier.Notify(ctx, "Not enough bankroll for a trade.", "")
		return nil, SkipInsufficient, nil
	}

	trade, err := e.Commit(ctx, state, *best, qty)
	if err != nil {
		return nil, "", err
	}
	if trade == nil {
		return nil, SkipOrderFailed, nil
	}
	return trade, "", nil
}

// IsFatal reports whether err must abort the process
func IsFatal(err error) bool {
	return errors.Is(err, store.ErrPersistence)
}
