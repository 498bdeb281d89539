// Package store persists the bot's running state: the bankroll, the ledger of
// open trades, and the append-only trade and bankroll histories.
//
// Implementations: FileStore (JSON + CSV files in a data directory), GormStore
// (SQLite or PostgreSQL) and MemoryStore (tests).
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/web3guy0/kalshibot/internal/config"
	"github.com/web3guy0/kalshibot/internal/types"
)

// ErrPersistence wraps every storage failure. Callers must abort the run.
var ErrPersistence = errors.New("persistence failure")

// Store is the persistence interface used by the trading engine
type Store interface {
	// LoadBankroll returns the seed when no bankroll was saved yet.
	LoadBankroll(ctx context.Context) (decimal.Decimal, error)
	SaveBankroll(ctx context.Context, bankroll decimal.Decimal) error

	LoadOpenTrades(ctx context.Context) ([]types.OpenTrade, error)
	// SaveOpenTrades replaces the whole ledger.
	SaveOpenTrades(ctx context.Context, trades []types.OpenTrade) error

	// Commit replaces bankroll and ledger together; either both land or neither.
	Commit(ctx context.Context, bankroll decimal.Decimal, trades []types.OpenTrade) error

	// --- Append-only history ---

	AppendTradeRecord(ctx context.Context, rec types.TradeRecord) error
	AppendBankrollSnapshot(ctx context.Context, snap types.BankrollSnapshot) error
	TradeHistory(ctx context.Context) ([]types.TradeRecord, error)
	BankrollHistory(ctx context.Context) ([]types.BankrollSnapshot, error)

	Close() error
}

// Open builds the store selected by cfg.StateBackend
func Open(cfg *config.Config) (Store, error) {
	switch cfg.StateBackend {
	case config.BackendFile:
		return NewFileStore(cfg.DataDir, cfg.InitialBankroll)
	case config.BackendSQLite, config.BackendPostgres:
		return NewGormStore(cfg.DatabasePath, cfg.InitialBankroll)
	}
	return nil, fmt.Errorf("unknown state backend %q", cfg.StateBackend)
}

func persistErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

func validateLedger(trades []types.OpenTrade) error {
	for _, t := range trades {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}
