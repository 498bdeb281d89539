package store

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/web3guy0/kalshibot/internal/types"
)

// MemoryStore implements Store in memory. Used for testing; nothing survives
// the process.
type MemoryStore struct {
	mu        sync.Mutex
	seed      decimal.Decimal
	bankroll  *decimal.Decimal
	ledger    []types.OpenTrade
	trades    []types.TradeRecord
	snapshots []types.BankrollSnapshot

	// FailWrites makes every write return ErrPersistence.
	FailWrites bool
	// FailAppends makes only history appends fail.
	FailAppends bool
}

// NewMemoryStore creates an empty store that reports seed as the bankroll
func NewMemoryStore(seed decimal.Decimal) *MemoryStore {
	return &MemoryStore{seed: seed}
}

func (s *MemoryStore) LoadBankroll(_ context.Context) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bankroll == nil {
		return s.seed, nil
	}
	return *s.bankroll, nil
}

func (s *MemoryStore) SaveBankroll(_ context.Context, bankroll decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites {
		return persistErr("save bankroll", errInjected)
	}
	s.bankroll = &bankroll
	return nil
}

func (s *MemoryStore) LoadOpenTrades(_ context.Context) ([]types.OpenTrade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.OpenTrade, len(s.ledger))
	copy(out, s.ledger)
	return out, nil
}

func (s *MemoryStore) SaveOpenTrades(_ context.Context, trades []types.OpenTrade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites {
		return persistErr("save open trades", errInjected)
	}
	if err := validateLedger(trades); err != nil {
		return persistErr("save open trades", err)
	}
	s.ledger = append([]types.OpenTrade(nil), trades...)
	return nil
}

func (s *MemoryStore) Commit(_ context.Context, bankroll decimal.Decimal, trades []types.OpenTrade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites {
		return persistErr("commit", errInjected)
	}
	if err := validateLedger(trades); err != nil {
		return persistErr("commit", err)
	}
	s.bankroll = &bankroll
	s.ledger = append([]types.OpenTrade(nil), trades...)
	return nil
}

func (s *MemoryStore) AppendTradeRecord(_ context.Context, rec types.TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites || s.FailAppends {
		return persistErr("append trade record", errInjected)
	}
	s.trades = append(s.trades, rec)
	return nil
}

func (s *MemoryStore) AppendBankrollSnapshot(_ context.Context, snap types.BankrollSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites || s.FailAppends {
		return persistErr("append bankroll snapshot", errInjected)
	}
	s.snapshots = append(s.snapshots, snap)
	return nil
}

func (s *MemoryStore) TradeHistory(_ context.Context) ([]types.TradeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.TradeRecord(nil), s.trades...), nil
}

func (s *MemoryStore) BankrollHistory(_ context.Context) ([]types.BankrollSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.BankrollSnapshot(nil), s.snapshots...), nil
}

func (s *MemoryStore) Close() error { return nil }

var errInjected = errors.New("injected failure")
