package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/web3guy0/kalshibot/internal/types"
)

// Models

type BankrollState struct {
	ID        uint            `gorm:"primaryKey"`
	Bankroll  decimal.Decimal `gorm:"type:decimal(20,8)"`
	UpdatedAt time.Time
}

type OpenTradeRow struct {
	ID       string          `gorm:"primaryKey"`
	Seq      int             `gorm:"index"` // ledger order
	Market   string          `gorm:"index"`
	Side     string
	Price    decimal.Decimal `gorm:"type:decimal(10,6)"`
	Quantity int64
	OpenedAt time.Time
}

func (OpenTradeRow) TableName() string { return "open_trades" }

type TradeRecordRow struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"`
	Timestamp time.Time       `gorm:"index"`
	Market    string          `gorm:"index"`
	Side      string
	Price     decimal.Decimal `gorm:"type:decimal(10,6)"`
	Quantity  int64
	Outcome   string          `gorm:"index"` // PENDING, WIN, LOSS
	Bankroll  decimal.Decimal `gorm:"type:decimal(20,8)"`
}

func (TradeRecordRow) TableName() string { return "trade_records" }

type BankrollSnapshotRow struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"`
	Timestamp time.Time       `gorm:"index"`
	Bankroll  decimal.Decimal `gorm:"type:decimal(20,8)"`
}

func (BankrollSnapshotRow) TableName() string { return "bankroll_snapshots" }

const bankrollRowID = 1

// GormStore persists state in SQLite or PostgreSQL
type GormStore struct {
	db   *gorm.DB
	seed decimal.Decimal
}

// NewGormStore opens a PostgreSQL DSN (postgres:// or postgresql://) or
// otherwise a SQLite file path, and migrates the schema.
func NewGormStore(dbPath string, seed decimal.Decimal) (*GormStore, error) {
	var db *gorm.DB
	var err error

	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	if strings.HasPrefix(dbPath, "postgres://") || strings.HasPrefix(dbPath, "postgresql://") {
		db, err = gorm.Open(postgres.Open(dbPath), gcfg)
		if err != nil {
			return nil, persistErr("open postgres", err)
		}
		log.Info().Msg("Database connected (PostgreSQL)")
	} else {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, persistErr("create db dir", err)
		}
		db, err = gorm.Open(sqlite.Open(dbPath), gcfg)
		if err != nil {
			return nil, persistErr("open sqlite", err)
		}
		log.Info().Str("path", dbPath).Msg("Database initialized (SQLite)")
	}

	if err := db.AutoMigrate(&BankrollState{}, &OpenTradeRow{}, &TradeRecordRow{}, &BankrollSnapshotRow{}); err != nil {
		return nil, persistErr("migrate", err)
	}

	return &GormStore{db: db, seed: seed}, nil
}

// Bankroll + ledger

func (s *GormStore) LoadBankroll(ctx context.Context) (decimal.Decimal, error) {
	var state BankrollState
	err := s.db.WithContext(ctx).First(&state, bankrollRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.seed, nil
	}
	if err != nil {
		return decimal.Zero, persistErr("load bankroll", err)
	}
	return state.Bankroll, nil
}

func (s *GormStore) SaveBankroll(ctx context.Context, bankroll decimal.Decimal) error {
	if err := saveBankroll(s.db.WithContext(ctx), bankroll); err != nil {
		return persistErr("save bankroll", err)
	}
	return nil
}

func (s *GormStore) LoadOpenTrades(ctx context.Context) ([]types.OpenTrade, error) {
	var rows []OpenTradeRow
	if err := s.db.WithContext(ctx).Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, persistErr("load open trades", err)
	}
	trades := make([]types.OpenTrade, 0, len(rows))
	for _, r := range rows {
		trades = append(trades, types.OpenTrade{
			ID:       r.ID,
			Market:   r.Market,
			Side:     types.Side(r.Side),
			Price:    r.Price,
			Quantity: r.Quantity,
			OpenedAt: r.OpenedAt,
		})
	}
	return trades, nil
}

func (s *GormStore) SaveOpenTrades(ctx context.Context, trades []types.OpenTrade) error {
	if err := validateLedger(trades); err != nil {
		return persistErr("save open trades", err)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return replaceLedger(tx, trades)
	})
	if err != nil {
		return persistErr("save open trades", err)
	}
	return nil
}

func (s *GormStore) Commit(ctx context.Context, bankroll decimal.Decimal, trades []types.OpenTrade) error {
	if err := validateLedger(trades); err != nil {
		return persistErr("commit", err)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := replaceLedger(tx, trades); err != nil {
			return err
		}
		return saveBankroll(tx, bankroll)
	})
	if err != nil {
		return persistErr("commit", err)
	}
	return nil
}

func saveBankroll(tx *gorm.DB, bankroll decimal.Decimal) error {
	return tx.Save(&BankrollState{ID: bankrollRowID, Bankroll: bankroll, UpdatedAt: time.Now().UTC()}).Error
}

func replaceLedger(tx *gorm.DB, trades []types.OpenTrade) error {
	if err := tx.Where("1 = 1").Delete(&OpenTradeRow{}).Error; err != nil {
		return err
	}
	if len(trades) == 0 {
		return nil
	}
	rows := make([]OpenTradeRow, 0, len(trades))
	for i, t := range trades {
		rows = append(rows, OpenTradeRow{
			ID:       t.ID,
			Seq:      i,
			Market:   t.Market,
			Side:     string(t.Side),
			Price:    t.Price,
			Quantity: t.Quantity,
			OpenedAt: t.OpenedAt,
		})
	}
	return tx.Create(&rows).Error
}

// History

func (s *GormStore) AppendTradeRecord(ctx context.Context, rec types.TradeRecord) error {
	row := &TradeRecordRow{
		Timestamp: rec.Timestamp,
		Market:    rec.Market,
		Side:      string(rec.Side),
		Price:     rec.Price,
		Quantity:  rec.Quantity,
		Outcome:   string(rec.Outcome),
		Bankroll:  rec.Bankroll,
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return persistErr("append trade record", err)
	}
	return nil
}

func (s *GormStore) AppendBankrollSnapshot(ctx context.Context, snap types.BankrollSnapshot) error {
	row := &BankrollSnapshotRow{Timestamp: snap.Timestamp, Bankroll: snap.Bankroll}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return persistErr("append bankroll snapshot", err)
	}
	return nil
}

func (s *GormStore) TradeHistory(ctx context.Context) ([]types.TradeRecord, error) {
	var rows []TradeRecordRow
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, persistErr("trade history", err)
	}
	records := make([]types.TradeRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, types.TradeRecord{
			Timestamp: r.Timestamp,
			Market:    r.Market,
			Side:      types.Side(r.Side),
			Price:     r.Price,
			Quantity:  r.Quantity,
			Outcome:   types.Outcome(r.Outcome),
			Bankroll:  r.Bankroll,
		})
	}
	return records, nil
}

func (s *GormStore) BankrollHistory(ctx context.Context) ([]types.BankrollSnapshot, error) {
	var rows []BankrollSnapshotRow
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, persistErr("bankroll history", err)
	}
	snaps := make([]types.BankrollSnapshot, 0, len(rows))
	for _, r := range rows {
		snaps = append(snaps, types.BankrollSnapshot{Timestamp: r.Timestamp, Bankroll: r.Bankroll})
	}
	return snaps, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
