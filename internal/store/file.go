package store

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/web3guy0/kalshibot/internal/types"
)

// File names inside the data directory
const (
	BankrollFile        = "bankroll.json"
	OpenTradesFile      = "open_trades.json"
	TradeHistoryFile    = "trades.csv"
	BankrollHistoryFile = "bankroll_history.csv"
	journalFile         = "commit.journal.json"
)

var (
	tradeHeader    = []string{"timestamp", "market", "side", "price", "quantity", "result", "bankroll"}
	bankrollHeader = []string{"timestamp", "bankroll"}
)

type bankrollDoc struct {
	Bankroll  decimal.Decimal `json:"bankroll"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type journalDoc struct {
	Bankroll decimal.Decimal   `json:"bankroll"`
	Trades   []types.OpenTrade `json:"trades"`
}

// FileStore keeps state as flat files. Overwrites are write-temp-then-rename,
// history appends are fsynced before returning.
type FileStore struct {
	dir  string
	seed decimal.Decimal
}

// NewFileStore opens (creating if needed) a data directory and rolls forward
// any commit interrupted by a crash.
func NewFileStore(dir string, seed decimal.Decimal) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, persistErr("create data dir", err)
	}
	s := &FileStore{dir: dir, seed: seed}
	if err := s.recoverJournal(); err != nil {
		return nil, err
	}
	log.Debug().Str("dir", dir).Msg("File store opened")
	return s, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

// ═══════════════════════════════════════════════════════════════════════════════
// BANKROLL + LEDGER
// ═══════════════════════════════════════════════════════════════════════════════

func (s *FileStore) LoadBankroll(_ context.Context) (decimal.Decimal, error) {
	data, err := os.ReadFile(s.path(BankrollFile))
	if errors.Is(err, os.ErrNotExist) {
		return s.seed, nil
	}
	if err != nil {
		return decimal.Zero, persistErr("read bankroll", err)
	}
	var doc bankrollDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return decimal.Zero, persistErr("decode bankroll", err)
	}
	return doc.Bankroll, nil
}

func (s *FileStore) SaveBankroll(_ context.Context, bankroll decimal.Decimal) error {
	return s.writeBankroll(bankroll)
}

func (s *FileStore) LoadOpenTrades(_ context.Context) ([]types.OpenTrade, error) {
	data, err := os.ReadFile(s.path(OpenTradesFile))
	if errors.Is(err, os.ErrNotExist) {
		return []types.OpenTrade{}, nil
	}
	if err != nil {
		return nil, persistErr("read open trades", err)
	}
	var trades []types.OpenTrade
	if err := json.Unmarshal(data, &trades); err != nil {
		return nil, persistErr("decode open trades", err)
	}
	if trades == nil {
		trades = []types.OpenTrade{}
	}
	return trades, nil
}

func (s *FileStore) SaveOpenTrades(_ context.Context, trades []types.OpenTrade) error {
	if err := validateLedger(trades); err != nil {
		return persistErr("save open trades", err)
	}
	return s.writeTrades(trades)
}

// Commit journals both values first so a crash between the two renames is
// finished on the next open.
func (s *FileStore) Commit(_ context.Context, bankroll decimal.Decimal, trades []types.OpenTrade) error {
	if err := validateLedger(trades); err != nil {
		return persistErr("commit", err)
	}
	if trades == nil {
		trades = []types.OpenTrade{}
	}
	if err := writeJSON(s.path(journalFile), journalDoc{Bankroll: bankroll, Trades: trades}); err != nil {
		return persistErr("write journal", err)
	}
	return s.applyJournal(journalDoc{Bankroll: bankroll, Trades: trades})
}

func (s *FileStore) applyJournal(j journalDoc) error {
	if err := s.writeTrades(j.Trades); err != nil {
		return err
	}
	if err := s.writeBankroll(j.Bankroll); err != nil {
		return err
	}
	if err := os.Remove(s.path(journalFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return persistErr("remove journal", err)
	}
	return nil
}

func (s *FileStore) recoverJournal() error {
	data, err := os.ReadFile(s.path(journalFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return persistErr("read journal", err)
	}
	var j journalDoc
	if err := json.Unmarshal(data, &j); err != nil {
		return persistErr("decode journal", err)
	}
	log.Warn().
		Str("bankroll", j.Bankroll.StringFixed(2)).
		Int("open_trades", len(j.Trades)).
		Msg("⚠️ Found interrupted commit, rolling forward")
	return s.applyJournal(j)
}

func (s *FileStore) writeBankroll(bankroll decimal.Decimal) error {
	doc := bankrollDoc{Bankroll: bankroll, UpdatedAt: time.Now().UTC()}
	if err := writeJSON(s.path(BankrollFile), doc); err != nil {
		return persistErr("write bankroll", err)
	}
	return nil
}

func (s *FileStore) writeTrades(trades []types.OpenTrade) error {
	if trades == nil {
		trades = []types.OpenTrade{}
	}
	if err := writeJSON(s.path(OpenTradesFile), trades); err != nil {
		return persistErr("write open trades", err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return renameio.WriteFile(path, data, 0644)
}

// ═══════════════════════════════════════════════════════════════════════════════
// HISTORY (CSV)
// ═══════════════════════════════════════════════════════════════════════════════

func (s *FileStore) AppendTradeRecord(_ context.Context, rec types.TradeRecord) error {
	row := []string{
		rec.Timestamp.Format(time.RFC3339Nano),
		rec.Market,
		string(rec.Side),
		rec.Price.String(),
		strconv.FormatInt(rec.Quantity, 10),
		string(rec.Outcome),
		rec.Bankroll.String(),
	}
	if err := appendCSV(s.path(TradeHistoryFile), tradeHeader, row); err != nil {
		return persistErr("append trade record", err)
	}
	return nil
}

func (s *FileStore) AppendBankrollSnapshot(_ context.Context, snap types.BankrollSnapshot) error {
	row := []string{snap.Timestamp.Format(time.RFC3339Nano), snap.Bankroll.String()}
	if err := appendCSV(s.path(BankrollHistoryFile), bankrollHeader, row); err != nil {
		return persistErr("append bankroll snapshot", err)
	}
	return nil
}

func (s *FileStore) TradeHistory(_ context.Context) ([]types.TradeRecord, error) {
	rows, err := readCSV(s.path(TradeHistoryFile))
	if err != nil {
		return nil, persistErr("read trade history", err)
	}
	records := make([]types.TradeRecord, 0, len(rows))
	for _, row := range rows {
		if len(row) != len(tradeHeader) {
			return nil, persistErr("read trade history", fmt.Errorf("row has %d columns", len(row)))
		}
		ts, err := time.Parse(time.RFC3339Nano, row[0])
		if err != nil {
			return nil, persistErr("parse trade timestamp", err)
		}
		price, err := decimal.NewFromString(row[3])
		if err != nil {
			return nil, persistErr("parse trade price", err)
		}
		qty, err := strconv.ParseInt(row[4], 10, 64)
		if err != nil {
			return nil, persistErr("parse trade quantity", err)
		}
		bankroll, err := decimal.NewFromString(row[6])
		if err != nil {
			return nil, persistErr("parse trade bankroll", err)
		}
		records = append(records, types.TradeRecord{
			Timestamp: ts,
			Market:    row[1],
			Side:      types.Side(row[2]),
			Price:     price,
			Quantity:  qty,
			Outcome:   types.Outcome(row[5]),
			Bankroll:  bankroll,
		})
	}
	return records, nil
}

func (s *FileStore) BankrollHistory(_ context.Context) ([]types.BankrollSnapshot, error) {
	rows, err := readCSV(s.path(BankrollHistoryFile))
	if err != nil {
		return nil, persistErr("read bankroll history", err)
	}
	snaps := make([]types.BankrollSnapshot, 0, len(rows))
	for _, row := range rows {
		if len(row) != len(bankrollHeader) {
			return nil, persistErr("read bankroll history", fmt.Errorf("row has %d columns", len(row)))
		}
		ts, err := time.Parse(time.RFC3339Nano, row[0])
		if err != nil {
			return nil, persistErr("parse snapshot timestamp", err)
		}
		bankroll, err := decimal.NewFromString(row[1])
		if err != nil {
			return nil, persistErr("parse snapshot bankroll", err)
		}
		snaps = append(snaps, types.BankrollSnapshot{Timestamp: ts, Bankroll: bankroll})
	}
	return snaps, nil
}

func (s *FileStore) Close() error { return nil }

func appendCSV(path string, header, row []string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return err
		}
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Sync()
}

// readCSV returns the data rows without the header; a missing file is empty
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	var rows [][]string
	header := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if header {
			header = false
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
