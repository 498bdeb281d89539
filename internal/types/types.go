package types

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ═══════════════════════════════════════════════════════════════════════════════
// SHARED TYPES - Avoid import cycles
// ═══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidSide is returned for anything other than "yes" or "no"
	ErrInvalidSide = errors.New("invalid side")
	// ErrInvalidQuote marks malformed market data (missing or out-of-range price)
	ErrInvalidQuote = errors.New("invalid quote")
	// ErrInvalidTrade marks an open trade that breaks price/quantity ranges
	ErrInvalidTrade = errors.New("invalid trade")
)

var one = decimal.NewFromInt(1)

// Side is one of the two outcomes of a binary market
type Side string

const (
	SideYes Side = "yes"
	SideNo  Side = "no"
)

// Sides in scan order
var Sides = []Side{SideYes, SideNo}

// ParseSide accepts "yes"/"no" in any case
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case SideYes:
		return SideYes, nil
	case SideNo:
		return SideNo, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSide, s)
}

// Upper is used in notifications ("YES on INXD-...")
func (s Side) Upper() string {
	return strings.ToUpper(string(s))
}

// Outcome is the result column of the trade history
type Outcome string

const (
	OutcomePending Outcome = "PENDING"
	OutcomeWin     Outcome = "WIN"
	OutcomeLoss    Outcome = "LOSS"
)

// MarketStatus values as seen by the core
const (
	StatusOpen    = "open"
	StatusSettled = "settled"
)

// ValidPrice reports whether p is a probability in (0,1]
func ValidPrice(p decimal.Decimal) bool {
	return p.IsPositive() && p.LessThanOrEqual(one)
}

// OpenTrade is a placed position that has not settled yet
type OpenTrade struct {
	ID       string          `json:"id"`
	Market   string          `json:"market"`
	Side     Side            `json:"side"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
	OpenedAt time.Time       `json:"opened_at"`
}

// Validate enforces price ∈ (0,1] and quantity > 0
func (t OpenTrade) Validate() error {
	if t.Market == "" {
		return fmt.Errorf("%w: empty market", ErrInvalidTrade)
	}
	if t.Side != SideYes && t.Side != SideNo {
		return fmt.Errorf("%w: side %q", ErrInvalidTrade, t.Side)
	}
	if !ValidPrice(t.Price) {
		return fmt.Errorf("%w: price %s", ErrInvalidTrade, t.Price)
	}
	if t.Quantity <= 0 {
		return fmt.Errorf("%w: quantity %d", ErrInvalidTrade, t.Quantity)
	}
	return nil
}

// Payout is the settlement value of the trade given the winning side
func (t OpenTrade) Payout(settled Side) decimal.Decimal {
	if t.Side != settled {
		return decimal.Zero
	}
	return decimal.NewFromInt(t.Quantity)
}

// MarketQuote is a live market with both sides priced in probability units.
// A side that failed validation at the gateway is left zero.
type MarketQuote struct {
	Ticker   string
	YesPrice decimal.Decimal
	NoPrice  decimal.Decimal
}

// Price returns the quote for a side, or ErrInvalidQuote if that side is unusable
func (q MarketQuote) Price(side Side) (decimal.Decimal, error) {
	var p decimal.Decimal
	switch side {
	case SideYes:
		p = q.YesPrice
	case SideNo:
		p = q.NoPrice
	default:
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidSide, side)
	}
	if !ValidPrice(p) {
		return decimal.Zero, fmt.Errorf("%w: %s %s price %s", ErrInvalidQuote, q.Ticker, side, p)
	}
	return p, nil
}

// MarketStatus is the per-market status used for resolution
type MarketStatus struct {
	Ticker      string
	Status      string
	SettledSide Side // empty unless settled
}

// Settled reports whether the market has a final outcome
func (s MarketStatus) Settled() bool {
	return s.Status == StatusSettled
}

// Candidate is a market side whose price met the threshold
type Candidate struct {
	Market string
	Side   Side
	Price  decimal.Decimal
}

// CostPerUnit is what one contract costs for this side: the complement for
// yes, the quoted price for no.
func (c Candidate) CostPerUnit() decimal.Decimal {
	if c.Side == SideYes {
		return one.Sub(c.Price)
	}
	return c.Price
}

// TradeRecord is one append-only row of the trade history
type TradeRecord struct {
	Timestamp time.Time
	Market    string
	Side      Side
	Price     decimal.Decimal
	Quantity  int64
	Outcome   Outcome
	Bankroll  decimal.Decimal // bankroll after this event
}

// BankrollSnapshot is one row of the bankroll time series
type BankrollSnapshot struct {
	Timestamp time.Time
	Bankroll  decimal.Decimal
}

// OrderResult is what an executor reports back for a placed order
type OrderResult struct {
	OrderID  string
	Accepted bool
	Status   string
}
