package trading

import (
	"github.com/shopspring/decimal"
)

// ═══════════════════════════════════════════════════════════════════════════════
// POSITION SIZING - all-in, whole contracts
// ═══════════════════════════════════════════════════════════════════════════════
//
// Formula: quantity = floor(bankroll / cost_per_unit)
//
// QuoRem at precision 0 gives the exact integer quotient, so there is no
// float rounding between e.g. 10 / 0.05 and 200. The remainder stays in the
// bankroll, which therefore never goes negative.
//
// ═══════════════════════════════════════════════════════════════════════════════

// MaxQuantity is the number of whole contracts the bankroll can pay for.
// A zero or negative cost (a yes side quoted at 100¢) is never affordable.
func MaxQuantity(bankroll, costPerUnit decimal.Decimal) int64 {
	if !costPerUnit.IsPositive() || !bankroll.IsPositive() {
		return 0
	}
	q, _ := bankroll.QuoRem(costPerUnit, 0)
	return q.IntPart()
}

// TotalCost is what quantity contracts cost
func TotalCost(costPerUnit decimal.Decimal, quantity int64) decimal.Decimal {
	return costPerUnit.Mul(decimal.NewFromInt(quantity))
}
