package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParseSide(t *testing.T) {
	s, err := ParseSide(" YES ")
	require.NoError(t, err)
	assert.Equal(t, SideYes, s)

	s, err = ParseSide("no")
	require.NoError(t, err)
	assert.Equal(t, SideNo, s)

	_, err = ParseSide("maybe")
	assert.ErrorIs(t, err, ErrInvalidSide)
}

func TestCostPerUnit(t *testing.T) {
	yes := Candidate{Market: "A", Side: SideYes, Price: d("0.95")}
	no := Candidate{Market: "A", Side: SideNo, Price: d("0.95")}

	assert.True(t, yes.CostPerUnit().Equal(d("0.05")))
	assert.True(t, no.CostPerUnit().Equal(d("0.95")))
}

func TestPayout(t *testing.T) {
	trade := OpenTrade{Market: "A", Side: SideYes, Price: d("0.95"), Quantity: 5}

	assert.True(t, trade.Payout(SideYes).Equal(decimal.NewFromInt(5)))
	assert.True(t, trade.Payout(SideNo).IsZero())
}

func TestOpenTradeValidate(t *testing.T) {
	good := OpenTrade{Market: "A", Side: SideNo, Price: d("1"), Quantity: 1}
	require.NoError(t, good.Validate())

	cases := map[string]OpenTrade{
		"zero price":    {Market: "A", Side: SideNo, Price: decimal.Zero, Quantity: 1},
		"price above 1": {Market: "A", Side: SideNo, Price: d("1.01"), Quantity: 1},
		"zero quantity": {Market: "A", Side: SideNo, Price: d("0.5"), Quantity: 0},
		"bad side":      {Market: "A", Side: "up", Price: d("0.5"), Quantity: 1},
		"no market":     {Side: SideYes, Price: d("0.5"), Quantity: 1},
	}
	for name, tr := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, tr.Validate(), ErrInvalidTrade)
		})
	}
}

func TestQuotePrice(t *testing.T) {
	q := MarketQuote{Ticker: "A", YesPrice: d("0.97")}

	p, err := q.Price(SideYes)
	require.NoError(t, err)
	assert.True(t, p.Equal(d("0.97")))

	_, err = q.Price(SideNo)
	assert.ErrorIs(t, err, ErrInvalidQuote)
}
