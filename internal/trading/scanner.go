package trading

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/web3guy0/kalshibot/internal/types"
)

// Scan fetches live markets and returns the best qualifying side, or nil when
// nothing meets the threshold. An error means the market list itself could
// not be fetched.
func (e *Engine) Scan(ctx context.Context) (*types.Candidate, error) {
	quotes, err := e.markets.ListMarkets(ctx, e.settings.MarketSuffix)
	if err != nil {
		e.metrics.GatewayErrors.WithLabelValues("list_markets").Inc()
		return nil, fmt.Errorf("list markets %q: %w", e.settings.MarketSuffix, err)
	}

	candidates := FindCandidates(quotes, e.settings.MinProbability)
	e.metrics.Candidates.Set(float64(len(candidates)))

	log.Info().
		Int("markets", len(quotes)).
		Int("candidates", len(candidates)).
		Str("min_probability", e.settings.MinProbability.String()).
		Msg("🔍 Market scan complete")

	return SelectBest(candidates), nil
}

// FindCandidates returns every side priced at or above minProb, in quote
// order with yes before no. Sides with malformed prices are skipped.
func FindCandidates(quotes []types.MarketQuote, minProb decimal.Decimal) []types.Candidate {
	var out []types.Candidate
	for _, q := range quotes {
		for _, side := range types.Sides {
			price, err := q.Price(side)
			if err != nil {
				log.Debug().Err(err).Msg("Skipping side")
				continue
			}
			if price.GreaterThanOrEqual(minProb) {
				out = append(out, types.Candidate{Market: q.Ticker, Side: side, Price: price})
			}
		}
	}
	return out
}

// SelectBest picks the highest price. Ties go to the candidate seen first,
// which is deterministic given the gateway's market order.
func SelectBest(candidates []types.Candidate) *types.Candidate {
	if len(candidates) == 0 {
		return nil
	}
	sorted := append([]types.Candidate(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Price.GreaterThan(sorted[j].Price)
	})
	best := sorted[0]
	return &best
}
