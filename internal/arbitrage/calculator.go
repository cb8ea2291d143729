package arbitrage

import (
	"fmt"
	"math"
	"time"

	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/domain"
)

// Compute decides whether a matched pair admits a guaranteed-profit
// position and, if so, returns the opportunity. The second return value is
// false when no arbitrage exists; that is an ordinary outcome, not an error.
//
// The position buys YES on the cheaper venue and NO (priced as the
// complement) on the more expensive one. With totalCost = min(a,b) +
// (1-max(a,b)), a profit of 1-totalCost per unit is locked in exactly when
// totalCost < 1; totalCost == 1 is breakeven and is rejected.
func Compute(pair domain.MatchedPair, ttl time.Duration, now time.Time) (domain.Opportunity, bool) {
	a := pair.Polymarket.YesPrice
	b := pair.Kalshi.YesPrice

	yesCost := math.Min(a, b)
	noCost := 1 - math.Max(a, b)
	totalCost := yesCost + noCost

	if totalCost >= 1 {
		return domain.Opportunity{}, false
	}

	profitPct := (1 - totalCost) * 100

	// Informational only: the mean of the two venue prices is a rough
	// consensus-probability proxy, not a true win rate. Neither field
	// participates in the profit guarantee above.
	winProb := (a + b) / 2 * 100
	expectedValue := profitPct * winProb / 100

	opp := domain.Opportunity{
		ID:               IdentityKey(pair.Polymarket.MarketID, pair.Kalshi.MarketID),
		MarketName:       pair.Polymarket.Title,
		PolymarketID:     pair.Polymarket.MarketID,
		KalshiID:         pair.Kalshi.MarketID,
		PolymarketPrice:  a,
		KalshiPrice:      b,
		PolymarketURL:    pair.Polymarket.URL,
		KalshiURL:        pair.Kalshi.URL,
		ProfitPercentage: profitPct,
		WinProbability:   winProb,
		ExpectedValue:    expectedValue,
		Status:           domain.OpportunityActive,
		DiscoveredAt:     now,
		UpdatedAt:        now,
	}
	if ttl > 0 {
		expires := now.Add(ttl)
		opp.ExpiresAt = &expires
	}
	return opp, true
}

// IdentityKey derives the deterministic opportunity identity from the pair
// of venue-native market identifiers. Re-detecting the same pair always
// produces the same key, which is what makes the store's upsert idempotent.
func IdentityKey(polymarketID, kalshiID string) string {
	return fmt.Sprintf("arb-%s-%s", polymarketID, kalshiID)
}
