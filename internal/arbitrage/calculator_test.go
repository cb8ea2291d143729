package arbitrage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/domain"
)

func pairAt(polyPrice, kalshiPrice float64) domain.MatchedPair {
	return domain.MatchedPair{
		Polymarket: domain.Quote{
			Venue:    domain.VenuePolymarket,
			MarketID: "p1",
			Title:    "Will it rain tomorrow?",
			YesPrice: polyPrice,
			URL:      "https://polymarket.com/event/rain",
		},
		Kalshi: domain.Quote{
			Venue:    domain.VenueKalshi,
			MarketID: "k1",
			Title:    "Will it rain tomorrow",
			YesPrice: kalshiPrice,
			URL:      "https://kalshi.com/markets/rain",
		},
	}
}

func TestComputeProfitability(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name    string
		poly    float64
		kalshi  float64
		wantOK  bool
		wantPct float64
	}{
		{"profitable spread", 0.42, 0.54, true, 12.0},
		{"breakeven is rejected", 0.50, 0.50, false, 0},
		{"total above one", 0.60, 0.55, false, 0},
		{"tiny edge", 0.495, 0.50, true, 0.5},
		{"inverted spread", 0.54, 0.42, true, 12.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opp, ok := Compute(pairAt(tt.poly, tt.kalshi), 0, now)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.InDelta(t, tt.wantPct, opp.ProfitPercentage, 1e-9)
			assert.Equal(t, domain.OpportunityActive, opp.Status)
		})
	}
}

func TestComputeFields(t *testing.T) {
	now := time.Now().UTC()

	opp, ok := Compute(pairAt(0.42, 0.54), 30*time.Minute, now)
	require.True(t, ok)

	assert.Equal(t, "arb-p1-k1", opp.ID)
	assert.Equal(t, "Will it rain tomorrow?", opp.MarketName)
	assert.InDelta(t, 0.42, opp.PolymarketPrice, 1e-9)
	assert.InDelta(t, 0.54, opp.KalshiPrice, 1e-9)
	assert.Equal(t, "https://polymarket.com/event/rain", opp.PolymarketURL)
	assert.Equal(t, "https://kalshi.com/markets/rain", opp.KalshiURL)

	assert.InDelta(t, 48.0, opp.WinProbability, 1e-9)
	assert.InDelta(t, 12.0*48.0/100, opp.ExpectedValue, 1e-9)

	assert.Equal(t, now, opp.DiscoveredAt)
	assert.Equal(t, now, opp.UpdatedAt)
	require.NotNil(t, opp.ExpiresAt)
	assert.Equal(t, now.Add(30*time.Minute), *opp.ExpiresAt)
}

func TestComputeZeroTTLLeavesNoExpiry(t *testing.T) {
	opp, ok := Compute(pairAt(0.42, 0.54), 0, time.Now())
	require.True(t, ok)
	assert.Nil(t, opp.ExpiresAt)
}

func TestIdentityKeyIsDeterministic(t *testing.T) {
	assert.Equal(t, "arb-p1-k1", IdentityKey("p1", "k1"))
	assert.Equal(t, IdentityKey("p1", "k1"), IdentityKey("p1", "k1"))
	assert.NotEqual(t, IdentityKey("p1", "k1"), IdentityKey("k1", "p1"))
}
