package kalshi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/domain"
)

func TestNormalizeRescalesCents(t *testing.T) {
	m := Market{
		Ticker:   "RAIN-26AUG",
		Title:    "Will it rain tomorrow",
		YesPrice: 54,
		Volume:   2000,
	}

	q, err := m.Normalize(time.Now())
	require.NoError(t, err)

	assert.Equal(t, domain.VenueKalshi, q.Venue)
	assert.Equal(t, "RAIN-26AUG", q.MarketID)
	assert.InDelta(t, 0.54, q.YesPrice, 1e-9)
	assert.Equal(t, "https://kalshi.com/markets/rain-26aug", q.URL)
}

func TestNormalizeAcceptsFractionalPrices(t *testing.T) {
	m := Market{Ticker: "T1", Title: "T", YesPrice: 0.54}

	q, err := m.Normalize(time.Now())
	require.NoError(t, err)
	assert.InDelta(t, 0.54, q.YesPrice, 1e-9)
}

func TestNormalizeRejectsDegenerateRecords(t *testing.T) {
	tests := []struct {
		name   string
		market Market
	}{
		{"missing ticker", Market{Title: "T", YesPrice: 50}},
		{"missing title", Market{Ticker: "T1", YesPrice: 50}},
		{"price zero", Market{Ticker: "T1", Title: "T", YesPrice: 0}},
		{"price hundred", Market{Ticker: "T1", Title: "T", YesPrice: 100}},
		{"negative volume", Market{Ticker: "T1", Title: "T", YesPrice: 50, Volume: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.market.Normalize(time.Now())
			assert.ErrorIs(t, err, domain.ErrInvalidQuote)
		})
	}
}
