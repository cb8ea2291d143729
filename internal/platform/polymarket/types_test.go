package polymarket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/domain"
)

func TestNormalize(t *testing.T) {
	fetchedAt := time.Now().UTC()

	m := APIMarket{
		ID:       "0x123",
		Question: "Will it rain tomorrow?",
		Slug:     "will-it-rain-tomorrow",
		Price:    0.42,
		Volume:   15000,
	}

	q, err := m.Normalize(fetchedAt)
	require.NoError(t, err)

	assert.Equal(t, domain.VenuePolymarket, q.Venue)
	assert.Equal(t, "0x123", q.MarketID)
	assert.Equal(t, "Will it rain tomorrow?", q.Title)
	assert.InDelta(t, 0.42, q.YesPrice, 1e-9)
	assert.InDelta(t, 0.58, q.NoPrice(), 1e-9)
	assert.Equal(t, "https://polymarket.com/event/will-it-rain-tomorrow", q.URL)
	assert.Equal(t, fetchedAt, q.FetchedAt)
}

func TestNormalizeFallsBackToSlugTitle(t *testing.T) {
	m := APIMarket{ID: "0x123", Slug: "rain-tomorrow", Price: 0.42}

	q, err := m.Normalize(time.Now())
	require.NoError(t, err)
	assert.Equal(t, "rain-tomorrow", q.Title)
}

func TestNormalizeRejectsDegenerateRecords(t *testing.T) {
	tests := []struct {
		name   string
		market APIMarket
	}{
		{"missing id", APIMarket{Question: "Q?", Price: 0.5}},
		{"missing title and slug", APIMarket{ID: "0x1", Price: 0.5}},
		{"price zero", APIMarket{ID: "0x1", Question: "Q?", Price: 0}},
		{"price one", APIMarket{ID: "0x1", Question: "Q?", Price: 1}},
		{"price above one", APIMarket{ID: "0x1", Question: "Q?", Price: 1.2}},
		{"negative volume", APIMarket{ID: "0x1", Question: "Q?", Price: 0.5, Volume: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.market.Normalize(time.Now())
			assert.ErrorIs(t, err, domain.ErrInvalidQuote)
		})
	}
}
