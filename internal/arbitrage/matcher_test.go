package arbitrage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/domain"
)

func polyQuote(id, title string) domain.Quote {
	return domain.Quote{Venue: domain.VenuePolymarket, MarketID: id, Title: title, YesPrice: 0.5}
}

func kalshiQuote(id, title string) domain.Quote {
	return domain.Quote{Venue: domain.VenueKalshi, MarketID: id, Title: title, YesPrice: 0.5}
}

func TestMatchTitleVariants(t *testing.T) {
	m := NewTitleMatcher(DefaultPrefixLen)

	tests := []struct {
		name      string
		poly      string
		kalshi    string
		wantMatch bool
	}{
		{"identical", "Will it rain in NYC tomorrow?", "Will it rain in NYC tomorrow?", true},
		{"case and punctuation differ", "WILL IT RAIN IN NYC TOMORROW", "will it rain in n.y.c. tomorrow?", true},
		{"longer title contains shorter prefix", "Will the Fed cut rates in September 2026?", "Will the Fed cut rates?", true},
		{"unrelated titles", "Will it rain in NYC tomorrow?", "Will the Lakers win the finals?", false},
		{"short common prefix only", "Will X happen", "Will Y happen", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs := m.Match(
				[]domain.Quote{polyQuote("p1", tt.poly)},
				[]domain.Quote{kalshiQuote("k1", tt.kalshi)},
			)
			if tt.wantMatch {
				require.Len(t, pairs, 1)
				assert.Equal(t, "p1", pairs[0].Polymarket.MarketID)
				assert.Equal(t, "k1", pairs[0].Kalshi.MarketID)
			} else {
				assert.Empty(t, pairs)
			}
		})
	}
}

func TestMatchIsSymmetric(t *testing.T) {
	m := NewTitleMatcher(DefaultPrefixLen)
	long := "Will the Fed cut rates in September 2026?"
	short := "Will the Fed cut rates?"

	forward := m.Match([]domain.Quote{polyQuote("p1", long)}, []domain.Quote{kalshiQuote("k1", short)})
	reverse := m.Match([]domain.Quote{polyQuote("p1", short)}, []domain.Quote{kalshiQuote("k1", long)})

	assert.Len(t, forward, 1)
	assert.Len(t, reverse, 1)
}

func TestMatchEachQuoteJoinsAtMostOnePair(t *testing.T) {
	m := NewTitleMatcher(DefaultPrefixLen)

	poly := []domain.Quote{
		polyQuote("p1", "Will bitcoin close above 100k this year?"),
		polyQuote("p2", "Will bitcoin close above 100k this year (December)?"),
	}
	kalshi := []domain.Quote{
		kalshiQuote("k1", "Will bitcoin close above 100k this year?"),
	}

	pairs := m.Match(poly, kalshi)
	require.Len(t, pairs, 1)
	assert.Equal(t, "p1", pairs[0].Polymarket.MarketID, "first match wins")
}

func TestMatchEmptyTitlesNeverMatch(t *testing.T) {
	m := NewTitleMatcher(DefaultPrefixLen)

	pairs := m.Match(
		[]domain.Quote{polyQuote("p1", "???")},
		[]domain.Quote{kalshiQuote("k1", "!!!")},
	)
	assert.Empty(t, pairs, "titles that normalize to empty must not match")
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "willitrainnyc", normalizeTitle("Will it rain, N.Y.C.?"))
	assert.Equal(t, "", normalizeTitle("?!- "))
}
