package kalshi

import (
	"fmt"
	"strings"
	"time"

	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/domain"
)

// Market is the venue-native market record. Kalshi quotes prices in cents.
type Market struct {
	Ticker   string  `json:"ticker"`
	Title    string  `json:"title"`
	YesPrice float64 `json:"yes_price"` // cents, 0-100
	NoPrice  float64 `json:"no_price"`  // cents, 0-100
	Volume   float64 `json:"volume"`
	URL      string  `json:"url"`
}

// Normalize converts the venue-native record into a canonical quote,
// rescaling the cent price into [0,1]. It returns domain.ErrInvalidQuote on
// a missing ticker or title, or a degenerate price.
func (m Market) Normalize(fetchedAt time.Time) (domain.Quote, error) {
	if strings.TrimSpace(m.Ticker) == "" {
		return domain.Quote{}, fmt.Errorf("%w: missing ticker", domain.ErrInvalidQuote)
	}
	if strings.TrimSpace(m.Title) == "" {
		return domain.Quote{}, fmt.Errorf("%w: market %s has no title", domain.ErrInvalidQuote, m.Ticker)
	}

	yes := m.YesPrice
	// Tolerate feeds that already deliver fractional prices.
	if yes > 1 {
		yes = yes / 100
	}
	if yes <= 0 || yes >= 1 {
		return domain.Quote{}, fmt.Errorf("%w: market %s yes price %.4f outside (0,1)", domain.ErrInvalidQuote, m.Ticker, yes)
	}
	if m.Volume < 0 {
		return domain.Quote{}, fmt.Errorf("%w: market %s negative volume", domain.ErrInvalidQuote, m.Ticker)
	}

	url := m.URL
	if url == "" {
		url = "https://kalshi.com/markets/" + strings.ToLower(m.Ticker)
	}

	return domain.Quote{
		Venue:     domain.VenueKalshi,
		MarketID:  m.Ticker,
		Title:     m.Title,
		YesPrice:  yes,
		Volume:    m.Volume,
		URL:       url,
		FetchedAt: fetchedAt,
	}, nil
}
