package polymarket

import (
	"fmt"
	"strings"
	"time"

	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/domain"
)

// APIMarket is the venue-native market record as returned by the Gamma API.
type APIMarket struct {
	ID       string  `json:"id"`
	Question string  `json:"question"`
	Slug     string  `json:"slug"`
	Price    float64 `json:"price"` // YES price in [0,1]
	Volume   float64 `json:"volume"`
	URL      string  `json:"url"`
}

// Normalize converts the venue-native record into a canonical quote. It
// returns domain.ErrInvalidQuote when the record is missing an identifier or
// title, or when the price is degenerate (outside the open interval (0,1)).
func (m APIMarket) Normalize(fetchedAt time.Time) (domain.Quote, error) {
	if strings.TrimSpace(m.ID) == "" {
		return domain.Quote{}, fmt.Errorf("%w: missing market id", domain.ErrInvalidQuote)
	}
	title := strings.TrimSpace(m.Question)
	if title == "" {
		title = strings.TrimSpace(m.Slug)
	}
	if title == "" {
		return domain.Quote{}, fmt.Errorf("%w: market %s has no title", domain.ErrInvalidQuote, m.ID)
	}
	if m.Price <= 0 || m.Price >= 1 {
		return domain.Quote{}, fmt.Errorf("%w: market %s price %.4f outside (0,1)", domain.ErrInvalidQuote, m.ID, m.Price)
	}
	if m.Volume < 0 {
		return domain.Quote{}, fmt.Errorf("%w: market %s negative volume", domain.ErrInvalidQuote, m.ID)
	}

	url := m.URL
	if url == "" && m.Slug != "" {
		url = "https://polymarket.com/event/" + m.Slug
	}

	return domain.Quote{
		Venue:     domain.VenuePolymarket,
		MarketID:  m.ID,
		Title:     title,
		YesPrice:  m.Price,
		Volume:    m.Volume,
		URL:       url,
		FetchedAt: fetchedAt,
	}, nil
}
