package domain

import "time"

// Venue identifies one of the two prediction-market platforms.
type Venue string

const (
	VenuePolymarket Venue = "polymarket"
	VenueKalshi     Venue = "kalshi"
)

// Quote is the canonical, venue-neutral view of one binary market's YES
// price. Quotes are ephemeral: each scan cycle produces a fresh set and they
// are never persisted directly, only cached as the latest venue snapshot.
//
// Invariant: YesPrice is strictly between 0 and 1. A quote at exactly 0 or 1
// is degenerate (the market is already decided) and must be rejected by the
// venue normalizers before it ever reaches the matcher.
type Quote struct {
	Venue     Venue     `json:"venue"`
	MarketID  string    `json:"market_id"` // venue-native identifier
	Title     string    `json:"title"`
	YesPrice  float64   `json:"yes_price"`
	Volume    float64   `json:"volume"`
	URL       string    `json:"url"`
	FetchedAt time.Time `json:"fetched_at"`
}

// NoPrice is the cost of the complementary NO contract on the same venue.
func (q Quote) NoPrice() float64 {
	return 1 - q.YesPrice
}

// MatchedPair is a pair of quotes from the two venues that the matcher
// believes reference the same underlying event.
type MatchedPair struct {
	Polymarket Quote
	Kalshi     Quote
}
