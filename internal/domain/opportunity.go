package domain

import "time"

// OpportunityStatus represents the lifecycle state of an arbitrage
// opportunity.
type OpportunityStatus string

const (
	OpportunityActive   OpportunityStatus = "active"
	OpportunityExpired  OpportunityStatus = "expired"
	OpportunityConsumed OpportunityStatus = "consumed"
)

// Opportunity is a detected guaranteed-profit price pair across the two
// venues. Its ID is derived deterministically from the two venue-native
// market identifiers, so re-detecting the same pair on a later scan updates
// the stored row in place instead of duplicating it.
//
// Opportunities are reusable: a settlement reads an opportunity but never
// mutates it, so one opportunity may back any number of trades until a venue
// quote disappears or the TTL lapses. OpportunityConsumed exists for manual
// retirement and is never set automatically.
type Opportunity struct {
	ID               string            `json:"id"`
	MarketName       string            `json:"market_name"`
	PolymarketID     string            `json:"polymarket_id"`
	KalshiID         string            `json:"kalshi_id"`
	PolymarketPrice  float64           `json:"polymarket_price"`
	KalshiPrice      float64           `json:"kalshi_price"`
	PolymarketURL    string            `json:"polymarket_url"`
	KalshiURL        string            `json:"kalshi_url"`
	ProfitPercentage float64           `json:"profit_percentage"`
	WinProbability   float64           `json:"win_probability"`
	ExpectedValue    float64           `json:"expected_value"`
	Status           OpportunityStatus `json:"status"`
	DiscoveredAt     time.Time         `json:"discovered_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	ExpiresAt        *time.Time        `json:"expires_at,omitempty"`
}

// CheaperVenue returns the venue on which the YES contract is cheaper. Ties
// break toward Polymarket, matching the settlement engine's leg selection.
func (o Opportunity) CheaperVenue() Venue {
	if o.PolymarketPrice <= o.KalshiPrice {
		return VenuePolymarket
	}
	return VenueKalshi
}
