package domain

import (
	"context"
	"io"
	"time"
)

// OpportunityStore owns Opportunity identity and status. No other component
// mutates opportunities; the settlement engine only reads them.
type OpportunityStore interface {
	// UpsertBatch inserts or refreshes opportunities keyed on their
	// deterministic pair identity. Re-detecting a pair updates price and
	// profit fields in place. Returns the number of rows written.
	UpsertBatch(ctx context.Context, opps []Opportunity) (int, error)
	GetByID(ctx context.Context, id string) (Opportunity, error)
	// ListActive returns active, unexpired opportunities with profit at or
	// above minProfitPct, sorted by profit percentage descending.
	ListActive(ctx context.Context, minProfitPct float64, limit int) ([]Opportunity, error)
	Expire(ctx context.Context, id string) error
	// ExpireMissing retires active opportunities whose id is not in seenIDs,
	// i.e. pairs for which a venue quote disappeared this cycle.
	ExpireMissing(ctx context.Context, seenIDs []string) (int64, error)
	// ListExpiredBefore returns expired opportunities last updated strictly
	// before the cutoff, for cold-storage archival.
	ListExpiredBefore(ctx context.Context, before time.Time) ([]Opportunity, error)
}

// TradeStore owns Trade creation. CreatePair is the settlement engine's
// all-or-nothing write boundary.
type TradeStore interface {
	// CreatePair persists both legs of a settlement in one transaction.
	// Either both rows exist afterwards or neither does.
	CreatePair(ctx context.Context, legs [2]Trade) error
	GetByID(ctx context.Context, id string) (Trade, error)
	ListRecent(ctx context.Context, limit int) ([]Trade, error)
	ListByOpportunity(ctx context.Context, opportunityID string) ([]Trade, error)
}

// AlertStore persists the append-only dispatch log.
type AlertStore interface {
	Insert(ctx context.Context, alert Alert) (Alert, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]Alert, error)
}

// LockManager provides distributed locks so overlapping scan cycles never
// interleave a partial upsert for the same identity key.
type LockManager interface {
	// Acquire obtains the lock or returns ErrLockHeld. The returned release
	// function is safe to call more than once.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// QuoteCache stores the latest normalized quote snapshot per venue.
type QuoteCache interface {
	SetSnapshot(ctx context.Context, venue Venue, quotes []Quote) error
	GetSnapshot(ctx context.Context, venue Venue) ([]Quote, error)
}

// EventBus is a fire-and-forget pub/sub fan-out used to push opportunity and
// trade events to the WebSocket hub.
type EventBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// BlobWriter uploads objects to cold storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}
