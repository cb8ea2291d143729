package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/domain"
)

// QuoteCache stores the latest normalized quote snapshot per venue as a
// JSON blob. Snapshots carry a TTL so a venue that stops responding ages
// out instead of serving stale prices forever.
type QuoteCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewQuoteCache creates a QuoteCache. Snapshots expire after ttl; a zero
// ttl means snapshots never expire.
func NewQuoteCache(c *Client, ttl time.Duration) *QuoteCache {
	return &QuoteCache{rdb: c.Underlying(), ttl: ttl}
}

func snapshotKey(venue domain.Venue) string {
	return "quotes:" + string(venue)
}

// SetSnapshot replaces the cached snapshot for one venue.
func (qc *QuoteCache) SetSnapshot(ctx context.Context, venue domain.Venue, quotes []domain.Quote) error {
	data, err := json.Marshal(quotes)
	if err != nil {
		return fmt.Errorf("redis: marshal %s snapshot: %w", venue, err)
	}

	if err := qc.rdb.Set(ctx, snapshotKey(venue), data, qc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %s snapshot: %w", venue, err)
	}
	return nil
}

// GetSnapshot returns the cached snapshot for one venue, or
// domain.ErrNotFound when no snapshot exists.
func (qc *QuoteCache) GetSnapshot(ctx context.Context, venue domain.Venue) ([]domain.Quote, error) {
	data, err := qc.rdb.Get(ctx, snapshotKey(venue)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get %s snapshot: %w", venue, err)
	}

	var quotes []domain.Quote
	if err := json.Unmarshal(data, &quotes); err != nil {
		return nil, fmt.Errorf("redis: unmarshal %s snapshot: %w", venue, err)
	}
	return quotes, nil
}

// Compile-time interface check.
var _ domain.QuoteCache = (*QuoteCache)(nil)
