package scanner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/arbitrage"
	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/domain"
)

type fakeFeed struct {
	venue  domain.Venue
	quotes []domain.Quote
	err    error
}

func (f *fakeFeed) Venue() domain.Venue { return f.venue }

func (f *fakeFeed) FetchQuotes(ctx context.Context) ([]domain.Quote, error) {
	return f.quotes, f.err
}

type memOppStore struct {
	rows        map[string]domain.Opportunity
	upsertCalls int
	sweepCalls  int
	lastSeenIDs []string
}

func newMemOppStore() *memOppStore {
	return &memOppStore{rows: map[string]domain.Opportunity{}}
}

func (m *memOppStore) UpsertBatch(ctx context.Context, opps []domain.Opportunity) (int, error) {
	m.upsertCalls++
	for _, o := range opps {
		if existing, ok := m.rows[o.ID]; ok {
			o.DiscoveredAt = existing.DiscoveredAt
		}
		o.Status = domain.OpportunityActive
		m.rows[o.ID] = o
	}
	return len(opps), nil
}

func (m *memOppStore) GetByID(ctx context.Context, id string) (domain.Opportunity, error) {
	o, ok := m.rows[id]
	if !ok {
		return domain.Opportunity{}, domain.ErrNotFound
	}
	return o, nil
}

func (m *memOppStore) ListActive(ctx context.Context, minProfitPct float64, limit int) ([]domain.Opportunity, error) {
	return nil, nil
}

func (m *memOppStore) Expire(ctx context.Context, id string) error { return nil }

func (m *memOppStore) ExpireMissing(ctx context.Context, seenIDs []string) (int64, error) {
	m.sweepCalls++
	m.lastSeenIDs = seenIDs
	seen := map[string]bool{}
	for _, id := range seenIDs {
		seen[id] = true
	}
	var n int64
	for id, o := range m.rows {
		if o.Status == domain.OpportunityActive && !seen[id] {
			o.Status = domain.OpportunityExpired
			m.rows[id] = o
			n++
		}
	}
	return n, nil
}

func (m *memOppStore) ListExpiredBefore(ctx context.Context, before time.Time) ([]domain.Opportunity, error) {
	return nil, nil
}

type noopLocks struct{ held bool }

func (l *noopLocks) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if l.held {
		return nil, domain.ErrLockHeld
	}
	return func() {}, nil
}

func quote(venue domain.Venue, id, title string, price float64) domain.Quote {
	return domain.Quote{
		Venue:    venue,
		MarketID: id,
		Title:    title,
		YesPrice: price,
		Volume:   1000,
	}
}

func newScanner(poly, kalshi QuoteFeed, store domain.OpportunityStore, locks domain.LockManager) *Scanner {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	matcher := arbitrage.NewTitleMatcher(arbitrage.DefaultPrefixLen)
	cfg := Config{FetchTimeout: time.Second, OpportunityTTL: 30 * time.Minute}
	return New(poly, kalshi, matcher, store, locks, nil, nil, nil, cfg, logger)
}

func TestScanDetectsOpportunity(t *testing.T) {
	poly := &fakeFeed{venue: domain.VenuePolymarket, quotes: []domain.Quote{
		quote(domain.VenuePolymarket, "p1", "Will it rain in NYC tomorrow?", 0.42),
	}}
	kalshi := &fakeFeed{venue: domain.VenueKalshi, quotes: []domain.Quote{
		quote(domain.VenueKalshi, "k1", "Will it rain in NYC tomorrow", 0.54),
	}}
	store := newMemOppStore()

	res, err := newScanner(poly, kalshi, store, &noopLocks{}).Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.OpportunitiesFound)
	require.Len(t, res.Opportunities, 1)
	opp := res.Opportunities[0]
	assert.Equal(t, "arb-p1-k1", opp.ID)
	assert.InDelta(t, 12.0, opp.ProfitPercentage, 1e-9)
	assert.Contains(t, store.rows, "arb-p1-k1")
}

func TestScanIsIdempotentAcrossCycles(t *testing.T) {
	poly := &fakeFeed{venue: domain.VenuePolymarket, quotes: []domain.Quote{
		quote(domain.VenuePolymarket, "p1", "Will the Fed cut rates in September?", 0.40),
	}}
	kalshi := &fakeFeed{venue: domain.VenueKalshi, quotes: []domain.Quote{
		quote(domain.VenueKalshi, "k1", "Will the Fed cut rates in Sept?", 0.55),
	}}
	store := newMemOppStore()
	sc := newScanner(poly, kalshi, store, &noopLocks{})

	_, err := sc.Scan(context.Background())
	require.NoError(t, err)
	first := store.rows["arb-p1-k1"]

	kalshi.quotes[0].YesPrice = 0.58
	_, err = sc.Scan(context.Background())
	require.NoError(t, err)

	assert.Len(t, store.rows, 1, "re-detection must update in place, not duplicate")
	second := store.rows["arb-p1-k1"]
	assert.Equal(t, first.DiscoveredAt, second.DiscoveredAt)
	assert.InDelta(t, 0.58, second.KalshiPrice, 1e-9)
}

func TestScanBreakevenIsNotAnOpportunity(t *testing.T) {
	poly := &fakeFeed{venue: domain.VenuePolymarket, quotes: []domain.Quote{
		quote(domain.VenuePolymarket, "p1", "Will candidate X win the election?", 0.50),
	}}
	kalshi := &fakeFeed{venue: domain.VenueKalshi, quotes: []domain.Quote{
		quote(domain.VenueKalshi, "k1", "Will candidate X win the election?", 0.50),
	}}
	store := newMemOppStore()

	res, err := newScanner(poly, kalshi, store, &noopLocks{}).Scan(context.Background())
	require.NoError(t, err)

	assert.Zero(t, res.OpportunitiesFound)
	assert.Empty(t, store.rows)
}

func TestScanSkipsSweepWhenVenueFails(t *testing.T) {
	poly := &fakeFeed{venue: domain.VenuePolymarket, quotes: []domain.Quote{
		quote(domain.VenuePolymarket, "p1", "Will bitcoin close above 100k this year?", 0.42),
	}}
	kalshi := &fakeFeed{venue: domain.VenueKalshi, err: errors.New("boom")}
	store := newMemOppStore()
	store.rows["arb-old-pair"] = domain.Opportunity{ID: "arb-old-pair", Status: domain.OpportunityActive}

	_, err := newScanner(poly, kalshi, store, &noopLocks{}).Scan(context.Background())
	require.NoError(t, err)

	assert.Zero(t, store.sweepCalls, "sweep must not run after a failed fetch")
	assert.Equal(t, domain.OpportunityActive, store.rows["arb-old-pair"].Status)
}

func TestScanSweepExpiresMissingPairs(t *testing.T) {
	poly := &fakeFeed{venue: domain.VenuePolymarket, quotes: []domain.Quote{
		quote(domain.VenuePolymarket, "p1", "Will the S&P close green on Friday?", 0.42),
	}}
	kalshi := &fakeFeed{venue: domain.VenueKalshi, quotes: []domain.Quote{
		quote(domain.VenueKalshi, "k1", "Will the S&P close green on Friday?", 0.54),
	}}
	store := newMemOppStore()
	store.rows["arb-gone-pair"] = domain.Opportunity{ID: "arb-gone-pair", Status: domain.OpportunityActive}

	res, err := newScanner(poly, kalshi, store, &noopLocks{}).Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, store.sweepCalls)
	assert.Equal(t, []string{"arb-p1-k1"}, store.lastSeenIDs)
	assert.Equal(t, int64(1), res.Expired)
	assert.Equal(t, domain.OpportunityExpired, store.rows["arb-gone-pair"].Status)
}

func TestScanBothVenuesFailing(t *testing.T) {
	poly := &fakeFeed{venue: domain.VenuePolymarket, err: errors.New("down")}
	kalshi := &fakeFeed{venue: domain.VenueKalshi, err: errors.New("down")}

	_, err := newScanner(poly, kalshi, newMemOppStore(), &noopLocks{}).Scan(context.Background())
	assert.Error(t, err)
}

func TestScanLockHeld(t *testing.T) {
	poly := &fakeFeed{venue: domain.VenuePolymarket}
	kalshi := &fakeFeed{venue: domain.VenueKalshi}

	_, err := newScanner(poly, kalshi, newMemOppStore(), &noopLocks{held: true}).Scan(context.Background())
	assert.ErrorIs(t, err, domain.ErrLockHeld)
}
