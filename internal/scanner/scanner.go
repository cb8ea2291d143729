// Package scanner drives the detection cycle: fetch quotes from both
// venues, match them, compute opportunities, and reconcile the store.
package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/arbitrage"
	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/domain"
)

// scanLockKey serializes scan cycles across processes.
const scanLockKey = "scan"

// eventChannel is the pub/sub channel new opportunities are announced on.
const eventChannel = "opportunities"

// resultLimit caps the opportunities echoed back in a scan result.
const resultLimit = 10

// QuoteFeed is one venue's quote source.
type QuoteFeed interface {
	Venue() domain.Venue
	FetchQuotes(ctx context.Context) ([]domain.Quote, error)
}

// Notifier receives detection alerts. Dispatch failures never fail a scan.
type Notifier interface {
	Dispatch(ctx context.Context, alert domain.Alert) (domain.Alert, error)
}

// Config holds the scanner's tunables.
type Config struct {
	// FetchTimeout bounds each venue fetch within a cycle.
	FetchTimeout time.Duration
	// OpportunityTTL is how long a detected opportunity stays valid without
	// being re-confirmed.
	OpportunityTTL time.Duration
	// NotifyMinProfitPct is the profit floor for detection alerts.
	NotifyMinProfitPct float64
	// LockTTL bounds how long the scan lock may be held. Zero means twice
	// the fetch timeout.
	LockTTL time.Duration
}

// Scanner runs detection cycles. Cycles are serialized through a
// distributed lock so overlapping runs never interleave writes for the same
// opportunity identity.
type Scanner struct {
	polymarket QuoteFeed
	kalshi     QuoteFeed
	matcher    arbitrage.Matcher
	opps       domain.OpportunityStore
	locks      domain.LockManager
	cache      domain.QuoteCache
	bus        domain.EventBus
	notifier   Notifier
	cfg        Config
	logger     *slog.Logger
}

// New creates a Scanner. cache, bus and notifier may be nil; the cycle
// proceeds without the corresponding side effect.
func New(
	polymarket, kalshi QuoteFeed,
	matcher arbitrage.Matcher,
	opps domain.OpportunityStore,
	locks domain.LockManager,
	cache domain.QuoteCache,
	bus domain.EventBus,
	notifier Notifier,
	cfg Config,
	logger *slog.Logger,
) *Scanner {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 15 * time.Second
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * cfg.FetchTimeout
	}
	return &Scanner{
		polymarket: polymarket,
		kalshi:     kalshi,
		matcher:    matcher,
		opps:       opps,
		locks:      locks,
		cache:      cache,
		bus:        bus,
		notifier:   notifier,
		cfg:        cfg,
		logger:     logger.With(slog.String("component", "scanner")),
	}
}

// Result summarizes one detection cycle.
type Result struct {
	OpportunitiesFound int                  `json:"opportunities_found"`
	Opportunities      []domain.Opportunity `json:"opportunities"`
	PolymarketQuotes   int                  `json:"polymarket_quotes"`
	KalshiQuotes       int                  `json:"kalshi_quotes"`
	Expired            int64                `json:"expired"`
}

// Scan runs one detection cycle. It fetches both venues in parallel,
// matches quotes, upserts the computed opportunities, and retires active
// rows whose pair was not re-confirmed. The missing-pair sweep only runs
// when both venues responded, because absence of a quote after a failed
// fetch means a transport problem, not a vanished market.
//
// Returns domain.ErrLockHeld when another cycle is already running.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	unlock, err := s.locks.Acquire(ctx, scanLockKey, s.cfg.LockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrLockHeld) {
			return nil, domain.ErrLockHeld
		}
		return nil, fmt.Errorf("scanner: acquire scan lock: %w", err)
	}
	defer unlock()

	started := time.Now()

	polyQuotes, kalshiQuotes, polyOK, kalshiOK := s.fetchBoth(ctx)
	if !polyOK && !kalshiOK {
		return nil, fmt.Errorf("scanner: both venue fetches failed")
	}
	allFetched := polyOK && kalshiOK

	pairs := s.matcher.Match(polyQuotes, kalshiQuotes)

	now := time.Now().UTC()
	var opps []domain.Opportunity
	seenIDs := []string{}
	for _, pair := range pairs {
		opp, ok := arbitrage.Compute(pair, s.cfg.OpportunityTTL, now)
		if !ok {
			continue
		}
		opps = append(opps, opp)
		seenIDs = append(seenIDs, opp.ID)
	}

	if _, err := s.opps.UpsertBatch(ctx, opps); err != nil {
		return nil, fmt.Errorf("scanner: upsert opportunities: %w", err)
	}

	var expired int64
	if allFetched {
		expired, err = s.opps.ExpireMissing(ctx, seenIDs)
		if err != nil {
			return nil, fmt.Errorf("scanner: expire missing: %w", err)
		}
	} else {
		s.logger.WarnContext(ctx, "venue fetch failed, skipping expiry sweep")
	}

	s.publish(ctx, opps)
	s.alert(ctx, opps)

	sort.Slice(opps, func(i, j int) bool {
		return opps[i].ProfitPercentage > opps[j].ProfitPercentage
	})
	top := opps
	if len(top) > resultLimit {
		top = top[:resultLimit]
	}

	s.logger.InfoContext(ctx, "scan complete",
		slog.Int("polymarket_quotes", len(polyQuotes)),
		slog.Int("kalshi_quotes", len(kalshiQuotes)),
		slog.Int("pairs", len(pairs)),
		slog.Int("opportunities", len(opps)),
		slog.Int64("expired", expired),
		slog.Duration("elapsed", time.Since(started)),
	)

	return &Result{
		OpportunitiesFound: len(opps),
		Opportunities:      top,
		PolymarketQuotes:   len(polyQuotes),
		KalshiQuotes:       len(kalshiQuotes),
		Expired:            expired,
	}, nil
}

// RunLoop runs Scan on a fixed interval until ctx is cancelled. A cycle
// skipped because another process holds the lock is not an error.
func (s *Scanner) RunLoop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "scan loop started", slog.Duration("interval", interval))

	for {
		if _, err := s.Scan(ctx); err != nil {
			switch {
			case errors.Is(err, domain.ErrLockHeld):
				s.logger.DebugContext(ctx, "scan already running elsewhere, skipping cycle")
			case ctx.Err() != nil:
				return ctx.Err()
			default:
				s.logger.ErrorContext(ctx, "scan cycle failed", slog.String("error", err.Error()))
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// fetchBoth fetches both venues concurrently. A venue failure is logged and
// yields an empty slice with its ok flag unset.
func (s *Scanner) fetchBoth(ctx context.Context) (poly, kalshi []domain.Quote, polyOK, kalshiOK bool) {
	var polyErr, kalshiErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		poly, polyErr = s.fetchVenue(gctx, s.polymarket)
		return nil
	})
	g.Go(func() error {
		kalshi, kalshiErr = s.fetchVenue(gctx, s.kalshi)
		return nil
	})
	_ = g.Wait()

	return poly, kalshi, polyErr == nil, kalshiErr == nil
}

func (s *Scanner) fetchVenue(ctx context.Context, feed QuoteFeed) ([]domain.Quote, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	quotes, err := feed.FetchQuotes(fetchCtx)
	if err != nil {
		s.logger.ErrorContext(ctx, "venue fetch failed",
			slog.String("venue", string(feed.Venue())),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetSnapshot(ctx, feed.Venue(), quotes); err != nil {
			s.logger.WarnContext(ctx, "snapshot cache write failed",
				slog.String("venue", string(feed.Venue())),
				slog.String("error", err.Error()),
			)
		}
	}
	return quotes, nil
}

// publish announces each opportunity on the event bus. Best effort.
func (s *Scanner) publish(ctx context.Context, opps []domain.Opportunity) {
	if s.bus == nil {
		return
	}
	for _, opp := range opps {
		payload, err := json.Marshal(opp)
		if err != nil {
			continue
		}
		if err := s.bus.Publish(ctx, eventChannel, payload); err != nil {
			s.logger.WarnContext(ctx, "event publish failed",
				slog.String("opportunity_id", opp.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// alert dispatches a detection alert for each opportunity at or above the
// notification profit floor.
func (s *Scanner) alert(ctx context.Context, opps []domain.Opportunity) {
	if s.notifier == nil {
		return
	}
	for _, opp := range opps {
		if opp.ProfitPercentage < s.cfg.NotifyMinProfitPct {
			continue
		}
		oppID := opp.ID
		alert := domain.Alert{
			UserID:        "system",
			OpportunityID: &oppID,
			AlertType:     domain.AlertOpportunity,
			Message: fmt.Sprintf("Arbitrage on %q: Polymarket %.2f vs Kalshi %.2f, profit %.2f%%",
				opp.MarketName, opp.PolymarketPrice, opp.KalshiPrice, opp.ProfitPercentage),
		}
		if _, err := s.notifier.Dispatch(ctx, alert); err != nil {
			s.logger.WarnContext(ctx, "detection alert dispatch failed",
				slog.String("opportunity_id", opp.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}
