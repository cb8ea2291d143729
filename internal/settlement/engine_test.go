package settlement

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/domain"
)

type fakeOppStore struct {
	opps map[string]domain.Opportunity
}

func (f *fakeOppStore) UpsertBatch(ctx context.Context, opps []domain.Opportunity) (int, error) {
	return 0, nil
}

func (f *fakeOppStore) GetByID(ctx context.Context, id string) (domain.Opportunity, error) {
	o, ok := f.opps[id]
	if !ok {
		return domain.Opportunity{}, domain.ErrNotFound
	}
	return o, nil
}

func (f *fakeOppStore) ListActive(ctx context.Context, minProfitPct float64, limit int) ([]domain.Opportunity, error) {
	return nil, nil
}

func (f *fakeOppStore) Expire(ctx context.Context, id string) error { return nil }

func (f *fakeOppStore) ExpireMissing(ctx context.Context, seenIDs []string) (int64, error) {
	return 0, nil
}

func (f *fakeOppStore) ListExpiredBefore(ctx context.Context, before time.Time) ([]domain.Opportunity, error) {
	return nil, nil
}

type fakeTradeStore struct {
	pairs [][2]domain.Trade
}

func (f *fakeTradeStore) CreatePair(ctx context.Context, legs [2]domain.Trade) error {
	f.pairs = append(f.pairs, legs)
	return nil
}

func (f *fakeTradeStore) GetByID(ctx context.Context, id string) (domain.Trade, error) {
	return domain.Trade{}, domain.ErrNotFound
}

func (f *fakeTradeStore) ListRecent(ctx context.Context, limit int) ([]domain.Trade, error) {
	return nil, nil
}

func (f *fakeTradeStore) ListByOpportunity(ctx context.Context, opportunityID string) ([]domain.Trade, error) {
	return nil, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func activeOpp() domain.Opportunity {
	return domain.Opportunity{
		ID:               "arb-poly1-kalshi1",
		MarketName:       "Will it rain tomorrow?",
		PolymarketID:     "poly1",
		KalshiID:         "kalshi1",
		PolymarketPrice:  0.42,
		KalshiPrice:      0.54,
		ProfitPercentage: 12.0,
		Status:           domain.OpportunityActive,
	}
}

func newEngine(opp *domain.Opportunity) (*Engine, *fakeTradeStore) {
	opps := &fakeOppStore{opps: map[string]domain.Opportunity{}}
	if opp != nil {
		opps.opps[opp.ID] = *opp
	}
	trades := &fakeTradeStore{}
	return New(opps, trades, nil, testLogger()), trades
}

func TestSettleSimulated(t *testing.T) {
	opp := activeOpp()
	eng, trades := newEngine(&opp)

	res, err := eng.Settle(context.Background(), "user-1", opp.ID, 100, true)
	require.NoError(t, err)
	require.Len(t, trades.pairs, 1)

	yes, no := res.Trades[0], res.Trades[1]

	assert.Equal(t, domain.OutcomeYes, yes.Outcome)
	assert.Equal(t, domain.VenuePolymarket, yes.Venue)
	assert.InDelta(t, 0.42, yes.Price, 1e-9)

	assert.Equal(t, domain.OutcomeNo, no.Outcome)
	assert.Equal(t, domain.VenueKalshi, no.Venue)
	assert.InDelta(t, 0.46, no.Price, 1e-9)

	assert.InDelta(t, 100, yes.Amount+no.Amount, 1e-9)
	assert.Equal(t, yes.BatchID, no.BatchID)
	assert.InDelta(t, 12.0, res.EstimatedProfit, 1e-9)

	for _, leg := range res.Trades {
		assert.Equal(t, domain.TradeConfirmed, leg.Status)
		assert.True(t, leg.IsSimulation)
		assert.Equal(t, domain.TradeSideBuy, leg.Side)
		assert.Equal(t, "user-1", leg.UserID)
		assert.Equal(t, opp.ID, leg.OpportunityID)
		require.NotNil(t, leg.ProfitLoss)
		assert.InDelta(t, 6.0, *leg.ProfitLoss, 1e-9)
		assert.NotNil(t, leg.ConfirmedAt)
	}
}

func TestSettleYesLegOnKalshiWhenCheaper(t *testing.T) {
	opp := activeOpp()
	opp.PolymarketPrice = 0.60
	opp.KalshiPrice = 0.30
	eng, _ := newEngine(&opp)

	res, err := eng.Settle(context.Background(), "user-1", opp.ID, 50, true)
	require.NoError(t, err)

	yes, no := res.Trades[0], res.Trades[1]
	assert.Equal(t, domain.VenueKalshi, yes.Venue)
	assert.InDelta(t, 0.30, yes.Price, 1e-9)
	assert.Equal(t, domain.VenuePolymarket, no.Venue)
	assert.InDelta(t, 0.40, no.Price, 1e-9)
}

func TestSettleTieBreaksToPolymarket(t *testing.T) {
	opp := activeOpp()
	opp.PolymarketPrice = 0.45
	opp.KalshiPrice = 0.45
	eng, _ := newEngine(&opp)

	res, err := eng.Settle(context.Background(), "user-1", opp.ID, 50, true)
	require.NoError(t, err)

	assert.Equal(t, domain.VenuePolymarket, res.Trades[0].Venue)
	assert.Equal(t, domain.OutcomeYes, res.Trades[0].Outcome)
}

func TestSettleRejectsInvalidAmount(t *testing.T) {
	opp := activeOpp()
	eng, trades := newEngine(&opp)

	for _, amount := range []float64{0, -5} {
		_, err := eng.Settle(context.Background(), "user-1", opp.ID, amount, true)
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	}
	assert.Empty(t, trades.pairs)
}

func TestSettleUnknownOpportunity(t *testing.T) {
	eng, trades := newEngine(nil)

	_, err := eng.Settle(context.Background(), "user-1", "arb-missing", 100, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, trades.pairs)
}

func TestSettleExpiredOpportunity(t *testing.T) {
	opp := activeOpp()
	opp.Status = domain.OpportunityExpired
	eng, trades := newEngine(&opp)

	_, err := eng.Settle(context.Background(), "user-1", opp.ID, 100, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, trades.pairs)
}

func TestSettleRefusesLiveTrading(t *testing.T) {
	opp := activeOpp()
	eng, trades := newEngine(&opp)

	_, err := eng.Settle(context.Background(), "user-1", opp.ID, 100, false)
	assert.ErrorIs(t, err, domain.ErrLiveTradingUnavailable)
	assert.Empty(t, trades.pairs, "live refusal must not write trade rows")
}
