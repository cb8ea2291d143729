// Package settlement books simulated two-leg trades against detected
// opportunities.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/domain"
)

// Notifier receives the trade-executed alert after a successful settlement.
// Delivery failures are logged, never surfaced to the caller.
type Notifier interface {
	Dispatch(ctx context.Context, alert domain.Alert) (domain.Alert, error)
}

// Engine turns an active opportunity plus a stake into a booked pair of
// simulated trade legs. Live mode is refused before any row is written.
type Engine struct {
	opps     domain.OpportunityStore
	trades   domain.TradeStore
	notifier Notifier
	logger   *slog.Logger
}

// New creates an Engine. notifier may be nil when alerting is disabled.
func New(opps domain.OpportunityStore, trades domain.TradeStore, notifier Notifier, logger *slog.Logger) *Engine {
	return &Engine{
		opps:     opps,
		trades:   trades,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "settlement")),
	}
}

// Result is the outcome of a successful settlement.
type Result struct {
	Trades          [2]domain.Trade `json:"trades"`
	EstimatedProfit float64         `json:"estimated_profit"`
}

// Settle books a settlement of amount against the opportunity for userID.
//
// The stake is split evenly: one leg buys YES on the venue where YES is
// cheaper (ties go to Polymarket), the other buys NO on the opposite venue
// at the complement of its YES price. Both legs are confirmed immediately
// and persisted in one transaction.
//
// It returns domain.ErrInvalidAmount for a non-positive amount,
// domain.ErrNotFound when the opportunity does not exist or is no longer
// active, and domain.ErrLiveTradingUnavailable when simulation is false; in
// every error case no trade rows are written.
func (e *Engine) Settle(ctx context.Context, userID, opportunityID string, amount float64, simulation bool) (*Result, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	opp, err := e.opps.GetByID(ctx, opportunityID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("settlement: load opportunity: %w", err)
	}
	if opp.Status != domain.OpportunityActive {
		return nil, domain.ErrNotFound
	}

	if !simulation {
		e.logger.WarnContext(ctx, "live trading refused",
			slog.String("user_id", userID),
			slog.String("opportunity_id", opportunityID),
		)
		return nil, domain.ErrLiveTradingUnavailable
	}

	legs := buildLegs(opp, userID, amount, time.Now().UTC())

	if err := e.trades.CreatePair(ctx, legs); err != nil {
		return nil, fmt.Errorf("settlement: persist pair: %w", err)
	}

	estProfit := amount * opp.ProfitPercentage / 100

	e.logger.InfoContext(ctx, "settlement booked",
		slog.String("batch_id", legs[0].BatchID),
		slog.String("opportunity_id", opp.ID),
		slog.String("user_id", userID),
		slog.Float64("amount", amount),
		slog.Float64("estimated_profit", estProfit),
	)

	e.notifyExecuted(ctx, userID, opp, amount, estProfit)

	return &Result{Trades: legs, EstimatedProfit: estProfit}, nil
}

// buildLegs constructs the two confirmed legs of a simulated settlement.
// The YES leg takes the lower of the two YES prices; the NO leg prices at
// the complement of the higher YES price, so leg prices always sum to the
// pair's total cost.
func buildLegs(opp domain.Opportunity, userID string, amount float64, now time.Time) [2]domain.Trade {
	batchID := uuid.New().String()
	short := batchID[:8]

	yesVenue := opp.CheaperVenue()
	yesPrice := opp.PolymarketPrice
	noPrice := 1 - opp.KalshiPrice
	noVenue := domain.VenueKalshi

	if yesVenue == domain.VenueKalshi {
		yesPrice = opp.KalshiPrice
		noPrice = 1 - opp.PolymarketPrice
		noVenue = domain.VenuePolymarket
	}

	legAmount := amount / 2
	legProfit := (amount * opp.ProfitPercentage / 100) / 2
	confirmed := now

	mkLeg := func(venue domain.Venue, outcome domain.OutcomeSide, price float64, seq int) domain.Trade {
		pl := legProfit
		return domain.Trade{
			ID:            uuid.New().String(),
			BatchID:       batchID,
			OpportunityID: opp.ID,
			UserID:        userID,
			MarketName:    opp.MarketName,
			Venue:         venue,
			Side:          domain.TradeSideBuy,
			Outcome:       outcome,
			Amount:        legAmount,
			Price:         price,
			ProfitLoss:    &pl,
			Status:        domain.TradeConfirmed,
			IsSimulation:  true,
			TxRef:         fmt.Sprintf("sim-%s-%d", short, seq),
			ExecutedAt:    now,
			ConfirmedAt:   &confirmed,
		}
	}

	return [2]domain.Trade{
		mkLeg(yesVenue, domain.OutcomeYes, yesPrice, 1),
		mkLeg(noVenue, domain.OutcomeNo, noPrice, 2),
	}
}

func (e *Engine) notifyExecuted(ctx context.Context, userID string, opp domain.Opportunity, amount, estProfit float64) {
	if e.notifier == nil {
		return
	}

	oppID := opp.ID
	alert := domain.Alert{
		UserID:        userID,
		OpportunityID: &oppID,
		AlertType:     domain.AlertTradeExecuted,
		Message: fmt.Sprintf("Simulated settlement on %q: stake $%.2f, estimated profit $%.2f (%.2f%%)",
			opp.MarketName, amount, estProfit, opp.ProfitPercentage),
	}

	if _, err := e.notifier.Dispatch(ctx, alert); err != nil {
		e.logger.WarnContext(ctx, "trade alert dispatch failed",
			slog.String("opportunity_id", opp.ID),
			slog.String("error", err.Error()),
		)
	}
}
