package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/domain"
)

// TradeStore implements domain.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *pgxpool.Pool
}

// NewTradeStore creates a TradeStore backed by the given connection pool.
func NewTradeStore(pool *pgxpool.Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

const tradeSelectCols = `id, batch_id, opportunity_id, user_id, market_name,
	venue, side, outcome, amount, price, profit_loss,
	status, is_simulation, tx_ref, executed_at, confirmed_at`

const tradeInsert = `
	INSERT INTO trades (
		id, batch_id, opportunity_id, user_id, market_name,
		venue, side, outcome, amount, price, profit_loss,
		status, is_simulation, tx_ref, executed_at, confirmed_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9, $10, $11,
		$12, $13, $14, $15, $16
	)`

// CreatePair persists both legs of a settlement inside one transaction.
// If either insert fails the transaction rolls back, so a half-written pair
// is never visible.
func (s *TradeStore) CreatePair(ctx context.Context, legs [2]domain.Trade) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin trade pair: %w", err)
	}
	defer tx.Rollback(ctx)

	for i := range legs {
		t := legs[i]
		if _, err := tx.Exec(ctx, tradeInsert,
			t.ID, t.BatchID, t.OpportunityID, t.UserID, t.MarketName,
			string(t.Venue), string(t.Side), string(t.Outcome),
			t.Amount, t.Price, t.ProfitLoss,
			string(t.Status), t.IsSimulation, t.TxRef, t.ExecutedAt, t.ConfirmedAt,
		); err != nil {
			return fmt.Errorf("postgres: insert trade leg %d (%s): %w", i+1, t.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit trade pair: %w", err)
	}
	return nil
}

// GetByID returns one trade or domain.ErrNotFound.
func (s *TradeStore) GetByID(ctx context.Context, id string) (domain.Trade, error) {
	query := `SELECT ` + tradeSelectCols + ` FROM trades WHERE id = $1`

	t, err := scanTrade(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trade{}, domain.ErrNotFound
		}
		return domain.Trade{}, fmt.Errorf("postgres: get trade %s: %w", id, err)
	}
	return t, nil
}

// ListRecent returns the most recent trades ordered by execution time.
func (s *TradeStore) ListRecent(ctx context.Context, limit int) ([]domain.Trade, error) {
	query := `SELECT ` + tradeSelectCols + ` FROM trades ORDER BY executed_at DESC`
	args := []any{}

	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent trades: %w", err)
	}
	defer rows.Close()

	return scanTradeRows(rows)
}

// ListByOpportunity returns all trades settled against one opportunity.
func (s *TradeStore) ListByOpportunity(ctx context.Context, opportunityID string) ([]domain.Trade, error) {
	query := `SELECT ` + tradeSelectCols + ` FROM trades WHERE opportunity_id = $1 ORDER BY executed_at DESC`

	rows, err := s.pool.Query(ctx, query, opportunityID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list trades by opportunity: %w", err)
	}
	defer rows.Close()

	return scanTradeRows(rows)
}

func scanTrade(row pgx.Row) (domain.Trade, error) {
	var t domain.Trade
	var venue, side, outcome, status string
	err := row.Scan(
		&t.ID, &t.BatchID, &t.OpportunityID, &t.UserID, &t.MarketName,
		&venue, &side, &outcome, &t.Amount, &t.Price, &t.ProfitLoss,
		&status, &t.IsSimulation, &t.TxRef, &t.ExecutedAt, &t.ConfirmedAt,
	)
	if err != nil {
		return domain.Trade{}, err
	}
	t.Venue = domain.Venue(venue)
	t.Side = domain.TradeSide(side)
	t.Outcome = domain.OutcomeSide(outcome)
	t.Status = domain.TradeStatus(status)
	return t, nil
}

func scanTradeRows(rows pgx.Rows) ([]domain.Trade, error) {
	var trades []domain.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan trade: %w", err)
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: trade rows: %w", err)
	}
	return trades, nil
}

// Compile-time interface check.
var _ domain.TradeStore = (*TradeStore)(nil)
