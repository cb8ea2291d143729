package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/domain"
)

// OpportunityStore implements domain.OpportunityStore using PostgreSQL.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

// NewOpportunityStore creates an OpportunityStore backed by the given pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

const oppSelectCols = `id, market_name, polymarket_id, kalshi_id,
	polymarket_price, kalshi_price, polymarket_url, kalshi_url,
	profit_percentage, win_probability, expected_value,
	status, discovered_at, updated_at, expires_at`

// UpsertBatch inserts or refreshes opportunities using pgx.Batch. A conflict
// on the deterministic identity key updates price, profit and expiry fields
// in place and re-activates the row; discovered_at is preserved from the
// first detection.
func (s *OpportunityStore) UpsertBatch(ctx context.Context, opps []domain.Opportunity) (int, error) {
	if len(opps) == 0 {
		return 0, nil
	}

	const query = `
		INSERT INTO arbitrage_opportunities (
			id, market_name, polymarket_id, kalshi_id,
			polymarket_price, kalshi_price, polymarket_url, kalshi_url,
			profit_percentage, win_probability, expected_value,
			status, discovered_at, updated_at, expires_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8,
			$9, $10, $11,
			$12, $13, $14, $15
		)
		ON CONFLICT (id) DO UPDATE SET
			market_name       = EXCLUDED.market_name,
			polymarket_price  = EXCLUDED.polymarket_price,
			kalshi_price      = EXCLUDED.kalshi_price,
			polymarket_url    = EXCLUDED.polymarket_url,
			kalshi_url        = EXCLUDED.kalshi_url,
			profit_percentage = EXCLUDED.profit_percentage,
			win_probability   = EXCLUDED.win_probability,
			expected_value    = EXCLUDED.expected_value,
			status            = 'active',
			updated_at        = EXCLUDED.updated_at,
			expires_at        = EXCLUDED.expires_at`

	batch := &pgx.Batch{}
	for _, o := range opps {
		batch.Queue(query,
			o.ID, o.MarketName, o.PolymarketID, o.KalshiID,
			o.PolymarketPrice, o.KalshiPrice, o.PolymarketURL, o.KalshiURL,
			o.ProfitPercentage, o.WinProbability, o.ExpectedValue,
			string(o.Status), o.DiscoveredAt, o.UpdatedAt, o.ExpiresAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range opps {
		if _, err := br.Exec(); err != nil {
			return i, fmt.Errorf("postgres: upsert opportunity %s: %w", opps[i].ID, err)
		}
	}
	return len(opps), nil
}

// GetByID returns one opportunity or domain.ErrNotFound.
func (s *OpportunityStore) GetByID(ctx context.Context, id string) (domain.Opportunity, error) {
	query := `SELECT ` + oppSelectCols + ` FROM arbitrage_opportunities WHERE id = $1`

	opp, err := scanOpportunity(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Opportunity{}, domain.ErrNotFound
		}
		return domain.Opportunity{}, fmt.Errorf("postgres: get opportunity %s: %w", id, err)
	}
	return opp, nil
}

// ListActive returns active, unexpired opportunities at or above the profit
// floor, sorted by profit percentage descending.
func (s *OpportunityStore) ListActive(ctx context.Context, minProfitPct float64, limit int) ([]domain.Opportunity, error) {
	query := `SELECT ` + oppSelectCols + `
		FROM arbitrage_opportunities
		WHERE status = 'active'
		  AND (expires_at IS NULL OR expires_at > NOW())
		  AND profit_percentage >= $1
		ORDER BY profit_percentage DESC`
	args := []any{minProfitPct}

	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list active opportunities: %w", err)
	}
	defer rows.Close()

	return scanOpportunityRows(rows)
}

// Expire marks one opportunity expired. Returns domain.ErrNotFound when the
// id does not exist.
func (s *OpportunityStore) Expire(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE arbitrage_opportunities SET status = 'expired', updated_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("postgres: expire opportunity %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ExpireMissing retires every active opportunity whose id is not in seenIDs.
// Called after a scan cycle in which both venues responded, so an absent id
// means one of the underlying quotes disappeared.
func (s *OpportunityStore) ExpireMissing(ctx context.Context, seenIDs []string) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE arbitrage_opportunities
		 SET status = 'expired', updated_at = NOW()
		 WHERE status = 'active' AND NOT (id = ANY($1))`,
		seenIDs,
	)
	if err != nil {
		return 0, fmt.Errorf("postgres: expire missing opportunities: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListExpiredBefore returns expired opportunities last updated strictly
// before the cutoff, oldest first, for archival.
func (s *OpportunityStore) ListExpiredBefore(ctx context.Context, before time.Time) ([]domain.Opportunity, error) {
	query := `SELECT ` + oppSelectCols + `
		FROM arbitrage_opportunities
		WHERE status = 'expired' AND updated_at < $1
		ORDER BY updated_at ASC`

	rows, err := s.pool.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("postgres: list expired opportunities: %w", err)
	}
	defer rows.Close()

	return scanOpportunityRows(rows)
}

func scanOpportunity(row pgx.Row) (domain.Opportunity, error) {
	var o domain.Opportunity
	var status string
	err := row.Scan(
		&o.ID, &o.MarketName, &o.PolymarketID, &o.KalshiID,
		&o.PolymarketPrice, &o.KalshiPrice, &o.PolymarketURL, &o.KalshiURL,
		&o.ProfitPercentage, &o.WinProbability, &o.ExpectedValue,
		&status, &o.DiscoveredAt, &o.UpdatedAt, &o.ExpiresAt,
	)
	if err != nil {
		return domain.Opportunity{}, err
	}
	o.Status = domain.OpportunityStatus(status)
	return o, nil
}

func scanOpportunityRows(rows pgx.Rows) ([]domain.Opportunity, error) {
	var opps []domain.Opportunity
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan opportunity: %w", err)
		}
		opps = append(opps, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: opportunity rows: %w", err)
	}
	return opps, nil
}

// Compile-time interface check.
var _ domain.OpportunityStore = (*OpportunityStore)(nil)
