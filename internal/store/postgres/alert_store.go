package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/domain"
)

// AlertStore implements domain.AlertStore using PostgreSQL. Alerts are an
// append-only dispatch log; rows are never updated or deleted.
type AlertStore struct {
	pool *pgxpool.Pool
}

// NewAlertStore creates an AlertStore backed by the given connection pool.
func NewAlertStore(pool *pgxpool.Pool) *AlertStore {
	return &AlertStore{pool: pool}
}

// Insert stores a dispatch record and returns it with the assigned id and
// creation timestamp.
func (s *AlertStore) Insert(ctx context.Context, alert domain.Alert) (domain.Alert, error) {
	sentVia := alert.SentVia
	if sentVia == nil {
		sentVia = []string{}
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO alerts (user_id, opportunity_id, alert_type, message, sent_via)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		alert.UserID, alert.OpportunityID, string(alert.AlertType), alert.Message, sentVia,
	).Scan(&alert.ID, &alert.CreatedAt)
	if err != nil {
		return domain.Alert{}, fmt.Errorf("postgres: insert alert: %w", err)
	}
	alert.SentVia = sentVia
	return alert, nil
}

// ListByUser returns the most recent alerts for one user.
func (s *AlertStore) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Alert, error) {
	query := `SELECT id, user_id, opportunity_id, alert_type, message, sent_via, created_at
		FROM alerts WHERE user_id = $1 ORDER BY created_at DESC`
	args := []any{userID}

	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		var a domain.Alert
		var alertType string
		if err := rows.Scan(&a.ID, &a.UserID, &a.OpportunityID, &alertType, &a.Message, &a.SentVia, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan alert: %w", err)
		}
		a.AlertType = domain.AlertType(alertType)
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: alert rows: %w", err)
	}
	return alerts, nil
}

// Compile-time interface check.
var _ domain.AlertStore = (*AlertStore)(nil)
