package domain

import "time"

// AlertType classifies a notification event.
type AlertType string

const (
	AlertOpportunity   AlertType = "opportunity"
	AlertTradeExecuted AlertType = "trade_executed"
	AlertTradeFailed   AlertType = "trade_failed"
	AlertSystem        AlertType = "system"
)

// Alert is one dispatch record. It is persisted regardless of how many
// channels succeeded; SentVia lists only the channels that accepted the
// message within their timeout.
type Alert struct {
	ID            int64      `json:"id"`
	UserID        string     `json:"user_id"`
	OpportunityID *string    `json:"opportunity_id,omitempty"`
	AlertType     AlertType  `json:"alert_type"`
	Message       string     `json:"message"`
	SentVia       []string   `json:"sent_via"`
	CreatedAt     time.Time  `json:"created_at"`
}
