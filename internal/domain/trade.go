package domain

import "time"

// TradeSide is the order direction of a settlement leg. Buying NO is
// represented as a buy of the complementary contract, not a sell of YES.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "buy"
	TradeSideSell TradeSide = "sell"
)

// OutcomeSide marks which contract a leg holds.
type OutcomeSide string

const (
	OutcomeYes OutcomeSide = "YES"
	OutcomeNo  OutcomeSide = "NO"
)

// TradeStatus is the lifecycle state of a trade leg. Trades are never
// deleted, only superseded by status.
type TradeStatus string

const (
	TradePending   TradeStatus = "pending"
	TradeConfirmed TradeStatus = "confirmed"
	TradeFailed    TradeStatus = "failed"
	TradeCancelled TradeStatus = "cancelled"
)

// Trade is one leg of a settlement. A settlement always produces exactly two
// legs (one per venue) sharing a BatchID; the pair is persisted in a single
// transaction so a half-written pair is never visible as confirmed.
type Trade struct {
	ID            string      `json:"id"`
	BatchID       string      `json:"batch_id"`
	OpportunityID string      `json:"opportunity_id"`
	UserID        string      `json:"user_id"`
	MarketName    string      `json:"market_name"`
	Venue         Venue       `json:"venue"`
	Side          TradeSide   `json:"side"`
	Outcome       OutcomeSide `json:"outcome"`
	Amount        float64     `json:"amount"`
	Price         float64     `json:"price"`
	ProfitLoss    *float64    `json:"profit_loss,omitempty"`
	Status        TradeStatus `json:"status"`
	IsSimulation  bool        `json:"is_simulation"`
	TxRef         string      `json:"tx_ref"`
	ExecutedAt    time.Time   `json:"executed_at"`
	ConfirmedAt   *time.Time  `json:"confirmed_at,omitempty"`
}
