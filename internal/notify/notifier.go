// Package notify fans alerts out to the configured channels (Telegram,
// Discord) and records every dispatch in the alert log. Channel failures
// are logged and reflected in the sent_via list; they never fail the
// operation that triggered the alert.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/domain"
)

// Sender is one delivery channel.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name returns the channel identifier recorded in sent_via.
	Name() string
}

// Dispatcher delivers alerts to all registered senders and persists the
// outcome. A set of allowed event types filters outbound delivery; the
// alert row is written either way so the log stays complete.
type Dispatcher struct {
	senders []Sender
	alerts  domain.AlertStore
	events  map[string]bool
	timeout time.Duration
	logger  *slog.Logger
}

// NewDispatcher creates a Dispatcher. Only alert types listed in events are
// delivered to channels; an empty list allows everything. timeout bounds
// each individual channel send.
func NewDispatcher(senders []Sender, alerts domain.AlertStore, events []string, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		e = strings.TrimSpace(e)
		if e != "" {
			allowed[e] = true
		}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		senders: senders,
		alerts:  alerts,
		events:  allowed,
		timeout: timeout,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Dispatch sends the alert through every allowed channel, then persists it
// with SentVia listing the channels that succeeded. The returned alert
// carries the assigned id and creation timestamp.
func (d *Dispatcher) Dispatch(ctx context.Context, alert domain.Alert) (domain.Alert, error) {
	alert.SentVia = d.send(ctx, alert)

	saved, err := d.alerts.Insert(ctx, alert)
	if err != nil {
		return domain.Alert{}, fmt.Errorf("notify: persist alert: %w", err)
	}
	return saved, nil
}

// send attempts delivery on each sender and returns the names of the ones
// that succeeded. Filtered event types skip delivery entirely.
func (d *Dispatcher) send(ctx context.Context, alert domain.Alert) []string {
	sentVia := []string{}

	if len(d.events) > 0 && !d.events[string(alert.AlertType)] {
		d.logger.DebugContext(ctx, "alert type filtered out",
			slog.String("alert_type", string(alert.AlertType)),
		)
		return sentVia
	}

	title := titleFor(alert.AlertType)
	for _, s := range d.senders {
		sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
		err := s.Send(sendCtx, title, alert.Message)
		cancel()

		if err != nil {
			d.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("alert_type", string(alert.AlertType)),
				slog.String("error", err.Error()),
			)
			continue
		}
		sentVia = append(sentVia, s.Name())
	}
	return sentVia
}

func titleFor(t domain.AlertType) string {
	switch t {
	case domain.AlertOpportunity:
		return "Arbitrage Opportunity"
	case domain.AlertTradeExecuted:
		return "Trade Executed"
	case domain.AlertTradeFailed:
		return "Trade Failed"
	default:
		return "System Alert"
	}
}
