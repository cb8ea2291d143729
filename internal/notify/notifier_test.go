package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/domain"
)

type stubSender struct {
	name string
	err  error
	sent int
}

func (s *stubSender) Send(ctx context.Context, title, message string) error {
	s.sent++
	return s.err
}

func (s *stubSender) Name() string { return s.name }

type memAlertStore struct {
	alerts []domain.Alert
}

func (m *memAlertStore) Insert(ctx context.Context, alert domain.Alert) (domain.Alert, error) {
	alert.ID = int64(len(m.alerts) + 1)
	alert.CreatedAt = time.Now().UTC()
	m.alerts = append(m.alerts, alert)
	return alert, nil
}

func (m *memAlertStore) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Alert, error) {
	return m.alerts, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatchRecordsSuccessfulChannelsOnly(t *testing.T) {
	good := &stubSender{name: "telegram"}
	bad := &stubSender{name: "discord", err: errors.New("webhook gone")}
	store := &memAlertStore{}

	d := NewDispatcher([]Sender{good, bad}, store, nil, time.Second, discardLogger())

	alert, err := d.Dispatch(context.Background(), domain.Alert{
		UserID:    "user-1",
		AlertType: domain.AlertOpportunity,
		Message:   "profit found",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"telegram"}, alert.SentVia)
	assert.NotZero(t, alert.ID)
	require.Len(t, store.alerts, 1, "alert row persisted despite channel failure")
	assert.Equal(t, 1, good.sent)
	assert.Equal(t, 1, bad.sent)
}

func TestDispatchFilteredEventStillPersisted(t *testing.T) {
	sender := &stubSender{name: "telegram"}
	store := &memAlertStore{}

	d := NewDispatcher([]Sender{sender}, store, []string{"trade_executed"}, time.Second, discardLogger())

	alert, err := d.Dispatch(context.Background(), domain.Alert{
		UserID:    "user-1",
		AlertType: domain.AlertOpportunity,
		Message:   "filtered out",
	})
	require.NoError(t, err)

	assert.Zero(t, sender.sent, "filtered alert type must not reach channels")
	assert.Empty(t, alert.SentVia)
	assert.Len(t, store.alerts, 1)
}

func TestDispatchNoSenders(t *testing.T) {
	store := &memAlertStore{}
	d := NewDispatcher(nil, store, nil, time.Second, discardLogger())

	alert, err := d.Dispatch(context.Background(), domain.Alert{
		UserID:    "user-1",
		AlertType: domain.AlertSystem,
		Message:   "hello",
	})
	require.NoError(t, err)
	assert.Empty(t, alert.SentVia)
	assert.Len(t, store.alerts, 1)
}

func TestDiscordSender(t *testing.T) {
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := NewDiscordSender(srv.URL)
	err := s.Send(context.Background(), "Arbitrage Opportunity", "12% spread")
	require.NoError(t, err)
	assert.Equal(t, "application/json", gotContentType)
}

func TestDiscordSenderRejectedWebhook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewDiscordSender(srv.URL).Send(context.Background(), "t", "m")
	assert.Error(t, err)
}

func TestTelegramSender(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	s := NewTelegramSender("token123", "chat456")
	s.apiBase = srv.URL

	err := s.Send(context.Background(), "Trade Executed", "booked")
	require.NoError(t, err)
	assert.Equal(t, "/bottoken123/sendMessage", gotPath)
}
