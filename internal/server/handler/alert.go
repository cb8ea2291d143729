package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/domain"
	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/notify"
)

// AlertHandler dispatches manual alerts through the notification channels.
type AlertHandler struct {
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
}

// NewAlertHandler creates an AlertHandler.
func NewAlertHandler(dispatcher *notify.Dispatcher, logger *slog.Logger) *AlertHandler {
	return &AlertHandler{dispatcher: dispatcher, logger: logHandler(logger, "alert")}
}

type sendAlertRequest struct {
	UserID        string  `json:"userId"`
	Message       string  `json:"message"`
	AlertType     string  `json:"alertType"`
	OpportunityID *string `json:"opportunityId"`
}

// SendAlert fans a message out to the configured channels and records the
// dispatch. Channel failures surface only through the sentVia list.
// POST /api/send-alert
func (h *AlertHandler) SendAlert(w http.ResponseWriter, r *http.Request) {
	var req sendAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	alertType := domain.AlertType(req.AlertType)
	switch alertType {
	case domain.AlertOpportunity, domain.AlertTradeExecuted, domain.AlertTradeFailed, domain.AlertSystem:
	default:
		alertType = domain.AlertSystem
	}

	alert, err := h.dispatcher.Dispatch(r.Context(), domain.Alert{
		UserID:        req.UserID,
		OpportunityID: req.OpportunityID,
		AlertType:     alertType,
		Message:       req.Message,
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "alert dispatch failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to record alert")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"alert":   alert,
		"sentVia": alert.SentVia,
	})
}
