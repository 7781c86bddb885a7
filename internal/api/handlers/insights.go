package handlers

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/dvloznov/finance-coach/internal/api/middleware"
	"github.com/dvloznov/finance-coach/internal/insights"
	"github.com/dvloznov/finance-coach/internal/ledger"
	"github.com/rs/zerolog"
)

const defaultGoalName = "Monthly spending"

// InsightsHandler serves the scoring and spending reports.
type InsightsHandler struct {
	svc *insights.Service
	log zerolog.Logger
}

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(svc *insights.Service, log zerolog.Logger) *InsightsHandler {
	return &InsightsHandler{svc: svc, log: log}
}

// Transactions handles GET /api/transactions
func (h *InsightsHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", ledger.DefaultRecentLimit)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.svc.Transactions(r.Context(), limit))
}

// Scoring handles GET /api/scoring
func (h *InsightsHandler) Scoring(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.svc.Scoring(r.Context()))
}

// Subscriptions handles GET /api/insights/subscriptions
func (h *InsightsHandler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.svc.Subscriptions(r.Context()))
}

// Spending handles GET /api/insights/spending
func (h *InsightsHandler) Spending(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.svc.Spending(r.Context()))
}

// Anomalies handles GET /api/anomalies
func (h *InsightsHandler) Anomalies(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.svc.Anomalies(r.Context()))
}

// Goal handles GET /api/goals?target=&name=&category=
func (h *InsightsHandler) Goal(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	rawTarget := query.Get("target")
	if rawTarget == "" {
		middleware.WriteError(w, http.StatusBadRequest, "target is required")
		return
	}
	target, err := strconv.ParseFloat(rawTarget, 64)
	if err != nil || target < 0 || math.IsNaN(target) || math.IsInf(target, 0) {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid target parameter")
		return
	}

	name := strings.TrimSpace(query.Get("name"))
	if name == "" {
		name = defaultGoalName
	}

	middleware.WriteJSON(w, http.StatusOK, h.svc.Goal(r.Context(), name, target, strings.TrimSpace(query.Get("category"))))
}
