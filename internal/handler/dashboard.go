package handler

import (
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/zapfield/conversation-intelligence/internal/export"
	"github.com/zapfield/conversation-intelligence/internal/model"
	"github.com/zapfield/conversation-intelligence/internal/service"
	"github.com/zapfield/conversation-intelligence/pkg/logger"
	"github.com/zapfield/conversation-intelligence/pkg/metrics"
)

// DashboardHandler serves the aggregate KPI endpoints.
type DashboardHandler struct {
	kpis   *service.KPIService
	logger *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(kpis *service.KPIService, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{kpis: kpis, logger: log}
}

// parseWindow reads from/to/account_id query parameters, defaulting to the
// last 30 days.
func parseWindow(r *http.Request) (model.Window, error) {
	now := time.Now()
	window := model.Window{
		From:      now.AddDate(0, 0, -30),
		To:        now,
		AccountID: r.URL.Query().Get("account_id"),
	}

	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return window, err
		}
		window.From = t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return window, err
		}
		window.To = t
	}
	return window, nil
}

func (h *DashboardHandler) slaTarget(r *http.Request) time.Duration {
	if raw := r.URL.Query().Get("sla_target_minutes"); raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
			return time.Duration(minutes) * time.Minute
		}
	}
	return 0 // service falls back to the configured default
}

// KPIs handles GET /api/v1/dashboard/kpis
func (h *DashboardHandler) KPIs(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid time window, use RFC3339 timestamps")
		return
	}

	kpis, err := h.kpis.Dashboard(r.Context(), window, h.slaTarget(r))
	if err != nil {
		h.logger.Error("dashboard aggregation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to compute dashboard")
		return
	}

	writeJSON(w, http.StatusOK, kpis)
}

// Export handles GET /api/v1/dashboard/export
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid time window, use RFC3339 timestamps")
		return
	}

	kpis, err := h.kpis.Dashboard(r.Context(), window, h.slaTarget(r))
	if err != nil {
		h.logger.Error("dashboard aggregation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to compute dashboard")
		return
	}

	filename := "conversation-kpis-" + time.Now().Format("2006-01-02") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := export.WriteDashboardXLSX(w, kpis); err != nil {
		h.logger.Error("spreadsheet export failed", zap.Error(err))
		return
	}
	metrics.ExportsTotal.WithLabelValues("xlsx").Inc()
}
