// Package handler provides HTTP handlers for the API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zapfield/conversation-intelligence/internal/middleware"
	"github.com/zapfield/conversation-intelligence/internal/model"
	"github.com/zapfield/conversation-intelligence/internal/service"
	"github.com/zapfield/conversation-intelligence/pkg/logger"
)

// AnalysisHandler handles conversation analysis endpoints.
type AnalysisHandler struct {
	analysis *service.AnalysisService
	bulk     *service.BulkService
	logger   *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(analysis *service.AnalysisService, bulk *service.BulkService, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analysis: analysis,
		bulk:     bulk,
		logger:   log,
	}
}

// Get handles GET /api/v1/accounts/{accountID}/conversations/{contactNumber}/analysis/{kind}
func (h *AnalysisHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID := chi.URLParam(r, "accountID")
	contactNumber := chi.URLParam(r, "contactNumber")
	kind := chi.URLParam(r, "kind")

	if err := middleware.ValidateAccountID(accountID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateContactNumber(contactNumber); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateAnalysisKind(kind); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	forceRefresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	key := model.ConversationKey{AccountID: accountID, ContactNumber: contactNumber}
	result, err := h.analysis.Analyze(ctx, key, model.AnalysisKind(kind), forceRefresh)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyConversation):
			writeError(w, http.StatusNotFound, "conversation has no messages")
		case errors.Is(err, service.ErrUnknownKind):
			writeError(w, http.StatusBadRequest, "unknown analysis kind")
		case errors.Is(err, service.ErrProviderUnavailable):
			writeError(w, http.StatusServiceUnavailable, "analysis temporarily unavailable")
		default:
			h.logger.Error("analysis request failed",
				zap.String("kind", kind),
				zap.String("account_id", accountID),
				zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to analyze conversation")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// BulkRequest is the POST /api/v1/analysis/bulk request body.
type BulkRequest struct {
	Limit   int  `json:"limit"`
	OnlyNew bool `json:"only_new"`
}

// Bulk handles POST /api/v1/analysis/bulk
func (h *AnalysisHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := BulkRequest{OnlyNew: true}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	result, err := h.bulk.AnalyzeRecent(ctx, req.Limit, req.OnlyNew)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// client went away mid-pass; partial work is already persisted
			return
		}
		h.logger.Error("bulk analysis failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "bulk analysis failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
