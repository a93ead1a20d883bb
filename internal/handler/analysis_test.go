package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapfield/conversation-intelligence/internal/model"
	"github.com/zapfield/conversation-intelligence/internal/provider"
	"github.com/zapfield/conversation-intelligence/internal/service"
	"github.com/zapfield/conversation-intelligence/pkg/logger"
)

type stubMessages struct {
	count int
	msgs  []model.Message
}

func (s *stubMessages) ListMessages(context.Context, string, string) ([]model.Message, error) {
	return s.msgs, nil
}

func (s *stubMessages) CountMessages(context.Context, string, string) (int, error) {
	return s.count, nil
}

type stubCache struct{}

func (stubCache) GetAnalysis(context.Context, model.ConversationKey, model.AnalysisKind) (*model.AnalysisRecord, error) {
	return nil, nil
}

func (stubCache) PutAnalysis(context.Context, *model.AnalysisRecord) error { return nil }

type stubGateway struct{ err error }

func (s stubGateway) Summarize(context.Context, []model.Message, provider.Meta) (*model.SummaryPayload, model.ProviderKind, error) {
	if s.err != nil {
		return nil, model.ProviderRemote, s.err
	}
	return &model.SummaryPayload{Text: "resumo"}, model.ProviderRemote, nil
}

func (s stubGateway) ExtractLeadInfo(context.Context, []model.Message, provider.Meta) (*model.LeadPayload, model.ProviderKind, error) {
	return &model.LeadPayload{}, model.ProviderLocal, s.err
}

func (s stubGateway) AnalyzeForKPIs(context.Context, []model.Message) (*model.ConversationKPIs, model.ProviderKind, error) {
	return &model.ConversationKPIs{}, model.ProviderLocal, s.err
}

func newAnalysisRouter(messages *stubMessages, gw stubGateway) *chi.Mux {
	svc := service.NewAnalysisService(messages, stubCache{}, gw, logger.NewNop())
	h := NewAnalysisHandler(svc, nil, logger.NewNop())

	r := chi.NewRouter()
	r.Get("/api/v1/accounts/{accountID}/conversations/{contactNumber}/analysis/{kind}", h.Get)
	return r
}

func analyzedConversation() *stubMessages {
	return &stubMessages{
		count: 1,
		msgs: []model.Message{{
			ID: "m1", AccountID: "acc-1", ContactNumber: "5511999990001",
			Content: "oi", Direction: model.DirectionReceived, Type: model.TypeText,
			Timestamp: time.Now(),
		}},
	}
}

func TestAnalysisGet_OK(t *testing.T) {
	r := newAnalysisRouter(analyzedConversation(), stubGateway{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/v1/accounts/acc-1/conversations/5511999990001/analysis/summary", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var result model.AnalysisResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	require.NotNil(t, result.Record)
	require.NotNil(t, result.Record.Summary)
	assert.Equal(t, "resumo", result.Record.Summary.Text)
	assert.False(t, result.Cached)
}

func TestAnalysisGet_EmptyConversation(t *testing.T) {
	r := newAnalysisRouter(&stubMessages{}, stubGateway{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/v1/accounts/acc-1/conversations/5511999990001/analysis/summary", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalysisGet_UnknownKind(t *testing.T) {
	r := newAnalysisRouter(analyzedConversation(), stubGateway{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/v1/accounts/acc-1/conversations/5511999990001/analysis/horoscope", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalysisGet_ProviderUnavailable(t *testing.T) {
	r := newAnalysisRouter(analyzedConversation(), stubGateway{err: errors.New("all providers down")})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/v1/accounts/acc-1/conversations/5511999990001/analysis/summary", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
