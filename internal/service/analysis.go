// Package service implements the orchestration layer: the cached analysis
// pipeline, the bulk per-message extractor pass, and the aggregate KPI
// reducer.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zapfield/conversation-intelligence/internal/model"
	"github.com/zapfield/conversation-intelligence/internal/provider"
	"github.com/zapfield/conversation-intelligence/pkg/logger"
	"github.com/zapfield/conversation-intelligence/pkg/metrics"
)

// MessageStore is the message-side store surface the orchestrator needs.
type MessageStore interface {
	ListMessages(ctx context.Context, accountID, contactNumber string) ([]model.Message, error)
	CountMessages(ctx context.Context, accountID, contactNumber string) (int, error)
}

// AnalysisCache is the cache-side store surface.
type AnalysisCache interface {
	GetAnalysis(ctx context.Context, key model.ConversationKey, kind model.AnalysisKind) (*model.AnalysisRecord, error)
	PutAnalysis(ctx context.Context, rec *model.AnalysisRecord) error
}

// Gateway produces the three analysis payloads, reporting which provider
// actually served each call.
type Gateway interface {
	Summarize(ctx context.Context, messages []model.Message, meta provider.Meta) (*model.SummaryPayload, model.ProviderKind, error)
	ExtractLeadInfo(ctx context.Context, messages []model.Message, meta provider.Meta) (*model.LeadPayload, model.ProviderKind, error)
	AnalyzeForKPIs(ctx context.Context, messages []model.Message) (*model.ConversationKPIs, model.ProviderKind, error)
}

type inflightKey struct {
	accountID     string
	contactNumber string
	kind          model.AnalysisKind
}

type inflightCall struct {
	done   chan struct{}
	result *model.AnalysisResult
	err    error
}

// AnalysisService orchestrates cached conversation analysis: staleness
// detection, provider invocation, in-flight request sharing and best-effort
// persistence.
type AnalysisService struct {
	messages MessageStore
	cache    AnalysisCache
	gateway  Gateway
	logger   *logger.Logger
	now      func() time.Time

	mu       sync.Mutex
	inflight map[inflightKey]*inflightCall
}

// NewAnalysisService creates the analysis orchestrator.
func NewAnalysisService(messages MessageStore, cache AnalysisCache, gateway Gateway, log *logger.Logger) *AnalysisService {
	return &AnalysisService{
		messages: messages,
		cache:    cache,
		gateway:  gateway,
		logger:   log,
		now:      time.Now,
		inflight: make(map[inflightKey]*inflightCall),
	}
}

// Analyze returns the analysis of the given kind for a conversation. A cached
// record that still covers every stored message is returned as-is with no
// provider call; otherwise the analysis is recomputed, cached and returned.
// Concurrent requests for the same conversation and kind share one
// computation.
func (s *AnalysisService) Analyze(ctx context.Context, key model.ConversationKey, kind model.AnalysisKind, forceRefresh bool) (*model.AnalysisResult, error) {
	if !model.ValidKind(kind) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	count, err := s.messages.CountMessages(ctx, key.AccountID, key.ContactNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}
	if count == 0 {
		return nil, ErrEmptyConversation
	}

	cached, err := s.cache.GetAnalysis(ctx, key, kind)
	if err != nil {
		// a broken cache read degrades to a miss
		metrics.StoreErrors.WithLabelValues("get_analysis").Inc()
		s.logger.Warn("analysis cache read failed, recomputing",
			zap.String("kind", string(kind)), zap.Error(err))
		cached = nil
	}

	if cached != nil && !forceRefresh && count <= cached.SourceMessageCount {
		metrics.AnalysisCacheResults.WithLabelValues(string(kind), "fresh").Inc()
		return &model.AnalysisResult{Record: cached, Cached: true, NoNewMessages: true}, nil
	}
	if cached != nil {
		metrics.AnalysisCacheResults.WithLabelValues(string(kind), "stale").Inc()
	} else {
		metrics.AnalysisCacheResults.WithLabelValues(string(kind), "miss").Inc()
	}

	return s.shared(ctx, key, kind, cached)
}

// shared funnels concurrent recomputations of the same (conversation, kind)
// into one provider call; late arrivals block on the first caller's result.
func (s *AnalysisService) shared(ctx context.Context, key model.ConversationKey, kind model.AnalysisKind, cached *model.AnalysisRecord) (*model.AnalysisResult, error) {
	ik := inflightKey{accountID: key.AccountID, contactNumber: key.ContactNumber, kind: kind}

	s.mu.Lock()
	if call, ok := s.inflight[ik]; ok {
		s.mu.Unlock()
		select {
		case <-call.done:
			return call.result, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	call := &inflightCall{done: make(chan struct{})}
	s.inflight[ik] = call
	s.mu.Unlock()

	call.result, call.err = s.compute(ctx, key, kind, cached)

	s.mu.Lock()
	delete(s.inflight, ik)
	s.mu.Unlock()
	close(call.done)

	return call.result, call.err
}

func (s *AnalysisService) compute(ctx context.Context, key model.ConversationKey, kind model.AnalysisKind, cached *model.AnalysisRecord) (*model.AnalysisResult, error) {
	start := s.now()

	msgs, err := s.messages.ListMessages(ctx, key.AccountID, key.ContactNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	if len(msgs) == 0 {
		return nil, ErrEmptyConversation
	}

	meta := metaFor(msgs)
	rec := &model.AnalysisRecord{
		ID:                 uuid.New().String(),
		AccountID:          key.AccountID,
		ContactNumber:      key.ContactNumber,
		Kind:               kind,
		SourceMessageCount: len(msgs),
		SourceWatermark:    msgs[len(msgs)-1].Timestamp,
		ComputedAt:         s.now(),
	}

	var perr error
	switch kind {
	case model.KindSummary:
		rec.Summary, rec.Provider, perr = s.gateway.Summarize(ctx, msgs, meta)
	case model.KindLead:
		rec.Lead, rec.Provider, perr = s.gateway.ExtractLeadInfo(ctx, msgs, meta)
	case model.KindKPIs:
		rec.KPIs, rec.Provider, perr = s.gateway.AnalyzeForKPIs(ctx, msgs)
	}

	if perr != nil {
		metrics.RecordAnalysis(string(kind), string(rec.Provider), "error", s.now().Sub(start).Seconds())
		if cached != nil {
			// serve the outdated record rather than nothing
			s.logger.Warn("analysis failed, serving stale cached record",
				zap.String("kind", string(kind)),
				zap.String("account_id", key.AccountID),
				zap.Error(perr))
			return &model.AnalysisResult{Record: cached, Cached: true, Stale: true}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, perr)
	}

	if err := s.cache.PutAnalysis(ctx, rec); err != nil {
		// persistence is best-effort: the caller still gets the fresh record
		metrics.StoreErrors.WithLabelValues("put_analysis").Inc()
		s.logger.Error("failed to persist analysis",
			zap.String("kind", string(kind)),
			zap.String("account_id", key.AccountID),
			zap.Error(err))
	}

	metrics.RecordAnalysis(string(kind), string(rec.Provider), "ok", s.now().Sub(start).Seconds())
	return &model.AnalysisResult{Record: rec}, nil
}

// metaFor derives prompt metadata from the message window: the contact's most
// recent display name and the covered period.
func metaFor(msgs []model.Message) provider.Meta {
	meta := provider.Meta{
		PeriodStart: msgs[0].Timestamp,
		PeriodEnd:   msgs[len(msgs)-1].Timestamp,
	}
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].ContactName != "" {
			meta.ContactName = msgs[i].ContactName
			break
		}
	}
	return meta
}
