package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zapfield/conversation-intelligence/internal/model"
	"github.com/zapfield/conversation-intelligence/pkg/logger"
	"github.com/zapfield/conversation-intelligence/pkg/metrics"
)

// Gateway fronts the remote provider with the local fallback. Every call
// attempts the remote first when it looks available and silently degrades to
// local extraction on any remote failure; only a failure of both paths
// surfaces an error.
type Gateway struct {
	remote RemoteProvider // nil when no remote is configured
	local  Provider
	logger *logger.Logger

	probeTTL     time.Duration
	probeTimeout time.Duration

	mu        sync.Mutex
	lastProbe time.Time
	lastOK    bool

	now func() time.Time
}

// GatewayOptions configures availability probing.
type GatewayOptions struct {
	ProbeTTL     time.Duration
	ProbeTimeout time.Duration
}

// NewGateway creates the provider gateway. remote may be nil.
func NewGateway(remote RemoteProvider, local Provider, opts GatewayOptions, log *logger.Logger) *Gateway {
	ttl := opts.ProbeTTL
	if ttl == 0 {
		ttl = 30 * time.Second
	}
	probeTimeout := opts.ProbeTimeout
	if probeTimeout == 0 {
		probeTimeout = 5 * time.Second
	}
	return &Gateway{
		remote:       remote,
		local:        local,
		logger:       log,
		probeTTL:     ttl,
		probeTimeout: probeTimeout,
		now:          time.Now,
	}
}

// Available reports whether the remote provider answered a recent liveness
// probe. The result is cached for the configured TTL so hot paths do not
// hammer the endpoint.
func (g *Gateway) Available(ctx context.Context) bool {
	if g.remote == nil {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.now().Sub(g.lastProbe) < g.probeTTL {
		return g.lastOK
	}

	probeCtx, cancel := context.WithTimeout(ctx, g.probeTimeout)
	defer cancel()

	err := g.remote.Ping(probeCtx)
	g.lastProbe = g.now()
	g.lastOK = err == nil
	metrics.SetProviderAvailable(g.lastOK)
	if err != nil {
		g.logger.Warn("remote provider unavailable", zap.Error(err))
	}
	return g.lastOK
}

// Summarize runs the summary analysis through the selection policy.
func (g *Gateway) Summarize(ctx context.Context, messages []model.Message, meta Meta) (*model.SummaryPayload, model.ProviderKind, error) {
	if g.remote != nil && g.Available(ctx) {
		payload, err := g.remote.Summarize(ctx, messages, meta)
		if err == nil {
			return payload, model.ProviderRemote, nil
		}
		g.fellBack("summary", err)
	}

	payload, err := g.local.Summarize(ctx, messages, meta)
	if err != nil {
		return nil, "", fmt.Errorf("all providers failed: %w", err)
	}
	return payload, model.ProviderLocal, nil
}

// ExtractLeadInfo runs the lead extraction through the selection policy.
func (g *Gateway) ExtractLeadInfo(ctx context.Context, messages []model.Message, meta Meta) (*model.LeadPayload, model.ProviderKind, error) {
	if g.remote != nil && g.Available(ctx) {
		payload, err := g.remote.ExtractLeadInfo(ctx, messages, meta)
		if err == nil {
			return payload, model.ProviderRemote, nil
		}
		g.fellBack("lead_info", err)
	}

	payload, err := g.local.ExtractLeadInfo(ctx, messages, meta)
	if err != nil {
		return nil, "", fmt.Errorf("all providers failed: %w", err)
	}
	return payload, model.ProviderLocal, nil
}

// AnalyzeForKPIs runs the KPI analysis through the selection policy.
func (g *Gateway) AnalyzeForKPIs(ctx context.Context, messages []model.Message) (*model.ConversationKPIs, model.ProviderKind, error) {
	if g.remote != nil && g.Available(ctx) {
		payload, err := g.remote.AnalyzeForKPIs(ctx, messages)
		if err == nil {
			return payload, model.ProviderRemote, nil
		}
		g.fellBack("conversation_kpis", err)
	}

	payload, err := g.local.AnalyzeForKPIs(ctx, messages)
	if err != nil {
		return nil, "", fmt.Errorf("all providers failed: %w", err)
	}
	return payload, model.ProviderLocal, nil
}

func (g *Gateway) fellBack(kind string, err error) {
	reason := "error"
	if errors.Is(err, context.DeadlineExceeded) {
		reason = "timeout"
	} else if errors.Is(err, ErrMalformedResponse) {
		reason = "malformed"
	}
	metrics.ProviderFallbacks.WithLabelValues(kind, reason).Inc()
	g.logger.Warn("remote provider failed, using local fallback",
		zap.String("kind", kind),
		zap.Error(err),
	)
}
