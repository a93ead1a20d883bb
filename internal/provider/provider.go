// Package provider abstracts the inference providers behind one interface:
// a remote large-language-model provider and a local heuristic fallback, both
// normalized to the same payload shapes.
package provider

import (
	"context"
	"errors"
	"time"

	"github.com/zapfield/conversation-intelligence/internal/model"
)

// ErrMalformedResponse marks a remote response that could not be parsed into
// the expected schema. It is treated as a transient provider failure.
var ErrMalformedResponse = errors.New("malformed provider response")

// Meta carries contextual metadata for an analysis request.
type Meta struct {
	ContactName string
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// Provider produces the three analysis kinds from a message window. Every
// implementation returns payloads already conforming to the normalized
// schema: sentiment in {positive, neutral, negative}, urgency scores in
// [0, 10], confidence fields in [0, 1].
type Provider interface {
	Kind() model.ProviderKind
	Summarize(ctx context.Context, messages []model.Message, meta Meta) (*model.SummaryPayload, error)
	ExtractLeadInfo(ctx context.Context, messages []model.Message, meta Meta) (*model.LeadPayload, error)
	AnalyzeForKPIs(ctx context.Context, messages []model.Message) (*model.ConversationKPIs, error)
}

// RemoteProvider is a Provider with a liveness probe.
type RemoteProvider interface {
	Provider
	Ping(ctx context.Context) error
}
