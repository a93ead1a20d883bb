package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapfield/conversation-intelligence/internal/extractor"
	"github.com/zapfield/conversation-intelligence/internal/model"
	"github.com/zapfield/conversation-intelligence/pkg/logger"
)

type stubRemote struct {
	pingErr error
	callErr error
	calls   int
	pings   int
	payload *model.SummaryPayload
}

func (s *stubRemote) Kind() model.ProviderKind { return model.ProviderRemote }

func (s *stubRemote) Ping(context.Context) error {
	s.pings++
	return s.pingErr
}

func (s *stubRemote) Summarize(context.Context, []model.Message, Meta) (*model.SummaryPayload, error) {
	s.calls++
	if s.callErr != nil {
		return nil, s.callErr
	}
	return s.payload, nil
}

func (s *stubRemote) ExtractLeadInfo(context.Context, []model.Message, Meta) (*model.LeadPayload, error) {
	s.calls++
	return nil, s.callErr
}

func (s *stubRemote) AnalyzeForKPIs(context.Context, []model.Message) (*model.ConversationKPIs, error) {
	s.calls++
	return nil, s.callErr
}

func sampleConversation() []model.Message {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return []model.Message{
		{ID: "1", Direction: model.DirectionReceived, Type: model.TypeText, Content: "Bom dia, preciso de um motor recondicionado urgente", Timestamp: base},
		{ID: "2", Direction: model.DirectionSent, Type: model.TypeText, Content: "Bom dia! Temos sim, sai por R$ 3.500,00", Timestamp: base.Add(5 * time.Minute)},
		{ID: "3", Direction: model.DirectionReceived, Type: model.TypeText, Content: "Consegue um desconto pagando à vista?", Timestamp: base.Add(10 * time.Minute)},
	}
}

func TestGateway_RemotePreferred(t *testing.T) {
	remote := &stubRemote{payload: &model.SummaryPayload{Text: "resumo remoto", Sentiment: model.SentimentNeutral}}
	g := NewGateway(remote, NewLocalProvider(extractor.DefaultWeights()), GatewayOptions{}, logger.NewNop())

	payload, kind, err := g.Summarize(context.Background(), sampleConversation(), Meta{})
	require.NoError(t, err)
	assert.Equal(t, model.ProviderRemote, kind)
	assert.Equal(t, "resumo remoto", payload.Text)
	assert.Equal(t, 1, remote.calls)
}

func TestGateway_FallsBackOnRemoteError(t *testing.T) {
	remote := &stubRemote{callErr: errors.New("boom")}
	g := NewGateway(remote, NewLocalProvider(extractor.DefaultWeights()), GatewayOptions{}, logger.NewNop())

	payload, kind, err := g.Summarize(context.Background(), sampleConversation(), Meta{})
	require.NoError(t, err)
	assert.Equal(t, model.ProviderLocal, kind)
	assert.NotEmpty(t, payload.Text)
}

func TestGateway_SkipsRemoteWhenProbeFails(t *testing.T) {
	remote := &stubRemote{pingErr: errors.New("down")}
	g := NewGateway(remote, NewLocalProvider(extractor.DefaultWeights()), GatewayOptions{}, logger.NewNop())

	_, kind, err := g.Summarize(context.Background(), sampleConversation(), Meta{})
	require.NoError(t, err)
	assert.Equal(t, model.ProviderLocal, kind)
	assert.Equal(t, 0, remote.calls)
}

func TestGateway_ProbeCachedWithinTTL(t *testing.T) {
	remote := &stubRemote{payload: &model.SummaryPayload{Text: "ok"}}
	g := NewGateway(remote, NewLocalProvider(extractor.DefaultWeights()), GatewayOptions{ProbeTTL: time.Minute}, logger.NewNop())

	ctx := context.Background()
	assert.True(t, g.Available(ctx))
	assert.True(t, g.Available(ctx))
	assert.True(t, g.Available(ctx))
	assert.Equal(t, 1, remote.pings)
}

func TestGateway_NoRemoteConfigured(t *testing.T) {
	g := NewGateway(nil, NewLocalProvider(extractor.DefaultWeights()), GatewayOptions{}, logger.NewNop())

	assert.False(t, g.Available(context.Background()))
	payload, kind, err := g.ExtractLeadInfo(context.Background(), sampleConversation(), Meta{})
	require.NoError(t, err)
	assert.Equal(t, model.ProviderLocal, kind)
	assert.NotNil(t, payload)
}

// Fallback idempotence: with the remote forced down, every payload still
// conforms to the normalized schema.
func TestGateway_FallbackConformsToSchema(t *testing.T) {
	remote := &stubRemote{pingErr: errors.New("down")}
	g := NewGateway(remote, NewLocalProvider(extractor.DefaultWeights()), GatewayOptions{}, logger.NewNop())
	ctx := context.Background()
	msgs := sampleConversation()

	summary, _, err := g.Summarize(ctx, msgs, Meta{ContactName: "Oficina do João"})
	require.NoError(t, err)
	assert.Contains(t, []model.Sentiment{model.SentimentPositive, model.SentimentNeutral, model.SentimentNegative}, summary.Sentiment)
	assert.NotNil(t, summary.Emails)
	assert.NotNil(t, summary.MonetaryValues)

	lead, _, err := g.ExtractLeadInfo(ctx, msgs, Meta{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, lead.ConversionProbability, 0.0)
	assert.LessOrEqual(t, lead.ConversionProbability, 1.0)
	assert.NotNil(t, lead.Products)
	assert.NotNil(t, lead.Objections)

	kpis, _, err := g.AnalyzeForKPIs(ctx, msgs)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, kpis.UrgencyScore, 0)
	assert.LessOrEqual(t, kpis.UrgencyScore, 10)
	assert.Equal(t, 3, kpis.MessageCount)
}
