package provider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapfield/conversation-intelligence/internal/extractor"
	"github.com/zapfield/conversation-intelligence/internal/model"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"leading prose", "Aqui está o resultado:\n{\"a\": {\"b\": 2}}", `{"a": {"b": 2}}`},
		{"brace in string", `{"a":"tem { dentro"}`, `{"a":"tem { dentro"}`},
		{"no json", "sem objeto nenhum", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.in))
		})
	}
}

func TestDecodeSummary_Normalizes(t *testing.T) {
	msgs := []model.Message{
		{Content: "Preciso de um orçamento do motor completo para amanhã", Direction: model.DirectionReceived, Type: model.TypeText, Timestamp: time.Now()},
	}
	body := "```json\n" + `{
		"summary": "Cliente pede orçamento de motor.",
		"sentiment": "POSITIVO",
		"intent": "Perguntar",
		"intent_confidence": 1.7,
		"urgency_score": 14,
		"highlights": null,
		"emails": null,
		"phones": null,
		"monetary_values": null
	}` + "\n```"

	p, err := decodeSummary(body, msgs, extractor.DefaultWeights())
	require.NoError(t, err)

	assert.Equal(t, model.SentimentPositive, p.Sentiment)
	assert.Equal(t, "perguntar", p.Intent)
	assert.Equal(t, 1.0, p.IntentConfidence)
	assert.Equal(t, model.UrgencyCritical, p.UrgencyLevel)
	assert.NotNil(t, p.Highlights)
	assert.NotNil(t, p.Emails)
	assert.Greater(t, p.OriginalWords, 0)
}

func TestDecodeSummary_Malformed(t *testing.T) {
	_, err := decodeSummary("isso não é JSON", nil, extractor.DefaultWeights())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedResponse)

	_, err = decodeSummary(`{"summary": ""}`, nil, extractor.DefaultWeights())
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestDecodeLead_TotalFromValues(t *testing.T) {
	body := `{
		"products": ["motor recondicionado"],
		"monetary_values": ["R$ 3.500,00", "R$ 500,00"],
		"negotiation_stage": "negociacao",
		"sentiment": "neutro",
		"conversion_probability": -0.4
	}`
	p, err := decodeLead(body, extractor.DefaultWeights())
	require.NoError(t, err)

	assert.InDelta(t, 4000.00, p.TotalValue, 0.001)
	assert.Equal(t, model.StageNegotiation, p.Stage)
	assert.Equal(t, model.SentimentNeutral, p.Sentiment)
	assert.Equal(t, 0.0, p.ConversionProbability)
}

func TestDecodeSummary_ConfiguredUrgencyBuckets(t *testing.T) {
	w := extractor.DefaultWeights()
	w.UrgencyCritical = 10

	body := `{"summary": "Cliente com pressa para fechar.", "urgency_score": 8}`
	p, err := decodeSummary(body, nil, w)
	require.NoError(t, err)
	assert.Equal(t, model.UrgencyHigh, p.UrgencyLevel)

	kpis, err := decodeKPIs(`{"category": "vendas", "urgency_score": 8}`, nil, w)
	require.NoError(t, err)
	assert.Equal(t, model.UrgencyHigh, kpis.UrgencyLevel)
}

func TestNormalizeSentiment(t *testing.T) {
	assert.Equal(t, model.SentimentPositive, NormalizeSentiment("Positive"))
	assert.Equal(t, model.SentimentPositive, NormalizeSentiment("positivo"))
	assert.Equal(t, model.SentimentNegative, NormalizeSentiment("NEGATIVO"))
	assert.Equal(t, model.SentimentNeutral, NormalizeSentiment("whatever"))
	assert.Equal(t, model.SentimentNeutral, NormalizeSentiment(""))
}

func TestClampUrgency(t *testing.T) {
	assert.Equal(t, 0, ClampUrgency(-3))
	assert.Equal(t, 10, ClampUrgency(99))
	assert.Equal(t, 7, ClampUrgency(6.8))
}
