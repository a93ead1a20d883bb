package extractor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/zapfield/conversation-intelligence/internal/model"
)

func received(content string) model.Message {
	return model.Message{
		ID:            "m1",
		AccountID:     "acc",
		ContactNumber: "5511999999999",
		Content:       content,
		Direction:     model.DirectionReceived,
		Type:          model.TypeText,
		Timestamp:     time.Now(),
	}
}

func TestHybridSentiment_KeywordPriority(t *testing.T) {
	// Unambiguous keyword evidence wins regardless of the model score.
	assert.Equal(t, model.SentimentPositive, HybridSentiment("Obrigado, ficou perfeito!", -0.9))
	assert.Equal(t, model.SentimentNegative, HybridSentiment("Péssimo atendimento, muita demora", 0.9))
}

func TestHybridSentiment_ModelBreaksTies(t *testing.T) {
	// No keyword hits on either side: the model decides.
	assert.Equal(t, model.SentimentPositive, HybridSentiment("ok, pode enviar", 0.5))
	assert.Equal(t, model.SentimentNegative, HybridSentiment("ok, pode enviar", -0.5))
	assert.Equal(t, model.SentimentNeutral, HybridSentiment("ok, pode enviar", 0.0))
}

func TestScoreSentiment_Bounded(t *testing.T) {
	// Short keyword-dense messages saturate; the score still stays in [-1, 1].
	pos := ScoreSentiment("ótimo excelente perfeito")
	assert.Greater(t, pos, 0.15)
	assert.LessOrEqual(t, pos, 1.0)

	neg := ScoreSentiment("péssimo horrível absurdo")
	assert.Less(t, neg, -0.15)
	assert.GreaterOrEqual(t, neg, -1.0)

	assert.Equal(t, 0.0, ScoreSentiment(""))
}

func TestConversationSentiment_Empty(t *testing.T) {
	s, _ := ConversationSentiment(nil)
	assert.Equal(t, model.SentimentNeutral, s)
}

func TestCombineUrgency_Bucketing(t *testing.T) {
	w := DefaultWeights()

	// Three keyword hits plus a 0.9 classifier signal must land urgent.
	sig := CombineUrgency(3, 0.9, w)
	assert.GreaterOrEqual(t, sig.Score, 7)
	assert.True(t, sig.IsUrgent)
	assert.Contains(t, []model.UrgencyLevel{model.UrgencyCritical, model.UrgencyHigh}, sig.Level)

	assert.Equal(t, model.UrgencyLow, CombineUrgency(0, 0, w).Level)
	assert.Equal(t, model.UrgencyMedium, CombineUrgency(2, 0, w).Level)
	assert.Equal(t, model.UrgencyHigh, CombineUrgency(3, 0, w).Level)
	assert.Equal(t, model.UrgencyCritical, CombineUrgency(4, 0, w).Level)
}

func TestDetectUrgency_Clamped(t *testing.T) {
	w := DefaultWeights()
	text := "URGENTE!! socorro, quebrou tudo, preciso agora, imediatamente, hoje, rapido, prazo estourado"
	sig := DetectUrgency(text, w)
	assert.LessOrEqual(t, sig.Score, 10)
	assert.Equal(t, model.UrgencyCritical, sig.Level)
}

func TestClassifyCategory(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Quanto custa o motor recondicionado?", "consulta_preco"},
		{"Tem como dar um desconto pagando à vista?", "negociacao"},
		{"Fechado, pode faturar", "venda_fechada"},
		{"O equipamento não funciona, dá erro na hora de ligar", "suporte"},
		{"Quero registrar uma reclamação, atendimento péssimo", "reclamacao"},
		{"Me passa um orçamento completo", "orcamento"},
		{"Podemos agendar uma visita na quinta?", "agendamento"},
		{"Meu pedido já chegou? Qual o rastreio?", "pos_venda"},
		{"bom dia", CategoryOutros},
		{"", CategoryOutros},
	}
	for _, tt := range tests {
		got := ClassifyCategory(tt.text)
		assert.Equal(t, tt.want, got.Label, tt.text)
		assert.GreaterOrEqual(t, got.Confidence, 0.0)
		assert.LessOrEqual(t, got.Confidence, 1.0)
	}
}

func TestClassifyIntent_Default(t *testing.T) {
	assert.Equal(t, IntentGeral, ClassifyIntent("bom dia").Label)
	assert.Equal(t, "cancelar", ClassifyIntent("quero cancelar o pedido").Label)
	assert.Equal(t, "comprar", ClassifyIntent("quero comprar duas unidades, vou levar").Label)
}

func TestClassifyStage(t *testing.T) {
	assert.Equal(t, model.StageClosedWon, ClassifyStage([]model.Message{received("Negócio fechado, pode faturar")}))
	assert.Equal(t, model.StageNegotiation, ClassifyStage([]model.Message{received("Consegue um desconto se eu parcelar?")}))
	assert.Equal(t, model.StageInitialContact, ClassifyStage([]model.Message{received("Olá, tudo bem?")}))

	// The latest window decides: a closed conversation can walk back.
	msgs := []model.Message{
		received("Fechado, pode faturar"),
		received("Pensando melhor, desisti da compra"),
	}
	assert.Equal(t, model.StageClosedLost, ClassifyStage(msgs))
}

func TestMessageText_AudioRules(t *testing.T) {
	audio := model.Message{Type: model.TypeAudio}
	assert.Equal(t, AudioPlaceholder, MessageText(audio))

	audio.AudioTranscription = "preciso do produto urgente"
	assert.Equal(t, "preciso do produto urgente", MessageText(audio))

	img := model.Message{Type: model.TypeImage}
	assert.Equal(t, "[image]", MessageText(img))
}
