package provider

import (
	"fmt"
	"strings"

	"github.com/zapfield/conversation-intelligence/internal/extractor"
	"github.com/zapfield/conversation-intelligence/internal/model"
)

// Prompts pin the output schema hard: the remote model must return only a
// JSON object, which keeps the normalization step deterministic.

const promptPreamble = `Você é um analista de conversas comerciais de WhatsApp.
Analise a conversa abaixo e responda APENAS com um objeto JSON válido,
sem comentários, sem texto fora do JSON e sem cercas de markdown.
Não invente valores: se uma informação não aparece na conversa, use
listas vazias, strings vazias, 0 ou false.`

func conversationBlock(messages []model.Message, meta Meta) string {
	var b strings.Builder
	b.WriteString("CONTATO: ")
	if meta.ContactName != "" {
		b.WriteString(meta.ContactName)
	} else {
		b.WriteString("desconhecido")
	}
	b.WriteString("\n")
	if !meta.PeriodStart.IsZero() {
		fmt.Fprintf(&b, "PERÍODO: %s a %s\n",
			meta.PeriodStart.Format("2006-01-02 15:04"),
			meta.PeriodEnd.Format("2006-01-02 15:04"))
	}
	b.WriteString("CONVERSA:\n")
	b.WriteString(extractor.Flatten(messages))
	return b.String()
}

func summaryPrompt(messages []model.Message, meta Meta) string {
	return fmt.Sprintf(`%s

ESQUEMA (retorne exatamente estes campos):
{
  "summary": "",
  "sentiment": "positive|neutral|negative",
  "sentiment_reason": "",
  "intent": "comprar|reclamar|perguntar|cancelar|negociar|geral",
  "intent_confidence": 0.0,
  "highlights": [],
  "conclusion": "",
  "urgency_score": 0,
  "suggested_actions": [],
  "emails": [],
  "phones": [],
  "monetary_values": []
}

"urgency_score" é um inteiro de 0 a 10. "intent_confidence" fica entre 0 e 1.

%s`, promptPreamble, conversationBlock(messages, meta))
}

func leadPrompt(messages []model.Message, meta Meta) string {
	return fmt.Sprintf(`%s

Extraia a inteligência comercial da conversa.

ESQUEMA (retorne exatamente estes campos):
{
  "products": [],
  "monetary_values": [],
  "total_value": 0.0,
  "interest_level": "alto|medio|baixo",
  "urgency_score": 0,
  "negotiation_stage": "initial_contact|interested|proposal_sent|negotiation|closed_won|closed_lost",
  "main_need": "",
  "objections": [],
  "next_steps": [],
  "decision_maker": false,
  "checking_competitors": false,
  "sentiment": "positive|neutral|negative",
  "conversion_probability": 0.0
}

"conversion_probability" fica entre 0 e 1. "urgency_score" é um inteiro de 0 a 10.

%s`, promptPreamble, conversationBlock(messages, meta))
}

func kpiPrompt(messages []model.Message) string {
	return fmt.Sprintf(`%s

Classifique a conversa para o painel de indicadores.

ESQUEMA (retorne exatamente estes campos):
{
  "category": "consulta_preco|negociacao|venda_fechada|suporte|reclamacao|orcamento|agendamento|pos_venda|outros",
  "intent": "comprar|reclamar|perguntar|cancelar|negociar|geral",
  "sentiment": "positive|neutral|negative",
  "urgency_score": 0
}

%s`, promptPreamble, conversationBlock(messages, Meta{}))
}
