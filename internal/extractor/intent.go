package extractor

import (
	"strings"
)

// CategoryOutros is the default bucket for unmapped or low-confidence text.
const CategoryOutros = "outros"

// IntentGeral is the default intent bucket.
const IntentGeral = "geral"

// Categories is the closed category set, in dashboard display order.
var Categories = []string{
	"consulta_preco", "negociacao", "venda_fechada", "suporte",
	"reclamacao", "orcamento", "agendamento", "pos_venda",
}

// Intents is the closed intent set.
var Intents = []string{"comprar", "reclamar", "perguntar", "cancelar", "negociar"}

var categoryKeywords = map[string][]string{
	"consulta_preco": {"preco", "quanto custa", "quanto fica", "quanto sai", "valor", "custa", "tabela"},
	"negociacao":     {"desconto", "parcelado", "parcelar", "proposta", "negociar", "condicao", "a vista", "melhor preco"},
	"venda_fechada":  {"fechado", "fechou", "comprei", "vou levar", "pode faturar", "negocio fechado", "vendido"},
	"suporte":        {"ajuda", "suporte", "como faco", "como usa", "nao funciona", "erro", "defeito", "instalar", "configurar"},
	"reclamacao":     {"reclamacao", "reclamar", "insatisfeito", "pessimo", "absurdo", "demora", "problema", "horrivel"},
	"orcamento":      {"orcamento", "orcar", "cotacao", "cotar", "me passa um orcamento"},
	"agendamento":    {"agendar", "marcar", "horario", "visita", "agenda", "que dia", "que horas"},
	"pos_venda":      {"garantia", "troca", "devolucao", "entrega", "chegou", "rastreio", "nota fiscal"},
}

var intentKeywords = map[string][]string{
	"comprar":   {"quero comprar", "vou comprar", "vou levar", "quero esse", "pode faturar", "fechado"},
	"reclamar":  {"reclamacao", "reclamar", "absurdo", "insatisfeito", "pessimo", "nao gostei"},
	"perguntar": {"?", "como", "quando", "onde", "qual", "quanto"},
	"cancelar":  {"cancelar", "cancela", "desisto", "nao quero mais", "estornar"},
	"negociar":  {"desconto", "negociar", "proposta", "parcelar", "condicao", "melhor preco"},
}

// Classification is one labeled classification with its confidence in [0,1].
type Classification struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// ClassifyCategory maps free text onto the closed category set. Unmapped text
// lands in "outros" with zero confidence; this never errors.
func ClassifyCategory(text string) Classification {
	return classify(text, Categories, categoryKeywords, CategoryOutros)
}

// ClassifyIntent maps free text onto the closed intent set, defaulting to
// "geral".
func ClassifyIntent(text string) Classification {
	return classify(text, Intents, intentKeywords, IntentGeral)
}

func classify(text string, labels []string, keywords map[string][]string, fallback string) Classification {
	norm := Normalize(text)

	best := fallback
	bestScore := 0
	total := 0
	for _, label := range labels {
		score := 0
		for _, k := range keywords[label] {
			score += strings.Count(norm, k)
		}
		total += score
		if score > bestScore {
			bestScore = score
			best = label
		}
	}

	if bestScore == 0 || total == 0 {
		return Classification{Label: fallback, Confidence: 0}
	}

	conf := float64(bestScore) / float64(total)
	// Too ambiguous across labels: stay in the default bucket.
	if conf < 0.34 {
		return Classification{Label: fallback, Confidence: conf}
	}
	return Classification{Label: best, Confidence: conf}
}
