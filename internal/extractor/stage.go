package extractor

import (
	"strings"

	"github.com/zapfield/conversation-intelligence/internal/model"
)

// Stage keyword sets are checked from most to least advanced so a closing
// signal wins over an earlier-funnel one in the same window.
var stageKeywords = []struct {
	stage    model.NegotiationStage
	keywords []string
}{
	{model.StageClosedLost, []string{"desisti", "nao quero mais", "comprei em outro", "vou deixar pra depois", "cancela"}},
	{model.StageClosedWon, []string{"fechado", "fechou", "comprei", "vou levar", "pode faturar", "negocio fechado"}},
	{model.StageNegotiation, []string{"desconto", "contraproposta", "parcelar", "melhor preco", "a vista", "condicao"}},
	{model.StageProposalSent, []string{"enviei a proposta", "segue o orcamento", "proposta enviada", "mandei o orcamento", "segue a cotacao"}},
	{model.StageInterested, []string{"gostei", "interessado", "interessada", "me interessa", "quero saber mais", "me manda mais"}},
}

// ClassifyStage maps the tail of a conversation onto the negotiation funnel.
// Stages are freely reassigned between analyses: a closed_won conversation
// that reopens negotiation is reported as negotiation again.
func ClassifyStage(messages []model.Message) model.NegotiationStage {
	// Latest signals matter most; look at the last messages first.
	const window = 12
	start := 0
	if len(messages) > window {
		start = len(messages) - window
	}

	var b strings.Builder
	for _, m := range messages[start:] {
		b.WriteString(MessageText(m))
		b.WriteString("\n")
	}
	norm := Normalize(b.String())

	for _, set := range stageKeywords {
		for _, k := range set.keywords {
			if strings.Contains(norm, k) {
				return set.stage
			}
		}
	}
	return model.StageInitialContact
}
