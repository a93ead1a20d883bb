package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/zapfield/conversation-intelligence/internal/extractor"
	"github.com/zapfield/conversation-intelligence/internal/model"
)

// LocalProvider composes the signal extractors into full analysis payloads.
// Lower fidelity than the remote model, always available, no I/O.
type LocalProvider struct {
	weights extractor.Weights
}

// NewLocalProvider creates the heuristic fallback provider.
func NewLocalProvider(w extractor.Weights) *LocalProvider {
	return &LocalProvider{weights: w}
}

// Kind returns the provider kind.
func (p *LocalProvider) Kind() model.ProviderKind {
	return model.ProviderLocal
}

// Summarize builds a summary from extractor signals.
func (p *LocalProvider) Summarize(_ context.Context, messages []model.Message, meta Meta) (*model.SummaryPayload, error) {
	full := extractor.Flatten(messages)
	receivedText := extractor.ReceivedText(messages)

	sentiment, reason := extractor.ConversationSentiment(messages)
	intent := extractor.ClassifyIntent(receivedText)
	urgency := extractor.DetectUrgency(receivedText, p.weights)
	patterns := extractor.ExtractPatterns(full)
	stage := extractor.ClassifyStage(messages)

	name := meta.ContactName
	if name == "" {
		name = "o contato"
	}
	text := fmt.Sprintf(
		"Conversa com %s contendo %d mensagens. Intenção predominante: %s. Sentimento %s. Estágio comercial: %s.",
		name, len(messages), intent.Label, sentimentPT(sentiment), stagePT(stage),
	)
	if len(patterns.MonetaryValues) > 0 {
		text += fmt.Sprintf(" Valores mencionados: %s.", strings.Join(patterns.MonetaryValues, ", "))
	}

	originalWords := extractor.WordCount(full)
	summaryWords := extractor.WordCount(text)

	return &model.SummaryPayload{
		Text:             text,
		Sentiment:        sentiment,
		SentimentReason:  reason,
		Intent:           intent.Label,
		IntentConfidence: Clamp01(intent.Confidence),
		Highlights:       highlights(messages),
		Conclusion:       conclusionFor(stage),
		UrgencyLevel:     urgency.Level,
		SuggestedActions: suggestedActions(urgency, intent.Label, stage),
		Emails:           patterns.Emails,
		Phones:           patterns.Phones,
		MonetaryValues:   patterns.MonetaryValues,
		OriginalWords:    originalWords,
		SummaryWords:     summaryWords,
		CompressionRate:  compressionRate(originalWords, summaryWords),
	}, nil
}

// ExtractLeadInfo builds the commercial extraction from extractor signals.
func (p *LocalProvider) ExtractLeadInfo(_ context.Context, messages []model.Message, _ Meta) (*model.LeadPayload, error) {
	full := extractor.Flatten(messages)
	receivedText := extractor.ReceivedText(messages)

	sentiment, _ := extractor.ConversationSentiment(messages)
	urgency := extractor.DetectUrgency(receivedText, p.weights)
	patterns := extractor.ExtractPatterns(full)
	stage := extractor.ClassifyStage(messages)

	norm := extractor.Normalize(receivedText)

	return &model.LeadPayload{
		Products:              productMentions(messages),
		MonetaryValues:        patterns.MonetaryValues,
		TotalValue:            patterns.Total,
		InterestLevel:         interestLevel(stage, sentiment),
		UrgencyLevel:          urgency.Level,
		Stage:                 stage,
		MainNeed:              mainNeed(messages),
		Objections:            objections(messages),
		NextSteps:             nextSteps(stage),
		DecisionMaker:         strings.Contains(norm, "eu decido") || strings.Contains(norm, "sou o dono") || strings.Contains(norm, "sou a dona"),
		CheckingCompetitors:   containsAny(norm, "concorrente", "outra loja", "outro fornecedor", "orcamento em outro", "mais barato em outro"),
		Sentiment:             sentiment,
		ConversionProbability: conversionProbability(stage, sentiment),
	}, nil
}

// AnalyzeForKPIs builds the per-conversation KPI bundle from extractor signals.
func (p *LocalProvider) AnalyzeForKPIs(_ context.Context, messages []model.Message) (*model.ConversationKPIs, error) {
	receivedText := extractor.ReceivedText(messages)

	sentiment, _ := extractor.ConversationSentiment(messages)
	category := extractor.ClassifyCategory(receivedText)
	intent := extractor.ClassifyIntent(receivedText)
	urgency := extractor.DetectUrgency(receivedText, p.weights)
	sent, recv := countDirections(messages)

	total := 0.0
	for _, m := range messages {
		total += extractor.ExtractPatterns(extractor.MessageText(m)).Total
	}

	return &model.ConversationKPIs{
		Category:      category.Label,
		Intent:        intent.Label,
		Sentiment:     sentiment,
		UrgencyScore:  urgency.Score,
		UrgencyLevel:  urgency.Level,
		MessageCount:  len(messages),
		SentCount:     sent,
		ReceivedCount: recv,
		TotalValue:    total,
	}, nil
}

// highlights picks the most substantial customer messages.
func highlights(messages []model.Message) []string {
	var candidates []string
	for _, m := range messages {
		if m.Direction != model.DirectionReceived {
			continue
		}
		text := extractor.MessageText(m)
		if extractor.WordCount(text) >= 4 && text != extractor.AudioPlaceholder {
			candidates = append(candidates, text)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return extractor.WordCount(candidates[i]) > extractor.WordCount(candidates[j])
	})
	if len(candidates) > 3 {
		candidates = candidates[:3]
	}
	for i, c := range candidates {
		candidates[i] = truncate(c, 140)
	}
	if candidates == nil {
		candidates = []string{}
	}
	return candidates
}

var needPrefixes = []string{"preciso de ", "preciso ", "quero ", "procuro ", "estou procurando ", "to procurando "}

// byteOffset maps a rune offset into its byte offset in s. Normalize rewrites
// rune for rune, so a match position in normalized text carries back to the
// original through its rune offset; byte offsets do not line up, accented
// runes shrink from two bytes to one.
func byteOffset(s string, runes int) int {
	for i := range s {
		if runes == 0 {
			return i
		}
		runes--
	}
	return len(s)
}

// truncate caps s at max bytes, cutting on a rune boundary before the
// ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func mainNeed(messages []model.Message) string {
	for _, m := range messages {
		if m.Direction != model.DirectionReceived {
			continue
		}
		text := extractor.MessageText(m)
		norm := extractor.Normalize(text)
		for _, prefix := range needPrefixes {
			idx := strings.Index(norm, prefix)
			if idx < 0 {
				continue
			}
			start := byteOffset(text, utf8.RuneCountInString(norm[:idx]))
			return truncate(strings.TrimSpace(text[start:]), 120)
		}
	}
	return ""
}

func productMentions(messages []model.Message) []string {
	products := []string{}
	seen := map[string]bool{}
	for _, m := range messages {
		if m.Direction != model.DirectionReceived {
			continue
		}
		text := extractor.MessageText(m)
		norm := extractor.Normalize(text)
		for _, prefix := range needPrefixes {
			idx := strings.Index(norm, prefix)
			if idx < 0 {
				continue
			}
			after := utf8.RuneCountInString(norm[:idx]) + utf8.RuneCountInString(prefix)
			rest := text[byteOffset(text, after):]
			if cut := strings.IndexAny(rest, ".,;?!\n"); cut >= 0 {
				rest = rest[:cut]
			}
			rest = strings.TrimSpace(rest)
			if rest != "" && !seen[strings.ToLower(rest)] {
				seen[strings.ToLower(rest)] = true
				products = append(products, rest)
			}
			break
		}
	}
	return products
}

func objections(messages []model.Message) []string {
	found := []string{}
	for _, m := range messages {
		if m.Direction != model.DirectionReceived {
			continue
		}
		text := extractor.MessageText(m)
		norm := extractor.Normalize(text)
		if containsAny(norm, "caro", "muito alto", "vou pensar", "depois eu vejo", "nao tenho certeza", "ta dificil") {
			found = append(found, truncate(text, 120))
		}
	}
	return found
}

func nextSteps(stage model.NegotiationStage) []string {
	switch stage {
	case model.StageInterested:
		return []string{"enviar proposta comercial"}
	case model.StageProposalSent:
		return []string{"fazer follow-up da proposta"}
	case model.StageNegotiation:
		return []string{"definir condição final e fechar"}
	case model.StageClosedWon:
		return []string{"emitir faturamento e combinar entrega"}
	case model.StageClosedLost:
		return []string{"registrar motivo da perda"}
	default:
		return []string{"qualificar a necessidade do contato"}
	}
}

func suggestedActions(u extractor.UrgencySignal, intent string, stage model.NegotiationStage) []string {
	var actions []string
	if u.IsUrgent {
		actions = append(actions, "responder imediatamente: conversa urgente")
	}
	switch intent {
	case "negociar":
		actions = append(actions, "preparar contraproposta")
	case "reclamar":
		actions = append(actions, "tratar a reclamação com prioridade")
	case "cancelar":
		actions = append(actions, "tentar reverter o cancelamento")
	}
	actions = append(actions, nextSteps(stage)...)
	return actions
}

func interestLevel(stage model.NegotiationStage, s model.Sentiment) string {
	switch stage {
	case model.StageNegotiation, model.StageClosedWon:
		return "alto"
	case model.StageProposalSent, model.StageInterested:
		if s == model.SentimentNegative {
			return "medio"
		}
		return "alto"
	case model.StageClosedLost:
		return "baixo"
	default:
		if s == model.SentimentPositive {
			return "medio"
		}
		return "baixo"
	}
}

func conversionProbability(stage model.NegotiationStage, s model.Sentiment) float64 {
	base := map[model.NegotiationStage]float64{
		model.StageInitialContact: 0.2,
		model.StageInterested:     0.4,
		model.StageProposalSent:   0.55,
		model.StageNegotiation:    0.7,
		model.StageClosedWon:      1.0,
		model.StageClosedLost:     0.05,
	}[stage]

	switch s {
	case model.SentimentPositive:
		base += 0.1
	case model.SentimentNegative:
		base -= 0.1
	}
	return Clamp01(base)
}

func conclusionFor(stage model.NegotiationStage) string {
	switch stage {
	case model.StageClosedWon:
		return "Venda concluída."
	case model.StageClosedLost:
		return "Negócio perdido."
	case model.StageNegotiation:
		return "Negociação em andamento."
	case model.StageProposalSent:
		return "Aguardando retorno da proposta."
	case model.StageInterested:
		return "Contato demonstra interesse."
	default:
		return "Conversa em estágio inicial."
	}
}

func sentimentPT(s model.Sentiment) string {
	switch s {
	case model.SentimentPositive:
		return "positivo"
	case model.SentimentNegative:
		return "negativo"
	default:
		return "neutro"
	}
}

func stagePT(stage model.NegotiationStage) string {
	switch stage {
	case model.StageInterested:
		return "interesse"
	case model.StageProposalSent:
		return "proposta enviada"
	case model.StageNegotiation:
		return "negociação"
	case model.StageClosedWon:
		return "venda fechada"
	case model.StageClosedLost:
		return "negócio perdido"
	default:
		return "contato inicial"
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
