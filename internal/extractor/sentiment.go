package extractor

import (
	"strings"

	"github.com/zapfield/conversation-intelligence/internal/model"
)

// Keyword lists are normalized (lowercase, accent-stripped); Normalize is
// applied to the input before matching.
var positiveKeywords = []string{
	"obrigado", "obrigada", "otimo", "excelente", "perfeito", "maravilha",
	"gostei", "adorei", "show", "top", "legal", "bacana", "fechado",
	"combinado", "pode ser", "vou querer", "muito bom", "parabens",
}

var negativeKeywords = []string{
	"problema", "ruim", "pessimo", "horrivel", "reclamacao", "reclamar",
	"demora", "demorado", "caro demais", "absurdo", "cancelar", "desisto",
	"insatisfeito", "nao gostei", "nao funciona", "decepcionado", "nunca mais",
}

// KeywordHits counts occurrences of each side's keywords in the text.
func KeywordHits(text string) (positive, negative int) {
	norm := Normalize(text)
	for _, k := range positiveKeywords {
		positive += strings.Count(norm, k)
	}
	for _, k := range negativeKeywords {
		negative += strings.Count(norm, k)
	}
	return positive, negative
}

// ScoreSentiment is the model-style scorer: a lexicon fold over the text with
// light negation handling, returning a score in [-1, 1].
func ScoreSentiment(text string) float64 {
	norm := Normalize(text)
	words := strings.Fields(norm)
	if len(words) == 0 {
		return 0
	}

	score := 0.0
	for i, w := range words {
		var v float64
		for _, k := range positiveKeywords {
			if strings.Contains(w, k) {
				v = 1
				break
			}
		}
		if v == 0 {
			for _, k := range negativeKeywords {
				if strings.Contains(w, k) {
					v = -1
					break
				}
			}
		}
		if v != 0 && i > 0 && (words[i-1] == "nao" || words[i-1] == "nem") {
			v = -v
		}
		score += v
	}

	// Dampen by length so one keyword in a long message stays mild, then
	// scale back up so short messages still clear the hybrid thresholds.
	score = score / float64(len(words)) * 4
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return score
}

// HybridSentiment blends keyword evidence with the model score. Keyword
// evidence wins when unambiguous (one side has hits, the other has none);
// the model score breaks ties when both sides have hits or neither does.
// Pure model sentiment mishandles short transactional phrases, which is the
// whole reason this hybrid exists.
func HybridSentiment(text string, modelScore float64) model.Sentiment {
	pos, neg := KeywordHits(text)

	switch {
	case pos > 0 && neg == 0:
		return model.SentimentPositive
	case neg > 0 && pos == 0:
		return model.SentimentNegative
	}

	switch {
	case modelScore > 0.15:
		return model.SentimentPositive
	case modelScore < -0.15:
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}

// ConversationSentiment runs the hybrid over the most recent received
// messages, where the model scorer is least noisy.
func ConversationSentiment(messages []model.Message) (model.Sentiment, string) {
	const window = 5

	var recent []model.Message
	for i := len(messages) - 1; i >= 0 && len(recent) < window; i-- {
		if messages[i].Direction == model.DirectionReceived {
			recent = append(recent, messages[i])
		}
	}
	if len(recent) == 0 {
		return model.SentimentNeutral, "sem mensagens do cliente"
	}

	var parts []string
	for _, m := range recent {
		parts = append(parts, MessageText(m))
	}
	text := strings.Join(parts, "\n")

	s := HybridSentiment(text, ScoreSentiment(text))
	pos, neg := KeywordHits(text)
	reason := sentimentReason(s, pos, neg)
	return s, reason
}

func sentimentReason(s model.Sentiment, pos, neg int) string {
	switch s {
	case model.SentimentPositive:
		return "predomínio de sinais positivos nas últimas mensagens"
	case model.SentimentNegative:
		return "predomínio de sinais negativos nas últimas mensagens"
	default:
		if pos > 0 && neg > 0 {
			return "sinais positivos e negativos equilibrados"
		}
		return "sem sinais fortes de sentimento"
	}
}
