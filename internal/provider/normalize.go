package provider

import (
	"strings"

	"github.com/zapfield/conversation-intelligence/internal/model"
)

// NormalizeSentiment maps provider spellings (English, Portuguese,
// abbreviations) onto the canonical three-value set. Anything unrecognized is
// neutral, never an error.
func NormalizeSentiment(s string) model.Sentiment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive", "positivo", "positiva", "pos", "bom":
		return model.SentimentPositive
	case "negative", "negativo", "negativa", "neg", "ruim":
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}

// NormalizeStage maps a provider stage label onto the funnel enum, defaulting
// to initial_contact.
func NormalizeStage(s string) model.NegotiationStage {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "initial_contact", "contato_inicial":
		return model.StageInitialContact
	case "interested", "interessado", "interesse":
		return model.StageInterested
	case "proposal_sent", "proposta_enviada":
		return model.StageProposalSent
	case "negotiation", "negociacao", "negociação":
		return model.StageNegotiation
	case "closed_won", "fechado", "ganho":
		return model.StageClosedWon
	case "closed_lost", "perdido":
		return model.StageClosedLost
	default:
		return model.StageInitialContact
	}
}

// Clamp01 bounds a confidence or probability into [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ClampUrgency bounds an urgency score into the 0-10 integer scale.
func ClampUrgency(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return int(v + 0.5)
}

func normalizeLabel(s, fallback string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return fallback
	}
	return s
}
