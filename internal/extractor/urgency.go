package extractor

import (
	"strings"

	"github.com/zapfield/conversation-intelligence/internal/model"
)

var urgencyKeywords = []string{
	"urgente", "urgencia", "emergencia", "socorro", "imediato", "imediatamente",
	"agora", "hoje", "rapido", "correndo", "prazo", "atrasado", "parado",
	"quebrou", "nao funciona", "preciso muito", "ja era pra",
}

// UrgencySignal is the decomposed urgency result.
type UrgencySignal struct {
	Score      int                `json:"score"` // 0-10
	Level      model.UrgencyLevel `json:"level"`
	IsUrgent   bool               `json:"is_urgent"`
	KeywordHit int                `json:"keyword_hits"`
	Classifier float64            `json:"classifier"` // 0-1 urgent-vs-normal signal
}

// ClassifyPriority is the classifier half of the urgency detector: a 0-1
// urgent-vs-normal signal from punctuation pressure, shouting and demand
// phrasing, independent of the keyword list.
func ClassifyPriority(text string) float64 {
	if text == "" {
		return 0
	}

	signal := 0.0

	if strings.Contains(text, "!!") {
		signal += 0.3
	} else if strings.Contains(text, "!") {
		signal += 0.15
	}

	if upperRatio(text) > 0.5 && len(text) > 8 {
		signal += 0.3
	}

	norm := Normalize(text)
	for _, phrase := range []string{"pra ontem", "nao posso esperar", "o quanto antes", "estou sem", "to sem"} {
		if strings.Contains(norm, phrase) {
			signal += 0.3
			break
		}
	}
	if strings.Contains(norm, "?") && strings.Contains(norm, "ainda") {
		signal += 0.1
	}

	if signal > 1 {
		signal = 1
	}
	return signal
}

func upperRatio(s string) float64 {
	var letters, upper int
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			letters++
		} else if r >= 'A' && r <= 'Z' {
			letters++
			upper++
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(upper) / float64(letters)
}

// DetectUrgency combines distinct keyword hits (each worth
// w.UrgencyKeywordWeight) with the classifier signal scaled to 0-4, clamped
// to the 0-10 scale, then buckets the score.
func DetectUrgency(text string, w Weights) UrgencySignal {
	norm := Normalize(text)

	hits := 0
	for _, k := range urgencyKeywords {
		if strings.Contains(norm, k) {
			hits++
		}
	}

	return CombineUrgency(hits, ClassifyPriority(text), w)
}

// CombineUrgency merges keyword hits with a 0-1 classifier signal: hits are
// weighted, the classifier contributes up to 4 points, and the sum is clamped
// to [0, 10].
func CombineUrgency(hits int, classifier float64, w Weights) UrgencySignal {
	score := hits*w.UrgencyKeywordWeight + int(classifier*4+0.5)
	if score > 10 {
		score = 10
	}
	if score < 0 {
		score = 0
	}

	return UrgencySignal{
		Score:      score,
		Level:      LevelFor(score, w),
		IsUrgent:   score >= w.UrgentThreshold,
		KeywordHit: hits,
		Classifier: classifier,
	}
}

// LevelFor buckets a 0-10 urgency score. Edges are inclusive:
// critical >= 8, high 6-7, medium 4-5, low < 4 with the default weights.
func LevelFor(score int, w Weights) model.UrgencyLevel {
	switch {
	case score >= w.UrgencyCritical:
		return model.UrgencyCritical
	case score >= w.UrgencyHigh:
		return model.UrgencyHigh
	case score >= w.UrgencyMedium:
		return model.UrgencyMedium
	default:
		return model.UrgencyLow
	}
}
