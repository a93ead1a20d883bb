package provider

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zapfield/conversation-intelligence/internal/extractor"
	"github.com/zapfield/conversation-intelligence/internal/model"
)

// Raw response variants. Each remote provider's output is decoded into one of
// these loose shapes and normalized in a single explicit step; nothing
// downstream ever branches on provider identity.

type rawSummary struct {
	Summary          string   `json:"summary"`
	Sentiment        string   `json:"sentiment"`
	SentimentReason  string   `json:"sentiment_reason"`
	Intent           string   `json:"intent"`
	IntentConfidence float64  `json:"intent_confidence"`
	Highlights       []string `json:"highlights"`
	Conclusion       string   `json:"conclusion"`
	UrgencyScore     float64  `json:"urgency_score"`
	SuggestedActions []string `json:"suggested_actions"`
	Emails           []string `json:"emails"`
	Phones           []string `json:"phones"`
	MonetaryValues   []string `json:"monetary_values"`
}

type rawLead struct {
	Products              []string `json:"products"`
	MonetaryValues        []string `json:"monetary_values"`
	TotalValue            float64  `json:"total_value"`
	InterestLevel         string   `json:"interest_level"`
	UrgencyScore          float64  `json:"urgency_score"`
	NegotiationStage      string   `json:"negotiation_stage"`
	MainNeed              string   `json:"main_need"`
	Objections            []string `json:"objections"`
	NextSteps             []string `json:"next_steps"`
	DecisionMaker         bool     `json:"decision_maker"`
	CheckingCompetitors   bool     `json:"checking_competitors"`
	Sentiment             string   `json:"sentiment"`
	ConversionProbability float64  `json:"conversion_probability"`
}

type rawKPIs struct {
	Category     string  `json:"category"`
	Intent       string  `json:"intent"`
	Sentiment    string  `json:"sentiment"`
	UrgencyScore float64 `json:"urgency_score"`
}

// ExtractJSON finds the first balanced JSON object in a model response,
// stripping the markdown fences remote models like to add.
func ExtractJSON(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ReplaceAll(s, "\r\n", "\n")
	for _, fence := range []string{"```json", "```", "`json", "`"} {
		s = strings.ReplaceAll(s, fence, "")
	}

	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[start : i+1])
			}
		}
	}
	return ""
}

func decodeInto(body string, v any) error {
	candidate := ExtractJSON(body)
	if candidate == "" {
		return fmt.Errorf("%w: no JSON object in output", ErrMalformedResponse)
	}
	if err := json.Unmarshal([]byte(candidate), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func decodeSummary(body string, messages []model.Message, w extractor.Weights) (*model.SummaryPayload, error) {
	var raw rawSummary
	if err := decodeInto(body, &raw); err != nil {
		return nil, err
	}
	if raw.Summary == "" {
		return nil, fmt.Errorf("%w: empty summary text", ErrMalformedResponse)
	}

	urgency := ClampUrgency(raw.UrgencyScore)
	original := extractor.WordCount(extractor.Flatten(messages))
	summaryWords := extractor.WordCount(raw.Summary)

	return &model.SummaryPayload{
		Text:             raw.Summary,
		Sentiment:        NormalizeSentiment(raw.Sentiment),
		SentimentReason:  raw.SentimentReason,
		Intent:           normalizeLabel(raw.Intent, extractor.IntentGeral),
		IntentConfidence: Clamp01(raw.IntentConfidence),
		Highlights:       orEmpty(raw.Highlights),
		Conclusion:       raw.Conclusion,
		UrgencyLevel:     extractor.LevelFor(urgency, w),
		SuggestedActions: orEmpty(raw.SuggestedActions),
		Emails:           orEmpty(raw.Emails),
		Phones:           orEmpty(raw.Phones),
		MonetaryValues:   orEmpty(raw.MonetaryValues),
		OriginalWords:    original,
		SummaryWords:     summaryWords,
		CompressionRate:  compressionRate(original, summaryWords),
	}, nil
}

func decodeLead(body string, w extractor.Weights) (*model.LeadPayload, error) {
	var raw rawLead
	if err := decodeInto(body, &raw); err != nil {
		return nil, err
	}

	total := raw.TotalValue
	if total == 0 {
		for _, v := range raw.MonetaryValues {
			if amount, ok := extractor.ParseCurrency(v); ok {
				total += amount
			}
		}
	}

	urgency := ClampUrgency(raw.UrgencyScore)

	return &model.LeadPayload{
		Products:              orEmpty(raw.Products),
		MonetaryValues:        orEmpty(raw.MonetaryValues),
		TotalValue:            total,
		InterestLevel:         normalizeLabel(raw.InterestLevel, "medio"),
		UrgencyLevel:          extractor.LevelFor(urgency, w),
		Stage:                 NormalizeStage(raw.NegotiationStage),
		MainNeed:              raw.MainNeed,
		Objections:            orEmpty(raw.Objections),
		NextSteps:             orEmpty(raw.NextSteps),
		DecisionMaker:         raw.DecisionMaker,
		CheckingCompetitors:   raw.CheckingCompetitors,
		Sentiment:             NormalizeSentiment(raw.Sentiment),
		ConversionProbability: Clamp01(raw.ConversionProbability),
	}, nil
}

func decodeKPIs(body string, messages []model.Message, w extractor.Weights) (*model.ConversationKPIs, error) {
	var raw rawKPIs
	if err := decodeInto(body, &raw); err != nil {
		return nil, err
	}

	urgency := ClampUrgency(raw.UrgencyScore)
	sent, recv := countDirections(messages)

	total := 0.0
	for _, m := range messages {
		total += extractor.ExtractPatterns(extractor.MessageText(m)).Total
	}

	return &model.ConversationKPIs{
		Category:      normalizeLabel(raw.Category, extractor.CategoryOutros),
		Intent:        normalizeLabel(raw.Intent, extractor.IntentGeral),
		Sentiment:     NormalizeSentiment(raw.Sentiment),
		UrgencyScore:  urgency,
		UrgencyLevel:  extractor.LevelFor(urgency, w),
		MessageCount:  len(messages),
		SentCount:     sent,
		ReceivedCount: recv,
		TotalValue:    total,
	}, nil
}

func countDirections(messages []model.Message) (sent, received int) {
	for _, m := range messages {
		if m.Direction == model.DirectionSent {
			sent++
		} else {
			received++
		}
	}
	return sent, received
}

func compressionRate(originalWords, summaryWords int) float64 {
	if originalWords == 0 || summaryWords >= originalWords {
		return 0
	}
	return 1 - float64(summaryWords)/float64(originalWords)
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
