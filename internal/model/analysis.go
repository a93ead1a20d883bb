package model

import (
	"time"
)

// AnalysisKind selects which derived analysis is requested.
type AnalysisKind string

const (
	KindSummary AnalysisKind = "summary"
	KindLead    AnalysisKind = "lead_info"
	KindKPIs    AnalysisKind = "conversation_kpis"
)

// ValidKind reports whether k names a known analysis kind.
func ValidKind(k AnalysisKind) bool {
	switch k {
	case KindSummary, KindLead, KindKPIs:
		return true
	}
	return false
}

// ProviderKind identifies which provider produced an analysis.
type ProviderKind string

const (
	ProviderRemote ProviderKind = "remote"
	ProviderLocal  ProviderKind = "local"
)

// Sentiment is the normalized sentiment classification. Providers may emit
// other spellings; normalization maps everything onto these three values.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// UrgencyLevel buckets the 0-10 urgency score.
type UrgencyLevel string

const (
	UrgencyCritical UrgencyLevel = "critical"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyMedium   UrgencyLevel = "medium"
	UrgencyLow      UrgencyLevel = "low"
)

// NegotiationStage is the commercial funnel stage of a conversation.
type NegotiationStage string

const (
	StageInitialContact NegotiationStage = "initial_contact"
	StageInterested     NegotiationStage = "interested"
	StageProposalSent   NegotiationStage = "proposal_sent"
	StageNegotiation    NegotiationStage = "negotiation"
	StageClosedWon      NegotiationStage = "closed_won"
	StageClosedLost     NegotiationStage = "closed_lost"
)

// StageRank orders stages for funnel rendering. Stages are freely reassigned
// per analysis; the rank only supports display, it is not an invariant.
func StageRank(s NegotiationStage) int {
	switch s {
	case StageInitialContact:
		return 0
	case StageInterested:
		return 1
	case StageProposalSent:
		return 2
	case StageNegotiation:
		return 3
	case StageClosedWon:
		return 4
	case StageClosedLost:
		return 5
	}
	return 0
}

// SummaryPayload is the normalized conversation summary analysis.
type SummaryPayload struct {
	Text             string       `json:"text"`
	Sentiment        Sentiment    `json:"sentiment"`
	SentimentReason  string       `json:"sentiment_reason,omitempty"`
	Intent           string       `json:"intent"`
	IntentConfidence float64      `json:"intent_confidence"`
	Highlights       []string     `json:"highlights"`
	Conclusion       string       `json:"conclusion,omitempty"`
	UrgencyLevel     UrgencyLevel `json:"urgency_level"`
	SuggestedActions []string     `json:"suggested_actions,omitempty"`
	Emails           []string     `json:"emails"`
	Phones           []string     `json:"phones"`
	MonetaryValues   []string     `json:"monetary_values"`

	// Compression metrics, in words, used for the time-saved estimate.
	OriginalWords   int     `json:"original_words"`
	SummaryWords    int     `json:"summary_words"`
	CompressionRate float64 `json:"compression_rate"`
}

// LeadPayload is the normalized lead / commercial-intelligence extraction.
type LeadPayload struct {
	Products              []string         `json:"products"`
	MonetaryValues        []string         `json:"monetary_values"`
	TotalValue            float64          `json:"total_value"`
	InterestLevel         string           `json:"interest_level"`
	UrgencyLevel          UrgencyLevel     `json:"urgency_level"`
	Stage                 NegotiationStage `json:"negotiation_stage"`
	MainNeed              string           `json:"main_need,omitempty"`
	Objections            []string         `json:"objections"`
	NextSteps             []string         `json:"next_steps"`
	DecisionMaker         bool             `json:"decision_maker"`
	CheckingCompetitors   bool             `json:"checking_competitors"`
	Sentiment             Sentiment        `json:"sentiment"`
	ConversionProbability float64          `json:"conversion_probability"`
}

// ConversationKPIs is the normalized per-conversation KPI bundle.
type ConversationKPIs struct {
	Category      string       `json:"category"`
	Intent        string       `json:"intent"`
	Sentiment     Sentiment    `json:"sentiment"`
	UrgencyScore  int          `json:"urgency_score"`
	UrgencyLevel  UrgencyLevel `json:"urgency_level"`
	MessageCount  int          `json:"message_count"`
	SentCount     int          `json:"sent_count"`
	ReceivedCount int          `json:"received_count"`
	TotalValue    float64      `json:"total_value"`
}

// AnalysisRecord is one cached analysis for a (conversation, kind) pair.
// Exactly one of Summary, Lead or KPIs is set, matching Kind.
type AnalysisRecord struct {
	ID            string       `json:"id"`
	AccountID     string       `json:"account_id"`
	ContactNumber string       `json:"contact_number"`
	Kind          AnalysisKind `json:"kind"`

	Summary *SummaryPayload   `json:"summary,omitempty"`
	Lead    *LeadPayload      `json:"lead,omitempty"`
	KPIs    *ConversationKPIs `json:"kpis,omitempty"`

	// Staleness watermark: how much of the conversation the payload covers.
	SourceMessageCount int       `json:"source_message_count"`
	SourceWatermark    time.Time `json:"source_watermark"`

	ComputedAt time.Time    `json:"computed_at"`
	Provider   ProviderKind `json:"provider"`
}

// Key returns the conversation key of the record.
func (r *AnalysisRecord) Key() ConversationKey {
	return ConversationKey{AccountID: r.AccountID, ContactNumber: r.ContactNumber}
}

// AnalysisResult is what the orchestrator hands back to callers. Cached and
// NoNewMessages are an explicit contract so UIs can show "already up to date";
// Stale marks a cached record returned because every provider failed.
type AnalysisResult struct {
	Record        *AnalysisRecord `json:"record"`
	Cached        bool            `json:"cached"`
	NoNewMessages bool            `json:"no_new_messages"`
	Stale         bool            `json:"stale,omitempty"`
}

// MessageAnalysis is a per-message analysis row produced by the bulk
// extractor pass and consumed by the aggregate KPI reducer.
type MessageAnalysis struct {
	MessageID     string    `json:"message_id"`
	AccountID     string    `json:"account_id"`
	ContactNumber string    `json:"contact_number"`
	Direction     Direction `json:"direction"`
	Timestamp     time.Time `json:"timestamp"`

	Category           string    `json:"category"`
	CategoryConfidence float64   `json:"category_confidence"`
	Intent             string    `json:"intent"`
	IntentConfidence   float64   `json:"intent_confidence"`
	Sentiment          Sentiment `json:"sentiment"`

	UrgencyScore int          `json:"urgency_score"`
	UrgencyLevel UrgencyLevel `json:"urgency_level"`
	IsUrgent     bool         `json:"is_urgent"`

	TotalValue float64 `json:"total_value"`

	Responded       bool  `json:"responded"`
	ResponseSeconds int64 `json:"response_seconds,omitempty"`

	AnalyzedAt time.Time `json:"analyzed_at"`
}

// BulkResult reports the outcome of a bulk analysis pass. Failures on
// individual messages do not abort the pass.
type BulkResult struct {
	Total    int `json:"total"`
	Analyzed int `json:"analyzed"`
	Errors   int `json:"errors"`
}
