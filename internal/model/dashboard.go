package model

import "time"

// Window bounds an aggregate query. AccountID filters to one connected
// account when non-empty.
type Window struct {
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`
	AccountID string    `json:"account_id,omitempty"`
}

// CategoryStat is the per-category slice of the dashboard distribution.
type CategoryStat struct {
	Category     string  `json:"category"`
	Count        int     `json:"count"`
	Percentage   float64 `json:"percentage"`
	Responded    int     `json:"responded"`
	ResponseRate float64 `json:"response_rate"`
}

// IntentStat tracks intent frequency and conversion (responded vs not).
type IntentStat struct {
	Intent         string  `json:"intent"`
	Count          int     `json:"count"`
	Responded      int     `json:"responded"`
	ConversionRate float64 `json:"conversion_rate"`
}

// SLAStats measures response time against the target for urgent messages.
type SLAStats struct {
	TargetMinutes int     `json:"target_minutes"`
	UrgentTotal   int     `json:"urgent_total"`
	WithinTarget  int     `json:"within_target"`
	HitRate       float64 `json:"hit_rate"`
}

// MonetaryStats aggregates extracted ticket values.
type MonetaryStats struct {
	Conversations int     `json:"conversations"`
	Total         float64 `json:"total"`
	AvgTicket     float64 `json:"avg_ticket"`
	MinTicket     float64 `json:"min_ticket"`
	MaxTicket     float64 `json:"max_ticket"`
}

// SummaryStats aggregates compression metrics across cached summaries.
type SummaryStats struct {
	Summaries          int     `json:"summaries"`
	AvgCompressionRate float64 `json:"avg_compression_rate"`
	TimeSavedSeconds   float64 `json:"time_saved_seconds"`
}

// DashboardKPIs is the fleet-wide aggregate produced by the KPI reducer.
type DashboardKPIs struct {
	Window Window `json:"window"`

	TotalMessages       int `json:"total_messages"`
	SentMessages        int `json:"sent_messages"`
	ReceivedMessages    int `json:"received_messages"`
	ActiveConversations int `json:"active_conversations"`

	Categories []CategoryStat    `json:"categories"`
	Intents    []IntentStat      `json:"intents"`
	Sentiments map[Sentiment]int `json:"sentiments"`
	SLA        SLAStats          `json:"sla"`
	Monetary   MonetaryStats     `json:"monetary"`
	Summaries  SummaryStats      `json:"summaries"`

	GeneratedAt time.Time `json:"generated_at"`
}
