package service

import (
	"context"
	"sort"
	"time"

	"github.com/zapfield/conversation-intelligence/internal/config"
	"github.com/zapfield/conversation-intelligence/internal/model"
)

// KPIStore is the store surface of the aggregate reducer.
type KPIStore interface {
	ListMessageAnalysesInRange(ctx context.Context, accountID string, from, to time.Time) ([]model.MessageAnalysis, error)
	ListAnalyses(ctx context.Context, accountID string, kind model.AnalysisKind) ([]model.AnalysisRecord, error)
}

// KPIService folds per-message analyses and cached summaries into the
// dashboard aggregate.
type KPIService struct {
	store      KPIStore
	heuristics config.Heuristics
	now        func() time.Time
}

// NewKPIService creates the dashboard reducer.
func NewKPIService(store KPIStore, h config.Heuristics) *KPIService {
	return &KPIService{store: store, heuristics: h, now: time.Now}
}

// Dashboard loads the window's rows and folds them. A zero slaTarget falls
// back to the configured default.
func (s *KPIService) Dashboard(ctx context.Context, window model.Window, slaTarget time.Duration) (*model.DashboardKPIs, error) {
	rows, err := s.store.ListMessageAnalysesInRange(ctx, window.AccountID, window.From, window.To)
	if err != nil {
		return nil, err
	}
	summaries, err := s.store.ListAnalyses(ctx, window.AccountID, model.KindSummary)
	if err != nil {
		return nil, err
	}

	if slaTarget <= 0 {
		slaTarget = s.heuristics.SLATarget
	}

	kpis := Reduce(window, rows, summaries, slaTarget, s.heuristics.SecondsPerWord)
	kpis.GeneratedAt = s.now()
	return kpis, nil
}

// Reduce is the pure fold from per-message rows and cached summaries to the
// dashboard aggregate. Categories, intents and sentiment are tallied over
// received messages only; sent messages are the responses being measured,
// not the demand being classified.
func Reduce(window model.Window, rows []model.MessageAnalysis, summaries []model.AnalysisRecord, slaTarget time.Duration, secondsPerWord float64) *model.DashboardKPIs {
	kpis := &model.DashboardKPIs{
		Window:     window,
		Sentiments: make(map[model.Sentiment]int),
	}

	conversations := make(map[convKey]struct{})
	tickets := make(map[convKey]float64)

	type tally struct{ count, responded int }
	categories := make(map[string]*tally)
	intents := make(map[string]*tally)

	var receivedTotal int
	targetSeconds := int64(slaTarget.Seconds())

	for _, row := range rows {
		kpis.TotalMessages++
		ck := convKey{row.AccountID, row.ContactNumber}
		conversations[ck] = struct{}{}
		if row.TotalValue > tickets[ck] {
			tickets[ck] = row.TotalValue
		}

		if row.Direction == model.DirectionSent {
			kpis.SentMessages++
			continue
		}
		kpis.ReceivedMessages++
		receivedTotal++

		c := categories[row.Category]
		if c == nil {
			c = &tally{}
			categories[row.Category] = c
		}
		c.count++
		in := intents[row.Intent]
		if in == nil {
			in = &tally{}
			intents[row.Intent] = in
		}
		in.count++
		if row.Responded {
			c.responded++
			in.responded++
		}

		kpis.Sentiments[row.Sentiment]++

		if row.IsUrgent {
			kpis.SLA.UrgentTotal++
			if row.Responded && row.ResponseSeconds <= targetSeconds {
				kpis.SLA.WithinTarget++
			}
		}
	}

	kpis.ActiveConversations = len(conversations)

	for label, t := range categories {
		stat := model.CategoryStat{Category: label, Count: t.count, Responded: t.responded}
		if receivedTotal > 0 {
			stat.Percentage = float64(t.count) / float64(receivedTotal) * 100
		}
		if t.count > 0 {
			stat.ResponseRate = float64(t.responded) / float64(t.count)
		}
		kpis.Categories = append(kpis.Categories, stat)
	}
	sort.Slice(kpis.Categories, func(i, j int) bool {
		if kpis.Categories[i].Count != kpis.Categories[j].Count {
			return kpis.Categories[i].Count > kpis.Categories[j].Count
		}
		return kpis.Categories[i].Category < kpis.Categories[j].Category
	})

	for label, t := range intents {
		stat := model.IntentStat{Intent: label, Count: t.count, Responded: t.responded}
		if t.count > 0 {
			stat.ConversionRate = float64(t.responded) / float64(t.count)
		}
		kpis.Intents = append(kpis.Intents, stat)
	}
	sort.Slice(kpis.Intents, func(i, j int) bool {
		if kpis.Intents[i].Count != kpis.Intents[j].Count {
			return kpis.Intents[i].Count > kpis.Intents[j].Count
		}
		return kpis.Intents[i].Intent < kpis.Intents[j].Intent
	})

	kpis.SLA.TargetMinutes = int(slaTarget.Minutes())
	if kpis.SLA.UrgentTotal > 0 {
		kpis.SLA.HitRate = float64(kpis.SLA.WithinTarget) / float64(kpis.SLA.UrgentTotal)
	}

	kpis.Monetary = reduceMonetary(tickets)
	kpis.Summaries = reduceSummaries(window, summaries, secondsPerWord)

	return kpis
}

type convKey struct{ account, contact string }

// reduceMonetary folds per-conversation ticket values. The ticket of a
// conversation is the largest amount quoted in it, so repeating the same
// price across messages does not inflate the total.
func reduceMonetary(tickets map[convKey]float64) model.MonetaryStats {
	var m model.MonetaryStats
	for _, v := range tickets {
		if v <= 0 {
			continue
		}
		m.Conversations++
		m.Total += v
		if m.MinTicket == 0 || v < m.MinTicket {
			m.MinTicket = v
		}
		if v > m.MaxTicket {
			m.MaxTicket = v
		}
	}
	if m.Conversations > 0 {
		m.AvgTicket = m.Total / float64(m.Conversations)
	}
	return m
}

func reduceSummaries(window model.Window, records []model.AnalysisRecord, secondsPerWord float64) model.SummaryStats {
	var s model.SummaryStats
	var compression float64
	for _, rec := range records {
		if rec.Summary == nil {
			continue
		}
		if !window.From.IsZero() && rec.ComputedAt.Before(window.From) {
			continue
		}
		if !window.To.IsZero() && rec.ComputedAt.After(window.To) {
			continue
		}
		s.Summaries++
		compression += rec.Summary.CompressionRate
		if saved := rec.Summary.OriginalWords - rec.Summary.SummaryWords; saved > 0 {
			s.TimeSavedSeconds += float64(saved) * secondsPerWord
		}
	}
	if s.Summaries > 0 {
		s.AvgCompressionRate = compression / float64(s.Summaries)
	}
	return s
}
