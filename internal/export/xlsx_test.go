package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/zapfield/conversation-intelligence/internal/model"
)

func TestWriteDashboardXLSX(t *testing.T) {
	kpis := &model.DashboardKPIs{
		Window: model.Window{
			From: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2025, 3, 31, 23, 59, 0, 0, time.UTC),
		},
		TotalMessages:       120,
		SentMessages:        50,
		ReceivedMessages:    70,
		ActiveConversations: 12,
		Categories: []model.CategoryStat{
			{Category: "consulta_preco", Count: 30, Percentage: 42.8, Responded: 25, ResponseRate: 0.83},
			{Category: "suporte", Count: 10, Percentage: 14.3, Responded: 9, ResponseRate: 0.9},
		},
		Intents: []model.IntentStat{
			{Intent: "comprar", Count: 18, Responded: 15, ConversionRate: 0.83},
		},
		Sentiments: map[model.Sentiment]int{
			model.SentimentPositive: 40,
			model.SentimentNeutral:  25,
			model.SentimentNegative: 5,
		},
		SLA:         model.SLAStats{TargetMinutes: 30, UrgentTotal: 8, WithinTarget: 6, HitRate: 0.75},
		Monetary:    model.MonetaryStats{Conversations: 4, Total: 9400, AvgTicket: 2350, MinTicket: 1200, MaxTicket: 3500},
		Summaries:   model.SummaryStats{Summaries: 6, AvgCompressionRate: 0.8, TimeSavedSeconds: 540},
		GeneratedAt: time.Date(2025, 3, 31, 23, 59, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDashboardXLSX(&buf, kpis))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t,
		[]string{"Overview", "Categories", "Intents", "Monetary"},
		f.GetSheetList())

	rows, err := f.GetRows("Categories")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "consulta_preco", rows[1][0])
	assert.Equal(t, "30", rows[1][1])

	overview, err := f.GetRows("Overview")
	require.NoError(t, err)
	assert.Equal(t, []string{"Total messages", "120"}, overview[3])
}
