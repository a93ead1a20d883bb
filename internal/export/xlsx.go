// Package export renders dashboard aggregates into downloadable reports.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/zapfield/conversation-intelligence/internal/model"
)

const (
	sheetOverview   = "Overview"
	sheetCategories = "Categories"
	sheetIntents    = "Intents"
	sheetMonetary   = "Monetary"
)

// WriteDashboardXLSX renders the aggregate as a spreadsheet with one sheet
// per concern.
func WriteDashboardXLSX(w io.Writer, kpis *model.DashboardKPIs) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetOverview)
	if err := writeOverview(f, kpis); err != nil {
		return err
	}
	if err := writeCategories(f, kpis.Categories); err != nil {
		return err
	}
	if err := writeIntents(f, kpis.Intents); err != nil {
		return err
	}
	if err := writeMonetary(f, kpis.Monetary); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	return nil
}

func writeOverview(f *excelize.File, kpis *model.DashboardKPIs) error {
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Window from", kpis.Window.From.Format("2006-01-02 15:04")},
		{"Window to", kpis.Window.To.Format("2006-01-02 15:04")},
		{"Total messages", kpis.TotalMessages},
		{"Sent messages", kpis.SentMessages},
		{"Received messages", kpis.ReceivedMessages},
		{"Active conversations", kpis.ActiveConversations},
		{"Positive sentiment", kpis.Sentiments[model.SentimentPositive]},
		{"Neutral sentiment", kpis.Sentiments[model.SentimentNeutral]},
		{"Negative sentiment", kpis.Sentiments[model.SentimentNegative]},
		{"SLA target (min)", kpis.SLA.TargetMinutes},
		{"Urgent messages", kpis.SLA.UrgentTotal},
		{"Answered within target", kpis.SLA.WithinTarget},
		{"SLA hit rate", kpis.SLA.HitRate},
		{"Summaries generated", kpis.Summaries.Summaries},
		{"Avg compression rate", kpis.Summaries.AvgCompressionRate},
		{"Time saved (s)", kpis.Summaries.TimeSavedSeconds},
		{"Generated at", kpis.GeneratedAt.Format("2006-01-02 15:04:05")},
	}
	return writeRows(f, sheetOverview, rows)
}

func writeCategories(f *excelize.File, stats []model.CategoryStat) error {
	if _, err := f.NewSheet(sheetCategories); err != nil {
		return err
	}
	rows := [][]interface{}{{"Category", "Count", "Percentage", "Responded", "Response rate"}}
	for _, s := range stats {
		rows = append(rows, []interface{}{s.Category, s.Count, s.Percentage, s.Responded, s.ResponseRate})
	}
	return writeRows(f, sheetCategories, rows)
}

func writeIntents(f *excelize.File, stats []model.IntentStat) error {
	if _, err := f.NewSheet(sheetIntents); err != nil {
		return err
	}
	rows := [][]interface{}{{"Intent", "Count", "Responded", "Conversion rate"}}
	for _, s := range stats {
		rows = append(rows, []interface{}{s.Intent, s.Count, s.Responded, s.ConversionRate})
	}
	return writeRows(f, sheetIntents, rows)
}

func writeMonetary(f *excelize.File, m model.MonetaryStats) error {
	if _, err := f.NewSheet(sheetMonetary); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Conversations with value", m.Conversations},
		{"Total", m.Total},
		{"Average ticket", m.AvgTicket},
		{"Minimum ticket", m.MinTicket},
		{"Maximum ticket", m.MaxTicket},
	}
	return writeRows(f, sheetMonetary, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, sheet, err)
		}
	}
	return nil
}
