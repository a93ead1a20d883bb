package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zapfield/conversation-intelligence/internal/model"
)

// analysisPayload is the JSON blob stored per analysis row; exactly one field
// is set, matching the row's kind.
type analysisPayload struct {
	Summary *model.SummaryPayload   `json:"summary,omitempty"`
	Lead    *model.LeadPayload      `json:"lead,omitempty"`
	KPIs    *model.ConversationKPIs `json:"kpis,omitempty"`
}

// GetAnalysis loads the cached analysis for a key+kind, or nil when absent.
func (s *Store) GetAnalysis(ctx context.Context, key model.ConversationKey, kind model.AnalysisKind) (*model.AnalysisRecord, error) {
	var (
		recordID    string
		payloadJSON string
		count       int
		watermark   int64
		computedAt  int64
		providerStr string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT record_id, payload, source_message_count, source_watermark, computed_at, provider
		FROM conversation_analyses
		WHERE account_id = ? AND contact_number = ? AND kind = ?`,
		key.AccountID, key.ContactNumber, string(kind),
	).Scan(&recordID, &payloadJSON, &count, &watermark, &computedAt, &providerStr)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis: %w", err)
	}

	var payload analysisPayload
	if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode analysis payload: %w", err)
	}

	return &model.AnalysisRecord{
		ID:                 recordID,
		AccountID:          key.AccountID,
		ContactNumber:      key.ContactNumber,
		Kind:               kind,
		Summary:            payload.Summary,
		Lead:               payload.Lead,
		KPIs:               payload.KPIs,
		SourceMessageCount: count,
		SourceWatermark:    time.UnixMilli(watermark),
		ComputedAt:         time.UnixMilli(computedAt),
		Provider:           model.ProviderKind(providerStr),
	}, nil
}

// PutAnalysis upserts the analysis row for the record's key+kind. The upsert
// refuses to move the watermark backwards, so a late writer can never clobber
// a newer record.
func (s *Store) PutAnalysis(ctx context.Context, rec *model.AnalysisRecord) error {
	payloadJSON, err := json.Marshal(analysisPayload{
		Summary: rec.Summary,
		Lead:    rec.Lead,
		KPIs:    rec.KPIs,
	})
	if err != nil {
		return fmt.Errorf("failed to encode analysis payload: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversation_analyses
			(account_id, contact_number, kind, record_id, payload,
			 source_message_count, source_watermark, computed_at, provider)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (account_id, contact_number, kind) DO UPDATE SET
			record_id = excluded.record_id,
			payload = excluded.payload,
			source_message_count = excluded.source_message_count,
			source_watermark = excluded.source_watermark,
			computed_at = excluded.computed_at,
			provider = excluded.provider
		WHERE excluded.source_message_count >= conversation_analyses.source_message_count
		  AND excluded.source_watermark >= conversation_analyses.source_watermark`,
		rec.AccountID, rec.ContactNumber, string(rec.Kind), rec.ID, string(payloadJSON),
		rec.SourceMessageCount, rec.SourceWatermark.UnixMilli(),
		rec.ComputedAt.UnixMilli(), string(rec.Provider),
	)
	if err != nil {
		return fmt.Errorf("failed to store analysis: %w", err)
	}
	return nil
}

// ListAnalyses returns all cached analyses of one kind, optionally filtered
// to an account.
func (s *Store) ListAnalyses(ctx context.Context, accountID string, kind model.AnalysisKind) ([]model.AnalysisRecord, error) {
	query := `
		SELECT account_id, contact_number, record_id, payload,
			source_message_count, source_watermark, computed_at, provider
		FROM conversation_analyses WHERE kind = ?`
	args := []any{string(kind)}
	if accountID != "" {
		query += ` AND account_id = ?`
		args = append(args, accountID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var records []model.AnalysisRecord
	for rows.Next() {
		var (
			rec         model.AnalysisRecord
			payloadJSON string
			watermark   int64
			computedAt  int64
			providerStr string
		)
		if err := rows.Scan(&rec.AccountID, &rec.ContactNumber, &rec.ID, &payloadJSON,
			&rec.SourceMessageCount, &watermark, &computedAt, &providerStr); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		var payload analysisPayload
		if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
			return nil, fmt.Errorf("failed to decode analysis payload: %w", err)
		}
		rec.Kind = kind
		rec.Summary = payload.Summary
		rec.Lead = payload.Lead
		rec.KPIs = payload.KPIs
		rec.SourceWatermark = time.UnixMilli(watermark)
		rec.ComputedAt = time.UnixMilli(computedAt)
		rec.Provider = model.ProviderKind(providerStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// PutMessageAnalysis upserts one per-message analysis row.
func (s *Store) PutMessageAnalysis(ctx context.Context, a *model.MessageAnalysis) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO message_analyses
			(message_id, account_id, contact_number, direction, timestamp,
			 category, category_confidence, intent, intent_confidence, sentiment,
			 urgency_score, urgency_level, is_urgent, total_value,
			 responded, response_seconds, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (account_id, message_id) DO UPDATE SET
			category = excluded.category,
			category_confidence = excluded.category_confidence,
			intent = excluded.intent,
			intent_confidence = excluded.intent_confidence,
			sentiment = excluded.sentiment,
			urgency_score = excluded.urgency_score,
			urgency_level = excluded.urgency_level,
			is_urgent = excluded.is_urgent,
			total_value = excluded.total_value,
			responded = excluded.responded,
			response_seconds = excluded.response_seconds,
			analyzed_at = excluded.analyzed_at`,
		a.MessageID, a.AccountID, a.ContactNumber, string(a.Direction), a.Timestamp.UnixMilli(),
		a.Category, a.CategoryConfidence, a.Intent, a.IntentConfidence, string(a.Sentiment),
		a.UrgencyScore, string(a.UrgencyLevel), boolToInt(a.IsUrgent), a.TotalValue,
		boolToInt(a.Responded), a.ResponseSeconds, a.AnalyzedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to store message analysis: %w", err)
	}
	return nil
}

// ListMessageAnalysesInRange returns per-message analyses inside a window,
// optionally filtered to one account.
func (s *Store) ListMessageAnalysesInRange(ctx context.Context, accountID string, from, to time.Time) ([]model.MessageAnalysis, error) {
	query := `
		SELECT message_id, account_id, contact_number, direction, timestamp,
			category, category_confidence, intent, intent_confidence, sentiment,
			urgency_score, urgency_level, is_urgent, total_value,
			responded, response_seconds, analyzed_at
		FROM message_analyses WHERE timestamp >= ? AND timestamp <= ?`
	args := []any{from.UnixMilli(), to.UnixMilli()}
	if accountID != "" {
		query += ` AND account_id = ?`
		args = append(args, accountID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list message analyses: %w", err)
	}
	defer rows.Close()

	var analyses []model.MessageAnalysis
	for rows.Next() {
		var (
			a          model.MessageAnalysis
			direction  string
			sentiment  string
			level      string
			ts         int64
			analyzedAt int64
			isUrgent   int
			responded  int
		)
		if err := rows.Scan(&a.MessageID, &a.AccountID, &a.ContactNumber, &direction, &ts,
			&a.Category, &a.CategoryConfidence, &a.Intent, &a.IntentConfidence, &sentiment,
			&a.UrgencyScore, &level, &isUrgent, &a.TotalValue,
			&responded, &a.ResponseSeconds, &analyzedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message analysis: %w", err)
		}
		a.Direction = model.Direction(direction)
		a.Sentiment = model.Sentiment(sentiment)
		a.UrgencyLevel = model.UrgencyLevel(level)
		a.Timestamp = time.UnixMilli(ts)
		a.AnalyzedAt = time.UnixMilli(analyzedAt)
		a.IsUrgent = isUrgent != 0
		a.Responded = responded != 0
		analyses = append(analyses, a)
	}
	return analyses, rows.Err()
}

// DeleteConversation removes a conversation and everything derived from it,
// in cascade: messages, per-message analyses and cached conversation
// analyses.
func (s *Store) DeleteConversation(ctx context.Context, key model.ConversationKey) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"messages", "message_analyses", "conversation_analyses"} {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE account_id = ? AND contact_number = ?`,
			key.AccountID, key.ContactNumber,
		); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}

	return tx.Commit()
}

// MigrateContact remaps a conversation key after the transport layer unifies
// a temporary lid-form identifier with the real phone number. Cached analyses
// move to the new key without recomputation; anything already stored under
// the new key is discarded in favor of the migrating rows.
func (s *Store) MigrateContact(ctx context.Context, accountID, oldNumber, newNumber string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"conversation_analyses", "message_analyses", "messages"} {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE account_id = ? AND contact_number = ?`,
			accountID, newNumber,
		); err != nil {
			return fmt.Errorf("failed to clear target key in %s: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE `+table+` SET contact_number = ? WHERE account_id = ? AND contact_number = ?`,
			newNumber, accountID, oldNumber,
		); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", table, err)
		}
	}

	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
