package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zapfield/conversation-intelligence/internal/model"
)

const messageColumns = `id, account_id, contact_number, contact_name, content,
	direction, type, media_url, audio_transcription, timestamp`

// AppendMessage stores a message delivered by the transport layer. Replays of
// the same (account, id) are idempotent.
func (s *Store) AppendMessage(ctx context.Context, m *model.Message) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (`+messageColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (account_id, id) DO NOTHING`,
		m.ID, m.AccountID, m.ContactNumber, m.ContactName, m.Content,
		string(m.Direction), string(m.Type), m.MediaURL, m.AudioTranscription,
		m.Timestamp.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// AttachTranscription is the one allowed post-hoc message mutation: the
// transcription collaborator annotating an audio message.
func (s *Store) AttachTranscription(ctx context.Context, accountID, messageID, transcription string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE messages SET audio_transcription = ?
		WHERE account_id = ? AND id = ? AND type = 'audio'`,
		transcription, accountID, messageID,
	)
	if err != nil {
		return fmt.Errorf("failed to attach transcription: %w", err)
	}
	return nil
}

// ListMessages returns a conversation ordered by timestamp ascending.
func (s *Store) ListMessages(ctx context.Context, accountID, contactNumber string) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE account_id = ? AND contact_number = ?
		ORDER BY timestamp ASC`,
		accountID, contactNumber,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// CountMessages returns the current message count for a conversation. Read
// fresh on every staleness check, never from a snapshot.
func (s *Store) CountMessages(ctx context.Context, accountID, contactNumber string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages
		WHERE account_id = ? AND contact_number = ?`,
		accountID, contactNumber,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

// ListRecentUnanalyzed returns the newest messages lacking a per-message
// analysis row. With onlyNew false it returns the newest messages regardless.
func (s *Store) ListRecentUnanalyzed(ctx context.Context, limit int, onlyNew bool) ([]model.Message, error) {
	query := `
		SELECT m.id, m.account_id, m.contact_number, m.contact_name, m.content,
			m.direction, m.type, m.media_url, m.audio_transcription, m.timestamp
		FROM messages m`
	if onlyNew {
		query += `
		LEFT JOIN message_analyses a ON a.account_id = m.account_id AND a.message_id = m.id
		WHERE a.message_id IS NULL`
	}
	query += ` ORDER BY m.timestamp DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unanalyzed messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// FirstResponseAfter finds the first sent message in the conversation after
// ts, for response-time metrics. Returns nil when the message was never
// answered.
func (s *Store) FirstResponseAfter(ctx context.Context, accountID, contactNumber string, ts time.Time) (*time.Time, error) {
	var millis int64
	err := s.db.QueryRowContext(ctx, `
		SELECT timestamp FROM messages
		WHERE account_id = ? AND contact_number = ? AND direction = 'sent' AND timestamp > ?
		ORDER BY timestamp ASC LIMIT 1`,
		accountID, contactNumber, ts.UnixMilli(),
	).Scan(&millis)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find response: %w", err)
	}
	t := time.UnixMilli(millis)
	return &t, nil
}

func scanMessages(rows *sql.Rows) ([]model.Message, error) {
	var messages []model.Message
	for rows.Next() {
		var m model.Message
		var direction, mtype string
		var millis int64
		if err := rows.Scan(&m.ID, &m.AccountID, &m.ContactNumber, &m.ContactName,
			&m.Content, &direction, &mtype, &m.MediaURL, &m.AudioTranscription, &millis); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Direction = model.Direction(direction)
		m.Type = model.MessageType(mtype)
		m.Timestamp = time.UnixMilli(millis)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
