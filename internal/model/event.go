package model

import "time"

// EventType names the transport events the pipeline consumes.
type EventType string

const (
	// EventMessageStored fires after the transport layer persists a message.
	EventMessageStored EventType = "msg.stored"
	// EventMessageTranscribed fires when the transcription collaborator
	// attaches a transcript to an audio message.
	EventMessageTranscribed EventType = "msg.transcribed"
	// EventChatDeleted fires when the user deletes a conversation.
	EventChatDeleted EventType = "chat.deleted"
	// EventContactRenamed fires when a temporary lid-form identifier is
	// unified with the contact's real phone number.
	EventContactRenamed EventType = "contact.renamed"
)

// MessageStoredEvent carries a newly persisted message.
type MessageStoredEvent struct {
	Message Message `json:"message"`
}

// MessageTranscribedEvent attaches a transcript to an existing audio message.
type MessageTranscribedEvent struct {
	AccountID     string `json:"account_id"`
	MessageID     string `json:"message_id"`
	Transcription string `json:"transcription"`
}

// ChatDeletedEvent signals a user-initiated conversation delete. Cached
// analyses for the key are dropped in cascade.
type ChatDeletedEvent struct {
	AccountID     string    `json:"account_id"`
	ContactNumber string    `json:"contact_number"`
	DeletedAt     time.Time `json:"deleted_at"`
}

// ContactRenamedEvent remaps a conversation key. Cached analyses migrate to
// the new key without recomputation.
type ContactRenamedEvent struct {
	AccountID string `json:"account_id"`
	OldNumber string `json:"old_number"`
	NewNumber string `json:"new_number"`
}
