// Package model defines data structures for the conversation intelligence pipeline.
package model

import (
	"fmt"
	"time"
)

// Direction indicates whether a message was sent by the business or received
// from the contact.
type Direction string

const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
)

// MessageType is the media type of a WhatsApp message.
type MessageType string

const (
	TypeText     MessageType = "text"
	TypeImage    MessageType = "image"
	TypeAudio    MessageType = "audio"
	TypeVideo    MessageType = "video"
	TypeDocument MessageType = "document"
)

// Message is a raw WhatsApp message as delivered by the transport layer.
// Messages are immutable once stored, except AudioTranscription which the
// transcription collaborator may attach after the fact.
type Message struct {
	ID            string      `json:"id"`
	AccountID     string      `json:"account_id"`
	ContactNumber string      `json:"contact_number"`
	ContactName   string      `json:"contact_name,omitempty"`
	Content       string      `json:"content"`
	Direction     Direction   `json:"direction"`
	Type          MessageType `json:"type"`
	Timestamp     time.Time   `json:"timestamp"`

	MediaURL           string `json:"media_url,omitempty"`
	AudioTranscription string `json:"audio_transcription,omitempty"`
}

// ConversationKey uniquely identifies a conversation thread.
type ConversationKey struct {
	AccountID     string `json:"account_id"`
	ContactNumber string `json:"contact_number"`
}

func (k ConversationKey) String() string {
	return fmt.Sprintf("%s/%s", k.AccountID, k.ContactNumber)
}

// Key returns the conversation key for a message.
func (m *Message) Key() ConversationKey {
	return ConversationKey{AccountID: m.AccountID, ContactNumber: m.ContactNumber}
}
