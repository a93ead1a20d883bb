package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapfield/conversation-intelligence/internal/model"
	"github.com/zapfield/conversation-intelligence/pkg/logger"
)

type recordingStore struct {
	appended    []*model.Message
	transcribed [][3]string
	deleted     []model.ConversationKey
	migrated    [][3]string
}

func (r *recordingStore) AppendMessage(_ context.Context, m *model.Message) error {
	r.appended = append(r.appended, m)
	return nil
}

func (r *recordingStore) AttachTranscription(_ context.Context, accountID, messageID, transcription string) error {
	r.transcribed = append(r.transcribed, [3]string{accountID, messageID, transcription})
	return nil
}

func (r *recordingStore) DeleteConversation(_ context.Context, key model.ConversationKey) error {
	r.deleted = append(r.deleted, key)
	return nil
}

func (r *recordingStore) MigrateContact(_ context.Context, accountID, oldNumber, newNumber string) error {
	r.migrated = append(r.migrated, [3]string{accountID, oldNumber, newNumber})
	return nil
}

func TestParseSubject(t *testing.T) {
	tests := []struct {
		subject string
		want    model.EventType
		ok      bool
	}{
		{"wa.acc-1.msg.stored", model.EventMessageStored, true},
		{"wa.acc-1.msg.transcribed", model.EventMessageTranscribed, true},
		{"wa.acc-1.chat.deleted", model.EventChatDeleted, true},
		{"wa.acc-1.contact.renamed", model.EventContactRenamed, true},
		{"wa.acc-1.msg.reacted", "", false},
		{"conv.acc-1.msg.stored", "", false},
		{"wa.acc-1", "", false},
	}
	for _, tt := range tests {
		got, ok := parseSubject(tt.subject)
		assert.Equal(t, tt.ok, ok, tt.subject)
		assert.Equal(t, tt.want, got, tt.subject)
	}
}

func TestEventSubject(t *testing.T) {
	assert.Equal(t, "wa.acc-1.chat.deleted", EventSubject("acc-1", model.EventChatDeleted))
}

func TestApplyEvents(t *testing.T) {
	store := &recordingStore{}
	c := NewConsumer(nil, store, logger.NewNop())
	ctx := context.Background()

	stored, _ := json.Marshal(model.MessageStoredEvent{Message: model.Message{
		ID: "m1", AccountID: "acc-1", ContactNumber: "5511999990001",
		Content: "oi", Direction: model.DirectionReceived, Type: model.TypeText,
		Timestamp: time.Now(),
	}})
	require.NoError(t, c.apply(ctx, model.EventMessageStored, stored))
	require.Len(t, store.appended, 1)
	assert.Equal(t, "m1", store.appended[0].ID)

	transcribed, _ := json.Marshal(model.MessageTranscribedEvent{
		AccountID: "acc-1", MessageID: "m2", Transcription: "quero um motor",
	})
	require.NoError(t, c.apply(ctx, model.EventMessageTranscribed, transcribed))
	require.Len(t, store.transcribed, 1)
	assert.Equal(t, [3]string{"acc-1", "m2", "quero um motor"}, store.transcribed[0])

	deleted, _ := json.Marshal(model.ChatDeletedEvent{
		AccountID: "acc-1", ContactNumber: "5511999990001",
	})
	require.NoError(t, c.apply(ctx, model.EventChatDeleted, deleted))
	require.Len(t, store.deleted, 1)

	renamed, _ := json.Marshal(model.ContactRenamedEvent{
		AccountID: "acc-1", OldNumber: "12345@lid", NewNumber: "5511999990001",
	})
	require.NoError(t, c.apply(ctx, model.EventContactRenamed, renamed))
	require.Len(t, store.migrated, 1)
	assert.Equal(t, [3]string{"acc-1", "12345@lid", "5511999990001"}, store.migrated[0])
}

func TestApplyMalformedPayload(t *testing.T) {
	c := NewConsumer(nil, &recordingStore{}, logger.NewNop())

	err := c.apply(context.Background(), model.EventMessageStored, []byte("{not json"))
	assert.Error(t, err)
}
