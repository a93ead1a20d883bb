package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/zapfield/conversation-intelligence/internal/model"
	"github.com/zapfield/conversation-intelligence/pkg/logger"
	"github.com/zapfield/conversation-intelligence/pkg/metrics"
)

const (
	// StreamName is the transport event stream.
	StreamName = "WA_EVENTS"

	// SubjectPrefix is the prefix of all transport subjects. Full subjects
	// are wa.<account_id>.<event>, e.g. wa.acc-1.msg.stored.
	SubjectPrefix = "wa"

	// ConsumerName is the durable consumer of this service.
	ConsumerName = "conversation-intelligence"
)

// EventStore is the store surface the consumer mutates.
type EventStore interface {
	AppendMessage(ctx context.Context, m *model.Message) error
	AttachTranscription(ctx context.Context, accountID, messageID, transcription string) error
	DeleteConversation(ctx context.Context, key model.ConversationKey) error
	MigrateContact(ctx context.Context, accountID, oldNumber, newNumber string) error
}

// Consumer applies transport events to the store.
type Consumer struct {
	client  *Client
	store   EventStore
	logger  *logger.Logger
	consume jetstream.ConsumeContext
}

// NewConsumer creates the transport event consumer.
func NewConsumer(client *Client, store EventStore, log *logger.Logger) *Consumer {
	return &Consumer{client: client, store: store, logger: log}
}

// EventSubject returns the subject an event for an account is published on.
func EventSubject(accountID string, t model.EventType) string {
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, accountID, t)
}

// Start ensures the stream and durable consumer exist and begins consuming.
func (c *Consumer) Start(ctx context.Context) error {
	js := c.client.JetStream()

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{SubjectPrefix + ".>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      7 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Description: "WhatsApp transport events",
	})
	if err != nil {
		return fmt.Errorf("failed to ensure stream: %w", err)
	}

	consumer, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:       ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		MaxDeliver:    5,
		AckWait:       30 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to ensure consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		c.handle(context.Background(), msg)
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	c.consume = cc

	c.logger.Info("transport event consumer started",
		zap.String("stream", StreamName),
		zap.String("consumer", ConsumerName))
	return nil
}

// Stop drains the consume loop.
func (c *Consumer) Stop() {
	if c.consume != nil {
		c.consume.Stop()
	}
}

func (c *Consumer) handle(ctx context.Context, msg jetstream.Msg) {
	eventType, ok := parseSubject(msg.Subject())
	if !ok {
		// not ours; drop it so it does not redeliver forever
		metrics.TransportEvents.WithLabelValues("unknown", "dropped").Inc()
		_ = msg.Ack()
		return
	}

	if err := c.apply(ctx, eventType, msg.Data()); err != nil {
		metrics.TransportEvents.WithLabelValues(string(eventType), "error").Inc()
		c.logger.Error("failed to apply transport event",
			zap.String("type", string(eventType)),
			zap.String("subject", msg.Subject()),
			zap.Error(err))
		_ = msg.Nak()
		return
	}

	metrics.TransportEvents.WithLabelValues(string(eventType), "ok").Inc()
	_ = msg.Ack()
}

func (c *Consumer) apply(ctx context.Context, t model.EventType, data []byte) error {
	switch t {
	case model.EventMessageStored:
		var ev model.MessageStoredEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("malformed %s event: %w", t, err)
		}
		return c.store.AppendMessage(ctx, &ev.Message)

	case model.EventMessageTranscribed:
		var ev model.MessageTranscribedEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("malformed %s event: %w", t, err)
		}
		return c.store.AttachTranscription(ctx, ev.AccountID, ev.MessageID, ev.Transcription)

	case model.EventChatDeleted:
		var ev model.ChatDeletedEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("malformed %s event: %w", t, err)
		}
		return c.store.DeleteConversation(ctx, model.ConversationKey{
			AccountID:     ev.AccountID,
			ContactNumber: ev.ContactNumber,
		})

	case model.EventContactRenamed:
		var ev model.ContactRenamedEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("malformed %s event: %w", t, err)
		}
		return c.store.MigrateContact(ctx, ev.AccountID, ev.OldNumber, ev.NewNumber)
	}
	return fmt.Errorf("unhandled event type %q", t)
}

// parseSubject extracts the event type from wa.<account_id>.<event>.
func parseSubject(subject string) (model.EventType, bool) {
	parts := strings.SplitN(subject, ".", 3)
	if len(parts) != 3 || parts[0] != SubjectPrefix {
		return "", false
	}
	switch t := model.EventType(parts[2]); t {
	case model.EventMessageStored, model.EventMessageTranscribed,
		model.EventChatDeleted, model.EventContactRenamed:
		return t, true
	}
	return "", false
}
