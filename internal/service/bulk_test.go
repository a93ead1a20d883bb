package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapfield/conversation-intelligence/internal/config"
	"github.com/zapfield/conversation-intelligence/internal/model"
	"github.com/zapfield/conversation-intelligence/pkg/logger"
)

type fakeBulkStore struct {
	msgs      []model.Message
	responses map[string]time.Time // message ID -> first response time
	failPut   map[string]bool
	stored    []*model.MessageAnalysis
}

func (f *fakeBulkStore) ListRecentUnanalyzed(_ context.Context, limit int, _ bool) ([]model.Message, error) {
	if limit < len(f.msgs) {
		return f.msgs[:limit], nil
	}
	return f.msgs, nil
}

func (f *fakeBulkStore) FirstResponseAfter(_ context.Context, _, _ string, _ time.Time) (*time.Time, error) {
	for _, m := range f.msgs {
		if ts, ok := f.responses[m.ID]; ok {
			return &ts, nil
		}
	}
	return nil, nil
}

func (f *fakeBulkStore) PutMessageAnalysis(_ context.Context, a *model.MessageAnalysis) error {
	if f.failPut[a.MessageID] {
		return errors.New("write failed")
	}
	f.stored = append(f.stored, a)
	return nil
}

func bulkConfig() *config.Config {
	return &config.Config{
		BulkBatchSize:  2,
		BulkBatchDelay: time.Millisecond,
		BulkMaxLimit:   500,
		Heuristics: config.Heuristics{
			UrgencyKeywordWeight: 2,
			UrgencyCritical:      8,
			UrgencyHigh:          6,
			UrgencyMedium:        4,
			UrgentThreshold:      7,
			SLATarget:            30 * time.Minute,
			SecondsPerWord:       0.25,
		},
	}
}

func bulkMessage(id, content string, dir model.Direction, ts time.Time) model.Message {
	return model.Message{
		ID:            id,
		AccountID:     "acc-1",
		ContactNumber: "5511999990001",
		Content:       content,
		Direction:     dir,
		Type:          model.TypeText,
		Timestamp:     ts,
	}
}

func TestAnalyzeRecent_ExtractsSignals(t *testing.T) {
	base := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	store := &fakeBulkStore{
		msgs: []model.Message{
			bulkMessage("m1", "Quero comprar o motor, me passa o preço", model.DirectionReceived, base),
		},
		responses: map[string]time.Time{"m1": base.Add(10 * time.Minute)},
	}
	svc := NewBulkService(store, bulkConfig(), logger.NewNop())

	res, err := svc.AnalyzeRecent(context.Background(), 0, true)
	require.NoError(t, err)
	assert.Equal(t, &model.BulkResult{Total: 1, Analyzed: 1}, res)

	require.Len(t, store.stored, 1)
	row := store.stored[0]
	assert.Equal(t, "consulta_preco", row.Category)
	assert.Equal(t, "comprar", row.Intent)
	assert.True(t, row.Responded)
	assert.Equal(t, int64(600), row.ResponseSeconds)
}

func TestAnalyzeRecent_PartialFailure(t *testing.T) {
	base := time.Now()
	store := &fakeBulkStore{
		msgs: []model.Message{
			bulkMessage("m1", "oi", model.DirectionReceived, base),
			bulkMessage("m2", "tudo bem?", model.DirectionReceived, base.Add(time.Minute)),
			bulkMessage("m3", "obrigado", model.DirectionReceived, base.Add(2*time.Minute)),
		},
		failPut: map[string]bool{"m2": true},
	}
	svc := NewBulkService(store, bulkConfig(), logger.NewNop())

	res, err := svc.AnalyzeRecent(context.Background(), 0, true)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Analyzed)
	assert.Equal(t, 1, res.Errors)
}

func TestAnalyzeRecent_LimitClamped(t *testing.T) {
	base := time.Now()
	store := &fakeBulkStore{}
	for i := 0; i < 5; i++ {
		store.msgs = append(store.msgs,
			bulkMessage(string(rune('a'+i)), "oi", model.DirectionSent, base))
	}
	cfg := bulkConfig()
	cfg.BulkMaxLimit = 3
	svc := NewBulkService(store, cfg, logger.NewNop())

	res, err := svc.AnalyzeRecent(context.Background(), 100, true)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
}

func TestAnalyzeRecent_SentMessagesSkipResponseTracking(t *testing.T) {
	store := &fakeBulkStore{
		msgs: []model.Message{
			bulkMessage("m1", "Claro, segue o orçamento", model.DirectionSent, time.Now()),
		},
		responses: map[string]time.Time{"m1": time.Now().Add(time.Minute)},
	}
	svc := NewBulkService(store, bulkConfig(), logger.NewNop())

	_, err := svc.AnalyzeRecent(context.Background(), 0, true)
	require.NoError(t, err)
	require.Len(t, store.stored, 1)
	assert.False(t, store.stored[0].Responded)
}

func TestAnalyzeRecent_CancelledBetweenBatches(t *testing.T) {
	base := time.Now()
	store := &fakeBulkStore{}
	for i := 0; i < 4; i++ {
		store.msgs = append(store.msgs,
			bulkMessage(string(rune('a'+i)), "oi", model.DirectionSent, base))
	}
	cfg := bulkConfig()
	cfg.BulkBatchDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	svc := NewBulkService(store, cfg, logger.NewNop())

	done := make(chan struct{})
	var res *model.BulkResult
	var runErr error
	go func() {
		defer close(done)
		res, runErr = svc.AnalyzeRecent(ctx, 0, true)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	require.ErrorIs(t, runErr, context.Canceled)
	assert.Equal(t, 2, res.Analyzed)
}
