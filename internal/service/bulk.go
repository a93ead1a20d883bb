package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/zapfield/conversation-intelligence/internal/config"
	"github.com/zapfield/conversation-intelligence/internal/extractor"
	"github.com/zapfield/conversation-intelligence/internal/model"
	"github.com/zapfield/conversation-intelligence/pkg/logger"
	"github.com/zapfield/conversation-intelligence/pkg/metrics"
)

// BulkStore is the store surface of the bulk pass.
type BulkStore interface {
	ListRecentUnanalyzed(ctx context.Context, limit int, onlyNew bool) ([]model.Message, error)
	FirstResponseAfter(ctx context.Context, accountID, contactNumber string, ts time.Time) (*time.Time, error)
	PutMessageAnalysis(ctx context.Context, a *model.MessageAnalysis) error
}

// BulkService runs the per-message extractor pass in throttled batches. The
// pass is purely local: no provider calls, only the signal extractors.
type BulkService struct {
	store      BulkStore
	weights    extractor.Weights
	batchSize  int
	batchDelay time.Duration
	maxLimit   int
	logger     *logger.Logger
	now        func() time.Time
}

// NewBulkService creates the bulk analyzer from loaded configuration.
func NewBulkService(store BulkStore, cfg *config.Config, log *logger.Logger) *BulkService {
	return &BulkService{
		store:      store,
		weights:    extractor.WeightsFrom(cfg.Heuristics),
		batchSize:  cfg.BulkBatchSize,
		batchDelay: cfg.BulkBatchDelay,
		maxLimit:   cfg.BulkMaxLimit,
		logger:     log,
		now:        time.Now,
	}
}

// AnalyzeRecent analyzes up to limit recent messages, skipping already
// analyzed ones when onlyNew is set. Failures on individual messages are
// counted, not fatal; cancellation stops between batches.
func (s *BulkService) AnalyzeRecent(ctx context.Context, limit int, onlyNew bool) (*model.BulkResult, error) {
	if limit <= 0 || limit > s.maxLimit {
		limit = s.maxLimit
	}

	msgs, err := s.store.ListRecentUnanalyzed(ctx, limit, onlyNew)
	if err != nil {
		return nil, err
	}

	result := &model.BulkResult{Total: len(msgs)}
	for i := 0; i < len(msgs); i += s.batchSize {
		if i > 0 {
			select {
			case <-time.After(s.batchDelay):
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}

		end := i + s.batchSize
		if end > len(msgs) {
			end = len(msgs)
		}
		for _, m := range msgs[i:end] {
			if err := s.analyzeOne(ctx, m); err != nil {
				result.Errors++
				metrics.MessagesAnalyzed.WithLabelValues("error").Inc()
				s.logger.Warn("message analysis failed",
					zap.String("message_id", m.ID),
					zap.Error(err))
				continue
			}
			result.Analyzed++
			metrics.MessagesAnalyzed.WithLabelValues("ok").Inc()
		}
	}

	return result, nil
}

func (s *BulkService) analyzeOne(ctx context.Context, m model.Message) error {
	text := extractor.MessageText(m)

	category := extractor.ClassifyCategory(text)
	intent := extractor.ClassifyIntent(text)
	urgency := extractor.DetectUrgency(text, s.weights)
	patterns := extractor.ExtractPatterns(text)
	sentiment := extractor.HybridSentiment(text, extractor.ScoreSentiment(text))

	analysis := &model.MessageAnalysis{
		MessageID:          m.ID,
		AccountID:          m.AccountID,
		ContactNumber:      m.ContactNumber,
		Direction:          m.Direction,
		Timestamp:          m.Timestamp,
		Category:           category.Label,
		CategoryConfidence: category.Confidence,
		Intent:             intent.Label,
		IntentConfidence:   intent.Confidence,
		Sentiment:          sentiment,
		UrgencyScore:       urgency.Score,
		UrgencyLevel:       urgency.Level,
		IsUrgent:           urgency.IsUrgent,
		TotalValue:         patterns.Total,
		AnalyzedAt:         s.now(),
	}

	// response tracking only makes sense for inbound messages
	if m.Direction == model.DirectionReceived {
		replied, err := s.store.FirstResponseAfter(ctx, m.AccountID, m.ContactNumber, m.Timestamp)
		if err != nil {
			return err
		}
		if replied != nil {
			analysis.Responded = true
			analysis.ResponseSeconds = int64(replied.Sub(m.Timestamp).Seconds())
		}
	}

	return s.store.PutMessageAnalysis(ctx, analysis)
}
