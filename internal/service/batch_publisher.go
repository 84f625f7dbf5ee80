package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	mqcontracts "inboxagent/contracts/mq"
	"inboxagent/internal/model"
	"inboxagent/pkg/logger"
	"inboxagent/pkg/trace"
)

// BatchSubmitter hands a batch to the worker over the message bus.
type BatchSubmitter struct {
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewBatchSubmitter accepts a nil publisher; SubmitBatch then reports ErrAsyncUnavailable.
func NewBatchSubmitter(publisher EventPublisher, logger *zap.Logger) *BatchSubmitter {
	return &BatchSubmitter{publisher: publisher, logger: logger, now: time.Now}
}

// SubmitBatch publishes email.batch.submitted and returns the new batch id.
func (s *BatchSubmitter) SubmitBatch(ctx context.Context, emails []model.IncomingEmail) (string, error) {
	if s.publisher == nil {
		return "", ErrAsyncUnavailable
	}
	if len(emails) == 0 {
		return "", &ValidationError{Field: "emails", Reason: "must not be empty"}
	}

	ctx, _ = trace.Ensure(ctx)
	batchID := uuid.NewString()
	payload := mqcontracts.BatchSubmittedPayload{
		BatchID:     batchID,
		Emails:      emails,
		SubmittedAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, mqcontracts.RoutingKeyBatchSubmitted, payload); err != nil {
		return "", fmt.Errorf("publish batch: %w", err)
	}

	logger.WithTrace(ctx, s.logger).Info("Batch submitted",
		zap.String("batch_id", batchID),
		zap.Int("size", len(emails)),
	)
	return batchID, nil
}
