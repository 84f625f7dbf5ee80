package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"inboxagent/internal/model"
	"inboxagent/pkg/logger"
	"inboxagent/pkg/metrics"
	"inboxagent/pkg/util"
)

// Classifier is the per-email unit the batch runs; *ClassifyService implements it.
type Classifier interface {
	ClassifyAndExtract(ctx context.Context, email model.IncomingEmail) (category, actionItems string, err error)
}

// BatchService 批量分类并持久化，单条失败不影响其余邮件
type BatchService struct {
	classifier Classifier
	emails     EmailStore
	logger     *zap.Logger
}

func NewBatchService(classifier Classifier, emails EmailStore, logger *zap.Logger) *BatchService {
	return &BatchService{classifier: classifier, emails: emails, logger: logger}
}

// ProcessBatch handles emails strictly in order and returns exactly one
// outcome per input. Failed items are not persisted. It never panics and
// never returns an error.
func (s *BatchService) ProcessBatch(ctx context.Context, emails []model.IncomingEmail) []model.Outcome {
	log := logger.WithTrace(ctx, s.logger)
	outcomes := make([]model.Outcome, 0, len(emails))

	for i, email := range emails {
		outcome := s.processOne(ctx, email)
		outcomes = append(outcomes, outcome)

		if outcome.Success {
			metrics.IncrementBatchOutcome("success", "")
			log.Info("Email processed",
				zap.Int("index", i),
				zap.Int64("email_id", outcome.EmailID),
				zap.String("category", outcome.Category),
			)
			continue
		}
		metrics.IncrementBatchOutcome("failure", outcome.ErrorType)
		log.Warn("Email failed",
			zap.Int("index", i),
			zap.String("subject", email.Subject),
			zap.String("error_type", outcome.ErrorType),
			zap.String("error", outcome.Error),
		)
	}

	log.Info("Batch finished", zap.Int("total", len(emails)))
	return outcomes
}

func (s *BatchService) processOne(ctx context.Context, email model.IncomingEmail) (outcome model.Outcome) {
	// Panic 恢复：一封邮件的异常不能中断整个批次
	defer func() {
		if r := recover(); r != nil {
			outcome = model.FailureOutcome(fmt.Errorf("internal error: %v", r), "internal_error")
		}
	}()

	if err := ctx.Err(); err != nil {
		return failure(err)
	}
	if strings.TrimSpace(email.Subject) == "" && strings.TrimSpace(email.Body) == "" {
		return failure(&ValidationError{Field: "email", Reason: "subject and body are both empty"})
	}

	category, actionItems, err := s.classifier.ClassifyAndExtract(ctx, email)
	if err != nil {
		return failure(err)
	}

	id, err := s.emails.Create(ctx, email, category, actionItems)
	if err != nil {
		return failure(err)
	}
	return model.SuccessOutcome(id, category, actionItems)
}

func failure(err error) model.Outcome {
	return model.FailureOutcome(err, util.ClassifyError(err))
}
