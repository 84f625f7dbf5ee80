package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	mqcontracts "inboxagent/contracts/mq"
	"inboxagent/internal/model"
	"inboxagent/pkg/mq"
	"inboxagent/pkg/util"
)

const (
	handlerName = "batch"

	defaultBatchTimeout = 10 * time.Minute
)

type BatchProcessor interface {
	ProcessBatch(ctx context.Context, emails []model.IncomingEmail) []model.Outcome
}

// ResultPublisher publishes email.batch.processed; *mq.Publisher satisfies it.
type ResultPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
	IsConnected() bool
}

type BatchSubmittedHandler struct {
	batch         BatchProcessor
	results       ResultPublisher
	deduper       *util.Deduper
	retryCounter  *util.RetryCounter
	maxRedelivery int64
	batchTimeout  time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

// NewBatchSubmittedHandler builds the worker handler. results may be nil, in
// which case outcomes are only persisted.
func NewBatchSubmittedHandler(
	batch BatchProcessor,
	results ResultPublisher,
	deduper *util.Deduper,
	retryCounter *util.RetryCounter,
	maxRedelivery int64,
	logger *zap.Logger,
) *BatchSubmittedHandler {
	return &BatchSubmittedHandler{
		batch:         batch,
		results:       results,
		deduper:       deduper,
		retryCounter:  retryCounter,
		maxRedelivery: maxRedelivery,
		batchTimeout:  defaultBatchTimeout,
		logger:        logger,
		now:           time.Now,
	}
}

// WithBatchTimeout bounds how long a started batch may keep running after
// the consumer context is cancelled.
func (h *BatchSubmittedHandler) WithBatchTimeout(d time.Duration) *BatchSubmittedHandler {
	if d > 0 {
		h.batchTimeout = d
	}
	return h
}

// Handle processes one email.batch.submitted message.
func (h *BatchSubmittedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	// --------------------------
	// Step 1: decode payload
	// --------------------------
	var payload mqcontracts.BatchSubmittedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.logger.Error("Invalid BatchSubmittedPayload, sending to DLQ",
			zap.String("raw", string(raw)),
			zap.Error(err),
		)
		return mq.Permanent(fmt.Errorf("bad_payload: %w", err))
	}
	if payload.BatchID == "" {
		return mq.Permanent(errors.New("bad_payload: missing batch_id"))
	}

	log := h.logger.With(zap.String("batch_id", payload.BatchID))
	log.Info("Received batch", zap.Int("emails", len(payload.Emails)))

	// --------------------------
	// Step 2: retry count
	// --------------------------
	retryKey := util.FormatRetryKey(handlerName, payload.BatchID)
	retryCount, err := h.retryCounter.IncrementAndGet(ctx, retryKey)
	if err != nil {
		// Redis 不可用时继续处理
		log.Warn("Retry counter unavailable", zap.Error(err))
	}

	// 结果无法发布时先不处理，等连接恢复
	if h.results != nil && !h.results.IsConnected() {
		if retryCount > h.maxRedelivery {
			log.Error("Result publisher still down, giving up", zap.Int64("retry", retryCount))
			return mq.Permanent(fmt.Errorf("result publisher unavailable after %d attempts", retryCount))
		}
		log.Warn("Result publisher not connected, requeueing", zap.Int64("retry", retryCount))
		return errors.New("result publisher not connected")
	}

	// --------------------------
	// Step 3: dedup
	// --------------------------
	if !h.deduper.AcquireOnce(ctx, handlerName, payload.BatchID) {
		return nil
	}

	// 已拿到去重锁但 worker 正在退出：释放锁并重新入队
	if err := ctx.Err(); err != nil {
		h.deduper.Release(context.WithoutCancel(ctx), handlerName, payload.BatchID)
		log.Warn("Shutting down before batch started, requeueing", zap.Error(err))
		return fmt.Errorf("batch %s not started: %w", payload.BatchID, err)
	}

	// --------------------------
	// Step 4: process
	// --------------------------
	// 批次一旦开始就跑完，不受 worker 退出影响，否则剩余邮件会丢失
	batchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.batchTimeout)
	defer cancel()

	outcomes := h.batch.ProcessBatch(batchCtx, payload.Emails)
	failed := 0
	for _, o := range outcomes {
		if !o.Success {
			failed++
		}
	}
	log.Info("Batch processed",
		zap.Int("succeeded", len(outcomes)-failed),
		zap.Int("failed", failed),
	)

	// --------------------------
	// Step 5: publish outcomes
	// --------------------------
	if h.results != nil {
		event := mqcontracts.BatchProcessedPayload{
			BatchID:     payload.BatchID,
			Outcomes:    outcomes,
			ProcessedAt: h.now().UTC(),
		}
		// outcomes 已入库，发布失败不重投
		if err := h.results.Publish(batchCtx, mqcontracts.RoutingKeyBatchProcessed, event); err != nil {
			log.Error("Failed to publish batch outcomes", zap.Error(err))
		}
	}

	if err := h.retryCounter.Reset(batchCtx, retryKey); err != nil {
		log.Warn("Failed to reset retry counter", zap.Error(err))
	}
	return nil
}
