package mq

import (
	"time"

	"inboxagent/internal/model"
)

// Routing keys on the inbox.events exchange.
const (
	RoutingKeyBatchSubmitted = "email.batch.submitted"
	RoutingKeyBatchProcessed = "email.batch.processed"
)

// BatchSubmittedPayload 异步批处理请求
type BatchSubmittedPayload struct {
	BatchID     string                `json:"batch_id"`
	Emails      []model.IncomingEmail `json:"emails"`
	SubmittedAt time.Time             `json:"submitted_at"`
}

// BatchProcessedPayload is published once per batch after every item has an outcome.
type BatchProcessedPayload struct {
	BatchID     string          `json:"batch_id"`
	Outcomes    []model.Outcome `json:"outcomes"`
	ProcessedAt time.Time       `json:"processed_at"`
}
