package model

import "time"

// Email 表示 emails 表的一行
type Email struct {
	ID        int64  `json:"id"`
	Sender    string `json:"sender"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"`
	// Category and ActionItems hold the model output verbatim.
	Category    *string   `json:"category"`
	ActionItems *string   `json:"action_items"`
	CreatedAt   time.Time `json:"created_at"`
}

// IncomingEmail is one pre-formed record submitted for processing.
type IncomingEmail struct {
	Sender    string `json:"sender"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"`
}

// Outcome 批处理中单封邮件的结果，Success 决定哪些字段有效
type Outcome struct {
	Success     bool   `json:"success"`
	EmailID     int64  `json:"email_id,omitempty"`
	Category    string `json:"category,omitempty"`
	ActionItems string `json:"action_items,omitempty"`
	Error       string `json:"error,omitempty"`
	ErrorType   string `json:"error_type,omitempty"`
}

func SuccessOutcome(id int64, category, actionItems string) Outcome {
	return Outcome{Success: true, EmailID: id, Category: category, ActionItems: actionItems}
}

func FailureOutcome(err error, errorType string) Outcome {
	return Outcome{Success: false, Error: err.Error(), ErrorType: errorType}
}
