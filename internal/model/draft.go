package model

import (
	"encoding/json"
	"time"
)

// Draft 草稿，创建后不再修改
type Draft struct {
	ID        int64     `json:"id"`
	EmailID   *int64    `json:"email_id"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Metadata  *string   `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	DraftTypeReply = "reply"
	DraftTypeNew   = "new"
)

// DraftMetadata is stored as JSON text in drafts.metadata.
type DraftMetadata struct {
	Type            string `json:"type"`
	OriginalEmailID *int64 `json:"original_email_id,omitempty"`
	Instruction     string `json:"instruction,omitempty"`
}

func ReplyMetadata(emailID int64) DraftMetadata {
	return DraftMetadata{Type: DraftTypeReply, OriginalEmailID: &emailID}
}

func NewEmailMetadata(instruction string) DraftMetadata {
	return DraftMetadata{Type: DraftTypeNew, Instruction: instruction}
}

// Encode returns the JSON text form.
func (m DraftMetadata) Encode() string {
	b, _ := json.Marshal(m)
	return string(b)
}

// ComposedEmail is the separated result of a reply or new-email generation.
type ComposedEmail struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
