package model

import "time"

// Prompt is a named, user-editable template. Name is unique.
type Prompt struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Content     string    `json:"content"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
}
