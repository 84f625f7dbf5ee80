package service

import (
	"context"

	"inboxagent/internal/model"
)

// Completer is the generative text call; *llm.Client implements it.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}

type PromptStore interface {
	FindByName(ctx context.Context, name string) (*model.Prompt, error)
	List(ctx context.Context) ([]model.Prompt, error)
	Upsert(ctx context.Context, name, content, description string) (*model.Prompt, error)
	InsertIfAbsent(ctx context.Context, name, content, description string) (bool, error)
}

type EmailStore interface {
	Create(ctx context.Context, in model.IncomingEmail, category, actionItems string) (int64, error)
	FindByID(ctx context.Context, id int64) (*model.Email, error)
	List(ctx context.Context, limit int) ([]model.Email, error)
}

type DraftStore interface {
	Create(ctx context.Context, emailID *int64, subject, body string, metadata *string) (int64, error)
}

// EventPublisher is satisfied by *mq.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}
