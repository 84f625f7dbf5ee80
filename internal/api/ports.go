package api

import (
	"context"

	"inboxagent/internal/model"
	"inboxagent/internal/service"
)

type EmailRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Email, error)
	List(ctx context.Context, limit int) ([]model.Email, error)
	UpdateCategory(ctx context.Context, id int64, category string) error
	UpdateActionItems(ctx context.Context, id int64, actionItems string) error
	DeleteAll(ctx context.Context) (int64, error)
}

type DraftRepository interface {
	Create(ctx context.Context, emailID *int64, subject, body string, metadata *string) (int64, error)
	FindByID(ctx context.Context, id int64) (*model.Draft, error)
	List(ctx context.Context) ([]model.Draft, error)
	Delete(ctx context.Context, id int64) error
}

type BatchProcessor interface {
	ProcessBatch(ctx context.Context, emails []model.IncomingEmail) []model.Outcome
}

type BatchSubmitter interface {
	SubmitBatch(ctx context.Context, emails []model.IncomingEmail) (string, error)
}

type PromptManager interface {
	List(ctx context.Context) ([]model.Prompt, error)
	Get(ctx context.Context, name string) (*model.Prompt, error)
	Upsert(ctx context.Context, name, content, description string) (*model.Prompt, error)
	LoadDefaults(ctx context.Context, seeds []service.PromptSeed) (int, error)
}

type ChatAgent interface {
	Ask(ctx context.Context, query string, emailID *int64) (string, error)
}

type ComposeAgent interface {
	DraftReply(ctx context.Context, emailID int64, userContext string) (*service.DraftResult, error)
	GenerateEmail(ctx context.Context, instruction, userContext string) (*service.DraftResult, error)
	Summarize(ctx context.Context, emailID int64) (string, error)
}

// Pinger reports store health; *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}
