package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"inboxagent/internal/model"
)

type mockCompleter struct{ mock.Mock }

func (m *mockCompleter) Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	args := m.Called(ctx, prompt, maxTokens, temperature)
	return args.String(0), args.Error(1)
}

type mockPromptStore struct{ mock.Mock }

func (m *mockPromptStore) FindByName(ctx context.Context, name string) (*model.Prompt, error) {
	args := m.Called(ctx, name)
	p, _ := args.Get(0).(*model.Prompt)
	return p, args.Error(1)
}

func (m *mockPromptStore) List(ctx context.Context) ([]model.Prompt, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).([]model.Prompt)
	return p, args.Error(1)
}

func (m *mockPromptStore) Upsert(ctx context.Context, name, content, description string) (*model.Prompt, error) {
	args := m.Called(ctx, name, content, description)
	p, _ := args.Get(0).(*model.Prompt)
	return p, args.Error(1)
}

func (m *mockPromptStore) InsertIfAbsent(ctx context.Context, name, content, description string) (bool, error) {
	args := m.Called(ctx, name, content, description)
	return args.Bool(0), args.Error(1)
}

type mockEmailStore struct{ mock.Mock }

func (m *mockEmailStore) Create(ctx context.Context, in model.IncomingEmail, category, actionItems string) (int64, error) {
	args := m.Called(ctx, in, category, actionItems)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockEmailStore) FindByID(ctx context.Context, id int64) (*model.Email, error) {
	args := m.Called(ctx, id)
	e, _ := args.Get(0).(*model.Email)
	return e, args.Error(1)
}

func (m *mockEmailStore) List(ctx context.Context, limit int) ([]model.Email, error) {
	args := m.Called(ctx, limit)
	e, _ := args.Get(0).([]model.Email)
	return e, args.Error(1)
}

type mockDraftStore struct{ mock.Mock }

func (m *mockDraftStore) Create(ctx context.Context, emailID *int64, subject, body string, metadata *string) (int64, error) {
	args := m.Called(ctx, emailID, subject, body, metadata)
	return args.Get(0).(int64), args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	return m.Called(ctx, routingKey, payload).Error(0)
}

type mockClassifier struct{ mock.Mock }

func (m *mockClassifier) ClassifyAndExtract(ctx context.Context, email model.IncomingEmail) (string, string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.String(1), args.Error(2)
}

func prompt(name, content string) *model.Prompt {
	return &model.Prompt{Name: name, Content: content}
}

func ptr[T any](v T) *T { return &v }
