package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inboxagent/internal/model"
	"inboxagent/internal/repository"
)

func TestChatAsk_Inbox(t *testing.T) {
	ctx := context.Background()
	llmMock := new(mockCompleter)
	emails := new(mockEmailStore)
	svc := NewChatService(llmMock, emails, zap.NewNop())

	emails.On("List", ctx, chatWindow).Return([]model.Email{
		{ID: 2, Sender: "boss@x.com", Subject: "Deadline", Category: ptr("Work")},
		{ID: 1, Sender: "mom@x.com", Subject: "Dinner"},
	}, nil)
	llmMock.On("Complete", ctx, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "[2] From: boss@x.com\nSubject: Deadline\nCategory: Work") &&
			strings.Contains(p, "[1] From: mom@x.com\nSubject: Dinner\nCategory: N/A") &&
			strings.HasSuffix(p, "Question: anything urgent?")
	}), chatMaxTokens, chatTemperature).Return("The deadline email.", nil)

	got, err := svc.Ask(ctx, "anything urgent?", nil)
	require.NoError(t, err)
	assert.Equal(t, "The deadline email.", got)
}

func TestChatAsk_ScopedEmail(t *testing.T) {
	ctx := context.Background()
	llmMock := new(mockCompleter)
	emails := new(mockEmailStore)
	svc := NewChatService(llmMock, emails, zap.NewNop())

	emails.On("FindByID", ctx, int64(5)).Return(&model.Email{ID: 5, Sender: "s@x.com", Subject: "Hi", Body: "Body text"}, nil)
	llmMock.On("Complete", ctx, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Subject: Hi\nFrom: s@x.com\nBody: Body text")
	}), chatMaxTokens, chatTemperature).Return("ok", nil)

	_, err := svc.Ask(ctx, "who sent this?", ptr(int64(5)))
	require.NoError(t, err)
	emails.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestChatAsk_Errors(t *testing.T) {
	ctx := context.Background()
	emails := new(mockEmailStore)
	svc := NewChatService(new(mockCompleter), emails, zap.NewNop())

	_, err := svc.Ask(ctx, " ", nil)
	assert.True(t, IsValidation(err))

	emails.On("FindByID", ctx, int64(9)).Return(nil, repository.ErrNotFound)
	_, err = svc.Ask(ctx, "q", ptr(int64(9)))
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestChatAsk_ZeroEmailIDUsesInbox(t *testing.T) {
	ctx := context.Background()
	llmMock := new(mockCompleter)
	emails := new(mockEmailStore)
	svc := NewChatService(llmMock, emails, zap.NewNop())

	emails.On("List", ctx, chatWindow).Return([]model.Email{{ID: 1, Sender: "a@x.com", Subject: "Hello"}}, nil)
	llmMock.On("Complete", ctx, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "[1] From: a@x.com\nSubject: Hello")
	}), chatMaxTokens, chatTemperature).Return("One email.", nil)

	got, err := svc.Ask(ctx, "what's new?", ptr(int64(0)))
	require.NoError(t, err)
	assert.Equal(t, "One email.", got)
	emails.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}
