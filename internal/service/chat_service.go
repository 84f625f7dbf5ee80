package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"inboxagent/pkg/logger"
)

const (
	chatMaxTokens   = 600
	chatTemperature = 0.5

	// chatWindow caps how many emails describe the inbox in an unscoped chat.
	chatWindow = 10
)

// ChatService answers free-text questions about one email or the inbox.
type ChatService struct {
	llm    Completer
	emails EmailStore
	logger *zap.Logger
}

func NewChatService(llm Completer, emails EmailStore, logger *zap.Logger) *ChatService {
	return &ChatService{llm: llm, emails: emails, logger: logger}
}

// Ask scopes the context to emailID when given (repository.ErrNotFound if
// absent), otherwise to the newest emails. A non-positive id counts as none.
func (s *ChatService) Ask(ctx context.Context, query string, emailID *int64) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", &ValidationError{Field: "query", Reason: "must not be empty"}
	}
	if emailID != nil && *emailID <= 0 {
		emailID = nil
	}

	var inbox string
	if emailID != nil {
		email, err := s.emails.FindByID(ctx, *emailID)
		if err != nil {
			return "", err
		}
		inbox = fmt.Sprintf("Subject: %s\nFrom: %s\nBody: %s", email.Subject, email.Sender, email.Body)
	} else {
		emails, err := s.emails.List(ctx, chatWindow)
		if err != nil {
			return "", err
		}
		entries := make([]string, 0, len(emails))
		for _, e := range emails {
			category := "N/A"
			if e.Category != nil && *e.Category != "" {
				category = *e.Category
			}
			entries = append(entries, fmt.Sprintf("[%d] From: %s\nSubject: %s\nCategory: %s", e.ID, e.Sender, e.Subject, category))
		}
		inbox = strings.Join(entries, "\n\n")
		if inbox == "" {
			inbox = "(the inbox is empty)"
		}
	}

	logger.WithTrace(ctx, s.logger).Debug("Chat query",
		zap.Bool("scoped", emailID != nil),
	)
	return s.llm.Complete(ctx, fmt.Sprintf(chatInstruction, inbox, query), chatMaxTokens, chatTemperature)
}
