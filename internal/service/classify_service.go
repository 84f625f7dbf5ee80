package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"inboxagent/internal/model"
	"inboxagent/internal/repository"
	"inboxagent/pkg/logger"
)

const (
	classifyMaxTokens    = 50
	classifyTemperature  = 0.1
	actionMaxTokens      = 500
	actionTemperature    = 0.1
	summarizeMaxTokens   = 300
	summarizeTemperature = 0.2
)

// ClassifyService 根据存储的提示词对邮件分类并提取待办，不做持久化
type ClassifyService struct {
	llm     Completer
	prompts PromptStore
	logger  *zap.Logger
}

func NewClassifyService(llm Completer, prompts PromptStore, logger *zap.Logger) *ClassifyService {
	return &ClassifyService{llm: llm, prompts: prompts, logger: logger}
}

// Classify returns the trimmed model answer as the category label. The label
// is not checked against any fixed set.
func (s *ClassifyService) Classify(ctx context.Context, subject, body, template string) (string, error) {
	prompt := applyTemplate(template, emailText(subject, body, classifyContentLimit))
	return s.llm.Complete(ctx, prompt, classifyMaxTokens, classifyTemperature)
}

// ExtractActionItems returns the model's raw answer. It is stored as is.
func (s *ClassifyService) ExtractActionItems(ctx context.Context, subject, body, template string) (string, error) {
	prompt := applyTemplate(template, emailText(subject, body, classifyContentLimit))
	return s.llm.Complete(ctx, prompt, actionMaxTokens, actionTemperature)
}

// Summarize is a single call with the summarization template.
func (s *ClassifyService) Summarize(ctx context.Context, subject, body, template string) (string, error) {
	prompt := applyTemplate(template, emailText(subject, body, classifyContentLimit))
	return s.llm.Complete(ctx, prompt, summarizeMaxTokens, summarizeTemperature)
}

// ClassifyAndExtract loads both prompts fresh and runs both calls. When either
// prompt is missing it returns one *MissingConfigurationError and makes no call.
func (s *ClassifyService) ClassifyAndExtract(ctx context.Context, email model.IncomingEmail) (category, actionItems string, err error) {
	templates, err := loadPrompts(ctx, s.prompts, PromptCategorization, PromptActionItems)
	if err != nil {
		return "", "", err
	}

	category, err = s.Classify(ctx, email.Subject, email.Body, templates[PromptCategorization])
	if err != nil {
		return "", "", fmt.Errorf("categorize: %w", err)
	}
	actionItems, err = s.ExtractActionItems(ctx, email.Subject, email.Body, templates[PromptActionItems])
	if err != nil {
		return "", "", fmt.Errorf("extract action items: %w", err)
	}

	logger.WithTrace(ctx, s.logger).Debug("Email classified",
		zap.String("subject", email.Subject),
		zap.String("category", category),
	)
	return category, actionItems, nil
}

// loadPrompts reads every named prompt and reports all missing ones together.
func loadPrompts(ctx context.Context, store PromptStore, names ...string) (map[string]string, error) {
	out := make(map[string]string, len(names))
	var missing []string
	for _, name := range names {
		p, err := store.FindByName(ctx, name)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			missing = append(missing, name)
		case err != nil:
			return nil, fmt.Errorf("load prompt %s: %w", name, err)
		default:
			out[name] = p.Content
		}
	}
	if len(missing) > 0 {
		return nil, &MissingConfigurationError{Prompts: missing}
	}
	return out, nil
}
