package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"inboxagent/internal/model"
	"inboxagent/pkg/logger"
)

// AgentService runs the interactive flows and saves their drafts.
type AgentService struct {
	emails   EmailStore
	prompts  PromptStore
	drafts   DraftStore
	compose  *ComposeService
	classify *ClassifyService
	logger   *zap.Logger
}

func NewAgentService(
	emails EmailStore,
	prompts PromptStore,
	drafts DraftStore,
	compose *ComposeService,
	classify *ClassifyService,
	logger *zap.Logger,
) *AgentService {
	return &AgentService{
		emails:   emails,
		prompts:  prompts,
		drafts:   drafts,
		compose:  compose,
		classify: classify,
		logger:   logger,
	}
}

// DraftResult is a composed email together with the id of its saved draft.
type DraftResult struct {
	DraftID int64               `json:"draft_id"`
	Email   model.ComposedEmail `json:"draft"`
}

// DraftReply composes a reply with the auto_reply prompt and saves it as a
// reply draft linked to the email.
func (s *AgentService) DraftReply(ctx context.Context, emailID int64, userContext string) (*DraftResult, error) {
	email, err := s.emails.FindByID(ctx, emailID)
	if err != nil {
		return nil, err
	}
	templates, err := loadPrompts(ctx, s.prompts, PromptAutoReply)
	if err != nil {
		return nil, err
	}

	composed, err := s.compose.DraftReply(ctx, email.Body, email.Subject, templates[PromptAutoReply], userContext)
	if err != nil {
		return nil, fmt.Errorf("draft reply: %w", err)
	}

	meta := model.ReplyMetadata(emailID).Encode()
	draftID, err := s.drafts.Create(ctx, &emailID, composed.Subject, composed.Body, &meta)
	if err != nil {
		return nil, fmt.Errorf("save reply draft: %w", err)
	}

	logger.WithTrace(ctx, s.logger).Info("Reply draft saved",
		zap.Int64("email_id", emailID),
		zap.Int64("draft_id", draftID),
	)
	return &DraftResult{DraftID: draftID, Email: composed}, nil
}

// GenerateEmail composes a new email and saves it as a draft with no email link.
func (s *AgentService) GenerateEmail(ctx context.Context, instruction, userContext string) (*DraftResult, error) {
	composed, err := s.compose.GenerateNewEmail(ctx, instruction, userContext)
	if err != nil {
		return nil, err
	}

	meta := model.NewEmailMetadata(instruction).Encode()
	draftID, err := s.drafts.Create(ctx, nil, composed.Subject, composed.Body, &meta)
	if err != nil {
		return nil, fmt.Errorf("save new draft: %w", err)
	}

	logger.WithTrace(ctx, s.logger).Info("New email draft saved", zap.Int64("draft_id", draftID))
	return &DraftResult{DraftID: draftID, Email: composed}, nil
}

// Summarize summarizes a stored email with the summarization prompt.
func (s *AgentService) Summarize(ctx context.Context, emailID int64) (string, error) {
	email, err := s.emails.FindByID(ctx, emailID)
	if err != nil {
		return "", err
	}
	templates, err := loadPrompts(ctx, s.prompts, PromptSummarization)
	if err != nil {
		return "", err
	}
	return s.classify.Summarize(ctx, email.Subject, email.Body, templates[PromptSummarization])
}
