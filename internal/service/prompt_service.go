package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"inboxagent/internal/model"
)

// PromptService manages the editable templates and their defaults.
type PromptService struct {
	prompts  PromptStore
	defaults []PromptSeed
	logger   *zap.Logger
}

func NewPromptService(prompts PromptStore, defaults []PromptSeed, logger *zap.Logger) *PromptService {
	return &PromptService{prompts: prompts, defaults: defaults, logger: logger}
}

func (s *PromptService) List(ctx context.Context) ([]model.Prompt, error) {
	return s.prompts.List(ctx)
}

// Get returns repository.ErrNotFound for an unknown name.
func (s *PromptService) Get(ctx context.Context, name string) (*model.Prompt, error) {
	return s.prompts.FindByName(ctx, name)
}

// Upsert replaces content and description of an existing prompt. Last write wins.
func (s *PromptService) Upsert(ctx context.Context, name, content, description string) (*model.Prompt, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(content) == "" {
		return nil, &ValidationError{Field: "content", Reason: "must not be empty"}
	}
	return s.prompts.Upsert(ctx, name, content, description)
}

// LoadDefaults upserts seeds, or the configured defaults when seeds is empty,
// overwriting edits. Returns how many prompts were written.
func (s *PromptService) LoadDefaults(ctx context.Context, seeds []PromptSeed) (int, error) {
	if len(seeds) == 0 {
		seeds = s.defaults
	}
	for _, p := range seeds {
		if _, err := s.Upsert(ctx, p.Name, p.Content, p.Description); err != nil {
			return 0, err
		}
	}
	return len(seeds), nil
}

// SeedDefaults inserts each configured default that does not exist yet.
// Existing prompts keep their edits.
func (s *PromptService) SeedDefaults(ctx context.Context) (int, error) {
	inserted := 0
	for _, p := range s.defaults {
		ok, err := s.prompts.InsertIfAbsent(ctx, p.Name, p.Content, p.Description)
		if err != nil {
			return inserted, err
		}
		if ok {
			inserted++
			s.logger.Info("Seeded default prompt", zap.String("prompt", p.Name))
		}
	}
	return inserted, nil
}
