package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inboxagent/internal/model"
)

var testSeeds = []PromptSeed{
	{Name: PromptCategorization, Content: "Categorize {email}"},
	{Name: PromptAutoReply, Content: "Reply to {email}", Description: "reply tone"},
}

func TestPromptService_UpsertValidates(t *testing.T) {
	svc := NewPromptService(new(mockPromptStore), nil, zap.NewNop())

	_, err := svc.Upsert(context.Background(), "", "x", "")
	assert.True(t, IsValidation(err))
	_, err = svc.Upsert(context.Background(), "auto_reply", "  ", "")
	assert.True(t, IsValidation(err))
}

func TestPromptService_LoadDefaults(t *testing.T) {
	ctx := context.Background()
	store := new(mockPromptStore)
	svc := NewPromptService(store, testSeeds, zap.NewNop())

	store.On("Upsert", ctx, mock.Anything, mock.Anything, mock.Anything).Return(&model.Prompt{}, nil)

	n, err := svc.LoadDefaults(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	store.AssertCalled(t, "Upsert", ctx, PromptAutoReply, "Reply to {email}", "reply tone")

	n, err = svc.LoadDefaults(ctx, []PromptSeed{{Name: "custom", Content: "c"}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	store.AssertCalled(t, "Upsert", ctx, "custom", "c", "")
}

func TestPromptService_SeedDefaultsKeepsEdits(t *testing.T) {
	ctx := context.Background()
	store := new(mockPromptStore)
	svc := NewPromptService(store, testSeeds, zap.NewNop())

	store.On("InsertIfAbsent", ctx, PromptCategorization, mock.Anything, mock.Anything).Return(false, nil)
	store.On("InsertIfAbsent", ctx, PromptAutoReply, mock.Anything, mock.Anything).Return(true, nil)

	n, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLoadPromptSeeds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
prompts:
  - name: categorization
    description: labels
    content: |
      Categorize this email.
      {email}
`), 0o600))

	seeds, err := LoadPromptSeeds(path)
	require.NoError(t, err)
	require.Len(t, seeds, 1)
	assert.Equal(t, "categorization", seeds[0].Name)
	assert.Equal(t, "Categorize this email.\n{email}\n", seeds[0].Content)

	require.NoError(t, os.WriteFile(path, []byte("prompts:\n  - name: x\n"), 0o600))
	_, err = LoadPromptSeeds(path)
	assert.Error(t, err)

	_, err = LoadPromptSeeds(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadPromptSeeds_ShippedFile(t *testing.T) {
	seeds, err := LoadPromptSeeds(filepath.Join("..", "..", "config", "prompts.yaml"))
	require.NoError(t, err)

	names := map[string]bool{}
	for _, s := range seeds {
		names[s.Name] = true
	}
	for _, want := range []string{PromptCategorization, PromptActionItems, PromptAutoReply, PromptSummarization} {
		assert.True(t, names[want], want)
	}
}
