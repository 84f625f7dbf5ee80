package service

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Stored prompt names.
const (
	PromptCategorization = "categorization"
	PromptActionItems    = "action_items"
	PromptAutoReply      = "auto_reply"
	PromptSummarization  = "summarization"
)

// emailPlaceholder is replaced by the email text; templates without it get
// the text appended.
const emailPlaceholder = "{email}"

// Rune budgets for email text sent to the model.
const (
	classifyContentLimit = 2000
	replyContentLimit    = 1500
)

const chatInstruction = `You are an email assistant helping the user manage their inbox.
Answer the user's question using only the emails below. Be concise.

%s

Question: %s`

const newEmailInstruction = `Write a professional email following the instruction below.
Start with a line "Subject: <subject>" followed by the email body.

Instruction: %s`

const replyFormatInstruction = `Start the reply with a line "Subject: <subject>" followed by the reply body.`

// PromptSeed is one default prompt from the seed file.
type PromptSeed struct {
	Name        string `yaml:"name" json:"name" binding:"required"`
	Content     string `yaml:"content" json:"content" binding:"required"`
	Description string `yaml:"description" json:"description"`
}

type promptSeedFile struct {
	Prompts []PromptSeed `yaml:"prompts"`
}

// LoadPromptSeeds reads the default prompt definitions from a yaml file.
func LoadPromptSeeds(path string) ([]PromptSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt seeds: %w", err)
	}
	var f promptSeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse prompt seeds %s: %w", path, err)
	}
	for i, p := range f.Prompts {
		if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Content) == "" {
			return nil, fmt.Errorf("prompt seed %d in %s needs name and content", i, path)
		}
	}
	return f.Prompts, nil
}

// applyTemplate substitutes content into template. Plain string composition.
func applyTemplate(template, content string) string {
	if strings.Contains(template, emailPlaceholder) {
		return strings.ReplaceAll(template, emailPlaceholder, content)
	}
	return strings.TrimRight(template, "\n") + "\n\n" + content
}

// emailText formats subject and body, cut to limit runes.
func emailText(subject, body string, limit int) string {
	return truncateRunes(fmt.Sprintf("Subject: %s\n\n%s", subject, body), limit)
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
