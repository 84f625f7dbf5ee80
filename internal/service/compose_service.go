package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"inboxagent/internal/model"
)

const (
	replyMaxTokens      = 400
	replyTemperature    = 0.3
	newEmailMaxTokens   = 600
	newEmailTemperature = 0.5

	maxSubjectRunes    = 78
	defaultNewSubject  = "New message"
	replySubjectPrefix = "Re: "
)

// ComposeService writes reply drafts and new emails. One call, one parse.
type ComposeService struct {
	llm    Completer
	logger *zap.Logger
}

func NewComposeService(llm Completer, logger *zap.Logger) *ComposeService {
	return &ComposeService{llm: llm, logger: logger}
}

// DraftReply composes a reply to the given email with the reply template.
func (s *ComposeService) DraftReply(ctx context.Context, body, subject, template, userContext string) (model.ComposedEmail, error) {
	prompt := applyTemplate(template, truncateRunes(fmt.Sprintf("Original subject: %s\n\nOriginal email:\n%s", subject, body), replyContentLimit))
	if c := strings.TrimSpace(userContext); c != "" {
		prompt += "\n\nContext: " + c
	}
	prompt += "\n\n" + replyFormatInstruction

	resp, err := s.llm.Complete(ctx, prompt, replyMaxTokens, replyTemperature)
	if err != nil {
		return model.ComposedEmail{}, err
	}
	return separate(resp, replySubjectPrefix+subject), nil
}

// GenerateNewEmail composes a fresh email from a free-text instruction.
func (s *ComposeService) GenerateNewEmail(ctx context.Context, instruction, userContext string) (model.ComposedEmail, error) {
	if strings.TrimSpace(instruction) == "" {
		return model.ComposedEmail{}, &ValidationError{Field: "instruction", Reason: "must not be empty"}
	}

	prompt := fmt.Sprintf(newEmailInstruction, instruction)
	if c := strings.TrimSpace(userContext); c != "" {
		prompt += "\n\nContext: " + c
	}

	resp, err := s.llm.Complete(ctx, prompt, newEmailMaxTokens, newEmailTemperature)
	if err != nil {
		return model.ComposedEmail{}, err
	}
	return separate(resp, subjectFromInstruction(instruction)), nil
}

// separate splits model output into subject and body.
//
// The first line that reads "Subject: <text>" (case-insensitive, markdown
// '#' and '*' ignored) supplies the subject and the lines after it form the
// body, minus a leading "Body:" marker. Without such a line the subject is
// fallback and the body is the whole trimmed response.
func separate(resp, fallback string) model.ComposedEmail {
	resp = strings.TrimSpace(resp)
	lines := strings.Split(resp, "\n")

	for i, line := range lines {
		subject, ok := subjectLine(line)
		if !ok {
			continue
		}
		body := stripBodyMarker(strings.TrimSpace(strings.Join(lines[i+1:], "\n")))
		if body == "" {
			body = resp
		}
		return model.ComposedEmail{Subject: subject, Body: body}
	}
	return model.ComposedEmail{Subject: fallback, Body: resp}
}

func subjectLine(line string) (string, bool) {
	clean := strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "#* "))
	const marker = "subject:"
	if len(clean) < len(marker) || !strings.EqualFold(clean[:len(marker)], marker) {
		return "", false
	}
	subject := strings.TrimSpace(strings.Trim(clean[len(marker):], "*"))
	if subject == "" {
		return "", false
	}
	return subject, true
}

func stripBodyMarker(body string) string {
	first, rest, _ := strings.Cut(body, "\n")
	clean := strings.TrimSpace(strings.Trim(strings.TrimSpace(first), "#* "))
	const marker = "body:"
	if len(clean) >= len(marker) && strings.EqualFold(clean[:len(marker)], marker) {
		inline := strings.TrimSpace(strings.Trim(clean[len(marker):], "*"))
		if inline != "" {
			rest = inline + "\n" + rest
		}
		return strings.TrimSpace(rest)
	}
	return body
}

// subjectFromInstruction 取指令的第一行非空文本作为默认主题
func subjectFromInstruction(instruction string) string {
	for _, line := range strings.Split(instruction, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return truncateRunes(line, maxSubjectRunes)
		}
	}
	return defaultNewSubject
}
