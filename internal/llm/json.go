package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

// ExtractJSONObject pulls the first JSON object out of free model output that
// may wrap it in prose or markdown fences. The text is only ever decoded as
// data. When nothing decodes, the result is a *ParseFailure holding text.
func ExtractJSONObject(text string) (map[string]any, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil, &ParseFailure{Raw: text, Err: errors.New("no opening brace")}
	}

	var lastErr error
	for _, candidate := range candidates(text, start) {
		var out map[string]any
		if err := json.Unmarshal([]byte(candidate), &out); err != nil {
			lastErr = err
			continue
		}
		return out, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no closing brace")
	}
	return nil, &ParseFailure{Raw: text, Err: lastErr}
}

// candidates returns the balanced object starting at start, then the span
// up to the last closing brace when that differs.
func candidates(text string, start int) []string {
	var out []string
	if end := matchingBrace(text, start); end > 0 {
		out = append(out, text[start:end+1])
	}
	if last := strings.LastIndexByte(text, '}'); last > start {
		span := text[start : last+1]
		if len(out) == 0 || out[0] != span {
			out = append(out, span)
		}
	}
	return out
}

// matchingBrace returns the index of the brace closing the one at start,
// skipping braces inside JSON strings, or -1.
func matchingBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
