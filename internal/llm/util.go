package llm

import (
	"encoding/json"
	"strings"
)

// CleanJSONBlock removes markdown code block wrappers and conversational text
// around a JSON payload. Models often wrap JSON in ```json ... ``` blocks
// even when instructed not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip potential language identifier on first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.ContainsAny(firstLine, "{[") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	if extracted, ok := ExtractJSONValue(text); ok {
		return extracted
	}
	return text
}

// ExtractJSONValue returns the first balanced span in text that is valid JSON
// and starts with '{' or '['. Bracketed prose before the payload is skipped.
func ExtractJSONValue(text string) (string, bool) {
	return extract(text, "{[")
}

// ExtractJSONObject is ExtractJSONValue restricted to objects
func ExtractJSONObject(text string) (string, bool) {
	return extract(text, "{")
}

func extract(text, openers string) (string, bool) {
	for offset := 0; offset < len(text); {
		idx := strings.IndexAny(text[offset:], openers)
		if idx < 0 {
			return "", false
		}
		start := offset + idx
		if span, ok := balancedSpan(text, start); ok && json.Valid([]byte(span)) {
			return span, true
		}
		offset = start + 1
	}
	return "", false
}

// balancedSpan returns text from start to its matching close bracket.
// String literals are skipped so braces inside them do not count.
func balancedSpan(text string, start int) (string, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
