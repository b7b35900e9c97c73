package categorize

import (
	"strings"
)

// CleanModelJSON extracts the first balanced JSON object from free-text model
// output. Local models routinely wrap JSON in markdown fences or append
// explanatory prose after the closing brace; both are stripped. Returns ""
// when no balanced object is present.
func CleanModelJSON(raw string) string {
	text := strings.TrimSpace(raw)

	// Strip markdown code fences, with or without a language tag.
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx != -1 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	end := findObjectEnd(text[start:])
	if end < 0 {
		return ""
	}

	return text[start : start+end+1]
}

// findObjectEnd returns the index of the brace closing the object that starts
// at position 0, tracking string literals and escapes.
func findObjectEnd(text string) int {
	depth := 0
	inString := false
	escape := false

	for i, ch := range text {
		if escape {
			escape = false
			continue
		}

		if ch == '\\' {
			escape = true
			continue
		}

		if ch == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		switch ch {
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
