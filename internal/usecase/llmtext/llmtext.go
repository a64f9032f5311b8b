// Package llmtext cleans up raw LLM replies before they are interpreted.
package llmtext

import (
	"strings"
)

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

// StripReasoning removes <think>...</think> blocks emitted by reasoning models.
// An unterminated block swallows the rest of the text.
func StripReasoning(s string) string {
	var b strings.Builder
	for {
		start := strings.Index(s, thinkOpen)
		if start < 0 {
			// A stray close tag means the opening tag was cut off upstream.
			if end := strings.LastIndex(s, thinkClose); end >= 0 {
				s = s[end+len(thinkClose):]
			}
			b.WriteString(s)
			break
		}
		b.WriteString(s[:start])
		rest := s[start+len(thinkOpen):]
		end := strings.Index(rest, thinkClose)
		if end < 0 {
			break
		}
		s = rest[end+len(thinkClose):]
	}
	return strings.TrimSpace(b.String())
}

// ExtractJSONObject returns the first balanced {...} object in s, ignoring
// Markdown fences and surrounding prose. Braces inside string literals are skipped.
func ExtractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
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
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
