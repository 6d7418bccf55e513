package llm

import "strings"

// StripFence extracts the payload from the first Markdown code fence in
// text, trimmed of surrounding whitespace. An unterminated fence yields
// everything after the opening marker (and its language-tag line, if any).
// Text with no fence is returned unchanged.
func StripFence(text string) string {
	start := strings.Index(text, "```")
	if start == -1 {
		return text
	}
	rest := text[start+3:]
	// Skip an optional language tag on the opening fence line.
	if nl := strings.IndexByte(rest, '\n'); nl != -1 {
		rest = rest[nl+1:]
	}
	end := strings.Index(rest, "```")
	if end == -1 {
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(rest[:end])
}

// BalancedJSON scans text for the first balanced top-level JSON value
// beginning with open and ending with close (e.g. '{'/'}' or '['/']'),
// tracking string and escape state so braces inside string literals don't
// confuse the depth count. Returns ("", false) if none is found.
func BalancedJSON(text string, open, close byte) (string, bool) {
	start := strings.IndexByte(text, open)
	if start == -1 {
		return "", false
	}

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
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// ExtractPatchJSON applies the original pipeline: strip an optional
// Markdown fence, then find the first balanced JSON object. Returns the
// raw object text, or false if no balanced object exists.
func ExtractPatchJSON(raw string) (string, bool) {
	return BalancedJSON(StripFence(raw), '{', '}')
}

// ExtractJSONArray is the best-effort fallback for ask_json_array-style
// discovery prompts: first try the whole trimmed content as JSON, then
// fall back to the substring between the first '[' and the last ']'.
func ExtractJSONArray(raw string) (string, bool) {
	trimmed := strings.TrimSpace(StripFence(raw))
	if strings.HasPrefix(trimmed, "[") {
		if arr, ok := BalancedJSON(trimmed, '[', ']'); ok {
			return arr, true
		}
	}
	first := strings.IndexByte(trimmed, '[')
	last := strings.LastIndexByte(trimmed, ']')
	if first == -1 || last == -1 || last < first {
		return "", false
	}
	return trimmed[first : last+1], true
}
