package gemini

import "strings"

// trimModelJSON strips Markdown fences and surrounding junk that models
// sometimes emit despite a JSON response MIME type, keeping only the
// outermost JSON value (object or array).
func trimModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Keep only from the first opening bracket to the last matching
	// closing bracket, in case text surrounds the JSON. The outermost
	// value is whichever bracket kind opens first.
	opener, closer := "[", "]"
	objStart := strings.Index(s, "{")
	arrStart := strings.Index(s, "[")
	if arrStart == -1 || (objStart != -1 && objStart < arrStart) {
		opener, closer = "{", "}"
	}
	if start := strings.Index(s, opener); start != -1 {
		if end := strings.LastIndex(s, closer); end > start {
			return strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
