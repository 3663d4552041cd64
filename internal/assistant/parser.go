package assistant

import "strings"

// cleanModelJSON strips Markdown fences and surrounding junk from a model
// response that was supposed to be raw JSON.
func cleanModelJSON(raw string) string {
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

	// If there's still text around the payload, keep only the outermost
	// JSON value, whichever delimiter opens first.
	open, shut := "[", "]"
	if obj := strings.Index(s, "{"); obj != -1 {
		if arr := strings.Index(s, "["); arr == -1 || obj < arr {
			open, shut = "{", "}"
		}
	}
	start := strings.Index(s, open)
	end := strings.LastIndex(s, shut)
	if start != -1 && end > start {
		return strings.TrimSpace(s[start : end+1])
	}
	return s
}
