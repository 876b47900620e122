package assistant

import (
	"encoding/json"
	"strings"
)

// ParseCandidate splits raw model output into prose and the optional
// structured action object. Models wrap the object in markdown fences or
// trailing text more often than not, so extraction is lenient: the first
// balanced JSON object containing an "action" key wins. A malformed object
// degrades to a text-only candidate rather than an error.
func ParseCandidate(raw string) *CandidateResponse {
	candidate := &CandidateResponse{Text: strings.TrimSpace(raw)}

	jsonPart, textPart, found := extractActionObject(raw)
	if !found {
		return candidate
	}

	var structured CandidateResponse
	if err := json.Unmarshal([]byte(jsonPart), &structured); err != nil {
		// Malformed structured output: treat the whole response as prose.
		return candidate
	}

	structured.Text = strings.TrimSpace(textPart)
	if structured.Text == "" && structured.Message != "" {
		structured.Text = structured.Message
	}
	return &structured
}

// extractActionObject scans for the first balanced top-level JSON object that
// mentions "action", returning the object, the remaining prose, and whether
// one was found.
func extractActionObject(raw string) (jsonPart, textPart string, found bool) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")

	for start := 0; start < len(cleaned); start++ {
		if cleaned[start] != '{' {
			continue
		}
		end := matchBrace(cleaned, start)
		if end < 0 {
			continue
		}
		obj := cleaned[start : end+1]
		if !strings.Contains(obj, "\"action\"") {
			start = end
			continue
		}
		prose := strings.TrimSpace(cleaned[:start] + " " + cleaned[end+1:])
		return obj, prose, true
	}
	return "", cleaned, false
}

// matchBrace returns the index of the brace closing the object opened at
// start, or -1. String literals are skipped so braces inside values do not
// break the balance.
func matchBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
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
