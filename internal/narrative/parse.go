package narrative

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
)

// Parse decodes a model reply into a Narrative. Code fences and text around
// the outermost JSON object are ignored; malformed JSON is repaired once
// before giving up.
func Parse(raw string) (Narrative, error) {
	text := extractJSON(stripFences(raw))
	if text == "" {
		return Narrative{}, fmt.Errorf("narrative: no JSON object in response")
	}

	var n Narrative
	if err := json.Unmarshal([]byte(text), &n); err == nil {
		return n, validate(n)
	}

	repaired, err := jsonrepair.RepairJSON(text)
	if err != nil {
		return Narrative{}, fmt.Errorf("narrative: repairing response: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), &n); err != nil {
		return Narrative{}, fmt.Errorf("narrative: decoding repaired response: %w", err)
	}
	n.Repaired = true
	return n, validate(n)
}

func validate(n Narrative) error {
	if strings.TrimSpace(n.Headline) == "" && strings.TrimSpace(n.Narrative) == "" {
		return fmt.Errorf("narrative: response has neither headline nor narrative")
	}
	return nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(s, "}")
	if end < start {
		// Truncated reply: hand the tail to the repairer.
		return s[start:]
	}
	return s[start : end+1]
}
