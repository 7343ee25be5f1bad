package generate

import (
	"encoding/json"
	"fmt"
	"strings"
)

var quoteNormalizer = strings.NewReplacer(
	"“", `"`, // “
	"”", `"`, // ”
	"‘", "'", // ‘
	"’", "'", // ’
)

// CleanPayload strips markdown fences and any wrapper text around the
// JSON object, and normalizes curly quotes that break parsing.
func CleanPayload(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	s = quoteNormalizer.Replace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return strings.TrimSpace(s)
}

// ParseBatch decodes one weekly batch: a JSON object keyed by category,
// each value a list of phrases.
func ParseBatch(raw string) (map[string][]string, error) {
	cleaned := CleanPayload(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("empty batch payload")
	}
	var batch map[string][]string
	if err := json.Unmarshal([]byte(cleaned), &batch); err != nil {
		return nil, fmt.Errorf("parse batch: %w", err)
	}
	if len(batch) == 0 {
		return nil, fmt.Errorf("batch has no categories")
	}
	return batch, nil
}
