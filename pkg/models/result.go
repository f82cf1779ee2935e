package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// GenerationResult is the structured output of a code-generation request.
// Immutable once parsed; the caller decides whether to persist it as a new
// prototype revision.
type GenerationResult struct {
	Markup             string `json:"html"`
	Styles             string `json:"css,omitempty"`
	Script             string `json:"js,omitempty"`
	Explanation        string `json:"explanation"`
	ClarifyingQuestion string `json:"clarifying_question,omitempty"`
}

// NeedsClarification reports whether the model asked for more input instead
// of producing an artifact.
func (r GenerationResult) NeedsClarification() bool {
	return r.ClarifyingQuestion != "" && r.Markup == ""
}

// ParseGenerationResult decodes and validates the model's JSON output.
// A missing explanation is always an error. Empty markup is only valid when
// a clarifying question is present.
func ParseGenerationResult(raw string) (GenerationResult, error) {
	var res GenerationResult
	if err := json.Unmarshal([]byte(extractJSON(raw)), &res); err != nil {
		return GenerationResult{}, fmt.Errorf("decode generation result: %w", err)
	}
	if strings.TrimSpace(res.Explanation) == "" {
		return GenerationResult{}, fmt.Errorf("generation result missing explanation")
	}
	if res.Markup == "" && res.ClarifyingQuestion == "" {
		return GenerationResult{}, fmt.Errorf("generation result has neither markup nor clarifying question")
	}
	return res, nil
}

// extractJSON strips a markdown code fence if the model wrapped its JSON in
// one. Returns the input unchanged otherwise.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
