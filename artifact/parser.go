// Package artifact parses and formats the structured outputs of the
// build pipelines.
package artifact

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/or4cl3ai/arch1tech/domain"
)

// ValidationError indicates a completion reply could not be turned
// into a typed artifact.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ParseAgentSpec parses a raw completion reply into an AgentSpec.
// Missing slice fields default to empty; missing string fields stay
// empty rather than failing, since the service's structured-output
// mode does not guarantee every field is populated.
func ParseAgentSpec(raw string) (*domain.AgentSpec, error) {
	cleaned := StripCodeFence(raw)

	var spec domain.AgentSpec
	if err := json.Unmarshal([]byte(cleaned), &spec); err != nil {
		return nil, &ValidationError{Reason: "not valid structured data", Err: err}
	}

	if spec.Capabilities == nil {
		spec.Capabilities = []string{}
	}
	if spec.TechStack == nil {
		spec.TechStack = []string{}
	}
	if spec.SuggestedTools == nil {
		spec.SuggestedTools = []string{}
	}

	return &spec, nil
}

// StripCodeFence removes a surrounding markdown code fence if present.
// Models frequently wrap JSON replies in ```json fences even when
// structured output is requested.
func StripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language tag line (```json, ```yaml, ...).
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// FineTuneLine is one line of the fine-tune stage output. Invalid
// lines are flagged but never dropped.
type FineTuneLine struct {
	Text  string `json:"text"`
	Valid bool   `json:"valid"`
}

// FineTuneLines splits the fine-tune stage output into lines and marks
// each one valid if it parses as a standalone JSON record. Blank lines
// are skipped; malformed lines are passed through unchanged.
func FineTuneLines(raw string) []FineTuneLine {
	lines := []FineTuneLine{}
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lines = append(lines, FineTuneLine{
			Text:  trimmed,
			Valid: json.Valid([]byte(trimmed)),
		})
	}
	return lines
}

// ValidateFineTune is the strict-mode check: it fails if any line is
// not an independently parseable JSON record. The default pipeline
// behavior passes malformed lines through; this is opt-in for callers
// that want a hard guarantee.
func ValidateFineTune(raw string) error {
	for i, line := range FineTuneLines(raw) {
		if !line.Valid {
			return &ValidationError{Reason: fmt.Sprintf("fine-tune record on line %d is not valid JSON", i+1)}
		}
	}
	return nil
}
