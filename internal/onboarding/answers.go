package onboarding

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rahul/launchpad/internal/orchestrator"
	"gopkg.in/yaml.v3"
)

// ParseAnswers decodes onboarding answers written as YAML or JSON.
func ParseAnswers(text string) (orchestrator.Answers, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("no answers given")
	}

	var answers map[string]any
	if err := yaml.Unmarshal([]byte(text), &answers); err != nil {
		return nil, err
	}
	if len(answers) == 0 {
		return nil, errors.New("answers must be a mapping of field to value")
	}
	for k, v := range answers {
		answers[k] = normalize(v)
	}
	return orchestrator.Answers(answers), nil
}

// normalize turns nested YAML mappings into string-keyed maps so the answers
// can be rendered as JSON.
func normalize(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, e := range v {
			v[k] = normalize(e)
		}
		return v
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, e := range v {
			m[fmt.Sprint(k)] = normalize(e)
		}
		return m
	case []any:
		for i, e := range v {
			v[i] = normalize(e)
		}
		return v
	default:
		return v
	}
}

// LoadAnswers reads an answers file.
func LoadAnswers(path string) (orchestrator.Answers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	answers, err := ParseAnswers(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse answers file %s: %w", path, err)
	}
	return answers, nil
}
