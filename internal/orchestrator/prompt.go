package orchestrator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rahul/launchpad/internal/store"
)

// buildPlanRequest renders the human message for generatePlan: the onboarding
// answers as JSON followed by at most limit templates.
func buildPlanRequest(answers Answers, templates []store.Template, limit int) (string, error) {
	data, err := json.MarshalIndent(answers, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render onboarding answers: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Onboarding answers:\n")
	sb.Write(data)

	shown := templates
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	sb.WriteString("\n\nAvailable task templates:\n")
	if len(shown) == 0 {
		sb.WriteString("(none)\n")
	}
	for _, t := range shown {
		fmt.Fprintf(&sb, "- %s [%s, %s priority]: %s", t.ID, t.Category, t.Priority, t.Title)
		if t.Description != "" {
			fmt.Fprintf(&sb, " - %s", t.Description)
		}
		sb.WriteString("\n")
	}
	if hidden := len(templates) - len(shown); hidden > 0 {
		fmt.Fprintf(&sb, "(%d more templates not shown; use get_task_templates to look them up)\n", hidden)
	}

	sb.WriteString("\nReturn the plan as a single JSON object.")
	return sb.String(), nil
}
