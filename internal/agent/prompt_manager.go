package agent

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultPlanPrompt is used when no prompts directory is configured.
const DefaultPlanPrompt = `You are a business formation advisor. Using the founder's onboarding answers and the
task templates provided, produce a formation plan.

Respond with a single JSON object (you may wrap it in a json code fence) with these fields:
- "executiveSummary": object with "overview", "keyStrengths" (array), "primaryRisks" (array)
- "recommendedEntityType": e.g. "LLC", "S-Corp", "Sole Proprietorship"
- "recommendedState": two-letter state code
- "phaseRecommendations": object keyed by "ideation", "legal", "financial", "launchPrep", each with
  "summary" and "priorities" (array)
- "confidenceScores": object with numeric "ideation", "legal", "financial", "launchPrep" and "total" (0-100)
- "selectedTemplateIds": array of 10-20 template ids chosen from the list provided, most urgent first
- "heroTemplateId": the single template id the founder should do next
- "planSummary": a short narrative summary

You may call get_task_templates to look up templates by category. Do not call any other tool.`

type PromptManager struct {
	Directory string
}

func NewPromptManager(dir string) *PromptManager {
	return &PromptManager{Directory: dir}
}

// GetPlanPrompt joins the .md files of the prompts directory in a fixed order
// (identity, planner, output_format, then the rest by name). With no
// directory configured it returns DefaultPlanPrompt.
func (pm *PromptManager) GetPlanPrompt() (string, error) {
	if pm.Directory == "" {
		return DefaultPlanPrompt, nil
	}

	files, err := os.ReadDir(pm.Directory)
	if err != nil {
		return "", fmt.Errorf("failed to read prompts directory: %v", err)
	}

	order := map[string]int{
		"identity.md":      1,
		"planner.md":       2,
		"output_format.md": 3,
	}

	sort.Slice(files, func(i, j int) bool {
		oi, okI := order[files[i].Name()]
		oj, okJ := order[files[j].Name()]
		if okI && okJ {
			return oi < oj
		}
		if okI {
			return true
		}
		if okJ {
			return false
		}
		return files[i].Name() < files[j].Name()
	})

	var contents []string
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".md") {
			continue
		}
		path := filepath.Join(pm.Directory, f.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("Warning: Failed to read prompt file %s: %v", path, err)
			continue
		}
		contents = append(contents, strings.TrimSpace(string(data)))
	}

	if len(contents) == 0 {
		return "", fmt.Errorf("no prompt files found in %s", pm.Directory)
	}

	return strings.Join(contents, "\n\n---\n\n"), nil
}

// PlanPrompt is GetPlanPrompt with a fallback to the built-in prompt.
func (pm *PromptManager) PlanPrompt() string {
	p, err := pm.GetPlanPrompt()
	if err != nil {
		log.Printf("Warning: Failed to load plan prompt, using default: %v", err)
		return DefaultPlanPrompt
	}
	return p
}
