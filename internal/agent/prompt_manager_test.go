package agent

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPromptManager_GetPlanPrompt(t *testing.T) {
	tempDir := t.TempDir()

	files := map[string]string{
		"identity.md":      "Identity Content",
		"planner.md":       "Planner Content",
		"output_format.md": "Format Content",
		"extra.md":         "Extra Content",
		"notes.txt":        "Ignored Content",
	}

	for name, content := range files {
		err := os.WriteFile(filepath.Join(tempDir, name), []byte(content), 0644)
		if err != nil {
			t.Fatal(err)
		}
	}

	pm := NewPromptManager(tempDir)
	prompt, err := pm.GetPlanPrompt()
	if err != nil {
		t.Fatal(err)
	}

	for _, part := range []string{"Identity Content", "Planner Content", "Format Content", "Extra Content"} {
		if !strings.Contains(prompt, part) {
			t.Errorf("Prompt missing expected part: %s", part)
		}
	}
	if strings.Contains(prompt, "Ignored Content") {
		t.Error("non-markdown files should be ignored")
	}

	// Verify order
	if strings.Index(prompt, "Identity Content") >= strings.Index(prompt, "Planner Content") {
		t.Error("Identity should be before Planner")
	}
	if strings.Index(prompt, "Planner Content") >= strings.Index(prompt, "Format Content") {
		t.Error("Planner should be before Format")
	}
	if strings.Index(prompt, "Format Content") >= strings.Index(prompt, "Extra Content") {
		t.Error("Format should be before Extra")
	}
}

func TestPromptManager_Fallback(t *testing.T) {
	if p, err := NewPromptManager("").GetPlanPrompt(); err != nil || p != DefaultPlanPrompt {
		t.Errorf("expected default prompt without directory, got err=%v", err)
	}

	pm := NewPromptManager(filepath.Join(t.TempDir(), "missing"))
	if _, err := pm.GetPlanPrompt(); err == nil {
		t.Error("expected error for missing directory")
	}
	if pm.PlanPrompt() != DefaultPlanPrompt {
		t.Error("PlanPrompt should fall back to the default")
	}
}
