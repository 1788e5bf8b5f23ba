package onboarding

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestParseAnswers(t *testing.T) {
	yamlText := "businessName: Northwind\nstateCode: WA\nemployees: 3"
	jsonText := `{"businessName": "Northwind", "stateCode": "WA", "employees": 3}`

	for _, text := range []string{yamlText, jsonText} {
		answers, err := ParseAnswers(text)
		if err != nil {
			t.Fatalf("%q: %v", text, err)
		}
		if answers.BusinessName() != "Northwind" || answers.StateCode() != "WA" || answers["employees"] != 3 {
			t.Errorf("%q: unexpected answers %v", text, answers)
		}
	}

	for _, bad := range []string{"", "   ", "just a sentence", "[1, 2]"} {
		if _, err := ParseAnswers(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestParseAnswers_NestedMappings(t *testing.T) {
	text := "businessName: Crumb\nrevenueTargets:\n  2025: 10000\n  2026: 25000\nfounders:\n  - name: Ada\n    equity: {1: 60}\n"

	answers, err := ParseAnswers(text)
	if err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(answers)
	if err != nil {
		t.Fatalf("answers should render as JSON: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	targets, ok := back["revenueTargets"].(map[string]any)
	if !ok || targets["2025"] != float64(10000) || targets["2026"] != float64(25000) {
		t.Errorf("unexpected revenue targets %v", back["revenueTargets"])
	}
	founders, ok := back["founders"].([]any)
	if !ok || len(founders) != 1 {
		t.Fatalf("unexpected founders %v", back["founders"])
	}
	equity := founders[0].(map[string]any)["equity"].(map[string]any)
	if equity["1"] != float64(60) {
		t.Errorf("unexpected equity %v", equity)
	}
}

func TestLoadAnswers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answers.yaml")
	if err := os.WriteFile(path, []byte("business_name: Crumb and Co\ncurrent_stage: planning\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	answers, err := LoadAnswers(path)
	if err != nil {
		t.Fatal(err)
	}
	if answers.BusinessName() != "Crumb and Co" || answers.Stage() != "planning" {
		t.Errorf("unexpected answers %v", answers)
	}

	if _, err := LoadAnswers(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
