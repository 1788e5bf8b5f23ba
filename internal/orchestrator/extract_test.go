package orchestrator

import (
	"errors"
	"strings"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		err  error
	}{
		{"fenced with tag", "```json\n{\"a\":1}\n```", `{"a":1}`, nil},
		{"fenced without tag", "Here you go:\n```\n{\"a\":1}\n```\nThanks", `{"a":1}`, nil},
		{"bare", `{"a":1}`, `{"a":1}`, nil},
		{"bare with prose", "Sure! {\"a\":{\"b\":2}} Let me know.", `{"a":{"b":2}}`, nil},
		{"multiline bare", "plan:\n{\n  \"a\": 1\n}\n", "{\n  \"a\": 1\n}", nil},
		{"no object", "I cannot help with that.", "", ErrNoJSON},
		{"empty", "", "", ErrNoJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.text)
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected error %v, got %v", tt.err, err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

const validPlan = `{
  "executiveSummary": {"overview": "A bakery"},
  "recommendedEntityType": "LLC",
  "recommendedState": "CA",
  "phaseRecommendations": {"legal": {"summary": "file"}},
  "confidenceScores": {"ideation": 71.6, "legal": 64.4, "financial": 55.5, "launchPrep": 40, "total": 57.9},
  "selectedTemplateIds": ["t1", "t2"],
  "heroTemplateId": "t2",
  "planSummary": "Start small."
}`

func TestParsePlanResponse(t *testing.T) {
	resp, err := ParsePlanResponse("```json\n" + validPlan + "\n```")
	if err != nil {
		t.Fatal(err)
	}
	if resp.RecommendedEntityType != "LLC" || resp.HeroTemplateID != "t2" || len(resp.SelectedTemplateIDs) != 2 {
		t.Errorf("unexpected response %+v", resp)
	}

	scores := resp.Scores()
	want := ConfidenceScores{Ideation: 72, Legal: 64, Financial: 56, LaunchPrep: 40, Total: 58}
	if *scores != want {
		t.Errorf("scores = %+v, want %+v", *scores, want)
	}

	plan := resp.Plan()
	if plan.PlanSummary != "Start small." || string(plan.ExecutiveSummary) != `{"overview": "A bakery"}` {
		t.Errorf("unexpected plan %+v", plan)
	}
}

func TestParsePlanResponse_MissingFields(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		missing string
	}{
		{"no confidence scores", strings.Replace(validPlan, `"confidenceScores"`, `"scores"`, 1), "confidenceScores"},
		{"summary not an object", strings.Replace(validPlan, `{"overview": "A bakery"}`, `"A bakery"`, 1), "executiveSummary"},
		{"empty selection", strings.Replace(validPlan, `["t1", "t2"]`, `[]`, 1), "selectedTemplateIds"},
		{"blank plan summary", strings.Replace(validPlan, `"Start small."`, `"  "`, 1), "planSummary"},
		{"no entity type", strings.Replace(validPlan, `"LLC"`, `""`, 1), "recommendedEntityType"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePlanResponse(tt.text)
			if !errors.Is(err, ErrMissingFields) {
				t.Fatalf("expected ErrMissingFields, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.missing) {
				t.Errorf("error %q should name %s", err, tt.missing)
			}
		})
	}
}

func TestParsePlanResponse_Malformed(t *testing.T) {
	_, err := ParsePlanResponse(`{"executiveSummary": {"overview": }`)
	if err == nil || errors.Is(err, ErrNoJSON) || errors.Is(err, ErrMissingFields) {
		t.Errorf("expected a parse error, got %v", err)
	}

	if _, err := ParsePlanResponse("no json here"); !errors.Is(err, ErrNoJSON) {
		t.Errorf("expected ErrNoJSON, got %v", err)
	}
}

func TestRoundScore_Clamps(t *testing.T) {
	if roundScore(-3) != 0 || roundScore(140.2) != 100 || roundScore(49.5) != 50 {
		t.Error("scores must round and clamp to 0..100")
	}
}
