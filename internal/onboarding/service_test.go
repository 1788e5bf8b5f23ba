package onboarding

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rahul/launchpad/internal/observability"
	"github.com/rahul/launchpad/internal/orchestrator"
	"github.com/rahul/launchpad/internal/store"
	"github.com/rahul/launchpad/internal/tools"
	"github.com/rahul/launchpad/pkg/config"
)

type stubRunner struct {
	result orchestrator.Result
	calls  int
}

func (r *stubRunner) Run(ctx context.Context, in orchestrator.SessionInputs) orchestrator.Result {
	r.calls++
	return r.result
}

func newSQLiteToolbox(t *testing.T) (*tools.Toolbox, *store.Store) {
	t.Helper()
	s, err := store.NewStore(filepath.Join(t.TempDir(), "onboarding.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	phases := []string{"ideation", "legal", "financial", "launch_prep"}
	var templates []store.Template
	for i := 0; i < 20; i++ {
		priority := "medium"
		if i == 6 {
			priority = "high"
		}
		templates = append(templates, store.Template{
			ID:        fmt.Sprintf("tpl-%02d", i+1),
			Title:     fmt.Sprintf("Task %d", i+1),
			Category:  "general",
			Phase:     phases[i%4],
			Priority:  priority,
			SortOrder: i + 1,
		})
	}
	if err := s.UpsertTemplates(context.Background(), templates); err != nil {
		t.Fatal(err)
	}
	return tools.NewToolbox(tools.NewDefaultRegistry(s, nil)), s
}

func newService(runner Runner, tb orchestrator.Toolbox) *Service {
	return NewService(runner, tb, observability.NewDiscardLogger(), config.Default().Orchestrator.Defaults)
}

func TestComplete_AIResultPassesThrough(t *testing.T) {
	runner := &stubRunner{result: orchestrator.Result{Success: true, RunID: "r1", BusinessID: "b1", TaskCount: 15}}
	svc := newService(runner, nil)

	out := svc.Complete(context.Background(), orchestrator.SessionInputs{UserID: "u"})
	if out.Source != SourceAI || !out.Success || out.BusinessID != "b1" || out.TaskCount != 15 {
		t.Errorf("unexpected outcome %+v", out)
	}
	if out.FallbackReason != "" {
		t.Errorf("no fallback reason expected, got %q", out.FallbackReason)
	}
}

func TestComplete_FallbackOnFailure(t *testing.T) {
	tb, s := newSQLiteToolbox(t)
	runner := &stubRunner{result: orchestrator.Result{RunID: "r2", Error: "Failed to generate plan: no JSON object found in AI response"}}
	svc := newService(runner, tb)

	out := svc.Complete(context.Background(), orchestrator.SessionInputs{
		UserID:    "user-7",
		SessionID: "sess-1",
		Answers:   orchestrator.Answers{"businessName": "Northwind", "stateCode": "wa", "currentStage": "registered"},
	})

	if !out.Success || out.Source != SourceFallback {
		t.Fatalf("expected fallback success, got %+v", out)
	}
	if out.RunID != "r2" || !strings.Contains(out.FallbackReason, "no JSON object") {
		t.Errorf("fallback should carry the run id and reason: %+v", out)
	}
	if out.TaskCount != defaultMaxTasks {
		t.Errorf("expected %d tasks, got %d", defaultMaxTasks, out.TaskCount)
	}
	if out.ConfidenceScores == nil || *out.ConfidenceScores != baselineScores {
		t.Errorf("expected baseline scores, got %+v", out.ConfidenceScores)
	}

	tasks, err := s.ListTasks(context.Background(), out.BusinessID)
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != defaultMaxTasks {
		t.Fatalf("expected %d stored tasks, got %d", defaultMaxTasks, len(tasks))
	}
	// tpl-07 is the only high-priority template and sits in the financial phase.
	var hero store.Task
	for _, task := range tasks {
		if task.ID == out.HeroTaskID {
			hero = task
		}
	}
	if hero.TemplateID != "tpl-07" {
		t.Errorf("expected hero from tpl-07, got %+v", hero)
	}

	plan, err := s.GetBusinessPlan(context.Background(), "user-7")
	if err != nil {
		t.Fatal(err)
	}
	if plan.ID != out.BusinessPlanID || plan.RecommendedState != "WA" || plan.OnboardingSessionID != "sess-1" {
		t.Errorf("unexpected stored plan %+v", plan)
	}
	var summary map[string]any
	if err := json.Unmarshal(plan.ExecutiveSummary, &summary); err != nil || summary["overview"] == "" {
		t.Errorf("expected an executive summary object, got %s (%v)", plan.ExecutiveSummary, err)
	}
}

// partialRunner commits a business and some tasks, then fails like a run that
// died in storePlan.
type partialRunner struct {
	tb          orchestrator.Toolbox
	templateIDs []string
}

func (r *partialRunner) Run(ctx context.Context, in orchestrator.SessionInputs) orchestrator.Result {
	business, err := r.tb.UpsertBusiness(ctx, tools.BusinessInput{UserID: in.UserID, BusinessName: in.Answers.BusinessName()})
	if err != nil {
		return orchestrator.Result{Error: err.Error()}
	}
	if _, err := r.tb.CreateTasks(ctx, tools.TasksInput{UserID: in.UserID, BusinessID: business.ID, TemplateIDs: r.templateIDs}); err != nil {
		return orchestrator.Result{Error: err.Error()}
	}
	return orchestrator.Result{RunID: "r4", Error: "Failed to store plan: disk full"}
}

func TestComplete_FallbackReusesTasksFromFailedRun(t *testing.T) {
	tb, s := newSQLiteToolbox(t)
	runner := &partialRunner{tb: tb, templateIDs: []string{"tpl-02", "tpl-07", "tpl-11"}}
	svc := newService(runner, tb)
	svc.Tasks = s

	out := svc.Complete(context.Background(), orchestrator.SessionInputs{
		UserID:  "user-9",
		Answers: orchestrator.Answers{"businessName": "Northwind"},
	})

	if !out.Success || out.Source != SourceFallback {
		t.Fatalf("expected fallback success, got %+v", out)
	}
	tasks, err := s.ListTasks(context.Background(), out.BusinessID)
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 3 || out.TaskCount != 3 {
		t.Errorf("expected the 3 tasks from the failed run, got %d stored, count %d", len(tasks), out.TaskCount)
	}
	var hero store.Task
	for _, task := range tasks {
		if task.ID == out.HeroTaskID {
			hero = task
		}
	}
	if hero.TemplateID != "tpl-07" {
		t.Errorf("expected hero from tpl-07, got %+v", hero)
	}
	plan, err := s.GetBusinessPlan(context.Background(), "user-9")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(plan.PlanSummary, "Start with 3 foundational tasks") {
		t.Errorf("unexpected plan summary %q", plan.PlanSummary)
	}
}

func TestComplete_FallbackNeedsBusinessName(t *testing.T) {
	tb, _ := newSQLiteToolbox(t)
	runner := &stubRunner{result: orchestrator.Result{RunID: "r3", Error: "Failed to create business: Business name is required"}}
	svc := newService(runner, tb)

	out := svc.Complete(context.Background(), orchestrator.SessionInputs{UserID: "u", Answers: orchestrator.Answers{}})
	if out.Success || out.Source != SourceFallback || out.Error != "Business name is required" {
		t.Errorf("unexpected outcome %+v", out)
	}
	if out.BusinessID != "" {
		t.Error("no business may be created without a name")
	}
}

func TestPickTemplates_StageFirst(t *testing.T) {
	templates := []store.Template{
		{ID: "a", Phase: "ideation", SortOrder: 1},
		{ID: "b", Phase: "launch_prep", SortOrder: 2},
		{ID: "c", Phase: "financial", SortOrder: 3},
		{ID: "d", Phase: "launch_prep", SortOrder: 4},
		{ID: "e", Phase: "", SortOrder: 5},
	}
	tests := []struct {
		stage string
		limit int
		want  string
	}{
		{"launching", 5, "b,d,c,a,e"},
		{"idea", 3, "a,c,b"},
		{"unknown-stage", 2, "a,c"},
	}
	for _, tt := range tests {
		var got []string
		for _, tpl := range pickTemplates(templates, tt.stage, tt.limit) {
			got = append(got, tpl.ID)
		}
		if strings.Join(got, ",") != tt.want {
			t.Errorf("stage %s: got %v, want %s", tt.stage, got, tt.want)
		}
	}
}
