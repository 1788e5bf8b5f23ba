package onboarding

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rahul/launchpad/internal/orchestrator"
	"github.com/rahul/launchpad/internal/store"
	"github.com/rahul/launchpad/internal/tools"
)

const defaultMaxTasks = 12

// Baseline scores for a plan nobody has reviewed.
var baselineScores = orchestrator.ConfidenceScores{
	Ideation:   60,
	Legal:      50,
	Financial:  50,
	LaunchPrep: 40,
	Total:      50,
}

// stagePhases orders template phases by relevance for each onboarding stage.
var stagePhases = map[string][]string{
	"idea":       {"ideation", "legal", "financial", "launch_prep"},
	"planning":   {"legal", "financial", "ideation", "launch_prep"},
	"registered": {"financial", "launch_prep", "legal"},
	"launching":  {"launch_prep", "financial"},
	"operating":  {"financial", "launch_prep"},
}

var phaseTitles = map[string]string{
	"ideation":    "Ideation",
	"legal":       "Legal",
	"financial":   "Financial",
	"launch_prep": "Launch prep",
}

func (s *Service) fallback(ctx context.Context, runID string, in orchestrator.SessionInputs) Outcome {
	out := Outcome{Source: SourceFallback}
	out.RunID = runID

	fail := func(format string, args ...any) Outcome {
		out.Error = fmt.Sprintf(format, args...)
		return out
	}

	answers := in.Answers
	name := answers.BusinessName()
	if name == "" {
		return fail("Business name is required")
	}
	category := orDefault(answers.Category(), s.Defaults.Category)
	state := strings.ToUpper(orDefault(answers.StateCode(), s.Defaults.State))
	stage := strings.ToLower(orDefault(answers.Stage(), s.Defaults.Stage))

	business, err := s.Tools.UpsertBusiness(ctx, tools.BusinessInput{
		UserID:           in.UserID,
		BusinessName:     name,
		BusinessCategory: category,
		StateCode:        state,
		CurrentStage:     stage,
	})
	if err != nil {
		return fail("Fallback failed to create business: %v", err)
	}
	out.BusinessID = business.ID

	templates, err := s.Tools.Templates(ctx, "")
	if err != nil {
		return fail("Fallback failed to load templates: %v", err)
	}
	picked := pickTemplates(templates, stage, s.maxTasks())
	if len(picked) == 0 {
		return fail("Fallback found no task templates")
	}

	tasks, err := s.existingTasks(ctx, business.ID)
	if err != nil {
		return fail("Fallback failed to list tasks: %v", err)
	}
	if len(tasks) == 0 {
		ids := make([]string, len(picked))
		for i, t := range picked {
			ids[i] = t.ID
		}
		tasks, err = s.Tools.CreateTasks(ctx, tools.TasksInput{
			UserID:      in.UserID,
			BusinessID:  business.ID,
			TemplateIDs: ids,
		})
		if err != nil {
			return fail("Fallback failed to create tasks: %v", err)
		}
	}
	out.TaskCount = len(tasks)
	out.HeroTaskID = heroOf(tasks)

	scores := baselineScores
	summary, phases := describePlan(name, category, state, stage, picked)
	plan, err := s.Tools.StorePlan(ctx, tools.PlanInput{
		UserID:                in.UserID,
		BusinessID:            business.ID,
		OnboardingSessionID:   in.SessionID,
		PlanSummary:           fmt.Sprintf("Start with %d foundational tasks for %s, beginning with %s.", len(tasks), name, firstTitle(tasks, picked)),
		RecommendedEntityType: "LLC",
		RecommendedState:      state,
		ExecutiveSummary:      summary,
		PhaseRecommendations:  phases,
		ConfidenceScore:       scores.Total,
		IdeationScore:         scores.Ideation,
		LegalScore:            scores.Legal,
		FinancialScore:        scores.Financial,
		LaunchPrepScore:       scores.LaunchPrep,
	})
	if err != nil {
		return fail("Fallback failed to store plan: %v", err)
	}

	out.Success = true
	out.BusinessPlanID = plan.ID
	out.ConfidenceScores = &scores
	out.CompletedSteps = []string{}
	return out
}

// existingTasks returns the tasks a failed workflow run already created for
// the business.
func (s *Service) existingTasks(ctx context.Context, businessID string) ([]store.Task, error) {
	if s.Tasks == nil {
		return nil, nil
	}
	return s.Tasks.ListTasks(ctx, businessID)
}

func firstTitle(tasks []store.Task, picked []store.Template) string {
	if len(tasks) > 0 && tasks[0].Title != "" {
		return tasks[0].Title
	}
	return picked[0].Title
}

func (s *Service) maxTasks() int {
	if s.MaxTasks <= 0 {
		return defaultMaxTasks
	}
	return s.MaxTasks
}

// pickTemplates returns up to limit templates, those in the stage's phases
// first (in phase order), then the rest, each group by sort order.
func pickTemplates(templates []store.Template, stage string, limit int) []store.Template {
	order := stagePhases[stage]
	if order == nil {
		order = stagePhases["idea"]
	}
	rank := func(phase string) int {
		for i, p := range order {
			if p == phase {
				return i
			}
		}
		return len(order)
	}

	sorted := append([]store.Template(nil), templates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := rank(sorted[i].Phase), rank(sorted[j].Phase)
		if ri != rj {
			return ri < rj
		}
		return sorted[i].SortOrder < sorted[j].SortOrder
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func heroOf(tasks []store.Task) string {
	for _, t := range tasks {
		if strings.EqualFold(t.Priority, "high") {
			return t.ID
		}
	}
	if len(tasks) > 0 {
		return tasks[0].ID
	}
	return ""
}

type phaseRecommendation struct {
	Summary    string   `json:"summary"`
	Priorities []string `json:"priorities"`
}

func describePlan(name, category, state, stage string, picked []store.Template) (json.RawMessage, json.RawMessage) {
	phases := map[string]*phaseRecommendation{}
	for _, t := range picked {
		phase := t.Phase
		if phase == "" {
			phase = "ideation"
		}
		rec, ok := phases[phase]
		if !ok {
			title := phaseTitles[phase]
			if title == "" {
				title = phase
			}
			rec = &phaseRecommendation{Summary: title + " tasks selected from the standard checklist."}
			phases[phase] = rec
		}
		rec.Priorities = append(rec.Priorities, t.Title)
	}

	summary := map[string]any{
		"overview": fmt.Sprintf("%s is a %s business at the %s stage, planning to form in %s.", name, category, stage, state),
		"keyStrengths": []string{
			"Clear starting checklist",
		},
		"primaryRisks": []string{
			"Plan generated from standard templates without a personalized review",
		},
	}

	s, _ := json.Marshal(summary)
	p, _ := json.Marshal(phases)
	return s, p
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
