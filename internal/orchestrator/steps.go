package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/rahul/launchpad/internal/agent"
	"github.com/rahul/launchpad/internal/store"
	"github.com/rahul/launchpad/internal/tools"
	"github.com/tmc/langchaingo/llms"
)

// execute dispatches one work step. Terminal steps have no work.
func (e *Engine) execute(ctx context.Context, s Step, st State) Update {
	switch s {
	case StepLoadTemplates:
		return e.loadTemplates(ctx, st)
	case StepGeneratePlan:
		return e.generatePlan(ctx, st)
	case StepCreateBusiness:
		return e.createBusiness(ctx, st)
	case StepInitializeTasks:
		return e.initializeTasks(ctx, st)
	case StepStorePlan:
		return e.storePlan(ctx, st)
	default:
		return Update{Failure: fmt.Sprintf("no work for step %s", s)}
	}
}

func failed(format string, args ...any) Update {
	return Update{Failure: fmt.Sprintf(format, args...)}
}

func (e *Engine) loadTemplates(ctx context.Context, st State) Update {
	templates, err := e.Tools.Templates(ctx, "")
	if err != nil {
		return failed("Failed to load templates: %v", err)
	}
	if templates == nil {
		templates = []store.Template{}
	}
	return Update{
		Templates: templates,
		Completed: StepSet(0).With(StepLoadTemplates),
	}
}

func (e *Engine) generatePlan(ctx context.Context, st State) Update {
	in := st.Inputs
	client, err := e.Clients.For(in.ModelProvider, in.ModelName, in.APIKey)
	if err != nil {
		return failed("Failed to generate plan: %v", err)
	}

	human, err := buildPlanRequest(in.Answers, st.Templates, e.Config.MaxTemplatesInPrompt)
	if err != nil {
		return failed("Failed to generate plan: %v", err)
	}
	resp, err := client.Invoke(ctx, agent.Request{
		SessionID:    st.RunID,
		SystemPrompt: e.Prompts.PlanPrompt(),
		Tools:        e.ToolDefs,
		Messages: []llms.MessageContent{{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(human)},
		}},
	})
	if err != nil {
		return failed("Failed to generate plan: %v", err)
	}

	text := resp.Text()
	parsed, err := ParsePlanResponse(text)
	if err != nil {
		return failed("Failed to generate plan: %v", err)
	}

	return Update{
		Messages: []Message{
			{Role: "human", Content: human},
			{Role: "ai", Content: text},
		},
		Response:  parsed,
		Plan:      parsed.Plan(),
		Scores:    parsed.Scores(),
		Completed: StepSet(0).With(StepGeneratePlan),
	}
}

func (e *Engine) createBusiness(ctx context.Context, st State) Update {
	answers := st.Inputs.Answers
	name := answers.BusinessName()
	if name == "" {
		return failed("Failed to create business: Business name is required")
	}

	defaults := e.Config.Defaults
	business, err := e.Tools.UpsertBusiness(ctx, tools.BusinessInput{
		UserID:           st.Inputs.UserID,
		BusinessName:     name,
		BusinessCategory: orDefault(answers.Category(), defaults.Category),
		StateCode:        orDefault(answers.StateCode(), defaults.State),
		CurrentStage:     orDefault(answers.Stage(), defaults.Stage),
	})
	if err != nil {
		return failed("Failed to create business: %v", err)
	}
	if business.ID == "" {
		return failed("Failed to create business: no business id returned")
	}

	return Update{
		BusinessID: business.ID,
		Completed:  StepSet(0).With(StepCreateBusiness),
	}
}

func (e *Engine) initializeTasks(ctx context.Context, st State) Update {
	if st.BusinessID == "" {
		return failed("Failed to initialize tasks: business id is not set")
	}
	if st.Response == nil {
		return failed("Failed to initialize tasks: no plan response available")
	}
	selected := st.Response.selected()
	if len(selected) == 0 {
		return failed("Failed to initialize tasks: no template ids selected")
	}

	tasks, err := e.Tools.CreateTasks(ctx, tools.TasksInput{
		UserID:      st.Inputs.UserID,
		BusinessID:  st.BusinessID,
		TemplateIDs: selected,
	})
	if err != nil {
		return failed("Failed to initialize tasks: %v", err)
	}

	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}

	return Update{
		CreatedTaskIDs: ids,
		HeroTaskID:     resolveHero(tasks, st.Response.HeroTemplateID),
		Completed:      StepSet(0).With(StepInitializeTasks),
	}
}

// resolveHero picks the task to recommend first: the one created from the
// hero template, else the first high-priority task, else the first task.
func resolveHero(tasks []store.Task, heroTemplateID string) string {
	if len(tasks) == 0 {
		return ""
	}
	if heroTemplateID = strings.TrimSpace(heroTemplateID); heroTemplateID != "" {
		for _, t := range tasks {
			if t.TemplateID == heroTemplateID {
				return t.ID
			}
		}
	}
	for _, t := range tasks {
		if strings.EqualFold(t.Priority, "high") {
			return t.ID
		}
	}
	return tasks[0].ID
}

func (e *Engine) storePlan(ctx context.Context, st State) Update {
	if st.Plan == nil || st.Scores == nil {
		return failed("Failed to store plan: plan or confidence scores missing")
	}

	plan, scores := st.Plan, st.Scores
	stored, err := e.Tools.StorePlan(ctx, tools.PlanInput{
		UserID:                st.Inputs.UserID,
		BusinessID:            st.BusinessID,
		OnboardingSessionID:   st.Inputs.SessionID,
		PlanSummary:           plan.PlanSummary,
		RecommendedEntityType: plan.RecommendedEntityType,
		RecommendedState:      plan.RecommendedState,
		ExecutiveSummary:      plan.ExecutiveSummary,
		PhaseRecommendations:  plan.PhaseRecommendations,
		ConfidenceScore:       scores.Total,
		IdeationScore:         scores.Ideation,
		LegalScore:            scores.Legal,
		FinancialScore:        scores.Financial,
		LaunchPrepScore:       scores.LaunchPrep,
	})
	if err != nil {
		return failed("Failed to store plan: %v", err)
	}
	if stored.ID == "" {
		return failed("Failed to store plan: no plan id returned")
	}

	return Update{
		BusinessPlanID: stored.ID,
		Completed:      StepSet(0).With(StepStorePlan),
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
