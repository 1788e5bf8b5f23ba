package orchestrator

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/rahul/launchpad/internal/agent"
	"github.com/rahul/launchpad/internal/observability"
	"github.com/rahul/launchpad/internal/store"
	"github.com/rahul/launchpad/internal/tools"
	"github.com/rahul/launchpad/pkg/config"
	"github.com/tmc/langchaingo/llms"
)

// Toolbox is the set of tool contracts the steps call.
type Toolbox interface {
	Templates(ctx context.Context, category string) ([]store.Template, error)
	UpsertBusiness(ctx context.Context, in tools.BusinessInput) (store.Business, error)
	CreateTasks(ctx context.Context, in tools.TasksInput) ([]store.Task, error)
	StorePlan(ctx context.Context, in tools.PlanInput) (store.BusinessPlan, error)
}

// ClientSource resolves the inference client for a run's model overrides.
type ClientSource interface {
	For(provider, model, apiKey string) (agent.Client, error)
}

// PromptSource supplies the plan-generation system prompt.
type PromptSource interface {
	PlanPrompt() string
}

// History records a run's conversation.
type History interface {
	AddMessage(sessionID string, role string, content string) error
}

// Result is what the caller of a run sees. On failure only Error, RunID and
// CompletedSteps are populated.
type Result struct {
	Success          bool              `json:"success"`
	RunID            string            `json:"runId"`
	BusinessID       string            `json:"businessId,omitempty"`
	BusinessPlanID   string            `json:"businessPlanId,omitempty"`
	HeroTaskID       string            `json:"heroTaskId,omitempty"`
	TaskCount        int               `json:"taskCount,omitempty"`
	ConfidenceScores *ConfidenceScores `json:"confidenceScores,omitempty"`
	Error            string            `json:"error,omitempty"`
	CompletedSteps   []string          `json:"completedSteps"`
}

// Engine drives the workflow steps through Route until a terminal step.
type Engine struct {
	Tools    Toolbox
	Clients  ClientSource
	Prompts  PromptSource
	ToolDefs []llms.Tool
	History  History
	Logger   *observability.Logger
	Config   config.OrchestratorConfig
}

func NewEngine(tb Toolbox, clients ClientSource, prompts PromptSource, logger *observability.Logger, cfg config.OrchestratorConfig) *Engine {
	return &Engine{
		Tools:   tb,
		Clients: clients,
		Prompts: prompts,
		Logger:  logger,
		Config:  cfg,
	}
}

// Run executes one onboarding completion from a fresh state. The configured
// run timeout, if any, bounds the whole run.
func (e *Engine) Run(ctx context.Context, in SessionInputs) Result {
	if e.Config.RunTimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(e.Config.RunTimeoutSeconds)*time.Second)
		defer cancel()
	}
	_, res := e.Resume(ctx, NewState(uuid.NewString(), in))
	return res
}

// Resume drives an existing state to a terminal step. Steps already marked
// complete are not run again.
func (e *Engine) Resume(ctx context.Context, st State) (State, Result) {
	ctx, span := observability.StartRunSpan(ctx, st.RunID, st.Inputs.UserID)
	e.Logger.LogRun(st.RunID, "started", map[string]any{
		"user_id":   st.Inputs.UserID,
		"completed": st.Completed.Names(),
	})

	for {
		next := Route(st)
		if next.Terminal() {
			break
		}
		if err := ctx.Err(); err != nil {
			st = Merge(st, failed("Run cancelled before %s: %v", next, err))
			continue
		}
		st = e.step(ctx, next, st)
	}

	res := resultOf(st)
	observability.SetStatus("", "")
	observability.RecordRun(res.Success)
	e.Logger.LogRun(st.RunID, Route(st).String(), map[string]any{
		"completed": res.CompletedSteps,
		"error":     res.Error,
	})
	observability.EndSpan(span, st.Failure)
	return st, res
}

func (e *Engine) step(ctx context.Context, s Step, st State) State {
	name := s.String()
	observability.SetStatus(st.RunID, name)
	ctx, span := observability.StartStepSpan(ctx, st.RunID, name)
	e.Logger.LogStep(st.RunID, name, "started", "")

	u := e.execute(ctx, s, st)
	if u.Failure == "" && !u.Completed.Has(s) {
		u.Failure = fmt.Sprintf("step %s made no progress", s)
	}
	e.persist(st.RunID, u.Messages)

	if u.Failure != "" {
		e.Logger.LogStep(st.RunID, name, "failed", u.Failure)
	} else {
		e.Logger.LogStep(st.RunID, name, "completed", "")
	}
	observability.EndSpan(span, u.Failure)
	return Merge(st, u)
}

func (e *Engine) persist(runID string, messages []Message) {
	if e.History == nil {
		return
	}
	for _, m := range messages {
		if err := e.History.AddMessage(runID, m.Role, m.Content); err != nil {
			log.Printf("[orchestrator] failed to save %s message for run %s: %v", m.Role, runID, err)
		}
	}
}

func resultOf(st State) Result {
	res := Result{
		RunID:          st.RunID,
		CompletedSteps: st.Completed.Names(),
	}
	if res.CompletedSteps == nil {
		res.CompletedSteps = []string{}
	}
	if Route(st) != StepDone {
		res.Error = st.Failure
		return res
	}
	res.Success = true
	res.BusinessID = st.BusinessID
	res.BusinessPlanID = st.BusinessPlanID
	res.HeroTaskID = st.HeroTaskID
	res.TaskCount = len(st.CreatedTaskIDs)
	res.ConfidenceScores = st.Scores
	return res
}
