// Package onboarding completes a founder's onboarding: it runs the plan
// workflow and, when that fails, builds a deterministic plan from the task
// templates so the founder always leaves with a business, tasks and a plan.
package onboarding

import (
	"context"

	"github.com/rahul/launchpad/internal/observability"
	"github.com/rahul/launchpad/internal/orchestrator"
	"github.com/rahul/launchpad/internal/store"
	"github.com/rahul/launchpad/pkg/config"
)

const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
)

// Runner runs the plan workflow.
type Runner interface {
	Run(ctx context.Context, in orchestrator.SessionInputs) orchestrator.Result
}

// Outcome is the workflow result plus where the plan came from.
type Outcome struct {
	orchestrator.Result
	Source         string `json:"source"`
	FallbackReason string `json:"fallbackReason,omitempty"`
}

// TaskLister reports the tasks a business already has.
type TaskLister interface {
	ListTasks(ctx context.Context, businessID string) ([]store.Task, error)
}

type Service struct {
	Engine   Runner
	Tools    orchestrator.Toolbox
	Tasks    TaskLister // optional; when set the fallback reuses tasks left by a failed run
	Logger   *observability.Logger
	Defaults config.Defaults
	MaxTasks int
}

func NewService(engine Runner, tb orchestrator.Toolbox, logger *observability.Logger, defaults config.Defaults) *Service {
	return &Service{
		Engine:   engine,
		Tools:    tb,
		Logger:   logger,
		Defaults: defaults,
		MaxTasks: defaultMaxTasks,
	}
}

// Complete runs the workflow and falls back to the template plan when the
// workflow reports failure.
func (s *Service) Complete(ctx context.Context, in orchestrator.SessionInputs) Outcome {
	res := s.Engine.Run(ctx, in)
	if res.Success {
		return Outcome{Result: res, Source: SourceAI}
	}

	s.Logger.LogFallback(res.RunID, res.Error)
	out := s.fallback(ctx, res.RunID, in)
	out.FallbackReason = res.Error
	return out
}
