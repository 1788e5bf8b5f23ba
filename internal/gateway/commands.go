package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rahul/launchpad/internal/onboarding"
	"github.com/rahul/launchpad/internal/orchestrator"
)

const helpText = `Commands:
/onboard <answers> - build your business plan. Answers are YAML or JSON, e.g.
/onboard
businessName: Crumb & Co
businessCategory: food
stateCode: NY
currentStage: idea
/help - show this message`

// CommandHandler turns chat commands into onboarding completions. It is
// independent of the chat transport.
type CommandHandler struct {
	Completer Completer
	Timeout   time.Duration
}

func NewCommandHandler(completer Completer, timeout time.Duration) *CommandHandler {
	return &CommandHandler{Completer: completer, Timeout: timeout}
}

// Handle returns the reply for one command from userID.
func (h *CommandHandler) Handle(ctx context.Context, userID, command, args string) string {
	switch command {
	case "onboard":
		return h.onboard(ctx, userID, args)
	case "help", "start":
		return helpText
	default:
		return "Unknown command. Send /help for usage."
	}
}

func (h *CommandHandler) onboard(ctx context.Context, userID, args string) string {
	answers, err := onboarding.ParseAnswers(args)
	if err != nil {
		return fmt.Sprintf("Could not read your answers: %v\n\n%s", err, helpText)
	}

	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	out := h.Completer.Complete(ctx, orchestrator.SessionInputs{UserID: userID, Answers: answers})
	return summarize(out)
}

func summarize(out onboarding.Outcome) string {
	if !out.Success {
		return "Sorry, I couldn't finish your onboarding: " + out.Error
	}

	var sb strings.Builder
	if out.Source == onboarding.SourceFallback {
		sb.WriteString("Your starter plan is ready.\n")
	} else {
		sb.WriteString("Your personalized plan is ready.\n")
	}
	fmt.Fprintf(&sb, "Business: %s\n", out.BusinessID)
	fmt.Fprintf(&sb, "Tasks created: %d\n", out.TaskCount)
	if out.HeroTaskID != "" {
		fmt.Fprintf(&sb, "Start with task: %s\n", out.HeroTaskID)
	}
	if s := out.ConfidenceScores; s != nil {
		fmt.Fprintf(&sb, "Confidence: %d/100 (ideation %d, legal %d, financial %d, launch prep %d)\n",
			s.Total, s.Ideation, s.Legal, s.Financial, s.LaunchPrep)
	}
	return strings.TrimRight(sb.String(), "\n")
}
