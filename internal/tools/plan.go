package tools

import (
	"context"

	"github.com/rahul/launchpad/internal/store"
)

type PlanTool struct {
	Store Store
}

func NewPlanTool(s Store) *PlanTool {
	return &PlanTool{Store: s}
}

func (p *PlanTool) Name() string {
	return StoreBusinessPlan
}

func (p *PlanTool) Description() string {
	return "Save the user's business plan with its confidence scores, replacing any earlier plan."
}

func (p *PlanTool) Parameters() map[string]any {
	score := func(desc string) map[string]any {
		return map[string]any{"type": "integer", "minimum": 0, "maximum": 100, "description": desc}
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"userId":                map[string]any{"type": "string"},
			"businessId":            map[string]any{"type": "string"},
			"onboardingSessionId":   map[string]any{"type": "string"},
			"planSummary":           map[string]any{"type": "string", "description": "Narrative summary of the plan"},
			"recommendedEntityType": map[string]any{"type": "string", "description": "e.g. 'LLC', 'S-Corp', 'Sole Proprietorship'"},
			"recommendedState":      map[string]any{"type": "string", "description": "Two-letter state code"},
			"executiveSummary":      map[string]any{"type": "object"},
			"phaseRecommendations":  map[string]any{"type": "object"},
			"confidenceScore":       score("Overall confidence"),
			"ideationScore":         score("Ideation phase confidence"),
			"legalScore":            score("Legal phase confidence"),
			"financialScore":        score("Financial phase confidence"),
			"launchPrepScore":       score("Launch preparation confidence"),
		},
		"required": []string{"userId", "planSummary", "recommendedEntityType", "executiveSummary", "confidenceScore"},
	}
}

func (p *PlanTool) Execute(ctx context.Context, input string) (string, error) {
	var args PlanInput
	if err := decode(input, &args); err != nil {
		return "", err
	}

	if args.UserID == "" {
		return failure("userId is required")
	}

	plan, err := p.Store.UpsertBusinessPlan(ctx, store.BusinessPlan{
		OwnerID:               args.UserID,
		BusinessID:            args.BusinessID,
		OnboardingSessionID:   args.OnboardingSessionID,
		PlanSummary:           args.PlanSummary,
		RecommendedEntityType: args.RecommendedEntityType,
		RecommendedState:      args.RecommendedState,
		ExecutiveSummary:      args.ExecutiveSummary,
		PhaseRecommendations:  args.PhaseRecommendations,
		ConfidenceScore:       args.ConfidenceScore,
		IdeationScore:         args.IdeationScore,
		LegalScore:            args.LegalScore,
		FinancialScore:        args.FinancialScore,
		LaunchPrepScore:       args.LaunchPrepScore,
	})
	if err != nil {
		return failure("failed to save business plan: %v", err)
	}

	return success(PlanOutput{Envelope: Envelope{Success: true}, BusinessPlan: plan})
}
