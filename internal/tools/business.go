package tools

import (
	"context"
	"strings"

	"github.com/rahul/launchpad/internal/store"
)

type BusinessTool struct {
	Store Store
}

func NewBusinessTool(s Store) *BusinessTool {
	return &BusinessTool{Store: s}
}

func (b *BusinessTool) Name() string {
	return CreateBusiness
}

func (b *BusinessTool) Description() string {
	return "Create the user's business record from onboarding answers, or update it if the user already has one."
}

func (b *BusinessTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"userId": map[string]any{
				"type":        "string",
				"description": "The owner of the business",
			},
			"businessName": map[string]any{
				"type":        "string",
				"description": "The business name",
			},
			"businessCategory": map[string]any{
				"type":        "string",
				"description": "Business category (e.g. 'service', 'product', 'ecommerce')",
			},
			"stateCode": map[string]any{
				"type":        "string",
				"description": "Two-letter US state code of formation",
			},
			"currentStage": map[string]any{
				"type":        "string",
				"description": "Where the founder is today (e.g. 'idea', 'planning', 'operating')",
			},
		},
		"required": []string{"userId", "businessName", "businessCategory", "stateCode", "currentStage"},
	}
}

func (b *BusinessTool) Execute(ctx context.Context, input string) (string, error) {
	var args BusinessInput
	if err := decode(input, &args); err != nil {
		return "", err
	}

	if args.UserID == "" {
		return failure("userId is required")
	}
	if strings.TrimSpace(args.BusinessName) == "" {
		return failure("businessName is required")
	}

	business, err := b.Store.UpsertBusiness(ctx, store.Business{
		OwnerID:   args.UserID,
		Name:      strings.TrimSpace(args.BusinessName),
		Category:  args.BusinessCategory,
		StateCode: strings.ToUpper(args.StateCode),
		Stage:     args.CurrentStage,
	})
	if err != nil {
		return failure("failed to save business: %v", err)
	}

	return success(BusinessOutput{Envelope: Envelope{Success: true}, Business: business})
}
