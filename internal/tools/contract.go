package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rahul/launchpad/internal/store"
)

// Tool names, as seen by the model and the orchestrator.
const (
	GetTaskTemplates  = "get_task_templates"
	CreateBusiness    = "create_business_from_onboarding"
	BulkCreateTasks   = "bulk_create_tasks"
	StoreBusinessPlan = "store_business_plan"
)

// Store is the persistence surface the contracts need.
type Store interface {
	ListTemplates(ctx context.Context, category string) ([]store.Template, error)
	UpsertBusiness(ctx context.Context, b store.Business) (store.Business, error)
	CreateTasks(ctx context.Context, ownerID, businessID string, templateIDs []string) ([]store.Task, error)
	UpsertBusinessPlan(ctx context.Context, p store.BusinessPlan) (store.BusinessPlan, error)
}

// Envelope discriminates success from failure in every tool output.
type Envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ContractError is a failure reported by a tool through its envelope.
type ContractError struct {
	Tool    string
	Message string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s: %s", e.Tool, e.Message)
}

type TemplatesInput struct {
	Category string `json:"category,omitempty"`
}

type TemplatesOutput struct {
	Envelope
	Templates []store.Template `json:"templates"`
}

type BusinessInput struct {
	UserID           string `json:"userId"`
	BusinessName     string `json:"businessName"`
	BusinessCategory string `json:"businessCategory"`
	StateCode        string `json:"stateCode"`
	CurrentStage     string `json:"currentStage"`
}

type BusinessOutput struct {
	Envelope
	Business store.Business `json:"business"`
}

type TasksInput struct {
	UserID      string   `json:"userId"`
	BusinessID  string   `json:"businessId"`
	TemplateIDs []string `json:"templateIds"`
}

type TasksOutput struct {
	Envelope
	Tasks []store.Task `json:"tasks"`
}

type PlanInput struct {
	UserID                string          `json:"userId"`
	BusinessID            string          `json:"businessId,omitempty"`
	OnboardingSessionID   string          `json:"onboardingSessionId,omitempty"`
	PlanSummary           string          `json:"planSummary"`
	RecommendedEntityType string          `json:"recommendedEntityType"`
	RecommendedState      string          `json:"recommendedState"`
	ExecutiveSummary      json.RawMessage `json:"executiveSummary"`
	PhaseRecommendations  json.RawMessage `json:"phaseRecommendations"`
	ConfidenceScore       int             `json:"confidenceScore"`
	IdeationScore         int             `json:"ideationScore"`
	LegalScore            int             `json:"legalScore"`
	FinancialScore        int             `json:"financialScore"`
	LaunchPrepScore       int             `json:"launchPrepScore"`
}

type PlanOutput struct {
	Envelope
	BusinessPlan store.BusinessPlan `json:"businessPlan"`
}

func success(out any) (string, error) {
	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("failed to encode output: %w", err)
	}
	return string(data), nil
}

func failure(format string, args ...any) (string, error) {
	return success(Envelope{Error: fmt.Sprintf(format, args...)})
}

func decode(input string, v any) error {
	if input == "" {
		input = "{}"
	}
	if err := json.Unmarshal([]byte(input), v); err != nil {
		return fmt.Errorf("invalid input: %v", err)
	}
	return nil
}
