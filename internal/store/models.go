package store

import "encoding/json"

// Template is a reusable task definition that onboarding instantiates per business.
type Template struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Category    string `json:"category" yaml:"category"`
	Phase       string `json:"phase" yaml:"phase"` // ideation, legal, financial, launch_prep
	Priority    string `json:"priority" yaml:"priority"`
	SortOrder   int    `json:"sort_order" yaml:"sort_order"`
}

// Business is keyed by its owner: one business per user.
type Business struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	StateCode string `json:"state_code"`
	Stage     string `json:"stage"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Task is one instantiated template.
type Task struct {
	ID          string `json:"id"`
	BusinessID  string `json:"business_id"`
	OwnerID     string `json:"owner_id"`
	TemplateID  string `json:"template_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

// BusinessPlan is keyed by its owner: one plan per user.
type BusinessPlan struct {
	ID                    string          `json:"id"`
	OwnerID               string          `json:"owner_id"`
	BusinessID            string          `json:"business_id,omitempty"`
	OnboardingSessionID   string          `json:"onboarding_session_id,omitempty"`
	PlanSummary           string          `json:"plan_summary"`
	RecommendedEntityType string          `json:"recommended_entity_type"`
	RecommendedState      string          `json:"recommended_state"`
	ExecutiveSummary      json.RawMessage `json:"executive_summary"`
	PhaseRecommendations  json.RawMessage `json:"phase_recommendations"`
	ConfidenceScore       int             `json:"confidence_score"`
	IdeationScore         int             `json:"ideation_score"`
	LegalScore            int             `json:"legal_score"`
	FinancialScore        int             `json:"financial_score"`
	LaunchPrepScore       int             `json:"launch_prep_score"`
	CreatedAt             string          `json:"created_at"`
	UpdatedAt             string          `json:"updated_at"`
}
