// Package orchestrator turns a founder's onboarding answers into a business
// record, an AI-generated plan with confidence scores, a curated task list
// and a stored plan document.
//
// The workflow is a fixed sequence of five steps driven by Route. Each step
// reads the current State and returns an Update; Merge folds the update into
// the state. A step that fails sets State.Failure, which ends the run.
package orchestrator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rahul/launchpad/internal/store"
)

// Answers are the raw onboarding answers, keyed as the onboarding form sends them.
type Answers map[string]any

func (a Answers) str(keys ...string) string {
	for _, k := range keys {
		v, ok := a[k]
		if !ok || v == nil {
			continue
		}
		s := strings.TrimSpace(fmt.Sprint(v))
		if s != "" {
			return s
		}
	}
	return ""
}

func (a Answers) BusinessName() string { return a.str("businessName", "business_name") }
func (a Answers) Category() string     { return a.str("businessCategory", "business_category", "category") }
func (a Answers) StateCode() string    { return a.str("stateCode", "state", "state_code") }
func (a Answers) Stage() string        { return a.str("currentStage", "current_stage", "stage") }

// SessionInputs are fixed when the run starts and never change.
type SessionInputs struct {
	UserID        string  `json:"userId"`
	Answers       Answers `json:"onboardingAnswers"`
	SessionID     string  `json:"sessionId,omitempty"` // prior onboarding session
	ModelProvider string  `json:"modelProvider,omitempty"`
	ModelName     string  `json:"modelName,omitempty"`
	APIKey        string  `json:"apiKey,omitempty"`
}

// Plan is the structured plan the model produced.
type Plan struct {
	ExecutiveSummary      json.RawMessage `json:"executiveSummary"`
	RecommendedEntityType string          `json:"recommendedEntityType"`
	RecommendedState      string          `json:"recommendedState"`
	PhaseRecommendations  json.RawMessage `json:"phaseRecommendations,omitempty"`
	PlanSummary           string          `json:"planSummary"`
}

// ConfidenceScores are whole-number scores from 0 to 100.
type ConfidenceScores struct {
	Ideation   int `json:"ideation"`
	Legal      int `json:"legal"`
	Financial  int `json:"financial"`
	LaunchPrep int `json:"launchPrep"`
	Total      int `json:"total"`
}

// Message is one entry of the conversation log.
type Message struct {
	Role    string `json:"role"` // "human" or "ai"
	Content string `json:"content"`
}

// State is threaded through every step of one run. It is owned by a single
// engine invocation and never shared.
type State struct {
	RunID  string
	Inputs SessionInputs

	// Replaced wholesale by loadTemplates.
	Templates []store.Template
	// Append-only.
	Conversation []Message

	// Set once by generatePlan.
	Response *PlanResponse
	Plan     *Plan
	Scores   *ConfidenceScores

	// Write-once identifiers.
	BusinessID     string
	BusinessPlanID string
	HeroTaskID     string

	// Replaced wholesale by initializeTasks.
	CreatedTaskIDs []string

	// Steps that finished successfully. Never shrinks.
	Completed StepSet
	// Once set, the run is over.
	Failure string
}

// NewState creates a fresh state for one onboarding completion.
func NewState(runID string, in SessionInputs) State {
	return State{RunID: runID, Inputs: in}
}
