package orchestrator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
)

var (
	// ErrNoJSON means the model text contains nothing that looks like a JSON object.
	ErrNoJSON = errors.New("no JSON object found in AI response")
	// ErrMissingFields means the JSON parsed but lacks a required field.
	ErrMissingFields = errors.New("AI response missing required fields")
)

var (
	fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	bareJSON   = regexp.MustCompile(`(?s)\{.*\}`)
)

// RawScores are the confidence scores as the model wrote them.
type RawScores struct {
	Ideation   float64 `json:"ideation"`
	Legal      float64 `json:"legal"`
	Financial  float64 `json:"financial"`
	LaunchPrep float64 `json:"launchPrep"`
	Total      float64 `json:"total"`
}

// PlanResponse is the model's full structured answer, produced once by
// extraction. generatePlan reads the plan and scores from it; initializeTasks
// reads the template selection.
type PlanResponse struct {
	ExecutiveSummary      json.RawMessage `json:"executiveSummary"`
	RecommendedEntityType string          `json:"recommendedEntityType"`
	RecommendedState      string          `json:"recommendedState"`
	PhaseRecommendations  json.RawMessage `json:"phaseRecommendations"`
	ConfidenceScores      *RawScores      `json:"confidenceScores"`
	SelectedTemplateIDs   []string        `json:"selectedTemplateIds"`
	HeroTemplateID        string          `json:"heroTemplateId"`
	PlanSummary           string          `json:"planSummary"`
}

// ExtractJSON pulls the JSON object out of free-form model text: a fenced
// code block if present, otherwise everything from the first '{' to the last '}'.
func ExtractJSON(text string) (string, error) {
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		if body := strings.TrimSpace(m[1]); body != "" {
			return body, nil
		}
	}
	if m := bareJSON.FindString(text); m != "" {
		return m, nil
	}
	return "", ErrNoJSON
}

// ParsePlanResponse extracts, decodes and validates the model's answer.
func ParsePlanResponse(text string) (*PlanResponse, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	var resp PlanResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse AI response JSON: %w", err)
	}
	if err := resp.Validate(); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Validate checks that every field the workflow depends on is present.
func (r *PlanResponse) Validate() error {
	var missing []string
	if !isObject(r.ExecutiveSummary) {
		missing = append(missing, "executiveSummary")
	}
	if strings.TrimSpace(r.RecommendedEntityType) == "" {
		missing = append(missing, "recommendedEntityType")
	}
	if r.ConfidenceScores == nil {
		missing = append(missing, "confidenceScores")
	}
	if len(r.selected()) == 0 {
		missing = append(missing, "selectedTemplateIds")
	}
	if strings.TrimSpace(r.PlanSummary) == "" {
		missing = append(missing, "planSummary")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}
	return nil
}

// selected returns the non-blank selected template ids.
func (r *PlanResponse) selected() []string {
	var ids []string
	for _, id := range r.SelectedTemplateIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Plan returns the persisted part of the response.
func (r *PlanResponse) Plan() *Plan {
	return &Plan{
		ExecutiveSummary:      r.ExecutiveSummary,
		RecommendedEntityType: r.RecommendedEntityType,
		RecommendedState:      r.RecommendedState,
		PhaseRecommendations:  r.PhaseRecommendations,
		PlanSummary:           r.PlanSummary,
	}
}

// Scores rounds every confidence score to the nearest whole number in [0, 100].
func (r *PlanResponse) Scores() *ConfidenceScores {
	if r.ConfidenceScores == nil {
		return nil
	}
	s := r.ConfidenceScores
	return &ConfidenceScores{
		Ideation:   roundScore(s.Ideation),
		Legal:      roundScore(s.Legal),
		Financial:  roundScore(s.Financial),
		LaunchPrep: roundScore(s.LaunchPrep),
		Total:      roundScore(s.Total),
	}
}

func roundScore(v float64) int {
	return int(math.Max(0, math.Min(100, math.Round(v))))
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
