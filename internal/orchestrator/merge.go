package orchestrator

import "github.com/rahul/launchpad/internal/store"

// Update is the partial state a step returns. Zero values mean "no change";
// Merge documents how each field is applied.
type Update struct {
	Templates      []store.Template
	Messages       []Message
	Response       *PlanResponse
	Plan           *Plan
	Scores         *ConfidenceScores
	BusinessID     string
	BusinessPlanID string
	HeroTaskID     string
	CreatedTaskIDs []string
	Completed      StepSet
	Failure        string
}

// Merge folds an update into a state, one rule per field:
//
//   - Templates, CreatedTaskIDs: replaced when the update carries a non-nil slice.
//   - Conversation: the update's messages are appended.
//   - Response, Plan, Scores: set only if still unset.
//   - BusinessID, BusinessPlanID, HeroTaskID: set only if still empty.
//   - Completed: union.
//   - Failure: set only if still empty, so the first failure wins.
//
// Inputs and RunID are never touched.
func Merge(st State, u Update) State {
	if u.Templates != nil {
		st.Templates = append([]store.Template(nil), u.Templates...)
	}
	if len(u.Messages) > 0 {
		conv := make([]Message, 0, len(st.Conversation)+len(u.Messages))
		conv = append(conv, st.Conversation...)
		st.Conversation = append(conv, u.Messages...)
	}
	if st.Response == nil && u.Response != nil {
		st.Response = u.Response
	}
	if st.Plan == nil && u.Plan != nil {
		st.Plan = u.Plan
	}
	if st.Scores == nil && u.Scores != nil {
		st.Scores = u.Scores
	}
	if st.BusinessID == "" {
		st.BusinessID = u.BusinessID
	}
	if st.BusinessPlanID == "" {
		st.BusinessPlanID = u.BusinessPlanID
	}
	if st.HeroTaskID == "" {
		st.HeroTaskID = u.HeroTaskID
	}
	if u.CreatedTaskIDs != nil {
		st.CreatedTaskIDs = append([]string(nil), u.CreatedTaskIDs...)
	}
	st.Completed = st.Completed.Union(u.Completed)
	if st.Failure == "" {
		st.Failure = u.Failure
	}
	return st
}
