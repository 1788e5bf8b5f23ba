package orchestrator

import "strings"

// Step is a state of the workflow machine: one of the five work steps in
// execution order, or a terminal.
type Step int

const (
	StepLoadTemplates Step = iota
	StepGeneratePlan
	StepCreateBusiness
	StepInitializeTasks
	StepStorePlan

	StepDone   // terminal: every step completed
	StepFailed // terminal: State.Failure is set
)

// Steps lists the work steps in the order they run.
var Steps = [...]Step{
	StepLoadTemplates,
	StepGeneratePlan,
	StepCreateBusiness,
	StepInitializeTasks,
	StepStorePlan,
}

var stepNames = [...]string{
	StepLoadTemplates:   "loadTemplates",
	StepGeneratePlan:    "generatePlan",
	StepCreateBusiness:  "createBusiness",
	StepInitializeTasks: "initializeTasks",
	StepStorePlan:       "storePlan",
	StepDone:            "done",
	StepFailed:          "failed",
}

func (s Step) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return "unknown"
	}
	return stepNames[s]
}

// Terminal reports whether s ends the run.
func (s Step) Terminal() bool {
	return s == StepDone || s == StepFailed
}

// StepSet is a set of work steps.
type StepSet uint8

func (ss StepSet) Has(s Step) bool {
	return s >= 0 && s < StepDone && ss&(1<<uint(s)) != 0
}

func (ss StepSet) With(s Step) StepSet {
	if s < 0 || s >= StepDone {
		return ss
	}
	return ss | 1<<uint(s)
}

func (ss StepSet) Union(other StepSet) StepSet {
	return ss | other
}

// Steps returns the members in execution order.
func (ss StepSet) Steps() []Step {
	var out []Step
	for _, s := range Steps {
		if ss.Has(s) {
			out = append(out, s)
		}
	}
	return out
}

// Names returns the member names in execution order.
func (ss StepSet) Names() []string {
	var out []string
	for _, s := range ss.Steps() {
		out = append(out, s.String())
	}
	return out
}

func (ss StepSet) String() string {
	return "{" + strings.Join(ss.Names(), ",") + "}"
}

// Route returns the next step for the state. A failure always routes to
// StepFailed; otherwise the first incomplete step in order is returned, or
// StepDone when none is left.
func Route(st State) Step {
	if st.Failure != "" {
		return StepFailed
	}
	for _, s := range Steps {
		if !st.Completed.Has(s) {
			return s
		}
	}
	return StepDone
}
