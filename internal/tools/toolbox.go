package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rahul/launchpad/internal/store"
)

// Toolbox is the typed face of the registry. Every call still travels
// through the JSON contract so the workflow and the model see the same tools.
type Toolbox struct {
	Registry *Registry
}

func NewToolbox(registry *Registry) *Toolbox {
	return &Toolbox{Registry: registry}
}

func (tb *Toolbox) call(ctx context.Context, name string, in any, out any) error {
	input, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s input: %w", name, err)
	}

	raw, err := tb.Registry.Invoke(ctx, name, string(input))
	if err != nil {
		return err
	}

	var env Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return fmt.Errorf("decode %s output: %w", name, err)
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "tool reported failure"
		}
		return &ContractError{Tool: name, Message: msg}
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("decode %s output: %w", name, err)
	}
	return nil
}

func (tb *Toolbox) Templates(ctx context.Context, category string) ([]store.Template, error) {
	var out TemplatesOutput
	if err := tb.call(ctx, GetTaskTemplates, TemplatesInput{Category: category}, &out); err != nil {
		return nil, err
	}
	return out.Templates, nil
}

func (tb *Toolbox) UpsertBusiness(ctx context.Context, in BusinessInput) (store.Business, error) {
	var out BusinessOutput
	if err := tb.call(ctx, CreateBusiness, in, &out); err != nil {
		return store.Business{}, err
	}
	return out.Business, nil
}

func (tb *Toolbox) CreateTasks(ctx context.Context, in TasksInput) ([]store.Task, error) {
	var out TasksOutput
	if err := tb.call(ctx, BulkCreateTasks, in, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

func (tb *Toolbox) StorePlan(ctx context.Context, in PlanInput) (store.BusinessPlan, error) {
	var out PlanOutput
	if err := tb.call(ctx, StoreBusinessPlan, in, &out); err != nil {
		return store.BusinessPlan{}, err
	}
	return out.BusinessPlan, nil
}
