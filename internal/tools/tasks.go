package tools

import (
	"context"
)

type TasksTool struct {
	Store Store
}

func NewTasksTool(s Store) *TasksTool {
	return &TasksTool{Store: s}
}

func (t *TasksTool) Name() string {
	return BulkCreateTasks
}

func (t *TasksTool) Description() string {
	return "Instantiate one task per template id for the user's business."
}

func (t *TasksTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"userId": map[string]any{
				"type":        "string",
				"description": "The owner of the business",
			},
			"businessId": map[string]any{
				"type":        "string",
				"description": "The business the tasks belong to",
			},
			"templateIds": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Template ids to instantiate, in display order",
			},
		},
		"required": []string{"userId", "businessId", "templateIds"},
	}
}

func (t *TasksTool) Execute(ctx context.Context, input string) (string, error) {
	var args TasksInput
	if err := decode(input, &args); err != nil {
		return "", err
	}

	if args.UserID == "" || args.BusinessID == "" {
		return failure("userId and businessId are required")
	}
	if len(args.TemplateIDs) == 0 {
		return failure("templateIds must not be empty")
	}

	tasks, err := t.Store.CreateTasks(ctx, args.UserID, args.BusinessID, args.TemplateIDs)
	if err != nil {
		return failure("failed to create tasks: %v", err)
	}
	if len(tasks) == 0 {
		return failure("none of the %d template ids matched a known template", len(args.TemplateIDs))
	}

	return success(TasksOutput{Envelope: Envelope{Success: true}, Tasks: tasks})
}
