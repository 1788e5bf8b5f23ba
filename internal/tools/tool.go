package tools

import (
	"context"
	"fmt"
	"sort"

	"github.com/tmc/langchaingo/llms"
)

// Tool defines the interface for every persistence operation the workflow
// and the model can call. Input and output are JSON documents.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any // JSON Schema for the tool's inputs
	Execute(ctx context.Context, input string) (string, error)
}

// Registry manages the set of available tools.
type Registry struct {
	Tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{
		Tools: make(map[string]Tool),
	}
}

func (r *Registry) Register(t Tool) {
	r.Tools[t.Name()] = t
}

func (r *Registry) Get(name string) Tool {
	return r.Tools[name]
}

// List returns the registered tools ordered by name.
func (r *Registry) List() []Tool {
	names := make([]string, 0, len(r.Tools))
	for name := range r.Tools {
		names = append(names, name)
	}
	sort.Strings(names)

	list := make([]Tool, 0, len(names))
	for _, name := range names {
		list = append(list, r.Tools[name])
	}
	return list
}

// Invoke executes the named tool with a JSON input.
func (r *Registry) Invoke(ctx context.Context, name string, input string) (string, error) {
	t := r.Get(name)
	if t == nil {
		return "", fmt.Errorf("tool %s not found", name)
	}
	return t.Execute(ctx, input)
}

// Definitions renders the registry as function tools for the model.
func (r *Registry) Definitions() []llms.Tool {
	var defs []llms.Tool
	for _, t := range r.List() {
		defs = append(defs, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}

// NewDefaultRegistry registers the four onboarding contracts against one store.
func NewDefaultRegistry(s Store, cache *TemplateCache) *Registry {
	r := NewRegistry()
	r.Register(NewTemplatesTool(s, cache))
	r.Register(NewBusinessTool(s))
	r.Register(NewTasksTool(s))
	r.Register(NewPlanTool(s))
	return r
}
