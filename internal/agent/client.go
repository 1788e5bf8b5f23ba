package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/rahul/launchpad/internal/governance"
	"github.com/rahul/launchpad/internal/observability"
	"github.com/rahul/launchpad/internal/tools"
	"github.com/tmc/langchaingo/llms"
)

// ContentPart is one ordered segment of a model response.
type ContentPart struct {
	Type string `json:"type"` // "text" or "tool_use"
	Text string `json:"text,omitempty"`
	Tool string `json:"tool,omitempty"`
}

// Response is what the inference client hands back to the workflow.
type Response struct {
	Content []ContentPart
}

// Text concatenates every text segment in order.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Content {
		if p.Type == "text" {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// Request is a single inference call.
type Request struct {
	SessionID    string
	SystemPrompt string
	Tools        []llms.Tool
	Messages     []llms.MessageContent
}

// Client invokes a large language model.
type Client interface {
	Invoke(ctx context.Context, req Request) (*Response, error)
}

// LLMClient is a Client over a langchaingo model. Tool calls the model makes
// are checked against Policy and, when allowed, executed through Registry so
// the model can look things up before answering.
type LLMClient struct {
	Model     llms.Model
	ModelName string
	Registry  *tools.Registry
	Policy    governance.PolicyEngine
	Logger    *observability.Logger
	MaxRounds int
}

func NewLLMClient(model llms.Model, modelName string, registry *tools.Registry, policy governance.PolicyEngine, logger *observability.Logger, maxRounds int) *LLMClient {
	if maxRounds <= 0 {
		maxRounds = 1
	}
	return &LLMClient{
		Model:     model,
		ModelName: modelName,
		Registry:  registry,
		Policy:    policy,
		Logger:    logger,
		MaxRounds: maxRounds,
	}
}

// WithModel returns a copy of the client bound to a different model.
func (c *LLMClient) WithModel(model llms.Model, modelName string) *LLMClient {
	clone := *c
	clone.Model = model
	clone.ModelName = modelName
	return &clone
}

func (c *LLMClient) Invoke(ctx context.Context, req Request) (*Response, error) {
	if c.Model == nil {
		return nil, errors.New("no language model configured")
	}

	var messages []llms.MessageContent
	if req.SystemPrompt != "" {
		messages = append(messages, llms.MessageContent{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(req.SystemPrompt)},
		})
	}
	messages = append(messages, req.Messages...)

	var opts []llms.CallOption
	if len(req.Tools) > 0 {
		opts = append(opts, llms.WithTools(req.Tools))
	}

	for round := 0; round < c.MaxRounds; round++ {
		resp, err := c.Model.GenerateContent(ctx, messages, opts...)
		if err != nil {
			return nil, err
		}
		if len(resp.Choices) == 0 {
			return nil, errors.New("empty response from model")
		}

		out := &Response{}
		var calls []llms.ToolCall
		for _, choice := range resp.Choices {
			if choice.Content != "" {
				out.Content = append(out.Content, ContentPart{Type: "text", Text: choice.Content})
			}
			for _, tc := range choice.ToolCalls {
				if tc.FunctionCall == nil {
					continue
				}
				calls = append(calls, tc)
				out.Content = append(out.Content, ContentPart{Type: "tool_use", Tool: tc.FunctionCall.Name})
			}
			c.logUsage(req.SessionID, choice.GenerationInfo)
		}
		c.Logger.LogLLM(req.SessionID, lastHumanText(messages), out.Text(), calls)

		if len(calls) == 0 {
			return out, nil
		}
		if round == c.MaxRounds-1 {
			// Out of rounds: keep whatever text came with the tool calls.
			if out.Text() != "" {
				return out, nil
			}
			break
		}

		for _, tc := range calls {
			result := c.runTool(ctx, req.SessionID, tc)
			messages = append(messages,
				llms.MessageContent{
					Role:  llms.ChatMessageTypeAI,
					Parts: []llms.ContentPart{tc},
				},
				llms.MessageContent{
					Role: llms.ChatMessageTypeTool,
					Parts: []llms.ContentPart{
						llms.ToolCallResponse{
							ToolCallID: tc.ID,
							Name:       tc.FunctionCall.Name,
							Content:    result,
						},
					},
				},
			)
		}
	}

	return nil, fmt.Errorf("model did not produce a final answer within %d tool rounds", c.MaxRounds)
}

// runTool executes one model-initiated tool call and returns the text fed
// back to the model. Errors are reported to the model, not to the caller.
func (c *LLMClient) runTool(ctx context.Context, sessionID string, tc llms.ToolCall) string {
	name, args := tc.FunctionCall.Name, tc.FunctionCall.Arguments

	ctx, span := observability.StartToolCallSpan(ctx, tc.ID, name)
	var failure string
	defer func() { observability.EndSpan(span, failure) }()

	if c.Policy != nil {
		decision, err := c.Policy.Evaluate(ctx, governance.Request{Tool: name, Arguments: args, SessionID: sessionID})
		if err != nil {
			failure = err.Error()
			return fmt.Sprintf("Error: policy evaluation failed: %v", err)
		}
		c.Logger.LogPolicyCheck(sessionID, name, string(decision.Effect), decision.Reason)
		if decision.Effect == governance.EffectDeny {
			failure = decision.Reason
			return "Error: " + decision.Reason
		}
	}

	if c.Registry == nil || c.Registry.Get(name) == nil {
		failure = "unknown tool"
		return fmt.Sprintf("Error: Tool %s not found", name)
	}

	c.Logger.LogToolCall(sessionID, "generatePlan", name, args)
	res, err := c.Registry.Invoke(ctx, name, args)
	if err != nil {
		log.Printf("[agent] tool %s failed: %v", name, err)
		failure = err.Error()
		res = fmt.Sprintf("Error: %v", err)
	}
	c.Logger.LogToolResult(sessionID, "generatePlan", name, res)
	return res
}

func (c *LLMClient) logUsage(sessionID string, info map[string]any) {
	if info == nil {
		return
	}
	prompt := intField(info, "PromptTokens", "InputTokens")
	completion := intField(info, "CompletionTokens", "OutputTokens")
	if prompt == 0 && completion == 0 {
		return
	}
	c.Logger.LogCost(sessionID, prompt, completion, c.ModelName)
}

func intField(info map[string]any, keys ...string) int {
	for _, k := range keys {
		switch v := info[k].(type) {
		case int:
			return v
		case int32:
			return int(v)
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return 0
}

func lastHumanText(messages []llms.MessageContent) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != llms.ChatMessageTypeHuman {
			continue
		}
		for _, p := range messages[i].Parts {
			if tc, ok := p.(llms.TextContent); ok {
				return tc.Text
			}
		}
	}
	return ""
}
