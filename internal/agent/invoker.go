package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	convdomain "github.com/luizpibo/WorkHub-AI/internal/conversations/domain"
	"github.com/luizpibo/WorkHub-AI/platform/config"
	"github.com/luizpibo/WorkHub-AI/platform/logger"
)

// Classified invocation failures. The orchestrator maps each to a fixed
// user-facing message; the technical detail stays in the logs.
var (
	ErrRateLimited     = errors.New("agent provider rate limited")
	ErrTimeout         = errors.New("agent invocation timed out")
	ErrUpstream        = errors.New("agent provider failed")
	ErrMalformedOutput = errors.New("agent returned malformed output")
)

// rateLimitRetries bounds the invoker's own retry budget on 429 responses.
// Whole-message retries are the caller's decision, never automatic here.
const rateLimitRetries = 3

type completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// InvokeRequest is one orchestrated turn handed to the model.
type InvokeRequest struct {
	SystemPrompt string
	History      []convdomain.Message
	UserMessage  string
	Tools        []Tool
	Scope        Scope
}

// ToolTrace records one tool invocation for the message trace.
type ToolTrace struct {
	Tool      string `json:"tool"`
	Arguments string `json:"arguments"`
	Result    string `json:"result,omitempty"`
	Error     string `json:"error,omitempty"`
}

// InvokeResult is the model's final answer plus the tool trace.
type InvokeResult struct {
	Output string
	Trace  []ToolTrace
}

// TraceJSON renders the tool trace for message persistence. Returns nil
// when no tools ran.
func (r *InvokeResult) TraceJSON() json.RawMessage {
	if len(r.Trace) == 0 {
		return nil
	}
	b, err := json.Marshal(r.Trace)
	if err != nil {
		return nil
	}
	return b
}

// Invoker drives the tool-calling loop against an OpenAI-compatible
// provider within a fixed wall-clock budget.
type Invoker struct {
	client        completer
	model         string
	timeout       time.Duration
	maxIterations int
	retryBackoff  time.Duration
	log           *logger.Logger
}

func NewInvoker(cfg config.AgentConfig, log *logger.Logger) *Invoker {
	clientCfg := openai.DefaultConfig(cfg.GetOpenAIAPIKey())
	if base := cfg.GetOpenAIBaseURL(); base != "" {
		clientCfg.BaseURL = base
	}

	return &Invoker{
		client:        openai.NewClientWithConfig(clientCfg),
		model:         cfg.GetAgentModel(),
		timeout:       cfg.GetAgentTimeout(),
		maxIterations: cfg.GetAgentMaxToolIterations(),
		retryBackoff:  time.Second,
		log:           log,
	}
}

// Invoke runs the conversation turn. Tool errors are fed back to the model
// as tool results; only transport-level failures abort the turn.
func (inv *Invoker) Invoke(ctx context.Context, req InvokeRequest) (*InvokeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, inv.timeout)
	defer cancel()

	messages := buildMessages(req)
	tools, index := convertTools(req.Tools)

	result := &InvokeResult{}
	for iteration := 0; iteration < inv.maxIterations; iteration++ {
		resp, err := inv.complete(ctx, openai.ChatCompletionRequest{
			Model:    inv.model,
			Messages: messages,
			Tools:    tools,
		})
		if err != nil {
			return nil, err
		}
		if len(resp.Choices) == 0 {
			return nil, ErrMalformedOutput
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			result.Output = msg.Content
			return result, nil
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			trace := ToolTrace{Tool: call.Function.Name, Arguments: call.Function.Arguments}

			output, err := inv.executeTool(ctx, index, req.Scope, call)
			if err != nil {
				trace.Error = err.Error()
				output = toolJSON(map[string]string{"error": err.Error()})
			} else {
				trace.Result = output
			}
			result.Trace = append(result.Trace, trace)

			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    output,
				ToolCallID: call.ID,
			})
		}
	}

	inv.log.Error("agent exceeded tool iteration budget", "iterations", inv.maxIterations)
	return nil, fmt.Errorf("%w: tool iteration budget exhausted", ErrUpstream)
}

// complete calls the provider, retrying only rate-limit responses within a
// small bounded budget.
func (inv *Invoker) complete(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= rateLimitRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * inv.retryBackoff
			select {
			case <-ctx.Done():
				return openai.ChatCompletionResponse{}, classifyErr(ctx.Err())
			case <-time.After(backoff):
			}
		}

		resp, err := inv.client.CreateChatCompletion(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !isRateLimit(err) {
			return openai.ChatCompletionResponse{}, classifyErr(err)
		}
	}
	return openai.ChatCompletionResponse{}, fmt.Errorf("%w: %v", ErrRateLimited, lastErr)
}

func (inv *Invoker) executeTool(ctx context.Context, index map[string]Tool, scope Scope, call openai.ToolCall) (string, error) {
	tool, ok := index[call.Function.Name]
	if !ok {
		return "", fmt.Errorf("unknown tool %q", call.Function.Name)
	}
	return tool.Execute(ctx, scope, json.RawMessage(call.Function.Arguments))
}

func buildMessages(req InvokeRequest) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: req.SystemPrompt,
	})
	for _, m := range req.History {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserMessage,
	})
	return messages
}

func convertTools(tools []Tool) ([]openai.Tool, map[string]Tool) {
	out := make([]openai.Tool, 0, len(tools))
	index := make(map[string]Tool, len(tools))
	for _, t := range tools {
		index[t.Name()] = t
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return out, index
}

func isRateLimit(err error) bool {
	var apiErr *openai.APIError
	return errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429
}

func classifyErr(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
}
