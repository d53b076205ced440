package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/google/uuid"

	"github.com/luizpibo/WorkHub-AI/platform/logger"
)

type scriptedCompleter struct {
	responses []openai.ChatCompletionResponse
	errs      []error
	calls     int
	requests  []openai.ChatCompletionRequest
}

func (s *scriptedCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.requests = append(s.requests, req)
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return openai.ChatCompletionResponse{}, s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return openai.ChatCompletionResponse{}, errors.New("script exhausted")
}

func textResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
		},
	}
}

func toolCallResponse(name, args string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{
				Role: openai.ChatMessageRoleAssistant,
				ToolCalls: []openai.ToolCall{
					{ID: "call_1", Type: openai.ToolTypeFunction, Function: openai.FunctionCall{Name: name, Arguments: args}},
				},
			}},
		},
	}
}

func newTestInvoker(client completer, maxIterations int) *Invoker {
	return &Invoker{
		client:        client,
		model:         "gpt-4o-mini",
		timeout:       5 * time.Second,
		maxIterations: maxIterations,
		retryBackoff:  time.Millisecond,
		log:           logger.New("development"),
	}
}

func TestInvokeReturnsDirectAnswer(t *testing.T) {
	client := &scriptedCompleter{responses: []openai.ChatCompletionResponse{textResponse("Ola! Como posso ajudar?")}}
	inv := newTestInvoker(client, 5)

	result, err := inv.Invoke(context.Background(), InvokeRequest{
		SystemPrompt: "voce e um agente de vendas",
		UserMessage:  "oi",
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if result.Output != "Ola! Como posso ajudar?" {
		t.Fatalf("output = %q", result.Output)
	}
	if len(result.Trace) != 0 {
		t.Fatalf("trace = %v, want empty", result.Trace)
	}

	first := client.requests[0].Messages[0]
	if first.Role != openai.ChatMessageRoleSystem || first.Content != "voce e um agente de vendas" {
		t.Fatalf("system message = %+v", first)
	}
}

func TestInvokeExecutesToolAndRecordsTrace(t *testing.T) {
	executed := false
	var gotScope Scope
	tool := &funcTool{
		name:        "list_plans",
		description: "lista planos",
		parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
		execute: func(_ context.Context, scope Scope, _ json.RawMessage) (string, error) {
			executed = true
			gotScope = scope
			return `{"plans":[]}`, nil
		},
	}

	client := &scriptedCompleter{responses: []openai.ChatCompletionResponse{
		toolCallResponse("list_plans", "{}"),
		textResponse("Temos dois planos disponiveis."),
	}}
	inv := newTestInvoker(client, 5)

	scope := Scope{TenantID: uuid.New(), UserID: uuid.New(), ConversationID: uuid.New()}
	result, err := inv.Invoke(context.Background(), InvokeRequest{
		SystemPrompt: "vendas",
		UserMessage:  "quais planos?",
		Tools:        []Tool{tool},
		Scope:        scope,
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if !executed {
		t.Fatal("tool was not executed")
	}
	if gotScope != scope {
		t.Fatalf("tool scope = %+v, want %+v", gotScope, scope)
	}
	if result.Output != "Temos dois planos disponiveis." {
		t.Fatalf("output = %q", result.Output)
	}
	if len(result.Trace) != 1 || result.Trace[0].Tool != "list_plans" || result.Trace[0].Result == "" {
		t.Fatalf("trace = %+v", result.Trace)
	}

	// The tool result must be fed back as a tool-role message.
	second := client.requests[1].Messages
	last := second[len(second)-1]
	if last.Role != openai.ChatMessageRoleTool || last.ToolCallID != "call_1" {
		t.Fatalf("tool feedback message = %+v", last)
	}
}

func TestInvokeToolErrorIsReportedToModel(t *testing.T) {
	tool := &funcTool{
		name:       "update_funnel_stage",
		parameters: json.RawMessage(`{"type":"object","properties":{}}`),
		execute: func(_ context.Context, _ Scope, _ json.RawMessage) (string, error) {
			return "", errors.New("unknown funnel stage")
		},
	}

	client := &scriptedCompleter{responses: []openai.ChatCompletionResponse{
		toolCallResponse("update_funnel_stage", `{"stage":"bogus"}`),
		textResponse("Desculpe, nao consegui atualizar."),
	}}
	inv := newTestInvoker(client, 5)

	result, err := inv.Invoke(context.Background(), InvokeRequest{UserMessage: "avanca", Tools: []Tool{tool}})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if len(result.Trace) != 1 || result.Trace[0].Error == "" {
		t.Fatalf("trace = %+v, want recorded tool error", result.Trace)
	}
}

func TestInvokeRateLimitExhaustsRetryBudget(t *testing.T) {
	rateLimit := &openai.APIError{HTTPStatusCode: 429, Message: "rate limited"}
	client := &scriptedCompleter{errs: []error{rateLimit, rateLimit, rateLimit, rateLimit}}
	inv := newTestInvoker(client, 5)

	_, err := inv.Invoke(context.Background(), InvokeRequest{UserMessage: "oi"})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("error = %v, want ErrRateLimited", err)
	}
	if client.calls != rateLimitRetries+1 {
		t.Fatalf("provider calls = %d, want %d", client.calls, rateLimitRetries+1)
	}
}

func TestInvokeClassifiesUpstreamFailure(t *testing.T) {
	client := &scriptedCompleter{errs: []error{&openai.APIError{HTTPStatusCode: 500, Message: "boom"}}}
	inv := newTestInvoker(client, 5)

	_, err := inv.Invoke(context.Background(), InvokeRequest{UserMessage: "oi"})
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("error = %v, want ErrUpstream", err)
	}
	if client.calls != 1 {
		t.Fatalf("provider calls = %d, want no retry on 500", client.calls)
	}
}

func TestInvokeIterationBudget(t *testing.T) {
	tool := &funcTool{
		name:       "list_plans",
		parameters: json.RawMessage(`{"type":"object","properties":{}}`),
		execute: func(_ context.Context, _ Scope, _ json.RawMessage) (string, error) {
			return "{}", nil
		},
	}

	// The model keeps asking for tools and never answers.
	client := &scriptedCompleter{responses: []openai.ChatCompletionResponse{
		toolCallResponse("list_plans", "{}"),
		toolCallResponse("list_plans", "{}"),
		toolCallResponse("list_plans", "{}"),
	}}
	inv := newTestInvoker(client, 3)

	_, err := inv.Invoke(context.Background(), InvokeRequest{UserMessage: "oi", Tools: []Tool{tool}})
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("error = %v, want ErrUpstream after budget", err)
	}
}
