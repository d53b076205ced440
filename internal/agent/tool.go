// Package agent selects the persona for a user, holds the closed tool
// registry each persona may call, and drives the LLM invocation loop.
package agent

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// Scope carries the tenant boundary into every tool execution. Every read
// and write a tool performs must be filtered by Scope.TenantID.
type Scope struct {
	TenantID       uuid.UUID
	UserID         uuid.UUID
	ConversationID uuid.UUID
}

// Tool is one capability the model may call. The set of tools is closed:
// tools are constructed in this package and handed to the invoker per
// persona, never discovered dynamically.
type Tool interface {
	Name() string
	Description() string
	// Parameters returns the JSON schema for the tool's arguments.
	Parameters() json.RawMessage
	Execute(ctx context.Context, scope Scope, args json.RawMessage) (string, error)
}

// funcTool adapts a closure into a Tool.
type funcTool struct {
	name        string
	description string
	parameters  json.RawMessage
	execute     func(ctx context.Context, scope Scope, args json.RawMessage) (string, error)
}

func (t *funcTool) Name() string                { return t.name }
func (t *funcTool) Description() string         { return t.description }
func (t *funcTool) Parameters() json.RawMessage { return t.parameters }

func (t *funcTool) Execute(ctx context.Context, scope Scope, args json.RawMessage) (string, error) {
	return t.execute(ctx, scope, args)
}

// toolJSON renders a tool result for the model. Errors inside a tool are
// reported to the model as text rather than aborting the whole turn.
func toolJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return `{"error":"internal serialization failure"}`
	}
	return string(b)
}
