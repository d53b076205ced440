// Package service orchestrates one chat turn: resolve the user, resolve the
// conversation, gate on handoff, route to a persona, invoke the agent and
// persist the exchange.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/luizpibo/WorkHub-AI/internal/agent"
	"github.com/luizpibo/WorkHub-AI/internal/chat/transport"
	convdomain "github.com/luizpibo/WorkHub-AI/internal/conversations/domain"
	identitydomain "github.com/luizpibo/WorkHub-AI/internal/identity/domain"
	promptdomain "github.com/luizpibo/WorkHub-AI/internal/prompts/domain"
	tenantdomain "github.com/luizpibo/WorkHub-AI/internal/tenants/domain"
	"github.com/luizpibo/WorkHub-AI/platform/apperr"
	"github.com/luizpibo/WorkHub-AI/platform/logger"
)

// Fixed user-facing messages. The end user never sees raw provider errors.
const (
	msgTransferredWithReason = "Sua conversa foi transferida para um atendente humano (motivo: %s). Aguarde, em breve alguem continuara o atendimento."
	msgTransferred           = "Sua conversa foi transferida para um atendente humano. Aguarde, em breve alguem continuara o atendimento."
	msgRateLimited           = "Estamos recebendo muitas mensagens neste momento. Tente novamente em alguns instantes."
	msgTimeout               = "Nao consegui preparar uma resposta a tempo. Pode enviar sua mensagem novamente?"
	msgUpstream              = "Tive um problema tecnico para responder. Tente novamente em alguns instantes."
)

// IdentityResolver resolves the end user inside the tenant.
type IdentityResolver interface {
	Resolve(ctx context.Context, tenantID uuid.UUID, userKey string, displayName *string) (identitydomain.User, error)
}

// ConversationOps is the slice of the conversations service the
// orchestrator uses directly.
type ConversationOps interface {
	GetOrCreateActive(ctx context.Context, tenantID, userID uuid.UUID) (*convdomain.Conversation, bool, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*convdomain.Conversation, error)
	Append(ctx context.Context, tenantID, conversationID uuid.UUID, role convdomain.MessageRole, content string) (*convdomain.Message, error)
	AppendTraced(ctx context.Context, tenantID, conversationID uuid.UUID, role convdomain.MessageRole, content string, trace json.RawMessage) (*convdomain.Message, error)
	History(ctx context.Context, tenantID, conversationID uuid.UUID, limit int) ([]convdomain.Message, error)
}

// PromptSource loads the tenant's active prompt and knowledge base.
type PromptSource interface {
	ActivePrompt(ctx context.Context, tenantID uuid.UUID, promptType promptdomain.PromptType) (promptdomain.PromptTemplate, error)
	ActiveKnowledge(ctx context.Context, tenantID uuid.UUID) ([]promptdomain.KnowledgeDocument, error)
}

// Invoker runs one agent turn.
type Invoker interface {
	Invoke(ctx context.Context, req agent.InvokeRequest) (*agent.InvokeResult, error)
}

type Service struct {
	identity      IdentityResolver
	conversations ConversationOps
	prompts       PromptSource
	router        *agent.Router
	toolset       *agent.Toolset
	invoker       Invoker
	locks         *conversationLocks
	log           *logger.Logger
}

func New(identity IdentityResolver, conversations ConversationOps, prompts PromptSource, router *agent.Router, toolset *agent.Toolset, invoker Invoker, log *logger.Logger) *Service {
	return &Service{
		identity:      identity,
		conversations: conversations,
		prompts:       prompts,
		router:        router,
		toolset:       toolset,
		invoker:       invoker,
		locks:         newConversationLocks(),
		log:           log,
	}
}

// HandleMessage processes one inbound end-user message for the
// authenticated tenant. The inbound message is persisted before the agent
// is invoked so a provider failure never loses it.
func (s *Service) HandleMessage(ctx context.Context, tenant tenantdomain.Tenant, req transport.ChatRequest) (*transport.ChatResponse, error) {
	user, err := s.identity.Resolve(ctx, tenant.ID, req.UserKey, req.UserName)
	if err != nil {
		return nil, err
	}

	conv, err := s.resolveConversation(ctx, tenant.ID, user.ID, req.ConversationID)
	if err != nil {
		return nil, err
	}

	if !s.locks.TryAcquire(conv.ID) {
		return nil, apperr.Conflict("another message is being processed for this conversation")
	}
	defer s.locks.Release(conv.ID)

	// History is captured before the append so the inbound message is not
	// duplicated in the model context.
	history, err := s.conversations.History(ctx, tenant.ID, conv.ID, 0)
	if err != nil {
		return nil, err
	}
	if _, err := s.conversations.Append(ctx, tenant.ID, conv.ID, convdomain.RoleUser, req.Message); err != nil {
		return nil, err
	}

	// Gate check: a handed-off conversation still records the message but
	// never reaches the agent.
	if conv.Blocked() {
		return s.blockedResponse(conv, user), nil
	}

	persona := s.router.Select(tenant.Settings, user.Name)
	systemPrompt, err := s.buildSystemPrompt(ctx, tenant, user, conv, persona)
	if err != nil {
		return nil, err
	}

	result, err := s.invoker.Invoke(ctx, agent.InvokeRequest{
		SystemPrompt: systemPrompt,
		History:      history,
		UserMessage:  req.Message,
		Tools:        s.toolset.ToolsFor(persona),
		Scope: agent.Scope{
			TenantID:       tenant.ID,
			UserID:         user.ID,
			ConversationID: conv.ID,
		},
	})
	if err != nil {
		return s.failureResponse(ctx, tenant, user, conv, err)
	}

	// Tools may have moved status or stage; reload before replying.
	conv, err = s.conversations.GetByID(ctx, tenant.ID, conv.ID)
	if err != nil {
		return nil, err
	}

	output := strings.TrimSpace(result.Output)
	if output == "" {
		s.log.Error("agent returned empty output",
			"tenant_id", tenant.ID.String(),
			"conversation_id", conv.ID.String())
		return s.failureResponse(ctx, tenant, user, conv, agent.ErrMalformedOutput)
	}

	if _, err := s.conversations.AppendTraced(ctx, tenant.ID, conv.ID, convdomain.RoleAssistant, output, result.TraceJSON()); err != nil {
		return nil, err
	}

	s.log.AgentEvent("agent_reply", tenant.ID.String(), conv.ID.String(), len(result.Trace))

	return &transport.ChatResponse{
		Response:       output,
		ConversationID: conv.ID,
		UserID:         user.ID,
		Status:         string(conv.Status),
		FunnelStage:    string(conv.FunnelStage),
		Blocked:        conv.Blocked(),
		HandoffReason:  conv.HandoffReason,
	}, nil
}

// resolveConversation finds the conversation for this turn. An unknown or
// terminal conversation id falls through to get-or-create rather than
// erroring: the client keeps chatting, on a fresh thread.
func (s *Service) resolveConversation(ctx context.Context, tenantID, userID uuid.UUID, requested *uuid.UUID) (*convdomain.Conversation, error) {
	if requested != nil {
		conv, err := s.conversations.GetByID(ctx, tenantID, *requested)
		switch {
		case err == nil && conv.UserID == userID && !conv.Status.IsTerminal():
			return conv, nil
		case err != nil && !apperr.Is(err, apperr.KindNotFound):
			return nil, err
		}
	}

	conv, _, err := s.conversations.GetOrCreateActive(ctx, tenantID, userID)
	return conv, err
}

func (s *Service) buildSystemPrompt(ctx context.Context, tenant tenantdomain.Tenant, user identitydomain.User, conv *convdomain.Conversation, persona agent.Persona) (string, error) {
	template := defaultPrompt(persona, tenant.Name)
	prompt, err := s.prompts.ActivePrompt(ctx, tenant.ID, persona.PromptType())
	switch {
	case err == nil:
		template = prompt.Content
	case !apperr.Is(err, apperr.KindNotFound):
		return "", err
	}

	var docs []promptdomain.KnowledgeDocument
	if persona == agent.PersonaSales {
		docs, err = s.prompts.ActiveKnowledge(ctx, tenant.ID)
		if err != nil {
			return "", err
		}
	}

	return agent.BuildSystemPrompt(template, docs, agent.ContextVars{
		TenantName:     tenant.Name,
		UserName:       user.Name,
		FunnelStage:    string(conv.FunnelStage),
		ContextSummary: conv.ContextSummary,
	}), nil
}

func (s *Service) blockedResponse(conv *convdomain.Conversation, user identitydomain.User) *transport.ChatResponse {
	notice := msgTransferred
	if conv.HandoffReason != nil && *conv.HandoffReason != "" {
		notice = fmt.Sprintf(msgTransferredWithReason, *conv.HandoffReason)
	}
	return &transport.ChatResponse{
		Response:       notice,
		ConversationID: conv.ID,
		UserID:         user.ID,
		Status:         string(conv.Status),
		FunnelStage:    string(conv.FunnelStage),
		Blocked:        true,
		HandoffReason:  conv.HandoffReason,
	}
}

// failureResponse maps a classified agent failure to its fixed apology.
// The apology is not persisted as an assistant turn, so a resubmit replays
// cleanly. The technical detail stays in the logs.
func (s *Service) failureResponse(ctx context.Context, tenant tenantdomain.Tenant, user identitydomain.User, conv *convdomain.Conversation, invokeErr error) (*transport.ChatResponse, error) {
	if errors.Is(invokeErr, context.Canceled) {
		return nil, invokeErr
	}

	var message string
	switch {
	case errors.Is(invokeErr, agent.ErrRateLimited):
		message = msgRateLimited
	case errors.Is(invokeErr, agent.ErrTimeout):
		message = msgTimeout
	default:
		message = msgUpstream
	}

	s.log.Error("agent invocation failed",
		"tenant_id", tenant.ID.String(),
		"conversation_id", conv.ID.String(),
		"error", invokeErr.Error())

	// Reload so tool side effects applied before the failure are reflected.
	if updated, err := s.conversations.GetByID(ctx, tenant.ID, conv.ID); err == nil {
		conv = updated
	}

	return &transport.ChatResponse{
		Response:       message,
		ConversationID: conv.ID,
		UserID:         user.ID,
		Status:         string(conv.Status),
		FunnelStage:    string(conv.FunnelStage),
		Blocked:        conv.Blocked(),
		HandoffReason:  conv.HandoffReason,
	}, nil
}

func defaultPrompt(persona agent.Persona, tenantName string) string {
	if persona == agent.PersonaAdmin {
		return fmt.Sprintf("Voce e o assistente administrativo da %s. Responda em portugues, usando as ferramentas de relatorio para embasar cada resposta.", tenantName)
	}
	return fmt.Sprintf("Voce e o assistente de vendas da %s. Responda em portugues, seja prestativo e conduza o cliente ate a melhor oferta.", tenantName)
}
