package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	analyticsdomain "github.com/luizpibo/WorkHub-AI/internal/analytics/domain"
	convdomain "github.com/luizpibo/WorkHub-AI/internal/conversations/domain"
	identitydomain "github.com/luizpibo/WorkHub-AI/internal/identity/domain"
	leaddomain "github.com/luizpibo/WorkHub-AI/internal/leads/domain"
	planstransport "github.com/luizpibo/WorkHub-AI/internal/plans/transport"
)

// UserOps is the slice of the identity service the user tool uses.
type UserOps interface {
	UpdateProfile(ctx context.Context, tenantID, id uuid.UUID, name, phone, workType *string) (identitydomain.User, error)
}

// ConversationOps is the slice of the conversations service the tools use.
type ConversationOps interface {
	UpdateStage(ctx context.Context, tenantID, conversationID uuid.UUID, stage string) (*convdomain.Conversation, error)
	UpdateContext(ctx context.Context, tenantID, conversationID uuid.UUID, summary *string, interestedPlanID *uuid.UUID) (*convdomain.Conversation, error)
	Handoff(ctx context.Context, tenantID, conversationID uuid.UUID, reason, summary string) (*convdomain.Conversation, *leaddomain.Lead, error)
	List(ctx context.Context, tenantID uuid.UUID, statusFilter string, limit, offset int) ([]convdomain.Conversation, error)
	History(ctx context.Context, tenantID, conversationID uuid.UUID, limit int) ([]convdomain.Message, error)
}

// LeadOps is the slice of the leads service the tools use. Handoff scoring
// is not here: the conversations service upserts the lead as part of the
// handoff itself.
type LeadOps interface {
	AddObjections(ctx context.Context, tenantID, conversationID uuid.UUID, tags []string) (*leaddomain.Lead, error)
	SetPreferredPlan(ctx context.Context, tenantID, conversationID, planID uuid.UUID) (*leaddomain.Lead, error)
}

// PlanOps is the slice of the plans service the tools use.
type PlanOps interface {
	ListActive(ctx context.Context, tenantID uuid.UUID) (planstransport.ListPlansResponse, error)
}

// AnalyticsOps is the slice of the analytics service the admin tools use.
type AnalyticsOps interface {
	FunnelReport(ctx context.Context, tenantID uuid.UUID) (*analyticsdomain.FunnelReport, error)
	LeadReport(ctx context.Context, tenantID uuid.UUID) (*analyticsdomain.LeadReport, error)
	Overview(ctx context.Context, tenantID uuid.UUID) (*analyticsdomain.Overview, error)
}

// Toolset builds the per-persona tool lists. Sales never sees analytics
// tools; admin never sees the customer-facing mutation tools.
type Toolset struct {
	users         UserOps
	conversations ConversationOps
	leads         LeadOps
	plans         PlanOps
	analytics     AnalyticsOps
}

func NewToolset(users UserOps, conversations ConversationOps, leads LeadOps, plans PlanOps, analytics AnalyticsOps) *Toolset {
	return &Toolset{users: users, conversations: conversations, leads: leads, plans: plans, analytics: analytics}
}

// ToolsFor returns the tool scope for a persona.
func (t *Toolset) ToolsFor(persona Persona) []Tool {
	if persona == PersonaAdmin {
		return t.adminTools()
	}
	return t.salesTools()
}

func (t *Toolset) salesTools() []Tool {
	return []Tool{
		&funcTool{
			name:        "list_plans",
			description: "Lista os planos ativos do tenant com preco e beneficios.",
			parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
			execute: func(ctx context.Context, scope Scope, _ json.RawMessage) (string, error) {
				plans, err := t.plans.ListActive(ctx, scope.TenantID)
				if err != nil {
					return "", err
				}
				return toolJSON(plans), nil
			},
		},
		&funcTool{
			name:        "update_funnel_stage",
			description: "Atualiza o estagio do funil da conversa atual.",
			parameters: json.RawMessage(`{"type":"object","properties":{
				"stage":{"type":"string","enum":["awareness","interest","consideration","negotiation","closed_won","closed_lost"]}
			},"required":["stage"]}`),
			execute: func(ctx context.Context, scope Scope, args json.RawMessage) (string, error) {
				var in struct {
					Stage string `json:"stage"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return "", fmt.Errorf("parse arguments: %w", err)
				}
				conv, err := t.conversations.UpdateStage(ctx, scope.TenantID, scope.ConversationID, in.Stage)
				if err != nil {
					return "", err
				}
				return toolJSON(map[string]string{"funnel_stage": string(conv.FunnelStage)}), nil
			},
		},
		&funcTool{
			name:        "update_context",
			description: "Atualiza o resumo da conversa e, opcionalmente, o plano de interesse do cliente.",
			parameters: json.RawMessage(`{"type":"object","properties":{
				"summary":{"type":"string"},
				"interested_plan_id":{"type":"string"}
			}}`),
			execute: func(ctx context.Context, scope Scope, args json.RawMessage) (string, error) {
				var in struct {
					Summary          *string `json:"summary"`
					InterestedPlanID *string `json:"interested_plan_id"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return "", fmt.Errorf("parse arguments: %w", err)
				}
				var planID *uuid.UUID
				if in.InterestedPlanID != nil {
					id, err := uuid.Parse(*in.InterestedPlanID)
					if err != nil {
						return "", fmt.Errorf("invalid interested_plan_id")
					}
					planID = &id
				}
				if _, err := t.conversations.UpdateContext(ctx, scope.TenantID, scope.ConversationID, in.Summary, planID); err != nil {
					return "", err
				}
				return toolJSON(map[string]string{"status": "ok"}), nil
			},
		},
		&funcTool{
			name:        "register_objections",
			description: "Registra objecoes levantadas pelo cliente no lead da conversa.",
			parameters: json.RawMessage(`{"type":"object","properties":{
				"objections":{"type":"array","items":{"type":"string"}}
			},"required":["objections"]}`),
			execute: func(ctx context.Context, scope Scope, args json.RawMessage) (string, error) {
				var in struct {
					Objections []string `json:"objections"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return "", fmt.Errorf("parse arguments: %w", err)
				}
				lead, err := t.leads.AddObjections(ctx, scope.TenantID, scope.ConversationID, in.Objections)
				if err != nil {
					return "", err
				}
				return toolJSON(map[string]any{"objections": lead.Objections}), nil
			},
		},
		&funcTool{
			name:        "set_preferred_plan",
			description: "Marca o plano preferido do cliente no lead da conversa.",
			parameters: json.RawMessage(`{"type":"object","properties":{
				"plan_id":{"type":"string"}
			},"required":["plan_id"]}`),
			execute: func(ctx context.Context, scope Scope, args json.RawMessage) (string, error) {
				var in struct {
					PlanID string `json:"plan_id"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return "", fmt.Errorf("parse arguments: %w", err)
				}
				planID, err := uuid.Parse(in.PlanID)
				if err != nil {
					return "", fmt.Errorf("invalid plan_id")
				}
				if _, err := t.leads.SetPreferredPlan(ctx, scope.TenantID, scope.ConversationID, planID); err != nil {
					return "", err
				}
				return toolJSON(map[string]string{"status": "ok"}), nil
			},
		},
		&funcTool{
			name:        "update_user",
			description: "Atualiza o cadastro do cliente atual: nome, telefone e ramo de atuacao.",
			parameters: json.RawMessage(`{"type":"object","properties":{
				"name":{"type":"string"},
				"phone":{"type":"string"},
				"work_type":{"type":"string"}
			}}`),
			execute: func(ctx context.Context, scope Scope, args json.RawMessage) (string, error) {
				var in struct {
					Name     *string `json:"name"`
					Phone    *string `json:"phone"`
					WorkType *string `json:"work_type"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return "", fmt.Errorf("parse arguments: %w", err)
				}
				user, err := t.users.UpdateProfile(ctx, scope.TenantID, scope.UserID, in.Name, in.Phone, in.WorkType)
				if err != nil {
					return "", err
				}
				return toolJSON(map[string]any{"name": user.Name, "phone": user.Phone, "work_type": user.WorkType}), nil
			},
		},
		&funcTool{
			name:        "handoff_to_human",
			description: "Transfere a conversa para um atendente humano. Use quando o cliente pedir um humano ou estiver pronto para fechar.",
			parameters: json.RawMessage(`{"type":"object","properties":{
				"reason":{"type":"string"},
				"summary":{"type":"string"}
			},"required":["reason"]}`),
			execute: func(ctx context.Context, scope Scope, args json.RawMessage) (string, error) {
				var in struct {
					Reason  string `json:"reason"`
					Summary string `json:"summary"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return "", fmt.Errorf("parse arguments: %w", err)
				}
				conv, lead, err := t.conversations.Handoff(ctx, scope.TenantID, scope.ConversationID, in.Reason, in.Summary)
				if err != nil {
					return "", err
				}
				return toolJSON(map[string]any{
					"status":     string(conv.Status),
					"lead_stage": string(lead.Stage),
					"lead_score": lead.Score,
				}), nil
			},
		},
	}
}

func (t *Toolset) adminTools() []Tool {
	return []Tool{
		&funcTool{
			name:        "sales_funnel_report",
			description: "Retorna a distribuicao das conversas do tenant por estagio do funil.",
			parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
			execute: func(ctx context.Context, scope Scope, _ json.RawMessage) (string, error) {
				report, err := t.analytics.FunnelReport(ctx, scope.TenantID)
				if err != nil {
					return "", err
				}
				return toolJSON(report), nil
			},
		},
		&funcTool{
			name:        "leads_report",
			description: "Retorna a distribuicao dos leads do tenant por estagio de qualificacao.",
			parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
			execute: func(ctx context.Context, scope Scope, _ json.RawMessage) (string, error) {
				report, err := t.analytics.LeadReport(ctx, scope.TenantID)
				if err != nil {
					return "", err
				}
				return toolJSON(report), nil
			},
		},
		&funcTool{
			name:        "tenant_overview",
			description: "Retorna os numeros gerais do tenant: usuarios, conversas, mensagens e leads.",
			parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
			execute: func(ctx context.Context, scope Scope, _ json.RawMessage) (string, error) {
				overview, err := t.analytics.Overview(ctx, scope.TenantID)
				if err != nil {
					return "", err
				}
				return toolJSON(overview), nil
			},
		},
		&funcTool{
			name:        "list_conversations",
			description: "Lista conversas recentes do tenant, com filtro opcional por status.",
			parameters: json.RawMessage(`{"type":"object","properties":{
				"status":{"type":"string","enum":["active","awaiting_human","converted","lost","abandoned"]},
				"limit":{"type":"integer"}
			}}`),
			execute: func(ctx context.Context, scope Scope, args json.RawMessage) (string, error) {
				var in struct {
					Status string `json:"status"`
					Limit  int    `json:"limit"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return "", fmt.Errorf("parse arguments: %w", err)
				}
				list, err := t.conversations.List(ctx, scope.TenantID, in.Status, in.Limit, 0)
				if err != nil {
					return "", err
				}
				return toolJSON(list), nil
			},
		},
		&funcTool{
			name:        "conversation_messages",
			description: "Retorna as mensagens de uma conversa do tenant.",
			parameters: json.RawMessage(`{"type":"object","properties":{
				"conversation_id":{"type":"string"}
			},"required":["conversation_id"]}`),
			execute: func(ctx context.Context, scope Scope, args json.RawMessage) (string, error) {
				var in struct {
					ConversationID string `json:"conversation_id"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return "", fmt.Errorf("parse arguments: %w", err)
				}
				convID, err := uuid.Parse(in.ConversationID)
				if err != nil {
					return "", fmt.Errorf("invalid conversation_id")
				}
				messages, err := t.conversations.History(ctx, scope.TenantID, convID, 100)
				if err != nil {
					return "", err
				}
				return toolJSON(messages), nil
			},
		},
	}
}
