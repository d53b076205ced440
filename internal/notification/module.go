// Package notification turns domain events into emails for the tenant's
// team. It subscribes to the event bus so the conversation and lead modules
// never need to know about email providers or templates.
package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	convdomain "github.com/luizpibo/WorkHub-AI/internal/conversations/domain"
	"github.com/luizpibo/WorkHub-AI/internal/email"
	identitydomain "github.com/luizpibo/WorkHub-AI/internal/identity/domain"
	leaddomain "github.com/luizpibo/WorkHub-AI/internal/leads/domain"
	tenantstransport "github.com/luizpibo/WorkHub-AI/internal/tenants/transport"
	"github.com/luizpibo/WorkHub-AI/platform/config"
	"github.com/luizpibo/WorkHub-AI/platform/events"
	"github.com/luizpibo/WorkHub-AI/platform/logger"
)

// TenantReader resolves the tenant for sender context and per-tenant
// notification settings.
type TenantReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (tenantstransport.TenantResponse, error)
}

// UserReader resolves the end user behind an event for display purposes.
type UserReader interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (identitydomain.User, error)
}

// Module handles all notification-related event subscriptions.
type Module struct {
	sender  email.Sender
	tenants TenantReader
	users   UserReader
	cfg     config.NotificationConfig
	log     *logger.Logger
}

func New(sender email.Sender, tenants TenantReader, users UserReader, cfg config.NotificationConfig, log *logger.Logger) *Module {
	return &Module{
		sender:  sender,
		tenants: tenants,
		users:   users,
		cfg:     cfg,
		log:     log,
	}
}

// RegisterHandlers subscribes to the notify-worthy domain events.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(convdomain.EventHandedOff, events.HandlerFunc(m.handleHandedOff))
	bus.Subscribe(leaddomain.EventQualified, events.HandlerFunc(m.handleLeadQualified))
	m.log.Info("notification module registered event handlers")
}

func (m *Module) handleHandedOff(ctx context.Context, event events.Event) error {
	e, ok := event.(convdomain.HandedOffEvent)
	if !ok {
		m.log.Warn("unexpected event payload", "event", event.EventName())
		return nil
	}

	tenant, toEmail, err := m.resolveDestination(ctx, e.TenantID)
	if err != nil || toEmail == "" {
		return err
	}
	userName := m.resolveUserName(ctx, e.TenantID, e.UserID)

	if err := m.sender.SendHandoffAlertEmail(ctx, toEmail, tenant.Name, userName, e.Reason, e.Summary); err != nil {
		m.log.Error("failed to send handoff alert email",
			"tenant_id", e.TenantID.String(),
			"conversation_id", e.ConversationID.String(),
			"error", err.Error())
		return err
	}
	m.log.Info("handoff alert email sent",
		"tenant_id", e.TenantID.String(),
		"conversation_id", e.ConversationID.String())
	return nil
}

func (m *Module) handleLeadQualified(ctx context.Context, event events.Event) error {
	e, ok := event.(leaddomain.QualifiedEvent)
	if !ok {
		m.log.Warn("unexpected event payload", "event", event.EventName())
		return nil
	}

	tenant, toEmail, err := m.resolveDestination(ctx, e.TenantID)
	if err != nil || toEmail == "" {
		return err
	}
	userName := m.resolveUserName(ctx, e.TenantID, e.UserID)

	if err := m.sender.SendLeadQualifiedEmail(ctx, toEmail, tenant.Name, userName, string(e.Stage), e.Score, e.Reason); err != nil {
		m.log.Error("failed to send lead qualified email",
			"tenant_id", e.TenantID.String(),
			"conversation_id", e.ConversationID.String(),
			"error", err.Error())
		return err
	}
	m.log.Info("lead qualified email sent",
		"tenant_id", e.TenantID.String(),
		"conversation_id", e.ConversationID.String(),
		"stage", string(e.Stage))
	return nil
}

// resolveDestination loads the tenant and picks the notification address:
// the tenant's settings override first, the global default second. An empty
// address means notifications are off for this tenant.
func (m *Module) resolveDestination(ctx context.Context, tenantID uuid.UUID) (tenantstransport.TenantResponse, string, error) {
	tenant, err := m.tenants.GetByID(ctx, tenantID)
	if err != nil {
		m.log.Warn("failed to resolve tenant for notification",
			"tenant_id", tenantID.String(),
			"error", err.Error())
		return tenantstransport.TenantResponse{}, "", err
	}

	if raw, ok := tenant.Settings["notify_email"]; ok {
		if addr, ok := raw.(string); ok && strings.TrimSpace(addr) != "" {
			return tenant, strings.TrimSpace(addr), nil
		}
	}
	return tenant, strings.TrimSpace(m.cfg.GetHandoffNotifyAddress()), nil
}

// resolveUserName returns a human label for the end user. Lookup failures
// degrade to the anonymous label instead of blocking the notification.
func (m *Module) resolveUserName(ctx context.Context, tenantID, userID uuid.UUID) string {
	user, err := m.users.GetByID(ctx, tenantID, userID)
	if err != nil {
		return fmt.Sprintf("cliente %s", shortID(userID))
	}
	if strings.TrimSpace(user.Name) != "" {
		return user.Name
	}
	if strings.TrimSpace(user.UserKey) != "" {
		return user.UserKey
	}
	return fmt.Sprintf("cliente %s", shortID(userID))
}

func shortID(id uuid.UUID) string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
