package notification

import (
	"context"
	"testing"

	"github.com/google/uuid"

	convdomain "github.com/luizpibo/WorkHub-AI/internal/conversations/domain"
	identitydomain "github.com/luizpibo/WorkHub-AI/internal/identity/domain"
	leaddomain "github.com/luizpibo/WorkHub-AI/internal/leads/domain"
	tenantstransport "github.com/luizpibo/WorkHub-AI/internal/tenants/transport"
	"github.com/luizpibo/WorkHub-AI/platform/apperr"
	"github.com/luizpibo/WorkHub-AI/platform/events"
	"github.com/luizpibo/WorkHub-AI/platform/logger"
)

type sentEmail struct {
	kind       string
	to         string
	tenantName string
	userName   string
	stage      string
	score      int
	reason     string
	summary    string
}

type fakeSender struct {
	sent []sentEmail
}

func (f *fakeSender) SendHandoffAlertEmail(_ context.Context, toEmail, tenantName, userName, reason, summary string) error {
	f.sent = append(f.sent, sentEmail{kind: "handoff", to: toEmail, tenantName: tenantName, userName: userName, reason: reason, summary: summary})
	return nil
}

func (f *fakeSender) SendLeadQualifiedEmail(_ context.Context, toEmail, tenantName, userName, stage string, score int, reason string) error {
	f.sent = append(f.sent, sentEmail{kind: "lead", to: toEmail, tenantName: tenantName, userName: userName, stage: stage, score: score, reason: reason})
	return nil
}

func (f *fakeSender) SendCustomEmail(_ context.Context, toEmail, subject, _ string) error {
	f.sent = append(f.sent, sentEmail{kind: "custom", to: toEmail, reason: subject})
	return nil
}

type fakeTenants struct {
	tenant tenantstransport.TenantResponse
}

func (f *fakeTenants) GetByID(_ context.Context, id uuid.UUID) (tenantstransport.TenantResponse, error) {
	if id != f.tenant.ID {
		return tenantstransport.TenantResponse{}, apperr.NotFound("tenant not found")
	}
	return f.tenant, nil
}

type fakeUsers struct {
	user identitydomain.User
}

func (f *fakeUsers) GetByID(_ context.Context, tenantID, id uuid.UUID) (identitydomain.User, error) {
	if tenantID != f.user.TenantID || id != f.user.ID {
		return identitydomain.User{}, apperr.NotFound("user not found")
	}
	return f.user, nil
}

type stubNotifyConfig struct {
	address string
}

func (c stubNotifyConfig) GetAppBaseURL() string         { return "http://localhost:3000" }
func (c stubNotifyConfig) GetHandoffNotifyAddress() string { return c.address }

func newTestModule(settings map[string]any, address string) (*Module, *fakeSender, tenantstransport.TenantResponse, identitydomain.User) {
	tenant := tenantstransport.TenantResponse{ID: uuid.New(), Name: "Acme", Slug: "acme", Settings: settings}
	user := identitydomain.User{ID: uuid.New(), TenantID: tenant.ID, UserKey: "wa:5511999", Name: "Maria"}
	sender := &fakeSender{}
	m := New(sender, &fakeTenants{tenant: tenant}, &fakeUsers{user: user}, stubNotifyConfig{address: address}, logger.New("development"))
	return m, sender, tenant, user
}

func TestHandedOffEventSendsAlert(t *testing.T) {
	m, sender, tenant, user := newTestModule(nil, "ops@acme.com")

	err := m.handleHandedOff(context.Background(), convdomain.HandedOffEvent{
		BaseEvent:      events.NewBaseEvent(),
		TenantID:       tenant.ID,
		ConversationID: uuid.New(),
		UserID:         user.ID,
		Reason:         "cliente pediu atendente",
		Summary:        "quer o plano anual",
	})
	if err != nil {
		t.Fatalf("handleHandedOff() error = %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("sent = %d emails, want 1", len(sender.sent))
	}
	got := sender.sent[0]
	if got.kind != "handoff" || got.to != "ops@acme.com" {
		t.Fatalf("sent = %+v, want handoff alert to ops@acme.com", got)
	}
	if got.userName != "Maria" || got.tenantName != "Acme" {
		t.Fatalf("sent = %+v, want resolved names", got)
	}
	if got.summary != "quer o plano anual" {
		t.Fatalf("summary = %q", got.summary)
	}
}

func TestTenantNotifyAddressOverride(t *testing.T) {
	m, sender, tenant, user := newTestModule(map[string]any{"notify_email": "vendas@acme.com"}, "ops@acme.com")

	err := m.handleHandedOff(context.Background(), convdomain.HandedOffEvent{
		BaseEvent: events.NewBaseEvent(),
		TenantID:  tenant.ID,
		UserID:    user.ID,
		Reason:    "motivo",
	})
	if err != nil {
		t.Fatalf("handleHandedOff() error = %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0].to != "vendas@acme.com" {
		t.Fatalf("sent = %+v, want tenant override address", sender.sent)
	}
}

func TestNoAddressDisablesNotification(t *testing.T) {
	m, sender, tenant, user := newTestModule(nil, "")

	err := m.handleHandedOff(context.Background(), convdomain.HandedOffEvent{
		BaseEvent: events.NewBaseEvent(),
		TenantID:  tenant.ID,
		UserID:    user.ID,
		Reason:    "motivo",
	})
	if err != nil {
		t.Fatalf("handleHandedOff() error = %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("sent = %+v, want none", sender.sent)
	}
}

func TestLeadQualifiedEventSendsAlert(t *testing.T) {
	m, sender, tenant, user := newTestModule(nil, "ops@acme.com")

	err := m.handleLeadQualified(context.Background(), leaddomain.QualifiedEvent{
		BaseEvent:      events.NewBaseEvent(),
		TenantID:       tenant.ID,
		ConversationID: uuid.New(),
		UserID:         user.ID,
		Stage:          leaddomain.StageHot,
		Score:          80,
		Reason:         "pronto para fechar",
	})
	if err != nil {
		t.Fatalf("handleLeadQualified() error = %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("sent = %d emails, want 1", len(sender.sent))
	}
	got := sender.sent[0]
	if got.kind != "lead" || got.stage != "hot" || got.score != 80 {
		t.Fatalf("sent = %+v, want hot lead with score 80", got)
	}
}

func TestUnknownUserFallsBackToKeyLabel(t *testing.T) {
	m, sender, tenant, _ := newTestModule(nil, "ops@acme.com")

	err := m.handleHandedOff(context.Background(), convdomain.HandedOffEvent{
		BaseEvent: events.NewBaseEvent(),
		TenantID:  tenant.ID,
		UserID:    uuid.New(),
		Reason:    "motivo",
	})
	if err != nil {
		t.Fatalf("handleHandedOff() error = %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent = %d emails, want 1", len(sender.sent))
	}
	if sender.sent[0].userName == "" {
		t.Fatal("user name label must never be empty")
	}
}

func TestMismatchedPayloadIsIgnored(t *testing.T) {
	m, sender, tenant, user := newTestModule(nil, "ops@acme.com")

	// A lead event routed to the handoff handler must not send anything.
	err := m.handleHandedOff(context.Background(), leaddomain.QualifiedEvent{
		BaseEvent: events.NewBaseEvent(),
		TenantID:  tenant.ID,
		UserID:    user.ID,
	})
	if err != nil {
		t.Fatalf("handleHandedOff() error = %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("sent = %+v, want none", sender.sent)
	}
}
