package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/luizpibo/WorkHub-AI/internal/conversations/domain"
	"github.com/luizpibo/WorkHub-AI/internal/conversations/repository"
	leaddomain "github.com/luizpibo/WorkHub-AI/internal/leads/domain"
	"github.com/luizpibo/WorkHub-AI/platform/apperr"
	"github.com/luizpibo/WorkHub-AI/platform/events"
	"github.com/luizpibo/WorkHub-AI/platform/logger"
)

type fakeStore struct {
	mu            sync.Mutex
	conversations map[uuid.UUID]*domain.Conversation
	messages      []domain.Message
}

func newFakeStore() *fakeStore {
	return &fakeStore{conversations: make(map[uuid.UUID]*domain.Conversation)}
}

func (f *fakeStore) Create(_ context.Context, c *domain.Conversation) (*domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := *c
	out.ID = uuid.New()
	now := time.Now()
	out.LastMessageAt = now
	out.CreatedAt = now
	out.UpdatedAt = now
	f.conversations[out.ID] = &out
	copied := out
	return &copied, nil
}

func (f *fakeStore) GetByID(_ context.Context, tenantID, id uuid.UUID) (*domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.conversations[id]
	if !ok || c.TenantID != tenantID {
		return nil, repository.ErrConversationNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeStore) GetActiveForUser(_ context.Context, tenantID, userID uuid.UUID) (*domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var newest *domain.Conversation
	for _, c := range f.conversations {
		if c.TenantID != tenantID || c.UserID != userID || c.Status.IsTerminal() {
			continue
		}
		if newest == nil || c.LastMessageAt.After(newest.LastMessageAt) {
			newest = c
		}
	}
	if newest == nil {
		return nil, repository.ErrConversationNotFound
	}
	copied := *newest
	return &copied, nil
}

func (f *fakeStore) ListByTenant(_ context.Context, tenantID uuid.UUID, status *domain.Status, _, _ int) ([]domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Conversation
	for _, c := range f.conversations {
		if c.TenantID != tenantID {
			continue
		}
		if status != nil && c.Status != *status {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, tenantID, id uuid.UUID, status domain.Status) (*domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.conversations[id]
	if !ok || c.TenantID != tenantID {
		return nil, repository.ErrConversationNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now()
	copied := *c
	return &copied, nil
}

func (f *fakeStore) SetHandoff(_ context.Context, tenantID, id uuid.UUID, reason, summary string) (*domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.conversations[id]
	if !ok || c.TenantID != tenantID {
		return nil, repository.ErrConversationNotFound
	}
	now := time.Now()
	c.Status = domain.StatusAwaitingHuman
	c.HandoffReason = &reason
	c.HandoffAt = &now
	c.ContextSummary = summary
	c.UpdatedAt = now
	copied := *c
	return &copied, nil
}

func (f *fakeStore) UpdateContext(_ context.Context, tenantID, id uuid.UUID, summary *string, interestedPlanID *uuid.UUID) (*domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.conversations[id]
	if !ok || c.TenantID != tenantID {
		return nil, repository.ErrConversationNotFound
	}
	if summary != nil {
		c.ContextSummary = *summary
	}
	if interestedPlanID != nil {
		c.InterestedPlanID = interestedPlanID
	}
	c.UpdatedAt = time.Now()
	copied := *c
	return &copied, nil
}

func (f *fakeStore) UpdateStage(_ context.Context, tenantID, id uuid.UUID, stage domain.FunnelStage) (*domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.conversations[id]
	if !ok || c.TenantID != tenantID {
		return nil, repository.ErrConversationNotFound
	}
	c.FunnelStage = stage
	c.UpdatedAt = time.Now()
	copied := *c
	return &copied, nil
}

func (f *fakeStore) AppendMessage(_ context.Context, m *domain.Message) (*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := *m
	out.ID = uuid.New()
	out.CreatedAt = time.Now()
	f.messages = append(f.messages, out)
	if c, ok := f.conversations[m.ConversationID]; ok {
		c.LastMessageAt = out.CreatedAt
	}
	copied := out
	return &copied, nil
}

func (f *fakeStore) RecentMessages(_ context.Context, tenantID, conversationID uuid.UUID, limit int) ([]domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Message
	for _, m := range f.messages {
		if m.TenantID == tenantID && m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeStore) MarkAbandonedBefore(_ context.Context, cutoff time.Time) ([]domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Conversation
	for _, c := range f.conversations {
		if !c.Status.IsTerminal() && c.LastMessageAt.Before(cutoff) {
			c.Status = domain.StatusAbandoned
			out = append(out, *c)
		}
	}
	return out, nil
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, e := range b.events {
		out = append(out, e.EventName())
	}
	return out
}

// fakeLeadRecorder mirrors the leads service upsert: one lead per
// conversation with a monotonically non-decreasing score.
type fakeLeadRecorder struct {
	mu    sync.Mutex
	leads map[uuid.UUID]*leaddomain.Lead
}

func newFakeLeadRecorder() *fakeLeadRecorder {
	return &fakeLeadRecorder{leads: make(map[uuid.UUID]*leaddomain.Lead)}
}

func (f *fakeLeadRecorder) ApplyHandoff(_ context.Context, tenantID, conversationID, userID uuid.UUID, stage domain.FunnelStage, reason string) (*leaddomain.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	assessment := leaddomain.Assess(stage, reason)
	lead, ok := f.leads[conversationID]
	if !ok {
		lead = &leaddomain.Lead{ID: uuid.New(), TenantID: tenantID, ConversationID: conversationID, UserID: userID}
		f.leads[conversationID] = lead
	}
	lead.Stage = assessment.Stage
	if assessment.Score > lead.Score {
		lead.Score = assessment.Score
	}
	lead.Reason = reason
	lead.NextAction = assessment.NextAction
	copied := *lead
	return &copied, nil
}

func newTestService() (*Service, *fakeStore, *recordingBus) {
	svc, store, _, bus := newTestServiceWithLeads()
	return svc, store, bus
}

func newTestServiceWithLeads() (*Service, *fakeStore, *fakeLeadRecorder, *recordingBus) {
	store := newFakeStore()
	leads := newFakeLeadRecorder()
	bus := &recordingBus{}
	return New(store, leads, bus, logger.New("development")), store, leads, bus
}

func TestGetOrCreateActiveReusesOpenConversation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	tenantID, userID := uuid.New(), uuid.New()

	first, created, err := svc.GetOrCreateActive(ctx, tenantID, userID)
	if err != nil {
		t.Fatalf("GetOrCreateActive() error = %v", err)
	}
	if !created {
		t.Fatal("first call should create a conversation")
	}
	if first.Status != domain.StatusActive || first.FunnelStage != domain.StageAwareness {
		t.Fatalf("new conversation = %s/%s, want active/awareness", first.Status, first.FunnelStage)
	}

	second, created, err := svc.GetOrCreateActive(ctx, tenantID, userID)
	if err != nil {
		t.Fatalf("GetOrCreateActive() error = %v", err)
	}
	if created || second.ID != first.ID {
		t.Fatalf("second call created=%v id=%s, want reuse of %s", created, second.ID, first.ID)
	}
}

func TestGetOrCreateActiveAfterTerminalStartsFresh(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	tenantID, userID := uuid.New(), uuid.New()

	first, _, err := svc.GetOrCreateActive(ctx, tenantID, userID)
	if err != nil {
		t.Fatalf("GetOrCreateActive() error = %v", err)
	}
	if _, err := svc.Close(ctx, tenantID, first.ID, domain.StatusLost); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	second, created, err := svc.GetOrCreateActive(ctx, tenantID, userID)
	if err != nil {
		t.Fatalf("GetOrCreateActive() error = %v", err)
	}
	if !created || second.ID == first.ID {
		t.Fatalf("expected a fresh conversation after terminal close, got created=%v", created)
	}
}

func TestAppendRejectsTerminalConversation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	tenantID, userID := uuid.New(), uuid.New()

	conv, _, _ := svc.GetOrCreateActive(ctx, tenantID, userID)
	if _, err := svc.Close(ctx, tenantID, conv.ID, domain.StatusConverted); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	_, err := svc.Append(ctx, tenantID, conv.ID, domain.RoleUser, "oi")
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("Append() error = %v, want conflict", err)
	}
}

func TestAppendValidatesInput(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	tenantID, userID := uuid.New(), uuid.New()
	conv, _, _ := svc.GetOrCreateActive(ctx, tenantID, userID)

	if _, err := svc.Append(ctx, tenantID, conv.ID, domain.MessageRole("tool"), "hi"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("unknown role error = %v, want validation", err)
	}
	if _, err := svc.Append(ctx, tenantID, conv.ID, domain.RoleUser, "   "); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("blank content error = %v, want validation", err)
	}
}

func TestHandoffStoresReasonAndPublishes(t *testing.T) {
	svc, store, leads, bus := newTestServiceWithLeads()
	ctx := context.Background()
	tenantID, userID := uuid.New(), uuid.New()
	conv, _, _ := svc.GetOrCreateActive(ctx, tenantID, userID)

	updated, lead, err := svc.Handoff(ctx, tenantID, conv.ID, "cliente pediu desconto acima da alcada", "negociando plano anual")
	if err != nil {
		t.Fatalf("Handoff() error = %v", err)
	}
	if updated.Status != domain.StatusAwaitingHuman {
		t.Fatalf("status = %s, want awaiting_human", updated.Status)
	}
	if lead == nil || lead.UserID != userID {
		t.Fatalf("lead = %+v, want upsert for user %s", lead, userID)
	}
	if len(leads.leads) != 1 {
		t.Fatalf("leads recorded = %d, want 1", len(leads.leads))
	}

	stored, _ := store.GetByID(ctx, tenantID, conv.ID)
	if stored.HandoffReason == nil || *stored.HandoffReason != "cliente pediu desconto acima da alcada" {
		t.Fatalf("handoff reason not persisted: %v", stored.HandoffReason)
	}
	if stored.HandoffAt == nil {
		t.Fatal("handoff timestamp not persisted")
	}
	if stored.ContextSummary != "negociando plano anual" {
		t.Fatalf("context summary = %q, want overwrite", stored.ContextSummary)
	}

	var system []domain.Message
	for _, m := range store.messages {
		if m.Role == domain.RoleSystem {
			system = append(system, m)
		}
	}
	if len(system) != 1 {
		t.Fatalf("system messages = %d, want the transfer record", len(system))
	}
	if !strings.Contains(system[0].Content, "cliente pediu desconto acima da alcada") {
		t.Fatalf("transfer record = %q, want the handoff reason in it", system[0].Content)
	}

	names := bus.names()
	if len(names) != 1 || names[0] != domain.EventHandedOff {
		t.Fatalf("published events = %v, want [%s]", names, domain.EventHandedOff)
	}
}

func TestHandoffRepeatKeepsOneLeadAndScore(t *testing.T) {
	svc, store, leads, bus := newTestServiceWithLeads()
	ctx := context.Background()
	tenantID, userID := uuid.New(), uuid.New()
	conv, _, _ := svc.GetOrCreateActive(ctx, tenantID, userID)
	if _, err := svc.UpdateStage(ctx, tenantID, conv.ID, "negotiation"); err != nil {
		t.Fatalf("UpdateStage() error = %v", err)
	}

	_, first, err := svc.Handoff(ctx, tenantID, conv.ID, "pronto para fechar o plano anual", "quer o plano anual")
	if err != nil {
		t.Fatalf("first Handoff() error = %v", err)
	}

	updated, second, err := svc.Handoff(ctx, tenantID, conv.ID, "cliente voltou com nova duvida", "duvida sobre fidelidade")
	if err != nil {
		t.Fatalf("second Handoff() error = %v", err)
	}
	if updated.Status != domain.StatusAwaitingHuman {
		t.Fatalf("status = %s, want awaiting_human", updated.Status)
	}
	if len(leads.leads) != 1 {
		t.Fatalf("leads recorded = %d, want 1", len(leads.leads))
	}
	if second.Score < first.Score {
		t.Fatalf("score dropped from %d to %d, want non-decreasing", first.Score, second.Score)
	}
	if second.Reason != "cliente voltou com nova duvida" {
		t.Fatalf("lead reason = %q, want the latest handoff reason", second.Reason)
	}

	stored, _ := store.GetByID(ctx, tenantID, conv.ID)
	if stored.HandoffReason == nil || *stored.HandoffReason != "cliente voltou com nova duvida" {
		t.Fatalf("handoff reason = %v, want re-recorded", stored.HandoffReason)
	}
	if stored.ContextSummary != "duvida sobre fidelidade" {
		t.Fatalf("context summary = %q, want overwritten by the repeat", stored.ContextSummary)
	}

	names := bus.names()
	if len(names) != 2 || names[0] != domain.EventHandedOff || names[1] != domain.EventHandedOff {
		t.Fatalf("published events = %v, want two handoffs", names)
	}
}

func TestHandoffEmptySummaryClearsContext(t *testing.T) {
	svc, store, _, _ := newTestServiceWithLeads()
	ctx := context.Background()
	tenantID, userID := uuid.New(), uuid.New()
	conv, _, _ := svc.GetOrCreateActive(ctx, tenantID, userID)

	if _, _, err := svc.Handoff(ctx, tenantID, conv.ID, "negociacao travada", "cliente compara concorrentes"); err != nil {
		t.Fatalf("first Handoff() error = %v", err)
	}
	if _, _, err := svc.Handoff(ctx, tenantID, conv.ID, "cliente insiste em humano", ""); err != nil {
		t.Fatalf("second Handoff() error = %v", err)
	}

	stored, _ := store.GetByID(ctx, tenantID, conv.ID)
	if stored.ContextSummary != "" {
		t.Fatalf("context summary = %q, want cleared by the empty summary", stored.ContextSummary)
	}
}

func TestResumeReturnsConversationToAgent(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	tenantID, userID := uuid.New(), uuid.New()
	conv, _, _ := svc.GetOrCreateActive(ctx, tenantID, userID)

	if _, _, err := svc.Handoff(ctx, tenantID, conv.ID, "negociacao complexa", ""); err != nil {
		t.Fatalf("Handoff() error = %v", err)
	}
	updated, err := svc.Resume(ctx, tenantID, conv.ID)
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if updated.Status != domain.StatusActive {
		t.Fatalf("status = %s, want active", updated.Status)
	}
}

func TestCloseRejectsNonTerminalTarget(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	tenantID, userID := uuid.New(), uuid.New()
	conv, _, _ := svc.GetOrCreateActive(ctx, tenantID, userID)

	if _, err := svc.Close(ctx, tenantID, conv.ID, domain.StatusAwaitingHuman); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("Close(awaiting_human) error = %v, want validation", err)
	}
}

func TestTransitionOutOfTerminalIsConflict(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	tenantID, userID := uuid.New(), uuid.New()
	conv, _, _ := svc.GetOrCreateActive(ctx, tenantID, userID)

	if _, err := svc.Close(ctx, tenantID, conv.ID, domain.StatusConverted); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, _, err := svc.Handoff(ctx, tenantID, conv.ID, "reabrir", ""); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("Handoff after close error = %v, want conflict", err)
	}
	if _, err := svc.Resume(ctx, tenantID, conv.ID); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("Resume after close error = %v, want conflict", err)
	}
}

func TestUpdateStageAllowsBackwardMoves(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	tenantID, userID := uuid.New(), uuid.New()
	conv, _, _ := svc.GetOrCreateActive(ctx, tenantID, userID)

	if _, err := svc.UpdateStage(ctx, tenantID, conv.ID, "negotiation"); err != nil {
		t.Fatalf("UpdateStage(negotiation) error = %v", err)
	}
	updated, err := svc.UpdateStage(ctx, tenantID, conv.ID, "interest")
	if err != nil {
		t.Fatalf("UpdateStage(interest) error = %v", err)
	}
	if updated.FunnelStage != domain.StageInterest {
		t.Fatalf("stage = %s, want interest", updated.FunnelStage)
	}

	if _, err := svc.UpdateStage(ctx, tenantID, conv.ID, "retention"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("unknown stage error = %v, want validation", err)
	}
}

func TestSweepAbandonedClosesIdleConversations(t *testing.T) {
	svc, store, bus := newTestService()
	ctx := context.Background()
	tenantID := uuid.New()

	stale, _, _ := svc.GetOrCreateActive(ctx, tenantID, uuid.New())
	fresh, _, _ := svc.GetOrCreateActive(ctx, tenantID, uuid.New())

	store.mu.Lock()
	store.conversations[stale.ID].LastMessageAt = time.Now().Add(-100 * time.Hour)
	store.mu.Unlock()

	count, err := svc.SweepAbandoned(ctx, 72*time.Hour)
	if err != nil {
		t.Fatalf("SweepAbandoned() error = %v", err)
	}
	if count != 1 {
		t.Fatalf("swept = %d, want 1", count)
	}

	got, _ := store.GetByID(ctx, tenantID, stale.ID)
	if got.Status != domain.StatusAbandoned {
		t.Fatalf("stale status = %s, want abandoned", got.Status)
	}
	got, _ = store.GetByID(ctx, tenantID, fresh.ID)
	if got.Status != domain.StatusActive {
		t.Fatalf("fresh status = %s, want active", got.Status)
	}

	names := bus.names()
	if len(names) != 1 || names[0] != domain.EventAbandoned {
		t.Fatalf("published events = %v, want [%s]", names, domain.EventAbandoned)
	}
}
