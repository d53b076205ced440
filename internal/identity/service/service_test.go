package service

import (
	"context"
	"testing"
	"time"

	"github.com/luizpibo/WorkHub-AI/internal/identity/domain"
	"github.com/luizpibo/WorkHub-AI/internal/identity/repository"
	"github.com/luizpibo/WorkHub-AI/platform/apperr"
	"github.com/luizpibo/WorkHub-AI/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	users []domain.User
}

func (f *fakeStore) Create(_ context.Context, u domain.User) (domain.User, error) {
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.users = append(f.users, u)
	return u, nil
}

func (f *fakeStore) GetByKey(_ context.Context, tenantID uuid.UUID, userKey string) (domain.User, error) {
	for _, u := range f.users {
		if u.TenantID == tenantID && u.UserKey == userKey {
			return u, nil
		}
	}
	return domain.User{}, repository.ErrUserNotFound
}

func (f *fakeStore) GetByID(_ context.Context, tenantID, id uuid.UUID) (domain.User, error) {
	for _, u := range f.users {
		if u.TenantID == tenantID && u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, repository.ErrUserNotFound
}

func (f *fakeStore) SearchByName(_ context.Context, tenantID uuid.UUID, fragment string) ([]domain.User, error) {
	var out []domain.User
	for _, u := range f.users {
		if u.TenantID == tenantID && containsFold(u.Name, fragment) {
			out = append(out, u)
		}
	}
	// Newest first, matching the SQL ORDER BY created_at DESC.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, u domain.User) (domain.User, error) {
	for i := range f.users {
		if f.users[i].ID == u.ID {
			u.UpdatedAt = time.Now()
			f.users[i] = u
			return u, nil
		}
	}
	return domain.User{}, repository.ErrUserNotFound
}

func containsFold(haystack, needle string) bool {
	h := []byte(haystack)
	n := []byte(needle)
	lower := func(b byte) byte {
		if b >= 'A' && b <= 'Z' {
			return b + 32
		}
		return b
	}
	for i := 0; i+len(n) <= len(h); i++ {
		match := true
		for j := range n {
			if lower(h[i+j]) != lower(n[j]) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func strptr(s string) *string { return &s }

func newTestService() (*Service, *fakeStore) {
	store := &fakeStore{}
	return New(store, logger.New("development")), store
}

func TestResolveCreatesUser(t *testing.T) {
	svc, store := newTestService()
	tenantID := uuid.New()

	user, err := svc.Resolve(context.Background(), tenantID, "wa:+5511999990000", strptr("Maria"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if user.Name != "Maria" || user.UserKey != "wa:+5511999990000" {
		t.Errorf("created user = %+v", user)
	}
	if len(store.users) != 1 {
		t.Errorf("store has %d users, want 1", len(store.users))
	}
}

func TestResolveExactKeyWins(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	tenantID := uuid.New()

	first, err := svc.Resolve(ctx, tenantID, "key-1", strptr("Maria"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// Another user with a similar name but a different key.
	if _, err := svc.Resolve(ctx, tenantID, "key-2", strptr("Maria Silva")); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	again, err := svc.Resolve(ctx, tenantID, "key-1", strptr("Maria"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if again.ID != first.ID {
		t.Errorf("exact key resolved to %s, want %s", again.ID, first.ID)
	}
}

func TestResolveFuzzyNameMatch(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	tenantID := uuid.New()

	created, err := svc.Resolve(ctx, tenantID, "web:session-1", strptr("João Pedro"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	// Same person returning through a different channel key.
	matched, err := svc.Resolve(ctx, tenantID, "wa:+5511988880000", strptr("Pedro"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if matched.ID != created.ID {
		t.Errorf("fuzzy match resolved to %s, want %s", matched.ID, created.ID)
	}
	if matched.Name != "Pedro" {
		t.Errorf("resolved name = %q, want overwritten to %q", matched.Name, "Pedro")
	}
}

func TestResolveAmbiguousPicksNewest(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	tenantID := uuid.New()

	if _, err := svc.Resolve(ctx, tenantID, "key-old", strptr("Ana Lima")); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	store.users[0].CreatedAt = time.Now().Add(-time.Hour)

	newest, err := svc.Resolve(ctx, tenantID, "key-new", strptr("Ana Costa"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	matched, err := svc.Resolve(ctx, tenantID, "key-other", strptr("Ana"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if matched.ID != newest.ID {
		t.Errorf("ambiguous match resolved to %s, want newest %s", matched.ID, newest.ID)
	}
}

func TestResolveWithoutNameCreates(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	tenantID := uuid.New()

	if _, err := svc.Resolve(ctx, tenantID, "key-1", strptr("Maria")); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	user, err := svc.Resolve(ctx, tenantID, "key-2", nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if user.Name != "" {
		t.Errorf("name = %q, want empty for anonymous user", user.Name)
	}
}

func TestResolveDoesNotMatchAcrossTenants(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	userA, err := svc.Resolve(ctx, uuid.New(), "key-1", strptr("Maria"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	userB, err := svc.Resolve(ctx, uuid.New(), "key-1", strptr("Maria"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if userA.ID == userB.ID {
		t.Error("users from different tenants must never resolve to the same record")
	}
}

func TestResolvePhoneKeySeedsPhone(t *testing.T) {
	svc, _ := newTestService()

	user, err := svc.Resolve(context.Background(), uuid.New(), "+55 11 99999-0000", strptr("Maria"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if user.Phone == nil || *user.Phone != "+5511999990000" {
		t.Errorf("phone = %v, want +5511999990000", user.Phone)
	}

	anon, err := svc.Resolve(context.Background(), uuid.New(), "web:session-1", nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if anon.Phone != nil {
		t.Errorf("phone = %q, want nil for non-phone key", *anon.Phone)
	}
}

func TestResolveStripsMarkupFromName(t *testing.T) {
	svc, _ := newTestService()

	user, err := svc.Resolve(context.Background(), uuid.New(), "key-1", strptr("<b>Maria</b> <script>x</script>"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if user.Name != "Maria x" {
		t.Errorf("name = %q, want markup stripped", user.Name)
	}
}

func TestUpdateProfileNormalizesPhone(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	tenantID := uuid.New()

	created, err := svc.Resolve(ctx, tenantID, "key-1", strptr("Maria"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	updated, err := svc.UpdateProfile(ctx, tenantID, created.ID, nil, strptr("(11) 98888-7777"), strptr("coworking"))
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Phone == nil || *updated.Phone != "+5511988887777" {
		t.Errorf("phone = %v, want +5511988887777", updated.Phone)
	}
	if updated.WorkType == nil || *updated.WorkType != "coworking" {
		t.Errorf("work type = %v, want coworking", updated.WorkType)
	}
	if updated.Name != "Maria" {
		t.Errorf("name = %q, want unchanged", updated.Name)
	}
}

func TestResolveMissingKey(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Resolve(context.Background(), uuid.New(), "  ", nil)
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Errorf("missing key error = %v, want bad request", err)
	}
}
