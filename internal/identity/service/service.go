// Package service provides end-user identity resolution for the chat surface.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/luizpibo/WorkHub-AI/internal/identity/domain"
	"github.com/luizpibo/WorkHub-AI/internal/identity/repository"
	"github.com/luizpibo/WorkHub-AI/platform/apperr"
	"github.com/luizpibo/WorkHub-AI/platform/logger"
	"github.com/luizpibo/WorkHub-AI/platform/phone"
	"github.com/luizpibo/WorkHub-AI/platform/sanitize"

	"github.com/google/uuid"
)

// Store is the data access surface the service needs.
type Store interface {
	Create(ctx context.Context, u domain.User) (domain.User, error)
	GetByKey(ctx context.Context, tenantID uuid.UUID, userKey string) (domain.User, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (domain.User, error)
	SearchByName(ctx context.Context, tenantID uuid.UUID, nameFragment string) ([]domain.User, error)
	Update(ctx context.Context, u domain.User) (domain.User, error)
}

// Service resolves inbound chat identities to user records.
type Service struct {
	repo Store
	log  *logger.Logger
}

// New creates a new identity service.
func New(repo Store, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Resolve maps an inbound (userKey, displayName) pair to a user record,
// creating one when nothing matches. Resolution order:
//
//  1. Exact user_key match within the tenant.
//  2. Case-insensitive substring match on name, when a display name was
//     sent. Multiple matches pick the most recently created user.
//  3. Create a new user.
//
// When the caller sent a display name, the resolved user's stored name is
// overwritten with it, so users who correct their name mid-conversation
// stay current. The fuzzy step can misattribute users with similar names;
// the exact key match always wins precisely to bound that risk.
func (s *Service) Resolve(ctx context.Context, tenantID uuid.UUID, userKey string, displayName *string) (domain.User, error) {
	userKey = strings.TrimSpace(userKey)
	if userKey == "" {
		return domain.User{}, apperr.BadRequest("missing user key")
	}

	var name string
	if displayName != nil {
		name = sanitize.Text(*displayName)
	}

	user, err := s.repo.GetByKey(ctx, tenantID, userKey)
	switch {
	case err == nil:
		return s.refreshName(ctx, user, displayName, name)
	case !errors.Is(err, repository.ErrUserNotFound):
		return domain.User{}, err
	}

	if name != "" {
		matches, err := s.repo.SearchByName(ctx, tenantID, name)
		if err != nil {
			return domain.User{}, err
		}
		if len(matches) > 0 {
			// SearchByName orders newest first.
			user := matches[0]
			if len(matches) > 1 {
				s.log.Warn("ambiguous identity match, picking newest",
					"tenant_id", tenantID, "name", name, "candidates", len(matches))
			}
			return s.refreshName(ctx, user, displayName, name)
		}
	}

	newUser := domain.User{
		ID:       uuid.New(),
		TenantID: tenantID,
		UserKey:  userKey,
		Name:     name,
	}
	// WhatsApp channels send the dialable number as the user key.
	if phone.IsLikelyPhone(userKey) {
		normalized := phone.NormalizeE164(userKey)
		newUser.Phone = &normalized
	}

	created, err := s.repo.Create(ctx, newUser)
	if err != nil {
		return domain.User{}, err
	}

	s.log.Info("user created", "tenant_id", tenantID, "user_id", created.ID)
	return created, nil
}

// GetByID returns a user scoped to a tenant.
func (s *Service) GetByID(ctx context.Context, tenantID, id uuid.UUID) (domain.User, error) {
	user, err := s.repo.GetByID(ctx, tenantID, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return domain.User{}, apperr.NotFound("user not found")
	}
	return user, err
}

// UpdateProfile updates a user's name, phone and business type, used by the
// agent's update_user tool. Nil fields are left untouched.
func (s *Service) UpdateProfile(ctx context.Context, tenantID, id uuid.UUID, name, phoneNumber, workType *string) (domain.User, error) {
	user, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return domain.User{}, err
	}

	if name != nil {
		user.Name = sanitize.Text(*name)
	}
	if phoneNumber != nil {
		normalized := phone.NormalizeE164(*phoneNumber)
		user.Phone = &normalized
	}
	if workType != nil {
		trimmed := sanitize.Text(*workType)
		user.WorkType = &trimmed
	}

	return s.repo.Update(ctx, user)
}

func (s *Service) refreshName(ctx context.Context, user domain.User, displayName *string, name string) (domain.User, error) {
	if displayName == nil || user.Name == name {
		return user, nil
	}
	user.Name = name
	return s.repo.Update(ctx, user)
}
