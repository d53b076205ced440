// Package service provides business logic for tenant management and
// API key authentication.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/luizpibo/WorkHub-AI/internal/tenants/domain"
	"github.com/luizpibo/WorkHub-AI/internal/tenants/repository"
	"github.com/luizpibo/WorkHub-AI/internal/tenants/transport"
	"github.com/luizpibo/WorkHub-AI/platform/apperr"
	"github.com/luizpibo/WorkHub-AI/platform/logger"
	"github.com/luizpibo/WorkHub-AI/platform/sanitize"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

const (
	apiKeyRandomBytes = 16 // 32 hex chars
	apiKeyPrefixLen   = 8

	pgUniqueViolation = "23505"
)

// Store is the data access surface the service needs.
type Store interface {
	Create(ctx context.Context, t domain.Tenant) (domain.Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (domain.Tenant, error)
	List(ctx context.Context) ([]domain.Tenant, error)
	Update(ctx context.Context, t domain.Tenant) (domain.Tenant, error)
	UpdateCredential(ctx context.Context, id uuid.UUID, keyHash, keyPrefix string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service provides tenant management and credential checks.
type Service struct {
	repo Store
	log  *logger.Logger
	now  func() time.Time
}

// New creates a new tenant service.
func New(repo Store, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// generateAPIKey creates a new tenant credential. The key starts with the
// first two slug characters so support staff can tell keys apart in logs
// without ever seeing the secret part.
func generateAPIKey(slug string) (plaintext, hash, prefix string, err error) {
	raw := make([]byte, apiKeyRandomBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", "", "", err
	}

	plaintext = slug[:2] + "_" + hex.EncodeToString(raw)
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", "", "", err
	}

	return plaintext, string(hashed), plaintext[:apiKeyPrefixLen], nil
}

// Create registers a new tenant and returns its plaintext API key exactly once.
func (s *Service) Create(ctx context.Context, req transport.CreateTenantRequest) (transport.CreatedTenantResponse, error) {
	workType := domain.WorkTypeOther
	if req.WorkType != "" {
		workType = domain.WorkType(req.WorkType)
	}

	plaintext, hash, prefix, err := generateAPIKey(req.Slug)
	if err != nil {
		return transport.CreatedTenantResponse{}, apperr.Wrap(apperr.KindInternal, "failed to generate api key", err)
	}

	tenant := domain.Tenant{
		ID:           uuid.New(),
		Name:         sanitize.Text(req.Name),
		Slug:         req.Slug,
		Status:       domain.StatusTrial,
		WorkType:     workType,
		APIKeyHash:   hash,
		APIKeyPrefix: prefix,
		Settings:     req.Settings,
	}
	if req.TrialDays > 0 {
		ends := s.now().AddDate(0, 0, req.TrialDays)
		tenant.TrialEndsAt = &ends
	}
	if tenant.Settings == nil {
		tenant.Settings = map[string]any{}
	}

	created, err := s.repo.Create(ctx, tenant)
	if err != nil {
		if isUniqueViolation(err) {
			return transport.CreatedTenantResponse{}, apperr.Conflict("slug already in use")
		}
		return transport.CreatedTenantResponse{}, err
	}

	s.log.Info("tenant created", "tenant_id", created.ID, "slug", created.Slug)

	return transport.CreatedTenantResponse{
		TenantResponse: mapTenantResponse(created),
		APIKey:         plaintext,
	}, nil
}

// RotateKey replaces the tenant's credential and returns the new plaintext
// key exactly once. The old key stops working immediately.
func (s *Service) RotateKey(ctx context.Context, id uuid.UUID) (transport.CreatedTenantResponse, error) {
	tenant, err := s.getTenant(ctx, id)
	if err != nil {
		return transport.CreatedTenantResponse{}, err
	}

	plaintext, hash, prefix, err := generateAPIKey(tenant.Slug)
	if err != nil {
		return transport.CreatedTenantResponse{}, apperr.Wrap(apperr.KindInternal, "failed to generate api key", err)
	}

	if err := s.repo.UpdateCredential(ctx, id, hash, prefix); err != nil {
		return transport.CreatedTenantResponse{}, mapRepoErr(err)
	}

	tenant.APIKeyHash = hash
	tenant.APIKeyPrefix = prefix
	s.log.Info("tenant api key rotated", "tenant_id", id)

	return transport.CreatedTenantResponse{
		TenantResponse: mapTenantResponse(tenant),
		APIKey:         plaintext,
	}, nil
}

// Authenticate resolves a (slug, secret) credential pair to its tenant.
// Every multi-tenant chat request passes through here; no handler may run
// without a resolved tenant. The secret is never logged, only the stored
// public prefix appears in auth events.
func (s *Service) Authenticate(ctx context.Context, slug, secret string) (domain.Tenant, error) {
	slug = strings.TrimSpace(slug)
	secret = strings.TrimSpace(secret)
	if slug == "" || secret == "" {
		return domain.Tenant{}, apperr.BadRequest("missing tenant credentials")
	}

	tenant, err := s.repo.GetBySlug(ctx, slug)
	if errors.Is(err, repository.ErrTenantNotFound) {
		s.log.TenantAuthEvent("authenticate", slug, false, "unknown slug")
		return domain.Tenant{}, apperr.NotFound("tenant not found")
	}
	if err != nil {
		return domain.Tenant{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(tenant.APIKeyHash), []byte(secret)) != nil {
		s.log.TenantAuthEvent("authenticate", tenant.APIKeyPrefix, false, "secret mismatch")
		return domain.Tenant{}, apperr.Unauthorized("invalid tenant secret")
	}
	if !tenant.CanServe(s.now()) {
		s.log.TenantAuthEvent("authenticate", tenant.APIKeyPrefix, false, "tenant inactive")
		return domain.Tenant{}, apperr.Forbidden("tenant is not active")
	}

	s.log.TenantAuthEvent("authenticate", tenant.APIKeyPrefix, true, "")
	return tenant, nil
}

// ResolveDefault loads the statically configured tenant used when
// multi-tenant mode is off. A missing default tenant is a deployment
// misconfiguration, not a request error.
func (s *Service) ResolveDefault(ctx context.Context, slug string) (domain.Tenant, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return domain.Tenant{}, apperr.New(apperr.KindInternal, "default tenant slug is not configured")
	}

	tenant, err := s.repo.GetBySlug(ctx, slug)
	if errors.Is(err, repository.ErrTenantNotFound) {
		return domain.Tenant{}, apperr.New(apperr.KindInternal, "default tenant does not exist")
	}
	if err != nil {
		return domain.Tenant{}, err
	}

	if !tenant.CanServe(s.now()) {
		return domain.Tenant{}, apperr.Forbidden("tenant is not active")
	}
	return tenant, nil
}

// GetByID returns a single tenant.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.TenantResponse, error) {
	tenant, err := s.getTenant(ctx, id)
	if err != nil {
		return transport.TenantResponse{}, err
	}
	return mapTenantResponse(tenant), nil
}

// List returns all tenants.
func (s *Service) List(ctx context.Context) (transport.ListTenantsResponse, error) {
	tenants, err := s.repo.List(ctx)
	if err != nil {
		return transport.ListTenantsResponse{}, err
	}

	items := make([]transport.TenantResponse, 0, len(tenants))
	for _, tenant := range tenants {
		items = append(items, mapTenantResponse(tenant))
	}
	return transport.ListTenantsResponse{Items: items, Total: len(items)}, nil
}

// Update applies partial changes to a tenant.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateTenantRequest) (transport.TenantResponse, error) {
	tenant, err := s.getTenant(ctx, id)
	if err != nil {
		return transport.TenantResponse{}, err
	}

	if req.Name != nil {
		tenant.Name = sanitize.Text(*req.Name)
	}
	if req.Status != nil {
		tenant.Status = domain.Status(*req.Status)
	}
	if req.WorkType != nil {
		tenant.WorkType = domain.WorkType(*req.WorkType)
	}
	if req.TrialEndsAt != nil {
		tenant.TrialEndsAt = req.TrialEndsAt
	}
	if req.Settings != nil {
		tenant.Settings = *req.Settings
	}

	updated, err := s.repo.Update(ctx, tenant)
	if err != nil {
		return transport.TenantResponse{}, mapRepoErr(err)
	}

	return mapTenantResponse(updated), nil
}

// Delete removes a tenant and everything it owns.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoErr(err)
	}
	s.log.Info("tenant deleted", "tenant_id", id)
	return nil
}

func (s *Service) getTenant(ctx context.Context, id uuid.UUID) (domain.Tenant, error) {
	tenant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Tenant{}, mapRepoErr(err)
	}
	return tenant, nil
}

func mapRepoErr(err error) error {
	if errors.Is(err, repository.ErrTenantNotFound) {
		return apperr.NotFound("tenant not found")
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func mapTenantResponse(t domain.Tenant) transport.TenantResponse {
	return transport.TenantResponse{
		ID:           t.ID,
		Name:         t.Name,
		Slug:         t.Slug,
		Status:       string(t.Status),
		WorkType:     string(t.WorkType),
		APIKeyPrefix: t.APIKeyPrefix,
		TrialEndsAt:  t.TrialEndsAt,
		Settings:     t.Settings,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}
