package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/resqnet/resq-go-api/internal/dto"
	"github.com/resqnet/resq-go-api/internal/models"
	"github.com/resqnet/resq-go-api/internal/repository"
	"github.com/resqnet/resq-go-api/pkg/identity"
)

var (
	// ErrAccountNotFound indicates no directory record exists for the
	// verified identity. Distinct from token verification failure.
	ErrAccountNotFound = errors.New("account not found")
	// ErrEmailUnverified blocks supervisor session establishment until the
	// identity provider has verified the address.
	ErrEmailUnverified = errors.New("email not verified")
)

// AuthService resolves verified external identities into request principals
// and serves the public auth-status lookup.
type AuthService interface {
	ResolvePrincipal(ctx context.Context, id identity.Identity) (models.Principal, error)
	Status(ctx context.Context, externalID string) (dto.AuthStatusResponse, error)
	InvalidateStatus(ctx context.Context, externalID string)
}

// SessionGate applies the provider-side email-verification requirement at
// session establishment. It runs after principal resolution and before any
// session is handed out; admins are exempt by the named rule below.
func SessionGate(principal models.Principal, emailVerified bool) error {
	if !adminEmailVerificationExempt(principal.Role) && !emailVerified {
		return ErrEmailUnverified
	}
	return nil
}

type authService struct {
	admins      repository.AdminRepository
	supervisors repository.SupervisorRepository
	redis       *redis.Client
	statusTTL   time.Duration
	logger      zerolog.Logger
}

// NewAuthService constructs the authorization resolver. The redis client is
// optional; when present, auth-status lookups are cached for statusTTL and
// invalidated on every lifecycle mutation.
func NewAuthService(admins repository.AdminRepository, supervisors repository.SupervisorRepository, redisClient *redis.Client, statusTTL time.Duration, logger zerolog.Logger) AuthService {
	return &authService{
		admins:      admins,
		supervisors: supervisors,
		redis:       redisClient,
		statusTTL:   statusTTL,
		logger:      logger.With().Str("component", "auth_service").Logger(),
	}
}

// adminEmailVerificationExempt is the explicit rule that admin accounts skip
// the provider-side email-verification gate. Kept as a named function so the
// exemption is auditable rather than buried in a conditional.
func adminEmailVerificationExempt(role models.Role) bool {
	return role == models.RoleAdmin
}

// ResolvePrincipal maps a verified identity to its directory-backed
// principal. The admin table is consulted first: if an external id ever
// appears in both tables, the admin variant wins deterministically.
// Read-only, no side effects.
func (s *authService) ResolvePrincipal(ctx context.Context, id identity.Identity) (models.Principal, error) {
	admin, err := s.admins.GetByExternalID(ctx, id.ExternalID)
	if err == nil {
		return models.Principal{
			ExternalID: admin.ExternalID,
			Email:      admin.Email,
			Role:       models.RoleAdmin,
			Region:     admin.Region,
			IsApproved: true,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Principal{}, err
	}

	supervisor, err := s.supervisors.GetByExternalID(ctx, id.ExternalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Principal{}, ErrAccountNotFound
		}
		return models.Principal{}, err
	}

	return models.Principal{
		ExternalID: supervisor.ExternalID,
		Email:      supervisor.Email,
		Role:       models.RoleSupervisor,
		Region:     supervisor.Region,
		IsApproved: supervisor.IsApproved,
	}, nil
}

func (s *authService) Status(ctx context.Context, externalID string) (dto.AuthStatusResponse, error) {
	cacheKey := statusCacheKey(externalID)
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.AuthStatusResponse
			if err := json.Unmarshal([]byte(cached), &response); err == nil {
				return response, nil
			}
		}
	}

	principal, err := s.ResolvePrincipal(ctx, identity.Identity{ExternalID: externalID})
	if err != nil {
		return dto.AuthStatusResponse{}, err
	}

	response := dto.AuthStatusResponse{
		Role:       principal.Role,
		IsApproved: principal.IsApproved,
		Region:     principal.Region,
		Email:      principal.Email,
	}

	if s.redis != nil && s.statusTTL > 0 {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.redis.Set(ctx, cacheKey, payload, s.statusTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to cache auth status")
			}
		}
	}

	return response, nil
}

// InvalidateStatus drops the cached auth-status entry after a lifecycle
// mutation so clients never observe a stale role or approval flag.
func (s *authService) InvalidateStatus(ctx context.Context, externalID string) {
	if s.redis == nil || externalID == "" {
		return
	}

	if err := s.redis.Del(ctx, statusCacheKey(externalID)).Err(); err != nil {
		s.logger.Warn().Err(err).Str("external_id", externalID).Msg("failed to invalidate auth status cache")
	}
}

func statusCacheKey(externalID string) string {
	return fmt.Sprintf("auth:status:%s", externalID)
}
