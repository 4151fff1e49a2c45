package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/resqnet/resq-go-api/internal/dto"
	"github.com/resqnet/resq-go-api/internal/models"
	"github.com/resqnet/resq-go-api/internal/repository"
)

var (
	// ErrAccountExists indicates the email or external id is already taken.
	ErrAccountExists = errors.New("account already exists")
	// ErrRegionRequired is returned when a profile completion omits the region.
	ErrRegionRequired = errors.New("region selection is required")
	// ErrSupervisorNotFound indicates no supervisor record matches.
	ErrSupervisorNotFound = errors.New("supervisor not found")
	// ErrNotAdmin guards admin-only operations.
	ErrNotAdmin = errors.New("actor is not an admin")
	// ErrCrossRegion rejects admin actions on supervisors outside the
	// admin's own region, including supervisors with no region selected.
	ErrCrossRegion = errors.New("supervisor is outside the admin's region")
)

// StatusInvalidator drops cached auth-status entries after a lifecycle
// mutation. AuthService satisfies it.
type StatusInvalidator interface {
	InvalidateStatus(ctx context.Context, externalID string)
}

// OnboardingService governs the supervisor lifecycle from registration
// through region selection, approval, and revocation, plus the region-scoped
// admin queues.
type OnboardingService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.SupervisorResponse, error)
	CompleteProfile(ctx context.Context, principal models.Principal, payload dto.CompleteProfileRequest) (dto.SupervisorResponse, error)
	Profile(ctx context.Context, principal models.Principal) (dto.SupervisorResponse, error)
	Approve(ctx context.Context, actor models.Principal, targetID uint) (dto.SupervisorResponse, error)
	Revoke(ctx context.Context, actor models.Principal, targetID uint) (dto.SupervisorResponse, error)
	ListPending(ctx context.Context, actor models.Principal) ([]dto.SupervisorResponse, error)
	ListApproved(ctx context.Context, actor models.Principal) ([]dto.SupervisorResponse, error)
}

type onboardingService struct {
	supervisors repository.SupervisorRepository
	admins      repository.AdminRepository
	validator   *validator.Validate
	status      StatusInvalidator
	logger      zerolog.Logger
}

// NewOnboardingService constructs the onboarding state machine. The status
// invalidator is optional.
func NewOnboardingService(supervisors repository.SupervisorRepository, admins repository.AdminRepository, validate *validator.Validate, status StatusInvalidator, logger zerolog.Logger) OnboardingService {
	return &onboardingService{
		supervisors: supervisors,
		admins:      admins,
		validator:   validate,
		status:      status,
		logger:      logger.With().Str("component", "onboarding_service").Logger(),
	}
}

// Register creates the supervisor identity with an empty region. The region
// is attested in the complete-profile step, never at signup.
func (s *onboardingService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.SupervisorResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SupervisorResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	externalID := strings.TrimSpace(payload.ExternalID)

	// Both identity spaces are checked: a registration may not collide with
	// an admin account either.
	if taken, err := s.supervisors.ExistsByEmailOrExternalID(ctx, email, externalID); err != nil {
		return dto.SupervisorResponse{}, err
	} else if taken {
		return dto.SupervisorResponse{}, ErrAccountExists
	}
	if taken, err := s.admins.ExistsByEmailOrExternalID(ctx, email, externalID); err != nil {
		return dto.SupervisorResponse{}, err
	} else if taken {
		return dto.SupervisorResponse{}, ErrAccountExists
	}

	supervisor := models.Supervisor{
		Name:       strings.TrimSpace(payload.Name),
		Email:      email,
		ExternalID: externalID,
		Region:     "",
		IsApproved: false,
	}

	if err := s.supervisors.Create(ctx, &supervisor); err != nil {
		return dto.SupervisorResponse{}, err
	}

	s.logger.Info().Str("external_id", externalID).Msg("supervisor registered")
	return dto.NewSupervisorResponse(supervisor), nil
}

// CompleteProfile records the region selection. Re-submission is idempotent
// and always resets approval: changing region invalidates any approval that
// was granted for the previous one.
func (s *onboardingService) CompleteProfile(ctx context.Context, principal models.Principal, payload dto.CompleteProfileRequest) (dto.SupervisorResponse, error) {
	region := strings.TrimSpace(payload.Region)
	if region == "" {
		return dto.SupervisorResponse{}, ErrRegionRequired
	}

	supervisor, err := s.supervisors.SetRegion(ctx, principal.ExternalID, region)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SupervisorResponse{}, ErrSupervisorNotFound
		}
		return dto.SupervisorResponse{}, err
	}

	s.invalidate(ctx, supervisor.ExternalID)
	s.logger.Info().Str("external_id", supervisor.ExternalID).Str("region", region).Msg("supervisor region selected")
	return dto.NewSupervisorResponse(supervisor), nil
}

func (s *onboardingService) Profile(ctx context.Context, principal models.Principal) (dto.SupervisorResponse, error) {
	supervisor, err := s.supervisors.GetByExternalID(ctx, principal.ExternalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SupervisorResponse{}, ErrSupervisorNotFound
		}
		return dto.SupervisorResponse{}, err
	}

	return dto.NewSupervisorResponse(supervisor), nil
}

// Approve grants region-scoped access. The repository update re-checks the
// region observed here, so a concurrent region change makes the approval a
// no-op instead of a lost update.
func (s *onboardingService) Approve(ctx context.Context, actor models.Principal, targetID uint) (dto.SupervisorResponse, error) {
	target, err := s.authorizeAdminAction(ctx, actor, targetID)
	if err != nil {
		return dto.SupervisorResponse{}, err
	}

	updated, err := s.supervisors.Approve(ctx, target.ID, target.Region)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SupervisorResponse{}, ErrSupervisorNotFound
		}
		return dto.SupervisorResponse{}, err
	}

	s.invalidate(ctx, updated.ExternalID)
	s.logger.Info().Str("external_id", updated.ExternalID).Str("region", updated.Region).Msg("supervisor approved")
	return dto.NewSupervisorResponse(updated), nil
}

// Revoke performs the full reset: approval revoked and region cleared. The
// supervisor must re-attest a region before appearing in any admin queue.
func (s *onboardingService) Revoke(ctx context.Context, actor models.Principal, targetID uint) (dto.SupervisorResponse, error) {
	target, err := s.authorizeAdminAction(ctx, actor, targetID)
	if err != nil {
		return dto.SupervisorResponse{}, err
	}

	updated, err := s.supervisors.Reset(ctx, target.ID, target.Region)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SupervisorResponse{}, ErrSupervisorNotFound
		}
		return dto.SupervisorResponse{}, err
	}

	s.invalidate(ctx, updated.ExternalID)
	s.logger.Info().Str("external_id", updated.ExternalID).Msg("supervisor access revoked")
	return dto.NewSupervisorResponse(updated), nil
}

// ListPending returns the admin's approval queue. Supervisors without a
// region are excluded by construction: region "" never equals an admin
// region, which also makes them unapprovable.
func (s *onboardingService) ListPending(ctx context.Context, actor models.Principal) ([]dto.SupervisorResponse, error) {
	if !actor.IsAdmin() {
		return nil, ErrNotAdmin
	}

	supervisors, err := s.supervisors.ListByRegion(ctx, actor.Region, false)
	if err != nil {
		return nil, err
	}

	return dto.NewSupervisorResponseSlice(supervisors), nil
}

func (s *onboardingService) ListApproved(ctx context.Context, actor models.Principal) ([]dto.SupervisorResponse, error) {
	if !actor.IsAdmin() {
		return nil, ErrNotAdmin
	}

	supervisors, err := s.supervisors.ListByRegion(ctx, actor.Region, true)
	if err != nil {
		return nil, err
	}

	return dto.NewSupervisorResponseSlice(supervisors), nil
}

func (s *onboardingService) authorizeAdminAction(ctx context.Context, actor models.Principal, targetID uint) (models.Supervisor, error) {
	if !actor.IsAdmin() {
		return models.Supervisor{}, ErrNotAdmin
	}

	target, err := s.supervisors.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Supervisor{}, ErrSupervisorNotFound
		}
		return models.Supervisor{}, err
	}

	if target.Region == "" || target.Region != actor.Region {
		return models.Supervisor{}, ErrCrossRegion
	}

	return target, nil
}

func (s *onboardingService) invalidate(ctx context.Context, externalID string) {
	if s.status != nil {
		s.status.InvalidateStatus(ctx, externalID)
	}
}
