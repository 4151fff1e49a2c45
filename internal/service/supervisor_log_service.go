package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/resqnet/resq-go-api/internal/dto"
	"github.com/resqnet/resq-go-api/internal/models"
	"github.com/resqnet/resq-go-api/internal/repository"
)

// SupervisorLogService records supervisor activity and serves the region
// audit trail to admins.
type SupervisorLogService interface {
	// RecordEvent appends an audit entry for supervisor principals. Admin
	// principals are a deliberate no-op: admin actions are never logged.
	// The returned flag reports whether an entry was created.
	RecordEvent(ctx context.Context, principal models.Principal, payload dto.LogCreateRequest) (bool, dto.LogEntryResponse, error)
	ListForRegion(ctx context.Context, actor models.Principal) ([]dto.LogEntryResponse, error)
}

type supervisorLogService struct {
	repo      repository.SupervisorLogRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewSupervisorLogService constructs the activity log service.
func NewSupervisorLogService(repo repository.SupervisorLogRepository, validate *validator.Validate, logger zerolog.Logger) SupervisorLogService {
	return &supervisorLogService{
		repo:      repo,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "supervisor_log_service").Logger(),
	}
}

func (s *supervisorLogService) RecordEvent(ctx context.Context, principal models.Principal, payload dto.LogCreateRequest) (bool, dto.LogEntryResponse, error) {
	if principal.Role != models.RoleSupervisor {
		return false, dto.LogEntryResponse{}, nil
	}

	if err := s.validator.Struct(payload); err != nil {
		return false, dto.LogEntryResponse{}, err
	}

	// The region is captured at event time. Historical entries keep the
	// region the supervisor served then, even after a later revoke.
	entry := models.SupervisorLog{
		SupervisorExternalID: principal.ExternalID,
		Email:                principal.Email,
		Region:               principal.Region,
		EventType:            payload.EventType,
		ActionDescription:    strings.TrimSpace(s.sanitizer.Sanitize(payload.ActionDescription)),
	}

	if err := s.repo.Create(ctx, &entry); err != nil {
		return false, dto.LogEntryResponse{}, err
	}

	return true, dto.NewLogEntryResponse(entry), nil
}

func (s *supervisorLogService) ListForRegion(ctx context.Context, actor models.Principal) ([]dto.LogEntryResponse, error) {
	if !actor.IsAdmin() {
		return nil, ErrNotAdmin
	}

	entries, err := s.repo.ListByRegion(ctx, actor.Region)
	if err != nil {
		return nil, err
	}

	return dto.NewLogEntryResponseSlice(entries), nil
}
