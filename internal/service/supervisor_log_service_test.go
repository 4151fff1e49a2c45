package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/resqnet/resq-go-api/internal/dto"
	"github.com/resqnet/resq-go-api/internal/models"
	"github.com/resqnet/resq-go-api/internal/repository"
)

func TestRecordEventSkipsAdmins(t *testing.T) {
	db := setupServiceDB(t)
	repo := repository.NewSupervisorLogRepository(db)
	svc := NewSupervisorLogService(repo, validator.New(), testLogger())

	admin := models.Principal{ExternalID: "uid-log-admin", Email: "admin@logsvc.example.com", Role: models.RoleAdmin, Region: "Log-A"}

	created, entry, err := svc.RecordEvent(context.Background(), admin, dto.LogCreateRequest{EventType: models.LogEventLogin})
	require.NoError(t, err)
	require.False(t, created, "admin events are never logged")
	require.Zero(t, entry.ID)

	stored, err := repo.ListByRegion(context.Background(), "Log-A")
	require.NoError(t, err)
	require.Empty(t, stored)
}

func TestRecordEventCapturesRegionAndSanitizes(t *testing.T) {
	db := setupServiceDB(t)
	repo := repository.NewSupervisorLogRepository(db)
	svc := NewSupervisorLogService(repo, validator.New(), testLogger())

	supervisor := models.Principal{
		ExternalID: "uid-log-sup",
		Email:      "sup@logsvc.example.com",
		Role:       models.RoleSupervisor,
		Region:     "Log-B",
		IsApproved: true,
	}

	created, entry, err := svc.RecordEvent(context.Background(), supervisor, dto.LogCreateRequest{
		EventType:         models.LogEventAction,
		ActionDescription: "dispatched <script>alert('x')</script> rescue boat",
	})
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, "Log-B", entry.Region)
	require.NotContains(t, entry.ActionDescription, "<script>")
	require.Contains(t, entry.ActionDescription, "rescue boat")
}

func TestRecordEventRejectsUnknownEventType(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewSupervisorLogService(repository.NewSupervisorLogRepository(db), validator.New(), testLogger())

	supervisor := models.Principal{ExternalID: "uid-log-bad", Role: models.RoleSupervisor, Region: "Log-C"}

	_, _, err := svc.RecordEvent(context.Background(), supervisor, dto.LogCreateRequest{EventType: "reboot"})
	require.Error(t, err)
	var vErrs validator.ValidationErrors
	require.ErrorAs(t, err, &vErrs)
}

func TestListForRegionIsAdminScoped(t *testing.T) {
	db := setupServiceDB(t)
	repo := repository.NewSupervisorLogRepository(db)
	svc := NewSupervisorLogService(repo, validator.New(), testLogger())

	inRegion := models.Principal{ExternalID: "uid-log-d1", Email: "d1@logsvc.example.com", Role: models.RoleSupervisor, Region: "Log-D"}
	elsewhere := models.Principal{ExternalID: "uid-log-e1", Email: "e1@logsvc.example.com", Role: models.RoleSupervisor, Region: "Log-E"}

	for _, p := range []models.Principal{inRegion, elsewhere} {
		created, _, err := svc.RecordEvent(context.Background(), p, dto.LogCreateRequest{EventType: models.LogEventLogin})
		require.NoError(t, err)
		require.True(t, created)
	}

	admin := models.Principal{ExternalID: "uid-log-admin-d", Role: models.RoleAdmin, Region: "Log-D", IsApproved: true}

	entries, err := svc.ListForRegion(context.Background(), admin)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "uid-log-d1", entries[0].SupervisorExternalID)

	_, err = svc.ListForRegion(context.Background(), inRegion)
	require.ErrorIs(t, err, ErrNotAdmin)
}
