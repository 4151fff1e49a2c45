package handler

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/resqnet/resq-go-api/internal/dto"
	"github.com/resqnet/resq-go-api/internal/models"
	"github.com/resqnet/resq-go-api/internal/service"
)

func TestLogCreateSupervisorEvent(t *testing.T) {
	principal := models.Principal{ExternalID: "uid-sup", Email: "sup@example.com", Role: models.RoleSupervisor, Region: "Pune", IsApproved: true}

	logs := &stubLogService{
		recordFn: func(_ context.Context, got models.Principal, payload dto.LogCreateRequest) (bool, dto.LogEntryResponse, error) {
			return true, dto.LogEntryResponse{
				SupervisorExternalID: got.ExternalID,
				Region:               got.Region,
				EventType:            payload.EventType,
				ActionDescription:    payload.ActionDescription,
			}, nil
		},
	}
	h := NewLogHandler(logs, zerolog.Nop())

	app := fiber.New()
	h.Register(app.Group("/logs", withPrincipal(principal, true)))

	resp, err := app.Test(jsonRequest("POST", "/logs/create", dto.LogCreateRequest{
		EventType:         models.LogEventAction,
		ActionDescription: "requested additional ambulances",
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeResponse(t, resp)
	data, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "Pune", data["region"])
	require.Equal(t, models.LogEventAction, data["event_type"])
}

func TestLogCreateAdminIsNoOp(t *testing.T) {
	admin := models.Principal{ExternalID: "uid-admin", Role: models.RoleAdmin, Region: "Pune"}

	logs := &stubLogService{
		recordFn: func(context.Context, models.Principal, dto.LogCreateRequest) (bool, dto.LogEntryResponse, error) {
			return false, dto.LogEntryResponse{}, nil
		},
	}
	h := NewLogHandler(logs, zerolog.Nop())

	app := fiber.New()
	h.Register(app.Group("/logs", withPrincipal(admin, true)))

	resp, err := app.Test(jsonRequest("POST", "/logs/create", dto.LogCreateRequest{EventType: models.LogEventLogin}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeResponse(t, resp)
	require.True(t, body.Success)
	require.Equal(t, "admin events are not logged", body.Message)
	require.Nil(t, body.Data)
}

func TestLogCreateRejectsInvalidEvent(t *testing.T) {
	validationErr := validationErrorFor(t, dto.LogCreateRequest{EventType: "reboot"})

	logs := &stubLogService{
		recordFn: func(context.Context, models.Principal, dto.LogCreateRequest) (bool, dto.LogEntryResponse, error) {
			return false, dto.LogEntryResponse{}, validationErr
		},
	}
	h := NewLogHandler(logs, zerolog.Nop())

	app := fiber.New()
	h.Register(app.Group("/logs", withPrincipal(models.Principal{Role: models.RoleSupervisor, Region: "Pune"}, true)))

	resp, err := app.Test(jsonRequest("POST", "/logs/create", dto.LogCreateRequest{EventType: "reboot"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLogListRegion(t *testing.T) {
	admin := models.Principal{ExternalID: "uid-admin", Role: models.RoleAdmin, Region: "Pune"}

	logs := &stubLogService{
		listFn: func(_ context.Context, actor models.Principal) ([]dto.LogEntryResponse, error) {
			if !actor.IsAdmin() {
				return nil, service.ErrNotAdmin
			}
			return []dto.LogEntryResponse{{Region: actor.Region, EventType: models.LogEventLogin}}, nil
		},
	}
	h := NewLogHandler(logs, zerolog.Nop())

	app := fiber.New()
	h.Register(app.Group("/logs", withPrincipal(admin, true)))

	resp, err := app.Test(httptest.NewRequest("GET", "/logs/region", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestLogListRegionForbiddenForSupervisors(t *testing.T) {
	supervisor := models.Principal{ExternalID: "uid-sup", Role: models.RoleSupervisor, Region: "Pune", IsApproved: true}

	logs := &stubLogService{
		listFn: func(context.Context, models.Principal) ([]dto.LogEntryResponse, error) {
			return nil, service.ErrNotAdmin
		},
	}
	h := NewLogHandler(logs, zerolog.Nop())

	app := fiber.New()
	h.Register(app.Group("/logs", withPrincipal(supervisor, true)))

	resp, err := app.Test(httptest.NewRequest("GET", "/logs/region", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
