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
	"github.com/resqnet/resq-go-api/pkg/identity"
)

type stubAuthService struct {
	statusFn func(ctx context.Context, externalID string) (dto.AuthStatusResponse, error)
}

func (s *stubAuthService) ResolvePrincipal(context.Context, identity.Identity) (models.Principal, error) {
	return models.Principal{}, nil
}

func (s *stubAuthService) Status(ctx context.Context, externalID string) (dto.AuthStatusResponse, error) {
	return s.statusFn(ctx, externalID)
}

func (s *stubAuthService) InvalidateStatus(context.Context, string) {}

type stubLogService struct {
	recordFn func(ctx context.Context, principal models.Principal, payload dto.LogCreateRequest) (bool, dto.LogEntryResponse, error)
	listFn   func(ctx context.Context, actor models.Principal) ([]dto.LogEntryResponse, error)
}

func (s *stubLogService) RecordEvent(ctx context.Context, principal models.Principal, payload dto.LogCreateRequest) (bool, dto.LogEntryResponse, error) {
	if s.recordFn == nil {
		return false, dto.LogEntryResponse{}, nil
	}
	return s.recordFn(ctx, principal, payload)
}

func (s *stubLogService) ListForRegion(ctx context.Context, actor models.Principal) ([]dto.LogEntryResponse, error) {
	return s.listFn(ctx, actor)
}

func TestAuthStatus(t *testing.T) {
	auth := &stubAuthService{
		statusFn: func(_ context.Context, externalID string) (dto.AuthStatusResponse, error) {
			if externalID != "uid-known" {
				return dto.AuthStatusResponse{}, service.ErrAccountNotFound
			}
			return dto.AuthStatusResponse{Role: models.RoleSupervisor, Region: "Pune", IsApproved: true, Email: "asha@example.com"}, nil
		},
	}
	h := NewAuthHandler(auth, &stubLogService{}, zerolog.Nop())

	app := fiber.New()
	h.RegisterPublic(app.Group("/auth"))

	resp, err := app.Test(httptest.NewRequest("GET", "/auth/status/uid-known", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeResponse(t, resp)
	data, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, string(models.RoleSupervisor), data["role"])
	require.Equal(t, true, data["is_approved"])

	resp, err = app.Test(httptest.NewRequest("GET", "/auth/status/uid-unknown", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestLoginRecordsSupervisorEvent(t *testing.T) {
	principal := models.Principal{ExternalID: "uid-asha", Email: "asha@example.com", Role: models.RoleSupervisor, Region: "Pune", IsApproved: true}

	var recorded []dto.LogCreateRequest
	logs := &stubLogService{
		recordFn: func(_ context.Context, got models.Principal, payload dto.LogCreateRequest) (bool, dto.LogEntryResponse, error) {
			require.Equal(t, principal.ExternalID, got.ExternalID)
			recorded = append(recorded, payload)
			return true, dto.LogEntryResponse{EventType: payload.EventType}, nil
		},
	}
	h := NewAuthHandler(&stubAuthService{}, logs, zerolog.Nop())

	app := fiber.New()
	h.RegisterProtected(app.Group("/auth", withPrincipal(principal, true)))

	resp, err := app.Test(jsonRequest("POST", "/auth/login", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Len(t, recorded, 1)
	require.Equal(t, models.LogEventLogin, recorded[0].EventType)

	body := decodeResponse(t, resp)
	data, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "uid-asha", data["external_id"])
}

func TestLoginBlocksUnverifiedSupervisor(t *testing.T) {
	principal := models.Principal{ExternalID: "uid-new", Role: models.RoleSupervisor}

	logs := &stubLogService{
		recordFn: func(context.Context, models.Principal, dto.LogCreateRequest) (bool, dto.LogEntryResponse, error) {
			t.Fatal("no event may be recorded for a rejected login")
			return false, dto.LogEntryResponse{}, nil
		},
	}
	h := NewAuthHandler(&stubAuthService{}, logs, zerolog.Nop())

	app := fiber.New()
	h.RegisterProtected(app.Group("/auth", withPrincipal(principal, false)))

	resp, err := app.Test(jsonRequest("POST", "/auth/login", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestLoginAdminSkipsVerificationGate(t *testing.T) {
	principal := models.Principal{ExternalID: "uid-admin", Role: models.RoleAdmin, Region: "Pune", IsApproved: true}

	logs := &stubLogService{
		recordFn: func(_ context.Context, got models.Principal, _ dto.LogCreateRequest) (bool, dto.LogEntryResponse, error) {
			require.True(t, got.IsAdmin())
			return false, dto.LogEntryResponse{}, nil
		},
	}
	h := NewAuthHandler(&stubAuthService{}, logs, zerolog.Nop())

	app := fiber.New()
	h.RegisterProtected(app.Group("/auth", withPrincipal(principal, false)))

	resp, err := app.Test(jsonRequest("POST", "/auth/login", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
