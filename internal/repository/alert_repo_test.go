package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/resqnet/resq-go-api/internal/models"
)

func TestAlertRepositoryLifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAlertRepository(db)

	alert := models.Alert{
		PublicID: "alrt-1001",
		Region:   "Nashik",
		Message:  "flood near river bank",
		Location: datatypes.JSONMap{"lat": 19.99, "lng": 73.78},
		Status:   models.AlertStatusOpen,
	}
	require.NoError(t, repo.Create(context.Background(), &alert))

	stored, err := repo.GetByPublicID(context.Background(), "alrt-1001")
	require.NoError(t, err)
	require.Equal(t, models.AlertStatusOpen, stored.Status)

	// Status updates are region-guarded: a responder from another region
	// must not be able to touch the alert.
	_, err = repo.UpdateStatus(context.Background(), "alrt-1001", "Aurangabad", models.AlertStatusAcknowledged)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	acked, err := repo.UpdateStatus(context.Background(), "alrt-1001", "Nashik", models.AlertStatusAcknowledged)
	require.NoError(t, err)
	require.Equal(t, models.AlertStatusAcknowledged, acked.Status)
}

func TestAlertRepositoryListByRegionStatusFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAlertRepository(db)

	open := models.Alert{PublicID: "alrt-2001", Region: "Jalgaon", Message: "fire reported", Status: models.AlertStatusOpen}
	resolved := models.Alert{PublicID: "alrt-2002", Region: "Jalgaon", Message: "road cleared", Status: models.AlertStatusResolved}
	other := models.Alert{PublicID: "alrt-2003", Region: "Dhule", Message: "power outage", Status: models.AlertStatusOpen}
	for _, a := range []*models.Alert{&open, &resolved, &other} {
		require.NoError(t, repo.Create(context.Background(), a))
	}

	all, err := repo.ListByRegion(context.Background(), "Jalgaon", "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	onlyOpen, err := repo.ListByRegion(context.Background(), "Jalgaon", models.AlertStatusOpen)
	require.NoError(t, err)
	require.Len(t, onlyOpen, 1)
	require.Equal(t, "alrt-2001", onlyOpen[0].PublicID)
}
