package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/resqnet/resq-go-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// cache=shared lets GORM's pooled connections see the same in-memory DB;
	// the per-test name keeps state from leaking between tests.
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Admin{}, &models.Supervisor{}, &models.SupervisorLog{}, &models.Alert{}))
	return db
}

func TestSupervisorRepositorySetRegionResetsApproval(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSupervisorRepository(db)

	supervisor := models.Supervisor{Name: "Asha", Email: "asha@example.com", ExternalID: "uid-asha", Region: "Pune", IsApproved: true}
	require.NoError(t, repo.Create(context.Background(), &supervisor))

	updated, err := repo.SetRegion(context.Background(), "uid-asha", "Mumbai")
	require.NoError(t, err)
	require.Equal(t, "Mumbai", updated.Region)
	require.False(t, updated.IsApproved, "region change must invalidate prior approval")

	_, err = repo.SetRegion(context.Background(), "uid-missing", "Pune")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSupervisorRepositoryApproveGuards(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSupervisorRepository(db)

	pending := models.Supervisor{Name: "Ravi", Email: "ravi@example.com", ExternalID: "uid-ravi", Region: "Nagpur"}
	require.NoError(t, repo.Create(context.Background(), &pending))

	// Wrong region observed by the caller: the update must not apply.
	_, err := repo.Approve(context.Background(), pending.ID, "Solapur")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	fresh, err := repo.GetByID(context.Background(), pending.ID)
	require.NoError(t, err)
	require.False(t, fresh.IsApproved)

	approved, err := repo.Approve(context.Background(), pending.ID, "Nagpur")
	require.NoError(t, err)
	require.True(t, approved.IsApproved)
}

func TestSupervisorRepositoryApproveRejectsEmptyRegion(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSupervisorRepository(db)

	unassigned := models.Supervisor{Name: "Kiran", Email: "kiran@example.com", ExternalID: "uid-kiran", Region: ""}
	require.NoError(t, repo.Create(context.Background(), &unassigned))

	_, err := repo.Approve(context.Background(), unassigned.ID, "")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	fresh, err := repo.GetByID(context.Background(), unassigned.ID)
	require.NoError(t, err)
	require.False(t, fresh.IsApproved, "a supervisor without a region must never become approved")
}

func TestSupervisorRepositoryResetClearsRegionAndApproval(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSupervisorRepository(db)

	active := models.Supervisor{Name: "Meera", Email: "meera@example.com", ExternalID: "uid-meera", Region: "Thane", IsApproved: true}
	require.NoError(t, repo.Create(context.Background(), &active))

	reset, err := repo.Reset(context.Background(), active.ID, "Thane")
	require.NoError(t, err)
	require.Empty(t, reset.Region)
	require.False(t, reset.IsApproved)
}

func TestSupervisorRepositoryListByRegionFiltersAndOrders(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSupervisorRepository(db)

	older := models.Supervisor{Name: "First", Email: "first@list.example.com", ExternalID: "uid-list-1", Region: "Satara", CreatedAt: time.Now().Add(-2 * time.Hour)}
	newer := models.Supervisor{Name: "Second", Email: "second@list.example.com", ExternalID: "uid-list-2", Region: "Satara", CreatedAt: time.Now().Add(-time.Hour)}
	elsewhere := models.Supervisor{Name: "Other", Email: "other@list.example.com", ExternalID: "uid-list-3", Region: "Latur"}
	unassigned := models.Supervisor{Name: "Blank", Email: "blank@list.example.com", ExternalID: "uid-list-4", Region: ""}
	require.NoError(t, repo.Create(context.Background(), &older))
	require.NoError(t, repo.Create(context.Background(), &newer))
	require.NoError(t, repo.Create(context.Background(), &elsewhere))
	require.NoError(t, repo.Create(context.Background(), &unassigned))

	pending, err := repo.ListByRegion(context.Background(), "Satara", false)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, "First", pending[0].Name, "expected oldest record first")
	require.Equal(t, "Second", pending[1].Name)

	empty, err := repo.ListByRegion(context.Background(), "", false)
	require.NoError(t, err)
	require.Len(t, empty, 1, "only explicitly unassigned supervisors match the empty region")
	require.Equal(t, "Blank", empty[0].Name)
}

func TestSupervisorRepositoryExistsByEmailOrExternalID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSupervisorRepository(db)

	existing := models.Supervisor{Name: "Dup", Email: "dup@example.com", ExternalID: "uid-dup"}
	require.NoError(t, repo.Create(context.Background(), &existing))

	taken, err := repo.ExistsByEmailOrExternalID(context.Background(), "dup@example.com", "uid-other")
	require.NoError(t, err)
	require.True(t, taken)

	taken, err = repo.ExistsByEmailOrExternalID(context.Background(), "fresh@example.com", "uid-dup")
	require.NoError(t, err)
	require.True(t, taken)

	taken, err = repo.ExistsByEmailOrExternalID(context.Background(), "fresh@example.com", "uid-fresh")
	require.NoError(t, err)
	require.False(t, taken)
}
