package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/resqnet/resq-go-api/internal/models"
)

// SupervisorRepository provides access to supervisor accounts and their
// onboarding state. All mutations are single-statement conditional updates so
// two admins acting on the same supervisor cannot silently overwrite each
// other.
type SupervisorRepository interface {
	GetByExternalID(ctx context.Context, externalID string) (models.Supervisor, error)
	GetByID(ctx context.Context, id uint) (models.Supervisor, error)
	ExistsByEmailOrExternalID(ctx context.Context, email, externalID string) (bool, error)
	Create(ctx context.Context, supervisor *models.Supervisor) error
	SetRegion(ctx context.Context, externalID, region string) (models.Supervisor, error)
	Approve(ctx context.Context, id uint, region string) (models.Supervisor, error)
	Reset(ctx context.Context, id uint, region string) (models.Supervisor, error)
	ListByRegion(ctx context.Context, region string, approved bool) ([]models.Supervisor, error)
}

type supervisorRepository struct {
	db *gorm.DB
}

// NewSupervisorRepository constructs a supervisor repository.
func NewSupervisorRepository(db *gorm.DB) SupervisorRepository {
	return &supervisorRepository{db: db}
}

func (r *supervisorRepository) GetByExternalID(ctx context.Context, externalID string) (models.Supervisor, error) {
	var supervisor models.Supervisor
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&supervisor).Error; err != nil {
		return models.Supervisor{}, err
	}

	return supervisor, nil
}

func (r *supervisorRepository) GetByID(ctx context.Context, id uint) (models.Supervisor, error) {
	var supervisor models.Supervisor
	if err := r.db.WithContext(ctx).First(&supervisor, id).Error; err != nil {
		return models.Supervisor{}, err
	}

	return supervisor, nil
}

func (r *supervisorRepository) ExistsByEmailOrExternalID(ctx context.Context, email, externalID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Supervisor{}).
		Where("email = ? OR external_id = ?", email, externalID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *supervisorRepository) Create(ctx context.Context, supervisor *models.Supervisor) error {
	return r.db.WithContext(ctx).Create(supervisor).Error
}

// SetRegion records the supervisor's region selection. Approval is always
// reset in the same statement: a region change invalidates any approval that
// was granted for the previous region.
func (r *supervisorRepository) SetRegion(ctx context.Context, externalID, region string) (models.Supervisor, error) {
	tx := r.db.WithContext(ctx).Model(&models.Supervisor{}).
		Where("external_id = ?", externalID).
		Updates(map[string]interface{}{"region": region, "is_approved": false})
	if tx.Error != nil {
		return models.Supervisor{}, tx.Error
	}
	if tx.RowsAffected == 0 {
		return models.Supervisor{}, gorm.ErrRecordNotFound
	}

	return r.GetByExternalID(ctx, externalID)
}

// Approve flips the approval flag, guarded by the region the caller observed.
// The guard also excludes supervisors that have not selected a region yet, so
// an account with an empty region can never become approved.
func (r *supervisorRepository) Approve(ctx context.Context, id uint, region string) (models.Supervisor, error) {
	tx := r.db.WithContext(ctx).Model(&models.Supervisor{}).
		Where("id = ? AND region = ? AND region <> ''", id, region).
		Update("is_approved", true)
	if tx.Error != nil {
		return models.Supervisor{}, tx.Error
	}
	if tx.RowsAffected == 0 {
		return models.Supervisor{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, id)
}

// Reset returns the supervisor to the pre-onboarding state: approval revoked
// and region cleared, forcing a fresh region selection before the account can
// surface in any admin queue again.
func (r *supervisorRepository) Reset(ctx context.Context, id uint, region string) (models.Supervisor, error) {
	tx := r.db.WithContext(ctx).Model(&models.Supervisor{}).
		Where("id = ? AND region = ?", id, region).
		Updates(map[string]interface{}{"region": "", "is_approved": false})
	if tx.Error != nil {
		return models.Supervisor{}, tx.Error
	}
	if tx.RowsAffected == 0 {
		return models.Supervisor{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *supervisorRepository) ListByRegion(ctx context.Context, region string, approved bool) ([]models.Supervisor, error) {
	var supervisors []models.Supervisor
	err := r.db.WithContext(ctx).
		Where("region = ? AND is_approved = ?", region, approved).
		Order("created_at ASC").
		Find(&supervisors).Error
	if err != nil {
		return nil, err
	}

	return supervisors, nil
}
