package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/resqnet/resq-go-api/internal/models"
)

// AdminRepository provides access to regional admin accounts.
type AdminRepository interface {
	GetByExternalID(ctx context.Context, externalID string) (models.Admin, error)
	GetByRegion(ctx context.Context, region string) (models.Admin, error)
	ExistsByEmailOrExternalID(ctx context.Context, email, externalID string) (bool, error)
	Create(ctx context.Context, admin *models.Admin) error
}

type adminRepository struct {
	db *gorm.DB
}

// NewAdminRepository constructs an admin repository.
func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) GetByExternalID(ctx context.Context, externalID string) (models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&admin).Error; err != nil {
		return models.Admin{}, err
	}

	return admin, nil
}

func (r *adminRepository) GetByRegion(ctx context.Context, region string) (models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).Where("region = ?", region).First(&admin).Error; err != nil {
		return models.Admin{}, err
	}

	return admin, nil
}

func (r *adminRepository) ExistsByEmailOrExternalID(ctx context.Context, email, externalID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Admin{}).
		Where("email = ? OR external_id = ?", email, externalID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *adminRepository) Create(ctx context.Context, admin *models.Admin) error {
	return r.db.WithContext(ctx).Create(admin).Error
}
