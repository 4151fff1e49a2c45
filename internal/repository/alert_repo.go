package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/resqnet/resq-go-api/internal/models"
)

// AlertRepository persists SOS alerts raised by the public.
type AlertRepository interface {
	Create(ctx context.Context, alert *models.Alert) error
	GetByPublicID(ctx context.Context, publicID string) (models.Alert, error)
	ListByRegion(ctx context.Context, region, status string) ([]models.Alert, error)
	UpdateStatus(ctx context.Context, publicID, region, status string) (models.Alert, error)
}

type alertRepository struct {
	db *gorm.DB
}

// NewAlertRepository constructs an alert repository.
func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(ctx context.Context, alert *models.Alert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *alertRepository) GetByPublicID(ctx context.Context, publicID string) (models.Alert, error) {
	var alert models.Alert
	if err := r.db.WithContext(ctx).Where("public_id = ?", publicID).First(&alert).Error; err != nil {
		return models.Alert{}, err
	}

	return alert, nil
}

func (r *alertRepository) ListByRegion(ctx context.Context, region, status string) ([]models.Alert, error) {
	query := r.db.WithContext(ctx).Where("region = ?", region)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var alerts []models.Alert
	if err := query.Order("created_at DESC").Find(&alerts).Error; err != nil {
		return nil, err
	}

	return alerts, nil
}

// UpdateStatus transitions an alert, guarded by the caller's region so a
// responder can never touch another region's alerts.
func (r *alertRepository) UpdateStatus(ctx context.Context, publicID, region, status string) (models.Alert, error) {
	tx := r.db.WithContext(ctx).Model(&models.Alert{}).
		Where("public_id = ? AND region = ?", publicID, region).
		Update("status", status)
	if tx.Error != nil {
		return models.Alert{}, tx.Error
	}
	if tx.RowsAffected == 0 {
		return models.Alert{}, gorm.ErrRecordNotFound
	}

	return r.GetByPublicID(ctx, publicID)
}
