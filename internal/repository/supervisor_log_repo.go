package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/resqnet/resq-go-api/internal/models"
)

// SupervisorLogRepository persists the append-only supervisor audit trail.
// Entries are never updated or deleted.
type SupervisorLogRepository interface {
	Create(ctx context.Context, entry *models.SupervisorLog) error
	ListByRegion(ctx context.Context, region string) ([]models.SupervisorLog, error)
}

type supervisorLogRepository struct {
	db *gorm.DB
}

// NewSupervisorLogRepository constructs the supervisor log repository.
func NewSupervisorLogRepository(db *gorm.DB) SupervisorLogRepository {
	return &supervisorLogRepository{db: db}
}

func (r *supervisorLogRepository) Create(ctx context.Context, entry *models.SupervisorLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *supervisorLogRepository) ListByRegion(ctx context.Context, region string) ([]models.SupervisorLog, error) {
	var entries []models.SupervisorLog
	err := r.db.WithContext(ctx).
		Where("region = ?", region).
		Order("timestamp DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}
