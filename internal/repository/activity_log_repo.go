package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/wakaf-cms-api/internal/models"
)

// ActivityLogRepository persists audit trail events. It is append-only: there is no update
// or delete path.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	ListRecent(ctx context.Context, limit int) ([]models.ActivityLog, error)
	ListSince(ctx context.Context, since time.Time) ([]models.ActivityStat, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository constructs the activity log repository.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityLogRepository) ListRecent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityLog{}).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var entries []models.ActivityLog
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *activityLogRepository) ListSince(ctx context.Context, since time.Time) ([]models.ActivityStat, error) {
	var stats []models.ActivityStat
	err := r.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Select("id", "created_at", "action", "target_table").
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Find(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}
