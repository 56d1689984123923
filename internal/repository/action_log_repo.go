package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skuldata/skuldata-api/internal/models"
)

// ActionLogFilter narrows audit log queries. Zero values mean "no filter".
type ActionLogFilter struct {
	Page       int
	PageSize   int
	Category   models.ActionCategory
	TargetType string
	ActorTag   *uuid.UUID
	From       *time.Time
	To         *time.Time
}

// ActionLogRepository is the entry store: write-once audit records with a
// newest-first read surface. No update operation exists.
type ActionLogRepository interface {
	Create(ctx context.Context, entry *models.ActionLog) error
	List(ctx context.Context, filter ActionLogFilter) ([]models.ActionLog, int64, error)
	DistinctTargetTypes(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
}

type actionLogRepository struct {
	db *gorm.DB
}

// NewActionLogRepository constructs the audit entry store.
func NewActionLogRepository(db *gorm.DB) ActionLogRepository {
	return &actionLogRepository{db: db}
}

func (r *actionLogRepository) Create(ctx context.Context, entry *models.ActionLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *actionLogRepository) List(ctx context.Context, filter ActionLogFilter) ([]models.ActionLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ActionLog{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	if filter.TargetType != "" {
		query = query.Where("target_type = ?", filter.TargetType)
	}

	if filter.ActorTag != nil {
		query = query.Where("actor_tag = ?", *filter.ActorTag)
	}

	if filter.From != nil {
		query = query.Where("timestamp >= ?", *filter.From)
	}

	if filter.To != nil {
		query = query.Where("timestamp <= ?", *filter.To)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var entries []models.ActionLog
	if err := query.Order("timestamp DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *actionLogRepository) DistinctTargetTypes(ctx context.Context) ([]string, error) {
	var types []string
	err := r.db.WithContext(ctx).
		Model(&models.ActionLog{}).
		Where("target_type IS NOT NULL").
		Distinct().
		Order("target_type").
		Pluck("target_type", &types).Error
	if err != nil {
		return nil, err
	}
	return types, nil
}

func (r *actionLogRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.ActionLog{}).Count(&total).Error
	return total, err
}
