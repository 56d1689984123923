package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/skuldata/skuldata-api/internal/database"
	"github.com/skuldata/skuldata-api/internal/models"
)

// TimetableRepository provides access to lesson slots.
type TimetableRepository interface {
	Create(ctx context.Context, lesson *models.TimetableLesson) error
	Save(ctx context.Context, lesson *models.TimetableLesson) error
	Delete(ctx context.Context, lesson *models.TimetableLesson) error
	GetByID(ctx context.Context, id uint) (*models.TimetableLesson, error)
	ListByClass(ctx context.Context, class string) ([]models.TimetableLesson, error)
}

type timetableRepository struct {
	db *gorm.DB
}

// NewTimetableRepository constructs a timetable repository.
func NewTimetableRepository(db *gorm.DB) TimetableRepository {
	return &timetableRepository{db: db}
}

func (r *timetableRepository) Create(ctx context.Context, lesson *models.TimetableLesson) error {
	return database.FromContext(ctx, r.db).WithContext(ctx).Create(lesson).Error
}

func (r *timetableRepository) Save(ctx context.Context, lesson *models.TimetableLesson) error {
	return database.FromContext(ctx, r.db).WithContext(ctx).Save(lesson).Error
}

func (r *timetableRepository) Delete(ctx context.Context, lesson *models.TimetableLesson) error {
	return database.FromContext(ctx, r.db).WithContext(ctx).Delete(lesson).Error
}

func (r *timetableRepository) GetByID(ctx context.Context, id uint) (*models.TimetableLesson, error) {
	var lesson models.TimetableLesson
	if err := r.db.WithContext(ctx).First(&lesson, id).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *timetableRepository) ListByClass(ctx context.Context, class string) ([]models.TimetableLesson, error) {
	query := r.db.WithContext(ctx).Model(&models.TimetableLesson{})
	if class != "" {
		query = query.Where("class = ?", class)
	}

	var lessons []models.TimetableLesson
	if err := query.Order("day_of_week, starts_at").Find(&lessons).Error; err != nil {
		return nil, err
	}
	return lessons, nil
}
