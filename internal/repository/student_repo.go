package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/skuldata/skuldata-api/internal/database"
	"github.com/skuldata/skuldata-api/internal/models"
)

// StudentFilter narrows student listings.
type StudentFilter struct {
	Page     int
	PageSize int
	Class    string
	Status   string
}

// StudentRepository provides access to student records. Write methods join
// the transaction bound to the context, if any.
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	Save(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id uint) (*models.Student, error)
	List(ctx context.Context, filter StudentFilter) ([]models.Student, int64, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return database.FromContext(ctx, r.db).WithContext(ctx).Create(student).Error
}

func (r *studentRepository) Save(ctx context.Context, student *models.Student) error {
	return database.FromContext(ctx, r.db).WithContext(ctx).Save(student).Error
}

func (r *studentRepository) Delete(ctx context.Context, student *models.Student) error {
	return database.FromContext(ctx, r.db).WithContext(ctx).Delete(student).Error
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (*models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) List(ctx context.Context, filter StudentFilter) ([]models.Student, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Student{})

	if filter.Class != "" {
		query = query.Where("class = ?", filter.Class)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
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
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var students []models.Student
	if err := query.Order("name").Find(&students).Error; err != nil {
		return nil, 0, err
	}

	return students, total, nil
}
