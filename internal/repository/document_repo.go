package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/skuldata/skuldata-api/internal/database"
	"github.com/skuldata/skuldata-api/internal/models"
)

// DocumentFilter narrows document listings.
type DocumentFilter struct {
	Page     int
	PageSize int
	Category string
	Public   *bool
}

// DocumentRepository provides access to document records.
type DocumentRepository interface {
	Create(ctx context.Context, document *models.Document) error
	Save(ctx context.Context, document *models.Document) error
	Delete(ctx context.Context, document *models.Document) error
	GetByID(ctx context.Context, id uint) (*models.Document, error)
	List(ctx context.Context, filter DocumentFilter) ([]models.Document, int64, error)
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository constructs a document repository.
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, document *models.Document) error {
	return database.FromContext(ctx, r.db).WithContext(ctx).Create(document).Error
}

func (r *documentRepository) Save(ctx context.Context, document *models.Document) error {
	return database.FromContext(ctx, r.db).WithContext(ctx).Save(document).Error
}

func (r *documentRepository) Delete(ctx context.Context, document *models.Document) error {
	return database.FromContext(ctx, r.db).WithContext(ctx).Delete(document).Error
}

func (r *documentRepository) GetByID(ctx context.Context, id uint) (*models.Document, error) {
	var document models.Document
	if err := r.db.WithContext(ctx).First(&document, id).Error; err != nil {
		return nil, err
	}
	return &document, nil
}

func (r *documentRepository) List(ctx context.Context, filter DocumentFilter) ([]models.Document, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Document{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Public != nil {
		query = query.Where("is_public = ?", *filter.Public)
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

	var documents []models.Document
	if err := query.Order("created_at DESC").Find(&documents).Error; err != nil {
		return nil, 0, err
	}

	return documents, total, nil
}
