package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skuldata/skuldata-api/internal/audit"
	"github.com/skuldata/skuldata-api/internal/dto"
	"github.com/skuldata/skuldata-api/internal/models"
	"github.com/skuldata/skuldata-api/internal/repository"
)

// FileUploader abstracts uploading binary data and returning a URL.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// DocumentService manages uploaded documents. Create/update/delete are
// observed through the entity bus; download and share are recorded
// explicitly because they are reads, not persistence events.
type DocumentService interface {
	Upload(ctx context.Context, actor *models.User, header *multipart.FileHeader, title, description, category string, isPublic bool) (dto.DocumentResponse, error)
	Update(ctx context.Context, actor *models.User, id uint, req dto.UpdateDocumentRequest) (dto.DocumentResponse, error)
	Delete(ctx context.Context, actor *models.User, id uint) error
	Download(ctx context.Context, actor *models.User, id uint) (dto.DocumentResponse, error)
	Share(ctx context.Context, actor *models.User, id uint, req dto.ShareDocumentRequest) error
	Get(ctx context.Context, id uint) (dto.DocumentResponse, error)
	List(ctx context.Context, filter repository.DocumentFilter) ([]dto.DocumentResponse, int64, error)
}

type documentService struct {
	repo      repository.DocumentRepository
	db        *gorm.DB
	uploader  FileUploader
	recorder  *audit.Recorder
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewDocumentService constructs the document service. The uploader may be
// nil, in which case files are recorded without remote storage.
func NewDocumentService(repo repository.DocumentRepository, db *gorm.DB, uploader FileUploader, recorder *audit.Recorder, validate *validator.Validate, logger zerolog.Logger) DocumentService {
	return &documentService{
		repo:      repo,
		db:        db,
		uploader:  uploader,
		recorder:  recorder,
		validator: validate,
		logger:    logger.With().Str("component", "document_service").Logger(),
	}
}

func (s *documentService) Upload(ctx context.Context, actor *models.User, header *multipart.FileHeader, title, description, category string, isPublic bool) (dto.DocumentResponse, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = header.Filename
	}
	if category == "" {
		category = models.DocumentCategoryGeneral
	}

	file, err := header.Open()
	if err != nil {
		return dto.DocumentResponse{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return dto.DocumentResponse{}, fmt.Errorf("failed to read upload: %w", err)
	}

	detected := mimetype.Detect(content)

	fileURL := ""
	if s.uploader != nil {
		fileURL, err = s.uploader.Upload(ctx, header.Filename, bytes.NewReader(content))
		if err != nil {
			s.logger.Error().Err(err).Str("file", header.Filename).Msg("failed to store document file")
			return dto.DocumentResponse{}, err
		}
	}

	document := models.Document{
		Title:       title,
		Description: strings.TrimSpace(description),
		Category:    category,
		IsPublic:    isPublic,
		FileURL:     fileURL,
		FileType:    detected.String(),
		FileSize:    int64(len(content)),
	}
	if actor != nil && actor.ID != 0 {
		document.UploadedBy = &actor.ID
	}
	document.SetAuditActor(actor)

	err = audit.RunInTransaction(ctx, s.db, func(txCtx context.Context, _ *gorm.DB) error {
		return s.repo.Create(txCtx, &document)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create document")
		return dto.DocumentResponse{}, err
	}

	s.recorder.RecordAsync(ctx, actor, fmt.Sprintf("Uploaded document: %s", document.Title), models.CategoryUpload, &document, map[string]interface{}{
		"file_type": document.FileType,
		"file_size": document.FileSize,
	})

	return dto.NewDocumentResponse(document), nil
}

func (s *documentService) Update(ctx context.Context, actor *models.User, id uint, req dto.UpdateDocumentRequest) (dto.DocumentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.DocumentResponse{}, err
	}

	document, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.DocumentResponse{}, err
	}

	if req.Title != nil {
		document.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		document.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		document.Category = *req.Category
	}
	if req.IsPublic != nil {
		document.IsPublic = *req.IsPublic
	}
	document.SetAuditActor(actor)

	err = audit.RunInTransaction(ctx, s.db, func(txCtx context.Context, _ *gorm.DB) error {
		return s.repo.Save(txCtx, document)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to update document")
		return dto.DocumentResponse{}, err
	}

	return dto.NewDocumentResponse(*document), nil
}

func (s *documentService) Delete(ctx context.Context, actor *models.User, id uint) error {
	document, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	document.SetAuditActor(actor)

	err = audit.RunInTransaction(ctx, s.db, func(txCtx context.Context, _ *gorm.DB) error {
		return s.repo.Delete(txCtx, document)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to delete document")
	}
	return err
}

func (s *documentService) Download(ctx context.Context, actor *models.User, id uint) (dto.DocumentResponse, error) {
	document, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.DocumentResponse{}, err
	}

	s.recorder.RecordAsync(ctx, actor, fmt.Sprintf("Downloaded document: %s", document.Title), models.CategoryDownload, document, map[string]interface{}{
		"file_type": document.FileType,
		"file_size": document.FileSize,
	})

	return dto.NewDocumentResponse(*document), nil
}

func (s *documentService) Share(ctx context.Context, actor *models.User, id uint, req dto.ShareDocumentRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return err
	}

	document, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	s.recorder.RecordAsync(ctx, actor, fmt.Sprintf("Shared document: %s", document.Title), models.CategoryShare, document, map[string]interface{}{
		"shared_with": req.Email,
		"message":     req.Message,
	})

	return nil
}

func (s *documentService) Get(ctx context.Context, id uint) (dto.DocumentResponse, error) {
	document, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.DocumentResponse{}, err
	}
	return dto.NewDocumentResponse(*document), nil
}

func (s *documentService) List(ctx context.Context, filter repository.DocumentFilter) ([]dto.DocumentResponse, int64, error) {
	documents, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list documents")
		return nil, 0, err
	}

	responses := make([]dto.DocumentResponse, 0, len(documents))
	for _, document := range documents {
		responses = append(responses, dto.NewDocumentResponse(document))
	}
	return responses, total, nil
}
