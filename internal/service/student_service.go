package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skuldata/skuldata-api/internal/audit"
	"github.com/skuldata/skuldata-api/internal/dto"
	"github.com/skuldata/skuldata-api/internal/models"
	"github.com/skuldata/skuldata-api/internal/repository"
)

// StudentService manages student enrollment records. Every write runs in a
// transaction and carries the acting principal, so the audit observer can
// attribute it; a rolled-back write leaves no trail.
type StudentService interface {
	Create(ctx context.Context, actor *models.User, req dto.CreateStudentRequest) (dto.StudentResponse, error)
	Update(ctx context.Context, actor *models.User, id uint, req dto.UpdateStudentRequest) (dto.StudentResponse, error)
	Delete(ctx context.Context, actor *models.User, id uint) error
	Get(ctx context.Context, id uint) (dto.StudentResponse, error)
	List(ctx context.Context, filter repository.StudentFilter) ([]dto.StudentResponse, int64, error)
}

type studentService struct {
	repo      repository.StudentRepository
	db        *gorm.DB
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo repository.StudentRepository, db *gorm.DB, validate *validator.Validate, logger zerolog.Logger) StudentService {
	return &studentService{
		repo:      repo,
		db:        db,
		validator: validate,
		logger:    logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) Create(ctx context.Context, actor *models.User, req dto.CreateStudentRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentResponse{}, err
	}

	status := req.Status
	if status == "" {
		status = models.StudentStatusActive
	}

	student := models.Student{
		Name:   strings.TrimSpace(req.Name),
		Email:  strings.ToLower(strings.TrimSpace(req.Email)),
		Class:  strings.TrimSpace(req.Class),
		Status: status,
	}
	student.SetAuditActor(actor)

	err := audit.RunInTransaction(ctx, s.db, func(txCtx context.Context, _ *gorm.DB) error {
		return s.repo.Create(txCtx, &student)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create student")
		return dto.StudentResponse{}, err
	}

	return dto.NewStudentResponse(student), nil
}

func (s *studentService) Update(ctx context.Context, actor *models.User, id uint, req dto.UpdateStudentRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentResponse{}, err
	}

	student, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	if req.Name != nil {
		student.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		student.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Class != nil {
		student.Class = strings.TrimSpace(*req.Class)
	}
	if req.Status != nil {
		student.Status = *req.Status
	}
	student.SetAuditActor(actor)

	err = audit.RunInTransaction(ctx, s.db, func(txCtx context.Context, _ *gorm.DB) error {
		return s.repo.Save(txCtx, student)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to update student")
		return dto.StudentResponse{}, err
	}

	return dto.NewStudentResponse(*student), nil
}

func (s *studentService) Delete(ctx context.Context, actor *models.User, id uint) error {
	student, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	student.SetAuditActor(actor)

	err = audit.RunInTransaction(ctx, s.db, func(txCtx context.Context, _ *gorm.DB) error {
		return s.repo.Delete(txCtx, student)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to delete student")
	}
	return err
}

func (s *studentService) Get(ctx context.Context, id uint) (dto.StudentResponse, error) {
	student, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.StudentResponse{}, err
	}
	return dto.NewStudentResponse(*student), nil
}

func (s *studentService) List(ctx context.Context, filter repository.StudentFilter) ([]dto.StudentResponse, int64, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list students")
		return nil, 0, err
	}

	responses := make([]dto.StudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, dto.NewStudentResponse(student))
	}
	return responses, total, nil
}
