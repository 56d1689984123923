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

// TimetableService manages lesson slots.
type TimetableService interface {
	Create(ctx context.Context, actor *models.User, req dto.CreateTimetableLessonRequest) (dto.TimetableLessonResponse, error)
	Update(ctx context.Context, actor *models.User, id uint, req dto.UpdateTimetableLessonRequest) (dto.TimetableLessonResponse, error)
	Delete(ctx context.Context, actor *models.User, id uint) error
	Get(ctx context.Context, id uint) (dto.TimetableLessonResponse, error)
	ListByClass(ctx context.Context, class string) ([]dto.TimetableLessonResponse, error)
}

type timetableService struct {
	repo      repository.TimetableRepository
	db        *gorm.DB
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewTimetableService constructs the timetable service.
func NewTimetableService(repo repository.TimetableRepository, db *gorm.DB, validate *validator.Validate, logger zerolog.Logger) TimetableService {
	return &timetableService{
		repo:      repo,
		db:        db,
		validator: validate,
		logger:    logger.With().Str("component", "timetable_service").Logger(),
	}
}

func (s *timetableService) Create(ctx context.Context, actor *models.User, req dto.CreateTimetableLessonRequest) (dto.TimetableLessonResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.TimetableLessonResponse{}, err
	}

	lesson := models.TimetableLesson{
		Subject:   strings.TrimSpace(req.Subject),
		Class:     strings.TrimSpace(req.Class),
		Teacher:   strings.TrimSpace(req.Teacher),
		DayOfWeek: req.DayOfWeek,
		StartsAt:  req.StartsAt,
		EndsAt:    req.EndsAt,
		Classroom: strings.TrimSpace(req.Classroom),
	}
	lesson.SetAuditActor(actor)

	err := audit.RunInTransaction(ctx, s.db, func(txCtx context.Context, _ *gorm.DB) error {
		return s.repo.Create(txCtx, &lesson)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create lesson")
		return dto.TimetableLessonResponse{}, err
	}

	return dto.NewTimetableLessonResponse(lesson), nil
}

func (s *timetableService) Update(ctx context.Context, actor *models.User, id uint, req dto.UpdateTimetableLessonRequest) (dto.TimetableLessonResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.TimetableLessonResponse{}, err
	}

	lesson, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.TimetableLessonResponse{}, err
	}

	if req.Subject != nil {
		lesson.Subject = strings.TrimSpace(*req.Subject)
	}
	if req.Class != nil {
		lesson.Class = strings.TrimSpace(*req.Class)
	}
	if req.Teacher != nil {
		lesson.Teacher = strings.TrimSpace(*req.Teacher)
	}
	if req.DayOfWeek != nil {
		lesson.DayOfWeek = *req.DayOfWeek
	}
	if req.StartsAt != nil {
		lesson.StartsAt = *req.StartsAt
	}
	if req.EndsAt != nil {
		lesson.EndsAt = *req.EndsAt
	}
	if req.Classroom != nil {
		lesson.Classroom = strings.TrimSpace(*req.Classroom)
	}
	lesson.SetAuditActor(actor)

	err = audit.RunInTransaction(ctx, s.db, func(txCtx context.Context, _ *gorm.DB) error {
		return s.repo.Save(txCtx, lesson)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to update lesson")
		return dto.TimetableLessonResponse{}, err
	}

	return dto.NewTimetableLessonResponse(*lesson), nil
}

func (s *timetableService) Delete(ctx context.Context, actor *models.User, id uint) error {
	lesson, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	lesson.SetAuditActor(actor)

	err = audit.RunInTransaction(ctx, s.db, func(txCtx context.Context, _ *gorm.DB) error {
		return s.repo.Delete(txCtx, lesson)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to delete lesson")
	}
	return err
}

func (s *timetableService) Get(ctx context.Context, id uint) (dto.TimetableLessonResponse, error) {
	lesson, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.TimetableLessonResponse{}, err
	}
	return dto.NewTimetableLessonResponse(*lesson), nil
}

func (s *timetableService) ListByClass(ctx context.Context, class string) ([]dto.TimetableLessonResponse, error) {
	lessons, err := s.repo.ListByClass(ctx, class)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list lessons")
		return nil, err
	}

	responses := make([]dto.TimetableLessonResponse, 0, len(lessons))
	for _, lesson := range lessons {
		responses = append(responses, dto.NewTimetableLessonResponse(lesson))
	}
	return responses, nil
}
