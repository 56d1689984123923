package service

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/skuldata/skuldata-api/internal/dto"
	"github.com/skuldata/skuldata-api/internal/models"
	"github.com/skuldata/skuldata-api/internal/repository"
)

// AuditQueryService is the read-only surface over the audit trail.
type AuditQueryService interface {
	List(ctx context.Context, req dto.ActionLogListRequest) (dto.ActionLogListResponse, error)
	CategoryOptions() []dto.CategoryOption
	TargetTypeOptions(ctx context.Context) ([]string, error)
}

type auditQueryService struct {
	repo   repository.ActionLogRepository
	logger zerolog.Logger
}

// NewAuditQueryService constructs the audit query service.
func NewAuditQueryService(repo repository.ActionLogRepository, logger zerolog.Logger) AuditQueryService {
	return &auditQueryService{
		repo:   repo,
		logger: logger.With().Str("component", "audit_query_service").Logger(),
	}
}

func (s *auditQueryService) List(ctx context.Context, req dto.ActionLogListRequest) (dto.ActionLogListResponse, error) {
	filter := repository.ActionLogFilter{
		Page:       req.Page,
		PageSize:   req.PageSize,
		TargetType: strings.TrimSpace(req.TargetType),
		From:       req.From,
		To:         req.To,
	}

	if category := models.ActionCategory(strings.ToUpper(strings.TrimSpace(req.Category))); category != "" && category.Valid() {
		filter.Category = category
	}

	if raw := strings.TrimSpace(req.ActorTag); raw != "" {
		tag, err := uuid.Parse(raw)
		if err == nil {
			filter.ActorTag = &tag
		}
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list audit entries")
		return dto.ActionLogListResponse{}, err
	}

	items := make([]dto.ActionLogResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewActionLogResponse(entry))
	}

	pagination := dto.PaginationMeta{
		Page:       maxInt(req.Page, 1),
		PageSize:   req.PageSize,
		TotalItems: total,
	}
	if req.PageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(req.PageSize)))
	} else {
		pagination.TotalPages = 1
	}

	return dto.ActionLogListResponse{Items: items, Pagination: pagination}, nil
}

func (s *auditQueryService) CategoryOptions() []dto.CategoryOption {
	options := make([]dto.CategoryOption, 0, len(models.ActionCategories))
	for _, category := range models.ActionCategories {
		label := strings.ToUpper(string(category)[:1]) + strings.ToLower(string(category)[1:])
		options = append(options, dto.CategoryOption{Value: string(category), Label: label})
	}
	return options
}

func (s *auditQueryService) TargetTypeOptions(ctx context.Context) ([]string, error) {
	types, err := s.repo.DistinctTargetTypes(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list audit target types")
		return nil, err
	}
	return types, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
