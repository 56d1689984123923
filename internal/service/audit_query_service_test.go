package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/skuldata/skuldata-api/internal/dto"
	"github.com/skuldata/skuldata-api/internal/models"
	"github.com/skuldata/skuldata-api/internal/repository"
)

type capturingLogRepo struct {
	filter  repository.ActionLogFilter
	entries []models.ActionLog
	total   int64
	types   []string
}

func (r *capturingLogRepo) Create(ctx context.Context, entry *models.ActionLog) error {
	return nil
}

func (r *capturingLogRepo) List(ctx context.Context, filter repository.ActionLogFilter) ([]models.ActionLog, int64, error) {
	r.filter = filter
	return r.entries, r.total, nil
}

func (r *capturingLogRepo) DistinctTargetTypes(ctx context.Context) ([]string, error) {
	return r.types, nil
}

func (r *capturingLogRepo) Count(ctx context.Context) (int64, error) {
	return r.total, nil
}

func TestAuditQueryListNormalizesCategory(t *testing.T) {
	repo := &capturingLogRepo{}
	svc := NewAuditQueryService(repo, testLogger())

	_, err := svc.List(context.Background(), dto.ActionLogListRequest{Category: " create "})
	require.NoError(t, err)
	require.Equal(t, models.CategoryCreate, repo.filter.Category)
}

func TestAuditQueryListIgnoresUnknownCategory(t *testing.T) {
	repo := &capturingLogRepo{}
	svc := NewAuditQueryService(repo, testLogger())

	_, err := svc.List(context.Background(), dto.ActionLogListRequest{Category: "bogus"})
	require.NoError(t, err)
	require.Equal(t, models.ActionCategory(""), repo.filter.Category)
}

func TestAuditQueryListParsesActorTag(t *testing.T) {
	repo := &capturingLogRepo{}
	svc := NewAuditQueryService(repo, testLogger())

	tag := uuid.New()
	_, err := svc.List(context.Background(), dto.ActionLogListRequest{ActorTag: tag.String()})
	require.NoError(t, err)
	require.NotNil(t, repo.filter.ActorTag)
	require.Equal(t, tag, *repo.filter.ActorTag)

	_, err = svc.List(context.Background(), dto.ActionLogListRequest{ActorTag: "not-a-uuid"})
	require.NoError(t, err)
	require.Nil(t, repo.filter.ActorTag)
}

func TestAuditQueryListPaginationMeta(t *testing.T) {
	repo := &capturingLogRepo{total: 5}
	svc := NewAuditQueryService(repo, testLogger())

	resp, err := svc.List(context.Background(), dto.ActionLogListRequest{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, 2, resp.Pagination.Page)
	require.Equal(t, int64(5), resp.Pagination.TotalItems)
	require.Equal(t, 3, resp.Pagination.TotalPages)

	unpaged, err := svc.List(context.Background(), dto.ActionLogListRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, unpaged.Pagination.Page)
	require.Equal(t, 1, unpaged.Pagination.TotalPages)
}

func TestAuditQueryListSerializesEntries(t *testing.T) {
	tag := uuid.New()
	repo := &capturingLogRepo{
		entries: []models.ActionLog{{
			ID:        7,
			ActorTag:  tag,
			Action:    "Created Student: Ada Lovelace",
			Category:  models.CategoryCreate,
			Timestamp: time.Now().UTC(),
		}},
		total: 1,
	}
	svc := NewAuditQueryService(repo, testLogger())

	resp, err := svc.List(context.Background(), dto.ActionLogListRequest{PageSize: 10})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	require.Equal(t, tag.String(), resp.Items[0].ActorTag)
	require.Equal(t, "CREATE", resp.Items[0].Category)
	require.Equal(t, "Create", resp.Items[0].CategoryDisplay)
}

func TestAuditQueryCategoryOptions(t *testing.T) {
	svc := NewAuditQueryService(&capturingLogRepo{}, testLogger())

	options := svc.CategoryOptions()
	require.Len(t, options, len(models.ActionCategories))
	require.Equal(t, dto.CategoryOption{Value: "CREATE", Label: "Create"}, options[0])
	require.Equal(t, dto.CategoryOption{Value: "OTHER", Label: "Other"}, options[len(options)-1])
}

func TestAuditQueryTargetTypeOptions(t *testing.T) {
	repo := &capturingLogRepo{types: []string{"Document", "Student"}}
	svc := NewAuditQueryService(repo, testLogger())

	types, err := svc.TargetTypeOptions(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Document", "Student"}, types)
}
