package dto

import (
	"strings"
	"time"

	"github.com/skuldata/skuldata-api/internal/models"
)

// ActionLogListRequest defines filters for the audit query surface.
type ActionLogListRequest struct {
	Page       int
	PageSize   int
	Category   string
	TargetType string
	ActorTag   string
	From       *time.Time
	To         *time.Time
}

// ActionLogResponse serializes one audit entry.
type ActionLogResponse struct {
	ID              uint                   `json:"id"`
	ActorTag        string                 `json:"actor_tag"`
	ActorID         *uint                  `json:"actor_id"`
	Action          string                 `json:"action"`
	Category        string                 `json:"category"`
	CategoryDisplay string                 `json:"category_display"`
	IPAddress       string                 `json:"ip_address,omitempty"`
	UserAgent       string                 `json:"user_agent,omitempty"`
	TargetType      *string                `json:"target_type"`
	TargetID        *uint                  `json:"target_id"`
	Metadata        map[string]interface{} `json:"metadata"`
	Timestamp       time.Time              `json:"timestamp"`
}

// ActionLogListResponse wraps paginated audit entries.
type ActionLogListResponse struct {
	Items      []ActionLogResponse `json:"items"`
	Pagination PaginationMeta      `json:"pagination"`
}

// CategoryOption is one selectable category filter value.
type CategoryOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// NewActionLogResponse converts a model into an audit entry DTO.
func NewActionLogResponse(entry models.ActionLog) ActionLogResponse {
	metadata := map[string]interface{}{}
	if entry.Metadata != nil {
		metadata = map[string]interface{}(entry.Metadata)
	}

	return ActionLogResponse{
		ID:              entry.ID,
		ActorTag:        entry.ActorTag.String(),
		ActorID:         entry.ActorID,
		Action:          entry.Action,
		Category:        string(entry.Category),
		CategoryDisplay: categoryDisplay(entry.Category),
		IPAddress:       entry.IPAddress,
		UserAgent:       entry.UserAgent,
		TargetType:      entry.TargetType,
		TargetID:        entry.TargetID,
		Metadata:        metadata,
		Timestamp:       entry.Timestamp,
	}
}

func categoryDisplay(category models.ActionCategory) string {
	name := strings.ToLower(string(category))
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
