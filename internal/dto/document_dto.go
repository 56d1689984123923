package dto

import (
	"time"

	"github.com/skuldata/skuldata-api/internal/models"
)

// UpdateDocumentRequest carries a partial document update.
type UpdateDocumentRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=2,max=255"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Category    *string `json:"category" validate:"omitempty,oneof=general report curriculum newsletter"`
	IsPublic    *bool   `json:"is_public"`
}

// ShareDocumentRequest identifies who a document is shared with.
type ShareDocumentRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"omitempty,max=500"`
}

// DocumentResponse serializes a document record.
type DocumentResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	IsPublic    bool      `json:"is_public"`
	FileURL     string    `json:"file_url"`
	FileType    string    `json:"file_type"`
	FileSize    int64     `json:"file_size"`
	UploadedBy  *uint     `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewDocumentResponse converts a model into a document DTO.
func NewDocumentResponse(document models.Document) DocumentResponse {
	return DocumentResponse{
		ID:          document.ID,
		Title:       document.Title,
		Description: document.Description,
		Category:    document.Category,
		IsPublic:    document.IsPublic,
		FileURL:     document.FileURL,
		FileType:    document.FileType,
		FileSize:    document.FileSize,
		UploadedBy:  document.UploadedBy,
		CreatedAt:   document.CreatedAt,
		UpdatedAt:   document.UpdatedAt,
	}
}
