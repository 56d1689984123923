package models

import "time"

// Document categories mirror the upload surface.
const (
	DocumentCategoryGeneral    = "general"
	DocumentCategoryReport     = "report"
	DocumentCategoryCurriculum = "curriculum"
	DocumentCategoryNewsletter = "newsletter"
)

// Document is an uploaded file plus its descriptive record.
type Document struct {
	AuditContext `gorm:"-" json:"-"`

	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"size:1000" json:"description"`
	Category    string    `gorm:"size:64;not null;default:general" json:"category"`
	IsPublic    bool      `gorm:"not null;default:false" json:"is_public"`
	FileURL     string    `gorm:"size:500" json:"file_url"`
	FileType    string    `gorm:"size:128" json:"file_type"`
	FileSize    int64     `json:"file_size"`
	UploadedBy  *uint     `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EntityID returns the persisted identity, zero when unsaved.
func (d *Document) EntityID() uint { return d.ID }

// EntityType returns the stable type tag used for audit targets.
func (d *Document) EntityType() string { return "Document" }

// TrackedFields lists the columns whose changes are audited.
func (d *Document) TrackedFields() []string {
	return []string{"title", "description", "category", "is_public"}
}

// Display renders a short human-readable form for audit metadata.
func (d *Document) Display() string { return d.Title }
