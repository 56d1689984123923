package models

import "time"

// Student status values.
const (
	StudentStatusActive   = "active"
	StudentStatusInactive = "inactive"
	StudentStatusLeft     = "left"
)

// Student represents a learner enrolled at the school.
type Student struct {
	AuditContext `gorm:"-" json:"-"`

	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Class     string    `gorm:"size:64" json:"class"`
	Status    string    `gorm:"size:20;not null;default:active" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntityID returns the persisted identity, zero when unsaved.
func (s *Student) EntityID() uint { return s.ID }

// EntityType returns the stable type tag used for audit targets.
func (s *Student) EntityType() string { return "Student" }

// TrackedFields lists the columns whose changes are audited.
func (s *Student) TrackedFields() []string {
	return []string{"name", "email", "class", "status"}
}

// Display renders a short human-readable form for audit metadata.
func (s *Student) Display() string { return s.Name }
