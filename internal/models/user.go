package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated principal. Its Tag survives account deletion so
// audit entries stay attributable after the row is gone.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Tag          uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"tag"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Role         string    `gorm:"size:32;not null;default:teacher" json:"role"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ActorID returns the persisted identity, zero when the user is unsaved.
func (u *User) ActorID() uint {
	if u == nil {
		return 0
	}
	return u.ID
}

// StableTag returns the identifier copied onto audit entries at write time.
func (u *User) StableTag() uuid.UUID {
	if u == nil {
		return uuid.Nil
	}
	return u.Tag
}

// Display renders a short human-readable form for audit metadata.
func (u *User) Display() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
