package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ActionCategory classifies an audit entry. The set is closed; anything that
// does not fit maps to CategoryOther.
type ActionCategory string

const (
	CategoryCreate   ActionCategory = "CREATE"
	CategoryUpdate   ActionCategory = "UPDATE"
	CategoryDelete   ActionCategory = "DELETE"
	CategoryView     ActionCategory = "VIEW"
	CategoryLogin    ActionCategory = "LOGIN"
	CategoryLogout   ActionCategory = "LOGOUT"
	CategoryUpload   ActionCategory = "UPLOAD"
	CategoryDownload ActionCategory = "DOWNLOAD"
	CategoryShare    ActionCategory = "SHARE"
	CategorySystem   ActionCategory = "SYSTEM"
	CategoryOther    ActionCategory = "OTHER"
)

// ActionCategories lists every valid category, in display order.
var ActionCategories = []ActionCategory{
	CategoryCreate, CategoryUpdate, CategoryDelete, CategoryView,
	CategoryLogin, CategoryLogout, CategoryUpload, CategoryDownload,
	CategoryShare, CategorySystem, CategoryOther,
}

// Valid reports whether the category belongs to the closed enumeration.
func (c ActionCategory) Valid() bool {
	for _, known := range ActionCategories {
		if c == known {
			return true
		}
	}
	return false
}

// SystemActorTag is the well-known tag recorded for system-initiated entries.
var SystemActorTag = uuid.Nil

// ActionLog is one immutable audit record. Entries are created exactly once
// by the audit recorder and never updated afterwards. The actor association
// is weak: deleting the user keeps the entry, identified by ActorTag.
type ActionLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ActorTag  uuid.UUID      `gorm:"type:uuid;not null;index" json:"actor_tag"`
	ActorID   *uint          `gorm:"index" json:"actor_id"`
	Actor     *User          `gorm:"constraint:OnDelete:SET NULL" json:"actor,omitempty"`
	Action    string         `gorm:"size:255;not null" json:"action"`
	Category  ActionCategory `gorm:"size:20;not null;index;default:OTHER" json:"category"`
	IPAddress string         `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent string         `gorm:"size:500" json:"user_agent,omitempty"`

	// Target is polymorphic: a type tag plus identifier, both set or both
	// empty. The pair is a weak reference; the target entity may no longer
	// exist when the entry is read.
	TargetType *string `gorm:"size:64;index:idx_action_logs_target" json:"target_type"`
	TargetID   *uint   `gorm:"index:idx_action_logs_target" json:"target_id"`

	Metadata  datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	Timestamp time.Time         `gorm:"not null;index:,sort:desc" json:"timestamp"`
}

// HasTarget reports whether the entry references an entity.
func (l ActionLog) HasTarget() bool {
	return l.TargetType != nil && l.TargetID != nil
}
