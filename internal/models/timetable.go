package models

import "time"

// TimetableLesson is one scheduled lesson slot in a class timetable.
type TimetableLesson struct {
	AuditContext `gorm:"-" json:"-"`

	ID        uint      `gorm:"primaryKey" json:"id"`
	Subject   string    `gorm:"size:128;not null" json:"subject"`
	Class     string    `gorm:"size:64;not null" json:"class"`
	Teacher   string    `gorm:"size:255" json:"teacher"`
	DayOfWeek int       `gorm:"not null" json:"day_of_week"`
	StartsAt  string    `gorm:"size:5;not null" json:"starts_at"`
	EndsAt    string    `gorm:"size:5;not null" json:"ends_at"`
	Classroom string    `gorm:"size:64" json:"classroom"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntityID returns the persisted identity, zero when unsaved.
func (t *TimetableLesson) EntityID() uint { return t.ID }

// EntityType returns the stable type tag used for audit targets.
func (t *TimetableLesson) EntityType() string { return "TimetableLesson" }

// TrackedFields lists the columns whose changes are audited.
func (t *TimetableLesson) TrackedFields() []string {
	return []string{"subject", "class", "teacher", "day_of_week", "starts_at", "ends_at", "classroom"}
}

// Display renders a short human-readable form for audit metadata.
func (t *TimetableLesson) Display() string {
	return t.Subject + " (" + t.Class + ")"
}
