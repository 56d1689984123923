package dto

import (
	"time"

	"github.com/skuldata/skuldata-api/internal/models"
)

// CreateTimetableLessonRequest captures a new lesson slot.
type CreateTimetableLessonRequest struct {
	Subject   string `json:"subject" validate:"required,min=2,max=128"`
	Class     string `json:"class" validate:"required,max=64"`
	Teacher   string `json:"teacher" validate:"omitempty,max=255"`
	DayOfWeek int    `json:"day_of_week" validate:"min=1,max=7"`
	StartsAt  string `json:"starts_at" validate:"required,len=5"`
	EndsAt    string `json:"ends_at" validate:"required,len=5"`
	Classroom string `json:"classroom" validate:"omitempty,max=64"`
}

// UpdateTimetableLessonRequest carries a partial lesson update.
type UpdateTimetableLessonRequest struct {
	Subject   *string `json:"subject" validate:"omitempty,min=2,max=128"`
	Class     *string `json:"class" validate:"omitempty,max=64"`
	Teacher   *string `json:"teacher" validate:"omitempty,max=255"`
	DayOfWeek *int    `json:"day_of_week" validate:"omitempty,min=1,max=7"`
	StartsAt  *string `json:"starts_at" validate:"omitempty,len=5"`
	EndsAt    *string `json:"ends_at" validate:"omitempty,len=5"`
	Classroom *string `json:"classroom" validate:"omitempty,max=64"`
}

// TimetableLessonResponse serializes one lesson slot.
type TimetableLessonResponse struct {
	ID        uint      `json:"id"`
	Subject   string    `json:"subject"`
	Class     string    `json:"class"`
	Teacher   string    `json:"teacher"`
	DayOfWeek int       `json:"day_of_week"`
	StartsAt  string    `json:"starts_at"`
	EndsAt    string    `json:"ends_at"`
	Classroom string    `json:"classroom"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTimetableLessonResponse converts a model into a lesson DTO.
func NewTimetableLessonResponse(lesson models.TimetableLesson) TimetableLessonResponse {
	return TimetableLessonResponse{
		ID:        lesson.ID,
		Subject:   lesson.Subject,
		Class:     lesson.Class,
		Teacher:   lesson.Teacher,
		DayOfWeek: lesson.DayOfWeek,
		StartsAt:  lesson.StartsAt,
		EndsAt:    lesson.EndsAt,
		Classroom: lesson.Classroom,
		CreatedAt: lesson.CreatedAt,
		UpdatedAt: lesson.UpdatedAt,
	}
}
