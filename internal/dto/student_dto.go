package dto

import (
	"time"

	"github.com/skuldata/skuldata-api/internal/models"
)

// CreateStudentRequest captures a new student enrollment payload.
type CreateStudentRequest struct {
	Name   string `json:"name" validate:"required,min=2,max=255"`
	Email  string `json:"email" validate:"required,email"`
	Class  string `json:"class" validate:"omitempty,max=64"`
	Status string `json:"status" validate:"omitempty,oneof=active inactive left"`
}

// UpdateStudentRequest carries a partial student update; nil fields are
// left untouched.
type UpdateStudentRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=2,max=255"`
	Email  *string `json:"email" validate:"omitempty,email"`
	Class  *string `json:"class" validate:"omitempty,max=64"`
	Status *string `json:"status" validate:"omitempty,oneof=active inactive left"`
}

// StudentResponse serializes a student record.
type StudentResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Class     string    `json:"class"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewStudentResponse converts a model into a student DTO.
func NewStudentResponse(student models.Student) StudentResponse {
	return StudentResponse{
		ID:        student.ID,
		Name:      student.Name,
		Email:     student.Email,
		Class:     student.Class,
		Status:    student.Status,
		CreatedAt: student.CreatedAt,
		UpdatedAt: student.UpdatedAt,
	}
}
