package dto

import "github.com/skuldata/skuldata-api/internal/models"

// LoginRequest carries the credential payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// UserResponse serializes a principal without credentials.
type UserResponse struct {
	ID    uint   `json:"id"`
	Tag   string `json:"tag"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// LoginResponse returns the issued token plus the authenticated user.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// NewUserResponse converts a model into a user DTO.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:    user.ID,
		Tag:   user.Tag.String(),
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}
}
