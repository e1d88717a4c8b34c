package dto

import (
	"time"

	"github.com/codequest-labs/codequest-api/internal/models"
)

// RegisterRequest carries the payload for account creation.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest carries the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public projection of a user record.
type UserResponse struct {
	ID            uint       `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Level         int        `json:"level"`
	XP            int        `json:"xp"`
	XPToNextLevel int        `json:"xp_to_next_level"`
	Streak        int        `json:"streak"`
	LastLogin     *time.Time `json:"last_login"`
	CreatedAt     time.Time  `json:"created_at"`
}

// AuthResponse bundles a signed token with the authenticated user.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// NewUserResponse converts a user model into its response projection.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		Level:         user.Level,
		XP:            user.XP,
		XPToNextLevel: user.XPForNextLevel() - user.XP,
		Streak:        user.Streak,
		LastLogin:     user.LastLogin,
		CreatedAt:     user.CreatedAt,
	}
}
