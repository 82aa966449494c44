package dto

import "github.com/newsroom-tools/newsletter-backend/internal/models"

// LoginRequest accepts the OAuth2 password form (username=email) as well as JSON.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken        string `json:"access_token"`
	TokenType          string `json:"token_type"`
	MustChangePassword bool   `json:"must_change_password"`
}

type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

type PasswordResetRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type UserCreateRequest struct {
	Email      string            `json:"email" validate:"required,email,max=255"`
	Trigram    string            `json:"trigram" validate:"required,max=16"`
	Name       string            `json:"name" validate:"required,max=255"`
	Password   string            `json:"password" validate:"required,min=8"`
	GlobalRole models.GlobalRole `json:"global_role" validate:"omitempty,oneof=USER ADMIN SUPER_ADMIN"`
}

type UserUpdateRequest struct {
	Name       *string            `json:"name" validate:"omitempty,max=255"`
	GlobalRole *models.GlobalRole `json:"global_role" validate:"omitempty,oneof=USER ADMIN SUPER_ADMIN"`
	IsActive   *bool              `json:"is_active"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
