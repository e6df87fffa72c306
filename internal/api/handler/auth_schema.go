package handler

import "github.com/simplekeytime/licensing-system/internal/core/domain"

type registerDeveloperRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type developerLoginRequest struct {
	Login    string `json:"login"    validate:"required"` // username or email
	Password string `json:"password" validate:"required"`
}

type requestResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"        validate:"required,email"`
	Code        string `json:"code"         validate:"required,len=6"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8"`
}

type tokenResponse struct {
	Token     string            `json:"token,omitempty"`
	Developer *domain.Developer `json:"developer,omitempty"`
}

type devIDResponse struct {
	DevID string `json:"dev_id"`
}

type messageResponse struct {
	Message string `json:"message"`
}
