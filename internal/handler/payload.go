package handler

import (
	"time"

	"github.com/vasapolrittideah/account-api/internal/model"
)

type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,min=1,max=100"`
	Username string `json:"username" validate:"required,min=3,max=30,username"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password"   validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=128"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"        validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

type ReasonRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type TokensResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token,omitempty"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
}

type AuthResponse struct {
	Account *model.PublicAccount `json:"account"`
	Tokens  TokensResponse       `json:"tokens"`
	Message string               `json:"message,omitempty"`
}

type AccountResponse struct {
	Account *model.PublicAccount `json:"account"`
}

type AccountListResponse struct {
	Accounts []*model.PublicAccount `json:"accounts"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
