package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/account-api/internal/config"
	"github.com/vasapolrittideah/account-api/internal/middleware"
	"github.com/vasapolrittideah/account-api/internal/usecase"
)

const refreshTokenCookie = "refresh_token"

// AuthHandler serves the authentication and session endpoints.
type AuthHandler struct {
	authUsecase          usecase.AuthUsecase
	verificationUsecase  usecase.VerificationUsecase
	passwordResetUsecase usecase.PasswordResetUsecase
	validator            *Validator
	cfg                  *config.Config
	logger               *zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(
	authUsecase usecase.AuthUsecase,
	verificationUsecase usecase.VerificationUsecase,
	passwordResetUsecase usecase.PasswordResetUsecase,
	validator *Validator,
	cfg *config.Config,
	logger *zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authUsecase:          authUsecase,
		verificationUsecase:  verificationUsecase,
		passwordResetUsecase: passwordResetUsecase,
		validator:            validator,
		cfg:                  cfg,
		logger:               logger,
	}
}

// RegisterRoutes mounts the auth endpoints on the given router.
func (h *AuthHandler) RegisterRoutes(r chi.Router, guard *middleware.Guard) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
		r.Post("/email/verify", h.VerifyEmail)
		r.Post("/email/resend", h.ResendVerification)
		r.Post("/password/forgot", h.ForgotPassword)
		r.Post("/password/reset", h.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(guard.RequireAuth)
			r.Post("/logout", h.Logout)
			r.Post("/password/change", h.ChangePassword)
		})
	})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if details := h.validator.Struct(req); details != nil {
		writeValidationError(w, details)
		return
	}

	result, err := h.authUsecase.Register(r.Context(), usecase.RegisterParams{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeUsecaseError(w, h.logger, err)
		return
	}

	message := "registration successful"
	if !result.VerificationEmailSent {
		message = "registration successful, but the verification email could not be sent"
	}

	h.setRefreshCookie(w, result.Tokens.RefreshToken, result.Tokens.RefreshTokenExpiresAt)

	writeJSON(w, http.StatusCreated, AuthResponse{
		Account: result.Account.Public(),
		Tokens:  tokensResponse(result.Tokens, true),
		Message: message,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if details := h.validator.Struct(req); details != nil {
		writeValidationError(w, details)
		return
	}

	result, err := h.authUsecase.Login(r.Context(), usecase.LoginParams{
		Identifier: req.Identifier,
		Password:   req.Password,
	})
	if err != nil {
		writeUsecaseError(w, h.logger, err)
		return
	}

	h.setRefreshCookie(w, result.Tokens.RefreshToken, result.Tokens.RefreshTokenExpiresAt)

	writeJSON(w, http.StatusOK, AuthResponse{
		Account: result.Account.Public(),
		Tokens:  tokensResponse(result.Tokens, true),
		Message: "login successful",
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	rawToken := h.refreshTokenFromRequest(r)
	if rawToken == "" {
		writeError(w, http.StatusUnauthorized, "missing refresh token")
		return
	}

	tokens, err := h.authUsecase.RefreshToken(r.Context(), rawToken)
	if err != nil {
		writeUsecaseError(w, h.logger, err)
		return
	}

	h.setRefreshCookie(w, tokens.RefreshToken, tokens.RefreshTokenExpiresAt)

	// The rotated refresh token travels in the cookie only.
	writeJSON(w, http.StatusOK, tokensResponse(*tokens, false))
}

// Logout removes the presented refresh token from the account and clears
// the cookie. Logging out twice with the same token is a no-op.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if rawToken := h.refreshTokenFromRequest(r); rawToken != "" {
		if err := h.authUsecase.Logout(r.Context(), user.UserID, rawToken); err != nil {
			writeUsecaseError(w, h.logger, err)
			return
		}
	}

	h.clearRefreshCookie(w)
	writeJSON(w, http.StatusOK, MessageResponse{Message: "logged out"})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if details := h.validator.Struct(req); details != nil {
		writeValidationError(w, details)
		return
	}

	err := h.authUsecase.ChangePassword(r.Context(), usecase.ChangePasswordParams{
		UserID:          user.UserID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		writeUsecaseError(w, h.logger, err)
		return
	}

	h.clearRefreshCookie(w)
	writeJSON(w, http.StatusOK, MessageResponse{Message: "password changed; please log in again"})
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req VerifyEmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if details := h.validator.Struct(req); details != nil {
		writeValidationError(w, details)
		return
	}

	account, err := h.verificationUsecase.VerifyEmail(r.Context(), req.Token)
	if err != nil {
		writeUsecaseError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, AccountResponse{Account: account.Public()})
}

func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req ResendVerificationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if details := h.validator.Struct(req); details != nil {
		writeValidationError(w, details)
		return
	}

	if err := h.verificationUsecase.ResendVerification(r.Context(), req.Email); err != nil {
		writeUsecaseError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "verification email sent"})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if details := h.validator.Struct(req); details != nil {
		writeValidationError(w, details)
		return
	}

	if err := h.passwordResetUsecase.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeUsecaseError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Message: "if the email is registered, a reset link has been sent",
	})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if details := h.validator.Struct(req); details != nil {
		writeValidationError(w, details)
		return
	}

	if err := h.passwordResetUsecase.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeUsecaseError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "password reset; please log in again"})
}

func (h *AuthHandler) refreshTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	var req RefreshRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	return req.RefreshToken
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.App.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.App.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func tokensResponse(tokens usecase.Tokens, includeRefresh bool) TokensResponse {
	resp := TokensResponse{
		AccessToken:           tokens.AccessToken,
		AccessTokenExpiresAt:  tokens.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokens.RefreshTokenExpiresAt,
	}

	if includeRefresh {
		resp.RefreshToken = tokens.RefreshToken
	}

	return resp
}
