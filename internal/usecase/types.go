package usecase

import "time"

// Tokens is an issued access/refresh token pair.
type Tokens struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
}

// Notifier sends account lifecycle emails and builds the links embedded in
// them. Implementations report success as a boolean; retries, if any, are
// the notifier's concern.
type Notifier interface {
	VerificationURL(rawToken string) string
	PasswordResetURL(rawToken string) string
	SendVerificationEmail(email, verificationURL string) bool
	SendPasswordResetEmail(email, resetURL string) bool
}
