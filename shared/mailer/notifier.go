package mailer

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// NotifierConfig holds the base URLs embedded in account emails.
type NotifierConfig struct {
	VerificationBaseURL  string
	PasswordResetBaseURL string
	VerificationTokenTTL time.Duration
	PasswordResetTTL     time.Duration
}

// EmailNotifier sends account lifecycle emails. Methods report success as a
// boolean; failures are logged here and never carry internal detail upward.
type EmailNotifier struct {
	mailer *Mailer
	config NotifierConfig
	logger *zerolog.Logger
}

// NewEmailNotifier creates an EmailNotifier on top of the given Mailer.
func NewEmailNotifier(mailer *Mailer, config NotifierConfig, logger *zerolog.Logger) *EmailNotifier {
	return &EmailNotifier{
		mailer: mailer,
		config: config,
		logger: logger,
	}
}

// VerificationURL builds the absolute email verification link for a raw token.
func (n *EmailNotifier) VerificationURL(rawToken string) string {
	return fmt.Sprintf("%s?token=%s", n.config.VerificationBaseURL, rawToken)
}

// PasswordResetURL builds the absolute password reset link for a raw token.
func (n *EmailNotifier) PasswordResetURL(rawToken string) string {
	return fmt.Sprintf("%s?token=%s", n.config.PasswordResetBaseURL, rawToken)
}

// SendVerificationEmail sends the email verification link to the given address.
func (n *EmailNotifier) SendVerificationEmail(email, verificationURL string) bool {
	htmlBody := fmt.Sprintf(`
		<p>Hi,</p>
		<p>Thanks for signing up. Please confirm your email address by clicking the link below:</p>

		<p><a href="%s">%s</a></p>

		<p>This link will expire in %s.</p>
		<p>If you did not create an account, you can safely ignore this email.</p>

		<p>Thank you,</p>
		<p>Account API Team</p>
	`, verificationURL, verificationURL, n.config.VerificationTokenTTL)

	if err := n.mailer.SendHTML([]string{email}, "Verify Your Email Address", htmlBody); err != nil {
		n.logger.Error().Err(err).Str("email", email).Msg("failed to send verification email")
		return false
	}

	return true
}

// SendPasswordResetEmail sends the password reset link to the given address.
func (n *EmailNotifier) SendPasswordResetEmail(email, resetURL string) bool {
	htmlBody := fmt.Sprintf(`
		<p>Hi,</p>
		<p>We received a request to reset the password for your account.</p>
		<p>If you made this request, please click the link below to create a new password:</p>

		<p><a href="%s">%s</a></p>

		<p>This link will expire in %s for your security.</p>
		<p>If you did not request a password reset, you can safely ignore this email; your account will remain secure.</p>

		<p>Thank you,</p>
		<p>Account API Team</p>
	`, resetURL, resetURL, n.config.PasswordResetTTL)

	if err := n.mailer.SendHTML([]string{email}, "Password Reset Request", htmlBody); err != nil {
		n.logger.Error().Err(err).Str("email", email).Msg("failed to send password reset email")
		return false
	}

	return true
}
