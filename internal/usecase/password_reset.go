package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/account-api/internal/config"
	"github.com/vasapolrittideah/account-api/internal/repository"
	"github.com/vasapolrittideah/account-api/shared/security"
)

// PasswordResetUsecase defines the business logic for password resets.
type PasswordResetUsecase interface {
	// RequestPasswordReset initiates the password reset process for a given
	// email. Unknown addresses succeed silently.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword consumes a raw reset token and sets a new password. All
	// refresh tokens are revoked.
	ResetPassword(ctx context.Context, rawToken, newPassword string) error
}

// ErrResetTokenInvalid is returned for unknown or expired reset tokens.
var ErrResetTokenInvalid = errors.New("password reset token not found or expired")

type passwordResetUsecase struct {
	accountRepo repository.AccountRepository
	hasher      *security.Hasher
	notifier    Notifier
	cfg         *config.Config
	logger      *zerolog.Logger
}

// NewPasswordResetUsecase creates a new PasswordResetUsecase instance.
func NewPasswordResetUsecase(
	accountRepo repository.AccountRepository,
	hasher *security.Hasher,
	notifier Notifier,
	cfg *config.Config,
	logger *zerolog.Logger,
) PasswordResetUsecase {
	return &passwordResetUsecase{
		accountRepo: accountRepo,
		hasher:      hasher,
		notifier:    notifier,
		cfg:         cfg,
		logger:      logger,
	}
}

func (u *passwordResetUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := u.accountRepo.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			// To prevent email enumeration, do not reveal that the email does
			// not exist.
			return nil
		}

		return err
	}

	token, err := security.NewPasswordResetToken(u.cfg.Token.PasswordResetTokenExpiresIn)
	if err != nil {
		return err
	}

	// Overwrites any previous reset token; only the latest link works.
	account.ResetToken = token.Hash
	account.ResetTokenExpiry = &token.ExpiresAt

	if _, err := u.accountRepo.UpdateAccount(ctx, account); err != nil {
		return err
	}

	if !u.notifier.SendPasswordResetEmail(account.Email, u.notifier.PasswordResetURL(token.Raw)) {
		return ErrEmailSendFailed
	}

	return nil
}

func (u *passwordResetUsecase) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	hash := security.HashOpaqueToken(rawToken)

	account, err := u.accountRepo.GetAccountByResetTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return ErrResetTokenInvalid
		}

		return err
	}

	passwordHash, err := u.hasher.HashPassword(newPassword)
	if err != nil {
		return err
	}

	account.PasswordHash = passwordHash
	account.ResetToken = ""
	account.ResetTokenExpiry = nil

	// A reset proves control of the email channel, not of existing sessions;
	// any stolen session dies here.
	account.ClearRefreshTokens()

	if _, err := u.accountRepo.UpdateAccount(ctx, account); err != nil {
		return err
	}

	return nil
}
