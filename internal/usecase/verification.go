package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/account-api/internal/config"
	"github.com/vasapolrittideah/account-api/internal/model"
	"github.com/vasapolrittideah/account-api/internal/repository"
	"github.com/vasapolrittideah/account-api/shared/security"
)

// VerificationUsecase defines the business logic for email verification.
type VerificationUsecase interface {
	// VerifyEmail consumes a raw verification token. The token is single-use:
	// the stored hash is cleared on success.
	VerifyEmail(ctx context.Context, rawToken string) (*model.Account, error)

	// ResendVerification generates a fresh verification token, overwriting
	// any prior one, and emails it. A send failure fails the operation.
	ResendVerification(ctx context.Context, email string) error
}

var (
	ErrVerificationTokenInvalid = errors.New("verification token not found or expired")
	ErrAlreadyVerified          = errors.New("email address is already verified")
	ErrEmailSendFailed          = errors.New("failed to send email")
)

type verificationUsecase struct {
	accountRepo repository.AccountRepository
	notifier    Notifier
	cfg         *config.Config
	logger      *zerolog.Logger
}

// NewVerificationUsecase creates a new VerificationUsecase instance.
func NewVerificationUsecase(
	accountRepo repository.AccountRepository,
	notifier Notifier,
	cfg *config.Config,
	logger *zerolog.Logger,
) VerificationUsecase {
	return &verificationUsecase{
		accountRepo: accountRepo,
		notifier:    notifier,
		cfg:         cfg,
		logger:      logger,
	}
}

func (u *verificationUsecase) VerifyEmail(ctx context.Context, rawToken string) (*model.Account, error) {
	hash := security.HashOpaqueToken(rawToken)

	account, err := u.accountRepo.GetAccountByVerificationTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrVerificationTokenInvalid
		}

		return nil, err
	}

	account.MarkEmailVerified()

	return u.accountRepo.UpdateAccount(ctx, account)
}

func (u *verificationUsecase) ResendVerification(ctx context.Context, email string) error {
	account, err := u.accountRepo.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return ErrAccountNotFound
		}

		return err
	}

	if account.EmailVerified {
		return ErrAlreadyVerified
	}

	token, err := security.NewVerificationToken(u.cfg.Token.VerificationTokenExpiresIn)
	if err != nil {
		return err
	}

	account.EmailVerificationToken = token.Hash
	account.EmailVerificationExpiry = &token.ExpiresAt

	if _, err := u.accountRepo.UpdateAccount(ctx, account); err != nil {
		return err
	}

	// Unlike registration, there is no other useful outcome here: the whole
	// point of the call is the email.
	if !u.notifier.SendVerificationEmail(account.Email, u.notifier.VerificationURL(token.Raw)) {
		return ErrEmailSendFailed
	}

	return nil
}
