package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/account-api/internal/config"
	"github.com/vasapolrittideah/account-api/internal/model"
	"github.com/vasapolrittideah/account-api/internal/repository"
	"github.com/vasapolrittideah/account-api/shared/auth"
	"github.com/vasapolrittideah/account-api/shared/security"
)

// AuthUsecase defines the interface for authentication-related use cases.
type AuthUsecase interface {
	Register(ctx context.Context, params RegisterParams) (*RegisterResult, error)
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)
	RefreshToken(ctx context.Context, rawRefreshToken string) (*Tokens, error)
	Logout(ctx context.Context, userID, rawRefreshToken string) error
	ChangePassword(ctx context.Context, params ChangePasswordParams) error
}

// RegisterParams defines the parameters for user registration.
type RegisterParams struct {
	Name     string
	Username string
	Email    string
	Password string
}

// RegisterResult is the outcome of a successful registration. A failed
// verification email does not fail the registration; it only clears
// VerificationEmailSent.
type RegisterResult struct {
	Account               *model.Account
	Tokens                Tokens
	VerificationEmailSent bool
}

// LoginParams defines the parameters for user login. Identifier is an email
// address or a username, matched case-insensitively.
type LoginParams struct {
	Identifier string
	Password   string
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Account *model.Account
	Tokens  Tokens
}

// ChangePasswordParams defines the parameters for a password change.
type ChangePasswordParams struct {
	UserID          string
	CurrentPassword string
	NewPassword     string
}

var (
	ErrEmailTaken          = errors.New("email is already registered")
	ErrUsernameTaken       = errors.New("username is already taken")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmailNotVerified    = errors.New("email address is not verified")
	ErrAccountDeactivated  = errors.New("account is deactivated")
	ErrAccountBlocked      = errors.New("account is blocked")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrWrongPassword       = errors.New("current password is incorrect")
	ErrAccountNotFound     = errors.New("account not found")
)

type authUsecase struct {
	accountRepo  repository.AccountRepository
	tokenService *auth.TokenService
	hasher       *security.Hasher
	notifier     Notifier
	cfg          *config.Config
	logger       *zerolog.Logger
}

// NewAuthUsecase creates a new AuthUsecase instance.
func NewAuthUsecase(
	accountRepo repository.AccountRepository,
	tokenService *auth.TokenService,
	hasher *security.Hasher,
	notifier Notifier,
	cfg *config.Config,
	logger *zerolog.Logger,
) AuthUsecase {
	return &authUsecase{
		accountRepo:  accountRepo,
		tokenService: tokenService,
		hasher:       hasher,
		notifier:     notifier,
		cfg:          cfg,
		logger:       logger,
	}
}

func (u *authUsecase) Register(ctx context.Context, params RegisterParams) (*RegisterResult, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))
	username := strings.ToLower(strings.TrimSpace(params.Username))

	// Email collision takes precedence over username collision.
	if err := u.checkTaken(ctx, email, username); err != nil {
		return nil, err
	}

	passwordHash, err := u.hasher.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		Name:         params.Name,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         model.RoleUser,
	}

	var verificationToken *security.OpaqueToken

	if u.cfg.App.RequireEmailVerification {
		account.Status = model.StatusPendingVerification

		verificationToken, err = security.NewVerificationToken(u.cfg.Token.VerificationTokenExpiresIn)
		if err != nil {
			return nil, err
		}

		account.EmailVerificationToken = verificationToken.Hash
		account.EmailVerificationExpiry = &verificationToken.ExpiresAt
	} else {
		account.Status = model.StatusActive
		account.EmailVerified = true
	}

	account, err = u.accountRepo.CreateAccount(ctx, account)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if strings.Contains(err.Error(), "username") {
				return nil, ErrUsernameTaken
			}
			return nil, ErrEmailTaken
		}

		return nil, err
	}

	tokens, err := u.issueSession(ctx, account)
	if err != nil {
		return nil, err
	}

	emailSent := true
	if verificationToken != nil {
		emailSent = u.notifier.SendVerificationEmail(
			account.Email,
			u.notifier.VerificationURL(verificationToken.Raw),
		)
		if !emailSent {
			u.logger.Warn().Str("email", account.Email).Msg("verification email not sent at registration")
		}
	}

	return &RegisterResult{
		Account:               account,
		Tokens:                *tokens,
		VerificationEmailSent: emailSent,
	}, nil
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (*LoginResult, error) {
	account, err := u.accountRepo.GetAccountByEmailOrUsername(ctx, params.Identifier)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	now := time.Now()

	if !account.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	if !account.CanLogin(now) {
		return nil, statusError(account)
	}

	// Same error as an unknown identifier, to avoid user enumeration.
	if ok, err := u.hasher.VerifyPassword(params.Password, account.PasswordHash); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrInvalidCredentials
	}

	account.LastLogin = &now

	tokens, err := u.issueSession(ctx, account)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Account: account,
		Tokens:  *tokens,
	}, nil
}

// RefreshToken exchanges a valid refresh token for a brand-new pair. The
// presented token is removed from the account's active set, so it can never
// be exchanged twice.
func (u *authUsecase) RefreshToken(ctx context.Context, rawRefreshToken string) (*Tokens, error) {
	claims, err := u.tokenService.VerifyRefreshToken(rawRefreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	account, err := u.accountRepo.GetAccount(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrInvalidRefreshToken
		}

		return nil, err
	}

	now := time.Now()

	// A signature-valid token that is no longer in the active set has been
	// rotated or revoked; replaying it must fail.
	if !account.HasValidRefreshToken(rawRefreshToken, now) {
		return nil, ErrInvalidRefreshToken
	}

	if err := refreshEligibility(account, now); err != nil {
		return nil, err
	}

	account.RemoveRefreshToken(rawRefreshToken)

	tokens, err := u.issueSession(ctx, account)
	if err != nil {
		return nil, err
	}

	return tokens, nil
}

// Logout removes the given refresh token from the account. Calling it with a
// token that is already absent is a no-op.
func (u *authUsecase) Logout(ctx context.Context, userID, rawRefreshToken string) error {
	account, err := u.accountRepo.GetAccount(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil
		}

		return err
	}

	account.RemoveRefreshToken(rawRefreshToken)

	if _, err := u.accountRepo.UpdateAccount(ctx, account); err != nil {
		return err
	}

	return nil
}

// ChangePassword verifies the current password, stores the new hash, and
// clears every refresh token so all devices must log in again.
func (u *authUsecase) ChangePassword(ctx context.Context, params ChangePasswordParams) error {
	account, err := u.accountRepo.GetAccount(ctx, params.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return ErrAccountNotFound
		}

		return err
	}

	if ok, err := u.hasher.VerifyPassword(params.CurrentPassword, account.PasswordHash); err != nil {
		return err
	} else if !ok {
		return ErrWrongPassword
	}

	passwordHash, err := u.hasher.HashPassword(params.NewPassword)
	if err != nil {
		return err
	}

	account.PasswordHash = passwordHash
	account.ClearRefreshTokens()

	if _, err := u.accountRepo.UpdateAccount(ctx, account); err != nil {
		return err
	}

	return nil
}

func (u *authUsecase) checkTaken(ctx context.Context, email, username string) error {
	if _, err := u.accountRepo.GetAccountByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, repository.ErrAccountNotFound) {
		return err
	}

	if _, err := u.accountRepo.GetAccountByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrAccountNotFound) {
		return err
	}

	return nil
}

// issueSession issues a fresh token pair, appends the refresh token to the
// account's bounded store, and saves the account.
func (u *authUsecase) issueSession(ctx context.Context, account *model.Account) (*Tokens, error) {
	userID := account.ID.Hex()

	accessToken, accessExpiresAt, err := u.tokenService.IssueAccessToken(
		userID,
		account.Email,
		account.Role,
		account.Username,
	)
	if err != nil {
		return nil, err
	}

	refreshToken, refreshExpiresAt, err := u.tokenService.IssueRefreshToken(userID)
	if err != nil {
		return nil, err
	}

	account.AddRefreshToken(refreshToken, time.Now(), refreshExpiresAt)

	if _, err := u.accountRepo.UpdateAccount(ctx, account); err != nil {
		return nil, err
	}

	return &Tokens{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  accessExpiresAt,
		RefreshTokenExpiresAt: refreshExpiresAt,
	}, nil
}

// statusError maps an account that failed the login gate to its sentinel.
func statusError(account *model.Account) error {
	switch account.Status {
	case model.StatusBlocked, model.StatusSuspended:
		return ErrAccountBlocked
	case model.StatusPendingVerification:
		return ErrEmailNotVerified
	default:
		return ErrAccountDeactivated
	}
}

// refreshEligibility gates token exchange on account status. Exchange
// requires an active account or an unexpired deletion grace window; tokens
// issued at registration stop being exchangeable until the email is
// verified.
func refreshEligibility(account *model.Account, now time.Time) error {
	switch account.Status {
	case model.StatusActive:
		return nil
	case model.StatusDeletionRequested:
		if account.IsDeletionExpired(now) {
			return ErrAccountDeactivated
		}
		return nil
	case model.StatusBlocked, model.StatusSuspended:
		return ErrAccountBlocked
	case model.StatusPendingVerification:
		return ErrEmailNotVerified
	default:
		return ErrAccountDeactivated
	}
}
