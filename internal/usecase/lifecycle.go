package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/account-api/internal/model"
	"github.com/vasapolrittideah/account-api/internal/repository"
)

// LifecycleUsecase defines administrative and self-service account state
// operations. Every mutation follows read, transition in memory, replace.
type LifecycleUsecase interface {
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	ListAccounts(ctx context.Context, params repository.FilterAccountsParams) ([]*model.Account, error)
	Activate(ctx context.Context, id string) (*model.Account, error)
	Deactivate(ctx context.Context, id, reason string) (*model.Account, error)
	Block(ctx context.Context, id, reason string) (*model.Account, error)
	Unblock(ctx context.Context, id string) (*model.Account, error)
	ChangeRole(ctx context.Context, id, role string) (*model.Account, error)
	RequestDeletion(ctx context.Context, id, reason string) (*model.Account, error)
	CancelDeletionRequest(ctx context.Context, id string) (*model.Account, error)
	Reactivate(ctx context.Context, id string) (*model.Account, error)
	DeleteAccount(ctx context.Context, id string) error
}

var (
	ErrInvalidRole        = errors.New("invalid role")
	ErrNotBlocked         = errors.New("account is not blocked")
	ErrNoDeletionRequest  = errors.New("account has no pending deletion request")
	ErrDeletionInProgress = errors.New("account already has a pending deletion request")
)

type lifecycleUsecase struct {
	accountRepo repository.AccountRepository
	logger      *zerolog.Logger
}

// NewLifecycleUsecase creates a new LifecycleUsecase instance.
func NewLifecycleUsecase(accountRepo repository.AccountRepository, logger *zerolog.Logger) LifecycleUsecase {
	return &lifecycleUsecase{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

func (u *lifecycleUsecase) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	account, err := u.accountRepo.GetAccount(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}

		return nil, err
	}

	return account, nil
}

func (u *lifecycleUsecase) ListAccounts(
	ctx context.Context,
	params repository.FilterAccountsParams,
) ([]*model.Account, error) {
	return u.accountRepo.ListAccounts(ctx, params)
}

func (u *lifecycleUsecase) Activate(ctx context.Context, id string) (*model.Account, error) {
	return u.transition(ctx, id, func(account *model.Account) error {
		account.Activate()
		return nil
	})
}

func (u *lifecycleUsecase) Deactivate(ctx context.Context, id, reason string) (*model.Account, error) {
	return u.transition(ctx, id, func(account *model.Account) error {
		account.Deactivate(reason)
		return nil
	})
}

func (u *lifecycleUsecase) Block(ctx context.Context, id, reason string) (*model.Account, error) {
	return u.transition(ctx, id, func(account *model.Account) error {
		account.Block(reason)
		return nil
	})
}

func (u *lifecycleUsecase) Unblock(ctx context.Context, id string) (*model.Account, error) {
	return u.transition(ctx, id, func(account *model.Account) error {
		if !account.IsBlocked() {
			return ErrNotBlocked
		}
		account.Unblock()
		return nil
	})
}

func (u *lifecycleUsecase) ChangeRole(ctx context.Context, id, role string) (*model.Account, error) {
	if !model.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	return u.transition(ctx, id, func(account *model.Account) error {
		account.Role = role
		return nil
	})
}

func (u *lifecycleUsecase) RequestDeletion(ctx context.Context, id, reason string) (*model.Account, error) {
	return u.transition(ctx, id, func(account *model.Account) error {
		if account.Status == model.StatusDeletionRequested {
			return ErrDeletionInProgress
		}
		account.RequestDeletion(reason, time.Now())
		return nil
	})
}

func (u *lifecycleUsecase) CancelDeletionRequest(ctx context.Context, id string) (*model.Account, error) {
	return u.transition(ctx, id, func(account *model.Account) error {
		if account.Status != model.StatusDeletionRequested {
			return ErrNoDeletionRequest
		}
		account.CancelDeletionRequest()
		return nil
	})
}

func (u *lifecycleUsecase) Reactivate(ctx context.Context, id string) (*model.Account, error) {
	return u.transition(ctx, id, func(account *model.Account) error {
		if account.Status != model.StatusDeletionRequested {
			return ErrNoDeletionRequest
		}
		if account.IsDeletionExpired(time.Now()) {
			return ErrAccountDeactivated
		}
		account.Reactivate(time.Now())
		return nil
	})
}

// DeleteAccount removes the record entirely. Hard delete, no archival.
func (u *lifecycleUsecase) DeleteAccount(ctx context.Context, id string) error {
	if _, err := u.accountRepo.DeleteAccount(ctx, id); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return ErrAccountNotFound
		}

		return err
	}

	return nil
}

func (u *lifecycleUsecase) transition(
	ctx context.Context,
	id string,
	apply func(*model.Account) error,
) (*model.Account, error) {
	account, err := u.accountRepo.GetAccount(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}

		return nil, err
	}

	if err := apply(account); err != nil {
		return nil, err
	}

	return u.accountRepo.UpdateAccount(ctx, account)
}
