package usecase_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/account-api/internal/model"
	"github.com/vasapolrittideah/account-api/internal/repository"
)

// fakeAccountRepo is an in-memory AccountRepository for orchestration tests.
type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*model.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]*model.Account)}
}

func (r *fakeAccountRepo) CreateAccount(_ context.Context, account *model.Account) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account.Normalize()
	account.ID = bson.NewObjectID()

	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	r.accounts[account.ID.Hex()] = clone(account)

	return clone(account), nil
}

func (r *fakeAccountRepo) GetAccount(_ context.Context, id string) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}

	return clone(account), nil
}

func (r *fakeAccountRepo) GetAccountByEmail(_ context.Context, email string) (*model.Account, error) {
	return r.findBy(func(a *model.Account) bool {
		return a.Email == strings.ToLower(email)
	})
}

func (r *fakeAccountRepo) GetAccountByUsername(_ context.Context, username string) (*model.Account, error) {
	return r.findBy(func(a *model.Account) bool {
		return a.Username == strings.ToLower(username)
	})
}

func (r *fakeAccountRepo) GetAccountByEmailOrUsername(
	_ context.Context,
	identifier string,
) (*model.Account, error) {
	identifier = strings.ToLower(identifier)

	return r.findBy(func(a *model.Account) bool {
		return a.Email == identifier || a.Username == identifier
	})
}

func (r *fakeAccountRepo) GetAccountByVerificationTokenHash(
	_ context.Context,
	hash string,
) (*model.Account, error) {
	now := time.Now()

	return r.findBy(func(a *model.Account) bool {
		return a.EmailVerificationToken == hash &&
			a.EmailVerificationExpiry != nil &&
			a.EmailVerificationExpiry.After(now)
	})
}

func (r *fakeAccountRepo) GetAccountByResetTokenHash(_ context.Context, hash string) (*model.Account, error) {
	now := time.Now()

	return r.findBy(func(a *model.Account) bool {
		return a.ResetToken == hash &&
			a.ResetTokenExpiry != nil &&
			a.ResetTokenExpiry.After(now)
	})
}

func (r *fakeAccountRepo) UpdateAccount(_ context.Context, account *model.Account) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[account.ID.Hex()]; !ok {
		return nil, repository.ErrAccountNotFound
	}

	account.PruneExpiredRefreshTokens(time.Now())
	account.UpdatedAt = time.Now()
	r.accounts[account.ID.Hex()] = clone(account)

	return clone(account), nil
}

func (r *fakeAccountRepo) DeleteAccount(_ context.Context, id string) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}

	delete(r.accounts, id)

	return clone(account), nil
}

func (r *fakeAccountRepo) ListAccounts(
	_ context.Context,
	_ repository.FilterAccountsParams,
) ([]*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts := make([]*model.Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		accounts = append(accounts, clone(account))
	}

	return accounts, nil
}

func (r *fakeAccountRepo) findBy(match func(*model.Account) bool) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, account := range r.accounts {
		if match(account) {
			return clone(account), nil
		}
	}

	return nil, repository.ErrAccountNotFound
}

// stored returns the persisted state of an account, bypassing the interface.
func (r *fakeAccountRepo) stored(id string) *model.Account {
	r.mu.Lock()
	defer r.mu.Unlock()

	return clone(r.accounts[id])
}

// put overwrites the persisted state of an account, bypassing the interface.
func (r *fakeAccountRepo) put(account *model.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.accounts[account.ID.Hex()] = clone(account)
}

func (r *fakeAccountRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.accounts)
}

func clone(account *model.Account) *model.Account {
	if account == nil {
		return nil
	}

	copied := *account
	copied.RefreshTokens = append([]model.RefreshToken(nil), account.RefreshTokens...)
	copied.OAuthProviders = append([]model.OAuthProvider(nil), account.OAuthProviders...)

	return &copied
}

// fakeNotifier records sent emails and can be told to fail.
type fakeNotifier struct {
	mu                sync.Mutex
	failVerification  bool
	failPasswordReset bool
	verificationURLs  []string
	resetURLs         []string
}

func (n *fakeNotifier) VerificationURL(rawToken string) string {
	return "https://example.com/verify?token=" + rawToken
}

func (n *fakeNotifier) PasswordResetURL(rawToken string) string {
	return "https://example.com/reset?token=" + rawToken
}

func (n *fakeNotifier) SendVerificationEmail(_, verificationURL string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.failVerification {
		return false
	}

	n.verificationURLs = append(n.verificationURLs, verificationURL)

	return true
}

func (n *fakeNotifier) SendPasswordResetEmail(_, resetURL string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.failPasswordReset {
		return false
	}

	n.resetURLs = append(n.resetURLs, resetURL)

	return true
}

func (n *fakeNotifier) lastVerificationToken() string {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.verificationURLs) == 0 {
		return ""
	}

	return tokenFromURL(n.verificationURLs[len(n.verificationURLs)-1])
}

func (n *fakeNotifier) lastResetToken() string {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.resetURLs) == 0 {
		return ""
	}

	return tokenFromURL(n.resetURLs[len(n.resetURLs)-1])
}

func tokenFromURL(url string) string {
	_, token, _ := strings.Cut(url, "token=")
	return token
}
