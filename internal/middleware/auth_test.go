package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/account-api/internal/middleware"
	"github.com/vasapolrittideah/account-api/internal/model"
	"github.com/vasapolrittideah/account-api/internal/repository"
	"github.com/vasapolrittideah/account-api/shared/auth"
)

// stubAccountRepo serves accounts by ID; everything else is unused by the
// guard.
type stubAccountRepo struct {
	repository.AccountRepository
	accounts map[string]*model.Account
}

func (r *stubAccountRepo) GetAccount(_ context.Context, id string) (*model.Account, error) {
	account, ok := r.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}

	return account, nil
}

type guardEnv struct {
	guard        *middleware.Guard
	repo         *stubAccountRepo
	tokenService *auth.TokenService
}

func newGuardEnv() *guardEnv {
	tokenService := auth.NewTokenService(auth.TokenConfig{
		AccessTokenSecret:  "access-secret",
		RefreshTokenSecret: "refresh-secret",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenTTL:    720 * time.Hour,
		Issuer:             "account-api",
		Audience:           "account-api",
	})

	repo := &stubAccountRepo{accounts: make(map[string]*model.Account)}
	logger := zerolog.Nop()

	return &guardEnv{
		guard:        middleware.NewGuard(tokenService, repo, &logger),
		repo:         repo,
		tokenService: tokenService,
	}
}

// seedAccount stores an account in the given status and returns it with a
// valid access token.
func (e *guardEnv) seedAccount(t *testing.T, status model.AccountStatus) (*model.Account, string) {
	t.Helper()

	account := &model.Account{
		ID:            bson.NewObjectID(),
		Name:          "Alice",
		Username:      "alice",
		Email:         "alice@x.com",
		Role:          model.RoleUser,
		EmailVerified: status != model.StatusPendingVerification,
		Status:        status,
	}
	e.repo.accounts[account.ID.Hex()] = account

	token, _, err := e.tokenService.IssueAccessToken(
		account.ID.Hex(),
		account.Email,
		account.Role,
		account.Username,
	)
	require.NoError(t, err)

	return account, token
}

// serve runs a request through the given middleware chain and reports the
// identity the inner handler saw, if it ran at all.
func serve(mw func(http.Handler) http.Handler, token string) (*httptest.ResponseRecorder, *middleware.AuthenticatedUser) {
	var seen *middleware.AuthenticatedUser

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, ok := middleware.UserFromContext(r.Context()); ok {
			seen = user
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec, seen
}

func TestRequireAuthAllowsActiveAccount(t *testing.T) {
	env := newGuardEnv()
	account, token := env.seedAccount(t, model.StatusActive)

	rec, user := serve(env.guard.RequireAuth, token)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, user)
	assert.Equal(t, account.ID.Hex(), user.UserID)
	assert.Equal(t, "alice@x.com", user.Email)
	assert.Equal(t, model.RoleUser, user.Role)
}

func TestRequireAuthAllowsPendingAccount(t *testing.T) {
	env := newGuardEnv()

	// Registration issues a session before the email is verified; that
	// session must be able to reach guarded routes such as logout.
	account, token := env.seedAccount(t, model.StatusPendingVerification)

	rec, user := serve(env.guard.RequireAuth, token)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, user)
	assert.Equal(t, account.ID.Hex(), user.UserID)
}

func TestRequireAuthRejectsByAccountStatus(t *testing.T) {
	tests := []struct {
		name   string
		status model.AccountStatus
	}{
		{"blocked", model.StatusBlocked},
		{"suspended", model.StatusSuspended},
		{"inactive", model.StatusInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newGuardEnv()
			_, token := env.seedAccount(t, tt.status)

			rec, user := serve(env.guard.RequireAuth, token)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Nil(t, user)
		})
	}
}

func TestRequireAuthRejectsDeletedAccount(t *testing.T) {
	env := newGuardEnv()
	account, token := env.seedAccount(t, model.StatusActive)

	// The account is reloaded on every request, so a token outliving its
	// account is worthless.
	delete(env.repo.accounts, account.ID.Hex())

	rec, user := serve(env.guard.RequireAuth, token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, user)
}

func TestRequireAuthDuringDeletionGraceWindow(t *testing.T) {
	env := newGuardEnv()
	account, token := env.seedAccount(t, model.StatusDeletionRequested)

	requested := time.Now().Add(-time.Hour)
	account.DeletionRequestedAt = &requested

	rec, user := serve(env.guard.RequireAuth, token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, user)
}

func TestRequireAuthRejectsExpiredDeletionWindow(t *testing.T) {
	env := newGuardEnv()
	account, token := env.seedAccount(t, model.StatusDeletionRequested)

	requested := time.Now().Add(-model.DeletionGracePeriod - time.Hour)
	account.DeletionRequestedAt = &requested

	rec, user := serve(env.guard.RequireAuth, token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, user)
}

func TestRequireAuthRejectsMissingOrMalformedToken(t *testing.T) {
	env := newGuardEnv()
	env.seedAccount(t, model.StatusActive)

	for _, token := range []string{"", "not-a-jwt"} {
		rec, user := serve(env.guard.RequireAuth, token)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, user)
	}
}

func TestOptionalAuthProceedsUnauthenticated(t *testing.T) {
	env := newGuardEnv()

	rec, user := serve(env.guard.OptionalAuth, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, user)
}

func TestOptionalAuthAttachesIdentityWhenPresent(t *testing.T) {
	env := newGuardEnv()
	account, token := env.seedAccount(t, model.StatusActive)

	rec, user := serve(env.guard.OptionalAuth, token)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, user)
	assert.Equal(t, account.ID.Hex(), user.UserID)
}

func TestRequireAdmin(t *testing.T) {
	env := newGuardEnv()
	account, token := env.seedAccount(t, model.StatusActive)

	chain := func(next http.Handler) http.Handler {
		return env.guard.RequireAuth(env.guard.RequireAdmin(next))
	}

	rec, _ := serve(chain, token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	account.Role = model.RoleAdmin
	adminToken, _, err := env.tokenService.IssueAccessToken(
		account.ID.Hex(),
		account.Email,
		account.Role,
		account.Username,
	)
	require.NoError(t, err)

	rec, user := serve(chain, adminToken)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, user)
	assert.Equal(t, model.RoleAdmin, user.Role)
}
