package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasapolrittideah/account-api/internal/usecase"
)

func TestRequestPasswordResetUnknownEmailSucceedsSilently(t *testing.T) {
	env := newTestEnv(t)

	err := env.passwordReset.RequestPasswordReset(context.Background(), "nobody@x.com")
	require.NoError(t, err)
	assert.Empty(t, env.notifier.resetURLs)
}

func TestResetPasswordFlow(t *testing.T) {
	env := newTestEnv(t)
	account := env.registerVerified(t)

	login, err := env.auth.Login(context.Background(), usecase.LoginParams{
		Identifier: "alice", Password: "Aa1!aaaa",
	})
	require.NoError(t, err)

	err = env.passwordReset.RequestPasswordReset(context.Background(), "alice@x.com")
	require.NoError(t, err)

	raw := env.notifier.lastResetToken()
	require.NotEmpty(t, raw)

	err = env.passwordReset.ResetPassword(context.Background(), raw, "Bb2@bbbb")
	require.NoError(t, err)

	// The reset cleared the slot and every session.
	stored := env.repo.stored(account.ID.Hex())
	assert.Empty(t, stored.ResetToken)
	assert.Nil(t, stored.ResetTokenExpiry)
	assert.Empty(t, stored.RefreshTokens)

	_, err = env.auth.RefreshToken(context.Background(), login.Tokens.RefreshToken)
	assert.ErrorIs(t, err, usecase.ErrInvalidRefreshToken)

	_, err = env.auth.Login(context.Background(), usecase.LoginParams{
		Identifier: "alice", Password: "Aa1!aaaa",
	})
	assert.ErrorIs(t, err, usecase.ErrInvalidCredentials)

	_, err = env.auth.Login(context.Background(), usecase.LoginParams{
		Identifier: "alice", Password: "Bb2@bbbb",
	})
	assert.NoError(t, err)
}

func TestResetPasswordTokenIsSingleUse(t *testing.T) {
	env := newTestEnv(t)
	env.registerVerified(t)

	err := env.passwordReset.RequestPasswordReset(context.Background(), "alice@x.com")
	require.NoError(t, err)

	raw := env.notifier.lastResetToken()

	err = env.passwordReset.ResetPassword(context.Background(), raw, "Bb2@bbbb")
	require.NoError(t, err)

	err = env.passwordReset.ResetPassword(context.Background(), raw, "Cc3#cccc")
	assert.ErrorIs(t, err, usecase.ErrResetTokenInvalid)
}

func TestResetPasswordRejectsExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	account := env.registerVerified(t)

	err := env.passwordReset.RequestPasswordReset(context.Background(), "alice@x.com")
	require.NoError(t, err)

	stored := env.repo.stored(account.ID.Hex())
	expired := time.Now().Add(-time.Minute)
	stored.ResetTokenExpiry = &expired
	env.repo.put(stored)

	err = env.passwordReset.ResetPassword(context.Background(), env.notifier.lastResetToken(), "Bb2@bbbb")
	assert.ErrorIs(t, err, usecase.ErrResetTokenInvalid)
}

func TestRequestPasswordResetOverwritesPriorToken(t *testing.T) {
	env := newTestEnv(t)
	env.registerVerified(t)

	require.NoError(t, env.passwordReset.RequestPasswordReset(context.Background(), "alice@x.com"))
	first := env.notifier.lastResetToken()

	require.NoError(t, env.passwordReset.RequestPasswordReset(context.Background(), "alice@x.com"))
	second := env.notifier.lastResetToken()
	require.NotEqual(t, first, second)

	err := env.passwordReset.ResetPassword(context.Background(), first, "Bb2@bbbb")
	assert.ErrorIs(t, err, usecase.ErrResetTokenInvalid)

	err = env.passwordReset.ResetPassword(context.Background(), second, "Bb2@bbbb")
	assert.NoError(t, err)
}

func TestRequestPasswordResetFailsWhenEmailCannotBeSent(t *testing.T) {
	env := newTestEnv(t)
	env.registerVerified(t)
	env.notifier.failPasswordReset = true

	err := env.passwordReset.RequestPasswordReset(context.Background(), "alice@x.com")
	assert.ErrorIs(t, err, usecase.ErrEmailSendFailed)
}
