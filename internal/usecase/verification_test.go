package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasapolrittideah/account-api/internal/model"
	"github.com/vasapolrittideah/account-api/internal/usecase"
)

func TestVerifyEmailIsSingleUse(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)

	raw := env.notifier.lastVerificationToken()
	require.NotEmpty(t, raw)

	account, err := env.verification.VerifyEmail(context.Background(), raw)
	require.NoError(t, err)
	assert.True(t, account.EmailVerified)
	assert.Equal(t, model.StatusActive, account.Status)
	assert.Empty(t, account.EmailVerificationToken)

	// The stored hash was cleared on success, so the same raw token fails.
	_, err = env.verification.VerifyEmail(context.Background(), raw)
	assert.ErrorIs(t, err, usecase.ErrVerificationTokenInvalid)
}

func TestVerifyEmailRejectsUnknownToken(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)

	_, err := env.verification.VerifyEmail(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, usecase.ErrVerificationTokenInvalid)
}

func TestVerifyEmailRejectsExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	result := env.register(t)

	stored := env.repo.stored(result.Account.ID.Hex())
	expired := time.Now().Add(-time.Minute)
	stored.EmailVerificationExpiry = &expired
	env.repo.put(stored)

	_, err := env.verification.VerifyEmail(context.Background(), env.notifier.lastVerificationToken())
	assert.ErrorIs(t, err, usecase.ErrVerificationTokenInvalid)
}

func TestResendVerificationUnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	err := env.verification.ResendVerification(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, usecase.ErrAccountNotFound)
}

func TestResendVerificationAlreadyVerified(t *testing.T) {
	env := newTestEnv(t)
	env.registerVerified(t)

	err := env.verification.ResendVerification(context.Background(), "alice@x.com")
	assert.ErrorIs(t, err, usecase.ErrAlreadyVerified)
}

func TestResendVerificationOverwritesPriorToken(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)

	original := env.notifier.lastVerificationToken()

	err := env.verification.ResendVerification(context.Background(), "alice@x.com")
	require.NoError(t, err)

	replacement := env.notifier.lastVerificationToken()
	require.NotEqual(t, original, replacement)

	_, err = env.verification.VerifyEmail(context.Background(), original)
	assert.ErrorIs(t, err, usecase.ErrVerificationTokenInvalid)

	_, err = env.verification.VerifyEmail(context.Background(), replacement)
	assert.NoError(t, err)
}

func TestResendVerificationFailsWhenEmailCannotBeSent(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)
	env.notifier.failVerification = true

	err := env.verification.ResendVerification(context.Background(), "alice@x.com")
	assert.ErrorIs(t, err, usecase.ErrEmailSendFailed)
}
