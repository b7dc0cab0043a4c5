package model

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	// MaxRefreshTokens bounds the number of concurrent sessions per account.
	// Adding past the cap evicts the oldest token first.
	MaxRefreshTokens = 5

	// DeletionGracePeriod is how long a deletion-requested account remains
	// reactivatable before the cleanup job may hard-delete it.
	DeletionGracePeriod = 30 * 24 * time.Hour
)

// RefreshToken is one entry in the account's bounded session store.
type RefreshToken struct {
	Token     string    `bson:"token"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// OAuthProvider records a linked external identity. Provider records are
// stored passively; no federation logic reads them.
type OAuthProvider struct {
	Provider    string    `bson:"provider"`
	ProviderID  string    `bson:"provider_id"`
	Email       string    `bson:"email"`
	ConnectedAt time.Time `bson:"connected_at"`
}

// Account represents a user account document. It is the aggregate root: it
// is always read, mutated in memory, then persisted as a whole.
type Account struct {
	ID                      bson.ObjectID   `bson:"_id,omitempty"`
	Name                    string          `bson:"name"`
	Username                string          `bson:"username"`
	Email                   string          `bson:"email"`
	PasswordHash            string          `bson:"password_hash"`
	Role                    string          `bson:"role"`
	EmailVerified           bool            `bson:"email_verified"`
	Status                  AccountStatus   `bson:"status"`
	DeletionRequestedAt     *time.Time      `bson:"deletion_requested_at,omitempty"`
	DeletionReason          string          `bson:"deletion_reason,omitempty"`
	DeactivationReason      string          `bson:"deactivation_reason,omitempty"`
	LastLogin               *time.Time      `bson:"last_login,omitempty"`
	OnboardingCompleted     bool            `bson:"onboarding_completed"`
	OAuthProviders          []OAuthProvider `bson:"oauth_providers,omitempty"`
	EmailVerificationToken  string          `bson:"email_verification_token,omitempty"`
	EmailVerificationExpiry *time.Time      `bson:"email_verification_expiry,omitempty"`
	ResetToken              string          `bson:"reset_token,omitempty"`
	ResetTokenExpiry        *time.Time      `bson:"reset_token_expiry,omitempty"`
	RefreshTokens           []RefreshToken  `bson:"refresh_tokens"`
	CreatedAt               time.Time       `bson:"created_at"`
	UpdatedAt               time.Time       `bson:"updated_at"`
}

// Normalize lowercases email and username. Lookups and uniqueness are
// case-insensitive; normalization happens before persistence.
func (a *Account) Normalize() {
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	a.Username = strings.ToLower(strings.TrimSpace(a.Username))
}

// IsActive reports whether the account is in the active state.
func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

// IsBlocked reports whether the account is blocked or suspended.
func (a *Account) IsBlocked() bool {
	return a.Status == StatusBlocked || a.Status == StatusSuspended
}

// Activate moves the account to active from any state and clears the
// deactivation reason.
func (a *Account) Activate() {
	a.Status = StatusActive
	a.DeactivationReason = ""
}

// Deactivate moves an account to inactive. Refresh tokens are cleared so a
// deactivated account cannot keep exchanging tokens; reactivation requires a
// fresh login.
func (a *Account) Deactivate(reason string) {
	a.Status = StatusInactive
	a.DeactivationReason = reason
	a.ClearRefreshTokens()
}

// Block moves the account to blocked and clears all refresh tokens, forcing
// re-login everywhere.
func (a *Account) Block(reason string) {
	a.Status = StatusBlocked
	a.DeactivationReason = reason
	a.ClearRefreshTokens()
}

// Unblock moves a blocked account back to active.
func (a *Account) Unblock() {
	a.Status = StatusActive
	a.DeactivationReason = ""
}

// RequestDeletion moves the account to deletion_requested and stamps the
// start of the grace window.
func (a *Account) RequestDeletion(reason string, now time.Time) {
	a.Status = StatusDeletionRequested
	a.DeletionReason = reason
	a.DeletionRequestedAt = &now
}

// CancelDeletionRequest moves a deletion-requested account back to active
// and clears the deletion stamp and reasons.
func (a *Account) CancelDeletionRequest() {
	a.Status = StatusActive
	a.DeletionRequestedAt = nil
	a.DeletionReason = ""
	a.DeactivationReason = ""
}

// Reactivate cancels a pending deletion request and stamps a login.
func (a *Account) Reactivate(now time.Time) {
	a.CancelDeletionRequest()
	a.LastLogin = &now
}

// MarkEmailVerified flags the email as verified, clears the verification
// token slot, and promotes pending accounts to active.
func (a *Account) MarkEmailVerified() {
	a.EmailVerified = true
	a.EmailVerificationToken = ""
	a.EmailVerificationExpiry = nil

	if a.Status == StatusPendingVerification {
		a.Status = StatusActive
	}
}

// DeletionExpiryDate returns the end of the deletion grace window, or nil if
// no deletion has been requested.
func (a *Account) DeletionExpiryDate() *time.Time {
	if a.DeletionRequestedAt == nil {
		return nil
	}

	expiry := a.DeletionRequestedAt.Add(DeletionGracePeriod)
	return &expiry
}

// IsDeletionExpired reports whether the deletion grace window has passed.
func (a *Account) IsDeletionExpired(now time.Time) bool {
	expiry := a.DeletionExpiryDate()
	if expiry == nil {
		return false
	}

	return !now.Before(*expiry)
}

// CanLogin reports whether the account may log in. A deletion-requested
// account may still log in during the grace window; only an explicit
// reactivation flips its status back to active.
func (a *Account) CanLogin(now time.Time) bool {
	if !a.EmailVerified {
		return false
	}

	switch a.Status {
	case StatusActive:
		return true
	case StatusDeletionRequested:
		return !a.IsDeletionExpired(now)
	default:
		return false
	}
}

// AddRefreshToken appends a refresh token, evicting the oldest entry first
// when the store is at capacity.
func (a *Account) AddRefreshToken(token string, now, expiresAt time.Time) {
	for len(a.RefreshTokens) >= MaxRefreshTokens {
		a.RefreshTokens = a.RefreshTokens[1:]
	}

	a.RefreshTokens = append(a.RefreshTokens, RefreshToken{
		Token:     token,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	})
}

// RemoveRefreshToken deletes a token by exact match. Removing an absent
// token is a no-op.
func (a *Account) RemoveRefreshToken(token string) {
	for i, rt := range a.RefreshTokens {
		if rt.Token == token {
			a.RefreshTokens = append(a.RefreshTokens[:i], a.RefreshTokens[i+1:]...)
			return
		}
	}
}

// HasValidRefreshToken reports whether the token is present and unexpired.
func (a *Account) HasValidRefreshToken(token string, now time.Time) bool {
	for _, rt := range a.RefreshTokens {
		if rt.Token == token && now.Before(rt.ExpiresAt) {
			return true
		}
	}

	return false
}

// PruneExpiredRefreshTokens drops expired entries. Called before every save.
func (a *Account) PruneExpiredRefreshTokens(now time.Time) {
	kept := a.RefreshTokens[:0]
	for _, rt := range a.RefreshTokens {
		if now.Before(rt.ExpiresAt) {
			kept = append(kept, rt)
		}
	}
	a.RefreshTokens = kept
}

// ClearRefreshTokens revokes every session.
func (a *Account) ClearRefreshTokens() {
	a.RefreshTokens = nil
}
