package model

import "time"

// PublicAccount is the external representation of an Account. Credential
// material, token slots, and audit reasons never appear here.
type PublicAccount struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Username            string          `json:"username"`
	Email               string          `json:"email"`
	Role                string          `json:"role"`
	EmailVerified       bool            `json:"email_verified"`
	Status              AccountStatus   `json:"status"`
	DeletionRequestedAt *time.Time      `json:"deletion_requested_at,omitempty"`
	DeletionExpiryDate  *time.Time      `json:"deletion_expiry_date,omitempty"`
	LastLogin           *time.Time      `json:"last_login,omitempty"`
	OnboardingCompleted bool            `json:"onboarding_completed"`
	OAuthProviders      []PublicOAuth   `json:"oauth_providers,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// PublicOAuth is the client-visible view of a linked provider.
type PublicOAuth struct {
	Provider    string    `json:"provider"`
	Email       string    `json:"email"`
	ConnectedAt time.Time `json:"connected_at"`
}

// Public returns the client-safe view of the account.
func (a *Account) Public() *PublicAccount {
	providers := make([]PublicOAuth, 0, len(a.OAuthProviders))
	for _, p := range a.OAuthProviders {
		providers = append(providers, PublicOAuth{
			Provider:    p.Provider,
			Email:       p.Email,
			ConnectedAt: p.ConnectedAt,
		})
	}

	return &PublicAccount{
		ID:                  a.ID.Hex(),
		Name:                a.Name,
		Username:            a.Username,
		Email:               a.Email,
		Role:                a.Role,
		EmailVerified:       a.EmailVerified,
		Status:              a.Status,
		DeletionRequestedAt: a.DeletionRequestedAt,
		DeletionExpiryDate:  a.DeletionExpiryDate(),
		LastLogin:           a.LastLogin,
		OnboardingCompleted: a.OnboardingCompleted,
		OAuthProviders:      providers,
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}
