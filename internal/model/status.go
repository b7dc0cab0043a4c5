package model

// AccountStatus is the single source of truth for login eligibility and
// account lifecycle.
type AccountStatus string

const (
	StatusPendingVerification AccountStatus = "pending_verification"
	StatusActive              AccountStatus = "active"
	StatusInactive            AccountStatus = "inactive"
	StatusBlocked             AccountStatus = "blocked"
	StatusSuspended           AccountStatus = "suspended"
	StatusDeletionRequested   AccountStatus = "deletion_requested"
	StatusDeleted             AccountStatus = "deleted"
)

// Account roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ValidRole returns true for a known role value.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}
