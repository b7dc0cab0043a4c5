package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// DefaultOpaqueTokenLength is the number of random bytes in an opaque token.
const DefaultOpaqueTokenLength = 32

// OpaqueToken is a random token shared with the user out of band. Only the
// hash is ever persisted; the raw value leaves the system once, via email.
type OpaqueToken struct {
	Raw       string
	Hash      string
	ExpiresAt time.Time
}

// GenerateOpaqueToken returns a hex-encoded cryptographically secure random
// token of byteLength random bytes.
func GenerateOpaqueToken(byteLength int) (string, error) {
	if byteLength <= 0 {
		byteLength = DefaultOpaqueTokenLength
	}

	bytes := make([]byte, byteLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	return hex.EncodeToString(bytes), nil
}

// HashOpaqueToken returns the hex-encoded SHA-256 digest of a raw token.
func HashOpaqueToken(raw string) string {
	digest := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(digest[:])
}

// NewVerificationToken generates an email verification token valid for ttl.
func NewVerificationToken(ttl time.Duration) (*OpaqueToken, error) {
	return newOpaqueToken(ttl)
}

// NewPasswordResetToken generates a password reset token valid for ttl.
func NewPasswordResetToken(ttl time.Duration) (*OpaqueToken, error) {
	return newOpaqueToken(ttl)
}

func newOpaqueToken(ttl time.Duration) (*OpaqueToken, error) {
	raw, err := GenerateOpaqueToken(DefaultOpaqueTokenLength)
	if err != nil {
		return nil, err
	}

	return &OpaqueToken{
		Raw:       raw,
		Hash:      HashOpaqueToken(raw),
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}
