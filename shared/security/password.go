package security

import (
	"github.com/matthewhartstonge/argon2"
)

// Hasher hashes and verifies passwords using argon2id.
type Hasher struct {
	config argon2.Config
}

// HasherParams tunes the cost of password hashing.
type HasherParams struct {
	TimeCost    uint32
	MemoryCost  uint32
	Parallelism uint8
}

// NewHasher creates a Hasher with the given cost parameters. Zero values fall
// back to the library defaults.
func NewHasher(params HasherParams) *Hasher {
	cfg := argon2.DefaultConfig()

	if params.TimeCost > 0 {
		cfg.TimeCost = params.TimeCost
	}
	if params.MemoryCost > 0 {
		cfg.MemoryCost = params.MemoryCost
	}
	if params.Parallelism > 0 {
		cfg.Parallelism = params.Parallelism
	}

	return &Hasher{config: cfg}
}

// HashPassword hashes a plaintext password into an encoded argon2 string.
func (h *Hasher) HashPassword(password string) (string, error) {
	encoded, err := h.config.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}

	return string(encoded), nil
}

// VerifyPassword checks a plaintext password against an encoded hash.
// The comparison is constant-time within the argon2 library.
func (h *Hasher) VerifyPassword(password, encodedHash string) (bool, error) {
	return argon2.VerifyEncoded([]byte(password), []byte(encodedHash))
}
