package crypto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matthewhartstonge/argon2"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidHashFormat = errors.New("invalid encoded hash format")

// HashParams configures the Argon2id hashing parameters.
type HashParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultHashParams returns recommended Argon2id parameters for password hashing.
func DefaultHashParams() HashParams {
	return HashParams{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Hasher hashes new passwords with Argon2id and verifies both Argon2id and
// bcrypt encoded hashes. Accounts imported from the previous Node deployment
// still carry bcrypt hashes.
type Hasher struct {
	cfg argon2.Config
}

// NewHasher creates a Hasher with the given Argon2id parameters.
func NewHasher(params HashParams) *Hasher {
	cfg := argon2.DefaultConfig()
	cfg.MemoryCost = params.Memory
	cfg.TimeCost = params.Iterations
	cfg.Parallelism = params.Parallelism
	cfg.SaltLength = params.SaltLength
	cfg.HashLength = params.KeyLength
	cfg.Mode = argon2.ModeArgon2id

	return &Hasher{cfg: cfg}
}

// Hash hashes a password and returns it in PHC string format:
// $argon2id$v=19$m=65536,t=3,p=2$<base64-salt>$<base64-hash>
func (h *Hasher) Hash(password string) (string, error) {
	encoded, err := h.cfg.HashEncoded([]byte(password))
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(encoded), nil
}

// Verify checks whether password matches encodedHash in constant time.
// A mismatch is reported as (false, nil); an error means the stored hash is unusable.
func (h *Hasher) Verify(password, encodedHash string) (bool, error) {
	switch {
	case isBcrypt(encodedHash):
		err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("%w: %w", ErrInvalidHashFormat, err)
		}
		return true, nil
	case strings.HasPrefix(encodedHash, "$argon2"):
		ok, err := argon2.VerifyEncoded([]byte(password), []byte(encodedHash))
		if err != nil {
			return false, fmt.Errorf("%w: %w", ErrInvalidHashFormat, err)
		}
		return ok, nil
	default:
		return false, ErrInvalidHashFormat
	}
}

func isBcrypt(encodedHash string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(encodedHash, prefix) {
			return true
		}
	}
	return false
}
