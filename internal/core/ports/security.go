package ports

import "time"

// PasswordHasher is a one-way, salted password digest.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// TokenService issues and validates bearer tokens. Validate returns
// domain.ErrInvalidToken for every kind of failure.
type TokenService interface {
	Issue(subject string, ttl time.Duration) (string, error)
	Validate(token string) (string, error)
}
