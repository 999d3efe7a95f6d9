package domain

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserExists        = errors.New("user already exists")
	ErrRoleNotAcceptable = errors.New("user role not acceptable")
	ErrInvalidPayload    = errors.New("invalid payload")

	// ErrIdempotencyConflict means the key is held by a create that has not
	// stored its user yet.
	ErrIdempotencyConflict = errors.New("idempotency key in use")

	// ErrNotAuthenticated covers unknown identifiers and wrong passwords alike.
	ErrNotAuthenticated = errors.New("incorrect id or password")
	ErrInvalidToken     = errors.New("could not validate credentials")
	ErrForbidden        = errors.New("not having sufficient rights to modify the content")
)
