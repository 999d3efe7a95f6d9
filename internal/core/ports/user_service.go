package ports

import (
	"context"

	"github.com/fortask/user-service/internal/core/domain"
)

// CreateUserInput is the DTO passed from the transport layer to UserService.
type CreateUserInput struct {
	ID        string
	FirstName string
	LastName  string
	Role      string
	Password  string
	// IdempotencyKey is optional; a repeated key returns the first result.
	IdempotencyKey string
}

// CreateUserResult is returned by Create.
type CreateUserResult struct {
	User *domain.User
	// Replayed is true when the Idempotency-Key matched an earlier request.
	Replayed bool
}

// TokenResult is returned after a successful password grant.
type TokenResult struct {
	AccessToken string
	TokenType   string
}

// Authenticator verifies an identifier and plaintext password.
type Authenticator interface {
	Authenticate(ctx context.Context, id, password string) (*domain.User, error)
}

// UserService defines the user lifecycle use cases.
type UserService interface {
	Authenticator
	Create(ctx context.Context, in CreateUserInput) (*CreateUserResult, error)
	IssueToken(ctx context.Context, user *domain.User) (*TokenResult, error)
	// List returns users with IsActive recomputed from LastLogin.
	List(ctx context.Context) ([]*domain.User, error)
	// Principal resolves the user a bearer token was issued to.
	Principal(ctx context.Context, token string) (*domain.User, error)
	Update(ctx context.Context, actor *domain.User, id string, upd domain.UserUpdate) (*domain.User, error)
	Delete(ctx context.Context, actor *domain.User, id string) error
	// EnsureAdmin creates the bootstrap administrator when it does not exist.
	EnsureAdmin(ctx context.Context, in CreateUserInput) error
}
