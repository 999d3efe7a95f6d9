package ports

import (
	"context"

	"github.com/fortask/user-service/internal/core/domain"
)

// UserRepository is the credential store. Implementations translate their
// own not-found and duplicate errors into domain.ErrUserNotFound and
// domain.ErrUserExists.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// List returns at most limit users.
	List(ctx context.Context, limit int64) ([]*domain.User, error)
	// Update applies the non-nil fields of upd and reports whether the
	// document exists at all.
	Update(ctx context.Context, id string, upd domain.UserUpdate) (found bool, err error)
	// RecordLogin replaces last_login and sets is_active to "true".
	RecordLogin(ctx context.Context, id, at string) error
	// Delete removes the user and reports how many documents were removed.
	Delete(ctx context.Context, id string) (int64, error)
}
