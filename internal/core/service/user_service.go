package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fortask/user-service/internal/core/domain"
	"github.com/fortask/user-service/internal/core/ports"
)

const (
	defaultTokenTTL  = 30 * time.Minute
	defaultListLimit = 1000

	// maxPasswordBytes is the longest input bcrypt accepts.
	maxPasswordBytes = 72
)

// UserService implements the user lifecycle and the authenticator.
type UserService struct {
	repo      ports.UserRepository
	hasher    ports.PasswordHasher
	tokens    ports.TokenService
	idem      ports.IdempotencyStore
	audit     ports.AuditSink
	logger    zerolog.Logger
	now       func() time.Time
	tokenTTL  time.Duration
	listLimit int64

	// dummyDigest is verified against when the identifier is unknown so both
	// failure paths cost one hash comparison.
	dummyDigest string
}

// Option customises a UserService.
type Option func(*UserService)

// WithTokenTTL sets the lifetime of issued access tokens.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *UserService) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithListLimit bounds how many users List returns.
func WithListLimit(limit int64) Option {
	return func(s *UserService) {
		if limit > 0 {
			s.listLimit = limit
		}
	}
}

// WithIdempotency enables Idempotency-Key handling on Create.
func WithIdempotency(store ports.IdempotencyStore) Option {
	return func(s *UserService) { s.idem = store }
}

// WithAuditSink publishes lifecycle events to sink.
func WithAuditSink(sink ports.AuditSink) Option {
	return func(s *UserService) { s.audit = sink }
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *UserService) { s.now = now }
}

func NewUserService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenService,
	logger zerolog.Logger,
	opts ...Option,
) *UserService {
	s := &UserService{
		repo:      repo,
		hasher:    hasher,
		tokens:    tokens,
		logger:    logger,
		now:       time.Now,
		tokenTTL:  defaultTokenTTL,
		listLimit: defaultListLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if digest, err := hasher.Hash("unknown-user-placeholder"); err == nil {
		s.dummyDigest = digest
	}
	return s
}

// Create validates the role, hashes the password and inserts the user once,
// with the digest already stored under its final key.
func (s *UserService) Create(ctx context.Context, in ports.CreateUserInput) (*ports.CreateUserResult, error) {
	role, ok := domain.ParseRole(in.Role)
	if !ok {
		return nil, domain.ErrRoleNotAcceptable
	}
	if in.ID == "" || in.FirstName == "" || in.LastName == "" || in.Password == "" {
		return nil, domain.ErrInvalidPayload
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", domain.ErrInvalidPayload, maxPasswordBytes)
	}

	reserved := false
	if in.IdempotencyKey != "" && s.idem != nil {
		ok, existingID, err := s.idem.Reserve(ctx, in.IdempotencyKey, in.ID)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("idempotency check failed, creating anyway")
		case !ok:
			existing, err := s.repo.FindByID(ctx, existingID)
			if errors.Is(err, domain.ErrUserNotFound) {
				return nil, domain.ErrIdempotencyConflict
			}
			if err != nil {
				return nil, err
			}
			s.logger.Info().Str("idempotency_key", in.IdempotencyKey).Str("user_id", existing.ID).Msg("idempotent replay")
			return &ports.CreateUserResult{User: existing, Replayed: true}, nil
		default:
			reserved = true
		}
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.release(ctx, reserved, in.IdempotencyKey)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           in.ID,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         role,
		CreatedAt:    domain.FormatTime(s.now()),
		PasswordHash: digest,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		s.release(ctx, reserved, in.IdempotencyKey)
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user created")
	s.publish(domain.EventCreated, user.ID, "")

	return &ports.CreateUserResult{User: user}, nil
}

// List returns up to listLimit users with is_active derived from last_login.
// The derived value is never written back.
func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.List(ctx, s.listLimit)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for _, u := range users {
		u.IsActive = domain.ActiveString(domain.ComputeActive(u.LastLogin, now))
	}
	return users, nil
}

// Update merges the non-nil fields of upd into user id. Only admins may call it.
func (s *UserService) Update(ctx context.Context, actor *domain.User, id string, upd domain.UserUpdate) (*domain.User, error) {
	if !isAdmin(actor) {
		return nil, domain.ErrForbidden
	}
	if upd.Role != nil && !upd.Role.IsValid() {
		return nil, domain.ErrRoleNotAcceptable
	}

	if !upd.IsEmpty() {
		found, err := s.repo.Update(ctx, id, upd)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Info().Str("user_id", id).Str("actor", actor.ID).Msg("user updated")
		s.publish(domain.EventUpdated, id, actor.ID)
	}

	return s.repo.FindByID(ctx, id)
}

// Delete physically removes user id. Only admins may call it.
func (s *UserService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if !isAdmin(actor) {
		return domain.ErrForbidden
	}

	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}

	s.logger.Info().Str("user_id", id).Str("actor", actor.ID).Msg("user deleted")
	s.publish(domain.EventDeleted, id, actor.ID)
	return nil
}

// EnsureAdmin creates the bootstrap administrator unless a user with that
// identifier already exists.
func (s *UserService) EnsureAdmin(ctx context.Context, in ports.CreateUserInput) error {
	if in.ID == "" || in.Password == "" {
		return nil
	}

	_, err := s.repo.FindByID(ctx, in.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	in.Role = string(domain.RoleAdmin)
	in.IdempotencyKey = ""
	if in.FirstName == "" {
		in.FirstName = "Admin"
	}
	if in.LastName == "" {
		in.LastName = "Admin"
	}

	_, err = s.Create(ctx, in)
	if errors.Is(err, domain.ErrUserExists) {
		return nil
	}
	return err
}

func (s *UserService) release(ctx context.Context, reserved bool, key string) {
	if !reserved {
		return
	}
	if err := s.idem.Release(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("failed to release idempotency key")
	}
}

func (s *UserService) publish(kind domain.UserEventKind, userID, actor string) {
	if s.audit == nil {
		return
	}
	s.audit.Publish(domain.UserEvent{
		UserID: userID,
		Kind:   kind,
		Actor:  actor,
		At:     s.now().UTC(),
	})
}

func isAdmin(u *domain.User) bool {
	return u != nil && u.Role == domain.RoleAdmin
}
