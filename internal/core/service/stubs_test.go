package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fortask/user-service/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stubs
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users     map[string]*domain.User
	createErr error
	findErr   error
	creates   int
	updates   int
	lastLimit int64
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, exists := r.users[user.ID]; exists {
		return domain.ErrUserExists
	}
	r.creates++
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) List(_ context.Context, limit int64) ([]*domain.User, error) {
	r.lastLimit = limit
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		if int64(len(out)) >= limit {
			break
		}
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, upd domain.UserUpdate) (bool, error) {
	u, ok := r.users[id]
	if !ok {
		return false, nil
	}
	r.updates++
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.IsActive != nil {
		u.IsActive = *upd.IsActive
	}
	if upd.LastLogin != nil {
		u.LastLogin = *upd.LastLogin
	}
	return true, nil
}

func (r *stubUserRepo) RecordLogin(_ context.Context, id, at string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLogin = at
	u.IsActive = "true"
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) (int64, error) {
	if _, ok := r.users[id]; !ok {
		return 0, nil
	}
	delete(r.users, id)
	return 1, nil
}

// stubHasher is reversible so tests stay fast; verifies are counted.
type stubHasher struct {
	verifies int
}

func (h *stubHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.New("empty password")
	}
	return "hashed:" + plaintext, nil
}

func (h *stubHasher) Verify(plaintext, digest string) bool {
	h.verifies++
	return digest == "hashed:"+plaintext
}

type stubTokens struct {
	lastTTL time.Duration
}

func (s *stubTokens) Issue(subject string, ttl time.Duration) (string, error) {
	s.lastTTL = ttl
	return "tok:" + subject, nil
}

func (s *stubTokens) Validate(token string) (string, error) {
	sub, ok := strings.CutPrefix(token, "tok:")
	if !ok || sub == "" {
		return "", domain.ErrInvalidToken
	}
	return sub, nil
}

type stubIdempotency struct {
	keys       map[string]string
	reserveErr error
	released   []string
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{keys: make(map[string]string)}
}

func (s *stubIdempotency) Reserve(_ context.Context, key, id string) (bool, string, error) {
	if s.reserveErr != nil {
		return false, "", s.reserveErr
	}
	if existing, ok := s.keys[key]; ok {
		return false, existing, nil
	}
	s.keys[key] = id
	return true, id, nil
}

func (s *stubIdempotency) Release(_ context.Context, key string) error {
	delete(s.keys, key)
	s.released = append(s.released, key)
	return nil
}

type stubSink struct {
	events []domain.UserEvent
}

func (s *stubSink) Publish(event domain.UserEvent) {
	s.events = append(s.events, event)
}
