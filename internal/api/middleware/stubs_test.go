package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/labstack/echo/v4"

	"github.com/fortask/user-service/internal/core/domain"
)

type stubAuthenticator struct {
	users map[string]string // id -> password
	err   error
	calls int
}

func (s *stubAuthenticator) Authenticate(_ context.Context, id, password string) (*domain.User, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if pw, ok := s.users[id]; ok && pw == password {
		return &domain.User{ID: id, Role: domain.RoleDev}, nil
	}
	return nil, domain.ErrNotAuthenticated
}

type stubResolver struct {
	users map[string]*domain.User // token -> user
	err   error
}

func (s *stubResolver) Principal(_ context.Context, token string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if u, ok := s.users[token]; ok {
		return u, nil
	}
	return nil, domain.ErrInvalidToken
}

func newContext(authorization string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}
