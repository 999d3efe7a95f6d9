package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fortask/user-service/internal/api/principal"
	"github.com/fortask/user-service/internal/core/domain"
	"github.com/fortask/user-service/internal/core/ports"
)

type stubUserService struct {
	authenticateFn func(ctx context.Context, id, password string) (*domain.User, error)
	createFn       func(ctx context.Context, in ports.CreateUserInput) (*ports.CreateUserResult, error)
	issueTokenFn   func(ctx context.Context, user *domain.User) (*ports.TokenResult, error)
	listFn         func(ctx context.Context) ([]*domain.User, error)
	updateFn       func(ctx context.Context, actor *domain.User, id string, upd domain.UserUpdate) (*domain.User, error)
	deleteFn       func(ctx context.Context, actor *domain.User, id string) error
}

func (s *stubUserService) Authenticate(ctx context.Context, id, password string) (*domain.User, error) {
	return s.authenticateFn(ctx, id, password)
}

func (s *stubUserService) Create(ctx context.Context, in ports.CreateUserInput) (*ports.CreateUserResult, error) {
	return s.createFn(ctx, in)
}

func (s *stubUserService) IssueToken(ctx context.Context, user *domain.User) (*ports.TokenResult, error) {
	return s.issueTokenFn(ctx, user)
}

func (s *stubUserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.listFn(ctx)
}

func (s *stubUserService) Principal(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrInvalidToken
}

func (s *stubUserService) Update(ctx context.Context, actor *domain.User, id string, upd domain.UserUpdate) (*domain.User, error) {
	return s.updateFn(ctx, actor, id, upd)
}

func (s *stubUserService) Delete(ctx context.Context, actor *domain.User, id string) error {
	return s.deleteFn(ctx, actor, id)
}

func (s *stubUserService) EnsureAdmin(context.Context, ports.CreateUserInput) error {
	return nil
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func asBearer(c echo.Context, u *domain.User) {
	c.SetRequest(c.Request().WithContext(principal.WithBearer(c.Request().Context(), u)))
}
