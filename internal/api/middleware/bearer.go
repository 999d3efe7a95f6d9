package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fortask/user-service/internal/api/metrics"
	"github.com/fortask/user-service/internal/api/principal"
	"github.com/fortask/user-service/internal/core/domain"
)

// PrincipalResolver turns a bearer token into the user it was issued to.
type PrincipalResolver interface {
	Principal(ctx context.Context, token string) (*domain.User, error)
}

// BearerAuth requires "Authorization: Bearer <token>", validates the token and
// injects the resolved user into the request context. Failures surface as
// domain.ErrInvalidToken so the error handler can attach the challenge header.
func BearerAuth(resolver PrincipalResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
				metrics.TokenValidationsTotal.WithLabelValues("missing").Inc()
				return domain.ErrInvalidToken
			}

			user, err := resolver.Principal(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidToken) {
					metrics.TokenValidationsTotal.WithLabelValues("invalid").Inc()
				}
				return err
			}

			metrics.TokenValidationsTotal.WithLabelValues("valid").Inc()
			c.SetRequest(c.Request().WithContext(principal.WithBearer(c.Request().Context(), user)))
			return next(c)
		}
	}
}
