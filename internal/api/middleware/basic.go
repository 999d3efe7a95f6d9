package middleware

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/fortask/user-service/internal/api/metrics"
	"github.com/fortask/user-service/internal/api/principal"
	"github.com/fortask/user-service/internal/core/domain"
	"github.com/fortask/user-service/internal/core/ports"
)

const msgInvalidBasic = "Invalid basic auth credentials"

// BasicAuth opportunistically resolves a principal from an
// "Authorization: Basic" header. It never requires credentials:
//   - no header, or a non-basic scheme: the request continues untouched;
//   - a header that does not split into scheme and credentials, or basic
//     credentials that are not valid base64 UTF-8 text: 401, fail closed;
//   - well-formed but wrong credentials: the request continues without a
//     principal.
func BasicAuth(auth ports.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(c)
			}

			parts := strings.Fields(header)
			if len(parts) != 2 {
				metrics.BasicAuthTotal.WithLabelValues("malformed").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidBasic)
			}
			if !strings.EqualFold(parts[0], "basic") {
				return next(c)
			}

			raw, err := base64.StdEncoding.DecodeString(parts[1])
			if err != nil || !utf8.Valid(raw) {
				metrics.BasicAuthTotal.WithLabelValues("malformed").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidBasic)
			}

			id, password, _ := strings.Cut(string(raw), ":")
			user, err := auth.Authenticate(c.Request().Context(), id, password)
			switch {
			case err == nil:
				metrics.BasicAuthTotal.WithLabelValues("resolved").Inc()
				c.SetRequest(c.Request().WithContext(principal.WithBasic(c.Request().Context(), user)))
			case errors.Is(err, domain.ErrNotAuthenticated):
				metrics.BasicAuthTotal.WithLabelValues("rejected").Inc()
			default:
				return err
			}

			return next(c)
		}
	}
}
