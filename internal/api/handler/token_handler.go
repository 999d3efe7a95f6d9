package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fortask/user-service/internal/api/metrics"
	"github.com/fortask/user-service/internal/api/principal"
	"github.com/fortask/user-service/internal/core/domain"
	"github.com/fortask/user-service/internal/core/ports"
)

const grantTypePassword = "password"

// TokenHandler implements the OAuth2 password grant.
type TokenHandler struct {
	service ports.UserService
}

func NewTokenHandler(service ports.UserService) *TokenHandler {
	return &TokenHandler{service: service}
}

// Issue handles POST /token.
//
// Credentials come from the form. When the form carries none, a principal
// already resolved from Basic credentials is accepted instead.
//
// @Summary      Issue an access token
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        grant_type  formData  string  false  "Must be \"password\" when present"
// @Param        username    formData  string  false  "User identifier"
// @Param        password    formData  string  false  "Password"
// @Success      200         {object}  tokenResponse
// @Failure      400         {object}  errorResponse
// @Failure      401         {object}  errorResponse
// @Router       /token [post]
func (h *TokenHandler) Issue(c echo.Context) error {
	var req tokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.GrantType != "" && req.GrantType != grantTypePassword {
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported grant type")
	}

	ctx := c.Request().Context()

	var (
		user *domain.User
		err  error
	)
	if basic, ok := principal.Basic(ctx); ok && req.Username == "" && req.Password == "" {
		user = basic
	} else {
		user, err = h.service.Authenticate(ctx, req.Username, req.Password)
		if err != nil {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return err
		}
	}

	tok, err := h.service.IssueToken(ctx, user)
	if err != nil {
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
	})
}
