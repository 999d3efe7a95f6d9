package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fortask/user-service/internal/api/metrics"
	"github.com/fortask/user-service/internal/api/principal"
	"github.com/fortask/user-service/internal/core/domain"
	"github.com/fortask/user-service/internal/core/ports"
)

// UserHandler handles HTTP requests for the user lifecycle.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Create handles POST / and registers a new user.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string             false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      createUserRequest  true   "User details"
// @Success      201              {object}  userResponse
// @Success      200              {object}  userResponse  "Idempotent replay"
// @Failure      400              {object}  errorResponse
// @Failure      406              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Router       / [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	idempotencyKey := c.Request().Header.Get("Idempotency-Key")
	result, err := h.service.Create(c.Request().Context(), toCreateInput(req, idempotencyKey))
	if err != nil {
		return err
	}

	if result.Replayed {
		return c.JSON(http.StatusOK, toUserResponse(result.User))
	}
	metrics.UsersCreatedTotal.WithLabelValues(string(result.User.Role)).Inc()
	return c.JSON(http.StatusCreated, toUserResponse(result.User))
}

// List handles GET /list. The active flag is derived per request.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /list [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponses(users))
}

// Current handles GET /current.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Router       /current [get]
func (h *UserHandler) Current(c echo.Context) error {
	user, ok := principal.Bearer(c.Request().Context())
	if !ok {
		return domain.ErrInvalidToken
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Update handles PUT /admin/:id, a partial update restricted to admins.
//
// @Summary      Update a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User identifier"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  userResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      406   {object}  errorResponse
// @Router       /admin/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	actor, ok := principal.Bearer(c.Request().Context())
	if !ok {
		return domain.ErrInvalidToken
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	id := c.Param("id")
	user, err := h.service.Update(c.Request().Context(), actor, id, toUserUpdate(req))
	if err != nil {
		return notFound(err, id)
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Delete handles DELETE /:id. Admin only; the document is removed.
//
// @Summary      Delete a user
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  string  true  "User identifier"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	actor, ok := principal.Bearer(c.Request().Context())
	if !ok {
		return domain.ErrInvalidToken
	}

	id := c.Param("id")
	if err := h.service.Delete(c.Request().Context(), actor, id); err != nil {
		return notFound(err, id)
	}
	return c.NoContent(http.StatusNoContent)
}

func notFound(err error, id string) error {
	if errors.Is(err, domain.ErrUserNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("User %s not found", id))
	}
	return err
}
