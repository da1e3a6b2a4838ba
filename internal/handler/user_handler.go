package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"socialnet/internal/model"
	"socialnet/internal/service"
)

// UserHandler bundles profile and follow-graph handlers.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// UpdateUserRequest represents a profile update. Omitted fields are kept.
type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	Age      *int    `json:"age" validate:"omitempty,gte=0,lte=150"`
	Avatar   *string `json:"avatar" validate:"omitempty,max=512"`
}

// FollowResponse reports the actor's follow set after a follow or unfollow.
type FollowResponse struct {
	Message   string       `json:"message"`
	Following model.IDList `json:"following"`
}

// Profile godoc
// @Summary Get the current user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.Profile
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) Profile(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	profile, err := h.svc.GetProfile(c.Request().Context(), actor.ID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, profile)
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// Search godoc
// @Summary Search users by name
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param name path string true "Name fragment"
// @Success 200 {array} model.User
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/search/{name} [get]
func (h *UserHandler) Search(c echo.Context) error {
	users, err := h.svc.Search(c.Request().Context(), c.Param("name"))
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, users)
}

// Update godoc
// @Summary Update a user profile
// @Description Only the account owner or an admin may update a profile.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body UpdateUserRequest true "Fields to change"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.svc.Update(c.Request().Context(), actor.ID, id, service.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
		Avatar:   req.Avatar,
	})
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// Follow godoc
// @Summary Follow a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User to follow"
// @Success 200 {object} FollowResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id}/follow [post]
func (h *UserHandler) Follow(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	target, err := parseID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.svc.Follow(c.Request().Context(), actor.ID, target)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, FollowResponse{Message: "user followed", Following: user.Following})
}

// Unfollow godoc
// @Summary Unfollow a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User to unfollow"
// @Success 200 {object} FollowResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id}/unfollow [post]
func (h *UserHandler) Unfollow(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	target, err := parseID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.svc.Unfollow(c.Request().Context(), actor.ID, target)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, FollowResponse{Message: "user unfollowed", Following: user.Following})
}
