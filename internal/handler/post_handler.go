package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"socialnet/internal/errors"
	"socialnet/internal/service"
)

// PostHandler handles post endpoints.
type PostHandler struct {
	postService service.PostService
}

// NewPostHandler creates a new post handler.
func NewPostHandler(postService service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// CreatePostRequest represents a new post.
type CreatePostRequest struct {
	Description string `json:"description" validate:"required,max=5000"`
	Image       string `json:"image" validate:"omitempty,max=512"`
}

// UpdatePostRequest represents a post edit. At least one field is required.
type UpdatePostRequest struct {
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Image       *string `json:"image" validate:"omitempty,max=512"`
}

// Create godoc
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePostRequest true "Post data"
// @Success 201 {object} model.Post
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /posts [post]
func (h *PostHandler) Create(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.postService.Create(c.Request().Context(), actor.ID, service.CreatePostInput{
		Description: req.Description,
		Image:       req.Image,
	})
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, post)
}

// List godoc
// @Summary List posts, newest first
// @Tags posts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {array} model.PostDetail
// @Failure 400 {object} errors.ErrorResponse
// @Router /posts [get]
func (h *PostHandler) List(c echo.Context) error {
	var page, limit int
	if err := echo.QueryParamsBinder(c).
		Int("page", &page).
		Int("limit", &limit).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "page and limit must be integers",
			Code:  "INVALID_QUERY",
		})
	}

	posts, err := h.postService.List(c.Request().Context(), page, limit)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

// Get godoc
// @Summary Get a post with its comments
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} model.PostDetail
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id} [get]
func (h *PostHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	post, err := h.postService.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// Search godoc
// @Summary Search posts by description
// @Tags posts
// @Produce json
// @Param name path string true "Description fragment"
// @Success 200 {array} model.PostDetail
// @Router /posts/search/{name} [get]
func (h *PostHandler) Search(c echo.Context) error {
	posts, err := h.postService.Search(c.Request().Context(), c.Param("name"))
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

// Update godoc
// @Summary Update a post
// @Description Only the author may update a post.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body UpdatePostRequest true "Fields to change"
// @Success 200 {object} model.Post
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id} [put]
func (h *PostHandler) Update(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.postService.Update(c.Request().Context(), actor.ID, id, service.UpdatePostInput{
		Description: req.Description,
		Image:       req.Image,
	})
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// Delete godoc
// @Summary Delete a post and its comments
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id} [delete]
func (h *PostHandler) Delete(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.postService.Delete(c.Request().Context(), actor.ID, id); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "post deleted"})
}

// ToggleLike godoc
// @Summary Like or unlike a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} model.LikeResult
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id}/toggleLike [post]
func (h *PostHandler) ToggleLike(c echo.Context) error {
	return runLike(c, h.postService.ToggleLike)
}

// Like godoc
// @Summary Like a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} model.LikeResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/like/{id} [post]
func (h *PostHandler) Like(c echo.Context) error {
	return runLike(c, h.postService.Like)
}

// Unlike godoc
// @Summary Remove a like from a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} model.LikeResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/unlike/{id} [post]
func (h *PostHandler) Unlike(c echo.Context) error {
	return runLike(c, h.postService.Unlike)
}
