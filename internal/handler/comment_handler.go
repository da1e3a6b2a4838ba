package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"socialnet/internal/service"
)

// CommentHandler handles comment endpoints.
type CommentHandler struct {
	commentService service.CommentService
}

// NewCommentHandler creates a new comment handler.
func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// CreateCommentRequest represents a new comment.
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
	Image   string `json:"image" validate:"omitempty,max=512"`
}

// UpdateCommentRequest represents a comment edit.
type UpdateCommentRequest struct {
	Content *string `json:"content" validate:"omitempty,max=2000"`
	Image   *string `json:"image" validate:"omitempty,max=512"`
}

// Create godoc
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param postId path string true "Post ID"
// @Param request body CreateCommentRequest true "Comment data"
// @Success 201 {object} model.Comment
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /comments/{postId} [post]
func (h *CommentHandler) Create(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	postID, err := parseID(c, "postId")
	if err != nil {
		return err
	}
	var req CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.commentService.Create(c.Request().Context(), actor.ID, postID, service.CreateCommentInput{
		Content: req.Content,
		Image:   req.Image,
	})
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, comment)
}

// Update godoc
// @Summary Update a comment
// @Description Only the author may update a comment.
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Param request body UpdateCommentRequest true "Fields to change"
// @Success 200 {object} model.Comment
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /comments/{id} [put]
func (h *CommentHandler) Update(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.commentService.Update(c.Request().Context(), actor.ID, id, service.UpdateCommentInput{
		Content: req.Content,
		Image:   req.Image,
	})
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, comment)
}

// Delete godoc
// @Summary Delete a comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /comments/{id} [delete]
func (h *CommentHandler) Delete(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.commentService.Delete(c.Request().Context(), actor.ID, id); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "comment deleted"})
}

// ToggleLike godoc
// @Summary Like or unlike a comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 200 {object} model.LikeResult
// @Failure 404 {object} errors.ErrorResponse
// @Router /comments/{id}/toggleLike [post]
func (h *CommentHandler) ToggleLike(c echo.Context) error {
	return runLike(c, h.commentService.ToggleLike)
}

// Like godoc
// @Summary Like a comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 200 {object} model.LikeResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /comments/like/{id} [post]
func (h *CommentHandler) Like(c echo.Context) error {
	return runLike(c, h.commentService.Like)
}

// Unlike godoc
// @Summary Remove a like from a comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 200 {object} model.LikeResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /comments/unlike/{id} [post]
func (h *CommentHandler) Unlike(c echo.Context) error {
	return runLike(c, h.commentService.Unlike)
}
