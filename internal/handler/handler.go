package handler

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"socialnet/internal/auth"
	"socialnet/internal/errors"
	"socialnet/internal/model"
	"socialnet/internal/service"
)

const (
	// JWTContextKey is where the JWT middleware stores the parsed token.
	JWTContextKey = "user"

	actorContextKey = "actor"
	tokenContextKey = "session_token"
)

// MessageResponse is returned by endpoints that have nothing else to report.
type MessageResponse struct {
	Message string `json:"message"`
}

// RequireSession admits a request only when its bearer token is still held in the
// user's session ledger. It must run after the JWT middleware.
func RequireSession(authService service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get(JWTContextKey).(*jwt.Token)
			if !ok {
				return unauthorized("missing token")
			}
			claims, ok := token.Claims.(*auth.Claims)
			if !ok || claims.UserID == uuid.Nil {
				return unauthorized("invalid token claims")
			}

			user, err := authService.Authenticate(c.Request().Context(), claims.UserID, token.Raw)
			if err != nil {
				return respondError(err)
			}

			c.Set(actorContextKey, user)
			c.Set(tokenContextKey, token.Raw)
			return next(c)
		}
	}
}

func unauthorized(msg string) error {
	return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
		Error: msg,
		Code:  "UNAUTHORIZED",
	})
}

// currentUser returns the authenticated user placed on the context by RequireSession.
func currentUser(c echo.Context) (*model.User, error) {
	user, ok := c.Get(actorContextKey).(*model.User)
	if !ok || user == nil {
		return nil, unauthorized("authentication required")
	}
	return user, nil
}

func sessionToken(c echo.Context) string {
	token, _ := c.Get(tokenContextKey).(string)
	return token
}

func parseID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid " + name,
			Code:  "INVALID_UUID",
		})
	}
	return id, nil
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}
	return nil
}

func respondError(err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		// keep the cause for the request logger
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

type likeFunc func(ctx context.Context, actorID, subjectID uuid.UUID) (model.LikeResult, error)

func runLike(c echo.Context, op likeFunc) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	result, err := op(c.Request().Context(), actor.ID, id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, result)
}
