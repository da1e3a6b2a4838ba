package errors

import (
	"errors"
	"net/http"
)

// Error classes. Every domain sentinel below wraps exactly one of these so callers
// can branch either on the concrete error or on its class with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrValidation         = errors.New("validation failed")
	ErrSelfReference      = errors.New("self reference")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrPartialConsistency = errors.New("partially applied update")
)

var (
	// ErrUserNotFound is returned when a referenced user does not exist.
	ErrUserNotFound = newError(ErrNotFound, "user not found")
	// ErrPostNotFound is returned when a referenced post does not exist.
	ErrPostNotFound = newError(ErrNotFound, "post not found")
	// ErrCommentNotFound is returned when a referenced comment does not exist.
	ErrCommentNotFound = newError(ErrNotFound, "comment not found")

	// ErrNotAuthor is returned when the actor does not own the post or comment.
	ErrNotAuthor = newError(ErrForbidden, "only the author can modify this resource")
	// ErrNotAccountOwner is returned when a user edits another user's profile.
	ErrNotAccountOwner = newError(ErrForbidden, "cannot modify another user")

	// ErrSelfFollow is returned when a user tries to follow or unfollow themselves.
	ErrSelfFollow = newError(ErrSelfReference, "cannot follow yourself")

	ErrAlreadyFollowing = newError(ErrConflict, "already following this user")
	ErrNotFollowing     = newError(ErrConflict, "not following this user")
	ErrAlreadyLiked     = newError(ErrConflict, "already liked")
	ErrNotLiked         = newError(ErrConflict, "not liked")
	ErrEmailTaken       = newError(ErrConflict, "email already registered")

	ErrNothingToUpdate = newError(ErrValidation, "nothing to update")
	ErrMissingContent  = newError(ErrValidation, "content is required")
	ErrInvalidAge      = newError(ErrValidation, "invalid age")

	ErrInvalidCredentials = newError(ErrUnauthorized, "invalid email or password")
	ErrSessionRevoked     = newError(ErrUnauthorized, "session is no longer valid")
)

type domainError struct {
	msg   string
	class error
}

func newError(class error, msg string) error {
	return &domainError{msg: msg, class: class}
}

func (e *domainError) Error() string { return e.msg }

func (e *domainError) Unwrap() error { return e.class }

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrPostNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "POST_NOT_FOUND")
	case errors.Is(err, ErrCommentNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "COMMENT_NOT_FOUND")
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrSelfReference):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "SELF_FOLLOW")
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "EMAIL_TAKEN")
	case errors.Is(err, ErrAlreadyFollowing):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "ALREADY_FOLLOWING")
	case errors.Is(err, ErrNotFollowing):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "NOT_FOLLOWING")
	case errors.Is(err, ErrConflict):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "CONFLICT")
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "UNAUTHORIZED")
	case errors.Is(err, ErrPartialConsistency):
		return NewHTTPError(http.StatusInternalServerError, "update partially applied", "PARTIAL_CONSISTENCY")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
