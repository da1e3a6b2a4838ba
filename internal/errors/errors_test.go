package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorsWrapTheirClass(t *testing.T) {
	assert.ErrorIs(t, ErrPostNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrNotAuthor, ErrForbidden)
	assert.ErrorIs(t, ErrAlreadyLiked, ErrConflict)
	assert.ErrorIs(t, ErrSelfFollow, ErrSelfReference)
	assert.ErrorIs(t, ErrSessionRevoked, ErrUnauthorized)
	assert.NotErrorIs(t, ErrPostNotFound, ErrUserNotFound)
}

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"user not found", ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
		{"wrapped post not found", fmt.Errorf("load: %w", ErrPostNotFound), http.StatusNotFound, "POST_NOT_FOUND"},
		{"comment not found", ErrCommentNotFound, http.StatusNotFound, "COMMENT_NOT_FOUND"},
		{"bare not found class", ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"not author", ErrNotAuthor, http.StatusForbidden, "FORBIDDEN"},
		{"not account owner", ErrNotAccountOwner, http.StatusForbidden, "FORBIDDEN"},
		{"self follow", ErrSelfFollow, http.StatusBadRequest, "SELF_FOLLOW"},
		{"email taken", ErrEmailTaken, http.StatusConflict, "EMAIL_TAKEN"},
		{"already following", ErrAlreadyFollowing, http.StatusBadRequest, "ALREADY_FOLLOWING"},
		{"not following", ErrNotFollowing, http.StatusBadRequest, "NOT_FOLLOWING"},
		{"already liked", ErrAlreadyLiked, http.StatusBadRequest, "CONFLICT"},
		{"nothing to update", ErrNothingToUpdate, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"invalid credentials", ErrInvalidCredentials, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"partial consistency", ErrPartialConsistency, http.StatusInternalServerError, "PARTIAL_CONSISTENCY"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, got.StatusCode)
			assert.Equal(t, tt.wantCode, got.Code)
		})
	}
}

func TestMapErrorToHTTP_HidesInternalDetails(t *testing.T) {
	got := MapErrorToHTTP(errors.New("dial tcp 10.0.0.1:3306: connection refused"))
	assert.Equal(t, "internal server error", got.ToErrorResponse().Error)
}
