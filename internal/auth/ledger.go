package auth

import (
	"context"

	"github.com/google/uuid"

	"socialnet/internal/model"
)

// DefaultMaxSessions is the number of concurrent sessions a user keeps.
const DefaultMaxSessions = 3

// Ledger tracks the bounded set of valid session tokens per user.
//
// A token moves Issued -> Active -> Revoked|Evicted. Revocation and eviction are
// indistinguishable afterwards: the token simply stops validating.
type Ledger interface {
	// Issue signs a new token for the user and records it as the most recent session,
	// evicting the oldest sessions so at most MaxSessions remain.
	Issue(ctx context.Context, user *model.User) (string, error)
	// Revoke forgets token. Revoking an unknown token is a no-op.
	Revoke(ctx context.Context, userID uuid.UUID, token string) error
	// RevokeAll forgets every session of the user.
	RevokeAll(ctx context.Context, userID uuid.UUID) error
	// IsValid reports whether token is one of the user's current sessions.
	IsValid(ctx context.Context, userID uuid.UUID, token string) (bool, error)
	// Tokens lists current sessions, oldest first.
	Tokens(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// slide appends token to the window and drops the oldest entries so that no more
// than max remain.
func slide(tokens []string, token string, max int) []string {
	if max < 1 {
		max = 1
	}
	out := make([]string, 0, max)
	start := len(tokens) - (max - 1)
	if start < 0 {
		start = 0
	}
	out = append(out, tokens[start:]...)
	return append(out, token)
}
