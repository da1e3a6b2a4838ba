package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	apperrors "socialnet/internal/errors"
	"socialnet/internal/lock"
	"socialnet/internal/model"
	"socialnet/internal/repository"
)

// StoreLedger keeps sessions in the user record's token column. Each read-modify-write
// holds the user's keyed lock and runs in a transaction with a row lock.
type StoreLedger struct {
	store       repository.Store
	jwt         *JWTService
	locks       *lock.Keyed
	maxSessions int
}

// Ensure StoreLedger implements Ledger
var _ Ledger = (*StoreLedger)(nil)

// NewStoreLedger creates a ledger backed by the entity store.
func NewStoreLedger(store repository.Store, jwt *JWTService, locks *lock.Keyed, maxSessions int) *StoreLedger {
	if maxSessions < 1 {
		maxSessions = DefaultMaxSessions
	}
	if locks == nil {
		locks = lock.New()
	}
	return &StoreLedger{store: store, jwt: jwt, locks: locks, maxSessions: maxSessions}
}

// Issue signs a token and appends it to the user's token column.
func (l *StoreLedger) Issue(ctx context.Context, user *model.User) (string, error) {
	token, err := l.jwt.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	err = l.mutate(ctx, user.ID, func(tokens model.StringList) model.StringList {
		return slide(tokens, token, l.maxSessions)
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// Revoke removes the exact token string; unknown tokens are ignored.
func (l *StoreLedger) Revoke(ctx context.Context, userID uuid.UUID, token string) error {
	return l.mutate(ctx, userID, func(tokens model.StringList) model.StringList {
		tokens.Remove(token)
		return tokens
	})
}

// RevokeAll clears the token column.
func (l *StoreLedger) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	return l.mutate(ctx, userID, func(model.StringList) model.StringList {
		return model.StringList{}
	})
}

// IsValid checks membership of token in the token column. An unknown user holds no sessions.
func (l *StoreLedger) IsValid(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	user, err := l.store.Users().FindByID(ctx, userID)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.Tokens.Contains(token), nil
}

// Tokens returns the token column, oldest first.
func (l *StoreLedger) Tokens(ctx context.Context, userID uuid.UUID) ([]string, error) {
	user, err := l.store.Users().FindByID(ctx, userID)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return []string(user.Tokens), nil
}

func (l *StoreLedger) mutate(ctx context.Context, userID uuid.UUID, fn func(model.StringList) model.StringList) error {
	unlock := l.locks.Lock(userKey(userID))
	defer unlock()

	return l.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		user, err := tx.Users().FindByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		return tx.Users().UpdateTokens(ctx, userID, fn(user.Tokens))
	})
}

func userKey(id uuid.UUID) string {
	return "user:" + id.String()
}
